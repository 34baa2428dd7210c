// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package completion is the boundary to the remote chat-completion service.
//
// A Client takes an ordered, role-tagged message sequence plus a model id
// and token budget, and delivers the reply as a stream of Fragments through
// a callback. Adapters exist for the OpenAI API, Anthropic, a local Ollama
// server and OpenRouter (or any OpenAI-compatible endpoint).
//
// # Key Types
//
//   - Message / Role: one entry of conversation history
//   - Request: what is sent for one turn
//   - Fragment: one incremental piece of the reply, possibly without text
//   - Client: the streaming interface every adapter implements
//
// # Usage
//
//	client, err := completion.New(cfg)
//	if err != nil {
//	    return err
//	}
//	err = client.Complete(ctx, req, func(f completion.Fragment) error {
//	    renderer.Render(f)
//	    return nil
//	})
package completion
