// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package completion

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ollama/ollama/api"
)

// DefaultOllamaURL is where a local Ollama server listens.
const DefaultOllamaURL = "http://127.0.0.1:11434"

// Ollama streams chat replies from an Ollama server.
type Ollama struct {
	client *api.Client
}

// NewOllama creates an Ollama client for baseURL.
func NewOllama(baseURL string) (*Ollama, error) {
	if baseURL == "" {
		baseURL = DefaultOllamaURL
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Ollama URL: %w", err)
	}
	return &Ollama{client: api.NewClient(parsed, http.DefaultClient)}, nil
}

// Complete implements Client. The final chunk (Done with no text) is
// delivered as an absent fragment.
func (o *Ollama) Complete(ctx context.Context, req Request, fn FragmentFunc) error {
	stream := true
	chatReq := &api.ChatRequest{
		Model:    req.Model,
		Messages: toOllamaMessages(req.Messages),
		Stream:   &stream,
	}
	if req.MaxTokens > 0 {
		chatReq.Options = map[string]any{"num_predict": req.MaxTokens}
	}

	err := o.client.Chat(ctx, chatReq, func(resp api.ChatResponse) error {
		return fn(ollamaFragment(resp))
	})
	if err != nil {
		return fmt.Errorf("ollama chat: %w", err)
	}
	return nil
}

func ollamaFragment(resp api.ChatResponse) Fragment {
	if resp.Done && resp.Message.Content == "" {
		return Absent()
	}
	return Text(resp.Message.Content)
}

func toOllamaMessages(messages []Message) []api.Message {
	result := make([]api.Message, len(messages))
	for i, msg := range messages {
		result[i] = api.Message{Role: string(msg.Role), Content: msg.Content}
	}
	return result
}
