// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package completion

import (
	"context"
	"errors"
	"fmt"
	"io"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultOpenRouterURL is the OpenRouter endpoint.
const DefaultOpenRouterURL = "https://openrouter.ai/api/v1"

// OpenRouter streams from OpenRouter or any other OpenAI-compatible server
// given a different base URL.
type OpenRouter struct {
	client *openai.Client
}

// NewOpenRouter creates an OpenRouter client.
func NewOpenRouter(baseURL, apiKey string) (*OpenRouter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: openrouter", ErrMissingAPIKey)
	}
	if baseURL == "" {
		baseURL = DefaultOpenRouterURL
	}

	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	return &OpenRouter{client: openai.NewClientWithConfig(cfg)}, nil
}

// Complete implements Client.
func (o *OpenRouter) Complete(ctx context.Context, req Request, fn FragmentFunc) error {
	messages := make([]openai.ChatCompletionMessage, len(req.Messages))
	for i, msg := range req.Messages {
		messages[i] = openai.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		}
	}

	stream, err := o.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:     req.Model,
		Messages:  messages,
		MaxTokens: req.MaxTokens,
		Stream:    true,
	})
	if err != nil {
		return fmt.Errorf("openrouter stream: %w", err)
	}
	defer stream.Close()

	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("openrouter stream: %w", err)
		}
		if err := fn(openRouterFragment(resp)); err != nil {
			return err
		}
	}
}

// openRouterFragment treats an empty delta on a finishing chunk as absent;
// go-openai does not distinguish a missing content field from "".
func openRouterFragment(resp openai.ChatCompletionStreamResponse) Fragment {
	if len(resp.Choices) == 0 {
		return Absent()
	}
	choice := resp.Choices[0]
	if choice.Delta.Content == "" && choice.FinishReason != "" {
		return Absent()
	}
	return Text(choice.Delta.Content)
}
