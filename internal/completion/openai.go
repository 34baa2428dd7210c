// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package completion

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// DefaultOpenAIURL is the public OpenAI endpoint.
const DefaultOpenAIURL = "https://api.openai.com/v1"

// OpenAI streams chat completions from the OpenAI API.
type OpenAI struct {
	client openai.Client
}

// NewOpenAI creates an OpenAI client. organization may be empty.
func NewOpenAI(baseURL, apiKey, organization string) (*OpenAI, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: openai", ErrMissingAPIKey)
	}
	if baseURL == "" {
		baseURL = DefaultOpenAIURL
	}

	opts := []option.RequestOption{
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
	}
	if organization != "" {
		opts = append(opts, option.WithOrganization(organization))
	}

	return &OpenAI{client: openai.NewClient(opts...)}, nil
}

// Complete implements Client.
func (o *OpenAI) Complete(ctx context.Context, req Request, fn FragmentFunc) error {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(req.Model),
		Messages: toOpenAIMessages(req.Messages),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	stream := o.client.Chat.Completions.NewStreaming(ctx, params)
	defer stream.Close()

	for stream.Next() {
		if err := fn(openAIFragment(stream.Current())); err != nil {
			return err
		}
	}
	if err := stream.Err(); err != nil {
		return fmt.Errorf("openai stream: %w", err)
	}
	return nil
}

// openAIFragment maps one chunk to a Fragment. A chunk without choices, or
// whose delta has no content field (role preamble, finish marker), is absent.
func openAIFragment(chunk openai.ChatCompletionChunk) Fragment {
	if len(chunk.Choices) == 0 {
		return Absent()
	}
	delta := chunk.Choices[0].Delta
	if !delta.JSON.Content.Valid() {
		return Absent()
	}
	return Text(delta.Content)
}

func toOpenAIMessages(messages []Message) []openai.ChatCompletionMessageParamUnion {
	result := make([]openai.ChatCompletionMessageParamUnion, len(messages))
	for i, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			result[i] = openai.SystemMessage(msg.Content)
		case RoleAssistant:
			result[i] = openai.AssistantMessage(msg.Content)
		default:
			result[i] = openai.UserMessage(msg.Content)
		}
	}
	return result
}
