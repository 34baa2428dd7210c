// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package completion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/gpterm/internal/config"
)

// collect runs Complete and gathers every fragment.
func collect(t *testing.T, c Client, req Request) ([]Fragment, error) {
	t.Helper()
	var got []Fragment
	err := c.Complete(context.Background(), req, func(f Fragment) error {
		got = append(got, f)
		return nil
	})
	return got, err
}

func sseHandler(t *testing.T, events []string, capture *map[string]any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if capture != nil {
			body, _ := io.ReadAll(r.Body)
			require.NoError(t, json.Unmarshal(body, capture))
		}
		w.Header().Set("Content-Type", "text/event-stream")
		for _, e := range events {
			fmt.Fprintf(w, "data: %s\n\n", e)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}
}

func TestFragment_Content(t *testing.T) {
	assert.Equal(t, "abc", Text("abc").Content())
	assert.Equal(t, "", Text("").Content())
	assert.Equal(t, "\n", Absent().Content())
}

// =============================================================================
// OPENAI
// =============================================================================

func TestOpenAIFragment(t *testing.T) {
	testCases := []struct {
		name     string
		chunk    string
		expected Fragment
	}{
		{
			name:     "text delta",
			chunk:    `{"id":"1","object":"chat.completion.chunk","created":1,"model":"m","choices":[{"index":0,"delta":{"content":"Hi"}}]}`,
			expected: Text("Hi"),
		},
		{
			name:     "null content",
			chunk:    `{"id":"1","object":"chat.completion.chunk","created":1,"model":"m","choices":[{"index":0,"delta":{"role":"assistant","content":null}}]}`,
			expected: Absent(),
		},
		{
			name:     "finish marker without content",
			chunk:    `{"id":"1","object":"chat.completion.chunk","created":1,"model":"m","choices":[{"index":0,"delta":{},"finish_reason":"stop"}]}`,
			expected: Absent(),
		},
		{
			name:     "no choices",
			chunk:    `{"id":"1","object":"chat.completion.chunk","created":1,"model":"m","choices":[]}`,
			expected: Absent(),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var chunk openai.ChatCompletionChunk
			require.NoError(t, json.Unmarshal([]byte(tc.chunk), &chunk))
			assert.Equal(t, tc.expected, openAIFragment(chunk))
		})
	}
}

func TestOpenAI_Complete(t *testing.T) {
	var body map[string]any
	server := httptest.NewServer(sseHandler(t, []string{
		`{"id":"1","object":"chat.completion.chunk","created":1,"model":"gpt-4","choices":[{"index":0,"delta":{"role":"assistant","content":null}}]}`,
		`{"id":"1","object":"chat.completion.chunk","created":1,"model":"gpt-4","choices":[{"index":0,"delta":{"content":"Use `+"`"+`"}}]}`,
		`{"id":"1","object":"chat.completion.chunk","created":1,"model":"gpt-4","choices":[{"index":0,"delta":{"content":"x"}}]}`,
	}, &body))
	defer server.Close()

	client, err := NewOpenAI(server.URL, "sk-test", "org-1")
	require.NoError(t, err)

	got, err := collect(t, client, Request{
		Model:     "gpt-4",
		MaxTokens: 42,
		Messages: []Message{
			{Role: RoleSystem, Content: "sys"},
			{Role: RoleUser, Content: "hello"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []Fragment{Absent(), Text("Use `"), Text("x")}, got)

	assert.Equal(t, "gpt-4", body["model"])
	assert.EqualValues(t, 42, body["max_tokens"])
	msgs, ok := body["messages"].([]any)
	require.True(t, ok)
	assert.Len(t, msgs, 2)
}

func TestOpenAI_MissingKey(t *testing.T) {
	_, err := NewOpenAI("", "", "")
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestOpenAI_CallbackErrorStopsStream(t *testing.T) {
	server := httptest.NewServer(sseHandler(t, []string{
		`{"id":"1","object":"chat.completion.chunk","created":1,"model":"m","choices":[{"index":0,"delta":{"content":"a"}}]}`,
		`{"id":"1","object":"chat.completion.chunk","created":1,"model":"m","choices":[{"index":0,"delta":{"content":"b"}}]}`,
	}, nil))
	defer server.Close()

	client, err := NewOpenAI(server.URL, "sk-test", "")
	require.NoError(t, err)

	stop := errors.New("stop")
	calls := 0
	err = client.Complete(context.Background(), Request{Model: "m"}, func(Fragment) error {
		calls++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}

// =============================================================================
// OPENROUTER (OpenAI-compatible)
// =============================================================================

func TestOpenRouter_Complete(t *testing.T) {
	server := httptest.NewServer(sseHandler(t, []string{
		`{"id":"1","object":"chat.completion.chunk","created":1,"model":"m","choices":[{"index":0,"delta":{"role":"assistant","content":"print"}}]}`,
		`{"id":"1","object":"chat.completion.chunk","created":1,"model":"m","choices":[{"index":0,"delta":{"content":"(1)"}}]}`,
		`{"id":"1","object":"chat.completion.chunk","created":1,"model":"m","choices":[{"index":0,"delta":{},"finish_reason":"stop"}]}`,
	}, nil))
	defer server.Close()

	client, err := NewOpenRouter(server.URL, "or-key")
	require.NoError(t, err)

	got, err := collect(t, client, Request{Model: "m", Messages: []Message{{Role: RoleUser, Content: "hi"}}})
	require.NoError(t, err)
	assert.Equal(t, []Fragment{Text("print"), Text("(1)"), Absent()}, got)
}

// =============================================================================
// OLLAMA
// =============================================================================

func TestOllama_Complete(t *testing.T) {
	var req map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		w.Header().Set("Content-Type", "application/x-ndjson")
		lines := []string{
			`{"model":"llama3","created_at":"2024-01-01T00:00:00Z","message":{"role":"assistant","content":"Hel"},"done":false}`,
			`{"model":"llama3","created_at":"2024-01-01T00:00:00Z","message":{"role":"assistant","content":"lo"},"done":false}`,
			`{"model":"llama3","created_at":"2024-01-01T00:00:00Z","message":{"role":"assistant","content":""},"done":true,"done_reason":"stop"}`,
		}
		fmt.Fprint(w, strings.Join(lines, "\n")+"\n")
	}))
	defer server.Close()

	client, err := NewOllama(server.URL)
	require.NoError(t, err)

	got, err := collect(t, client, Request{Model: "llama3", MaxTokens: 99, Messages: []Message{{Role: RoleUser, Content: "hi"}}})
	require.NoError(t, err)
	assert.Equal(t, []Fragment{Text("Hel"), Text("lo"), Absent()}, got)

	opts, ok := req["options"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 99, opts["num_predict"])
}

// =============================================================================
// ANTHROPIC
// =============================================================================

func TestToAnthropicMessages(t *testing.T) {
	msgs, system := toAnthropicMessages([]Message{
		{Role: RoleSystem, Content: "be brief"},
		{Role: RoleUser, Content: "q"},
		{Role: RoleAssistant, Content: "a"},
	})

	require.Len(t, system, 1)
	assert.Equal(t, "be brief", system[0].Text)
	require.Len(t, msgs, 2)
	assert.EqualValues(t, "user", msgs[0].Role)
	assert.EqualValues(t, "assistant", msgs[1].Role)
}

func TestAnthropic_MissingKey(t *testing.T) {
	_, err := NewAnthropic("", "")
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

// =============================================================================
// FACTORY & RATE LIMIT
// =============================================================================

func TestNew(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr error
	}{
		{"openai", func(c *config.Config) {}, nil},
		{"anthropic", func(c *config.Config) { c.Provider.Name = config.ProviderAnthropic }, nil},
		{"ollama without key", func(c *config.Config) { c.Provider.Name = config.ProviderOllama; c.Credentials.APIKey = "" }, nil},
		{"openrouter", func(c *config.Config) { c.Provider.Name = config.ProviderOpenRouter }, nil},
		{"missing key", func(c *config.Config) { c.Credentials.APIKey = "" }, ErrMissingAPIKey},
		{"unknown", func(c *config.Config) { c.Provider.Name = "bard" }, ErrUnknownProvider},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Credentials.APIKey = "key"
			tc.mutate(cfg)

			client, err := New(cfg)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, client)
		})
	}
}

type countingClient struct{ calls int }

func (c *countingClient) Complete(ctx context.Context, req Request, fn FragmentFunc) error {
	c.calls++
	return fn(Text("ok"))
}

func TestRateLimited(t *testing.T) {
	inner := &countingClient{}
	assert.Same(t, Client(inner), RateLimited(inner, 0))

	limited := RateLimited(inner, 1)
	_, err := collect(t, limited, Request{})
	require.NoError(t, err)

	// The second request would wait a full minute; the deadline cuts it off.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err = limited.Complete(ctx, Request{}, func(Fragment) error { return nil })
	assert.Error(t, err)
	assert.Equal(t, 1, inner.calls)
}
