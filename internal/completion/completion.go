// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package completion

import (
	"context"
	"errors"
)

// Role tags the author of a Message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one immutable entry of conversation history.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Request is everything sent to the service for one turn.
type Request struct {
	Model     string
	MaxTokens int
	Messages  []Message
}

// Fragment is one incremental unit of a streamed reply. Some service
// chunks carry no text at all (role preambles, finish markers); those arrive
// with Present false.
type Fragment struct {
	Text    string
	Present bool
}

// Text returns a present fragment carrying s.
func Text(s string) Fragment {
	return Fragment{Text: s, Present: true}
}

// Absent returns a fragment without content.
func Absent() Fragment {
	return Fragment{}
}

// Content returns the fragment's text, or a single newline when the
// fragment carried none.
func (f Fragment) Content() string {
	if !f.Present {
		return "\n"
	}
	return f.Text
}

// FragmentFunc receives fragments in arrival order. Returning an error stops
// the stream and Complete returns that error.
type FragmentFunc func(Fragment) error

// Client streams a completion for req, calling fn once per fragment. It
// returns when the stream ends, fails, or ctx is cancelled.
type Client interface {
	Complete(ctx context.Context, req Request, fn FragmentFunc) error
}

// Errors returned by the factory and adapters.
var (
	ErrMissingAPIKey   = errors.New("completion: API key is required")
	ErrUnknownProvider = errors.New("completion: unknown provider")
)
