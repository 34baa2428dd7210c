// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/muesli/termenv"

	"github.com/jeranaias/gpterm/internal/completion"
	"github.com/jeranaias/gpterm/internal/config"
	"github.com/jeranaias/gpterm/internal/render"
	"github.com/jeranaias/gpterm/internal/storage"
)

// DefaultWidth is used when Options.Width is nil.
const DefaultWidth = 80

// Options configure a Conversation. Zero values get defaults.
type Options struct {
	Model        string
	MaxTokens    int
	SystemPrompt string

	// Output receives the rendered reply. Defaults to io.Discard.
	Output io.Writer
	// Highlighter colours code blocks; nil leaves them plain.
	Highlighter render.Highlighter
	// Profile controls inline span styling.
	Profile termenv.Profile
	// Width reports the terminal width at the start of each turn.
	Width func() int
	// Saver persists the history on Save. Defaults to storage.NopStore.
	Saver storage.Saver
}

// Conversation is a running dialogue. It is not safe for concurrent use;
// the dialogue loop runs one turn at a time.
type Conversation struct {
	client    completion.Client
	messages  []completion.Message
	model     string
	maxTokens int
	id        string

	out     io.Writer
	hl      render.Highlighter
	profile termenv.Profile
	width   func() int
	saver   storage.Saver
}

// New starts a conversation holding only the system message.
func New(client completion.Client, opts Options) *Conversation {
	defaults := config.Default()
	if opts.Model == "" {
		opts.Model = defaults.Model
	}
	if opts.MaxTokens == 0 {
		opts.MaxTokens = defaults.MaxTokens
	}
	if opts.SystemPrompt == "" {
		opts.SystemPrompt = config.DefaultSystemPrompt
	}
	if opts.Output == nil {
		opts.Output = io.Discard
	}
	if opts.Width == nil {
		opts.Width = func() int { return DefaultWidth }
	}
	if opts.Saver == nil {
		opts.Saver = storage.NopStore{}
	}

	return &Conversation{
		client:    client,
		messages:  []completion.Message{{Role: completion.RoleSystem, Content: opts.SystemPrompt}},
		model:     opts.Model,
		maxTokens: opts.MaxTokens,
		out:       opts.Output,
		hl:        opts.Highlighter,
		profile:   opts.Profile,
		width:     opts.Width,
		saver:     opts.Saver,
	}
}

// =============================================================================
// TURNS
// =============================================================================

// InterruptedError reports a turn whose stream broke off after part of the
// reply had arrived. The partial reply is already in history.
type InterruptedError struct {
	Err error
}

func (e *InterruptedError) Error() string {
	if errors.Is(e.Err, context.Canceled) {
		return "reply interrupted"
	}
	return fmt.Sprintf("reply interrupted: %v", e.Err)
}

func (e *InterruptedError) Unwrap() error { return e.Err }

// Submit runs one turn: it appends prompt as a user message, streams the
// reply through a fresh renderer and appends the finished assistant message.
//
// If the request fails before any fragment arrives, the user message is
// removed again and the error returned, leaving history as it was. If it
// fails or is cancelled mid-stream, the partial reply is finalized and kept
// and an *InterruptedError is returned.
func (c *Conversation) Submit(ctx context.Context, prompt string) error {
	c.messages = append(c.messages, completion.Message{Role: completion.RoleUser, Content: prompt})

	req := completion.Request{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages:  c.Messages(),
	}

	r := render.NewRendererWithOptions(c.out, c.hl, c.width(), render.Options{Profile: c.profile})
	received := 0

	config.DebugLog.Printf("[conversation] submit model=%s max_tokens=%d messages=%d",
		req.Model, req.MaxTokens, len(req.Messages))

	err := c.client.Complete(ctx, req, func(f completion.Fragment) error {
		received++
		r.Render(f)
		return nil
	})

	if err != nil && received == 0 {
		c.messages = c.messages[:len(c.messages)-1]
		config.DebugLog.Printf("[conversation] request failed before reply: %v", err)
		return err
	}

	if err != nil {
		// End on a fresh line so the prompt does not follow the partial reply.
		r.Render(completion.Absent())
	}
	c.messages = append(c.messages, r.Finalize())

	if err != nil {
		config.DebugLog.Printf("[conversation] reply interrupted after %d fragments: %v", received, err)
		return &InterruptedError{Err: err}
	}
	config.DebugLog.Printf("[conversation] reply complete, %d fragments", received)
	return nil
}

// =============================================================================
// HISTORY EDITING
// =============================================================================

// Clear drops everything but the system message and starts a new
// conversation id for the next Save.
func (c *Conversation) Clear() {
	c.messages = c.messages[:1]
	c.id = ""
}

// UndoLastTurn removes the trailing user/assistant pair. With only the
// system message left it does nothing; a dangling user message is removed
// on its own.
func (c *Conversation) UndoLastTurn() {
	n := len(c.messages)
	switch {
	case n <= 1:
		return
	case c.messages[n-1].Role == completion.RoleUser:
		c.messages = c.messages[:n-1]
	case n >= 3:
		c.messages = c.messages[:n-2]
	default:
		c.messages = c.messages[:1]
	}
}

// Messages returns a copy of the history.
func (c *Conversation) Messages() []completion.Message {
	return append([]completion.Message(nil), c.messages...)
}

// Len returns the number of messages, including the system message.
func (c *Conversation) Len() int {
	return len(c.messages)
}

// LastReply returns the most recent assistant message's content.
func (c *Conversation) LastReply() (string, bool) {
	for i := len(c.messages) - 1; i > 0; i-- {
		if c.messages[i].Role == completion.RoleAssistant {
			return c.messages[i].Content, true
		}
	}
	return "", false
}

// =============================================================================
// SETTINGS
// =============================================================================

// Model returns the model used for the next turn.
func (c *Conversation) Model() string { return c.model }

// SetModel sets the model used for the next turn.
func (c *Conversation) SetModel(model string) { c.model = model }

// MaxTokens returns the token budget for the next reply.
func (c *Conversation) MaxTokens() int { return c.maxTokens }

// SetMaxTokens sets the token budget for the next reply.
func (c *Conversation) SetMaxTokens(n int) { c.maxTokens = n }

// SetHighlighter swaps the code highlighter for later turns.
func (c *Conversation) SetHighlighter(hl render.Highlighter) { c.hl = hl }

// =============================================================================
// PERSISTENCE
// =============================================================================

// ID returns the id assigned by the last Save, or "" before the first one.
func (c *Conversation) ID() string { return c.id }

// Snapshot returns the history in storage form, with the id from the
// last Save.
func (c *Conversation) Snapshot() *storage.StoredConversation {
	stored := &storage.StoredConversation{
		ID:        c.id,
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages:  make([]storage.StoredMessage, len(c.messages)),
	}
	for i, m := range c.messages {
		stored.Messages[i] = storage.StoredMessage{Role: string(m.Role), Content: m.Content}
	}
	return stored
}

// Save hands the history to the configured Saver. A conversation holding
// only the system message is not saved.
func (c *Conversation) Save() error {
	if len(c.messages) <= 1 {
		return nil
	}

	id, err := c.saver.Save(c.Snapshot())
	if err != nil {
		return fmt.Errorf("failed to save conversation: %w", err)
	}
	c.id = id
	return nil
}
