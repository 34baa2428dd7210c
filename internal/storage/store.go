// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/gpterm/internal/config"
	"github.com/jeranaias/gpterm/internal/util"
)

// =============================================================================
// STORED TYPES
// =============================================================================

// StoredConversation represents a persisted conversation.
type StoredConversation struct {
	ID        string          `json:"id"`
	Summary   string          `json:"summary"`
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	Messages  []StoredMessage `json:"messages"`
}

// StoredMessage represents a persisted message.
type StoredMessage struct {
	Role    string `json:"role"` // "system", "user", "assistant"
	Content string `json:"content"`
}

// ConversationMeta contains metadata for listing conversations.
type ConversationMeta struct {
	ID           string    `json:"id"`
	Summary      string    `json:"summary"`
	Model        string    `json:"model"`
	UpdatedAt    time.Time `json:"updated_at"`
	MessageCount int       `json:"message_count"`
}

// =============================================================================
// STORE INTERFACE
// =============================================================================

// Saver is the only capability the conversation needs.
type Saver interface {
	// Save persists conv, assigning an ID when it has none, and returns
	// the ID.
	Save(conv *StoredConversation) (string, error)
}

// Store is a full persistence backend.
type Store interface {
	Saver
	Load(id string) (*StoredConversation, error)
	List() ([]ConversationMeta, error)
	Delete(id string) error
	Close() error
}

// ErrConversationNotFound is returned when a conversation doesn't exist.
var ErrConversationNotFound = errors.New("conversation not found")

// Open returns the Store selected by cfg.
func Open(cfg config.StorageConfig) (Store, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", config.BackendNone:
		return NopStore{}, nil
	case config.BackendJSON:
		store, err := NewJSONStore(cfg.Dir)
		if err != nil {
			return nil, err
		}
		store.MaxConversations = cfg.MaxConversations
		return store, nil
	case config.BackendSQLite:
		return NewSQLiteStore(cfg.Dir)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// =============================================================================
// HELPERS
// =============================================================================

// NewConversationID creates a unique conversation ID.
func NewConversationID() string {
	return "conv_" + uuid.NewString()
}

// prepare fills in the ID, summary and timestamps before a save.
func prepare(conv *StoredConversation) {
	if conv.ID == "" {
		conv.ID = NewConversationID()
	}
	if conv.Summary == "" {
		conv.Summary = Summarize(conv)
	}
	conv.UpdatedAt = time.Now()
	if conv.CreatedAt.IsZero() {
		conv.CreatedAt = conv.UpdatedAt
	}
}

// Summarize uses the first user message, shortened to one line.
func Summarize(conv *StoredConversation) string {
	for _, msg := range conv.Messages {
		if msg.Role == "user" {
			if line := util.FirstLine(msg.Content); line != "" {
				return util.TruncateWidth(line, 50)
			}
		}
	}
	return "New conversation"
}

// NopStore discards every save.
type NopStore struct{}

// Save implements Saver. The conversation keeps whatever ID it had.
func (NopStore) Save(conv *StoredConversation) (string, error) { return conv.ID, nil }

// Load implements Store.
func (NopStore) Load(string) (*StoredConversation, error) { return nil, ErrConversationNotFound }

// List implements Store.
func (NopStore) List() ([]ConversationMeta, error) { return nil, nil }

// Delete implements Store.
func (NopStore) Delete(string) error { return ErrConversationNotFound }

// Close implements Store.
func (NopStore) Close() error { return nil }
