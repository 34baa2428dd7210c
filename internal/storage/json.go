// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jeranaias/gpterm/internal/util"
)

// JSONStore keeps one JSON file per conversation.
type JSONStore struct {
	// BaseDir is the directory holding conversation files.
	BaseDir string
	// MaxConversations limits stored conversations (0 = unlimited).
	MaxConversations int
}

// NewJSONStore creates a store in dir, creating the directory if needed.
func NewJSONStore(dir string) (*JSONStore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create conversation directory: %w", err)
	}
	return &JSONStore{BaseDir: dir, MaxConversations: 100}, nil
}

// Save persists a conversation and returns its ID.
func (s *JSONStore) Save(conv *StoredConversation) (string, error) {
	prepare(conv)

	data, err := json.MarshalIndent(conv, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode conversation: %w", err)
	}
	if err := util.AtomicWriteFile(s.filePath(conv.ID), data, 0600); err != nil {
		return "", err
	}

	if s.MaxConversations > 0 {
		s.enforceLimit()
	}
	return conv.ID, nil
}

// enforceLimit removes the oldest conversations beyond MaxConversations.
func (s *JSONStore) enforceLimit() {
	metas, err := s.List()
	if err != nil || len(metas) <= s.MaxConversations {
		return
	}
	// List is newest first.
	for _, meta := range metas[s.MaxConversations:] {
		s.Delete(meta.ID)
	}
}

// Load retrieves a conversation by ID.
func (s *JSONStore) Load(id string) (*StoredConversation, error) {
	data, err := os.ReadFile(s.filePath(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}

	var conv StoredConversation
	if err := json.Unmarshal(data, &conv); err != nil {
		return nil, fmt.Errorf("failed to decode conversation %s: %w", id, err)
	}
	return &conv, nil
}

// List returns all saved conversations, most recent first. Unreadable files
// are skipped.
func (s *JSONStore) List() ([]ConversationMeta, error) {
	entries, err := os.ReadDir(s.BaseDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []ConversationMeta{}, nil
		}
		return nil, err
	}

	metas := []ConversationMeta{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		conv, err := s.Load(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			continue
		}
		metas = append(metas, ConversationMeta{
			ID:           conv.ID,
			Summary:      conv.Summary,
			Model:        conv.Model,
			UpdatedAt:    conv.UpdatedAt,
			MessageCount: len(conv.Messages),
		})
	}

	sort.Slice(metas, func(i, j int) bool {
		return metas[i].UpdatedAt.After(metas[j].UpdatedAt)
	})
	return metas, nil
}

// Delete removes a conversation by ID.
func (s *JSONStore) Delete(id string) error {
	if err := os.Remove(s.filePath(id)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrConversationNotFound
		}
		return err
	}
	return nil
}

// Close implements Store.
func (s *JSONStore) Close() error { return nil }

// filePath returns the file path for a conversation ID. The base name
// strips any directory parts so an ID cannot escape BaseDir.
func (s *JSONStore) filePath(id string) string {
	return filepath.Join(s.BaseDir, filepath.Base(id)+".json")
}
