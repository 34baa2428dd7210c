// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// sqliteSchema creates the tables on first open.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS conversations (
	id         TEXT PRIMARY KEY,
	summary    TEXT NOT NULL,
	model      TEXT NOT NULL,
	max_tokens INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	conversation_id TEXT NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
	position        INTEGER NOT NULL,
	role            TEXT NOT NULL,
	content         TEXT NOT NULL,
	PRIMARY KEY (conversation_id, position)
);

CREATE INDEX IF NOT EXISTS idx_conversations_updated ON conversations(updated_at);
`

// SQLiteStore keeps conversations in a single SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) dir/conversations.db.
func NewSQLiteStore(dir string) (*SQLiteStore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create conversation directory: %w", err)
	}
	return OpenSQLite(filepath.Join(dir, "conversations.db"))
}

// OpenSQLite opens the database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer; avoids SQLITE_BUSY between pooled connections.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Save upserts the conversation and replaces its messages.
func (s *SQLiteStore) Save(conv *StoredConversation) (string, error) {
	prepare(conv)

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO conversations (id, summary, model, max_tokens, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			summary = excluded.summary,
			model = excluded.model,
			max_tokens = excluded.max_tokens,
			updated_at = excluded.updated_at`,
		conv.ID, conv.Summary, conv.Model, conv.MaxTokens,
		conv.CreatedAt.UnixNano(), conv.UpdatedAt.UnixNano())
	if err != nil {
		return "", fmt.Errorf("failed to save conversation: %w", err)
	}

	if _, err := tx.Exec("DELETE FROM messages WHERE conversation_id = ?", conv.ID); err != nil {
		return "", fmt.Errorf("failed to clear messages: %w", err)
	}
	for i, msg := range conv.Messages {
		_, err := tx.Exec(
			"INSERT INTO messages (conversation_id, position, role, content) VALUES (?, ?, ?, ?)",
			conv.ID, i, msg.Role, msg.Content)
		if err != nil {
			return "", fmt.Errorf("failed to save message %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit: %w", err)
	}
	return conv.ID, nil
}

// Load retrieves a conversation by ID.
func (s *SQLiteStore) Load(id string) (*StoredConversation, error) {
	conv := &StoredConversation{ID: id}
	var created, updated int64

	err := s.db.QueryRow(
		"SELECT summary, model, max_tokens, created_at, updated_at FROM conversations WHERE id = ?", id,
	).Scan(&conv.Summary, &conv.Model, &conv.MaxTokens, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrConversationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}
	conv.CreatedAt = time.Unix(0, created)
	conv.UpdatedAt = time.Unix(0, updated)

	rows, err := s.db.Query(
		"SELECT role, content FROM messages WHERE conversation_id = ? ORDER BY position", id)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var msg StoredMessage
		if err := rows.Scan(&msg.Role, &msg.Content); err != nil {
			return nil, fmt.Errorf("failed to read message: %w", err)
		}
		conv.Messages = append(conv.Messages, msg)
	}
	return conv, rows.Err()
}

// List returns all saved conversations, most recent first.
func (s *SQLiteStore) List() ([]ConversationMeta, error) {
	rows, err := s.db.Query(`
		SELECT c.id, c.summary, c.model, c.updated_at, COUNT(m.position)
		FROM conversations c
		LEFT JOIN messages m ON m.conversation_id = c.id
		GROUP BY c.id
		ORDER BY c.updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer rows.Close()

	metas := []ConversationMeta{}
	for rows.Next() {
		var meta ConversationMeta
		var updated int64
		if err := rows.Scan(&meta.ID, &meta.Summary, &meta.Model, &updated, &meta.MessageCount); err != nil {
			return nil, fmt.Errorf("failed to read conversation row: %w", err)
		}
		meta.UpdatedAt = time.Unix(0, updated)
		metas = append(metas, meta)
	}
	return metas, rows.Err()
}

// Delete removes a conversation and its messages.
func (s *SQLiteStore) Delete(id string) error {
	res, err := s.db.Exec("DELETE FROM conversations WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrConversationNotFound
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
