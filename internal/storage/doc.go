// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides conversation persistence for gpterm.
//
// Three backends share the Store interface:
//
//   - NopStore: accepts saves and keeps nothing (the default)
//   - JSONStore: one JSON file per conversation, written atomically
//   - SQLiteStore: a single database file via the pure Go modernc driver
//
// # Storage Location
//
// By default conversations live under ~/.gpterm/conversations/, either as
// conv_<uuid>.json files or in conversations.db.
//
// # Usage
//
//	store, err := storage.Open(cfg.Storage)
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//	id, err := store.Save(conv)
package storage
