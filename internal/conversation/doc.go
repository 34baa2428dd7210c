// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package conversation owns the dialogue history and runs one turn at a
// time against a completion.Client, rendering each reply as it streams.
//
// History always starts with exactly one system message. A finished turn
// appends the user message and the assistant reply; Clear drops everything
// after the system message and UndoLastTurn removes the trailing pair.
package conversation
