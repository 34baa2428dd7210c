// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across gpterm.
//
// # Key Functions
//
// File Operations:
//   - AtomicWriteFile: crash-safe file writing with fsync
//
// String Utilities:
//   - TruncateWidth: display-width aware truncation with ellipsis
//   - FirstLine: first non-blank line of a block of text
//   - DisplayWidth: terminal column width of styled or plain text
//
// # Usage
//
//	// Write the conversation file atomically
//	err := util.AtomicWriteFile(path, data, 0600)
//
//	// Shorten a reply for a one-line summary
//	summary := util.TruncateWidth(util.FirstLine(reply), 60)
package util
