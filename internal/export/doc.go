// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes conversations to files.
//
// # Key Types
//
//   - Exporter: converts a StoredConversation to bytes in one format
//   - Options: output directory and metadata switch
//
// # Supported Formats
//
//   - Markdown: readable transcript, code fences kept as written
//   - JSON: the stored conversation as is
//
// # Usage
//
//	path, err := export.ExportToFile(conv.Snapshot(), export.NewMarkdownExporter(nil), nil)
package export
