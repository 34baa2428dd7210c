// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package highlight colours code lines for the terminal using chroma.
//
// Chroma satisfies render.Highlighter: Resolve maps a language tag to a
// lexer, falling back to content-based guessing when the tag is empty or
// unknown, and HighlightLine formats a single line with the terminal256
// formatter.
package highlight
