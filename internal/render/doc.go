// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render turns a streamed model reply into formatted terminal
// output while collecting the literal reply text for history.
//
// The parser is a single-pass, character-level state machine with one
// character of lookback (the pending backtick counter) and no lookahead.
// Step is a pure transition over State; Renderer owns the I/O around it.
//
// # Formatting
//
//   - Three backticks open or close a fenced code block. The text after an
//     opening fence up to the newline is the language tag, shown in a boxed
//     header above a separator rule.
//   - Code lines are buffered and passed to the Highlighter one full line at
//     a time.
//   - A single backtick toggles an inline span rendered in inverse video.
//   - Backticks themselves are never printed.
//
// Fragment boundaries carry no meaning: a fence or language tag split
// across fragments renders exactly as if it had arrived whole.
//
// # Usage
//
//	r := render.NewRenderer(os.Stdout, highlighter, width)
//	for each fragment {
//	    r.Render(fragment)
//	}
//	msg := r.Finalize()
package render
