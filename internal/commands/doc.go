// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash command system for the chat REPL.
//
// Lines starting with "/" are parsed into a command name and arguments and
// dispatched through a Registry. Every other line is a chat turn.
//
// # Key Types
//
//   - Registry: command table with name and alias lookup
//   - Parser / ParseResult: splits a line into command and arguments
//   - Context: what a handler may touch (conversation, config, output)
//
// # Built-in Commands
//
//   - /help: show available commands
//   - /exit: save and leave
//   - /new: save, then start over with only the system message
//   - /model: pick a model from the catalogue
//   - /max_tokens: set the reply token budget
//   - /undo: drop the last turn
//   - /debug: dump settings and history
//   - /settings: interactive settings selector
//   - /save, /history, /export, /copy, /languages
//
// # Usage
//
//	registry := commands.NewRegistry()
//	parser := commands.NewParser(registry)
//	if result := parser.Parse(line); result.IsCommand {
//	    err := registry.Execute(ctx, result)
//	}
package commands
