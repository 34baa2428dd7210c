// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line parsing and the interactive chat loop
// for gpterm.
//
// # Key Types
//
//   - Command: the top-level command (chat, version, help)
//   - Args: parsed flags that override configuration
//   - ChatSession: the dialogue loop over one conversation
//   - SettingsModel: bubbletea selector for model and max tokens
//
// # Usage
//
//	cmd, args, err := cli.Parse(os.Args[1:])
//	switch cmd {
//	case cli.CmdChat:
//	    err = cli.RunChat(ctx, args)
//	case cli.CmdVersion:
//	    cli.PrintVersion(os.Stdout)
//	}
//
// # Dialogue Loop
//
// Each line read from the terminal is either a slash command, handled by
// the commands package, or a user turn submitted to the conversation.
// Ctrl+C while a reply streams cancels that reply; the partial text is
// kept. Ctrl+D saves the conversation and exits.
package cli
