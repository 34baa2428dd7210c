// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"strings"
	"unicode"
)

// ParseResult contains the result of parsing user input.
type ParseResult struct {
	// IsCommand is true if the input starts with /
	IsCommand bool

	// Command is the matched command (nil if not found)
	Command *Command

	// CommandName is the raw command name (e.g., "/help")
	CommandName string

	// Args are the parsed arguments
	Args []string
}

// Parser handles parsing of slash commands and their arguments.
type Parser struct {
	registry *Registry
}

// NewParser creates a new parser with the given registry.
func NewParser(registry *Registry) *Parser {
	return &Parser{registry: registry}
}

// Parse parses user input. IsCommand is false for anything not starting
// with "/", which the caller treats as a chat turn.
func (p *Parser) Parse(input string) ParseResult {
	input = strings.TrimSpace(input)
	if !strings.HasPrefix(input, "/") {
		return ParseResult{}
	}

	result := ParseResult{IsCommand: true}
	parts := splitCommandLine(input)
	if len(parts) == 0 {
		return result
	}

	result.CommandName = parts[0]
	result.Args = parts[1:]
	result.Command = p.registry.Get(result.CommandName)
	return result
}

// splitCommandLine splits a command line into tokens. Single or double
// quotes group words; a backslash inside quotes escapes a quote or
// backslash.
func splitCommandLine(input string) []string {
	var (
		tokens  []string
		current strings.Builder
		quote   rune
		started bool
		escaped bool
	)

	flush := func() {
		if started {
			tokens = append(tokens, current.String())
			current.Reset()
			started = false
		}
	}

	for _, r := range input {
		switch {
		case escaped:
			if r != quote && r != '\\' {
				current.WriteRune('\\')
			}
			current.WriteRune(r)
			escaped = false

		case quote != 0 && r == '\\':
			escaped = true

		case quote != 0 && r == quote:
			quote = 0

		case quote == 0 && (r == '"' || r == '\''):
			quote = r
			started = true

		case quote == 0 && unicode.IsSpace(r):
			flush()

		default:
			current.WriteRune(r)
			started = true
		}
	}
	flush()

	return tokens
}
