// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdChat Command = iota
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments. Zero values leave the configuration
// untouched.
type Args struct {
	Model      string
	MaxTokens  int
	ConfigPath string
	NoColor    bool
	Debug      bool
}

const usageText = `gpterm - chat with a language model in your terminal

Replies stream as they arrive. Fenced code blocks are framed and
highlighted, inline code is shown in inverse video.

Usage:
  gpterm [flags]             Start a chat (default)
  gpterm chat [flags]        Start a chat
  gpterm version             Show version information
  gpterm help                Show this help

Flags:
  -m, --model NAME           Model to use (overrides config)
  -t, --max-tokens N         Reply token budget (overrides config)
  -c, --config PATH          Config file (default ~/.gpterm/config.toml)
      --no-color             Disable colours
      --debug                Write a debug log to ~/.gpterm/debug.log

Environment:
  OPENAI_API_KEY             API key (MY_OPENAI_API_KEY also accepted)
  OPENAI_ORGANIZATION        Organization id (MY_OPENAI_ORGANIZATION also accepted)
  GPTERM_PROVIDER            openai, anthropic, ollama or openrouter
  NO_COLOR                   Disable colours

Type /help inside a chat for the command list.

Version: %s
`

// PrintUsage prints the usage/help text.
func PrintUsage(w io.Writer) {
	fmt.Fprintf(w, usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion(w io.Writer) {
	fmt.Fprintf(w, "gpterm version %s\n", Version)
	fmt.Fprintf(w, "  Git commit: %s\n", GitCommit)
	fmt.Fprintf(w, "  Build date: %s\n", BuildDate)
}

// Parse parses command-line arguments (without the program name).
func Parse(argv []string) (Command, Args, error) {
	remaining, args, err := parseGlobalFlags(argv)
	if err != nil {
		return CmdHelp, args, err
	}

	if len(remaining) == 0 {
		return CmdChat, args, nil
	}

	switch strings.ToLower(remaining[0]) {
	case "chat":
		if len(remaining) > 1 {
			return CmdHelp, args, NewUsageError(fmt.Sprintf("unexpected argument %q", remaining[1]))
		}
		return CmdChat, args, nil
	case "version", "-v", "--version":
		return CmdVersion, args, nil
	case "help", "-h", "--help":
		return CmdHelp, args, nil
	default:
		return CmdHelp, args, NewUsageError(fmt.Sprintf("unknown command %q", remaining[0]))
	}
}

// parseGlobalFlags extracts flags from args and returns remaining args.
// Flags take "--flag value" or "--flag=value".
func parseGlobalFlags(argv []string) ([]string, Args, error) {
	var (
		remaining []string
		args      Args
	)

	for i := 0; i < len(argv); i++ {
		arg := argv[i]

		name, value, hasValue := strings.Cut(arg, "=")
		if !strings.HasPrefix(arg, "-") {
			remaining = append(remaining, arg)
			continue
		}

		// next returns the flag value, from "=" or the following argument.
		next := func() (string, error) {
			if hasValue {
				return value, nil
			}
			if i+1 >= len(argv) {
				return "", NewUsageError(fmt.Sprintf("flag %s needs a value", name))
			}
			i++
			return argv[i], nil
		}

		switch name {
		case "-m", "--model":
			v, err := next()
			if err != nil {
				return nil, args, err
			}
			args.Model = v
		case "-t", "--max-tokens":
			v, err := next()
			if err != nil {
				return nil, args, err
			}
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				return nil, args, NewUsageError(fmt.Sprintf("--max-tokens must be a positive integer, got %q", v))
			}
			args.MaxTokens = n
		case "-c", "--config":
			v, err := next()
			if err != nil {
				return nil, args, err
			}
			args.ConfigPath = v
		case "--no-color":
			args.NoColor = true
		case "--debug":
			args.Debug = true
		default:
			remaining = append(remaining, arg)
		}
	}

	return remaining, args, nil
}
