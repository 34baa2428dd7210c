// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jeranaias/gpterm/internal/config"
	"github.com/jeranaias/gpterm/internal/conversation"
	"github.com/jeranaias/gpterm/internal/storage"
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// Command represents a slash command that can be executed.
type Command struct {
	// Name is the primary command name (e.g., "/help")
	Name string

	// Aliases are alternative names (e.g., "/h", "/?")
	Aliases []string

	// Description is shown in help
	Description string

	// Usage shows argument syntax (e.g., "/model [index|name]")
	Usage string

	// Handler executes the command
	Handler func(ctx *Context, args []string) error

	// Hidden commands don't appear in help
	Hidden bool
}

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Prompter asks the user for one line of input. liner.State satisfies it.
type Prompter interface {
	Prompt(prompt string) (string, error)
}

// SettingsFunc runs the interactive settings selector with the current
// values and returns the edited ones. ok is false when the user cancelled.
type SettingsFunc func(model string, maxTokens int) (newModel string, newMaxTokens int, ok bool, err error)

// Context is what a command handler may act on.
type Context struct {
	Conv   *conversation.Conversation
	Config *config.Config
	Out    io.Writer
	Prompt Prompter
	Store  storage.Store

	// Settings runs the settings selector; nil disables /settings.
	Settings SettingsFunc
	// Clipboard copies text; defaults to the system clipboard.
	Clipboard func(text string) error
	// Languages lists highlightable languages for /languages.
	Languages func() []string
}

func (c *Context) printf(format string, args ...any) {
	fmt.Fprintf(c.Out, format, args...)
}

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrQuit is returned by /exit. The REPL saves and leaves.
	ErrQuit = errors.New("quit requested")

	// ErrUnknownCommand is returned for a name no command answers to.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrCancelled is returned when the user aborts an interactive prompt.
	ErrCancelled = errors.New("cancelled")
)

// =============================================================================
// COMMAND REGISTRY
// =============================================================================

// Registry holds all registered commands.
type Registry struct {
	commands map[string]*Command
	aliases  map[string]*Command
}

// NewRegistry creates a registry with all built-in commands.
func NewRegistry() *Registry {
	r := &Registry{
		commands: make(map[string]*Command),
		aliases:  make(map[string]*Command),
	}
	r.registerBuiltins()
	return r
}

// Register adds a command, replacing any with the same name.
func (r *Registry) Register(cmd *Command) {
	r.commands[cmd.Name] = cmd
	for _, alias := range cmd.Aliases {
		r.aliases[alias] = cmd
	}
}

// Get retrieves a command by name or alias, case-insensitively.
func (r *Registry) Get(name string) *Command {
	name = strings.ToLower(name)
	if cmd, ok := r.commands[name]; ok {
		return cmd
	}
	if cmd, ok := r.aliases[name]; ok {
		return cmd
	}
	return nil
}

// All returns all visible commands sorted by name.
func (r *Registry) All() []*Command {
	cmds := make([]*Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		if !cmd.Hidden {
			cmds = append(cmds, cmd)
		}
	}
	sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name < cmds[j].Name })
	return cmds
}

// Complete returns command names and aliases starting with the typed
// prefix, for line editing completion.
func (r *Registry) Complete(line string) []string {
	if !strings.HasPrefix(line, "/") || strings.ContainsAny(line, " \t") {
		return nil
	}
	prefix := strings.ToLower(line)

	var out []string
	for name, cmd := range r.commands {
		if !cmd.Hidden && strings.HasPrefix(name, prefix) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Execute runs a parsed command.
func (r *Registry) Execute(ctx *Context, result ParseResult) error {
	if result.Command == nil {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, result.CommandName)
	}
	config.DebugLog.Printf("[commands] %s %q", result.Command.Name, result.Args)
	return result.Command.Handler(ctx, result.Args)
}
