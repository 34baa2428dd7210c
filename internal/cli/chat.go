// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"golang.org/x/text/unicode/norm"

	"github.com/jeranaias/gpterm/internal/commands"
	"github.com/jeranaias/gpterm/internal/completion"
	"github.com/jeranaias/gpterm/internal/config"
	"github.com/jeranaias/gpterm/internal/conversation"
	"github.com/jeranaias/gpterm/internal/highlight"
	"github.com/jeranaias/gpterm/internal/render"
	"github.com/jeranaias/gpterm/internal/storage"
)

// inputPrompt follows the speaker badge on the line below it.
const inputPrompt = "> "

// =============================================================================
// INPUT HISTORY
// =============================================================================

// LineReader reads user input. ReadInput records the line in history,
// Prompt does not.
type LineReader interface {
	ReadInput(prompt string) (string, error)
	Prompt(prompt string) (string, error)
}

// ChatCLI provides input history and line editing for interactive chat.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a line editor with history loaded from historyFile and
// tab completion from complete.
func NewChatCLI(historyFile string, complete func(string) []string) *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	if complete != nil {
		line.SetCompleter(complete)
	}

	c := &ChatCLI{line: line, historyFile: historyFile}
	c.LoadHistory()
	return c
}

// LoadHistory loads command history from file.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		if _, err := c.line.ReadHistory(f); err != nil {
			config.DebugLog.Printf("[cli] read history: %v", err)
		}
		f.Close()
	}
}

// ReadInput reads a line and adds it to history when non-blank.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// Prompt reads a line without touching history.
func (c *ChatCLI) Prompt(prompt string) (string, error) {
	return c.line.Prompt(prompt)
}

// SaveHistory persists command history to file with secure permissions.
func (c *ChatCLI) SaveHistory() {
	if err := os.MkdirAll(filepath.Dir(c.historyFile), 0700); err != nil {
		return
	}

	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		config.DebugLog.Printf("[cli] save history: %v", err)
		return
	}
	defer f.Close()

	if _, err := c.line.WriteHistory(f); err != nil {
		config.DebugLog.Printf("[cli] write history: %v", err)
	}
}

// Close saves history and closes the liner.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// =============================================================================
// SESSION
// =============================================================================

// ChatSession runs the dialogue loop over one conversation.
type ChatSession struct {
	Conv     *conversation.Conversation
	Registry *commands.Registry
	Parser   *commands.Parser
	CmdCtx   *commands.Context

	// Out receives badges and replies; Err receives error reports.
	Out io.Writer
	Err io.Writer

	// Interrupt, when set, replaces SIGINT handling around each turn: the
	// returned context is cancelled on interrupt, stop releases it.
	Interrupt func(ctx context.Context) (turnCtx context.Context, stop context.CancelFunc)
}

// NewChatSession wires a session around conv. cmdCtx.Conv is set to conv.
func NewChatSession(conv *conversation.Conversation, cmdCtx *commands.Context, out, errOut io.Writer) *ChatSession {
	registry := commands.NewRegistry()
	cmdCtx.Conv = conv
	if cmdCtx.Out == nil {
		cmdCtx.Out = out
	}
	return &ChatSession{
		Conv:     conv,
		Registry: registry,
		Parser:   commands.NewParser(registry),
		CmdCtx:   cmdCtx,
		Out:      out,
		Err:      errOut,
	}
}

// Run reads lines until EOF, /exit or ctx is done, then saves.
// Ctrl+C at the prompt abandons the line being typed.
func (s *ChatSession) Run(ctx context.Context, in LineReader) error {
	if s.CmdCtx.Prompt == nil {
		s.CmdCtx.Prompt = in
	}

	for ctx.Err() == nil {
		fmt.Fprintln(s.Out)
		fmt.Fprintln(s.Out, UserBadge.Render())

		line, err := in.ReadInput(inputPrompt)
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				config.DebugLog.Printf("[cli] read input: %v", err)
			}
			fmt.Fprintln(s.Out)
			break
		}

		line = norm.NFC.String(strings.TrimSpace(line))
		if line == "" {
			continue
		}
		fmt.Fprintln(s.Out)

		if quit := s.handleLine(ctx, line); quit {
			break
		}
	}

	return s.save()
}

// handleLine dispatches one line and reports whether the loop should end.
func (s *ChatSession) handleLine(ctx context.Context, line string) bool {
	result := s.Parser.Parse(line)
	if !result.IsCommand {
		s.submit(ctx, line)
		return false
	}

	err := s.Registry.Execute(s.CmdCtx, result)
	switch {
	case err == nil:
	case errors.Is(err, commands.ErrQuit):
		return true
	case errors.Is(err, commands.ErrCancelled):
		fmt.Fprintln(s.Out, DimStyle.Render("Cancelled."))
	case errors.Is(err, commands.ErrUnknownCommand):
		DisplayError(s.Err, err)
		fmt.Fprintln(s.Err, DimStyle.Render("Type /help for the command list."))
	default:
		DisplayError(s.Err, err)
	}
	return false
}

// submit streams one reply. SIGINT during the stream cancels it.
func (s *ChatSession) submit(ctx context.Context, prompt string) {
	fmt.Fprint(s.Out, AssistantBadge.Render())

	interrupt := s.Interrupt
	if interrupt == nil {
		interrupt = func(ctx context.Context) (context.Context, context.CancelFunc) {
			return signal.NotifyContext(ctx, os.Interrupt)
		}
	}
	turnCtx, stop := interrupt(ctx)
	err := s.Conv.Submit(turnCtx, prompt)
	stop()

	var interrupted *conversation.InterruptedError
	switch {
	case err == nil:
		fmt.Fprintln(s.Out)
	case errors.As(err, &interrupted):
		fmt.Fprintln(s.Out, WarningStyle.Render("["+interrupted.Error()+"]"))
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(s.Out, WarningStyle.Render("[Cancelled]"))
	default:
		fmt.Fprintln(s.Out)
		DisplayError(s.Err, err)
	}
}

func (s *ChatSession) save() error {
	if err := s.Conv.Save(); err != nil {
		return err
	}
	if id := s.Conv.ID(); id != "" {
		config.DebugLog.Printf("[cli] saved conversation %s", id)
	}
	return nil
}

// =============================================================================
// STARTUP
// =============================================================================

// LoadConfig builds the configuration: defaults, TOML file, environment,
// then flags. The result is validated.
func LoadConfig(args Args) (*config.Config, string, error) {
	path := args.ConfigPath
	if path == "" {
		p, err := config.ConfigPath()
		if err != nil {
			return nil, "", &ConfigError{Err: err}
		}
		path = p
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, path, &ConfigError{Path: path, Err: err}
	}

	if args.Model != "" {
		cfg.Model = args.Model
	}
	if args.MaxTokens > 0 {
		cfg.MaxTokens = args.MaxTokens
	}
	if args.NoColor {
		cfg.UI.NoColor = true
	}
	if args.Debug {
		cfg.Debug = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, path, &ConfigError{Path: path, Err: err}
	}
	return cfg, path, nil
}

// RunChat starts an interactive chat session on the process terminal.
func RunChat(ctx context.Context, args Args) error {
	cfg, cfgPath, err := LoadConfig(args)
	if err != nil {
		return err
	}

	dir, err := config.ConfigDir()
	if err != nil {
		return &ConfigError{Err: err}
	}

	if cfg.Debug {
		closeLog, err := config.InitDebugLog(dir)
		if err != nil {
			return err
		}
		defer closeLog()
	}

	profile := ColorProfile(cfg.UI.NoColor)
	ApplyColorProfile(profile)

	chroma := highlight.New(cfg.UI.CodeStyle)
	var hl render.Highlighter = chroma
	if cfg.UI.NoColor {
		hl = highlight.Plain{}
	}

	client, err := completion.New(cfg)
	if err != nil {
		return err
	}

	store, err := storage.Open(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to open conversation storage: %w", err)
	}
	defer store.Close()

	conv := conversation.New(client, conversation.Options{
		Model:        cfg.Model,
		MaxTokens:    cfg.MaxTokens,
		SystemPrompt: cfg.SystemPrompt,
		Output:       os.Stdout,
		Highlighter:  hl,
		Profile:      profile,
		Width:        GetTerminalWidth,
		Saver:        store,
	})

	cmdCtx := &commands.Context{
		Config:    cfg,
		Store:     store,
		Languages: highlight.Languages,
	}
	if IsTTY() {
		cmdCtx.Settings = func(model string, maxTokens int) (string, int, bool, error) {
			return RunSettings(os.Stdin, os.Stdout, model, maxTokens)
		}
	}
	session := NewChatSession(conv, cmdCtx, os.Stdout, os.Stderr)

	watchCtx, stopWatch := context.WithCancel(ctx)
	defer stopWatch()
	go func() {
		err := config.Watch(watchCtx, cfgPath, config.DefaultWatchDebounce, func(updated *config.Config) {
			if updated.UI.CodeStyle != chroma.StyleName() {
				chroma.SetStyle(updated.UI.CodeStyle)
				config.DebugLog.Printf("[cli] code style now %s", chroma.StyleName())
			}
		})
		if err != nil {
			config.DebugLog.Printf("[cli] config watch stopped: %v", err)
		}
	}()

	config.DebugLog.Printf("[cli] chat started provider=%s model=%s storage=%s",
		cfg.Provider.Name, cfg.Model, cfg.Storage.Backend)

	input := NewChatCLI(filepath.Join(dir, "history"), session.Registry.Complete)
	defer input.Close()

	return session.Run(ctx, input)
}
