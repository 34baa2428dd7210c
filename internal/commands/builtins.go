// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/sahilm/fuzzy"

	"github.com/jeranaias/gpterm/internal/export"
	"github.com/jeranaias/gpterm/internal/util"
)

// Retry messages shown by the numeric prompts.
const (
	msgInvalidInput = "Invalid input! Try again."
	msgOutOfRange   = "Input out of range!"
)

func (r *Registry) registerBuiltins() {
	r.Register(&Command{
		Name:        "/help",
		Aliases:     []string{"/h", "/?"},
		Description: "Show available commands",
		Usage:       "/help",
		Handler:     r.handleHelp,
	})

	r.Register(&Command{
		Name:        "/exit",
		Aliases:     []string{"/quit", "/q"},
		Description: "Save the conversation and exit",
		Usage:       "/exit",
		Handler:     handleExit,
	})

	r.Register(&Command{
		Name:        "/new",
		Aliases:     []string{"/clear"},
		Description: "Save, then start a new conversation",
		Usage:       "/new",
		Handler:     handleNew,
	})

	r.Register(&Command{
		Name:        "/model",
		Aliases:     []string{"/m"},
		Description: "Pick the model for the next turns",
		Usage:       "/model [index|name]",
		Handler:     handleModel,
	})

	r.Register(&Command{
		Name:        "/max_tokens",
		Aliases:     []string{"/tokens"},
		Description: "Set the reply token budget",
		Usage:       "/max_tokens [n]",
		Handler:     handleMaxTokens,
	})

	r.Register(&Command{
		Name:        "/undo",
		Aliases:     []string{"/u"},
		Description: "Drop the last exchange",
		Usage:       "/undo",
		Handler:     handleUndo,
	})

	r.Register(&Command{
		Name:        "/debug",
		Description: "Print settings and the full history",
		Usage:       "/debug",
		Handler:     handleDebug,
	})

	r.Register(&Command{
		Name:        "/settings",
		Aliases:     []string{"/s"},
		Description: "Edit model and max tokens interactively",
		Usage:       "/settings",
		Handler:     handleSettings,
	})

	r.Register(&Command{
		Name:        "/copy",
		Aliases:     []string{"/c"},
		Description: "Copy the last reply to the clipboard",
		Usage:       "/copy",
		Handler:     handleCopy,
	})

	r.Register(&Command{
		Name:        "/save",
		Description: "Save the conversation now",
		Usage:       "/save",
		Handler:     handleSave,
	})

	r.Register(&Command{
		Name:        "/history",
		Description: "List saved conversations",
		Usage:       "/history",
		Handler:     handleHistory,
	})

	r.Register(&Command{
		Name:        "/export",
		Description: "Write the conversation to a file",
		Usage:       "/export [markdown|json] [dir]",
		Handler:     handleExport,
	})

	r.Register(&Command{
		Name:        "/languages",
		Aliases:     []string{"/langs"},
		Description: "List languages the highlighter knows",
		Usage:       "/languages [filter]",
		Handler:     handleLanguages,
	})
}

// =============================================================================
// HANDLERS
// =============================================================================

func handleExit(ctx *Context, args []string) error {
	return ErrQuit
}

func handleNew(ctx *Context, args []string) error {
	if err := ctx.Conv.Save(); err != nil {
		return err
	}
	ctx.Conv.Clear()
	ctx.printf("Started a new conversation.\n")
	return nil
}

func handleModel(ctx *Context, args []string) error {
	models := ctx.Config.Models

	if len(args) > 0 {
		choice, note := matchModel(models, strings.Join(args, " "))
		if note != "" {
			ctx.printf("%s\n", note)
		}
		ctx.Conv.SetModel(choice)
		ctx.printf("Model set to %s\n", choice)
		return nil
	}

	if len(models) == 0 {
		ctx.printf("No models configured. Use /model <name>.\n")
		return nil
	}

	for i, m := range models {
		marker := " "
		if m == ctx.Conv.Model() {
			marker = "*"
		}
		ctx.printf("%s %d. %s\n", marker, i+1, m)
	}

	n, err := promptInt(ctx, fmt.Sprintf("Select model [1-%d]: ", len(models)), 1, len(models))
	if err != nil {
		return err
	}
	ctx.Conv.SetModel(models[n-1])
	ctx.printf("Model set to %s\n", models[n-1])
	return nil
}

// matchModel resolves a /model argument: a 1-based catalogue index, an exact
// name, the best fuzzy match, or else the literal text. note explains any
// choice that is not an exact hit.
func matchModel(models []string, arg string) (choice, note string) {
	arg = strings.TrimSpace(arg)

	if n, err := strconv.Atoi(arg); err == nil {
		if n >= 1 && n <= len(models) {
			return models[n-1], ""
		}
		return arg, msgOutOfRange + " Using it as a model name."
	}

	for _, m := range models {
		if strings.EqualFold(m, arg) {
			return m, ""
		}
	}

	if matches := fuzzy.Find(arg, models); len(matches) > 0 {
		return matches[0].Str, fmt.Sprintf("Matched %q to %s", arg, matches[0].Str)
	}

	return arg, fmt.Sprintf("%s is not in the catalogue; sending it as is.", arg)
}

func handleMaxTokens(ctx *Context, args []string) error {
	var n int
	if len(args) > 0 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v <= 0 {
			return fmt.Errorf("max tokens must be a positive integer, got %q", args[0])
		}
		n = v
	} else {
		ctx.printf("Current max tokens: %d\n", ctx.Conv.MaxTokens())
		v, err := promptInt(ctx, "New max tokens: ", 1, 0)
		if err != nil {
			return err
		}
		n = v
	}

	ctx.Conv.SetMaxTokens(n)
	ctx.printf("Max tokens set to %d\n", n)
	return nil
}

// promptInt asks until the answer is an integer in [lo, hi]. hi <= 0
// means no upper bound. A prompt error (Ctrl+C, EOF) cancels.
func promptInt(ctx *Context, prompt string, lo, hi int) (int, error) {
	if ctx.Prompt == nil {
		return 0, ErrCancelled
	}
	for {
		line, err := ctx.Prompt.Prompt(prompt)
		if err != nil {
			return 0, ErrCancelled
		}
		n, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil {
			ctx.printf("%s\n", msgInvalidInput)
			continue
		}
		if n < lo || (hi > 0 && n > hi) {
			ctx.printf("%s\n", msgOutOfRange)
			continue
		}
		return n, nil
	}
}

func handleUndo(ctx *Context, args []string) error {
	before := ctx.Conv.Len()
	ctx.Conv.UndoLastTurn()
	if ctx.Conv.Len() == before {
		ctx.printf("Nothing to undo.\n")
		return nil
	}
	ctx.printf("Removed the last exchange.\n")
	return nil
}

func handleDebug(ctx *Context, args []string) error {
	ctx.printf("model: %s\n", ctx.Conv.Model())
	ctx.printf("max_tokens: %d\n", ctx.Conv.MaxTokens())
	for _, m := range ctx.Conv.Messages() {
		ctx.printf("%s: %s\n", m.Role, m.Content)
	}
	return nil
}

func handleSettings(ctx *Context, args []string) error {
	if ctx.Settings == nil {
		return errors.New("settings selector needs an interactive terminal")
	}
	model, maxTokens, ok, err := ctx.Settings(ctx.Conv.Model(), ctx.Conv.MaxTokens())
	if err != nil {
		return fmt.Errorf("settings: %w", err)
	}
	if !ok {
		return nil
	}
	ctx.Conv.SetModel(model)
	ctx.Conv.SetMaxTokens(maxTokens)
	ctx.printf("Model: %s, max tokens: %d\n", model, maxTokens)
	return nil
}

func handleCopy(ctx *Context, args []string) error {
	reply, ok := ctx.Conv.LastReply()
	if !ok {
		ctx.printf("No reply to copy yet.\n")
		return nil
	}
	write := ctx.Clipboard
	if write == nil {
		write = clipboard.WriteAll
	}
	if err := write(reply); err != nil {
		return fmt.Errorf("failed to copy to clipboard: %w", err)
	}
	ctx.printf("Copied %d characters.\n", len([]rune(reply)))
	return nil
}

func handleSave(ctx *Context, args []string) error {
	if err := ctx.Conv.Save(); err != nil {
		return err
	}
	if ctx.Conv.ID() == "" {
		ctx.printf("Nothing to save yet.\n")
		return nil
	}
	ctx.printf("Saved as %s\n", ctx.Conv.ID())
	return nil
}

func handleHistory(ctx *Context, args []string) error {
	if ctx.Store == nil {
		ctx.printf("Conversation storage is disabled.\n")
		return nil
	}
	metas, err := ctx.Store.List()
	if err != nil {
		return fmt.Errorf("failed to list conversations: %w", err)
	}
	if len(metas) == 0 {
		ctx.printf("No saved conversations.\n")
		return nil
	}
	for _, m := range metas {
		ctx.printf("%s  %s  %-20s %s\n",
			m.UpdatedAt.Local().Format("2006-01-02 15:04"),
			m.ID,
			util.TruncateWidth(m.Model, 20),
			m.Summary)
	}
	return nil
}

func handleExport(ctx *Context, args []string) error {
	format, dir := "markdown", "."
	if len(args) > 0 {
		format = args[0]
	}
	if len(args) > 1 {
		dir = args[1]
	}

	if ctx.Conv.Len() <= 1 {
		ctx.printf("Nothing to export yet.\n")
		return nil
	}

	opts := export.DefaultOptions()
	opts.OutputDir = dir
	exporter, err := export.ForFormat(format, opts)
	if err != nil {
		return err
	}
	path, err := export.ExportToFile(ctx.Conv.Snapshot(), exporter, opts)
	if err != nil {
		return err
	}
	ctx.printf("Exported to %s\n", path)
	return nil
}

func handleLanguages(ctx *Context, args []string) error {
	if ctx.Languages == nil {
		return nil
	}
	filter := ""
	if len(args) > 0 {
		filter = strings.ToLower(args[0])
	}
	var names []string
	for _, name := range ctx.Languages() {
		if filter == "" || strings.Contains(strings.ToLower(name), filter) {
			names = append(names, name)
		}
	}
	ctx.printf("%s\n", strings.Join(names, ", "))
	return nil
}
