// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
)

// HelpMarkdown renders the command table as markdown.
func (r *Registry) HelpMarkdown() string {
	var b strings.Builder
	b.WriteString("# Commands\n\n")
	b.WriteString("| Command | Aliases | Description |\n")
	b.WriteString("|---|---|---|\n")
	for _, cmd := range r.All() {
		fmt.Fprintf(&b, "| `%s` | %s | %s |\n", cmd.Usage, strings.Join(cmd.Aliases, " "), cmd.Description)
	}
	b.WriteString("\nAnything not starting with `/` is sent to the model. ")
	b.WriteString("Press Ctrl+C to stop a reply, Ctrl+D to save and quit.\n")
	return b.String()
}

func (r *Registry) handleHelp(ctx *Context, args []string) error {
	md := r.HelpMarkdown()

	style := "dark"
	if ctx.Config != nil && ctx.Config.UI.NoColor {
		style = "notty"
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		ctx.printf("%s", md)
		return nil
	}
	out, err := renderer.Render(md)
	if err != nil {
		ctx.printf("%s", md)
		return nil
	}
	ctx.printf("%s", out)
	return nil
}
