// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

const (
	ruleChar = "─"
	tickChar = "┴"
	boxLeft  = "╭"
	boxRight = "╮"
	boxSide  = "│"
	minWidth = 1
)

// header draws the boxed language label above a code block:
//
//	 ╭────────╮
//	 │ python │
func header(language string) string {
	w := runewidth.StringWidth(language)
	var b strings.Builder
	b.WriteString(" " + boxLeft + strings.Repeat(ruleChar, w+2) + boxRight + "\n")
	b.WriteString(" " + boxSide + " " + language + " " + boxSide + "\n")
	return b.String()
}

// separator draws the rule under the header. With a label, ticks join the
// box's two sides to the rule; a tick that would fall past the terminal
// edge is dropped.
func separator(language string, width int) string {
	if width < minWidth {
		width = minWidth
	}
	cells := make([]string, width)
	for i := range cells {
		cells[i] = ruleChar
	}
	if language != "" {
		for _, col := range []int{1, 4 + runewidth.StringWidth(language)} {
			if col < width {
				cells[col] = tickChar
			}
		}
	}
	return strings.Join(cells, "") + "\n"
}

// rule draws the full-width line that closes a code block.
func rule(width int) string {
	if width < minWidth {
		width = minWidth
	}
	return strings.Repeat(ruleChar, width) + "\n"
}
