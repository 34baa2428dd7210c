// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package highlight

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/gpterm/internal/render"
)

var _ render.Highlighter = (*Chroma)(nil)
var _ render.Highlighter = Plain{}

func TestChroma_HighlightsKnownLanguage(t *testing.T) {
	h := New("material")
	line := h.Resolve("python").HighlightLine("print(1)")

	assert.Contains(t, line, "\x1b[", "expected ANSI colouring")
	assert.NotContains(t, line, "\n")
	assert.Equal(t, "print(1)", ansi.Strip(line))
}

func TestChroma_FallsBackForUnknownAndEmpty(t *testing.T) {
	h := New("")

	for _, lang := range []string{"", "definitely-not-a-language"} {
		lh := h.Resolve(lang)
		require.NotNil(t, lh, "language %q", lang)

		got := lh.HighlightLine("x = 1")
		assert.Equal(t, "x = 1", ansi.Strip(got), "language %q", lang)

		// The guess sticks for the rest of the block.
		got = lh.HighlightLine("y = 2")
		assert.Equal(t, "y = 2", ansi.Strip(got), "language %q", lang)
	}
}

func TestChroma_EmptyLine(t *testing.T) {
	h := New("material")
	assert.Equal(t, "", ansi.Strip(h.Resolve("go").HighlightLine("")))
}

func TestChroma_SetStyle(t *testing.T) {
	h := New("monokai")
	assert.Equal(t, "monokai", h.StyleName())

	h.SetStyle("no-such-style")
	assert.NotEmpty(t, h.StyleName())

	h.SetStyle("")
	assert.Equal(t, DefaultStyle, h.StyleName())
}

func TestPlain(t *testing.T) {
	assert.Equal(t, "print(1)", Plain{}.Resolve("python").HighlightLine("print(1)"))
}

func TestLanguages(t *testing.T) {
	names := Languages()
	require.NotEmpty(t, names)

	found := false
	for _, n := range names {
		if strings.EqualFold(n, "python") {
			found = true
		}
	}
	assert.True(t, found, "python should be listed")
}

func TestRenderer_WithChroma(t *testing.T) {
	var b strings.Builder
	r := render.NewRenderer(&b, New("material"), 12)
	r.RenderText("```go\nx := 1\n```")
	msg := r.Finalize()

	plain := ansi.Strip(b.String())
	assert.Contains(t, plain, " │ go │\n")
	assert.Contains(t, plain, "x := 1\n")
	assert.Equal(t, "```go\nx := 1\n```", msg.Content)
}
