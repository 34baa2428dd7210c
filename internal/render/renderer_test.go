// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/gpterm/internal/completion"
)

// fakeHighlighter wraps every line as <lang:line> and records what it was
// asked to resolve.
type fakeHighlighter struct {
	resolved []string
}

type fakeLine struct{ lang string }

func (f *fakeHighlighter) Resolve(language string) LineHighlighter {
	f.resolved = append(f.resolved, language)
	return fakeLine{lang: language}
}

func (l fakeLine) HighlightLine(line string) string {
	return "<" + l.lang + ":" + line + ">"
}

func renderAll(width int, hl Highlighter, fragments ...string) (*Renderer, *bytes.Buffer) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, hl, width)
	for _, f := range fragments {
		r.Render(completion.Text(f))
	}
	return r, &buf
}

// =============================================================================
// SCENARIOS
// =============================================================================

func TestRenderer_InlineSpanAcrossFragments(t *testing.T) {
	r, out := renderAll(20, nil, "Use `", "x", "` here")
	msg := r.Finalize()

	assert.Equal(t, "Use \x1b[7mx\x1b[0m here", out.String())
	assert.Equal(t, completion.RoleAssistant, msg.Role)
	assert.Equal(t, "Use `x` here", msg.Content)
}

func TestRenderer_CodeBlockWithLanguage(t *testing.T) {
	hl := &fakeHighlighter{}
	r, out := renderAll(20, hl, "```python\n", "print(1)\n", "```")
	msg := r.Finalize()

	expected := "" +
		" ╭────────╮\n" +
		" │ python │\n" +
		"─┴────────┴─────────\n" +
		"<python:print(1)>\n" +
		strings.Repeat("─", 20) + "\n"

	assert.Equal(t, expected, out.String())
	assert.Equal(t, "```python\nprint(1)\n```", msg.Content)
	assert.Equal(t, []string{"python"}, hl.resolved)
	assert.False(t, r.State().CodeMode)
}

func TestRenderer_CodeBlockWithoutLanguage(t *testing.T) {
	hl := &fakeHighlighter{}
	r, out := renderAll(5, hl, "```\nx\n```\n")
	r.Finalize()

	assert.Equal(t, "─────\n<:x>\n─────\n\n", out.String())
	assert.Equal(t, []string{""}, hl.resolved)
}

func TestRenderer_UnknownLanguageStillResolves(t *testing.T) {
	hl := &fakeHighlighter{}
	_, out := renderAll(30, hl, "```not-a-lang\nfoo\n```")

	assert.Equal(t, []string{"not-a-lang"}, hl.resolved)
	assert.Contains(t, out.String(), "<not-a-lang:foo>\n")
}

func TestRenderer_LanguageTagTrimmed(t *testing.T) {
	hl := &fakeHighlighter{}
	_, out := renderAll(30, hl, "``` go \r\n", "x\n")

	assert.Equal(t, []string{"go"}, hl.resolved)
	assert.Contains(t, out.String(), " │ go │\n")
}

func TestRenderer_CloseFlushesPartialLine(t *testing.T) {
	hl := &fakeHighlighter{}
	r, out := renderAll(3, hl, "```sh\necho hi```")
	r.Finalize()

	assert.True(t, strings.HasSuffix(out.String(), "<sh:echo hi>\n───\n"), out.String())
}

func TestRenderer_FinalizeFlushesUnterminatedBlock(t *testing.T) {
	hl := &fakeHighlighter{}
	r, out := renderAll(10, hl, "```go\n", "fmt.Println()")
	msg := r.Finalize()

	assert.True(t, strings.HasSuffix(out.String(), "<go:fmt.Println()>\n"), out.String())
	assert.Equal(t, "```go\nfmt.Println()", msg.Content)
	assert.True(t, r.State().CodeMode)
}

func TestRenderer_AbsentFragmentIsNewline(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, nil, 10)
	r.Render(completion.Text("a"))
	r.Render(completion.Absent())
	r.Render(completion.Text("b"))

	assert.Equal(t, "a\nb", buf.String())
	assert.Equal(t, "a\nb", r.Finalize().Content)
}

func TestRenderer_AsciiProfileDropsInverse(t *testing.T) {
	var buf bytes.Buffer
	r := NewRendererWithOptions(&buf, nil, 10, Options{Profile: termenv.Ascii})
	r.RenderText("a `b` c")

	assert.Equal(t, "a b c", buf.String())
}

func TestRenderer_FlushesEachFragment(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, nil, 10)

	r.RenderText("hel")
	assert.Equal(t, "hel", buf.String())
	r.RenderText("lo")
	assert.Equal(t, "hello", buf.String())
}

func TestRenderer_NarrowSeparatorDropsTicks(t *testing.T) {
	hl := &fakeHighlighter{}
	_, out := renderAll(4, hl, "```python\n")

	lines := strings.Split(out.String(), "\n")
	require.GreaterOrEqual(t, len(lines), 3)
	assert.Equal(t, "─┴──", lines[2])
}

// =============================================================================
// PROPERTIES
// =============================================================================

var propertyInputs = []string{
	"",
	"plain text only\nwith lines",
	"Use `x` here",
	"```python\nprint(1)\n```",
	"a `` b",
	"``` go\nfunc main() {}\n```\nafter `y`",
	"unterminated ```js\nlet a",
	"````",
	"`a``b```c````d",
	"日本語 `変数` ```\nコード\n```",
}

func TestRenderer_PlainTextIsCollectedVerbatim(t *testing.T) {
	fragments := []string{"Hello, ", "world", "!\n", "", "second line"}
	r, out := renderAll(10, nil, fragments...)

	joined := strings.Join(fragments, "")
	assert.Equal(t, joined, r.Finalize().Content)
	assert.Equal(t, joined, out.String())
}

func TestRenderer_ContentRoundTrip(t *testing.T) {
	for _, input := range propertyInputs {
		r, _ := renderAll(40, &fakeHighlighter{}, input)
		assert.Equal(t, input, r.Finalize().Content, "input %q", input)
	}
}

func TestRenderer_FragmentBoundaryIndependence(t *testing.T) {
	inputs := []string{
		"Use `x` here",
		"```py\nx=1\n```",
		"a``b```c\nd",
		"`é``\n```",
	}

	for _, input := range inputs {
		runes := []rune(input)
		n := len(runes) - 1
		if n < 0 {
			n = 0
		}

		wantR, wantOut := renderAll(12, &fakeHighlighter{}, input)
		wantMsg := wantR.Finalize()

		// Every subset of the n cut points between runes.
		for mask := 0; mask < 1<<n; mask++ {
			var fragments []string
			start := 0
			for i := 0; i < n; i++ {
				if mask&(1<<i) != 0 {
					fragments = append(fragments, string(runes[start:i+1]))
					start = i + 1
				}
			}
			fragments = append(fragments, string(runes[start:]))

			r, out := renderAll(12, &fakeHighlighter{}, fragments...)
			msg := r.Finalize()

			if msg != wantMsg || r.State() != wantR.State() || out.String() != wantOut.String() {
				t.Fatalf("split %q differs: content %q state %+v output %q",
					fragments, msg.Content, r.State(), out.String())
			}
		}
	}
}
