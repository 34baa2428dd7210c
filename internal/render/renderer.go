// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"bufio"
	"io"
	"strings"

	"github.com/muesli/termenv"

	"github.com/jeranaias/gpterm/internal/completion"
)

// Highlighter resolves a language tag to something that can colour lines of
// that language. Resolve never fails: unknown or empty tags get a guessing
// or plain fallback.
type Highlighter interface {
	Resolve(language string) LineHighlighter
}

// LineHighlighter colours one line of code. The result carries no trailing
// newline.
type LineHighlighter interface {
	HighlightLine(line string) string
}

// plain is the passthrough used when no Highlighter is configured.
type plain struct{}

func (plain) Resolve(string) LineHighlighter { return plain{} }
func (plain) HighlightLine(line string) string { return line }

// Options tweak a Renderer.
type Options struct {
	// Profile controls inline span styling. termenv.Ascii disables it.
	// Zero value is termenv.TrueColor, which renders inverse video.
	Profile termenv.Profile
}

// Renderer draws one assistant reply. Create a fresh Renderer per turn.
type Renderer struct {
	out     *bufio.Writer
	hl      Highlighter
	width   int
	profile termenv.Profile

	state   State
	active  LineHighlighter
	content strings.Builder
}

// NewRenderer returns a Renderer writing to w. A nil Highlighter leaves code
// uncoloured. width is the terminal width used for rules.
func NewRenderer(w io.Writer, hl Highlighter, width int) *Renderer {
	return NewRendererWithOptions(w, hl, width, Options{})
}

// NewRendererWithOptions is NewRenderer with explicit Options.
func NewRendererWithOptions(w io.Writer, hl Highlighter, width int, opts Options) *Renderer {
	if hl == nil {
		hl = plain{}
	}
	return &Renderer{
		out:     bufio.NewWriter(w),
		hl:      hl,
		width:   width,
		profile: opts.Profile,
	}
}

// Render consumes one fragment and flushes whatever it produced. A fragment
// without content is treated as a newline.
func (r *Renderer) Render(f completion.Fragment) {
	r.RenderText(f.Content())
}

// RenderText consumes text as one fragment.
func (r *Renderer) RenderText(text string) {
	for _, c := range text {
		r.content.WriteRune(c)

		var e Emit
		r.state, e = Step(r.state, c)
		r.draw(e)
	}
	r.out.Flush()
}

func (r *Renderer) draw(e Emit) {
	switch e.Kind {
	case EmitPlain:
		r.out.WriteRune(e.Rune)

	case EmitInverse:
		r.out.WriteString(r.profile.String(string(e.Rune)).Reverse().String())

	case EmitCodeLine:
		r.writeCode(e.Text)

	case EmitHeader:
		language := strings.TrimSpace(e.Text)
		if language != "" {
			r.out.WriteString(header(language))
		}
		r.active = r.hl.Resolve(language)
		r.out.WriteString(separator(language, r.width))

	case EmitClose:
		if e.Text != "" {
			r.writeCode(e.Text)
		}
		r.out.WriteString(rule(r.width))
		r.active = nil
	}
}

func (r *Renderer) writeCode(line string) {
	if r.active == nil {
		r.active = r.hl.Resolve("")
	}
	r.out.WriteString(r.active.HighlightLine(line))
	r.out.WriteByte('\n')
}

// State returns the parser state after the last character consumed.
func (r *Renderer) State() State {
	return r.state
}

// Content returns the literal reply text received so far.
func (r *Renderer) Content() string {
	return r.content.String()
}

// Finalize ends the reply. A code line still sitting in the buffer of an
// unterminated block is highlighted and written. The returned message holds
// the reply exactly as received.
func (r *Renderer) Finalize() completion.Message {
	if r.state.CodeMode && !r.state.ReadingLanguage && r.state.CodeLine != "" {
		r.writeCode(r.state.CodeLine)
		r.state.CodeLine = ""
	}
	r.out.Flush()

	return completion.Message{
		Role:    completion.RoleAssistant,
		Content: r.content.String(),
	}
}
