// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package highlight

import (
	"strings"
	"sync/atomic"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"

	"github.com/jeranaias/gpterm/internal/render"
)

// DefaultStyle is used when no style is configured.
const DefaultStyle = "material"

// Chroma is a render.Highlighter backed by chroma. It is safe to change the
// style while other goroutines highlight.
type Chroma struct {
	style     atomic.Pointer[chroma.Style]
	formatter chroma.Formatter
}

// New returns a Chroma highlighter using the named style. Unknown names fall
// back to chroma's default style.
func New(style string) *Chroma {
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}
	c := &Chroma{formatter: formatter}
	c.SetStyle(style)
	return c
}

// SetStyle switches the colour style for lines highlighted from now on.
func (c *Chroma) SetStyle(name string) {
	if name == "" {
		name = DefaultStyle
	}
	style := chromaStyles.Get(name)
	if style == nil {
		style = chromaStyles.Fallback
	}
	c.style.Store(style)
}

// StyleName returns the active style's name.
func (c *Chroma) StyleName() string {
	return c.style.Load().Name
}

// Resolve implements render.Highlighter. An empty or unrecognised tag yields
// a context that guesses the lexer from the first line it sees and keeps
// that guess for the rest of the block.
func (c *Chroma) Resolve(language string) render.LineHighlighter {
	var lexer chroma.Lexer
	if language != "" {
		lexer = lexers.Get(language)
	}
	if lexer != nil {
		lexer = chroma.Coalesce(lexer)
	}
	return &lineHighlighter{c: c, lexer: lexer}
}

type lineHighlighter struct {
	c     *Chroma
	lexer chroma.Lexer
}

// HighlightLine implements render.LineHighlighter. Any chroma failure
// returns the line untouched.
func (l *lineHighlighter) HighlightLine(line string) string {
	if l.lexer == nil {
		l.lexer = guess(line)
	}

	iterator, err := l.lexer.Tokenise(nil, line)
	if err != nil {
		return line
	}

	var b strings.Builder
	if err := l.c.formatter.Format(&b, l.c.style.Load(), iterator); err != nil {
		return line
	}
	return strings.ReplaceAll(b.String(), "\n", "")
}

func guess(sample string) chroma.Lexer {
	lexer := lexers.Analyse(sample)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	return chroma.Coalesce(lexer)
}

// Languages lists the language names chroma recognises, sorted.
func Languages() []string {
	return lexers.Names(false)
}

// Plain is a render.Highlighter that leaves code uncoloured, for output
// that is not a terminal or when colour is disabled.
type Plain struct{}

// Resolve implements render.Highlighter.
func (Plain) Resolve(string) render.LineHighlighter { return Plain{} }

// HighlightLine implements render.LineHighlighter.
func (Plain) HighlightLine(line string) string { return line }
