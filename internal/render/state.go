// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

// backtick is the only control character the parser knows.
const backtick = '`'

// State is the complete parser state between two characters. The zero
// value is the state at the start of a reply.
type State struct {
	// CodeMode is set inside a fenced code block.
	CodeMode bool
	// VariableMode is set inside a single-backtick span.
	VariableMode bool
	// ReadingLanguage is set between an opening fence and the next newline.
	// It implies CodeMode.
	ReadingLanguage bool
	// Language is the tag collected after the opening fence.
	Language string
	// Pending counts consecutive unresolved backticks, 0 to 2.
	Pending int
	// CodeLine is the unfinished code line awaiting its newline.
	CodeLine string
}

// EmitKind says what a transition asks the renderer to draw.
type EmitKind int

const (
	// EmitNone draws nothing.
	EmitNone EmitKind = iota
	// EmitPlain draws Rune as is.
	EmitPlain
	// EmitInverse draws Rune in inverse video.
	EmitInverse
	// EmitCodeLine highlights Text, a completed code line without its newline.
	EmitCodeLine
	// EmitHeader finishes a language tag: Text is the tag, possibly empty.
	// The renderer draws the boxed label (when non-empty) and the separator.
	EmitHeader
	// EmitClose ends a code block. Text holds any code left in the line
	// buffer, which is highlighted before the closing rule.
	EmitClose
)

// Emit is the single output of one transition.
type Emit struct {
	Kind EmitKind
	Rune rune
	Text string
}

// Step consumes one character. It has no side effects; everything the
// caller should draw is described by the returned Emit.
func Step(s State, r rune) (State, Emit) {
	if r == backtick {
		return stepBacktick(s)
	}

	var out Emit

	// Code body: buffer until newline, then hand the line over.
	if s.CodeMode && !s.ReadingLanguage {
		if r == '\n' {
			out = Emit{Kind: EmitCodeLine, Text: s.CodeLine}
			s.CodeLine = ""
		} else {
			s.CodeLine += string(r)
		}
	}

	// A lone backtick before this character delimited an inline span. Two
	// pending backticks count as two toggles, which cancel out.
	if s.Pending == 1 {
		s.VariableMode = !s.VariableMode
	}
	s.Pending = 0

	if s.ReadingLanguage {
		if r == '\n' {
			s.ReadingLanguage = false
			return s, Emit{Kind: EmitHeader, Text: s.Language}
		}
		s.Language += string(r)
		return s, out
	}

	if s.CodeMode {
		return s, out
	}
	if s.VariableMode {
		return s, Emit{Kind: EmitInverse, Rune: r}
	}
	return s, Emit{Kind: EmitPlain, Rune: r}
}

func stepBacktick(s State) (State, Emit) {
	if s.Pending < 2 {
		s.Pending++
		return s, Emit{}
	}

	s.Pending = 0
	s.CodeMode = !s.CodeMode
	if s.CodeMode {
		s.Language = ""
		s.ReadingLanguage = true
		return s, Emit{}
	}

	// A fence can close before the tag's newline ever arrived.
	s.ReadingLanguage = false
	leftover := s.CodeLine
	s.CodeLine = ""
	return s, Emit{Kind: EmitClose, Text: leftover}
}
