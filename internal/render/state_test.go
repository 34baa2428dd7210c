// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"strings"
	"testing"
)

// run feeds text through Step from s and returns the final state and every
// non-empty emit.
func run(s State, text string) (State, []Emit) {
	var emits []Emit
	for _, c := range text {
		var e Emit
		s, e = Step(s, c)
		if e.Kind != EmitNone {
			emits = append(emits, e)
		}
	}
	return s, emits
}

func TestStep_Backticks(t *testing.T) {
	testCases := []struct {
		name     string
		start    State
		input    string
		expected State
		emits    []Emit
	}{
		{
			name:     "first backtick is suppressed",
			input:    "`",
			expected: State{Pending: 1},
		},
		{
			name:     "second backtick is suppressed",
			input:    "``",
			expected: State{Pending: 2},
		},
		{
			name:     "third backtick opens a block",
			input:    "```",
			expected: State{CodeMode: true, ReadingLanguage: true},
		},
		{
			name:     "third backtick closes a block",
			start:    State{CodeMode: true},
			input:    "```",
			expected: State{},
			emits:    []Emit{{Kind: EmitClose}},
		},
		{
			name:     "close flushes buffered code",
			start:    State{CodeMode: true, CodeLine: "x = 1"},
			input:    "```",
			expected: State{},
			emits:    []Emit{{Kind: EmitClose, Text: "x = 1"}},
		},
		{
			name:     "close before tag newline ends tag reading",
			start:    State{CodeMode: true, ReadingLanguage: true, Language: "go"},
			input:    "```",
			expected: State{Language: "go"},
			emits:    []Emit{{Kind: EmitClose}},
		},
		{
			name:     "opening resets previous language",
			start:    State{Language: "python"},
			input:    "```",
			expected: State{CodeMode: true, ReadingLanguage: true},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, emits := run(tc.start, tc.input)
			if got != tc.expected {
				t.Errorf("state = %+v, want %+v", got, tc.expected)
			}
			if !equalEmits(emits, tc.emits) {
				t.Errorf("emits = %+v, want %+v", emits, tc.emits)
			}
		})
	}
}

func TestStep_PlainAndInline(t *testing.T) {
	testCases := []struct {
		name     string
		start    State
		input    string
		expected State
		emits    []Emit
	}{
		{
			name:  "plain character",
			input: "a",
			emits: []Emit{{Kind: EmitPlain, Rune: 'a'}},
		},
		{
			name:     "single backtick opens span",
			input:    "`x",
			expected: State{VariableMode: true},
			emits:    []Emit{{Kind: EmitInverse, Rune: 'x'}},
		},
		{
			name:  "single backtick closes span",
			start: State{VariableMode: true},
			input: "`y",
			emits: []Emit{{Kind: EmitPlain, Rune: 'y'}},
		},
		{
			name:  "double backtick toggles twice",
			input: "`` ",
			emits: []Emit{{Kind: EmitPlain, Rune: ' '}},
		},
		{
			name:     "double backtick inside span keeps span",
			start:    State{VariableMode: true},
			input:    "`` ",
			expected: State{VariableMode: true},
			emits:    []Emit{{Kind: EmitInverse, Rune: ' '}},
		},
		{
			name:  "newline is printed",
			input: "\n",
			emits: []Emit{{Kind: EmitPlain, Rune: '\n'}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, emits := run(tc.start, tc.input)
			if got != tc.expected {
				t.Errorf("state = %+v, want %+v", got, tc.expected)
			}
			if !equalEmits(emits, tc.emits) {
				t.Errorf("emits = %+v, want %+v", emits, tc.emits)
			}
		})
	}
}

func TestStep_CodeBlock(t *testing.T) {
	testCases := []struct {
		name     string
		start    State
		input    string
		expected State
		emits    []Emit
	}{
		{
			name:     "language tag is collected silently",
			start:    State{CodeMode: true, ReadingLanguage: true},
			input:    "python",
			expected: State{CodeMode: true, ReadingLanguage: true, Language: "python"},
		},
		{
			name:     "newline finishes the tag",
			start:    State{CodeMode: true, ReadingLanguage: true, Language: "python"},
			input:    "\n",
			expected: State{CodeMode: true, Language: "python"},
			emits:    []Emit{{Kind: EmitHeader, Text: "python"}},
		},
		{
			name:     "empty tag still produces a header emit",
			start:    State{CodeMode: true, ReadingLanguage: true},
			input:    "\n",
			expected: State{CodeMode: true},
			emits:    []Emit{{Kind: EmitHeader}},
		},
		{
			name:     "code characters are buffered",
			start:    State{CodeMode: true},
			input:    "print(1)",
			expected: State{CodeMode: true, CodeLine: "print(1)"},
		},
		{
			name:     "newline emits the code line",
			start:    State{CodeMode: true, CodeLine: "print(1)"},
			input:    "\n",
			expected: State{CodeMode: true},
			emits:    []Emit{{Kind: EmitCodeLine, Text: "print(1)"}},
		},
		{
			name:     "backticks inside code never reach the buffer",
			start:    State{CodeMode: true},
			input:    "a`b`c",
			expected: State{CodeMode: true, CodeLine: "abc"},
		},
		{
			name:     "double backtick before the tag newline",
			start:    State{CodeMode: true, ReadingLanguage: true},
			input:    "``go\n",
			expected: State{CodeMode: true, Language: "go"},
			emits:    []Emit{{Kind: EmitHeader, Text: "go"}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, emits := run(tc.start, tc.input)
			if got != tc.expected {
				t.Errorf("state = %+v, want %+v", got, tc.expected)
			}
			if !equalEmits(emits, tc.emits) {
				t.Errorf("emits = %+v, want %+v", emits, tc.emits)
			}
		})
	}
}

func TestStep_PendingStaysBounded(t *testing.T) {
	s := State{}
	for i := 0; i < 50; i++ {
		s, _ = Step(s, '`')
		if s.Pending < 0 || s.Pending > 2 {
			t.Fatalf("Pending = %d after %d backticks", s.Pending, i+1)
		}
	}
}

func TestStep_ReadingLanguageImpliesCodeMode(t *testing.T) {
	inputs := []string{
		"```",
		"``````",
		"```go",
		"```go```",
		"```\n```\n```py",
		"a`b``c```d\n````e",
	}

	for _, input := range inputs {
		s := State{}
		for _, c := range input {
			s, _ = Step(s, c)
			if s.ReadingLanguage && !s.CodeMode {
				t.Fatalf("%q: ReadingLanguage without CodeMode: %+v", input, s)
			}
		}
	}
}

func TestStep_TripleBacktickParity(t *testing.T) {
	for n := 0; n < 6; n++ {
		text := strings.Repeat("```x\nbody\n", n)
		s, _ := run(State{}, text)
		if s.CodeMode != (n%2 == 1) {
			t.Errorf("%d fences: CodeMode = %v", n, s.CodeMode)
		}
	}
}

func TestStep_NoVisibleBacktick(t *testing.T) {
	_, emits := run(State{}, "a`b``c```d\ne```f`")
	for _, e := range emits {
		if e.Rune == '`' || strings.ContainsRune(e.Text, '`') {
			t.Fatalf("backtick leaked into output: %+v", e)
		}
	}
}

func equalEmits(a, b []Emit) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
