// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// SETTINGS SELECTOR
// =============================================================================

var (
	settingsTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")). // Cyan
				MarginBottom(1)

	settingsSelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("82")). // Bright green
				Bold(true)
)

// settingsField is one editable row.
type settingsField struct {
	name  string
	value string
	// check validates an edited value; nil accepts anything non-empty.
	check func(string) error
}

// SettingsModel is a bubbletea model listing max_tokens and model.
// Up/down (or k/j) move, enter edits the selected row, enter again commits,
// esc abandons the edit. Outside an edit, q or esc closes and keeps the
// changes; ctrl+c closes and discards them.
type SettingsModel struct {
	fields    []settingsField
	cursor    int
	editing   bool
	input     textinput.Model
	err       string
	done      bool
	cancelled bool
}

// NewSettingsModel creates a selector showing the current values.
func NewSettingsModel(model string, maxTokens int) SettingsModel {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 128

	return SettingsModel{
		fields: []settingsField{
			{name: "max_tokens", value: strconv.Itoa(maxTokens), check: checkPositiveInt},
			{name: "model", value: model},
		},
		input: ti,
	}
}

func checkPositiveInt(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fmt.Errorf("enter a positive integer")
	}
	return nil
}

// Init implements tea.Model.
func (m SettingsModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m SettingsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		if m.editing {
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	if key.Type == tea.KeyCtrlC {
		m.cancelled = true
		m.done = true
		return m, tea.Quit
	}

	if m.editing {
		return m.updateEditing(key)
	}

	switch key.String() {
	case "up", "k":
		m.cursor = (m.cursor - 1 + len(m.fields)) % len(m.fields)
	case "down", "j":
		m.cursor = (m.cursor + 1) % len(m.fields)
	case "enter":
		m.editing = true
		m.err = ""
		m.input.SetValue(m.fields[m.cursor].value)
		m.input.CursorEnd()
		return m, m.input.Focus()
	case "q", "esc":
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m SettingsModel) updateEditing(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.Type {
	case tea.KeyEsc:
		m.editing = false
		m.err = ""
		m.input.Blur()
		return m, nil

	case tea.KeyEnter:
		value := strings.TrimSpace(m.input.Value())
		if value == "" {
			m.err = "value cannot be empty"
			return m, nil
		}
		if check := m.fields[m.cursor].check; check != nil {
			if err := check(value); err != nil {
				m.err = err.Error()
				return m, nil
			}
		}
		m.fields = append([]settingsField(nil), m.fields...)
		m.fields[m.cursor].value = value
		m.editing = false
		m.err = ""
		m.input.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(key)
	return m, cmd
}

// View implements tea.Model.
func (m SettingsModel) View() string {
	if m.done {
		return ""
	}

	var b strings.Builder
	b.WriteString(settingsTitleStyle.Render("Settings"))
	b.WriteString("\n")

	for i, f := range m.fields {
		line := fmt.Sprintf("  %s: %s", f.name, f.value)
		if i == m.cursor {
			line = settingsSelectedStyle.Render(fmt.Sprintf("> %s: %s", f.name, f.value))
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.editing {
		b.WriteString(m.input.View())
		b.WriteString("\n")
		if m.err != "" {
			b.WriteString(ErrorStyle.Render(m.err))
			b.WriteString("\n")
		}
		b.WriteString(DimStyle.Render("enter: save  esc: cancel edit"))
	} else {
		b.WriteString(DimStyle.Render("↑/↓: move  enter: edit  q: done  ctrl+c: discard"))
	}
	b.WriteString("\n")
	return b.String()
}

// Model returns the model value as currently shown.
func (m SettingsModel) Model() string {
	return m.fields[1].value
}

// MaxTokens returns the max_tokens value as currently shown.
func (m SettingsModel) MaxTokens() int {
	n, _ := strconv.Atoi(m.fields[0].value)
	return n
}

// Cancelled reports whether the user discarded the changes.
func (m SettingsModel) Cancelled() bool {
	return m.cancelled
}

// RunSettings runs the selector on the given terminal streams and returns
// the edited values. ok is false when the user discarded the changes.
func RunSettings(in io.Reader, out io.Writer, model string, maxTokens int) (string, int, bool, error) {
	p := tea.NewProgram(NewSettingsModel(model, maxTokens), tea.WithInput(in), tea.WithOutput(out))
	final, err := p.Run()
	if err != nil {
		return model, maxTokens, false, fmt.Errorf("settings selector failed: %w", err)
	}

	sm, ok := final.(SettingsModel)
	if !ok || sm.Cancelled() {
		return model, maxTokens, false, nil
	}
	return sm.Model(), sm.MaxTokens(), true, nil
}
