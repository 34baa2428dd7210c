// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

var keyTypes = map[string]tea.KeyType{
	"up":     tea.KeyUp,
	"down":   tea.KeyDown,
	"enter":  tea.KeyEnter,
	"esc":    tea.KeyEsc,
	"ctrl+c": tea.KeyCtrlC,
	"ctrl+u": tea.KeyCtrlU,
}

func key(name string) tea.KeyMsg {
	return tea.KeyMsg{Type: keyTypes[name]}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press feeds keys through Update in order.
func press(m SettingsModel, keys ...tea.KeyMsg) SettingsModel {
	var model tea.Model = m
	for _, k := range keys {
		model, _ = model.Update(k)
	}
	return model.(SettingsModel)
}

// =============================================================================
// SETTINGS SELECTOR
// =============================================================================

func TestSettingsModel_EditModel(t *testing.T) {
	m := press(NewSettingsModel("gpt-4", 1000),
		key("down"), key("enter"), key("ctrl+u"), runes("gpt-4-32k"), key("enter"), runes("q"))

	assert.False(t, m.Cancelled())
	assert.Equal(t, "gpt-4-32k", m.Model())
	assert.Equal(t, 1000, m.MaxTokens())
}

func TestSettingsModel_RejectsBadMaxTokens(t *testing.T) {
	m := press(NewSettingsModel("gpt-4", 1000),
		key("enter"), key("ctrl+u"), runes("abc"), key("enter"))

	assert.True(t, m.editing)
	assert.NotEmpty(t, m.err)

	m = press(m, key("esc"))
	assert.False(t, m.editing)
	assert.Equal(t, 1000, m.MaxTokens())

	m = press(m, key("enter"), key("ctrl+u"), runes("2048"), key("enter"), key("esc"))
	assert.Equal(t, 2048, m.MaxTokens())
	assert.True(t, m.done)
}

func TestSettingsModel_Navigation(t *testing.T) {
	m := NewSettingsModel("gpt-4", 1000)
	m = press(m, key("up"))
	assert.Equal(t, 1, m.cursor)
	m = press(m, runes("j"))
	assert.Equal(t, 0, m.cursor)
	m = press(m, runes("k"))
	assert.Equal(t, 1, m.cursor)
	assert.Contains(t, m.View(), "> model: gpt-4")
}

func TestSettingsModel_CtrlCDiscards(t *testing.T) {
	m := press(NewSettingsModel("gpt-4", 1000), key("ctrl+c"))
	assert.True(t, m.Cancelled())
	assert.Empty(t, m.View())
}
