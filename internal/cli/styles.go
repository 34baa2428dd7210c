// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// =============================================================================
// SHARED STYLES
// =============================================================================

var (
	// ErrorStyle is used for error messages and failures
	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")). // Red
			Bold(true)

	// WarningStyle is used for warnings and interruptions
	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // Yellow/Orange

	// DimStyle is used for secondary information and hints
	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("242")) // Dim gray

	// InfoStyle is used for informational messages
	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("75")) // Blue
)

// =============================================================================
// SPEAKER BADGES
// =============================================================================

// badgeArrow is the powerline separator drawn after each badge.
const badgeArrow = "\ue0b0"

// Badge is a coloured speaker label, e.g. " You " on blue.
type Badge struct {
	Label string
	Color lipgloss.Color
}

var (
	// UserBadge marks the user's prompt.
	UserBadge = Badge{Label: "You", Color: lipgloss.Color("4")}

	// AssistantBadge marks the model's reply.
	AssistantBadge = Badge{Label: "GPT", Color: lipgloss.Color("2")}
)

// Render draws the badge: black label on the badge colour, then the arrow
// in the badge colour. Without colour it falls back to "Label> ".
func (b Badge) Render() string {
	if lipgloss.ColorProfile() == termenv.Ascii {
		return b.Label + "> "
	}
	label := lipgloss.NewStyle().
		Background(b.Color).
		Foreground(lipgloss.Color("0")).
		Render(" " + b.Label + " ")
	arrow := lipgloss.NewStyle().
		Foreground(b.Color).
		Render(badgeArrow)
	return label + arrow + " "
}

// ApplyColorProfile configures lipgloss for the chosen profile.
func ApplyColorProfile(profile termenv.Profile) {
	lipgloss.SetColorProfile(profile)
}
