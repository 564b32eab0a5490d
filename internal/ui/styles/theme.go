// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// THEME
// =============================================================================

// Theme bundles the pre-built lipgloss styles used by the chat view.
// Build one with NewTheme and share it; styles are immutable after creation.
type Theme struct {
	// Message labels
	UserLabel      lipgloss.Style
	AssistantLabel lipgloss.Style
	SystemLabel    lipgloss.Style
	ErrorText      lipgloss.Style
	WarnBadge      lipgloss.Style

	// Body text
	Body  lipgloss.Style
	Muted lipgloss.Style

	// Evaluation panel
	PanelBorder    lipgloss.Style
	PanelTitle     lipgloss.Style
	PrincipleLabel lipgloss.Style
	Assessment     lipgloss.Style

	// Chrome
	StatusBar   lipgloss.Style
	StatusKey   lipgloss.Style
	InputPrompt lipgloss.Style
	Help        lipgloss.Style
}

// NewTheme creates the default theme.
func NewTheme() *Theme {
	return &Theme{
		UserLabel: lipgloss.NewStyle().
			Foreground(Cyan).
			Bold(true),
		AssistantLabel: lipgloss.NewStyle().
			Foreground(Purple).
			Bold(true),
		SystemLabel: lipgloss.NewStyle().
			Foreground(Amber).
			Bold(true),
		ErrorText: lipgloss.NewStyle().
			Foreground(Rose),
		WarnBadge: lipgloss.NewStyle().
			Foreground(Amber).
			Bold(true),

		Body: lipgloss.NewStyle().
			Foreground(TextPrimary),
		Muted: lipgloss.NewStyle().
			Foreground(TextMuted),

		PanelBorder: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Overlay).
			Padding(0, 1),
		PanelTitle: lipgloss.NewStyle().
			Foreground(TextPrimary).
			Bold(true),
		PrincipleLabel: lipgloss.NewStyle().
			Foreground(TextSecondary),
		Assessment: lipgloss.NewStyle().
			Foreground(TextSecondary),

		StatusBar: lipgloss.NewStyle().
			Foreground(TextSecondary).
			Background(SurfaceDim),
		StatusKey: lipgloss.NewStyle().
			Foreground(Cyan),
		InputPrompt: lipgloss.NewStyle().
			Foreground(Cyan).
			Bold(true),
		Help: lipgloss.NewStyle().
			Foreground(TextMuted),
	}
}

// ScoreStyle returns a bold style in the band color for a numeric score.
func (t *Theme) ScoreStyle(value int) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ScoreValueColor(value)).Bold(true)
}

// AbsentStyle returns the style for a "not applicable" score.
func (t *Theme) AbsentStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ScoreAbsent)
}

// InvalidStyle returns the style for an unparsable evaluation score.
func (t *Theme) InvalidStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ScoreInvalid).Bold(true)
}
