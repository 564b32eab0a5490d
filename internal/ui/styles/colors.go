// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the examine TUI.
// All colors use Lip Gloss AdaptiveColor for automatic light/dark detection.
package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// DetectBackground syncs lipgloss's adaptive light/dark selection with
// the terminal's reported background. Call once before rendering.
func DetectBackground() {
	lipgloss.SetHasDarkBackground(termenv.HasDarkBackground())
}

// =============================================================================
// PRIMARY ACCENT COLORS
// =============================================================================

// Purple - Primary accent, assistant messages
var Purple = lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#A78BFA"}

// Cyan - Brand color, info, user highlights
var Cyan = lipgloss.AdaptiveColor{Light: "#0891B2", Dark: "#22D3EE"}

// Emerald - Success states, passing scores
var Emerald = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34D399"}

// =============================================================================
// SEMANTIC COLORS
// =============================================================================

// Rose - Errors, failing scores, danger states
var Rose = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}

// Amber - Warnings, middling scores, caution states
var Amber = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}

// Violet - Evaluation parse failures
var Violet = lipgloss.AdaptiveColor{Light: "#6D28D9", Dark: "#C4B5FD"}

// =============================================================================
// SURFACE COLORS
// =============================================================================

// Surface - Main background
var Surface = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#1E1E2E"}

// SurfaceDim - Slightly darker/lighter surface for headers/footers
var SurfaceDim = lipgloss.AdaptiveColor{Light: "#F5F5F5", Dark: "#181825"}

// Overlay - Borders, separators, subtle backgrounds
var Overlay = lipgloss.AdaptiveColor{Light: "#E5E5E5", Dark: "#313244"}

// =============================================================================
// TEXT COLORS
// =============================================================================

// TextPrimary - Main body text
var TextPrimary = lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#CDD6F4"}

// TextSecondary - Labels, less prominent text
var TextSecondary = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#A6ADC8"}

// TextMuted - Hints, timestamps, very subtle text
var TextMuted = lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6C7086"}

// =============================================================================
// SCORE BAND COLORS
// =============================================================================

// Safeguard scores are bucketed into three bands plus two non-numeric
// outcomes. Band edges: 8 and above is good, 5 through 7 needs review,
// below 5 is a failure.

// ScoreGood - Scores of 8 or higher
var ScoreGood = Emerald

// ScoreFair - Scores of 5 through 7
var ScoreFair = Amber

// ScorePoor - Scores below 5
var ScorePoor = Rose

// ScoreAbsent - Principle did not apply to the response
var ScoreAbsent = TextMuted

// ScoreInvalid - Evaluation reply could not be parsed
var ScoreInvalid = Violet

// ScoreValueColor returns the band color for a numeric 0-10 score.
func ScoreValueColor(value int) lipgloss.AdaptiveColor {
	switch {
	case value >= 8:
		return ScoreGood
	case value >= 5:
		return ScoreFair
	default:
		return ScorePoor
	}
}
