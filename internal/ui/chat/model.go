// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"

	"github.com/examineai/examine-tui/internal/session"
	"github.com/examineai/examine-tui/internal/ui/styles"
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view.
type Model struct {
	// Session
	machine    *session.Machine
	principles session.PrincipleSource

	// Styling
	theme    *styles.Theme
	renderer *glamour.TermRenderer

	// Dimensions
	width  int
	height int
	ready  bool

	// UI components
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	// Key bindings
	keyMap KeyMap

	// Last rejected operation, shown in the status bar
	lastErr error
}

// New creates a chat model driving the given machine. The principle
// source fixes the display order of the safeguard panel.
func New(machine *session.Machine, principles session.PrincipleSource) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type a message..."
	ti.CharLimit = 4096
	ti.Focus()

	vp := viewport.New(80, 20)
	vp.SetContent("")

	// ASCII spinner frames keep the pending indicator portable
	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 10,
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(78),
	)
	if err != nil {
		renderer = nil
	}

	return Model{
		machine:    machine,
		principles: principles,
		theme:      styles.NewTheme(),
		renderer:   renderer,
		viewport:   vp,
		input:      ti,
		spinner:    sp,
		keyMap:     DefaultKeyMap(),
	}
}

// pending reports whether a fetch or evaluation is in flight.
func (m Model) pending() bool {
	st := m.machine.State()
	return st == session.StateResponsePending || st == session.StateEvaluationPending
}
