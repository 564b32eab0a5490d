// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/examineai/examine-tui/internal/session"
)

// =============================================================================
// COMMAND CREATORS
// =============================================================================

// submitCmd creates a command that runs one chat turn on the machine.
// The machine appends both sides of the turn to the transcript itself;
// the returned message only triggers a re-render.
func submitCmd(machine *session.Machine, input string) tea.Cmd {
	return func() tea.Msg {
		reply, err := machine.Submit(context.Background(), input)
		if err != nil {
			return SessionErrMsg{Err: err}
		}
		return ReplyMsg{Reply: reply}
	}
}

// evaluateCmd creates a command that runs the safeguard pass on the
// latest assistant reply.
func evaluateCmd(machine *session.Machine) tea.Cmd {
	return func() tea.Msg {
		result, err := machine.Evaluate(context.Background())
		if err != nil {
			return SessionErrMsg{Err: err}
		}
		return EvalMsg{Result: result}
	}
}

// =============================================================================
// BUBBLE TEA LIFECYCLE
// =============================================================================

// Init starts the machine and the input blink.
func (m Model) Init() tea.Cmd {
	m.machine.Start()
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Update handles incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.refreshViewport()
		m.ready = true
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case ReplyMsg:
		m.lastErr = nil
		m.refreshViewport()
		m.viewport.GotoBottom()
		return m, nil

	case EvalMsg:
		m.lastErr = nil
		m.refreshViewport()
		m.viewport.GotoBottom()
		return m, nil

	case SessionErrMsg:
		m.lastErr = msg.Err
		return m, nil

	case refreshMsg:
		m.refreshViewport()
		m.viewport.GotoBottom()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.pending() {
			// Keep the transcript current while a request is in
			// flight; the user's own message lands mid-cycle.
			m.refreshViewport()
			m.viewport.GotoBottom()
		}
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// handleKey routes a key press.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keyMap.Submit):
		if m.pending() {
			return m, nil
		}
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			return m, nil
		}
		m.input.Reset()
		m.lastErr = nil
		cmd := submitCmd(m.machine, text)
		// Refresh immediately so the user's message and the pending
		// indicator show up before the reply lands.
		return m, tea.Batch(cmd, m.spinner.Tick, deferredRefresh())

	case key.Matches(msg, m.keyMap.Evaluate):
		if !m.machine.State().EvaluateEnabled() {
			return m, nil
		}
		m.lastErr = nil
		return m, tea.Batch(evaluateCmd(m.machine), m.spinner.Tick, deferredRefresh())

	case key.Matches(msg, m.keyMap.NewSession):
		if m.pending() {
			return m, nil
		}
		m.machine.Reset()
		m.machine.Start()
		m.lastErr = nil
		m.input.Reset()
		m.refreshViewport()
		return m, nil

	case key.Matches(msg, m.keyMap.ScrollUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keyMap.ScrollDown):
		m.viewport.HalfViewDown()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// refreshMsg asks the model to redraw the transcript.
type refreshMsg struct{}

// deferredRefresh yields a refresh after the current update cycle, once
// the machine has moved into its pending state.
func deferredRefresh() tea.Cmd {
	return func() tea.Msg { return refreshMsg{} }
}

// resize recomputes component dimensions from the window size.
func (m *Model) resize() {
	// One line each for the status bar, the input line, and the help
	// line.
	vh := m.height - 3
	if vh < 3 {
		vh = 3
	}
	m.viewport.Width = m.width
	m.viewport.Height = vh
	m.input.Width = m.width - 4
}
