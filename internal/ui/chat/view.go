// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/examineai/examine-tui/internal/model"
	"github.com/examineai/examine-tui/internal/safeguard"
	"github.com/examineai/examine-tui/internal/session"
)

// =============================================================================
// VIEW
// =============================================================================

// View renders the full chat screen.
func (m Model) View() string {
	if !m.ready {
		return "Starting..."
	}

	var b strings.Builder
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.inputLine())
	b.WriteString("\n")
	b.WriteString(m.helpLine())
	return b.String()
}

// statusLine renders the model name, session state, and any rejection
// notice.
func (m Model) statusLine() string {
	profile := m.machine.Model()
	st := m.machine.State()

	left := fmt.Sprintf(" %s | %s", profile.Name, st)
	if m.lastErr != nil {
		left += " | " + m.theme.ErrorText.Render(m.lastErr.Error())
	}
	return m.theme.StatusBar.Width(m.width).Render(left)
}

// inputLine renders the prompt or the pending spinner.
func (m Model) inputLine() string {
	if m.pending() {
		label := "waiting for response"
		if m.machine.State() == session.StateEvaluationPending {
			label = "evaluating"
		}
		return fmt.Sprintf(" %s %s", m.spinner.View(), m.theme.Muted.Render(label+"..."))
	}
	return m.input.View()
}

// helpLine renders the key hints, dimming evaluate when unavailable.
func (m Model) helpLine() string {
	hints := []string{
		m.theme.StatusKey.Render("enter") + " send",
	}
	if m.machine.State().EvaluateEnabled() {
		hints = append(hints, m.theme.StatusKey.Render("ctrl+e")+" evaluate")
	}
	hints = append(hints,
		m.theme.StatusKey.Render("ctrl+n")+" new",
		m.theme.StatusKey.Render("ctrl+c")+" quit",
	)
	return m.theme.Help.Render(" " + strings.Join(hints, "  "))
}

// =============================================================================
// TRANSCRIPT RENDERING
// =============================================================================

// refreshViewport rebuilds the viewport content from the transcript and
// the current safeguard result.
func (m *Model) refreshViewport() {
	transcript := m.machine.Transcript()

	var b strings.Builder
	for _, msg := range transcript.Messages {
		b.WriteString(m.renderMessage(msg))
		b.WriteString("\n")
	}

	if result := m.machine.Result(); result != nil &&
		m.machine.State() == session.StateEvaluationDisplayed {
		b.WriteString(m.renderEvalPanel(result))
		b.WriteString("\n")
	}

	m.viewport.SetContent(b.String())
}

// renderMessage renders one transcript entry with its role label.
func (m Model) renderMessage(msg *model.Message) string {
	var label string
	switch msg.Role {
	case model.RoleUser:
		label = m.theme.UserLabel.Render("You")
	case model.RoleAssistant:
		label = m.theme.AssistantLabel.Render("Assistant")
	case model.RoleSystem:
		label = m.theme.SystemLabel.Render("System")
	default:
		label = m.theme.SystemLabel.Render(msg.Role.DisplayName())
	}

	body := msg.Content
	switch msg.Status {
	case model.StatusErr:
		body = m.theme.ErrorText.Render(body)
	default:
		if msg.Role == model.RoleAssistant && m.renderer != nil {
			if rendered, err := m.renderer.Render(body); err == nil {
				body = strings.TrimRight(rendered, "\n")
			}
		}
		if msg.Status == model.StatusWarn {
			label += " " + m.theme.WarnBadge.Render("[truncated]")
		}
	}

	return label + "\n" + body + "\n"
}

// =============================================================================
// SAFEGUARD PANEL
// =============================================================================

// renderEvalPanel renders per-principle scores in principle-file order,
// followed by the aggregate.
func (m Model) renderEvalPanel(result *safeguard.Result) string {
	var b strings.Builder
	b.WriteString(m.theme.PanelTitle.Render("Safeguard Evaluation"))
	b.WriteString("\n\n")

	for _, p := range m.principles.Principles() {
		rec, ok := result.Records[p.Description]
		if !ok {
			continue
		}
		b.WriteString(m.renderScoreLine(rec))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.theme.PanelTitle.Render(overallLine(result)))

	return m.theme.PanelBorder.Width(m.width - 4).Render(b.String())
}

// renderScoreLine renders one principle's score and assessment.
func (m Model) renderScoreLine(rec safeguard.Record) string {
	display := m.scoreDisplay(rec.Score)
	line := fmt.Sprintf("%s  %s",
		m.theme.PrincipleLabel.Render(rec.Principle+":"),
		display,
	)
	if rec.Assessment != "" && rec.Score.Kind != safeguard.ScoreError {
		line += "\n" + m.theme.Assessment.Render("  "+rec.Assessment)
	}
	return line
}

// scoreDisplay renders a score in its band color.
func (m Model) scoreDisplay(s safeguard.Score) string {
	switch s.Kind {
	case safeguard.ScoreNotApplicable:
		return m.theme.AbsentStyle().Render(scoreText(s))
	case safeguard.ScoreError:
		return m.theme.InvalidStyle().Render(scoreText(s))
	default:
		return m.theme.ScoreStyle(s.Value).Render(scoreText(s))
	}
}

// scoreText is the plain-text form of a score display.
func scoreText(s safeguard.Score) string {
	switch s.Kind {
	case safeguard.ScoreNotApplicable:
		return "not applicable"
	case safeguard.ScoreError:
		return "value error"
	default:
		return fmt.Sprintf("%d/10", s.Value)
	}
}

// overallLine is the aggregate summary, "Not Available" when no
// principle produced a numeric score.
func overallLine(result *safeguard.Result) string {
	if result.Aggregate == nil {
		return "Overall Score: Not Available"
	}
	return fmt.Sprintf("Overall Score: %.2f", *result.Aggregate)
}
