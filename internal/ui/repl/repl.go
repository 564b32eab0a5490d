// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package repl provides a line-oriented chat loop for terminals where
// the full-screen TUI is unwanted, and for piped input.
package repl

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"
	"golang.org/x/term"

	"github.com/examineai/examine-tui/internal/model"
	"github.com/examineai/examine-tui/internal/safeguard"
	"github.com/examineai/examine-tui/internal/session"
	"github.com/examineai/examine-tui/internal/ui/styles"
)

// =============================================================================
// STYLES
// =============================================================================

var (
	promptStyle    = lipgloss.NewStyle().Foreground(styles.Cyan).Bold(true)
	assistantStyle = lipgloss.NewStyle().Foreground(styles.Purple).Bold(true)
	errorStyle     = lipgloss.NewStyle().Foreground(styles.Rose)
	mutedStyle     = lipgloss.NewStyle().Foreground(styles.TextMuted)
	titleStyle     = lipgloss.NewStyle().Bold(true)
)

// =============================================================================
// REPL
// =============================================================================

// REPL drives a session.Machine from a readline loop.
type REPL struct {
	machine    *session.Machine
	principles session.PrincipleSource
	out        io.Writer
	renderer   *glamour.TermRenderer
}

// New creates a REPL writing to stdout. Markdown rendering is enabled
// only when stdout is a terminal, so piped output stays plain.
func New(machine *session.Machine, principles session.PrincipleSource) *REPL {
	r := &REPL{
		machine:    machine,
		principles: principles,
		out:        os.Stdout,
	}
	if term.IsTerminal(int(os.Stdout.Fd())) {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(80),
		)
		if err == nil {
			r.renderer = renderer
		}
	}
	return r
}

// Run executes the loop until EOF, /quit, or context cancellation.
func (r *REPL) Run(ctx context.Context) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	r.machine.Start()

	fmt.Fprintf(r.out, "%s %s\n",
		titleStyle.Render("examine"),
		mutedStyle.Render("("+r.machine.Model().Name+")  /eval  /new  /quit"))

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		input, err := line.Prompt(promptStyle.Render("you> "))
		if err == liner.ErrPromptAborted || err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		if strings.HasPrefix(input, "/") {
			if quit := r.handleCommand(ctx, input); quit {
				return nil
			}
			continue
		}

		r.turn(ctx, input)
	}
}

// handleCommand dispatches a slash command. Returns true to exit.
func (r *REPL) handleCommand(ctx context.Context, input string) bool {
	switch input {
	case "/quit", "/exit":
		return true
	case "/new":
		r.machine.Reset()
		r.machine.Start()
		fmt.Fprintln(r.out, mutedStyle.Render("started a new session"))
	case "/eval":
		r.evaluate(ctx)
	default:
		fmt.Fprintln(r.out, errorStyle.Render("unknown command: "+input))
	}
	return false
}

// turn runs one chat exchange and prints the reply.
func (r *REPL) turn(ctx context.Context, input string) {
	reply, err := r.machine.Submit(ctx, input)
	if err != nil {
		fmt.Fprintln(r.out, errorStyle.Render(err.Error()))
		return
	}

	fmt.Fprintln(r.out, assistantStyle.Render("assistant>"))
	if reply.Status == model.StatusErr {
		fmt.Fprintln(r.out, errorStyle.Render(reply.Content))
		return
	}

	body := reply.Content
	if r.renderer != nil {
		if rendered, rerr := r.renderer.Render(body); rerr == nil {
			body = strings.TrimRight(rendered, "\n")
		}
	}
	fmt.Fprintln(r.out, body)
	if reply.Status == model.StatusWarn {
		fmt.Fprintln(r.out, mutedStyle.Render("(response was truncated by the model)"))
	}
}

// evaluate runs the safeguard pass and prints the score table.
func (r *REPL) evaluate(ctx context.Context) {
	if !r.machine.State().EvaluateEnabled() {
		fmt.Fprintln(r.out, errorStyle.Render("nothing to evaluate yet"))
		return
	}

	result, err := r.machine.Evaluate(ctx)
	if err != nil {
		fmt.Fprintln(r.out, errorStyle.Render(err.Error()))
		return
	}

	fmt.Fprintln(r.out, titleStyle.Render("Safeguard Evaluation"))
	for _, p := range r.principles.Principles() {
		rec, ok := result.Records[p.Description]
		if !ok {
			continue
		}
		fmt.Fprintf(r.out, "  %s: %s\n", rec.Principle, FormatScore(rec.Score))
		if rec.Assessment != "" && rec.Score.Kind != safeguard.ScoreError {
			fmt.Fprintln(r.out, mutedStyle.Render("    "+rec.Assessment))
		}
	}
	fmt.Fprintln(r.out, titleStyle.Render(FormatAggregate(result)))
}

// FormatScore renders a score for line output.
func FormatScore(s safeguard.Score) string {
	switch s.Kind {
	case safeguard.ScoreNotApplicable:
		return "not applicable"
	case safeguard.ScoreError:
		return "value error"
	default:
		return fmt.Sprintf("%d/10", s.Value)
	}
}

// FormatAggregate renders the overall score line.
func FormatAggregate(result *safeguard.Result) string {
	if result.Aggregate == nil {
		return "Overall Score: Not Available"
	}
	return fmt.Sprintf("Overall Score: %.2f", *result.Aggregate)
}
