// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/examineai/examine-tui/internal/archive"
	"github.com/examineai/examine-tui/internal/budget"
	"github.com/examineai/examine-tui/internal/config"
	"github.com/examineai/examine-tui/internal/model"
	"github.com/examineai/examine-tui/internal/responder"
	"github.com/examineai/examine-tui/internal/safeguard"
	"github.com/examineai/examine-tui/internal/session"
	"github.com/examineai/examine-tui/internal/storage"
	"github.com/examineai/examine-tui/internal/tokens"
	"github.com/examineai/examine-tui/internal/ui/chat"
	"github.com/examineai/examine-tui/internal/ui/repl"
	"github.com/examineai/examine-tui/internal/ui/styles"
)

// =============================================================================
// CHAT COMMAND
// =============================================================================

// runChat wires the session machine and hands it to the TUI or, with
// --plain or a non-terminal stdin, to the line REPL.
func runChat(ctx context.Context) error {
	apiKey := config.APIKey()
	if apiKey == "" {
		return errors.New("OPENAI_API_KEY is not set")
	}

	profile, err := model.LookupProfile(cfg.Chat.Model)
	if err != nil {
		return err
	}

	counter, err := tokens.ForModel(profile.ID)
	if err != nil {
		return fmt.Errorf("token counter for %s: %w", profile.ID, err)
	}

	client := responder.NewClient(apiKey).
		WithBaseURL(cfg.API.BaseURL).
		WithTimeout(time.Duration(cfg.API.TimeoutSecs) * time.Second).
		WithMaxRetries(cfg.API.MaxRetries).
		WithLogger(logger)
	if cfg.API.RateLimitRPS > 0 {
		client = client.WithRateLimit(cfg.API.RateLimitRPS, cfg.API.RateLimitBurst)
	}

	source, err := safeguard.NewSource(cfg.Safeguard.PrinciplesPath, logger)
	if err != nil {
		return fmt.Errorf("load principles: %w", err)
	}

	watchCtx, cancelWatch := context.WithCancel(ctx)
	defer cancelWatch()
	if cfg.Safeguard.WatchPrinciples && cfg.Safeguard.PrinciplesPath != "" {
		if err := source.Watch(watchCtx); err != nil {
			logger.Warn("principles watch unavailable", zap.Error(err))
		}
	}

	engine := safeguard.NewEngine(client, cfg.EvalModel()).
		WithConcurrency(cfg.Safeguard.Concurrency).
		WithLogger(logger)

	if err := os.MkdirAll(cfg.Storage.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	arch, err := archive.Open(cfg.ArchivePath())
	if err != nil {
		return fmt.Errorf("open session archive: %w", err)
	}
	defer arch.Close()

	machine := session.NewMachine(session.Config{
		Profile:     profile,
		Budget:      budget.NewManager(counter, cfg.Chat.ResponseHeadroom),
		Fetcher:     client,
		Evaluator:   engine,
		Principles:  source,
		Transcripts: storage.NewTranscriptStore(cfg.TranscriptPath()),
		Scores:      storage.NewScoreStore(cfg.ScoresPath()),
		Archiver:    arch,
		Logger:      logger,
	})

	// Reset archives discarded sessions itself; this catches the live
	// one on the way out.
	defer archiveSession(ctx, arch, machine)

	if flagPlain || !term.IsTerminal(int(os.Stdin.Fd())) {
		return repl.New(machine, source).Run(ctx)
	}

	styles.DetectBackground()
	program := tea.NewProgram(chat.New(machine, source), tea.WithAltScreen())
	_, err = program.Run()
	return err
}

// archiveSession saves the machine's transcript when it has content.
func archiveSession(ctx context.Context, arch *archive.Archive, machine *session.Machine) {
	t := machine.Transcript()
	if t.IsEmpty() {
		return
	}
	if err := arch.SaveTranscript(ctx, t); err != nil {
		logger.Error("failed to archive session", zap.Error(err))
	}
}
