// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/examineai/examine-tui/internal/config"
	"github.com/examineai/examine-tui/internal/model"
)

func TestBuildLoggerLevels(t *testing.T) {
	cfg := config.Default()

	for _, level := range []string{"debug", "info", "warn", "error"} {
		cfg.Log.Level = level
		logger, err := buildLogger(cfg)
		if err != nil {
			t.Errorf("buildLogger(%q): %v", level, err)
			continue
		}
		_ = logger.Sync()
	}

	cfg.Log.Level = "loud"
	if _, err := buildLogger(cfg); err == nil {
		t.Error("expected error for invalid level")
	}
}

func TestRunChatRejectsUnknownModel(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg = config.Default()
	cfg.Chat.Model = "gpt-99"
	logger = zap.NewNop()

	err := runChat(context.Background())
	if err == nil {
		t.Fatal("expected error for unknown model")
	}
	if !strings.Contains(err.Error(), "gpt-99") {
		t.Errorf("error %q does not name the model", err)
	}
}

func TestRunChatRequiresAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	cfg = config.Default()
	logger = zap.NewNop()

	if err := runChat(context.Background()); err == nil {
		t.Fatal("expected error when OPENAI_API_KEY is unset")
	}
}

func TestFormatSessionRow(t *testing.T) {
	meta := model.Meta{
		ID:           "sess_abc",
		Title:        "Capital of France",
		Model:        "gpt-4",
		MessageCount: 6,
		UpdatedAt:    time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC),
	}

	row := formatSessionRow(meta)
	for _, want := range []string{"sess_abc", "Capital of France", "gpt-4", "6", "2025-03-14 09:30"} {
		if !strings.Contains(row, want) {
			t.Errorf("row %q missing %q", row, want)
		}
	}
	if got := len(strings.Split(row, "\t")); got != 5 {
		t.Errorf("row has %d columns, want 5", got)
	}
}
