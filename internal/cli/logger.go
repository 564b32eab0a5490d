// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/examineai/examine-tui/internal/config"
)

// buildLogger constructs the zap logger from the log section. Logs go
// to the configured file, or stderr when no path is set. The chat TUI
// owns the terminal, so file logging is the useful mode there.
func buildLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Log.Level, err)
	}

	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	if cfg.Log.Path != "" {
		zc.OutputPaths = []string{cfg.Log.Path}
		zc.ErrorOutputPaths = []string{cfg.Log.Path}
	}
	return zc.Build()
}
