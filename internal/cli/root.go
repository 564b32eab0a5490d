// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/examineai/examine-tui/internal/config"
)

// =============================================================================
// ROOT COMMAND
// =============================================================================

var (
	// Global flags
	flagConfig  string
	flagModel   string
	flagPlain   bool
	flagVerbose bool

	// Effective configuration, built in PersistentPreRunE
	cfg *config.Config

	// Logger shared by all commands
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "examine",
	Short: "examine - LLM chat with a safeguard evaluation pass",
	Long: `examine is a chat client for OpenAI-compatible completion APIs with a
second, independent evaluation pass: every assistant response can be
scored against a configurable list of principles, each on a 0-10 scale,
and the scores are persisted alongside the transcript.

Run without arguments to start chatting.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if flagConfig != "" {
			cfg, err = config.LoadFrom(flagConfig)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("load configuration: %w", err)
		}
		if flagModel != "" {
			cfg.Chat.Model = flagModel
			if err := cfg.Validate(); err != nil {
				return err
			}
		}
		if flagVerbose {
			cfg.Log.Level = "debug"
		}

		logger, err = buildLogger(cfg)
		if err != nil {
			return fmt.Errorf("initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config.toml")
	rootCmd.PersistentFlags().StringVarP(&flagModel, "model", "m", "", "chat model override")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")
	rootCmd.Flags().BoolVar(&flagPlain, "plain", false, "line-oriented interface instead of the TUI")
	chatCmd.Flags().BoolVar(&flagPlain, "plain", false, "line-oriented interface instead of the TUI")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(principlesCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the command tree.
func Execute(version string) error {
	rootCmd.Version = version
	return rootCmd.Execute()
}

// chatCmd is an explicit alias for the root behavior.
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start chatting (the default command)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd.Context())
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(rootCmd.Version)
	},
}
