// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/examineai/examine-tui/internal/safeguard"
)

// =============================================================================
// PRINCIPLES COMMAND
// =============================================================================

var principlesCmd = &cobra.Command{
	Use:   "principles",
	Short: "Print the active safeguard principles",
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := safeguard.NewSource(cfg.Safeguard.PrinciplesPath, logger)
		if err != nil {
			return err
		}
		list := source.Principles()

		origin := cfg.Safeguard.PrinciplesPath
		if origin == "" {
			origin = "built-in defaults"
		}
		fmt.Printf("%d principles (%s)\n\n", len(list), origin)
		for i, p := range list {
			fmt.Printf("%2d. %s\n", i+1, p.Description)
		}
		return nil
	},
}

var principlesCheckCmd = &cobra.Command{
	Use:   "check [path]",
	Short: "Validate a principles file without loading it into a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := safeguard.LoadPrinciples(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s: ok, %d principles\n", args[0], len(list))
		return nil
	},
}

func init() {
	principlesCmd.AddCommand(principlesCheckCmd)
}
