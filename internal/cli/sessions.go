// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/examineai/examine-tui/internal/archive"
	"github.com/examineai/examine-tui/internal/model"
)

// =============================================================================
// SESSIONS COMMAND
// =============================================================================

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage archived chat sessions",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withArchive(func(arch *archive.Archive) error {
			metas, err := arch.ListSessions(cmd.Context())
			if err != nil {
				return err
			}
			if len(metas) == 0 {
				fmt.Println("no archived sessions")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tMODEL\tMESSAGES\tUPDATED")
			for _, meta := range metas {
				fmt.Fprintln(w, formatSessionRow(meta))
			}
			return w.Flush()
		})
	},
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show [session-id]",
	Short: "Print one archived session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withArchive(func(arch *archive.Archive) error {
			t, err := arch.LoadTranscript(cmd.Context(), args[0])
			if err != nil {
				if errors.Is(err, archive.ErrNotFound) {
					return fmt.Errorf("no session %q", args[0])
				}
				return err
			}

			fmt.Printf("%s  (%s, %d messages)\n\n", t.GetTitle(), t.Model, t.Len())
			for _, msg := range t.Messages {
				fmt.Printf("[%s] %s\n%s\n\n",
					msg.Timestamp.Format("2006-01-02 15:04"),
					msg.Role.DisplayName(),
					msg.Content)
			}
			return nil
		})
	},
}

var sessionsRmCmd = &cobra.Command{
	Use:     "rm [session-id]",
	Aliases: []string{"delete"},
	Short:   "Delete an archived session",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withArchive(func(arch *archive.Archive) error {
			if err := arch.DeleteSession(cmd.Context(), args[0]); err != nil {
				if errors.Is(err, archive.ErrNotFound) {
					return fmt.Errorf("no session %q", args[0])
				}
				return err
			}
			fmt.Printf("deleted %s\n", args[0])
			return nil
		})
	},
}

func init() {
	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsShowCmd)
	sessionsCmd.AddCommand(sessionsRmCmd)
}

// withArchive opens the configured archive around fn.
func withArchive(fn func(*archive.Archive) error) error {
	arch, err := archive.Open(cfg.ArchivePath())
	if err != nil {
		return fmt.Errorf("open session archive: %w", err)
	}
	defer arch.Close()
	return fn(arch)
}

// formatSessionRow renders one listing line for the tabwriter.
func formatSessionRow(meta model.Meta) string {
	return fmt.Sprintf("%s\t%s\t%s\t%d\t%s",
		meta.ID,
		meta.Title,
		meta.Model,
		meta.MessageCount,
		meta.UpdatedAt.Format("2006-01-02 15:04"),
	)
}
