// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/fileconv/internal/journal"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent conversions",
	Long: `History lists conversions recorded in the history database, newest
first. Recording is controlled by journal.enabled in the configuration.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().Int("limit", 20, "maximum number of entries to show")
	historyCmd.Flags().Bool("failed", false, "show only failed conversions")
	historyCmd.Flags().String("output", journal.OutputTable, "output format: table, json or yaml")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	failed, _ := cmd.Flags().GetBool("failed")
	output, _ := cmd.Flags().GetString("output")

	if cfg.Journal.Path == "" {
		return fmt.Errorf("no history database configured (journal.path)")
	}
	s, err := journal.Open(cfg.Journal.Path)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	entries, err := s.List(ctx, journal.ListOptions{Limit: limit, FailedOnly: failed})
	if err != nil {
		return err
	}
	if err := journal.Write(cmd.OutOrStdout(), entries, output); err != nil {
		return err
	}

	if output == "" || output == journal.OutputTable {
		sum, err := s.Summarize(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\n%d recorded, %d succeeded, %d failed\n", sum.Total, sum.Succeeded, sum.Failed)
	}
	return nil
}
