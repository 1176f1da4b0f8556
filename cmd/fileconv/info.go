// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/fileconv/internal/formats"
	"github.com/pdiddy/fileconv/pkg/types"
)

var infoCmd = &cobra.Command{
	Use:   "info <file>",
	Short: "Show a file's format and the targets it can be converted to",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	path := args[0]
	st, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("input file not found: %s", path)
	}
	if st.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}

	format := types.FormatOf(path)
	family, known := formats.FamilyOf(format)

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "File:    %s\n", path)
	fmt.Fprintf(w, "Size:    %s\n", humanSize(st.Size()))
	if format == "" {
		fmt.Fprintln(w, "Format:  (none)")
	} else {
		fmt.Fprintf(w, "Format:  %s\n", format)
	}
	if !known {
		fmt.Fprintf(w, "Family:  %s\n", warnLabel("unknown"))
		return nil
	}
	fmt.Fprintf(w, "Family:  %s\n", family)

	targets := formats.SupportedTargets(string(format))
	if len(targets) == 0 {
		fmt.Fprintf(w, "Targets: %s\n", warnLabel("not implemented"))
		return nil
	}
	parts := make([]string, len(targets))
	for i, t := range targets {
		parts[i] = string(t)
	}
	fmt.Fprintf(w, "Targets: %s\n", strings.Join(parts, ", "))
	return nil
}

func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
