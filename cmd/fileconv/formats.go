// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/fileconv/internal/formats"
	"github.com/pdiddy/fileconv/pkg/types"
)

// formatRow is one line of the capability table.
type formatRow struct {
	Input   types.Format   `json:"input" yaml:"input"`
	Family  types.Family   `json:"family" yaml:"family"`
	Targets []types.Format `json:"targets" yaml:"targets"`
}

var formatsCmd = &cobra.Command{
	Use:   "formats [format]",
	Short: "List input formats and the targets reachable from them",
	Long: `Formats prints the capability table. With an argument (a format such as
png or a file name such as report.docx) only that input is shown. Formats
that are recognized but not yet convertible are listed with no targets.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFormats,
}

func init() {
	formatsCmd.Flags().String("output", "table", "output format: table, json or yaml")

	rootCmd.AddCommand(formatsCmd)
}

func runFormats(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")

	inputs := formats.Known()
	if len(args) == 1 {
		f := types.ParseFormat(args[0])
		if strings.Contains(args[0], ".") {
			f = types.FormatOf(args[0])
		}
		if _, ok := formats.FamilyOf(f); !ok {
			return fmt.Errorf("unknown format %q", args[0])
		}
		inputs = []types.Format{f}
	}

	rows := make([]formatRow, 0, len(inputs))
	for _, f := range inputs {
		family, _ := formats.FamilyOf(f)
		rows = append(rows, formatRow{Input: f, Family: family, Targets: formats.SupportedTargets(string(f))})
	}
	return writeFormats(cmd.OutOrStdout(), rows, output)
}

func writeFormats(w io.Writer, rows []formatRow, output string) error {
	switch output {
	case "", "table":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "INPUT\tFAMILY\tTARGETS")
		for _, r := range rows {
			targets := "(not implemented)"
			if len(r.Targets) > 0 {
				parts := make([]string, len(r.Targets))
				for i, t := range r.Targets {
					parts[i] = string(t)
				}
				targets = strings.Join(parts, ", ")
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Input, r.Family, targets)
		}
		return tw.Flush()
	case "json":
		data, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "yaml":
		data, err := yaml.Marshal(rows)
		if err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
		_, err = w.Write(data)
		return err
	default:
		return fmt.Errorf("unknown output format %q (want table, json or yaml)", output)
	}
}
