// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/fileconv/internal/formats"
	"github.com/pdiddy/fileconv/internal/journal"
	"github.com/pdiddy/fileconv/internal/watch"
	"github.com/pdiddy/fileconv/pkg/types"
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Convert files as they appear in a directory",
	Long: `Watch converts every file created or modified in <dir> to the format
given by --to, once its writes have settled. Files whose format cannot reach
the target are ignored, as is anything inside the output directory. Stop
with Ctrl-C.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringP("to", "t", "", "target format (required)")
	watchCmd.Flags().StringP("out", "o", "", "output directory (default: <dir>/converted)")
	watchCmd.Flags().Duration("debounce", watch.DefaultDebounce, "quiet period before a changed file is converted")
	_ = watchCmd.MarkFlagRequired("to")

	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	dir := args[0]
	to, _ := cmd.Flags().GetString("to")
	outDir, _ := cmd.Flags().GetString("out")
	debounce, _ := cmd.Flags().GetDuration("debounce")

	target := types.ParseFormat(to)
	if outDir == "" {
		outDir = filepath.Join(dir, types.DefaultOutputDir)
	}
	absOut, err := filepath.Abs(outDir)
	if err != nil {
		return fmt.Errorf("resolving output directory: %w", err)
	}

	conv := newConverter()
	jrnl := openJournal(cmd)
	if jrnl != nil {
		defer jrnl.Close()
	}
	out := cmd.OutOrStdout()

	opts := watch.Options{
		Dir:      dir,
		Debounce: debounce,
		Accept: func(path string) bool {
			if inside(absOut, path) {
				return false
			}
			return formats.Supports(types.FormatOf(path), target)
		},
	}

	fmt.Fprintf(out, "watching %s, converting to %s in %s\n", dir, target, outDir)
	return watch.Run(cmd.Context(), opts, func(ctx context.Context, path string) {
		req := types.ConversionRequest{InputPath: path, OutputDir: outDir, Target: target}
		start := time.Now()
		res := conv.ConvertFile(ctx, req, nil)
		printResult(out, path, res)
		record(ctx, jrnl, journal.NewEntry(req, res, start))
	})
}

// inside reports whether path lies within dir.
func inside(dir, path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(dir, abs)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
