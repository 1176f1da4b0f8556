// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/fileconv/internal/convert"
	"github.com/pdiddy/fileconv/internal/journal"
	"github.com/pdiddy/fileconv/internal/process"
	"github.com/pdiddy/fileconv/pkg/types"
)

var convertCmd = &cobra.Command{
	Use:   "convert <files...>",
	Short: "Convert files to a target format",
	Long: `Convert converts each file to the format given by --to and writes the
result to the output directory as <name>.<format>, replacing any existing
file of that name.

Files are processed one at a time unless --jobs is greater than one. A file
whose format cannot be converted to the target fails without affecting the
others. The command exits non-zero when any file fails.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringP("to", "t", "", "target format, e.g. png, pdf, docx, csv (required)")
	convertCmd.Flags().StringP("out", "o", "", "output directory (default from config: converted)")
	convertCmd.Flags().IntP("jobs", "j", 0, "number of files converted concurrently (default from config: 1)")
	convertCmd.Flags().Bool("no-progress", false, "disable the progress bar")
	_ = convertCmd.MarkFlagRequired("to")

	_ = viper.BindPFlag("output_dir", convertCmd.Flags().Lookup("out"))
	_ = viper.BindPFlag("jobs", convertCmd.Flags().Lookup("jobs"))

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	to, _ := cmd.Flags().GetString("to")
	noProgress, _ := cmd.Flags().GetBool("no-progress")
	target := types.ParseFormat(to)

	reqs := make([]types.ConversionRequest, len(args))
	for i, in := range args {
		reqs[i] = types.ConversionRequest{InputPath: in, OutputDir: cfg.OutputDir, Target: target}
	}

	conv := newConverter()
	jrnl := openJournal(cmd)
	if jrnl != nil {
		defer jrnl.Close()
	}

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	var bar *batchProgress
	if !noProgress {
		bar = newBatchProgress(len(reqs))
	}

	// Entries are timed from the first progress event of each file.
	var mu sync.Mutex
	batchStart := time.Now()
	starts := make(map[string]time.Time, len(reqs))
	onProgress := func(ev types.ProgressEvent) {
		mu.Lock()
		if _, ok := starts[ev.FilePath]; !ok {
			starts[ev.FilePath] = time.Now()
		}
		mu.Unlock()
		if bar != nil {
			bar.observe(ev)
		}
	}
	startOf := func(path string) time.Time {
		mu.Lock()
		defer mu.Unlock()
		if t, ok := starts[path]; ok {
			return t
		}
		return batchStart
	}

	batch := conv.ConvertBatch(ctx, reqs, cfg.Jobs, onProgress, func(i int, res types.ConversionResult) {
		if bar != nil {
			bar.complete(reqs[i].InputPath)
			bar.clear()
		}
		printResult(out, reqs[i].InputPath, res)
		record(ctx, jrnl, journal.NewEntry(reqs[i], res, startOf(reqs[i].InputPath)))
	})
	if bar != nil {
		bar.finish()
	}

	if len(reqs) > 1 {
		fmt.Fprintf(out, "\n%d converted, %d failed (total: %d)\n", batch.Converted, batch.Failed, batch.Total())
	}
	if batch.HasFailures() {
		return fmt.Errorf("%d of %d file(s) failed", batch.Failed, batch.Total())
	}
	return nil
}

// newConverter wires the default strategies and the PDF to DOCX supervisor
// from the loaded configuration.
func newConverter() *convert.Converter {
	return convert.NewDefault(cfg, newSupervisor())
}

func newSupervisor() *process.Supervisor {
	return process.NewSupervisor(process.NewLocator(cfg.Helper), cfg.Helper.Timeout)
}

// openJournal opens the history database when enabled. Failures are logged
// and conversion proceeds without a journal.
func openJournal(cmd *cobra.Command) *journal.Store {
	if !cfg.Journal.Enabled {
		return nil
	}
	s, err := journal.Open(cfg.Journal.Path)
	if err != nil {
		loggerFrom(cmd).Warn().Err(err).Str("path", cfg.Journal.Path).Msg("history disabled")
		return nil
	}
	return s
}

func record(ctx context.Context, s *journal.Store, e journal.Entry) {
	if s == nil {
		return
	}
	if _, err := s.Record(context.WithoutCancel(ctx), e); err != nil {
		fmt.Fprintf(os.Stderr, "%s could not record history: %v\n", warnLabel("warning:"), err)
	}
}
