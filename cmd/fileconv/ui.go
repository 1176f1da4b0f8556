// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"github.com/pdiddy/fileconv/pkg/types"
)

var (
	okLabel   = color.New(color.FgGreen).SprintFunc()
	failLabel = color.New(color.FgRed).SprintFunc()
	warnLabel = color.New(color.FgYellow).SprintFunc()
)

// printResult writes the per-file status line for a finished conversion.
func printResult(w io.Writer, input string, res types.ConversionResult) {
	if res.Success {
		fmt.Fprintf(w, "%s %s -> %s\n", okLabel("converted:"), input, res.OutputPath)
		return
	}
	fmt.Fprintf(w, "%s    %s (%s)\n", failLabel("failed:"), input, res.Error)
}

// batchProgress renders one bar for a whole batch. Each file contributes 100
// units, so concurrent conversions advance the same bar.
type batchProgress struct {
	mu   sync.Mutex
	bar  *progressbar.ProgressBar
	last map[string]int
}

func newBatchProgress(files int) *batchProgress {
	bar := progressbar.NewOptions64(
		int64(files*100),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription(fmt.Sprintf("converting %d file(s)", files)),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
	)
	return &batchProgress{bar: bar, last: make(map[string]int)}
}

// observe advances the bar by the growth of one file's progress.
func (p *batchProgress) observe(ev types.ProgressEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delta := ev.Progress - p.last[ev.FilePath]
	if delta <= 0 {
		return
	}
	p.last[ev.FilePath] = ev.Progress
	_ = p.bar.Add(delta)
}

// complete fills the share of a file that ended without reaching 100, such
// as a request rejected before conversion started.
func (p *batchProgress) complete(path string) {
	p.observe(types.ProgressEvent{FilePath: path, Progress: 100})
}

// clear removes the bar so status lines print on a clean line.
func (p *batchProgress) clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	_ = p.bar.Clear()
}

func (p *batchProgress) finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	_ = p.bar.Finish()
}
