// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert dispatches file conversions to format-family strategies.
// The Converter is the boundary used by hosts: it validates the request,
// prepares the output directory, routes the job and relays progress.
package convert

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/fileconv/internal/formats"
	"github.com/pdiddy/fileconv/pkg/types"
)

// Converter runs conversion requests. It holds no per-request state and is
// safe for concurrent use.
type Converter struct {
	router *Router
}

// New creates a converter that routes through r.
func New(r *Router) *Converter {
	return &Converter{router: r}
}

// NewDefault creates a converter with the built-in strategies. helper runs
// PDF to DOCX conversions and may be nil, in which case those conversions
// fail with a helper-not-found result.
func NewDefault(cfg types.Config, helper Helper) *Converter {
	return New(NewRouter(DefaultStrategies(cfg, helper)))
}

// DefaultStrategies returns the strategy for every implemented family.
// Presentation, audio and video have none.
func DefaultStrategies(cfg types.Config, helper Helper) map[types.Family]Strategy {
	return map[types.Family]Strategy{
		types.FamilyImage:       NewImageStrategy(cfg.Image),
		types.FamilyDocument:    DocumentStrategy{},
		types.FamilySpreadsheet: SpreadsheetStrategy{},
		types.FamilyPDF:         NewPDFStrategy(helper),
		types.FamilyText:        TextStrategy{},
	}
}

// SupportedTargets lists the formats reachable from input.
func (c *Converter) SupportedTargets(input string) []types.Format {
	return formats.SupportedTargets(input)
}

// ConvertFile converts one file. It never returns an error: every failure,
// including a panic in a strategy, is reported in the result. onProgress may
// be nil; when set it receives non-decreasing events tagged with
// req.InputPath, ending with 100 whenever a strategy ran.
//
// Requests rejected before routing (missing input, unsupported pair) leave
// the filesystem untouched.
func (c *Converter) ConvertFile(ctx context.Context, req types.ConversionRequest, onProgress func(types.ProgressEvent)) (result types.ConversionResult) {
	logger := zerolog.Ctx(ctx).With().
		Str("input", req.InputPath).
		Str("target", string(req.Target)).
		Logger()

	defer func() {
		if rec := recover(); rec != nil {
			logger.Error().Interface("panic", rec).Bytes("stack", debug.Stack()).Msg("conversion panicked")
			result = types.Failed(types.KindInternal, fmt.Sprintf("conversion failed: %v", rec))
		}
	}()

	if err := ctx.Err(); err != nil {
		return failure(err)
	}

	info, err := os.Stat(req.InputPath)
	if err != nil || !info.Mode().IsRegular() {
		return failure(fmt.Errorf("%w: %s", ErrInputNotFound, req.InputPath))
	}
	if req.OutputDir == "" {
		return types.Failed(types.KindOutputDir, "output directory is required")
	}

	// Progress stays tagged with the path the caller passed in.
	tag := req.InputPath
	if req, err = absolute(req); err != nil {
		return types.Failed(types.KindInput, err.Error())
	}

	plan, err := c.router.Plan(req)
	if err != nil {
		logger.Debug().Err(err).Msg("conversion rejected")
		return failure(err)
	}

	if err := os.MkdirAll(req.OutputDir, 0o755); err != nil {
		return types.Failed(types.KindOutputDir, fmt.Sprintf("creating output directory: %v", err))
	}

	rep := newReporter(tag, onProgress)
	result = c.router.Execute(logger.WithContext(ctx), plan, rep.report)
	rep.finish()

	if result.Success {
		logger.Info().Str("output", result.OutputPath).Msg("converted")
	} else {
		logger.Warn().Str("kind", string(result.Kind)).Str("error", result.Error).Msg("conversion failed")
	}
	return result
}

// absolute resolves the input path and output directory against the working
// directory.
func absolute(req types.ConversionRequest) (types.ConversionRequest, error) {
	in, err := filepath.Abs(req.InputPath)
	if err != nil {
		return req, fmt.Errorf("resolving input path %s: %w", req.InputPath, err)
	}
	out, err := filepath.Abs(req.OutputDir)
	if err != nil {
		return req, fmt.Errorf("resolving output directory %s: %w", req.OutputDir, err)
	}
	req.InputPath, req.OutputDir = in, out
	return req, nil
}

// BatchResult summarizes a batch run.
type BatchResult struct {
	Results   []types.ConversionResult
	Converted int
	Failed    int
}

// Total returns the number of requests processed.
func (r BatchResult) Total() int {
	return r.Converted + r.Failed
}

// HasFailures reports whether any request failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// ConvertBatch converts reqs with at most jobs conversions in flight. With
// jobs <= 1 requests run sequentially in order. onProgress and onResult may be
// nil; with jobs > 1 they are called from several goroutines. Results are
// indexed like reqs. Requests not started before ctx ends fail as canceled.
func (c *Converter) ConvertBatch(
	ctx context.Context,
	reqs []types.ConversionRequest,
	jobs int,
	onProgress func(types.ProgressEvent),
	onResult func(i int, res types.ConversionResult),
) BatchResult {
	results := make([]types.ConversionResult, len(reqs))
	run := func(ctx context.Context, i int) {
		if err := ctx.Err(); err != nil {
			results[i] = types.Failed(types.KindCanceled, fmt.Sprintf("%s: %v", reqs[i].InputPath, err))
		} else {
			results[i] = c.ConvertFile(ctx, reqs[i], onProgress)
		}
		if onResult != nil {
			onResult(i, results[i])
		}
	}

	if jobs <= 1 {
		for i := range reqs {
			run(ctx, i)
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(jobs)
		for i := range reqs {
			g.Go(func() error {
				run(gctx, i)
				return nil
			})
		}
		_ = g.Wait()
	}

	batch := BatchResult{Results: results}
	for _, r := range results {
		if r.Success {
			batch.Converted++
		} else {
			batch.Failed++
		}
	}
	return batch
}

// reporter relays strategy progress to the host, tagged with the input path,
// clamped to [0, 100] and never decreasing.
type reporter struct {
	mu   sync.Mutex
	path string
	sink func(types.ProgressEvent)
	last int
}

func newReporter(path string, sink func(types.ProgressEvent)) *reporter {
	return &reporter{path: path, sink: sink, last: -1}
}

func (r *reporter) report(p int) {
	if r.sink == nil {
		return
	}
	p = min(max(p, 0), 100)

	r.mu.Lock()
	defer r.mu.Unlock()
	if p <= r.last {
		return
	}
	r.last = p
	r.sink(types.ProgressEvent{FilePath: r.path, Progress: p})
}

// finish emits the terminal 100 if the strategy stopped short of it.
func (r *reporter) finish() {
	r.report(100)
}
