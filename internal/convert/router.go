// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/rs/zerolog"

	"github.com/pdiddy/fileconv/internal/formats"
	"github.com/pdiddy/fileconv/pkg/types"
)

// Plan is a validated route: the job to run and the strategy that runs it.
// Plans are produced by Router.Plan and consumed by Router.Execute.
type Plan struct {
	Job    Job
	Family types.Family

	strategy Strategy
}

// Router dispatches jobs to the strategy that owns the input family.
type Router struct {
	strategies map[types.Family]Strategy
}

// NewRouter creates a router over the given family strategies. Families
// without an entry are reported as not implemented.
func NewRouter(strategies map[types.Family]Strategy) *Router {
	m := make(map[types.Family]Strategy, len(strategies))
	for f, s := range strategies {
		if s != nil {
			m[f] = s
		}
	}
	return &Router{strategies: m}
}

// Plan validates req against the format tables without touching the
// filesystem. The error wraps ErrUnsupportedInput, ErrNotImplemented or
// ErrUnsupportedConversion.
func (r *Router) Plan(req types.ConversionRequest) (Plan, error) {
	source := types.FormatOf(req.InputPath)
	target := types.ParseFormat(string(req.Target))

	family, ok := formats.FamilyOf(source)
	if !ok {
		return Plan{}, fmt.Errorf("%w: %s", ErrUnsupportedInput, displayFormat(source))
	}

	strategy, ok := r.strategies[family]
	if !ok {
		return Plan{}, fmt.Errorf("%s conversion is %w", family, ErrNotImplemented)
	}

	// Known formats without any target, such as legacy .doc, have no reader.
	if len(formats.SupportedTargets(string(source))) == 0 {
		return Plan{}, fmt.Errorf("%s conversion is %w", source, ErrNotImplemented)
	}

	if !formats.Supports(source, target) {
		return Plan{}, fmt.Errorf("%w: %s -> %s", ErrUnsupportedConversion, source, displayFormat(target))
	}

	out := types.ConversionRequest{InputPath: req.InputPath, OutputDir: req.OutputDir, Target: target}
	return Plan{
		Job: Job{
			InputPath:  req.InputPath,
			OutputPath: out.OutputPath(),
			Source:     source,
			Target:     target,
		},
		Family:   family,
		strategy: strategy,
	}, nil
}

// Execute runs a plan. Strategy errors and panics become failed results;
// nothing propagates to the caller.
func (r *Router) Execute(ctx context.Context, plan Plan, progress ProgressFunc) (result types.ConversionResult) {
	if progress == nil {
		progress = func(int) {}
	}
	logger := zerolog.Ctx(ctx)

	defer func() {
		if rec := recover(); rec != nil {
			logger.Error().
				Str("family", string(plan.Family)).
				Str("input", plan.Job.InputPath).
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Msg("strategy panicked")
			result = types.Failed(types.KindInternal, fmt.Sprintf("%s conversion failed: %v", plan.Family, rec))
		}
	}()

	if plan.strategy == nil {
		return types.Failed(types.KindInternal, "conversion was not planned")
	}

	logger.Debug().
		Str("family", string(plan.Family)).
		Str("input", plan.Job.InputPath).
		Str("output", plan.Job.OutputPath).
		Msg("routing conversion")

	out, err := plan.strategy.Convert(ctx, plan.Job, progress)
	if err != nil {
		return failure(err)
	}
	if out == "" {
		out = plan.Job.OutputPath
	}
	return types.Succeeded(out)
}

// Route plans and executes req in one step. The output directory must
// already exist.
func (r *Router) Route(ctx context.Context, req types.ConversionRequest, progress ProgressFunc) types.ConversionResult {
	plan, err := r.Plan(req)
	if err != nil {
		return failure(err)
	}
	return r.Execute(ctx, plan, progress)
}

func displayFormat(f types.Format) string {
	if f == "" {
		return "(none)"
	}
	return string(f)
}
