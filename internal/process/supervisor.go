// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package process supervises the external PDF-to-DOCX helper: it locates the
// executable, runs it with the input and output paths, captures its output
// streams and classifies the outcome.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var (
	// ErrHelperNotFound means the helper executable is missing on disk.
	ErrHelperNotFound = errors.New("conversion component not found")

	// ErrLaunch means the operating system could not start the helper.
	ErrLaunch = errors.New("failed to start conversion component")

	// ErrHelperExit means the helper ran and reported a failure.
	ErrHelperExit = errors.New("conversion component failed")

	// ErrOutputMissing means the helper claimed success but no output file
	// exists.
	ErrOutputMissing = errors.New("conversion completed but output file not found")

	// ErrTimeout means the helper exceeded the configured run time.
	ErrTimeout = errors.New("conversion component timed out")
)

// ExitError carries the best available diagnostic of a failed helper run.
// Its message is the helper's own error text when it printed one.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string { return e.Message }

// Is makes errors.Is(err, ErrHelperExit) true for every ExitError.
func (e *ExitError) Is(target error) bool { return target == ErrHelperExit }

// Outcome records one helper run.
type Outcome struct {
	ExitCode int
	Stdout   string
	Stderr   string

	// Report is the structured result parsed from Stdout, if any.
	Report *Report

	// OutputPath is the verified output location. Set only on success.
	OutputPath string
}

// command is one process invocation.
type command struct {
	Path   string
	Args   []string
	Dir    string
	Stdout io.Writer
	Stderr io.Writer
}

// startError marks a failure to spawn the process, as opposed to a process
// that ran and exited nonzero.
type startError struct{ err error }

func (e *startError) Error() string { return e.err.Error() }
func (e *startError) Unwrap() error { return e.err }

// executor abstracts process execution for testing. Run returns the exit
// code of a process that ran, a *startError when it could not be spawned,
// or the context error when ctx ended first.
type executor interface {
	Run(ctx context.Context, c command) (int, error)
}

// waitDelay bounds how long Wait keeps draining output after the helper has
// been killed.
const waitDelay = 2 * time.Second

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (osExecutor) Run(ctx context.Context, c command) (int, error) {
	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	cmd.Dir = c.Dir
	cmd.Stdout = c.Stdout
	cmd.Stderr = c.Stderr
	cmd.WaitDelay = waitDelay
	killTree(cmd)
	if err := cmd.Start(); err != nil {
		return -1, &startError{err: err}
	}
	err := cmd.Wait()
	if ctx.Err() != nil {
		return -1, ctx.Err()
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return -1, err
	}
	return 0, nil
}

// Supervisor runs the helper executable once per conversion. It holds no
// per-run state and is safe for concurrent use.
type Supervisor struct {
	locator Locator
	timeout time.Duration
	exec    executor
}

// NewSupervisor creates a supervisor that resolves the helper with loc and
// bounds each run by timeout (zero disables the limit).
func NewSupervisor(loc Locator, timeout time.Duration) *Supervisor {
	return &Supervisor{locator: loc, timeout: timeout, exec: osExecutor{}}
}

// Run converts inputPath into outputPath with the helper. progress, which may
// be nil, receives a fixed schedule: 20 after the helper is located, 40 at
// spawn, 80 after exit and 100 once the output file is verified.
//
// The returned error wraps ErrHelperNotFound, ErrLaunch, ErrTimeout or
// ErrOutputMissing, or is an *ExitError.
func (s *Supervisor) Run(ctx context.Context, inputPath, outputPath string, progress func(int)) (Outcome, error) {
	if progress == nil {
		progress = func(int) {}
	}
	logger := zerolog.Ctx(ctx)

	helper, err := s.locate()
	if err != nil {
		return Outcome{}, err
	}
	logger.Debug().Str("helper", helper).Msg("located conversion component")
	progress(20)

	absIn, err := filepath.Abs(inputPath)
	if err != nil {
		return Outcome{}, fmt.Errorf("resolving input path %s: %w", inputPath, err)
	}
	absOut, err := filepath.Abs(outputPath)
	if err != nil {
		return Outcome{}, fmt.Errorf("resolving output path %s: %w", outputPath, err)
	}

	runCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	progress(40)
	code, runErr := s.exec.Run(runCtx, command{
		Path:   helper,
		Args:   []string{absIn, absOut},
		Dir:    filepath.Dir(helper),
		Stdout: &stdout,
		Stderr: &stderr,
	})

	out := Outcome{
		ExitCode: code,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}
	out.Report = ParseReport(out.Stdout)

	if runErr != nil {
		var se *startError
		switch {
		case errors.As(runErr, &se):
			return out, fmt.Errorf("%w: %v", ErrLaunch, se.err)
		case errors.Is(runErr, context.DeadlineExceeded) && ctx.Err() == nil:
			return out, fmt.Errorf("%w after %s", ErrTimeout, s.timeout)
		default:
			return out, fmt.Errorf("running conversion component: %w", runErr)
		}
	}

	logger.Debug().
		Int("exit_code", code).
		Int("stdout_bytes", len(out.Stdout)).
		Int("stderr_bytes", len(out.Stderr)).
		Msg("conversion component exited")
	progress(80)

	if code != 0 {
		return out, &ExitError{Code: code, Message: failureMessage(out)}
	}
	if out.Report != nil && !out.Report.Success {
		return out, &ExitError{Code: code, Message: failureMessage(out)}
	}

	produced := absOut
	if out.Report != nil && out.Report.OutputPath != "" {
		produced = out.Report.OutputPath
	}
	if _, err := os.Stat(produced); err != nil {
		return out, fmt.Errorf("%w: %s", ErrOutputMissing, produced)
	}
	out.OutputPath = produced
	progress(100)
	return out, nil
}

func (s *Supervisor) locate() (string, error) {
	helper, err := s.locator.Locate()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrHelperNotFound, err)
	}
	if _, err := os.Stat(helper); err != nil {
		return "", fmt.Errorf("%w: %s", ErrHelperNotFound, helper)
	}
	return helper, nil
}

// failureMessage picks the most specific diagnostic: the helper's JSON error,
// then its stderr, then the exit code.
func failureMessage(out Outcome) string {
	if out.Report != nil && out.Report.Error != "" {
		return out.Report.Error
	}
	if msg := strings.TrimSpace(out.Stderr); msg != "" {
		return msg
	}
	return fmt.Sprintf("conversion failed (exit code %d)", out.ExitCode)
}

// Diagnosis describes where the helper is expected and whether it is there.
type Diagnosis struct {
	Path   string `json:"path" yaml:"path"`
	Exists bool   `json:"exists" yaml:"exists"`
	Error  string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Check resolves the helper without running it.
func (s *Supervisor) Check() Diagnosis {
	p, err := s.locator.Locate()
	if err != nil {
		return Diagnosis{Error: err.Error()}
	}
	_, statErr := os.Stat(p)
	return Diagnosis{Path: p, Exists: statErr == nil}
}
