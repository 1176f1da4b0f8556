// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"io"

	"github.com/pdiddy/fileconv/pkg/types"
)

// ProgressFunc receives a completion percentage in [0, 100].
type ProgressFunc func(percent int)

// Job is the routed unit of work handed to a Strategy.
type Job struct {
	InputPath  string
	OutputPath string
	Source     types.Format
	Target     types.Format
}

// Strategy converts one family of formats. Implementations report progress at
// acquisition, midpoint and completion, ending at 100 on success, and return
// the path of the file they wrote.
type Strategy interface {
	Convert(ctx context.Context, job Job, progress ProgressFunc) (string, error)
}

// StrategyFunc adapts a function to the Strategy interface.
type StrategyFunc func(ctx context.Context, job Job, progress ProgressFunc) (string, error)

// Convert calls f.
func (f StrategyFunc) Convert(ctx context.Context, job Job, progress ProgressFunc) (string, error) {
	return f(ctx, job, progress)
}

// writeText writes UTF-8 text to path, replacing any existing file.
func writeText(ctx context.Context, path, text string) error {
	return writeFile(ctx, path, func(w io.Writer) error {
		_, err := io.WriteString(w, text)
		return err
	})
}

// writeBytes writes data to path, replacing any existing file.
func writeBytes(ctx context.Context, path string, data []byte) error {
	return writeFile(ctx, path, func(w io.Writer) error {
		_, err := io.Copy(w, bytes.NewReader(data))
		return err
	})
}
