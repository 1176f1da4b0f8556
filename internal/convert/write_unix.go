// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

//go:build !windows

package convert

import (
	"context"
	"fmt"
	"io"

	"github.com/google/renameio/v2"
	"github.com/rs/zerolog"
)

// writeFile streams output into a pending file next to path and atomically
// replaces path once write succeeds. Readers never observe a partial file.
func writeFile(ctx context.Context, path string, write func(io.Writer) error) error {
	pending, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return fmt.Errorf("creating output file %s: %w", path, err)
	}
	defer func() {
		if err := pending.Cleanup(); err != nil {
			zerolog.Ctx(ctx).Debug().Err(err).Str("path", path).Msg("cleanup pending output")
		}
	}()

	if err := write(pending); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
