// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"errors"

	"github.com/pdiddy/fileconv/internal/process"
	"github.com/pdiddy/fileconv/pkg/types"
)

var (
	// ErrInputNotFound means the input path does not exist or is not a file.
	ErrInputNotFound = errors.New("input file not found")

	// ErrUnsupportedInput means no family owns the input format.
	ErrUnsupportedInput = errors.New("unsupported input format")

	// ErrUnsupportedConversion means the target is not reachable from the
	// input format.
	ErrUnsupportedConversion = errors.New("unsupported conversion")

	// ErrNotImplemented means the input family is recognized but has no
	// strategy (presentation, audio, video).
	ErrNotImplemented = errors.New("not implemented")
)

// kindOf maps an error to the ErrorKind reported in a ConversionResult.
func kindOf(err error) types.ErrorKind {
	switch {
	case errors.Is(err, ErrInputNotFound):
		return types.KindInput
	case errors.Is(err, ErrUnsupportedInput):
		return types.KindUnsupportedInput
	case errors.Is(err, ErrUnsupportedConversion):
		return types.KindUnsupportedConversion
	case errors.Is(err, ErrNotImplemented):
		return types.KindNotImplemented
	case errors.Is(err, process.ErrHelperNotFound):
		return types.KindHelperNotFound
	case errors.Is(err, process.ErrLaunch):
		return types.KindHelperLaunch
	case errors.Is(err, process.ErrTimeout):
		return types.KindHelperTimeout
	case errors.Is(err, process.ErrOutputMissing):
		return types.KindOutputMissing
	case errors.Is(err, process.ErrHelperExit):
		return types.KindHelperExit
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return types.KindCanceled
	default:
		return types.KindStrategy
	}
}

// failure converts err into a failed result.
func failure(err error) types.ConversionResult {
	return types.Failed(kindOf(err), err.Error())
}
