// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/pdiddy/fileconv/internal/process"
)

// Helper runs the external PDF to DOCX converter. *process.Supervisor
// implements it.
type Helper interface {
	Run(ctx context.Context, inputPath, outputPath string, progress func(int)) (process.Outcome, error)
}

// PDFStrategy extracts the text layer of a PDF in process and delegates
// DOCX output to the external helper.
type PDFStrategy struct {
	helper Helper
}

// NewPDFStrategy creates a PDF strategy. helper may be nil.
func NewPDFStrategy(helper Helper) *PDFStrategy {
	return &PDFStrategy{helper: helper}
}

// Convert writes the PDF as plain text or DOCX.
func (s *PDFStrategy) Convert(ctx context.Context, job Job, progress ProgressFunc) (string, error) {
	switch job.Target {
	case "txt":
		return s.toText(ctx, job, progress)
	case "docx":
		return s.toDocx(ctx, job, progress)
	default:
		return "", fmt.Errorf("%w: pdf -> %s", ErrUnsupportedConversion, job.Target)
	}
}

func (s *PDFStrategy) toDocx(ctx context.Context, job Job, progress ProgressFunc) (string, error) {
	if s.helper == nil {
		return "", fmt.Errorf("%w: no helper configured", process.ErrHelperNotFound)
	}
	progress(10)
	out, err := s.helper.Run(ctx, job.InputPath, job.OutputPath, progress)
	if err != nil {
		return "", err
	}
	return out.OutputPath, nil
}

func (s *PDFStrategy) toText(ctx context.Context, job Job, progress ProgressFunc) (string, error) {
	progress(10)

	f, r, err := pdf.Open(job.InputPath)
	if err != nil {
		return "", fmt.Errorf("opening pdf: %w", err)
	}
	defer func() { _ = f.Close() }()
	progress(20)

	numPages := r.NumPage()
	fonts := make(map[string]*pdf.Font)
	parts := make([]string, 0, numPages)

	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		for _, name := range p.Fonts() {
			if _, ok := fonts[name]; !ok {
				font := p.Font(name)
				fonts[name] = &font
			}
		}
		text, err := p.GetPlainText(fonts)
		if err != nil {
			return "", fmt.Errorf("reading pdf page %d: %w", i, err)
		}
		parts = append(parts, strings.TrimSpace(text))
		progress(20 + 50*i/numPages)
	}

	text := strings.Join(parts, "\n\n")
	if text != "" {
		text += "\n"
	}
	if err := writeText(ctx, job.OutputPath, text); err != nil {
		return "", fmt.Errorf("writing txt: %w", err)
	}
	progress(100)
	return job.OutputPath, nil
}
