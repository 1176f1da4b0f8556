// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"github.com/disintegration/imaging"
	"github.com/go-pdf/fpdf"
	"github.com/rs/zerolog"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	_ "golang.org/x/image/webp" // registers the webp decoder

	"github.com/pdiddy/fileconv/pkg/types"
)

const (
	// defaultSVGSize is the raster edge used for an SVG with no usable viewBox.
	defaultSVGSize = 512

	// maxSVGEdge caps the longest rasterized edge of an SVG when no
	// MaxDimension is configured.
	maxSVGEdge = 4096
)

// ImageStrategy re-encodes raster images and rasterizes SVG.
type ImageStrategy struct {
	cfg types.ImageConfig
}

// NewImageStrategy creates an image strategy. Zero config values take their
// defaults.
func NewImageStrategy(cfg types.ImageConfig) *ImageStrategy {
	if cfg.JPEGQuality <= 0 || cfg.JPEGQuality > 100 {
		cfg.JPEGQuality = types.DefaultJPEGQuality
	}
	if cfg.IconSize <= 0 {
		cfg.IconSize = types.DefaultIconSize
	}
	if cfg.PNGCompression == "" {
		cfg.PNGCompression = types.PNGDefault
	}
	return &ImageStrategy{cfg: cfg}
}

// Convert decodes the input, applies size rules for the target and writes
// the re-encoded image.
func (s *ImageStrategy) Convert(ctx context.Context, job Job, progress ProgressFunc) (string, error) {
	progress(10)

	img, err := s.decode(job)
	if err != nil {
		return "", err
	}
	progress(30)

	if err := ctx.Err(); err != nil {
		return "", err
	}
	img = s.resize(img, job)
	progress(60)

	if job.Target == "pdf" {
		err = s.writePDF(ctx, img, job.OutputPath)
	} else {
		err = writeFile(ctx, job.OutputPath, func(w io.Writer) error {
			return s.encode(ctx, w, img, job.Target)
		})
	}
	if err != nil {
		return "", fmt.Errorf("writing %s: %w", job.Target, err)
	}
	progress(100)
	return job.OutputPath, nil
}

func (s *ImageStrategy) decode(job Job) (image.Image, error) {
	if job.Source == "svg" {
		limit := maxSVGEdge
		if m := s.cfg.MaxDimension; m > 0 && m < limit {
			limit = m
		}
		size := 0
		if job.Target == "ico" {
			size = min(s.cfg.IconSize, maxSVGEdge)
		}
		return rasterizeSVG(job.InputPath, size, limit)
	}
	img, err := imaging.Open(job.InputPath, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decoding %s image: %w", job.Source, err)
	}
	return img, nil
}

// resize fits icons into a transparent square and caps the longest edge at
// the configured maximum.
func (s *ImageStrategy) resize(img image.Image, job Job) image.Image {
	if job.Target == "ico" {
		size := s.cfg.IconSize
		b := img.Bounds()
		if b.Dx() != size || b.Dy() != size {
			fitted := imaging.Fit(img, size, size, imaging.Lanczos)
			canvas := imaging.New(size, size, color.Transparent)
			img = imaging.PasteCenter(canvas, fitted)
		}
		return img
	}
	if m := s.cfg.MaxDimension; m > 0 {
		b := img.Bounds()
		if b.Dx() > m || b.Dy() > m {
			img = imaging.Fit(img, m, m, imaging.Lanczos)
		}
	}
	return img
}

func (s *ImageStrategy) encode(ctx context.Context, w io.Writer, img image.Image, target types.Format) error {
	switch target {
	case "jpg", "jpeg":
		// JPEG has no alpha channel; transparent pixels become white.
		b := img.Bounds()
		flat := imaging.New(b.Dx(), b.Dy(), color.White)
		flat = imaging.Overlay(flat, img, image.Pt(0, 0), 1.0)
		return imaging.Encode(w, flat, imaging.JPEG, imaging.JPEGQuality(s.cfg.JPEGQuality))
	case "png":
		return imaging.Encode(w, img, imaging.PNG, imaging.PNGCompressionLevel(s.pngLevel()))
	case "gif":
		return imaging.Encode(w, img, imaging.GIF)
	case "bmp":
		return imaging.Encode(w, img, imaging.BMP)
	case "tiff":
		return imaging.Encode(w, img, imaging.TIFF)
	case "webp", "ico":
		zerolog.Ctx(ctx).Debug().
			Str("target", string(target)).
			Msg("no native encoder, writing PNG data")
		return imaging.Encode(w, img, imaging.PNG, imaging.PNGCompressionLevel(s.pngLevel()))
	default:
		return fmt.Errorf("%w: image -> %s", ErrUnsupportedConversion, target)
	}
}

func (s *ImageStrategy) pngLevel() png.CompressionLevel {
	switch s.cfg.PNGCompression {
	case types.PNGNone:
		return png.NoCompression
	case types.PNGSpeed:
		return png.BestSpeed
	case types.PNGBest:
		return png.BestCompression
	default:
		return png.DefaultCompression
	}
}

// writePDF embeds img as the only page of a PDF sized to the image, one
// point per pixel.
func (s *ImageStrategy) writePDF(ctx context.Context, img image.Image, path string) error {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG, imaging.PNGCompressionLevel(s.pngLevel())); err != nil {
		return err
	}

	b := img.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	doc := fpdf.NewCustom(&fpdf.InitType{
		UnitStr: "pt",
		Size:    fpdf.SizeType{Wd: w, Ht: h},
	})
	doc.SetMargins(0, 0, 0)
	doc.SetAutoPageBreak(false, 0)
	doc.AddPage()

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	doc.RegisterImageOptionsReader("page", opts, &buf)
	doc.ImageOptions("page", 0, 0, w, h, false, opts, 0, "")
	if err := doc.Error(); err != nil {
		return err
	}
	return writeFile(ctx, path, doc.Output)
}

// rasterizeSVG renders an SVG file. With size > 0 the drawing is fitted and
// centered in a size x size square; otherwise it renders at its viewBox size,
// scaled down so the longest edge is at most limit.
func rasterizeSVG(path string, size, limit int) (image.Image, error) {
	icon, err := oksvg.ReadIcon(path, oksvg.WarnErrorMode)
	if err != nil {
		return nil, fmt.Errorf("parsing svg: %w", err)
	}

	vw, vh := icon.ViewBox.W, icon.ViewBox.H
	if vw <= 0 || vh <= 0 {
		vw, vh = defaultSVGSize, defaultSVGSize
	}

	var cw, ch int
	var x, y, dw, dh float64
	if size > 0 {
		scale := math.Min(float64(size)/vw, float64(size)/vh)
		dw, dh = vw*scale, vh*scale
		x, y = (float64(size)-dw)/2, (float64(size)-dh)/2
		cw, ch = size, size
	} else {
		scale := 1.0
		if longest := math.Max(vw, vh); limit > 0 && longest > float64(limit) {
			scale = float64(limit) / longest
		}
		cw, ch = max(1, int(math.Round(vw*scale))), max(1, int(math.Round(vh*scale)))
		dw, dh = float64(cw), float64(ch)
	}

	rgba := image.NewRGBA(image.Rect(0, 0, cw, ch))
	icon.SetTarget(x, y, dw, dh)
	scanner := rasterx.NewScannerGV(cw, ch, rgba, rgba.Bounds())
	icon.Draw(rasterx.NewDasher(cw, ch, scanner), 1)
	return rgba, nil
}
