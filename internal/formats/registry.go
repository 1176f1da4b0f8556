// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package formats holds the static format tables: which family owns an input
// format, and which target formats are reachable from it.
package formats

import (
	"sort"

	"github.com/pdiddy/fileconv/pkg/types"
)

// rasterTargets are reachable from every raster image input.
var rasterTargets = []types.Format{"jpg", "png", "webp", "gif", "bmp", "tiff", "ico", "pdf"}

// families maps an input format token to the family whose strategy owns it.
var families = map[types.Format]types.Family{
	"jpg": types.FamilyImage, "jpeg": types.FamilyImage, "png": types.FamilyImage,
	"gif": types.FamilyImage, "bmp": types.FamilyImage, "webp": types.FamilyImage,
	"tiff": types.FamilyImage, "svg": types.FamilyImage,

	"docx": types.FamilyDocument, "doc": types.FamilyDocument,

	"pdf": types.FamilyPDF,

	"xlsx": types.FamilySpreadsheet, "xls": types.FamilySpreadsheet, "csv": types.FamilySpreadsheet,

	"txt": types.FamilyText, "md": types.FamilyText, "html": types.FamilyText,

	"pptx": types.FamilyPresentation, "ppt": types.FamilyPresentation,

	"mp3": types.FamilyAudio, "wav": types.FamilyAudio, "flac": types.FamilyAudio, "aac": types.FamilyAudio,

	"mp4": types.FamilyVideo, "avi": types.FamilyVideo, "mov": types.FamilyVideo, "wmv": types.FamilyVideo,
}

// targets is the capability table. Formats of unimplemented families and
// legacy .doc have no entry, so a lookup never offers a target that fails
// at conversion time.
var targets = map[types.Format][]types.Format{
	"jpg":  rasterTargets,
	"jpeg": rasterTargets,
	"png":  rasterTargets,
	"gif":  rasterTargets,
	"bmp":  rasterTargets,
	"webp": rasterTargets,
	"tiff": rasterTargets,
	"svg":  {"png", "jpg", "ico"},

	"docx": {"txt", "html", "md"},

	"pdf": {"docx", "txt"},

	"xlsx": {"csv", "json"},
	"xls":  {"csv", "json"},
	"csv":  {"xlsx", "json"},

	"txt":  {"html"},
	"md":   {"html", "txt"},
	"html": {"md", "txt"},
}

// SupportedTargets returns the formats reachable from input. Input is matched
// case-insensitively; an unknown format yields an empty list. The returned
// slice is a copy.
func SupportedTargets(input string) []types.Format {
	list := targets[types.ParseFormat(input)]
	out := make([]types.Format, len(list))
	copy(out, list)
	return out
}

// Supports reports whether target is reachable from input.
func Supports(input, target types.Format) bool {
	for _, f := range targets[types.ParseFormat(string(input))] {
		if f == types.ParseFormat(string(target)) {
			return true
		}
	}
	return false
}

// FamilyOf returns the family owning format and whether it is known.
func FamilyOf(format types.Format) (types.Family, bool) {
	f, ok := families[types.ParseFormat(string(format))]
	return f, ok
}

// Inputs returns every input format with at least one reachable target,
// sorted.
func Inputs() []types.Format {
	out := make([]types.Format, 0, len(targets))
	for f := range targets {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Known returns every input format the family table recognizes, sorted.
func Known() []types.Format {
	out := make([]types.Format, 0, len(families))
	for f := range families {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
