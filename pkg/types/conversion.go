// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the data shared between the converter, its
// strategies and the CLI.
package types

import (
	"path/filepath"
	"strings"
)

// Format is a canonical lowercase format token such as "pdf" or "docx".
type Format string

// ParseFormat normalizes user input into a Format token. It is
// case-insensitive and tolerates a leading dot (".PNG" -> "png").
func ParseFormat(s string) Format {
	return Format(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "."))
}

// FormatOf returns the format token of a file path, derived from its extension.
func FormatOf(path string) Format {
	return ParseFormat(filepath.Ext(path))
}

// String implements fmt.Stringer.
func (f Format) String() string { return string(f) }

// Family groups formats that share one conversion strategy.
type Family string

const (
	FamilyImage        Family = "image"
	FamilyDocument     Family = "document"
	FamilyPDF          Family = "pdf"
	FamilySpreadsheet  Family = "spreadsheet"
	FamilyText         Family = "text"
	FamilyPresentation Family = "presentation"
	FamilyAudio        Family = "audio"
	FamilyVideo        Family = "video"
)

// ConversionRequest describes one file conversion. It is created per call and
// never persisted.
type ConversionRequest struct {
	// InputPath is the file to convert. It must exist.
	InputPath string `json:"input_path" yaml:"input_path"`

	// OutputDir receives the converted file. It is created when missing.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// Target is the requested output format.
	Target Format `json:"target" yaml:"target"`
}

// OutputPath returns the deterministic output location:
// <OutputDir>/<input basename without extension>.<Target>.
func (r ConversionRequest) OutputPath() string {
	base := strings.TrimSuffix(filepath.Base(r.InputPath), filepath.Ext(r.InputPath))
	return filepath.Join(r.OutputDir, base+"."+string(r.Target))
}

// ErrorKind classifies a failed conversion for callers that need more than
// the human-readable message.
type ErrorKind string

const (
	KindInput                 ErrorKind = "input"
	KindOutputDir             ErrorKind = "output_dir"
	KindUnsupportedInput      ErrorKind = "unsupported_input"
	KindUnsupportedConversion ErrorKind = "unsupported_conversion"
	KindNotImplemented        ErrorKind = "not_implemented"
	KindStrategy              ErrorKind = "strategy"
	KindHelperNotFound        ErrorKind = "helper_not_found"
	KindHelperLaunch          ErrorKind = "helper_launch"
	KindHelperExit            ErrorKind = "helper_exit"
	KindHelperTimeout         ErrorKind = "helper_timeout"
	KindOutputMissing         ErrorKind = "output_missing"
	KindCanceled              ErrorKind = "canceled"
	KindInternal              ErrorKind = "internal"
)

// ConversionResult is the outcome of one conversion. Exactly one of
// OutputPath and Error is set.
type ConversionResult struct {
	Success    bool      `json:"success" yaml:"success"`
	OutputPath string    `json:"output_path,omitempty" yaml:"output_path,omitempty"`
	Error      string    `json:"error,omitempty" yaml:"error,omitempty"`
	Kind       ErrorKind `json:"kind,omitempty" yaml:"kind,omitempty"`
}

// Succeeded builds a successful result.
func Succeeded(outputPath string) ConversionResult {
	return ConversionResult{Success: true, OutputPath: outputPath}
}

// Failed builds a failed result. An empty message is replaced so that a
// failure always carries text.
func Failed(kind ErrorKind, msg string) ConversionResult {
	if strings.TrimSpace(msg) == "" {
		msg = "conversion failed"
	}
	return ConversionResult{Kind: kind, Error: msg}
}

// ProgressEvent reports fractional completion of one conversion.
type ProgressEvent struct {
	// FilePath is the InputPath of the request the event belongs to.
	FilePath string `json:"file_path" yaml:"file_path"`

	// Progress is a percentage in [0, 100], non-decreasing per conversion.
	Progress int `json:"progress" yaml:"progress"`
}
