// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package process

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/pdiddy/fileconv/pkg/types"
)

const (
	helperBase = "pdf_to_docx"
	// distDir is where the helper build places the executable, both in a
	// checkout and inside the bundled resources directory.
	distDir = "python-dist"
)

// HelperName returns the platform file name of the PDF-to-DOCX helper.
func HelperName() string {
	if runtime.GOOS == "windows" {
		return helperBase + ".exe"
	}
	return helperBase
}

// Locator resolves the path of the helper executable. The returned path is a
// candidate; the Supervisor checks that it exists before spawning.
type Locator interface {
	Locate() (string, error)
}

// LocatorFunc adapts a function to the Locator interface.
type LocatorFunc func() (string, error)

// Locate calls f.
func (f LocatorFunc) Locate() (string, error) { return f() }

// StaticLocator always resolves to one configured path.
type StaticLocator string

// Locate returns the configured path.
func (s StaticLocator) Locate() (string, error) {
	if s == "" {
		return "", fmt.Errorf("no helper path configured")
	}
	return filepath.Abs(string(s))
}

// DevLocator resolves the helper inside a source checkout:
// <Root>/python-dist/pdf_to_docx[.exe].
type DevLocator struct {
	// Root is the project root. Empty means the working directory.
	Root string
}

// Locate returns the build-output path of the helper.
func (d DevLocator) Locate() (string, error) {
	root := d.Root
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolving working directory: %w", err)
		}
		root = wd
	}
	return filepath.Abs(filepath.Join(root, distDir, HelperName()))
}

// BundledLocator resolves the helper shipped next to an installed binary:
// <ResourcesDir>/python-dist/pdf_to_docx[.exe].
type BundledLocator struct {
	// ResourcesDir is the bundled resources directory. Empty means
	// <directory of the running executable>/resources.
	ResourcesDir string
}

// Locate returns the packaged path of the helper.
func (b BundledLocator) Locate() (string, error) {
	dir := b.ResourcesDir
	if dir == "" {
		exe, err := os.Executable()
		if err != nil {
			return "", fmt.Errorf("resolving executable path: %w", err)
		}
		dir = filepath.Join(filepath.Dir(exe), "resources")
	}
	return filepath.Abs(filepath.Join(dir, distDir, HelperName()))
}

// FirstExisting tries each locator in order and returns the first candidate
// that exists on disk. When none exists it returns the first resolvable
// candidate so the caller can name it in a not-found error.
func FirstExisting(locators ...Locator) Locator {
	return LocatorFunc(func() (string, error) {
		var first string
		var lastErr error
		for _, l := range locators {
			p, err := l.Locate()
			if err != nil {
				lastErr = err
				continue
			}
			if first == "" {
				first = p
			}
			if _, err := os.Stat(p); err == nil {
				return p, nil
			}
		}
		if first != "" {
			return first, nil
		}
		if lastErr == nil {
			lastErr = fmt.Errorf("no helper locations configured")
		}
		return "", lastErr
	})
}

// NewLocator builds the locator selected by cfg. An explicit Path wins over
// Mode; auto mode prefers the bundled location and falls back to the
// checkout build output.
func NewLocator(cfg types.HelperConfig) Locator {
	if cfg.Path != "" {
		return StaticLocator(cfg.Path)
	}
	dev := DevLocator{Root: cfg.ProjectRoot}
	bundled := BundledLocator{ResourcesDir: cfg.ResourcesDir}
	switch cfg.Mode {
	case types.HelperDev:
		return dev
	case types.HelperBundled:
		return bundled
	default:
		return FirstExisting(bundled, dev)
	}
}
