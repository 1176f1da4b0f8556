// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// LogConfig holds logger settings.
type LogConfig struct {
	// Level is a zerolog level name: debug, info, warn, error.
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format selects console or json output.
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// PNGCompression names a PNG encoder compression setting.
type PNGCompression string

const (
	PNGDefault PNGCompression = "default"
	PNGNone    PNGCompression = "none"
	PNGSpeed   PNGCompression = "speed"
	PNGBest    PNGCompression = "best"
)

// ImageConfig holds encoder options for the image strategy.
type ImageConfig struct {
	// JPEGQuality is the lossy quality for jpg output, 1-100 (default 80).
	JPEGQuality int `json:"jpeg_quality" yaml:"jpeg_quality" mapstructure:"jpeg_quality"`

	// PNGCompression is the lossless compression level for png output.
	PNGCompression PNGCompression `json:"png_compression" yaml:"png_compression" mapstructure:"png_compression"`

	// IconSize is the square edge in pixels of ico output (default 64).
	IconSize int `json:"icon_size" yaml:"icon_size" mapstructure:"icon_size"`

	// MaxDimension bounds the longest edge of raster output. Zero keeps the
	// source size.
	MaxDimension int `json:"max_dimension" yaml:"max_dimension" mapstructure:"max_dimension"`
}

// HelperMode selects how the external PDF-to-DOCX helper is located.
type HelperMode string

const (
	HelperAuto    HelperMode = "auto"
	HelperDev     HelperMode = "dev"
	HelperBundled HelperMode = "bundled"
)

// HelperConfig holds settings for the external PDF-to-DOCX helper process.
type HelperConfig struct {
	// Path overrides discovery with an explicit executable path.
	Path string `json:"path,omitempty" yaml:"path,omitempty" mapstructure:"path"`

	// Mode selects dev (build output), bundled (resources dir) or auto (both).
	Mode HelperMode `json:"mode" yaml:"mode" mapstructure:"mode"`

	// ProjectRoot is the directory holding python-dist/ in dev mode
	// (default: working directory).
	ProjectRoot string `json:"project_root,omitempty" yaml:"project_root,omitempty" mapstructure:"project_root"`

	// ResourcesDir is the bundled resources directory
	// (default: <executable dir>/resources).
	ResourcesDir string `json:"resources_dir,omitempty" yaml:"resources_dir,omitempty" mapstructure:"resources_dir"`

	// Timeout bounds one helper run. Zero disables the limit.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// JournalConfig controls the conversion history database.
type JournalConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	Path    string `json:"path" yaml:"path" mapstructure:"path"`
}

// Config groups all settings of the fileconv CLI.
type Config struct {
	// OutputDir is the default output directory for conversions.
	OutputDir string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir"`

	// Jobs is the number of files converted concurrently in a batch (default 1).
	Jobs int `json:"jobs" yaml:"jobs" mapstructure:"jobs"`

	Log     LogConfig     `json:"log" yaml:"log" mapstructure:"log"`
	Image   ImageConfig   `json:"image" yaml:"image" mapstructure:"image"`
	Helper  HelperConfig  `json:"helper" yaml:"helper" mapstructure:"helper"`
	Journal JournalConfig `json:"journal" yaml:"journal" mapstructure:"journal"`
}

// Default values applied when a setting is absent.
const (
	DefaultJPEGQuality   = 80
	DefaultIconSize      = 64
	DefaultHelperTimeout = 10 * time.Minute
	DefaultOutputDir     = "converted"
)

// DefaultConfig returns the configuration used when no file or flag
// overrides a value.
func DefaultConfig() Config {
	return Config{
		OutputDir: DefaultOutputDir,
		Jobs:      1,
		Log:       LogConfig{Level: "info", Format: "console"},
		Image: ImageConfig{
			JPEGQuality:    DefaultJPEGQuality,
			PNGCompression: PNGDefault,
			IconSize:       DefaultIconSize,
		},
		Helper: HelperConfig{
			Mode:    HelperAuto,
			Timeout: DefaultHelperTimeout,
		},
	}
}
