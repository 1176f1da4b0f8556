// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package settings loads fileconv configuration from a YAML file, FILECONV_
// environment variables and .env files into types.Config.
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/pdiddy/fileconv/pkg/types"
)

const (
	// ConfigName is the config file base name searched in the config paths.
	ConfigName = "fileconv"

	// EnvPrefix prefixes environment overrides, e.g. FILECONV_IMAGE_JPEG_QUALITY.
	EnvPrefix = "FILECONV"
)

// Configure points v at the config file and environment. An empty cfgFile
// searches ./fileconv.yaml and ~/.config/fileconv/fileconv.yaml.
func Configure(v *viper.Viper, cfgFile string) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(ConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", ConfigName))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
}

// SetDefaults registers the default of every key. Registering each key also
// lets environment variables override values absent from the file.
func SetDefaults(v *viper.Viper) {
	d := types.DefaultConfig()
	v.SetDefault("output_dir", d.OutputDir)
	v.SetDefault("jobs", d.Jobs)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("image.jpeg_quality", d.Image.JPEGQuality)
	v.SetDefault("image.png_compression", string(d.Image.PNGCompression))
	v.SetDefault("image.icon_size", d.Image.IconSize)
	v.SetDefault("image.max_dimension", d.Image.MaxDimension)
	v.SetDefault("helper.path", "")
	v.SetDefault("helper.mode", string(d.Helper.Mode))
	v.SetDefault("helper.project_root", "")
	v.SetDefault("helper.resources_dir", "")
	v.SetDefault("helper.timeout", d.Helper.Timeout)
	v.SetDefault("journal.enabled", true)
	v.SetDefault("journal.path", DefaultJournalPath())
}

// DefaultJournalPath returns <user config dir>/fileconv/history.db, or a
// file in the working directory when no config dir is known.
func DefaultJournalPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ConfigName + "-history.db"
	}
	return filepath.Join(dir, ConfigName, "history.db")
}

// Read reads the config file if one exists. It returns the path used, or ""
// when no file was found.
func Read(v *viper.Viper) (string, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return "", nil
		}
		return "", fmt.Errorf("reading config: %w", err)
	}
	return v.ConfigFileUsed(), nil
}

// Load decodes v into a validated Config.
func Load(v *viper.Viper) (types.Config, error) {
	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return types.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadDotEnv loads KEY=VALUE pairs from the given files into the process
// environment without overriding variables that are already set. Missing
// files are skipped.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var existing []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("loading %s: %w", strings.Join(existing, ", "), err)
	}
	return nil
}

// Validate checks value ranges and enumerations.
func Validate(cfg types.Config) error {
	return validation.ValidateStruct(&cfg,
		validation.Field(&cfg.OutputDir, validation.Required),
		validation.Field(&cfg.Jobs, validation.Min(0), validation.Max(64)),
		validation.Field(&cfg.Log, validation.By(validateLog)),
		validation.Field(&cfg.Image, validation.By(validateImage)),
		validation.Field(&cfg.Helper, validation.By(validateHelper)),
		validation.Field(&cfg.Journal, validation.By(validateJournal)),
	)
}

func validateLog(value interface{}) error {
	l, _ := value.(types.LogConfig)
	return validation.ValidateStruct(&l,
		validation.Field(&l.Level, validation.In("trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled")),
		validation.Field(&l.Format, validation.In("console", "json")),
	)
}

func validateImage(value interface{}) error {
	img, _ := value.(types.ImageConfig)
	return validation.ValidateStruct(&img,
		validation.Field(&img.JPEGQuality, validation.Min(1), validation.Max(100)),
		validation.Field(&img.PNGCompression, validation.In(types.PNGDefault, types.PNGNone, types.PNGSpeed, types.PNGBest)),
		validation.Field(&img.IconSize, validation.Min(16), validation.Max(256)),
		validation.Field(&img.MaxDimension, validation.Min(0)),
	)
}

func validateHelper(value interface{}) error {
	h, _ := value.(types.HelperConfig)
	return validation.ValidateStruct(&h,
		validation.Field(&h.Mode, validation.In(types.HelperAuto, types.HelperDev, types.HelperBundled)),
		validation.Field(&h.Timeout, validation.Min(time.Duration(0))),
	)
}

func validateJournal(value interface{}) error {
	j, _ := value.(types.JournalConfig)
	return validation.ValidateStruct(&j,
		validation.Field(&j.Path, validation.When(j.Enabled, validation.Required)),
	)
}
