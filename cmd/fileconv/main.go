// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the fileconv CLI. Each subcommand is a
// thin host over internal/convert, which does the actual conversion work.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/fileconv/internal/logging"
	"github.com/pdiddy/fileconv/internal/settings"
	"github.com/pdiddy/fileconv/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// cfg is the validated configuration, loaded before any subcommand runs.
var cfg types.Config

// configFileUsed is the config file that was read, if any.
var configFileUsed string

// rootCmd is the base command for the fileconv CLI.
var rootCmd = &cobra.Command{
	Use:   "fileconv",
	Short: "Convert images, documents, spreadsheets and PDFs between formats",
	Long: `fileconv converts files between formats. Images are re-encoded or
rasterized, DOCX documents become text, HTML or Markdown, spreadsheets are
reshaped to CSV, JSON or XLSX, and PDFs are converted to text in process or
to DOCX by an external conversion component.

Output files are named after the input with the target extension and are
written to the output directory (created when missing).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := settings.Load(viper.GetViper())
		if err != nil {
			return err
		}
		cfg = loaded

		if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
			color.NoColor = true
		}

		logger := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
		if configFileUsed != "" {
			logger.Debug().Str("path", configFileUsed).Msg("using config file")
		}
		cmd.SetContext(logger.WithContext(cmd.Context()))
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./fileconv.yaml or ~/.config/fileconv/fileconv.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "", "log format: console or json")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")

	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

func initConfig() {
	if err := settings.LoadDotEnv(); err != nil {
		l := logging.New(logging.Config{})
		l.Warn().Err(err).Msg("ignoring .env")
	}

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	settings.Configure(viper.GetViper(), cfgFile)

	used, err := settings.Read(viper.GetViper())
	if err != nil {
		l := logging.New(logging.Config{})
		l.Fatal().Err(err).Msg("cannot load configuration")
	}
	configFileUsed = used
}

// loggerFrom returns the logger installed by the root command.
func loggerFrom(cmd *cobra.Command) *zerolog.Logger {
	return zerolog.Ctx(cmd.Context())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
