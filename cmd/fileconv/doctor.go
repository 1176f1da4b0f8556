// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Report the environment and whether the PDF to DOCX helper is available",
	Args:  cobra.NoArgs,
	RunE:  runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()

	exe, err := os.Executable()
	if err != nil {
		exe = "(unknown)"
	}
	wd, err := os.Getwd()
	if err != nil {
		wd = "(unknown)"
	}
	cfgPath := configFileUsed
	if cfgPath == "" {
		cfgPath = "(none, using defaults)"
	}

	fmt.Fprintf(w, "Version:     %s\n", version)
	fmt.Fprintf(w, "Platform:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(w, "Executable:  %s\n", exe)
	fmt.Fprintf(w, "Working dir: %s\n", wd)
	fmt.Fprintf(w, "Config file: %s\n", cfgPath)
	fmt.Fprintf(w, "Output dir:  %s\n", cfg.OutputDir)

	if cfg.Journal.Enabled {
		fmt.Fprintf(w, "History:     %s\n", cfg.Journal.Path)
	} else {
		fmt.Fprintln(w, "History:     disabled")
	}

	diag := newSupervisor().Check()
	fmt.Fprintf(w, "Helper mode: %s\n", cfg.Helper.Mode)
	switch {
	case diag.Error != "":
		fmt.Fprintf(w, "Helper:      %s %s\n", failLabel("not found:"), diag.Error)
	case !diag.Exists:
		fmt.Fprintf(w, "Helper:      %s %s\n", failLabel("missing:"), diag.Path)
	default:
		fmt.Fprintf(w, "Helper:      %s %s\n", okLabel("ok"), diag.Path)
	}
	fmt.Fprintf(w, "Timeout:     %s\n", cfg.Helper.Timeout)

	if !diag.Exists {
		return fmt.Errorf("PDF to DOCX conversion is unavailable")
	}
	return nil
}
