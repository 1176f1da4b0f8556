// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

//go:build windows

package process

import "os/exec"

// killTree keeps the default cancellation, which kills the helper process.
// Descendants that still hold the output pipes are cut off by WaitDelay.
func killTree(cmd *exec.Cmd) {
	cmd.Cancel = func() error {
		return cmd.Process.Kill()
	}
}
