// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

//go:build !windows

package process

import (
	"errors"
	"os"
	"os/exec"
	"syscall"
)

// killTree starts the helper in its own process group and makes context
// cancellation kill the whole group, so children of the helper (such as the
// program a PyInstaller bootloader runs) die with it.
func killTree(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		if errors.Is(err, syscall.ESRCH) {
			return os.ErrProcessDone
		}
		return err
	}
}
