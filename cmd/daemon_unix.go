//go:build !windows

package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
)

// spawnDetached re-executes the binary with args in a new session, forced
// into foreground mode with stdout and stderr appended to logPath, and
// returns the child's pid.
var spawnDetached = func(args []string, logPath string) (int, error) {
	executable, err := os.Executable()
	if err != nil {
		return 0, fmt.Errorf("failed to get executable path: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return 0, fmt.Errorf("failed to create log directory: %w", err)
	}
	out, err := os.OpenFile(logPath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return 0, fmt.Errorf("failed to open daemon log: %w", err)
	}
	// The child keeps its own copy of the descriptor.
	defer out.Close()

	cmd := exec.Command(executable, args...)
	cmd.Env = append(os.Environ(), envForeground+"=1")
	cmd.Stdin = nil
	cmd.Stdout = out
	cmd.Stderr = out
	// New session: no controlling terminal, survives the parent's exit
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("failed to start daemon: %w", err)
	}
	pid := cmd.Process.Pid

	// Release process so it doesn't become a zombie when it exits
	_ = cmd.Process.Release()

	return pid, nil
}
