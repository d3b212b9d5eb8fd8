package cmd

import (
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/micetimer/micetimer/cmd/common"
	"github.com/urfave/cli"
)

var (
	shutdownTimeout = 5 * time.Second
	pollInterval    = 100 * time.Millisecond
)

func stopDaemon(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	cfg, err := loadSettings(ctx)
	if err != nil {
		common.PrintRuntimeErr(ctx, "stop", "load_settings", err)
		return nil
	}

	pid, err := ReadPidFile(cfg.PidFile)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Println("Daemon is not running (PID file not found)")
			return nil
		}
		fmt.Fprintf(os.Stderr, "Error reading PID file: %v\n", err)
		return nil
	}

	if !isProcessRunning(pid) {
		fmt.Printf("Daemon is not running (stale PID file for %d)\n", pid)
		_ = RemovePidFile(cfg.PidFile)
		return nil
	}

	fmt.Printf("Stopping daemon (PID %d)...\n", pid)

	if err := killDaemon(pid); err != nil {
		fmt.Fprintf(os.Stderr, "Error stopping daemon: %v\n", err)
		return nil
	}

	// The daemon removes its own PID file on SIGTERM, but not on SIGKILL.
	_ = RemovePidFile(cfg.PidFile)
	fmt.Println("Daemon stopped successfully")
	return nil
}

// isProcessRunning checks if a process with the given PID is still running.
// Signal 0 doesn't actually send a signal but checks if the process exists.
func isProcessRunning(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}

// killDaemon sends SIGTERM to the daemon and waits for it to exit.
// If the daemon doesn't exit within the timeout, it sends SIGKILL.
func killDaemon(pid int) error {
	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("process not found: %w", err)
	}

	if err := process.Signal(syscall.Signal(0)); err != nil {
		return fmt.Errorf("daemon not running (PID %d): %w", pid, err)
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("failed to send SIGTERM: %w", err)
	}

	deadline := time.Now().Add(shutdownTimeout)
	for time.Now().Before(deadline) {
		if err := process.Signal(syscall.Signal(0)); err != nil {
			return nil
		}
		time.Sleep(pollInterval)
	}

	fmt.Println("Graceful shutdown timeout, forcing kill...")
	if err := process.Signal(syscall.SIGKILL); err != nil {
		return fmt.Errorf("failed to send SIGKILL: %w", err)
	}

	// Wait a bit for SIGKILL to take effect
	time.Sleep(500 * time.Millisecond)
	return nil
}
