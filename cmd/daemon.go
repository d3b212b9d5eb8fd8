package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/micetimer/micetimer/internal/config"
	daemonpkg "github.com/micetimer/micetimer/internal/daemon"
	"github.com/micetimer/micetimer/internal/unit"
	"github.com/urfave/cli"
)

func daemon(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	cfg, err := loadSettings(ctx)
	if err != nil {
		return err
	}
	if !ctx.Bool("foreground") {
		return detach(cfg)
	}
	return runForeground(cfg)
}

// detach validates the definitions in this process, so a bad file fails
// the command, then starts the daemon in the background.
func detach(cfg *config.Config) error {
	defs, err := unit.LoadDir(timersFs, cfg.TimersDir)
	if err != nil {
		return err
	}
	if len(defs) == 0 {
		fmt.Printf("micetimer: no timers configured in %s\n", cfg.TimersDir)
		return nil
	}
	logPath := detachedLogPath(cfg)
	pid, err := spawnDetached(os.Args[1:], logPath)
	if err != nil {
		return err
	}
	fmt.Printf("micetimer started in background (PID %d), logging to %s\n", pid, logPath)
	return nil
}

func detachedLogPath(cfg *config.Config) string {
	if cfg.Log.File != "" {
		return cfg.Log.File
	}
	return config.DefaultDetachedLog
}

// runForeground runs the daemon in the current process until the loop
// fails or SIGTERM/SIGINT arrives. A signal is a clean exit.
func runForeground(cfg *config.Config) error {
	log, err := newDaemonLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Close()

	comps, err := initDaemonComponents(cfg, log)
	if err != nil {
		return err
	}

	if err := WritePidFile(cfg.PidFile); err != nil {
		log.Warning("Failed to write pid file %s: %v", cfg.PidFile, err)
	} else {
		defer RemovePidFile(cfg.PidFile)
	}

	sigCtx, cancel := setupShutdownHandler()
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- comps.Runner.Run()
	}()

	select {
	case <-sigCtx.Done():
		// The loop goroutine may be mid-dispatch; its resources go away
		// with the process.
		log.Info("Received shutdown signal, exiting")
		return nil
	case err := <-errCh:
		comps.Close()
		if errors.Is(err, daemonpkg.ErrNoTimers) {
			log.Info("Nothing to schedule, exiting")
			return nil
		}
		log.Error("Event loop stopped: %v", err)
		return err
	}
}
