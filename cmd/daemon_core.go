package cmd

import (
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/micetimer/micetimer/internal/config"
	daemonpkg "github.com/micetimer/micetimer/internal/daemon"
	"github.com/micetimer/micetimer/internal/dispatch"
	"github.com/micetimer/micetimer/internal/journal"
	"github.com/micetimer/micetimer/internal/metrics"
	"github.com/micetimer/micetimer/internal/wakelock"
	"github.com/micetimer/micetimer/pkg/logger"
	"github.com/spf13/afero"
)

// DaemonComponents holds all initialized daemon components.
type DaemonComponents struct {
	Journal *journal.Journal
	Metrics *metrics.Metrics
	Runner  *daemonpkg.Runner
	logger  logger.Logger
}

// Close releases all daemon component resources in reverse order of
// initialization.
func (c *DaemonComponents) Close() error {
	var result *multierror.Error
	if c.Runner != nil {
		if err := c.Runner.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	if c.Journal != nil {
		if err := c.Journal.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	if c.logger != nil {
		c.logger.Debug("Daemon components released")
	}
	return result.ErrorOrNil()
}

// initDaemonComponents builds the runner and its observers from the
// settings. On error, any partially initialized components are closed.
var initDaemonComponents = func(cfg *config.Config, log logger.Logger) (*DaemonComponents, error) {
	c := &DaemonComponents{logger: log}

	var observers []dispatch.Observer
	if cfg.Journal.Path != "" {
		j, err := journal.Open(cfg.Journal.Path, cfg.Journal.Retain)
		if err != nil {
			log.Error("Journal initialization failed: %v", err)
			return nil, err
		}
		c.Journal = j
		observers = append(observers, journal.Observer(j, log.With("component", "journal")))
	}

	c.Metrics = metrics.New(cfg.Metrics.Textfile, log.With("component", "metrics"))
	observers = append(observers, c.Metrics)

	osFs := afero.NewOsFs()
	c.Runner = daemonpkg.New(&daemonpkg.Config{
		TimersDir:  cfg.TimersDir,
		BatchSize:  cfg.BatchSize,
		LockPrefix: cfg.WakeLock.Prefix,
	}, &daemonpkg.Dependencies{
		Fs:        osFs,
		Locker:    wakelock.NewSysfsLocker(osFs, cfg.WakeLock.LockPath, cfg.WakeLock.UnlockPath),
		Runner:    dispatch.NewShellRunner(cfg.Shell),
		Observers: observers,
		Metrics:   c.Metrics,
		Logger:    log,
	})
	return c, nil
}

// newDaemonLogger returns the stderr logger, teed to the log file when one
// is configured.
func newDaemonLogger(cfg *config.Config) (logger.Logger, error) {
	console, err := logger.NewZeroLogger(cfg.LoggerOptions())
	if err != nil {
		return nil, err
	}
	// A detached daemon's stderr already is the log file.
	if cfg.Log.File == "" || stderrIs(cfg.Log.File) {
		return console, nil
	}
	file, err := logger.NewFileLogger(cfg.Log.File, cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	return logger.NewMultiLogger(console, file), nil
}

// stderrIs reports whether the process's stderr is the file at path.
func stderrIs(path string) bool {
	fd, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	fi, err := os.Stat(path)
	if err != nil {
		return false
	}
	return os.SameFile(fd, fi)
}
