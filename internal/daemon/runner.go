// Package daemon provides the core daemon runner for micetimer.
// It loads timer definitions, builds the countdown sources and runs the
// scheduling loop until it fails.
package daemon

import (
	"errors"
	"fmt"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/micetimer/micetimer/internal/countdown"
	"github.com/micetimer/micetimer/internal/dispatch"
	"github.com/micetimer/micetimer/internal/scheduler"
	"github.com/micetimer/micetimer/internal/unit"
	"github.com/micetimer/micetimer/internal/wakelock"
	"github.com/micetimer/micetimer/pkg/logger"
	"github.com/spf13/afero"
)

// Sentinel errors for the daemon runner.
var (
	// ErrAlreadyRunning is returned when Run() is called on a running daemon.
	ErrAlreadyRunning = errors.New("daemon is already running")

	// ErrNoTimers is returned when the timers directory holds no definitions.
	// It is not a failure: the daemon has nothing to do and exits cleanly.
	ErrNoTimers = errors.New("no timers configured")
)

// DefaultTimersDir is where timer definitions live on the device.
const DefaultTimersDir = "/data/adb/micetimer/timers.d"

// Config holds the configuration for the daemon runner.
type Config struct {
	// TimersDir is the directory scanned for *.toml definitions.
	TimersDir string

	// BatchSize is the number of ready timers handled per wait.
	BatchSize int

	// LockPrefix is prepended to timer names to form wake-lock names.
	LockPrefix string
}

// Dependencies holds the external dependencies for the daemon runner.
// This enables dependency injection for testing.
type Dependencies struct {
	// Fs is used to read definitions. If nil, the OS filesystem is used.
	Fs afero.Fs

	// NewSource creates one countdown per timer. If nil, countdown.NewTimerfd is used.
	NewSource countdown.NewSourceFunc

	// NewMultiplexer creates the loop's multiplexer. If nil, countdown.NewEpoll is used.
	NewMultiplexer countdown.NewMultiplexerFunc

	// Locker acquires wake locks. If nil, the sysfs control files are used.
	Locker wakelock.Locker

	// Runner executes commands. If nil, commands run through `sh -c`.
	Runner dispatch.Runner

	// Observers are notified after every dispatch.
	Observers []dispatch.Observer

	// Metrics receives loop events. Optional.
	Metrics scheduler.LoopMetrics

	Logger logger.Logger
}

// Runner manages the daemon lifecycle.
type Runner struct {
	config  *Config
	deps    *Dependencies
	running bool
	mu      sync.Mutex
	reg     *scheduler.Registry
	mux     countdown.Multiplexer
}

// New creates a new daemon runner with the given configuration and dependencies.
// Nil arguments and zero fields get default values.
func New(config *Config, deps *Dependencies) *Runner {
	return &Runner{
		config: applyConfigDefaults(config),
		deps:   applyDependencyDefaults(deps),
	}
}

// applyConfigDefaults returns a Config with default values applied for zero fields.
func applyConfigDefaults(config *Config) *Config {
	cfg := Config{}
	if config != nil {
		cfg = *config
	}
	if cfg.TimersDir == "" {
		cfg.TimersDir = DefaultTimersDir
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = scheduler.DefaultBatchSize
	}
	if cfg.LockPrefix == "" {
		cfg.LockPrefix = wakelock.DefaultPrefix
	}
	return &cfg
}

// applyDependencyDefaults returns Dependencies with default values applied.
func applyDependencyDefaults(deps *Dependencies) *Dependencies {
	d := Dependencies{}
	if deps != nil {
		d = *deps
	}
	if d.Fs == nil {
		d.Fs = afero.NewOsFs()
	}
	if d.NewSource == nil {
		d.NewSource = countdown.NewTimerfd
	}
	if d.NewMultiplexer == nil {
		d.NewMultiplexer = countdown.NewEpoll
	}
	if d.Locker == nil {
		d.Locker = wakelock.NewSysfsLocker(afero.NewOsFs(), "", "")
	}
	if d.Runner == nil {
		d.Runner = dispatch.NewShellRunner(dispatch.DefaultShell)
	}
	if d.Logger == nil {
		d.Logger = logger.NewNopLogger()
	}
	return &d
}

// Config returns the runner's configuration.
func (r *Runner) Config() *Config {
	return r.config
}

// Run loads the timers and runs the scheduling loop on the calling
// goroutine. It returns ErrNoTimers when there is nothing to schedule;
// any other return is a fatal error. Run does not return while the
// loop is healthy.
func (r *Runner) Run() error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return ErrAlreadyRunning
	}
	r.running = true
	r.mu.Unlock()

	loop, err := r.setup()
	if err != nil {
		r.Close()
		return err
	}
	err = loop.Run()
	r.Close()
	return err
}

func (r *Runner) setup() (*scheduler.Loop, error) {
	log := r.deps.Logger
	defs, err := unit.LoadDir(r.deps.Fs, r.config.TimersDir)
	if err != nil {
		return nil, err
	}
	if len(defs) == 0 {
		log.Info("No timers configured in %s", r.config.TimersDir)
		return nil, ErrNoTimers
	}

	mux, err := r.deps.NewMultiplexer()
	if err != nil {
		return nil, fmt.Errorf("create multiplexer: %w", err)
	}
	r.mu.Lock()
	r.mux = mux
	r.mu.Unlock()

	reg, err := scheduler.Build(defs, r.deps.NewSource, mux)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.reg = reg
	r.mu.Unlock()

	for _, def := range defs {
		iv, repeats := def.Unit.Interval()
		if repeats {
			log.Info("Scheduled [%s] in %s, then every %s", def.Name, def.Unit.InitialDelay(), iv)
		} else {
			log.Info("Scheduled [%s] once in %s", def.Name, def.Unit.InitialDelay())
		}
	}

	d := dispatch.New(dispatch.Config{
		Runner:     r.deps.Runner,
		Locker:     r.deps.Locker,
		LockPrefix: r.config.LockPrefix,
		Observers:  r.deps.Observers,
		Logger:     log,
	})
	loop, err := scheduler.NewLoop(scheduler.LoopConfig{
		Registry:    reg,
		Multiplexer: mux,
		Dispatcher:  d,
		Logger:      log,
		Metrics:     r.deps.Metrics,
		BatchSize:   r.config.BatchSize,
	})
	if err != nil {
		return nil, err
	}
	log.Info("Event loop started with %d timers", reg.Len())
	return loop, nil
}

// Close releases the countdown sources and the multiplexer. It is safe to
// call more than once.
func (r *Runner) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result *multierror.Error
	if r.reg != nil {
		if err := r.reg.Close(); err != nil {
			result = multierror.Append(result, err)
		}
		r.reg = nil
	}
	if r.mux != nil {
		if err := r.mux.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("close multiplexer: %w", err))
		}
		r.mux = nil
	}
	r.running = false
	return result.ErrorOrNil()
}

// IsRunning returns true if the daemon is currently running.
func (r *Runner) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}
