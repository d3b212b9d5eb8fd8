// Package dispatch runs a timer's command synchronously, bracketed by a
// wake lock when the timer asks for one, and reports the outcome.
package dispatch

import (
	"errors"
	"os/exec"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/micetimer/micetimer/internal/unit"
	"github.com/micetimer/micetimer/internal/wakelock"
	"github.com/micetimer/micetimer/pkg/logger"
	"github.com/spf13/afero"
)

// Outcome classifies a finished run.
type Outcome int

const (
	// Success means the command exited with status zero.
	Success Outcome = iota
	// Failure means the command exited with a non-zero status.
	Failure
	// LaunchError means the command could not be started.
	LaunchError
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case Failure:
		return "failure"
	case LaunchError:
		return "launch_error"
	default:
		return "unknown"
	}
}

// Result describes one dispatch.
type Result struct {
	RunID        string
	Timer        string
	Command      string
	Outcome      Outcome
	ExitCode     int
	Err          error
	StartedAt    time.Time
	FinishedAt   time.Time
	WakeLockHeld bool
	// Signal names the signal that killed the command, if one did.
	Signal string
}

// Duration returns how long the command ran.
func (r Result) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Observer is notified after every dispatch, once the wake lock is released.
type Observer interface {
	Observe(Result)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Result)

// Observe calls f(r).
func (f ObserverFunc) Observe(r Result) { f(r) }

// Config holds the Dispatcher's collaborators. Nil fields get defaults.
type Config struct {
	Runner     Runner
	Locker     wakelock.Locker
	LockPrefix string
	Observers  []Observer
	Logger     logger.Logger
	Now        func() time.Time
}

// Dispatcher executes timer commands.
type Dispatcher struct {
	runner    Runner
	locker    wakelock.Locker
	prefix    string
	observers []Observer
	log       logger.Logger
	now       func() time.Time
}

// New creates a Dispatcher.
func New(cfg Config) *Dispatcher {
	if cfg.Runner == nil {
		cfg.Runner = NewShellRunner(DefaultShell)
	}
	if cfg.Locker == nil {
		cfg.Locker = wakelock.NewSysfsLocker(afero.NewOsFs(), "", "")
	}
	if cfg.LockPrefix == "" {
		cfg.LockPrefix = wakelock.DefaultPrefix
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNopLogger()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Dispatcher{
		runner:    cfg.Runner,
		locker:    cfg.Locker,
		prefix:    cfg.LockPrefix,
		observers: cfg.Observers,
		log:       cfg.Logger,
		now:       cfg.Now,
	}
}

// LockName returns the wake-lock name used for the named timer.
func (d *Dispatcher) LockName(timer string) string {
	return d.prefix + timer
}

// Dispatch runs u.Exec for the named timer and waits for it to finish.
// Nothing that goes wrong here is returned as an error: every failure is
// logged and reflected in the Result.
func (d *Dispatcher) Dispatch(name string, u unit.TimerUnit) Result {
	res := Result{
		RunID:   uuid.NewString(),
		Timer:   name,
		Command: u.Exec,
	}
	d.execute(d.log.With("timer", name), name, u, &res)
	for _, o := range d.observers {
		o.Observe(res)
	}
	return res
}

func (d *Dispatcher) execute(log logger.Logger, name string, u unit.TimerUnit, res *Result) {
	log.Info("Executing [%s]: %s", name, u.Exec)

	if u.WakeLock {
		release, held := wakelock.Hold(d.locker, d.LockName(name), log)
		defer release()
		res.WakeLockHeld = held
	}

	if cl, ok := d.runner.(interface{ CommandLine(string) string }); ok {
		log.Debug("Running %s", cl.CommandLine(u.Exec))
	}
	res.StartedAt = d.now()
	err := d.runner.Run(u.Exec)
	res.FinishedAt = d.now()
	res.Outcome, res.ExitCode = classify(err)
	res.Err = err

	sig, killed := signalOf(err)
	if killed {
		res.Signal = sig.String()
	}

	switch {
	case res.Outcome == Success:
		log.Info("Finished [%s]: Success", name)
	case killed:
		log.Error("Finished [%s]: Killed by signal %d (%s)", name, int(sig), sig)
	case res.Outcome == Failure:
		log.Error("Finished [%s]: Failed with exit code %d", name, res.ExitCode)
	default:
		log.Error("Finished [%s]: Error executing command: %v", name, err)
	}
}

func classify(err error) (Outcome, int) {
	if err == nil {
		return Success, 0
	}
	var exit interface{ ExitCode() int }
	if errors.As(err, &exit) {
		return Failure, exit.ExitCode()
	}
	return LaunchError, -1
}

// signalOf returns the signal that terminated the command. An exit status
// reports -1 in that case.
func signalOf(err error) (syscall.Signal, bool) {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return 0, false
	}
	ws, ok := exitErr.Sys().(syscall.WaitStatus)
	if !ok || !ws.Signaled() {
		return 0, false
	}
	return ws.Signal(), true
}
