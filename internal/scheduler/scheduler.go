package scheduler

import (
	"errors"
	"fmt"
	"time"

	"github.com/micetimer/micetimer/internal/countdown"
	"github.com/micetimer/micetimer/internal/dispatch"
	"github.com/micetimer/micetimer/internal/unit"
	"github.com/micetimer/micetimer/pkg/logger"
)

// DefaultBatchSize is the number of ready descriptors handled per wait.
const DefaultBatchSize = 16

// Dispatcher runs a timer's command to completion.
type Dispatcher interface {
	Dispatch(name string, u unit.TimerUnit) dispatch.Result
}

// LoopMetrics receives scheduling events that do not pass through the
// dispatcher.
type LoopMetrics interface {
	RearmFailed(timer string)
	Coalesced(timer string, expirations uint64)
}

type nopMetrics struct{}

func (nopMetrics) RearmFailed(string)       {}
func (nopMetrics) Coalesced(string, uint64) {}

// LoopConfig holds the loop's collaborators.
type LoopConfig struct {
	Registry    *Registry
	Multiplexer countdown.Multiplexer
	Dispatcher  Dispatcher
	Logger      logger.Logger
	Metrics     LoopMetrics

	// BatchSize defaults to DefaultBatchSize.
	BatchSize int
	// WaitTimeout bounds each wait; zero or negative blocks indefinitely.
	WaitTimeout time.Duration
	Now         func() time.Time
}

// Loop is the single-threaded scheduling loop.
type Loop struct {
	reg     *Registry
	mux     countdown.Multiplexer
	disp    Dispatcher
	log     logger.Logger
	metrics LoopMetrics
	ready   []int
	timeout time.Duration
	now     func() time.Time
}

// NewLoop creates a Loop. Registry, Multiplexer and Dispatcher are required.
func NewLoop(cfg LoopConfig) (*Loop, error) {
	if cfg.Registry == nil || cfg.Multiplexer == nil || cfg.Dispatcher == nil {
		return nil, errors.New("scheduler: registry, multiplexer and dispatcher are required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNopLogger()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = nopMetrics{}
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.WaitTimeout <= 0 {
		cfg.WaitTimeout = -1
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Loop{
		reg:     cfg.Registry,
		mux:     cfg.Multiplexer,
		disp:    cfg.Dispatcher,
		log:     cfg.Logger,
		metrics: cfg.Metrics,
		ready:   make([]int, cfg.BatchSize),
		timeout: cfg.WaitTimeout,
		now:     cfg.Now,
	}, nil
}

// Run waits and handles ready timers until the multiplexer fails.
// Interrupted waits are retried. Run only returns with a non-nil error.
func (l *Loop) Run() error {
	for {
		if _, err := l.Step(); err != nil {
			return err
		}
	}
}

// Step performs one wait and handles every descriptor it returned, in
// order. It returns the number of timers dispatched. An interrupted wait
// counts as an empty step.
func (l *Loop) Step() (int, error) {
	n, err := l.mux.Wait(l.ready, l.timeout)
	if err != nil {
		if errors.Is(err, countdown.ErrInterrupted) {
			return 0, nil
		}
		return 0, fmt.Errorf("wait for timers: %w", err)
	}
	dispatched := 0
	for _, fd := range l.ready[:n] {
		if l.handle(fd) {
			dispatched++
		}
	}
	return dispatched, nil
}

func (l *Loop) handle(fd int) bool {
	t, ok := l.reg.Lookup(fd)
	if !ok {
		l.log.Debug("Ignoring event for unknown descriptor %d", fd)
		return false
	}
	if t.Dormant {
		return false
	}
	log := l.log.With("timer", t.Name)

	expirations, err := t.Source.Drain()
	switch {
	case errors.Is(err, countdown.ErrNotExpired):
		log.Debug("Spurious wakeup for %s", t.Name)
		return false
	case err != nil:
		log.Warning("Failed to read timer %s: %v", t.Name, err)
	case expirations > 1:
		log.Debug("Timer %s expired %d times, running once", t.Name, expirations)
		l.metrics.Coalesced(t.Name, expirations)
	}

	l.disp.Dispatch(t.Name, t.Unit)
	t.Fires++
	t.LastFinished = l.now()

	interval, ok := t.Unit.Interval()
	if !ok {
		log.Debug("Timer %s has no interval, not rescheduling", t.Name)
		return true
	}
	if err := t.Source.Arm(interval, countdown.OneShot); err != nil {
		log.Error("Failed to reschedule timer %s: %v", t.Name, err)
		t.Dormant = true
		l.metrics.RearmFailed(t.Name)
	}
	return true
}
