// Package countdown wraps the kernel objects behind the scheduler: one
// countdown Source per timer and a single Multiplexer that blocks until
// sources become ready.
//
// On Linux a Source is a timerfd on CLOCK_BOOTTIME, which keeps counting
// while the device is suspended, and the Multiplexer is an epoll instance.
// Other platforms get ErrUnsupported. FakeSource and FakeMultiplexer let the
// scheduler run without kernel objects.
package countdown

import (
	"errors"
	"time"
)

// Errors reported by sources and multiplexers.
var (
	// ErrInterrupted is returned by Wait when a signal interrupted the wait.
	// Callers retry.
	ErrInterrupted = errors.New("wait interrupted")

	// ErrNotExpired is returned by Drain when no expiration is pending.
	ErrNotExpired = errors.New("countdown not expired")

	// ErrUnsupported is returned on platforms without timerfd/epoll.
	ErrUnsupported = errors.New("countdown sources are not supported on this platform")

	// ErrClosed is returned when using a closed source or multiplexer.
	ErrClosed = errors.New("countdown closed")
)

// Mode selects how a source is armed.
type Mode int

const (
	// OneShot fires once and must be re-armed explicitly.
	OneShot Mode = iota
	// Periodic re-fires every duration at a fixed phase.
	Periodic
)

func (m Mode) String() string {
	switch m {
	case OneShot:
		return "one-shot"
	case Periodic:
		return "periodic"
	default:
		return "unknown"
	}
}

// Source is a kernel countdown that becomes ready once its duration elapses.
type Source interface {
	// Arm (re)starts the countdown relative to now.
	Arm(d time.Duration, mode Mode) error

	// Drain acknowledges readiness and returns the number of expirations
	// since the last Drain.
	Drain() (uint64, error)

	// Descriptor identifies the source inside a Multiplexer.
	Descriptor() int

	Close() error
}

// Multiplexer blocks until one or more registered sources are ready.
type Multiplexer interface {
	// Register adds src's expiration event, tagged with src.Descriptor().
	Register(src Source) error

	// Wait fills ready with descriptors of ready sources and returns how many
	// were written. A negative timeout blocks indefinitely; a timeout with no
	// ready source returns 0.
	Wait(ready []int, timeout time.Duration) (int, error)

	Close() error
}

// NewSourceFunc creates countdown sources.
type NewSourceFunc func() (Source, error)

// NewMultiplexerFunc creates a multiplexer.
type NewMultiplexerFunc func() (Multiplexer, error)
