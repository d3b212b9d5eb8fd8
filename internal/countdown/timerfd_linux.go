//go:build linux

package countdown

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

// Timerfd is a Source backed by a CLOCK_BOOTTIME timerfd.
type Timerfd struct {
	fd int
}

// NewTimerfd creates a disarmed, non-blocking timerfd.
func NewTimerfd() (Source, error) {
	fd, err := unix.TimerfdCreate(unix.CLOCK_BOOTTIME, unix.TFD_NONBLOCK|unix.TFD_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("timerfd_create: %w", err)
	}
	return &Timerfd{fd: fd}, nil
}

// Arm sets the countdown. A zero value would disarm a timerfd, so d is
// raised to one nanosecond and the source fires immediately.
func (t *Timerfd) Arm(d time.Duration, mode Mode) error {
	if t.fd < 0 {
		return ErrClosed
	}
	if d <= 0 {
		d = time.Nanosecond
	}
	spec := unix.ItimerSpec{Value: unix.NsecToTimespec(d.Nanoseconds())}
	if mode == Periodic {
		spec.Interval = spec.Value
	}
	if err := unix.TimerfdSettime(t.fd, 0, &spec, nil); err != nil {
		return fmt.Errorf("timerfd_settime: %w", err)
	}
	return nil
}

// Drain reads the 8-byte expiration counter.
func (t *Timerfd) Drain() (uint64, error) {
	if t.fd < 0 {
		return 0, ErrClosed
	}
	var buf [8]byte
	for {
		n, err := unix.Read(t.fd, buf[:])
		switch {
		case errors.Is(err, unix.EINTR):
			continue
		case errors.Is(err, unix.EAGAIN):
			return 0, ErrNotExpired
		case err != nil:
			return 0, fmt.Errorf("read timerfd: %w", err)
		case n != len(buf):
			return 0, fmt.Errorf("read timerfd: short read of %d bytes", n)
		}
		return binary.NativeEndian.Uint64(buf[:]), nil
	}
}

// Descriptor returns the timerfd's file descriptor.
func (t *Timerfd) Descriptor() int {
	return t.fd
}

// Close releases the descriptor. Closing twice is a no-op.
func (t *Timerfd) Close() error {
	if t.fd < 0 {
		return nil
	}
	err := unix.Close(t.fd)
	t.fd = -1
	return err
}
