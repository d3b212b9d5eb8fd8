//go:build linux

package countdown

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

// Epoll is a Multiplexer backed by an epoll instance.
type Epoll struct {
	fd     int
	events []unix.EpollEvent
}

// NewEpoll creates an epoll instance.
func NewEpoll() (Multiplexer, error) {
	fd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("epoll_create1: %w", err)
	}
	return &Epoll{fd: fd}, nil
}

// Register watches src for readability.
func (e *Epoll) Register(src Source) error {
	if e.fd < 0 {
		return ErrClosed
	}
	fd := src.Descriptor()
	ev := unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(fd)}
	if err := unix.EpollCtl(e.fd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		return fmt.Errorf("epoll_ctl add fd %d: %w", fd, err)
	}
	return nil
}

// Wait blocks in epoll_wait for at most len(ready) events.
func (e *Epoll) Wait(ready []int, timeout time.Duration) (int, error) {
	if e.fd < 0 {
		return 0, ErrClosed
	}
	if len(ready) == 0 {
		return 0, fmt.Errorf("epoll_wait: empty event buffer")
	}
	if cap(e.events) < len(ready) {
		e.events = make([]unix.EpollEvent, len(ready))
	}
	events := e.events[:len(ready)]

	msec := -1
	if timeout >= 0 {
		msec = int(timeout.Milliseconds())
	}
	n, err := unix.EpollWait(e.fd, events, msec)
	if errors.Is(err, unix.EINTR) {
		return 0, ErrInterrupted
	}
	if err != nil {
		return 0, fmt.Errorf("epoll_wait: %w", err)
	}
	for i := 0; i < n; i++ {
		ready[i] = int(events[i].Fd)
	}
	return n, nil
}

// Close releases the epoll descriptor. Closing twice is a no-op.
func (e *Epoll) Close() error {
	if e.fd < 0 {
		return nil
	}
	err := unix.Close(e.fd)
	e.fd = -1
	return err
}
