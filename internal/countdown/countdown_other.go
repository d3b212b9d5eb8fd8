//go:build !linux

package countdown

// NewTimerfd is only available on Linux.
func NewTimerfd() (Source, error) {
	return nil, ErrUnsupported
}

// NewEpoll is only available on Linux.
func NewEpoll() (Multiplexer, error) {
	return nil, ErrUnsupported
}
