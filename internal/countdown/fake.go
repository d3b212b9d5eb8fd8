package countdown

import (
	"errors"
	"time"
)

// ErrScriptDone is returned by FakeMultiplexer.Wait once its script is used up.
var ErrScriptDone = errors.New("fake multiplexer script exhausted")

// ArmCall records one FakeSource.Arm invocation.
type ArmCall struct {
	Duration time.Duration
	Mode     Mode
}

// FakeSource is an in-memory Source for tests.
type FakeSource struct {
	FD      int
	Arms    []ArmCall
	Pending uint64
	Closed  bool

	// ArmErr, when set, is returned by Arm after recording the call.
	ArmErr error
	// DrainErr, when set, is returned by Drain.
	DrainErr error
	// OnArm is called after each recorded Arm.
	OnArm func(ArmCall)
}

// NewFakeSource returns a FakeSource with the given descriptor.
func NewFakeSource(fd int) *FakeSource {
	return &FakeSource{FD: fd}
}

// Arm records the call.
func (f *FakeSource) Arm(d time.Duration, mode Mode) error {
	call := ArmCall{Duration: d, Mode: mode}
	f.Arms = append(f.Arms, call)
	if f.OnArm != nil {
		f.OnArm(call)
	}
	return f.ArmErr
}

// Expire adds n pending expirations.
func (f *FakeSource) Expire(n uint64) {
	f.Pending += n
}

// Drain returns and clears the pending expirations.
func (f *FakeSource) Drain() (uint64, error) {
	if f.DrainErr != nil {
		return 0, f.DrainErr
	}
	if f.Pending == 0 {
		return 0, ErrNotExpired
	}
	n := f.Pending
	f.Pending = 0
	return n, nil
}

// Descriptor returns FD.
func (f *FakeSource) Descriptor() int {
	return f.FD
}

// Close marks the source closed.
func (f *FakeSource) Close() error {
	f.Closed = true
	return nil
}

// FakeWait is one scripted result of FakeMultiplexer.Wait.
type FakeWait struct {
	Ready []int
	Err   error
	// Before runs just before the result is returned, e.g. to expire sources.
	Before func()
}

// FakeMultiplexer replays a script of Wait results.
type FakeMultiplexer struct {
	Registered []Source
	Script     []FakeWait
	Waits      int
	Closed     bool

	// RegisterErr, when set, is returned by Register.
	RegisterErr error
}

// NewFakeMultiplexer returns a FakeMultiplexer replaying script.
func NewFakeMultiplexer(script ...FakeWait) *FakeMultiplexer {
	return &FakeMultiplexer{Script: script}
}

// Register records src.
func (f *FakeMultiplexer) Register(src Source) error {
	if f.RegisterErr != nil {
		return f.RegisterErr
	}
	f.Registered = append(f.Registered, src)
	return nil
}

// Wait returns the next scripted result, at most len(ready) descriptors,
// or ErrScriptDone when the script is exhausted.
func (f *FakeMultiplexer) Wait(ready []int, timeout time.Duration) (int, error) {
	if f.Waits >= len(f.Script) {
		return 0, ErrScriptDone
	}
	w := f.Script[f.Waits]
	f.Waits++
	if w.Before != nil {
		w.Before()
	}
	if w.Err != nil {
		return 0, w.Err
	}
	return copy(ready, w.Ready), nil
}

// Close marks the multiplexer closed.
func (f *FakeMultiplexer) Close() error {
	f.Closed = true
	return nil
}

var (
	_ Source      = (*FakeSource)(nil)
	_ Multiplexer = (*FakeMultiplexer)(nil)
)
