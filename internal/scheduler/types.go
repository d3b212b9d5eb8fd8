package scheduler

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/micetimer/micetimer/internal/countdown"
	"github.com/micetimer/micetimer/internal/unit"
)

// ErrDuplicateDescriptor is returned when two timers report the same descriptor.
var ErrDuplicateDescriptor = errors.New("duplicate countdown descriptor")

// RuntimeTimer is the live state of one timer. It is created once at
// startup and owned by the loop goroutine.
type RuntimeTimer struct {
	Name   string
	Unit   unit.TimerUnit
	Source countdown.Source

	// Fires counts dispatches.
	Fires uint64
	// LastFinished is when the last dispatch returned.
	LastFinished time.Time
	// Dormant is set once a re-arm failed; the timer never fires again.
	Dormant bool
}

// Registry maps countdown descriptors to timers.
type Registry struct {
	timers map[int]*RuntimeTimer
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{timers: make(map[int]*RuntimeTimer)}
}

// Add registers t under its source's descriptor.
func (r *Registry) Add(t *RuntimeTimer) error {
	fd := t.Source.Descriptor()
	if other, ok := r.timers[fd]; ok {
		return fmt.Errorf("%w %d: %s and %s", ErrDuplicateDescriptor, fd, other.Name, t.Name)
	}
	r.timers[fd] = t
	return nil
}

// Lookup returns the timer owning descriptor fd.
func (r *Registry) Lookup(fd int) (*RuntimeTimer, bool) {
	t, ok := r.timers[fd]
	return t, ok
}

// Len returns the number of registered timers.
func (r *Registry) Len() int {
	return len(r.timers)
}

// Timers returns all timers sorted by name.
func (r *Registry) Timers() []*RuntimeTimer {
	out := make([]*RuntimeTimer, 0, len(r.timers))
	for _, t := range r.timers {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Close closes every source and empties the registry.
func (r *Registry) Close() error {
	var result *multierror.Error
	for fd, t := range r.timers {
		if err := t.Source.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("close %s: %w", t.Name, err))
		}
		delete(r.timers, fd)
	}
	return result.ErrorOrNil()
}

// Build creates, arms and registers one countdown source per definition.
// Each source is armed one-shot for the unit's initial delay. On failure
// every source created so far is closed and the error names the timer.
func Build(defs []unit.Definition, newSource countdown.NewSourceFunc, mux countdown.Multiplexer) (*Registry, error) {
	reg := NewRegistry()
	for _, def := range defs {
		src, err := newSource()
		if err != nil {
			reg.Close()
			return nil, fmt.Errorf("create countdown for %s: %w", def.Name, err)
		}
		if err := setup(reg, def, src, mux); err != nil {
			src.Close()
			reg.Close()
			return nil, err
		}
	}
	return reg, nil
}

func setup(reg *Registry, def unit.Definition, src countdown.Source, mux countdown.Multiplexer) error {
	if err := src.Arm(def.Unit.InitialDelay(), countdown.OneShot); err != nil {
		return fmt.Errorf("arm countdown for %s: %w", def.Name, err)
	}
	if err := mux.Register(src); err != nil {
		return fmt.Errorf("register countdown for %s: %w", def.Name, err)
	}
	return reg.Add(&RuntimeTimer{Name: def.Name, Unit: def.Unit, Source: src})
}
