// Package unit loads timer definitions. One TOML file in the timers
// directory describes one timer; the file name without its extension is
// the timer's name.
package unit

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// DefaultBootDelay is the first-fire delay for a timer without OnBootSec.
const DefaultBootDelay = 1 * time.Second

// Definition errors.
var (
	ErrMissingExec      = errors.New("missing required field Exec")
	ErrUnknownField     = errors.New("unknown field")
	ErrNegativeDuration = errors.New("negative duration")
)

// Field names accepted in a definition file. Matching is case-sensitive.
const (
	FieldDescription     = "Description"
	FieldExec            = "Exec"
	FieldOnBootSec       = "OnBootSec"
	FieldOnUnitActiveSec = "OnUnitActiveSec"
	FieldWakeLock        = "WakeLock"
)

var knownFields = map[string]bool{
	FieldDescription:     true,
	FieldExec:            true,
	FieldOnBootSec:       true,
	FieldOnUnitActiveSec: true,
	FieldWakeLock:        true,
}

// TimerUnit is an immutable, parsed timer definition.
type TimerUnit struct {
	Description string

	// Exec is the shell command to run.
	Exec string

	// OnBootSec delays the first run after the daemon starts.
	OnBootSec *Duration

	// OnUnitActiveSec repeats the command this long after the previous run finished.
	OnUnitActiveSec *Duration

	// WakeLock holds a wake lock while the command runs.
	WakeLock bool
}

// fileUnit mirrors the on-disk layout.
type fileUnit struct {
	Description     string    `toml:"Description"`
	Exec            string    `toml:"Exec"`
	OnBootSec       *Duration `toml:"OnBootSec"`
	OnUnitActiveSec *Duration `toml:"OnUnitActiveSec"`
	WakeLock        *bool     `toml:"WakeLock"`
}

// Parse decodes a single definition.
func Parse(data []byte) (TimerUnit, error) {
	var f fileUnit
	md, err := toml.Decode(string(data), &f)
	if err != nil {
		return TimerUnit{}, err
	}
	for _, key := range md.Keys() {
		if len(key) != 1 || !knownFields[key[0]] {
			return TimerUnit{}, fmt.Errorf("%w %q", ErrUnknownField, key.String())
		}
	}
	if !md.IsDefined(FieldExec) || strings.TrimSpace(f.Exec) == "" {
		return TimerUnit{}, ErrMissingExec
	}

	u := TimerUnit{
		Description:     f.Description,
		Exec:            f.Exec,
		OnBootSec:       f.OnBootSec,
		OnUnitActiveSec: f.OnUnitActiveSec,
		WakeLock:        true,
	}
	if f.WakeLock != nil {
		u.WakeLock = *f.WakeLock
	}
	return u, nil
}

// InitialDelay returns the delay before the first run.
func (u TimerUnit) InitialDelay() time.Duration {
	if u.OnBootSec != nil {
		return u.OnBootSec.Std()
	}
	return DefaultBootDelay
}

// Interval returns the repeat interval. ok is false for timers that run once.
func (u TimerUnit) Interval() (d time.Duration, ok bool) {
	if u.OnUnitActiveSec == nil || *u.OnUnitActiveSec <= 0 {
		return 0, false
	}
	return u.OnUnitActiveSec.Std(), true
}
