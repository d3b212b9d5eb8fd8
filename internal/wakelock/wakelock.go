// Package wakelock talks to the kernel's userspace wake-lock interface.
// Writing a name to the lock control file acquires a lock with that name;
// writing the same name to the unlock control file releases it.
package wakelock

import (
	"fmt"
	"os"

	"github.com/micetimer/micetimer/pkg/logger"
	"github.com/spf13/afero"
)

// Default control files and lock-name prefix.
const (
	DefaultLockPath   = "/sys/power/wake_lock"
	DefaultUnlockPath = "/sys/power/wake_unlock"
	DefaultPrefix     = "micetimer:"
)

// Locker acquires and releases named wake locks.
type Locker interface {
	Acquire(name string) error
	Release(name string) error
}

// SysfsLocker writes lock names to the control files. The files must
// already exist; they are never created.
type SysfsLocker struct {
	fs         afero.Fs
	lockPath   string
	unlockPath string
}

// NewSysfsLocker returns a SysfsLocker. Empty paths select the defaults.
func NewSysfsLocker(fs afero.Fs, lockPath, unlockPath string) *SysfsLocker {
	if lockPath == "" {
		lockPath = DefaultLockPath
	}
	if unlockPath == "" {
		unlockPath = DefaultUnlockPath
	}
	return &SysfsLocker{fs: fs, lockPath: lockPath, unlockPath: unlockPath}
}

// Acquire writes name to the lock control file.
func (s *SysfsLocker) Acquire(name string) error {
	return s.write(s.lockPath, name)
}

// Release writes name to the unlock control file.
func (s *SysfsLocker) Release(name string) error {
	return s.write(s.unlockPath, name)
}

func (s *SysfsLocker) write(path, name string) error {
	f, err := s.fs.OpenFile(path, os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		return err
	}
	if _, err := f.Write([]byte(name)); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// Hold acquires the named lock and returns a function releasing it.
// Failures are logged and never returned: if acquisition fails, the
// returned release is a no-op. Call the release with defer so it runs
// on every exit path.
func Hold(l Locker, name string, log logger.Logger) (release func(), held bool) {
	if err := l.Acquire(name); err != nil {
		log.Error("Failed to acquire wake lock %s: %v", name, err)
		return func() {}, false
	}
	log.Debug("Acquired wake lock %s", name)
	return func() {
		if err := l.Release(name); err != nil {
			log.Error("Failed to release wake lock %s: %v", name, err)
			return
		}
		log.Debug("Released wake lock %s", name)
	}, true
}

var _ Locker = (*SysfsLocker)(nil)
