package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/micetimer/micetimer/internal/config"
	"github.com/micetimer/micetimer/internal/countdown"
	daemonpkg "github.com/micetimer/micetimer/internal/daemon"
	"github.com/micetimer/micetimer/internal/unit"
	"github.com/micetimer/micetimer/pkg/logger"
	"github.com/spf13/afero"
)

func testSettings(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	base := t.TempDir()
	cfg.TimersDir = filepath.Join(base, "timers.d")
	cfg.PidFile = filepath.Join(base, "micetimer.pid")
	cfg.Log.Format = logger.FormatJSON
	return cfg
}

func TestRunForeground_NoTimersExitsCleanly(t *testing.T) {
	cfg := testSettings(t)

	var err error
	captureOutput(func() { err = runForeground(cfg) })
	if err != nil {
		t.Fatalf("runForeground: %v", err)
	}
	if _, statErr := os.Stat(cfg.PidFile); !os.IsNotExist(statErr) {
		t.Errorf("pid file left behind: %v", statErr)
	}
}

func TestRunForeground_LoopFailure(t *testing.T) {
	cfg := testSettings(t)
	boom := errors.New("epoll gone")

	orig := initDaemonComponents
	defer func() { initDaemonComponents = orig }()
	initDaemonComponents = func(_ *config.Config, log logger.Logger) (*DaemonComponents, error) {
		fs := afero.NewMemMapFs()
		_ = afero.WriteFile(fs, "/timers/a.toml", []byte(`Exec = "true"`), 0644)
		r := daemonpkg.New(&daemonpkg.Config{TimersDir: "/timers"}, &daemonpkg.Dependencies{
			Fs:        fs,
			NewSource: func() (countdown.Source, error) { return countdown.NewFakeSource(3), nil },
			NewMultiplexer: func() (countdown.Multiplexer, error) {
				return countdown.NewFakeMultiplexer(countdown.FakeWait{Err: boom}), nil
			},
			Logger: log,
		})
		return &DaemonComponents{Runner: r, logger: log}, nil
	}

	var err error
	_, stderr := captureOutput(func() { err = runForeground(cfg) })
	if !errors.Is(err, boom) {
		t.Fatalf("runForeground error = %v, want %v", err, boom)
	}
	assertContains(t, stderr, "Event loop stopped")
	if _, statErr := os.Stat(cfg.PidFile); !os.IsNotExist(statErr) {
		t.Errorf("pid file left behind: %v", statErr)
	}
}

func TestRunForeground_WritesLogFile(t *testing.T) {
	cfg := testSettings(t)
	cfg.Log.File = filepath.Join(t.TempDir(), "micetimer.log")

	captureOutput(func() {
		if err := runForeground(cfg); err != nil {
			t.Errorf("runForeground: %v", err)
		}
	})
	data, err := os.ReadFile(cfg.Log.File)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	assertContains(t, string(data), "No timers configured")
}

func TestInitDaemonComponents_Journal(t *testing.T) {
	cfg := testSettings(t)
	cfg.Journal.Path = filepath.Join(t.TempDir(), "journal.db")

	comps, err := initDaemonComponents(cfg, logger.NewNopLogger())
	if err != nil {
		t.Fatalf("initDaemonComponents: %v", err)
	}
	if comps.Journal == nil || comps.Metrics == nil || comps.Runner == nil {
		t.Fatalf("components not initialized: %+v", comps)
	}
	if comps.Runner.Config().TimersDir != cfg.TimersDir {
		t.Errorf("TimersDir = %q", comps.Runner.Config().TimersDir)
	}
	if err := comps.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestInitDaemonComponents_BadJournal(t *testing.T) {
	cfg := testSettings(t)
	cfg.Journal.Path = filepath.Join(t.TempDir(), "missing", "dir", "journal.db")

	if _, err := initDaemonComponents(cfg, logger.NewNopLogger()); err == nil {
		t.Fatal("expected error for unwritable journal path")
	}
}

// stubSpawn replaces spawnDetached for the duration of the test and
// records every call.
func stubSpawn(t *testing.T) *[]string {
	t.Helper()
	var logPaths []string
	orig := spawnDetached
	t.Cleanup(func() { spawnDetached = orig })
	spawnDetached = func(_ []string, logPath string) (int, error) {
		logPaths = append(logPaths, logPath)
		return 4242, nil
	}
	return &logPaths
}

func TestExecute_DetachedMalformedDefinition(t *testing.T) {
	spawns := stubSpawn(t)
	dir := writeTimers(t, map[string]string{
		"good.toml": `Exec = "true"`,
		"bad.toml":  `Description = "no exec"`,
	})

	err := runApp("-c", dir)
	if err == nil {
		t.Fatal("expected error for malformed definition")
	}
	if !errors.Is(err, unit.ErrMissingExec) {
		t.Errorf("error = %v, want ErrMissingExec", err)
	}
	assertContains(t, err.Error(), filepath.Join(dir, "bad.toml"))
	if len(*spawns) != 0 {
		t.Errorf("daemon spawned %d times despite a bad definition", len(*spawns))
	}
}

func TestExecute_DetachedNoTimers(t *testing.T) {
	spawns := stubSpawn(t)
	dir := writeTimers(t, map[string]string{"README.md": "nothing here"})

	stdout, _ := captureOutput(func() {
		if err := runApp("run", "-c", dir); err != nil {
			t.Errorf("run: %v", err)
		}
	})
	assertContains(t, stdout, "no timers configured")
	if len(*spawns) != 0 {
		t.Errorf("daemon spawned %d times with no timers", len(*spawns))
	}
}

func TestExecute_DetachedLogPath(t *testing.T) {
	dir := writeTimers(t, map[string]string{"a.toml": `Exec = "true"`})
	logFile := filepath.Join(t.TempDir(), "micetimer.log")

	tests := []struct {
		name    string
		logFile string
		want    string
	}{
		{name: "default", want: config.DefaultDetachedLog},
		{name: "log.file", logFile: logFile, want: logFile},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spawns := stubSpawn(t)
			if tt.logFile != "" {
				t.Setenv("MICETIMER_LOG_FILE", tt.logFile)
			}

			stdout, _ := captureOutput(func() {
				if err := runApp("-c", dir); err != nil {
					t.Errorf("run: %v", err)
				}
			})
			if len(*spawns) != 1 || (*spawns)[0] != tt.want {
				t.Fatalf("spawn log paths = %v, want [%s]", *spawns, tt.want)
			}
			assertContainsAll(t, stdout, []string{"PID 4242", tt.want})
		})
	}
}

func TestStderrIs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "micetimer.log")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer f.Close()

	orig := os.Stderr
	defer func() { os.Stderr = orig }()
	os.Stderr = f

	if !stderrIs(path) {
		t.Error("stderrIs() = false for the file stderr points at")
	}
	if stderrIs(filepath.Join(t.TempDir(), "other.log")) {
		t.Error("stderrIs() = true for a different file")
	}
}
