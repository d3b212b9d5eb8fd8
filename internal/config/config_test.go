package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/micetimer/micetimer/internal/wakelock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSettings(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "/data/adb/micetimer/timers.d", cfg.TimersDir)
	assert.Equal(t, DefaultPidFile, cfg.PidFile)
	assert.Equal(t, "sh", cfg.Shell)
	assert.Equal(t, 16, cfg.BatchSize)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "auto", cfg.Log.Format)
	assert.Empty(t, cfg.Log.File)
	assert.Equal(t, wakelock.DefaultLockPath, cfg.WakeLock.LockPath)
	assert.Equal(t, wakelock.DefaultUnlockPath, cfg.WakeLock.UnlockPath)
	assert.Equal(t, "micetimer:", cfg.WakeLock.Prefix)
	assert.Empty(t, cfg.Journal.Path)
	assert.Equal(t, DefaultJournalRetain, cfg.Journal.Retain)
	assert.Empty(t, cfg.Metrics.Textfile)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := writeSettings(t, "micetimer.yaml", `
timers_dir: /etc/micetimer/timers.d
batch_size: 4
log:
  level: debug
  format: json
journal:
  path: /var/lib/micetimer/journal.db
  retain: 10
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/etc/micetimer/timers.d", cfg.TimersDir)
	assert.Equal(t, 4, cfg.BatchSize)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "/var/lib/micetimer/journal.db", cfg.Journal.Path)
	assert.Equal(t, 10, cfg.Journal.Retain)
	assert.Equal(t, "sh", cfg.Shell, "unset keys keep defaults")
}

func TestLoad_TOMLFile(t *testing.T) {
	path := writeSettings(t, "micetimer.toml", `
shell = "/system/bin/sh"

[wake_lock]
prefix = "svc:"

[metrics]
textfile = "/data/local/tmp/micetimer.prom"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/system/bin/sh", cfg.Shell)
	assert.Equal(t, "svc:", cfg.WakeLock.Prefix)
	assert.Equal(t, "/data/local/tmp/micetimer.prom", cfg.Metrics.Textfile)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	path := writeSettings(t, "micetimer.yaml", "log:\n  level: warn\n")
	t.Setenv("MICETIMER_LOG_LEVEL", "debug")
	t.Setenv("MICETIMER_WAKE_LOCK_PREFIX", "env:")
	t.Setenv("MICETIMER_BATCH_SIZE", "8")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "env:", cfg.WakeLock.Prefix)
	assert.Equal(t, 8, cfg.BatchSize)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "zero batch", body: "batch_size: 0\n", want: "batch_size"},
		{name: "bad format", body: "log:\n  format: xml\n", want: "log.format"},
		{name: "bad level", body: "log:\n  level: loud\n", want: "log.level"},
		{name: "negative retain", body: "journal:\n  retain: -1\n", want: "journal.retain"},
		{name: "blank shell", body: "shell: \"  \"\n", want: "shell"},
		{name: "blank timers dir", body: "timers_dir: \"\"\n", want: "timers_dir"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeSettings(t, "micetimer.yaml", tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "config validation failed")
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestConfig_LoggerOptions(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	cfg.Log.Level = "debug"
	cfg.Log.Format = "console"

	opts := cfg.LoggerOptions()
	assert.Equal(t, "debug", opts.Level)
	assert.Equal(t, "console", opts.Format)
}
