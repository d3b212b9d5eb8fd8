// Package config loads daemon settings. Timer definitions are not settings;
// they live in the timers directory and are read by package unit.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/micetimer/micetimer/internal/daemon"
	"github.com/micetimer/micetimer/internal/dispatch"
	"github.com/micetimer/micetimer/internal/scheduler"
	"github.com/micetimer/micetimer/internal/wakelock"
	"github.com/micetimer/micetimer/pkg/logger"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. MICETIMER_LOG_LEVEL.
const EnvPrefix = "MICETIMER"

// DefaultPidFile is where the foreground daemon records its pid.
const DefaultPidFile = "/data/adb/micetimer/micetimer.pid"

// DefaultDetachedLog receives the output of a detached daemon when log.file
// is not set.
const DefaultDetachedLog = "/data/adb/micetimer/micetimer.log"

// DefaultJournalRetain is the number of runs kept in the journal.
const DefaultJournalRetain = 500

// Config holds the complete daemon configuration
type Config struct {
	TimersDir string         `mapstructure:"timers_dir" yaml:"timers_dir"`
	PidFile   string         `mapstructure:"pid_file"   yaml:"pid_file"`
	Shell     string         `mapstructure:"shell"      yaml:"shell"`
	BatchSize int            `mapstructure:"batch_size" yaml:"batch_size"`
	Log       LogConfig      `mapstructure:"log"        yaml:"log"`
	WakeLock  WakeLockConfig `mapstructure:"wake_lock"  yaml:"wake_lock"`
	Journal   JournalConfig  `mapstructure:"journal"    yaml:"journal"`
	Metrics   MetricsConfig  `mapstructure:"metrics"    yaml:"metrics"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
	// File, when set, receives a JSON copy of every log line.
	File string `mapstructure:"file" yaml:"file"`
}

// WakeLockConfig holds the wake-lock control files and name prefix
type WakeLockConfig struct {
	LockPath   string `mapstructure:"lock_path"   yaml:"lock_path"`
	UnlockPath string `mapstructure:"unlock_path" yaml:"unlock_path"`
	Prefix     string `mapstructure:"prefix"      yaml:"prefix"`
}

// JournalConfig holds the run journal configuration
type JournalConfig struct {
	// Path is the sqlite database. Empty disables the journal.
	Path   string `mapstructure:"path"   yaml:"path"`
	Retain int    `mapstructure:"retain" yaml:"retain"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	// Textfile is rewritten after every dispatch. Empty disables export.
	Textfile string `mapstructure:"textfile" yaml:"textfile"`
}

// Load reads settings from configPath, if given, and the environment.
// The file format follows its extension (yaml, toml or json).
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("timers_dir", daemon.DefaultTimersDir)
	v.SetDefault("pid_file", DefaultPidFile)
	v.SetDefault("shell", dispatch.DefaultShell)
	v.SetDefault("batch_size", scheduler.DefaultBatchSize)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", logger.FormatAuto)
	v.SetDefault("log.file", "")

	v.SetDefault("wake_lock.lock_path", wakelock.DefaultLockPath)
	v.SetDefault("wake_lock.unlock_path", wakelock.DefaultUnlockPath)
	v.SetDefault("wake_lock.prefix", wakelock.DefaultPrefix)

	v.SetDefault("journal.path", "")
	v.SetDefault("journal.retain", DefaultJournalRetain)

	v.SetDefault("metrics.textfile", "")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if strings.TrimSpace(c.TimersDir) == "" {
		return errors.New("timers_dir is required")
	}
	if strings.TrimSpace(c.Shell) == "" {
		return errors.New("shell is required")
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("batch_size must be at least 1, got %d", c.BatchSize)
	}
	if err := c.validateLog(); err != nil {
		return err
	}
	if c.WakeLock.LockPath == "" || c.WakeLock.UnlockPath == "" {
		return errors.New("wake_lock.lock_path and wake_lock.unlock_path are required")
	}
	if c.Journal.Retain < 0 {
		return fmt.Errorf("journal.retain must not be negative, got %d", c.Journal.Retain)
	}
	return nil
}

func (c *Config) validateLog() error {
	switch c.Log.Format {
	case logger.FormatAuto, logger.FormatJSON, logger.FormatConsole:
	default:
		return fmt.Errorf("log.format must be one of %s, %s, %s; got %q",
			logger.FormatAuto, logger.FormatJSON, logger.FormatConsole, c.Log.Format)
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log.level: %w", err)
	}
	return nil
}

// LoggerOptions returns the options for the stderr logger.
func (c *Config) LoggerOptions() logger.Options {
	return logger.Options{Level: c.Log.Level, Format: c.Log.Format}
}
