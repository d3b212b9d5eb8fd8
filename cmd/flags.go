package cmd

import (
	"github.com/micetimer/micetimer/internal/config"
	"github.com/urfave/cli"
)

// Environment variables read by the flags. Settings keys have their own
// MICETIMER_<SECTION>_<KEY> overrides handled by package config.
const (
	envConfigDir  = "MICETIMER_CONFIG_DIR"
	envForeground = "MICETIMER_FOREGROUND"
	envSettings   = "MICETIMER_SETTINGS"
)

var (
	settingsFlag = cli.StringFlag{
		Name:   "settings, s",
		Usage:  "daemon settings file (yaml, toml or json)",
		EnvVar: envSettings,
	}
	configDirFlag = cli.StringFlag{
		Name:   "config-dir, c",
		Usage:  "directory holding the *.toml timer definitions",
		EnvVar: envConfigDir,
	}
	pidFileFlag = cli.StringFlag{
		Name:  "pid-file",
		Usage: "pid file of the foreground daemon (default: " + config.DefaultPidFile + ")",
	}

	runFlags = []cli.Flag{
		configDirFlag,
		cli.BoolFlag{
			Name:   "foreground, f",
			Usage:  "stay attached to the terminal instead of detaching",
			EnvVar: envForeground,
		},
		settingsFlag,
		cli.StringFlag{
			Name:  "log-level, l",
			Usage: "trace, debug, info, warn or error",
		},
		pidFileFlag,
	}

	checkFlags = []cli.Flag{
		configDirFlag,
		settingsFlag,
	}

	historyFlags = []cli.Flag{
		settingsFlag,
		cli.StringFlag{
			Name:  "journal, j",
			Usage: "journal database (overrides journal.path)",
		},
		cli.IntFlag{
			Name:  "limit, n",
			Usage: "number of runs to show",
			Value: 20,
		},
	}

	stopFlags = []cli.Flag{
		settingsFlag,
		pidFileFlag,
	}
)

// loadSettings reads the settings file named by --settings and applies
// whichever command-line overrides the current command defines.
func loadSettings(ctx *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(ctx.String("settings"))
	if err != nil {
		return nil, err
	}
	if v := ctx.String("config-dir"); v != "" {
		cfg.TimersDir = v
	}
	if v := ctx.String("log-level"); v != "" {
		cfg.Log.Level = v
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	if v := ctx.String("pid-file"); v != "" {
		cfg.PidFile = v
	}
	if v := ctx.String("journal"); v != "" {
		cfg.Journal.Path = v
	}
	return cfg, nil
}
