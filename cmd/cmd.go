package cmd

import (
	"fmt"
	"runtime"

	"github.com/micetimer/micetimer/cmd/common"
	"github.com/urfave/cli"
)

type BuildArgs struct {
	Version   string
	BuildType string
	Date      string
	Commit    string
}

var currentBuildArgs BuildArgs

func Execute(args []string, bArgs BuildArgs) error {
	currentBuildArgs = bArgs
	app := cli.App{
		Name:                  "micetimer",
		HelpName:              "micetimer",
		Usage:                 "A suspend-aware timer daemon.",
		Version:               fmt.Sprintf("%s-%s", bArgs.Version, bArgs.BuildType),
		UsageText:             "micetimer [command] [arguments...]",
		Description:           DESCRIPTION,
		CustomAppHelpTemplate: HELP_TEMPL,
		OnUsageError:          common.UsageErrorCallback,
		Commands: []cli.Command{
			{
				Name:                   "run",
				Usage:                  "start the timer daemon",
				Description:            RunDescription,
				CustomHelpTemplate:     CMD_HELP_TEMPL,
				OnUsageError:           common.UsageErrorCallback,
				Action:                 daemon,
				Flags:                  runFlags,
				UseShortOptionHandling: true,
			},
			{
				Name:               "check",
				Usage:              "validate timer definitions and print the schedule",
				Description:        CheckDescription,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				OnUsageError:       common.UsageErrorCallback,
				Action:             check,
				Flags:              checkFlags,
			},
			{
				Name:               "history",
				Usage:              "show recent runs from the journal",
				UsageText:          "[timer] [--limit N]",
				Description:        HistoryDescription,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				OnUsageError:       common.UsageErrorCallback,
				Action:             history,
				Flags:              historyFlags,
			},
			{
				Name:               "stop",
				Usage:              "stop the running daemon",
				Description:        StopDescription,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				OnUsageError:       common.UsageErrorCallback,
				Action:             stopDaemon,
				Flags:              stopFlags,
			},
			{
				Name:    "help",
				Aliases: []string{"h"},
				Usage:   "prints the help message",
				Action:  common.Help,
			},
			{
				Name:               "version",
				Aliases:            []string{"v"},
				Usage:              "prints installed version of micetimer",
				UsageText:          " ",
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Action:             common.GetVersion,
			},
		},
		Action:                 daemon,
		Flags:                  runFlags,
		UseShortOptionHandling: true,
		HideHelp:               true,
		HideVersion:            true,
	}
	common.VersionCmdStr = fmt.Sprintf("%s %s (%s_%s)\nBuild: %s=%s\n",
		app.Name,
		app.Version,
		runtime.GOOS,
		runtime.GOARCH,
		bArgs.Date, bArgs.Commit,
	)
	return app.Run(args)
}
