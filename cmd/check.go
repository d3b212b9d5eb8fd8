package cmd

import (
	"fmt"
	"strings"

	"github.com/micetimer/micetimer/cmd/common"
	"github.com/micetimer/micetimer/internal/unit"
	"github.com/spf13/afero"
	"github.com/urfave/cli"
)

// timersFs is where the command line reads timer definitions from.
var timersFs = afero.NewOsFs()

func check(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	cfg, err := loadSettings(ctx)
	if err != nil {
		return err
	}
	defs, err := unit.LoadDir(timersFs, cfg.TimersDir)
	if err != nil {
		return err
	}
	if len(defs) == 0 {
		fmt.Printf("micetimer: no timers configured in %s\n", cfg.TimersDir)
		return nil
	}
	fmt.Println(scheduleTable(cfg.TimersDir, defs))
	return nil
}

func scheduleTable(dir string, defs []unit.Definition) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Timers in %s:\n", dir)
	b.WriteString("\n--------------------------------------------------------------------------")
	b.WriteString("\n|         Name         | First run |   Every   | Lock | Command")
	b.WriteString("\n|----------------------|-----------|-----------|------|------------------")
	for _, def := range defs {
		every := "once"
		if iv, ok := def.Unit.Interval(); ok {
			every = iv.String()
		}
		lock := "no"
		if def.Unit.WakeLock {
			lock = "yes"
		}
		fmt.Fprintf(&b, "\n| %s | %s | %s | %s | %s",
			common.Beaut(def.Name, 20),
			common.Beaut(def.Unit.InitialDelay().String(), 9),
			common.Beaut(every, 9),
			common.Beaut(lock, 4),
			oneLine(def.Unit.Exec),
		)
	}
	b.WriteString("\n--------------------------------------------------------------------------")
	return b.String()
}

// oneLine collapses a multi-line command for display.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
