package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/micetimer/micetimer/cmd/common"
	"github.com/micetimer/micetimer/internal/journal"
	"github.com/urfave/cli"
)

var errJournalDisabled = errors.New("journal is disabled; set journal.path in the settings file or pass --journal")

func history(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	cfg, err := loadSettings(ctx)
	if err != nil {
		return err
	}
	if cfg.Journal.Path == "" {
		return errJournalDisabled
	}
	j, err := journal.Open(cfg.Journal.Path, 0)
	if err != nil {
		return err
	}
	defer j.Close()

	timer := ctx.Args().First()
	runs, err := j.Recent(timer, ctx.Int("limit"))
	if err != nil {
		common.PrintRuntimeErr(ctx, "history", "query", err)
		return nil
	}
	if len(runs) == 0 {
		fmt.Println("micetimer: no runs recorded")
		return nil
	}
	fmt.Println(historyTable(runs))
	return nil
}

func historyTable(runs []journal.Run) string {
	var b strings.Builder
	b.WriteString("Recent runs:\n")
	b.WriteString("\n------------------------------------------------------------------------")
	b.WriteString("\n|         Timer        |     Started     |   Took   |    Outcome    ")
	b.WriteString("\n|----------------------|-----------------|----------|---------------")
	for _, r := range runs {
		outcome := r.Outcome
		switch outcome {
		case "failure":
			outcome = fmt.Sprintf("exit %d", r.ExitCode)
			if r.ExitCode < 0 && r.Error != "" {
				outcome = r.Error
			}
		case "launch_error":
			outcome = "not started"
		}
		fmt.Fprintf(&b, "\n| %s | %s | %s | %s",
			common.Beaut(r.Timer, 20),
			common.Beaut(humanize.Time(r.StartedAt), 15),
			common.Beaut(r.Duration().Round(durationPrecision(r)).String(), 8),
			outcome,
		)
	}
	b.WriteString("\n------------------------------------------------------------------------")
	fmt.Fprintf(&b, "\nTotal: %s", humanize.Comma(int64(len(runs))))
	return b.String()
}

func durationPrecision(r journal.Run) time.Duration {
	if r.Duration() < time.Second {
		return time.Millisecond
	}
	return 100 * time.Millisecond
}
