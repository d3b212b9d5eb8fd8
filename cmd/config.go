package cmd

const DESCRIPTION = `
micetimer runs shell commands on timers that keep counting while the
device sleeps. Each *.toml file in the timers directory defines one
timer; the daemon fires it after OnBootSec, repeats it OnUnitActiveSec
after each run finishes and holds a wake lock while the command runs.
`

const (
	RunDescription = `The run command starts the timer daemon. Without --foreground
the daemon detaches from the terminal and keeps running in the
background. The definitions are validated before detaching, and
the detached daemon writes to log.file (default
/data/adb/micetimer/micetimer.log). Running micetimer without a
command does the same.

Example:
        micetimer run -c /data/adb/micetimer/timers.d
                    OR
        micetimer -f

`
	CheckDescription = `The check command parses every timer definition and prints
the resulting schedule without running anything. It fails on
the first malformed file, exactly as the daemon would.

Example:
        micetimer check -c ./timers.d

`
	HistoryDescription = `The history command prints the most recent runs recorded in
the journal, optionally for a single timer. The journal must be
enabled with journal.path in the settings file.

Example:
        micetimer history
        micetimer history backup --limit 5

`
	StopDescription = `The stop command terminates the daemon recorded in the pid
file. It sends SIGTERM and falls back to SIGKILL when the daemon
does not exit within five seconds.

Example:
        micetimer stop

`
)

const HELP_TEMPL = `Usage: {{if .UsageText}}{{.UsageText}}{{else}}{{.HelpName}} {{if .VisibleFlags}}[global options]{{end}}{{if .Commands}} command [command options]{{end}} {{if .ArgsUsage}}{{.ArgsUsage}}{{else}}[arguments...]{{end}}{{end}}
{{.Description}}{{if .VisibleCommands}}
Commands:{{range .VisibleCategories}}{{if .Name}}

{{.Name}}:{{range .VisibleCommands}}
  {{join .Names ", "}}{{"\t"}}{{.Usage}}{{end}}{{else}}{{range .VisibleCommands}}
{{"\t"}}{{index .Names 0}}{{"\t:\t"}}{{.Usage}}{{end}}{{end}}{{end}}{{end}}{{if .VisibleFlags}}

Flags:{{range .VisibleFlags}}
  {{.}}{{end}}{{end}}

Use "{{.HelpName}} help <command>" for more information about any command.

`

const CMD_HELP_TEMPL = `{{if .Description}}{{.Description}}{{else}}{{.HelpName}} - {{.Usage}}

{{end}}Usage:
        {{.HelpName}} {{if .UsageText}}{{.UsageText}}{{else}}[arguments...]{{end}}{{if .VisibleFlags}}

Supported Flags:{{range .VisibleFlags}}
  {{.}}{{end}}{{end}}

`
