package dispatch

import (
	"io"
	"os"
	"os/exec"

	"al.essio.dev/pkg/shellescape"
)

// DefaultShell interprets timer commands.
const DefaultShell = "sh"

// Runner runs a command to completion.
type Runner interface {
	Run(command string) error
}

// ShellRunner runs commands through `<Shell> -c <command>`.
type ShellRunner struct {
	Shell  string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewShellRunner returns a ShellRunner wired to the daemon's own standard
// streams. An empty shell selects DefaultShell.
func NewShellRunner(shell string) *ShellRunner {
	if shell == "" {
		shell = DefaultShell
	}
	return &ShellRunner{
		Shell:  shell,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Run starts the shell and waits for it. A non-zero exit is reported as
// an *exec.ExitError; any other error means the shell did not start.
func (s *ShellRunner) Run(command string) error {
	cmd := exec.Command(s.Shell, "-c", command)
	cmd.Stdin = s.Stdin
	cmd.Stdout = s.Stdout
	cmd.Stderr = s.Stderr
	return cmd.Run()
}

// CommandLine renders the invocation for logs.
func (s *ShellRunner) CommandLine(command string) string {
	return shellescape.QuoteCommand([]string{s.Shell, "-c", command})
}

var _ Runner = (*ShellRunner)(nil)
