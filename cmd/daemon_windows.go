package cmd

import (
	"errors"
)

var spawnDetached = func(_ []string, _ string) (int, error) {
	return 0, errors.New("background mode is not supported on windows; use --foreground")
}
