package unit

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// Extension marks a file in the timers directory as a definition.
const Extension = ".toml"

// Definition is a named timer unit as read from disk.
type Definition struct {
	Name string
	Path string
	Unit TimerUnit
}

// LoadDir reads every definition directly inside dir (non-recursive).
// A missing directory yields no definitions. A file that cannot be read
// or parsed aborts the whole load; the error names the file.
// Definitions are returned sorted by name.
func LoadDir(fsys afero.Fs, dir string) ([]Definition, error) {
	entries, err := afero.ReadDir(fsys, dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read timers directory %s: %w", dir, err)
	}

	var defs []Definition
	for _, entry := range entries {
		name := strings.TrimSuffix(entry.Name(), Extension)
		if entry.IsDir() || name == "" || name == entry.Name() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := afero.ReadFile(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("failed to read configuration %s: %w", path, err)
		}
		u, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse configuration %s: %w", path, err)
		}
		defs = append(defs, Definition{
			Name: name,
			Path: path,
			Unit: u,
		})
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs, nil
}
