// Package preset loads named sequence descriptions from YAML files. A
// loader searches an explicit, ordered list of directories and falls back
// to the presets embedded in the package, so there is no hidden
// process-wide state.
package preset

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ecmwf/earthkit-time/sequence"
)

// EnvSearchPath is the environment variable holding extra preset
// directories, separated by the OS path list separator. It is only read by
// FromEnvironment; loaders built with NewLoader ignore it.
const EnvSearchPath = "EARTHKIT_TIME_SEQ_PATH"

// ErrNotFound is returned when no file matches a preset name in any
// configured search location.
var ErrNotFound = errors.New("preset not found")

//go:embed sequences/*.yaml
var builtin embed.FS

// Loader resolves preset names to sequence descriptions.
type Loader struct {
	dirs []string
}

// NewLoader builds a loader searching the given directories in order before
// the built-in presets. No directories is valid: only built-ins are served.
func NewLoader(dirs ...string) *Loader {
	return &Loader{dirs: dirs}
}

// FromEnvironment builds a loader from the EARTHKIT_TIME_SEQ_PATH
// environment variable. An unset or empty variable yields a loader serving
// only the built-in presets.
func FromEnvironment() *Loader {
	var dirs []string
	for _, dir := range filepath.SplitList(os.Getenv(EnvSearchPath)) {
		if dir != "" {
			dirs = append(dirs, dir)
		}
	}
	return NewLoader(dirs...)
}

// Load resolves a preset name to a sequence. The name may also be a direct
// path to a YAML file, which takes precedence over the search directories.
// Returns ErrNotFound (wrapped) when nothing matches.
func (l *Loader) Load(name string) (*sequence.Sequence, error) {
	description, err := l.Description(name)
	if err != nil {
		return nil, err
	}
	seq, err := sequence.FromMap(description)
	if err != nil {
		return nil, fmt.Errorf("preset %q: %w", name, err)
	}
	return seq, nil
}

// Description resolves a preset name to its raw declarative description.
func (l *Loader) Description(name string) (map[string]any, error) {
	data, err := l.read(name)
	if err != nil {
		return nil, err
	}
	var description map[string]any
	if err := yaml.Unmarshal(data, &description); err != nil {
		return nil, fmt.Errorf("preset %q: %w", name, err)
	}
	if description == nil {
		return nil, fmt.Errorf("preset %q: empty description", name)
	}
	return description, nil
}

// Names lists the available preset names: search directories first, then
// built-ins, without duplicates, sorted.
func (l *Loader) Names() ([]string, error) {
	seen := make(map[string]bool)
	collect := func(entries []fs.DirEntry) {
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if base, ok := strings.CutSuffix(entry.Name(), ".yaml"); ok {
				seen[base] = true
			}
		}
	}
	for _, dir := range l.dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, err
		}
		collect(entries)
	}
	entries, err := builtin.ReadDir("sequences")
	if err != nil {
		return nil, err
	}
	collect(entries)

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (l *Loader) read(name string) ([]byte, error) {
	// A name that is an existing file wins over the search path.
	if info, err := os.Stat(name); err == nil && !info.IsDir() {
		return os.ReadFile(name)
	}
	for _, dir := range l.dirs {
		data, err := os.ReadFile(filepath.Join(dir, name+".yaml"))
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	data, err := builtin.ReadFile("sequences/" + name + ".yaml")
	if err == nil {
		return data, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}
