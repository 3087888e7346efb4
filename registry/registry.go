// Package registry maps provider names to schema file locations.
//
// A Registry is built once from a base directory plus explicit overrides and
// is immutable afterwards, so it can be shared freely between goroutines.
package registry

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultDir is the schema directory used when none is given.
const DefaultDir = "schemas"

// ErrEmptyProvider is returned when a provider name is blank.
var ErrEmptyProvider = errors.New("provider name cannot be empty")

// Registry resolves provider names to schema paths.
type Registry struct {
	dir       string
	overrides map[string]string
}

// New creates a registry rooted at dir. A blank dir means DefaultDir.
// overrides maps provider names to explicit schema paths; they always win
// over the directory. Blank names or paths are rejected.
func New(dir string, overrides map[string]string) (*Registry, error) {
	if strings.TrimSpace(dir) == "" {
		dir = DefaultDir
	}
	r := &Registry{
		dir:       dir,
		overrides: make(map[string]string, len(overrides)),
	}
	for name, path := range overrides {
		if strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("registry: %w", ErrEmptyProvider)
		}
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("registry: schema path for provider %q cannot be empty", name)
		}
		r.overrides[name] = path
	}
	return r, nil
}

// ResolvePath returns the absolute schema path for provider: the override if
// one is registered, otherwise <dir>/<provider>.json. The file need not exist.
func (r *Registry) ResolvePath(provider string) (string, error) {
	if strings.TrimSpace(provider) == "" {
		return "", ErrEmptyProvider
	}
	path, ok := r.overrides[provider]
	if !ok {
		path = filepath.Join(r.dir, provider+".json")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("registry: resolve %s: %w", path, err)
	}
	return abs, nil
}

// List returns the sorted provider names with a schema on disk: overrides
// whose target exists plus every *.json file directly inside the directory
// that is, or links to, a regular file. An unreadable directory contributes
// nothing.
func (r *Registry) List() []string {
	seen := make(map[string]struct{})
	for name, path := range r.overrides {
		if exists(path) {
			seen[name] = struct{}{}
		}
	}

	if entries, err := os.ReadDir(r.dir); err == nil {
		for _, e := range entries {
			if filepath.Ext(e.Name()) != ".json" || !exists(filepath.Join(r.dir, e.Name())) {
				continue
			}
			seen[strings.TrimSuffix(e.Name(), ".json")] = struct{}{}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsAvailable reports whether the resolved schema file for provider exists.
// Blank names are never available.
func (r *Registry) IsAvailable(provider string) bool {
	path, err := r.ResolvePath(provider)
	if err != nil {
		return false
	}
	return exists(path)
}

// Dir returns the schema directory.
func (r *Registry) Dir() string { return r.dir }

// Overrides returns a copy of the explicit provider paths.
func (r *Registry) Overrides() map[string]string {
	return maps.Clone(r.overrides)
}

func exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
