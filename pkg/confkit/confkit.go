// Package confkit holds the config plumbing shared by the service and the
// standalone poller: split config sections, path lookup and .env loading.
package confkit

import (
	"fmt"
	"os"
	"path/filepath"
)

// Section points at a config file kept apart from the main one, e.g. the
// market sources file. Value is filled by Hydrate and never read from YAML.
type Section[T any] struct {
	File  string `json:",optional"`
	Value *T     `json:"-"`
}

// Loaded reports whether Hydrate produced a value.
func (s Section[T]) Loaded() bool { return s.Value != nil }

// Hydrate resolves File against base and loads it with loader. An empty File
// leaves the section untouched; on error File keeps its configured form.
func (s *Section[T]) Hydrate(base string, loader func(string) (*T, error)) error {
	if s.File == "" {
		return nil
	}
	p := ResolvePath(base, s.File)
	v, err := loader(p)
	if err != nil {
		return fmt.Errorf("confkit: hydrate %s: %w", p, err)
	}
	s.File, s.Value = p, v
	return nil
}

// ResolvePath expands ${VAR} references in file and anchors the result at
// base unless it is absolute. Empty stays empty.
func ResolvePath(base, file string) string {
	file = os.ExpandEnv(file)
	if file == "" || filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(base, file)
}

// BaseDir is the directory relative section files resolve against.
func BaseDir(mainPath string) string {
	return filepath.Dir(mainPath)
}
