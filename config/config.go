// Package config reads strsolve configuration files.
//
//	solver:
//	  force_dnf: true
//	  dependency_analysis: true
//	check:
//	  max_iterations: 128
//	output_dir: out
//	debug:
//	  extract: true
package config

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/goccy/go-yaml"
	"github.com/signadot/strsolve/check"
	"github.com/signadot/strsolve/debug"
	"github.com/signadot/strsolve/solver"
)

var ErrConfig = errors.New("config error")

type File struct {
	Solver    solver.Config   `yaml:"solver"`
	Check     check.Config    `yaml:"check"`
	OutputDir string          `yaml:"output_dir"`
	Debug     map[string]bool `yaml:"debug"`
}

// Load reads the file at path. An empty path gives the zero File.
func Load(path string) (*File, error) {
	if path == "" {
		return &File{}, nil
	}
	d, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(d)
}

func Parse(d []byte) (*File, error) {
	f := &File{}
	if err := yaml.UnmarshalWithOptions(d, f, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	for _, name := range slices.Sorted(maps.Keys(f.Debug)) {
		if !slices.Contains(debug.Names(), name) {
			return nil, fmt.Errorf("%w: unknown debug flag %q", ErrConfig, name)
		}
	}
	return f, nil
}

// Apply turns on the debug flags of f.
func (f *File) Apply() {
	for name, on := range f.Debug {
		debug.Set(name, on)
	}
}
