package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/signadot/strsolve/check"
	"github.com/signadot/strsolve/debug"
	"github.com/signadot/strsolve/solver"
)

func TestParse(t *testing.T) {
	d := []byte(`
solver:
  force_dnf: true
  dependency_analysis: true
check:
  max_iterations: 8
output_dir: out
debug:
  check: true
  scc: false
`)
	got, err := Parse(d)
	if err != nil {
		t.Fatal(err)
	}
	want := &File{
		Solver:    solver.Config{ForceDNF: true, EnableDependencyAnalysis: true},
		Check:     check.Config{MaxIterations: 8},
		OutputDir: "out",
		Debug:     map[string]bool{"check": true, "scc": false},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestParseErrors(t *testing.T) {
	for _, d := range []string{
		"solver:\n  forcednf: true\n",
		"debug:\n  everything: true\n",
		"output_dir: [a\n",
	} {
		if _, err := Parse([]byte(d)); !errors.Is(err, ErrConfig) {
			t.Errorf("%q: got %v, want ErrConfig", d, err)
		}
	}
}

func TestLoad(t *testing.T) {
	f, err := Load("")
	if err != nil || f.OutputDir != "" {
		t.Errorf("empty path: %v %v", f, err)
	}
	path := filepath.Join(t.TempDir(), "strsolve.yaml")
	if err := os.WriteFile(path, []byte("output_dir: dot\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	f, err = Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if f.OutputDir != "dot" {
		t.Errorf("output dir %q", f.OutputDir)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("got %v, want not exist", err)
	}
}

func TestApply(t *testing.T) {
	was := debug.Unary()
	defer debug.Set("unary", was)
	f := &File{Debug: map[string]bool{"unary": !was}}
	f.Apply()
	if debug.Unary() == was {
		t.Error("debug flag not applied")
	}
}
