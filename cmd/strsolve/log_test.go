package main

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewLog(t *testing.T) {
	level := new(slog.LevelVar)
	buf := &bytes.Buffer{}
	log := newLog(buf, level).With("script", "a.yaml")
	log.Debug("apply rule", "var", "x")
	log.Info("iteration", "n", 1)
	log.Warn("iteration limit reached", "iterations", 64)
	level.Set(slog.LevelDebug)
	log.Debug("apply rule", "var", "y")
	want := `msg=iteration script=a.yaml n=1
level=WARN msg="iteration limit reached" script=a.yaml iterations=64
level=DEBUG msg="apply rule" script=a.yaml var=y
`
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}
