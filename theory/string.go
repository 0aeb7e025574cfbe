package theory

import (
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/signadot/strsolve/automaton"
	"github.com/signadot/strsolve/formula"
)

// TrackBits is the width of one track of a multi-track string automaton:
// a padding bit followed by a byte, most significant bit first.
const TrackBits = 9

// Lambda is the padding symbol of a track. Strings shorter than the
// longest track of a tuple are padded with it.
const Lambda = "100000000"

// StringAutomaton is a multi-track automaton over the variables of a
// group, one track per variable.
type StringAutomaton struct {
	Tracks []string
	DFA    *automaton.DFA
}

// Track returns the index of the track of name, or -1.
func (s *StringAutomaton) Track(name string) int {
	return slices.Index(s.Tracks, name)
}

// Accepts reports whether the aligned tuple of values is accepted.
// Missing tracks read as the empty string.
func (s *StringAutomaton) Accepts(values map[string]string) bool {
	n := 0
	for _, t := range s.Tracks {
		n = max(n, len(values[t]))
	}
	word := make([]string, n)
	for i := range word {
		buf := &strings.Builder{}
		for _, t := range s.Tracks {
			v := values[t]
			if i < len(v) {
				fmt.Fprintf(buf, "0%08b", v[i])
			} else {
				buf.WriteString(Lambda)
			}
		}
		word[i] = buf.String()
	}
	return s.DFA.Accepts(word...)
}

// MakeAnyStringAligned returns the automaton accepting every aligned tuple
// of strings for the variables of f, in sorted order. A track that has
// read padding reads only padding afterwards.
func MakeAnyStringAligned(f *formula.String) *StringAutomaton {
	tracks := f.Variables()
	k := len(tracks)
	res := automaton.MakeAny(k * TrackBits)
	for i := range tracks {
		res = automaton.Intersect(res, alignedTrack(i, k))
	}
	return &StringAutomaton{Tracks: tracks, DFA: res}
}

// alignedTrack constrains track i of k: characters, then padding only.
func alignedTrack(i, k int) *automaton.DFA {
	pad := []byte(strings.Repeat("X", k*TrackBits))
	pad[i*TrackBits] = '1'
	b := automaton.NewBuilder()
	b.Setup(3, k*TrackBits)
	b.AllocExceptions(1)
	b.StoreException(1, string(pad))
	b.StoreState(0)
	b.AllocExceptions(1)
	b.StoreException(1, string(pad))
	b.StoreState(2)
	b.AllocExceptions(0)
	b.StoreState(2)
	return b.Build("++-")
}

var autoInspectCount atomic.Int64

// InspectAutomaton writes d to a new inspect_auto_<n>.dot file in dir and
// returns its path.
func InspectAutomaton(dir string, d *automaton.DFA, printSink bool) (string, error) {
	path := filepath.Join(dir, fmt.Sprintf("inspect_auto_%d.dot", autoInspectCount.Add(1)-1))
	if err := writeFile(path, func(w io.Writer) error { return d.WriteDot(w, printSink) }); err != nil {
		return "", err
	}
	return path, nil
}
