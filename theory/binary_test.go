package theory

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/signadot/strsolve/automaton"
	"github.com/signadot/strsolve/formula"
)

func TestEncodeBinary(t *testing.T) {
	tests := []struct {
		n     int
		width int
		want  []string
	}{
		{0, 0, []string{"0"}},
		{1, 0, []string{"1", "0"}},
		{5, 0, []string{"1", "0", "1", "0"}},
		{-1, 0, []string{"1"}},
		{-2, 0, []string{"0", "1"}},
		{3, 5, []string{"1", "1", "0", "0", "0"}},
		{-3, 4, []string{"1", "0", "1", "1"}},
	}
	for _, tt := range tests {
		got := EncodeBinary(tt.n, tt.width)
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("EncodeBinary(%d, %d) (-want +got):\n%s", tt.n, tt.width, diff)
		}
	}
}

func TestBinaryIntAutomaton(t *testing.T) {
	tests := []struct {
		set      string
		minusOne bool
	}{
		{";2,3:0", false},
		{";2,3:0", true},
		{"0,1,4", false},
		{"1,3;6,5:0,4", true},
		{";0,1:0", false},
		{"", false},
		{"", true},
		{"9", false},
	}
	for _, tt := range tests {
		set := mustParse(t, tt.set)
		b := MakeBinaryIntAutomaton(set, "n", tt.minusOne)
		if b.VarName != "n" {
			t.Errorf("VarName = %q", b.VarName)
		}
		for n := -6; n < 70; n++ {
			want := (n >= 0 && set.Contains(n)) || (tt.minusOne && n == -1)
			if got := b.Accepts(n); got != want {
				t.Errorf("%s (minus one %t): Accepts(%d) = %v, want %v", tt.set, tt.minusOne, n, got, want)
			}
			// sign extension does not change the value
			if got := b.DFA.Accepts(EncodeBinary(n, 10)...); got != want {
				t.Errorf("%s: padded encoding of %d accepted = %v, want %v", tt.set, n, got, want)
			}
		}
		if b.DFA.Accepts() {
			t.Errorf("%s: accepts the empty word", tt.set)
		}
	}
}

func TestToBinaryIntAutomaton(t *testing.T) {
	u := unaryLasso(2, 3, 2, 4)
	got := u.ToBinaryIntAutomaton("x", true)
	want := MakeBinaryIntAutomaton(mustParse(t, ";2,3:0,2"), "x", true)
	if !automaton.Equivalent(want.DFA, got.DFA) {
		t.Errorf("binary lift differs from the automaton of the analyzed set")
	}
	for _, n := range []int{-1, 2, 4, 5, 7, 8} {
		if !got.Accepts(n) {
			t.Errorf("rejects %d", n)
		}
	}
	for _, n := range []int{-2, 0, 1, 3, 6} {
		if got.Accepts(n) {
			t.Errorf("accepts %d", n)
		}
	}
}

func TestMakeAnyStringAligned(t *testing.T) {
	f := formula.New(formula.IntersectType)
	f.AddVariable("y", formula.Carrier)
	f.AddVariable("x", formula.Carrier)
	s := MakeAnyStringAligned(f)
	if diff := cmp.Diff([]string{"x", "y"}, s.Tracks); diff != "" {
		t.Errorf("tracks (-want +got):\n%s", diff)
	}
	if s.Track("y") != 1 || s.Track("z") != -1 {
		t.Errorf("Track lookups wrong")
	}
	for _, v := range []map[string]string{
		{},
		{"x": "ab", "y": "a"},
		{"x": "", "y": "hello"},
		{"x": "\x00\xff", "y": "\xfe"},
	} {
		if !s.Accepts(v) {
			t.Errorf("rejects %v", v)
		}
	}
	// x pads, then reads a character
	bad := []string{
		Lambda + "001100001",
		"001100010" + "001100011",
	}
	if s.DFA.Accepts(bad...) {
		t.Errorf("accepts a character after padding")
	}
}
