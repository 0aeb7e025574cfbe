// Package automaton implements complete deterministic finite automata over
// fixed width binary symbols.
//
// Transitions are written as patterns over '0', '1' and 'X', in the style
// of the MONA dfa builder: a state lists exceptions in priority order and
// a default target for every other symbol.
package automaton

import (
	"fmt"
	"slices"
)

type edge struct {
	pattern string
	to      int
}

// DFA is a complete deterministic automaton. States are numbered from 0.
type DFA struct {
	bits      int
	start     int
	accepting []bool
	edges     [][]edge
}

func (d *DFA) Bits() int      { return d.bits }
func (d *DFA) NumStates() int { return len(d.edges) }
func (d *DFA) Start() int     { return d.start }

func (d *DFA) IsStart(s int) bool     { return s == d.start }
func (d *DFA) IsAccepting(s int) bool { return d.accepting[s] }

// SinkState returns the first rejecting state all of whose transitions
// loop on itself, or -1.
func (d *DFA) SinkState() int {
	for s := range d.edges {
		if d.isSink(s) {
			return s
		}
	}
	return -1
}

func (d *DFA) isSink(s int) bool {
	if d.accepting[s] {
		return false
	}
	for _, e := range d.edges[s] {
		if e.to != s {
			return false
		}
	}
	return true
}

// NextStates returns the distinct successors of s in increasing order.
func (d *DFA) NextStates(s int) []int {
	var res []int
	for _, e := range d.edges[s] {
		res = append(res, e.to)
	}
	slices.Sort(res)
	return slices.Compact(res)
}

// NextState returns the successor of s on sym, a string of '0' and '1' of
// length Bits. Patterns containing 'X' are accepted when all the symbols
// they denote lead to the same state; otherwise -1 is returned.
func (d *DFA) NextState(s int, sym string) int {
	checkPattern(sym, d.bits)
	to := -1
	for _, e := range d.edges[s] {
		if _, ok := intersectCube(e.pattern, sym); !ok {
			continue
		}
		if to != -1 && to != e.to {
			return -1
		}
		to = e.to
	}
	return to
}

// HasSelfLoop reports whether some symbol leads from s to itself.
func (d *DFA) HasSelfLoop(s int) bool {
	for _, e := range d.edges[s] {
		if e.to == s {
			return true
		}
	}
	return false
}

// Accepts runs d on word and reports whether it ends in an accepting
// state.
func (d *DFA) Accepts(word ...string) bool {
	s := d.start
	for _, sym := range word {
		s = d.NextState(s, sym)
		if s == -1 {
			panic(fmt.Errorf("%w: symbol %q is not concrete", ErrInternal, sym))
		}
	}
	return d.accepting[s]
}

// IsEmpty reports whether d accepts no word.
func (d *DFA) IsEmpty() bool {
	for _, s := range d.reachable() {
		if d.accepting[s] {
			return false
		}
	}
	return true
}

// reachable returns the states reachable from start in breadth first
// order.
func (d *DFA) reachable() []int {
	seen := make([]bool, len(d.edges))
	seen[d.start] = true
	order := []int{d.start}
	for i := 0; i < len(order); i++ {
		for _, e := range d.edges[order[i]] {
			if !seen[e.to] {
				seen[e.to] = true
				order = append(order, e.to)
			}
		}
	}
	return order
}

func (d *DFA) Clone() *DFA {
	res := &DFA{
		bits:      d.bits,
		start:     d.start,
		accepting: slices.Clone(d.accepting),
		edges:     make([][]edge, len(d.edges)),
	}
	for i, es := range d.edges {
		res.edges[i] = slices.Clone(es)
	}
	return res
}

// Complement returns an automaton accepting exactly the words d rejects.
func (d *DFA) Complement() *DFA {
	res := d.Clone()
	for i := range res.accepting {
		res.accepting[i] = !res.accepting[i]
	}
	return res
}

// MakePhi returns the automaton over bits accepting nothing.
func MakePhi(bits int) *DFA {
	return &DFA{
		bits:      bits,
		accepting: []bool{false},
		edges:     [][]edge{{{pattern: allX(bits), to: 0}}},
	}
}

// MakeAny returns the automaton over bits accepting every word.
func MakeAny(bits int) *DFA {
	return &DFA{
		bits:      bits,
		accepting: []bool{true},
		edges:     [][]edge{{{pattern: allX(bits), to: 0}}},
	}
}
