package theory

import (
	"fmt"
	"strings"

	"github.com/signadot/strsolve/automaton"
	"github.com/signadot/strsolve/debug"
)

const unarySymbol = "1"

// UnaryAutomaton accepts 1^n exactly when n is in the set it represents.
// Its symbols have one bit; "1" is the unary symbol and "0" leads to the
// sink.
type UnaryAutomaton struct {
	dfa *automaton.DFA
}

// NewUnaryAutomaton wraps a one bit automaton.
func NewUnaryAutomaton(d *automaton.DFA) (*UnaryAutomaton, error) {
	if d.Bits() != 1 {
		return nil, fmt.Errorf("%w: unary automaton over %d bits", ErrInternal, d.Bits())
	}
	return &UnaryAutomaton{dfa: d}, nil
}

// MakePhi returns the unary automaton of the empty set.
func MakePhi() *UnaryAutomaton {
	return &UnaryAutomaton{dfa: automaton.MakePhi(1)}
}

// MakeUnaryAutomaton synthesizes the unary automaton of set. A finite set
// gets one state per value up to its largest constant followed by the
// sink, and is not minimized. Otherwise the states before the sink form a
// path of CycleHead+Period states whose last state loops back to the
// cycle head.
func MakeUnaryAutomaton(set *SemilinearSet) *UnaryAutomaton {
	if err := set.Validate(); err != nil {
		panic(fmt.Errorf("%w: %w", ErrInternal, err))
	}
	if set.IsEmptySet() {
		return MakePhi()
	}
	onlyConstants := set.HasOnlyConstants()
	n := set.CycleHead + set.Period + 1
	if onlyConstants {
		n = set.Constants[len(set.Constants)-1] + 2
	}
	sink := n - 1

	b := automaton.NewBuilder()
	b.Setup(n, 1)
	for s := 0; s < n-2; s++ {
		b.AllocExceptions(1)
		b.StoreException(s+1, unarySymbol)
		b.StoreState(sink)
	}
	if onlyConstants {
		b.AllocExceptions(0)
		b.StoreState(sink)
	} else {
		b.AllocExceptions(1)
		b.StoreException(set.CycleHead, unarySymbol)
		b.StoreState(sink)
	}
	b.AllocExceptions(0)
	b.StoreState(sink)

	statuses := []byte(strings.Repeat("-", n))
	for _, c := range set.Constants {
		statuses[c] = '+'
	}
	if !onlyConstants {
		for _, r := range set.PeriodicConstants {
			statuses[set.CycleHead+r] = '+'
		}
	}
	d := b.Build(string(statuses))
	if !onlyConstants {
		d = d.Minimize()
	}
	if debug.Unary() {
		debug.Logf("unary: %s -> %d states\n", set, d.NumStates())
	}
	return &UnaryAutomaton{dfa: d}
}

func (u *UnaryAutomaton) DFA() *automaton.DFA { return u.dfa }

// Accepts reports whether n is in the set of u.
func (u *UnaryAutomaton) Accepts(n int) bool {
	if n < 0 {
		return false
	}
	word := make([]string, n)
	for i := range word {
		word[i] = unarySymbol
	}
	return u.dfa.Accepts(word...)
}

// DAGraph decomposes the state graph of u.
func (u *UnaryAutomaton) DAGraph() *DAGraph {
	return NewDAGraph(u.dfa.Graph())
}

// SemilinearSet walks the path from the start state, numbering each state
// with its distance, until the path reaches the sink or revisits a state.
// A revisited state is the cycle head. Accepting states before it are
// constants, accepting states from it on are periodic constants.
func (u *UnaryAutomaton) SemilinearSet() *SemilinearSet {
	sink := u.dfa.SinkState()
	if sink == -1 {
		panic(ErrNoSink)
	}
	set := &SemilinearSet{}
	cur := u.dfa.Start()
	if cur == sink {
		return set
	}

	values := map[int]int{}
	var states []int
	cycleHead := -1
	for s := 0; s < u.dfa.NumStates()-1; s++ {
		values[cur] = s
		states = append(states, cur)
		next := u.dfa.NextState(cur, unarySymbol)
		if next == sink {
			break
		}
		if _, ok := values[next]; ok {
			cycleHead = next
			break
		}
		cur = next
	}

	inCycle := false
	for _, state := range states {
		if state == cycleHead {
			inCycle = true
			set.CycleHead = values[state]
		}
		if !u.dfa.IsAccepting(state) {
			continue
		}
		if inCycle {
			set.AddPeriodicConstant(values[state] - set.CycleHead)
		} else {
			set.AddConstant(values[state])
		}
	}
	if cycleHead != -1 {
		set.Period = values[states[len(states)-1]] - set.CycleHead + 1
	}
	if debug.Unary() {
		debug.Logf("unary: %d states -> %s\n", u.dfa.NumStates(), set)
	}
	return set
}

// IntAutomaton accepts the strings whose length is in a set of integers.
// Symbols are bytes, most significant bit first; 0xfe and 0xff are
// reserved and never accepted.
type IntAutomaton struct {
	DFA *automaton.DFA
	// MinusOne records that -1 belongs to the set.
	MinusOne bool
}

// byteRows cover every byte but 0xfe and 0xff.
var byteRows = []string{
	"0XXXXXXX",
	"10XXXXXX",
	"110XXXXX",
	"1110XXXX",
	"11110XXX",
	"111110XX",
	"1111110X",
}

// ToIntAutomaton lifts u to an automaton over bytes: every non reserved
// byte moves where the unary symbol moves in u.
func (u *UnaryAutomaton) ToIntAutomaton(addMinusOne bool) *IntAutomaton {
	sink := u.dfa.SinkState()
	if sink == -1 {
		panic(ErrNoSink)
	}
	n := u.dfa.NumStates()
	b := automaton.NewBuilder()
	b.Setup(n, 8)
	statuses := make([]byte, n)
	for s := 0; s < n; s++ {
		if s != sink {
			to := u.dfa.NextState(s, unarySymbol)
			b.AllocExceptions(len(byteRows))
			for _, row := range byteRows {
				b.StoreException(to, row)
			}
		} else {
			b.AllocExceptions(0)
		}
		b.StoreState(sink)
		statuses[s] = '-'
		if u.dfa.IsAccepting(s) {
			statuses[s] = '+'
		}
	}
	return &IntAutomaton{DFA: b.Build(string(statuses)), MinusOne: addMinusOne}
}

// ToBinaryIntAutomaton returns the binary automaton of the set of u,
// optionally with -1 added.
func (u *UnaryAutomaton) ToBinaryIntAutomaton(varName string, addMinusOne bool) *BinaryIntAutomaton {
	return MakeBinaryIntAutomaton(u.SemilinearSet(), varName, addMinusOne)
}
