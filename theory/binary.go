package theory

import (
	"fmt"
	"math/bits"
	"strings"

	"github.com/signadot/strsolve/automaton"
	"github.com/signadot/strsolve/debug"
)

// BinaryIntAutomaton accepts the two's complement encodings of a set of
// integers, least significant bit first, one bit per symbol. The last bit
// of a word is its sign bit; any number of sign bits may follow the
// shortest encoding.
type BinaryIntAutomaton struct {
	VarName string
	DFA     *automaton.DFA
}

// Accepts reports whether the shortest encoding of n is accepted.
func (b *BinaryIntAutomaton) Accepts(n int) bool {
	return b.DFA.Accepts(EncodeBinary(n, 0)...)
}

// EncodeBinary returns the shortest least significant bit first two's
// complement encoding of n, sign extended to at least width bits.
func EncodeBinary(n, width int) []string {
	var res []string
	for {
		b := n & 1
		res = append(res, fmt.Sprint(b))
		n >>= 1
		if (n == 0 && b == 0) || (n == -1 && b == 1) {
			break
		}
	}
	for len(res) < width {
		res = append(res, res[len(res)-1])
	}
	return res
}

// binState is what the binary automaton remembers about the bits read so
// far: their exact value while it is at most the largest threshold of the
// set, and their value modulo the period.
type binState struct {
	pos  int
	val  int
	big  bool
	mod  int
	pow  int
	acc  bool
	ones bool
}

// MakeBinaryIntAutomaton builds the binary automaton of set, adding -1
// when addMinusOne is set.
func MakeBinaryIntAutomaton(set *SemilinearSet, varName string, addMinusOne bool) *BinaryIntAutomaton {
	if err := set.Validate(); err != nil {
		panic(fmt.Errorf("%w: %w", ErrInternal, err))
	}
	p := 0
	if !set.HasOnlyConstants() {
		p = set.Period
	}
	limit := set.CycleHead
	if len(set.Constants) > 0 {
		limit = max(limit, set.Constants[len(set.Constants)-1])
	}
	width := bits.Len(uint(limit))

	member := func(q binState) bool {
		if !q.big {
			return set.Contains(q.val)
		}
		if p == 0 {
			return false
		}
		r := ((q.mod-set.CycleHead)%p + p) % p
		for _, x := range set.PeriodicConstants {
			if x == r {
				return true
			}
		}
		return false
	}
	step := func(q binState, bit int) binState {
		next := binState{
			acc:  bit == 0 && member(q),
			ones: q.ones && bit == 1,
			val:  q.val,
			big:  q.big,
			pos:  min(q.pos+1, width),
		}
		if bit == 1 && !q.big {
			if q.pos < width {
				next.val += 1 << q.pos
			} else {
				next.big, next.val = true, 0
			}
		}
		if p > 0 {
			next.mod = q.mod
			if bit == 1 {
				next.mod = (q.mod + q.pow) % p
			}
			next.pow = q.pow * 2 % p
		}
		return next
	}

	start := binState{ones: true}
	if p > 0 {
		start.pow = 1 % p
	}
	ids := map[binState]int{start: 0}
	states := []binState{start}
	var trans [][2]int
	for i := 0; i < len(states); i++ {
		var to [2]int
		for bit := 0; bit < 2; bit++ {
			next := step(states[i], bit)
			id, ok := ids[next]
			if !ok {
				id = len(states)
				ids[next] = id
				states = append(states, next)
			}
			to[bit] = id
		}
		trans = append(trans, to)
	}

	b := automaton.NewBuilder()
	b.Setup(len(states), 1)
	statuses := []byte(strings.Repeat("-", len(states)))
	for i, q := range states {
		b.AllocExceptions(1)
		b.StoreException(trans[i][0], "0")
		b.StoreState(trans[i][1])
		if i > 0 && (q.acc || (addMinusOne && q.ones)) {
			statuses[i] = '+'
		}
	}
	d := b.Build(string(statuses)).Minimize()
	if debug.Unary() {
		debug.Logf("binary: %s (minus one %t) -> %d states from %d\n", set, addMinusOne, d.NumStates(), len(states))
	}
	return &BinaryIntAutomaton{VarName: varName, DFA: d}
}
