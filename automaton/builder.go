package automaton

import "fmt"

// Builder constructs a DFA one state at a time:
//
//	b := NewBuilder()
//	b.Setup(3, 1)
//	b.AllocExceptions(1)
//	b.StoreException(1, "1")
//	b.StoreState(2)
//	...
//	d := b.Build("-+-")
//
// Exceptions of a state are matched in the order they were stored. The
// state given to StoreState receives every symbol no exception matched.
type Builder struct {
	bits    int
	edges   [][]edge
	pending []exception
	want    int
}

type exception struct {
	pattern string
	to      int
}

func NewBuilder() *Builder {
	return &Builder{}
}

// Setup starts a new automaton with n states over symbols of bits bits.
func (b *Builder) Setup(n, bits int) {
	b.bits = bits
	b.edges = make([][]edge, 0, n)
	b.pending = nil
	b.want = n
}

// AllocExceptions announces the number of exceptions of the next state.
func (b *Builder) AllocExceptions(n int) {
	b.pending = make([]exception, 0, n)
}

func (b *Builder) StoreException(to int, pattern string) {
	checkPattern(pattern, b.bits)
	b.pending = append(b.pending, exception{pattern: pattern, to: to})
}

// StoreState completes the current state with default target def.
func (b *Builder) StoreState(def int) {
	if len(b.edges) == b.want {
		panic(fmt.Errorf("%w: more than %d states stored", ErrInternal, b.want))
	}
	var es []edge
	remaining := []string{allX(b.bits)}
	for _, x := range b.pending {
		var next []string
		for _, r := range remaining {
			if c, ok := intersectCube(r, x.pattern); ok {
				es = append(es, edge{pattern: c, to: x.to})
			}
			next = append(next, subtractCube(r, x.pattern)...)
		}
		remaining = next
	}
	for _, r := range remaining {
		es = append(es, edge{pattern: r, to: def})
	}
	b.edges = append(b.edges, coalesce(es))
	b.pending = nil
}

// Build returns the automaton. statuses has one byte per state: '+' for
// accepting, '-' or '0' for rejecting. The start state is 0.
func (b *Builder) Build(statuses string) *DFA {
	if len(b.edges) != b.want || len(statuses) != b.want {
		panic(fmt.Errorf("%w: built %d states with %d statuses, want %d",
			ErrInternal, len(b.edges), len(statuses), b.want))
	}
	d := &DFA{bits: b.bits, edges: b.edges, accepting: make([]bool, b.want)}
	for s, es := range d.edges {
		for _, e := range es {
			if e.to < 0 || e.to >= b.want {
				panic(fmt.Errorf("%w: state %d has target %d out of range", ErrInternal, s, e.to))
			}
		}
		d.accepting[s] = statuses[s] == '+'
	}
	b.edges = nil
	return d
}

// coalesce joins cubes with the same target that differ in a single
// fixed bit until no pair can be joined.
func coalesce(es []edge) []edge {
	if len(es) < 2 {
		return es
	}
	type key struct {
		to      int
		pattern string
	}
	n := len(es[0].pattern)
	for changed := true; changed; {
		changed = false
		for i := 0; i < n; i++ {
			seen := map[key]int{}
			out := make([]edge, 0, len(es))
			for _, e := range es {
				if e.pattern[i] == 'X' {
					out = append(out, e)
					continue
				}
				k := key{to: e.to, pattern: e.pattern[:i] + "X" + e.pattern[i+1:]}
				if j, ok := seen[k]; ok {
					out[j].pattern = k.pattern
					delete(seen, k)
					changed = true
					continue
				}
				seen[k] = len(out)
				out = append(out, e)
			}
			es = out
		}
	}
	return es
}
