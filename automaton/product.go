package automaton

import "fmt"

// Union returns the minimal automaton accepting the words accepted by a or
// b.
func Union(a, b *DFA) *DFA {
	return product(a, b, func(x, y bool) bool { return x || y })
}

// Intersect returns the minimal automaton accepting the words accepted by
// both a and b.
func Intersect(a, b *DFA) *DFA {
	return product(a, b, func(x, y bool) bool { return x && y })
}

// Difference returns the minimal automaton accepting the words accepted by
// a and rejected by b.
func Difference(a, b *DFA) *DFA {
	return product(a, b, func(x, y bool) bool { return x && !y })
}

// Equivalent reports whether a and b accept the same words.
func Equivalent(a, b *DFA) bool {
	return product(a, b, func(x, y bool) bool { return x != y }).IsEmpty()
}

func product(a, b *DFA, accept func(x, y bool) bool) *DFA {
	if a.bits != b.bits {
		panic(fmt.Errorf("%w: product of automata over %d and %d bits", ErrInternal, a.bits, b.bits))
	}
	type pair struct{ a, b int }
	ids := map[pair]int{}
	var pairs []pair
	id := func(p pair) int {
		if i, ok := ids[p]; ok {
			return i
		}
		ids[p] = len(pairs)
		pairs = append(pairs, p)
		return len(pairs) - 1
	}
	id(pair{a.start, b.start})
	res := &DFA{bits: a.bits}
	for i := 0; i < len(pairs); i++ {
		p := pairs[i]
		var es []edge
		for _, ea := range a.edges[p.a] {
			for _, eb := range b.edges[p.b] {
				c, ok := intersectCube(ea.pattern, eb.pattern)
				if !ok {
					continue
				}
				es = append(es, edge{pattern: c, to: id(pair{ea.to, eb.to})})
			}
		}
		res.edges = append(res.edges, coalesce(es))
		res.accepting = append(res.accepting, accept(a.accepting[p.a], b.accepting[p.b]))
	}
	return res.Minimize()
}
