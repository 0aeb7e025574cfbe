package automaton

// Minimize returns the minimal automaton equivalent to d. Unreachable
// states are dropped and states are renumbered in breadth first order from
// the start state, so equal languages give identical automata.
func (d *DFA) Minimize() *DFA {
	order := d.reachable()
	index := make(map[int]int, len(order))
	for i, s := range order {
		index[s] = i
	}

	class := make([]int, len(order))
	nClasses := 0
	{
		acc, rej := -1, -1
		for i, s := range order {
			if d.accepting[s] {
				if acc == -1 {
					acc = nClasses
					nClasses++
				}
				class[i] = acc
			} else {
				if rej == -1 {
					rej = nClasses
					nClasses++
				}
				class[i] = rej
			}
		}
	}

	equiv := func(a, b int) bool {
		for _, ea := range d.edges[order[a]] {
			for _, eb := range d.edges[order[b]] {
				if _, ok := intersectCube(ea.pattern, eb.pattern); !ok {
					continue
				}
				if class[index[ea.to]] != class[index[eb.to]] {
					return false
				}
			}
		}
		return true
	}

	for {
		next := make([]int, len(order))
		var reps []int
		for i := range order {
			found := -1
			for c, r := range reps {
				if class[r] == class[i] && equiv(r, i) {
					found = c
					break
				}
			}
			if found == -1 {
				found = len(reps)
				reps = append(reps, i)
			}
			next[i] = found
		}
		class = next
		if len(reps) == nClasses {
			return d.quotient(order, index, class, reps)
		}
		nClasses = len(reps)
	}
}

func (d *DFA) quotient(order []int, index map[int]int, class, reps []int) *DFA {
	// renumber classes breadth first from the start class
	renum := make([]int, len(reps))
	for i := range renum {
		renum[i] = -1
	}
	queue := []int{class[0]}
	renum[class[0]] = 0
	n := 1
	for i := 0; i < len(queue); i++ {
		for _, e := range d.edges[order[reps[queue[i]]]] {
			c := class[index[e.to]]
			if renum[c] == -1 {
				renum[c] = n
				n++
				queue = append(queue, c)
			}
		}
	}
	res := &DFA{
		bits:      d.bits,
		accepting: make([]bool, len(reps)),
		edges:     make([][]edge, len(reps)),
	}
	for c, r := range reps {
		s := order[r]
		nc := renum[c]
		res.accepting[nc] = d.accepting[s]
		es := make([]edge, 0, len(d.edges[s]))
		for _, e := range d.edges[s] {
			es = append(es, edge{pattern: e.pattern, to: renum[class[index[e.to]]]})
		}
		res.edges[nc] = coalesce(es)
	}
	return res
}
