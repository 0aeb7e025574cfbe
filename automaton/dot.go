package automaton

import (
	"fmt"
	"io"
	"strings"
)

// WriteDot renders d in Graphviz format. The sink state and the edges into
// it are left out unless printSink is set.
func (d *DFA) WriteDot(w io.Writer, printSink bool) error {
	sink := d.SinkState()
	if printSink || len(d.edges) == 1 {
		sink = -1
	}
	buf := &strings.Builder{}
	buf.WriteString("digraph MONA_DFA {\n" +
		" rankdir = LR;\n" +
		" center = true;\n" +
		" size = \"7.5,10.5\";\n" +
		" edge [fontname = Courier];\n" +
		" node [height = .5, width = .5];\n" +
		" node [shape = doublecircle];")
	for s, acc := range d.accepting {
		if acc {
			fmt.Fprintf(buf, " %d;", s)
		}
	}
	buf.WriteString("\n node [shape = circle];")
	for s, acc := range d.accepting {
		if !acc && s != sink {
			fmt.Fprintf(buf, " %d;", s)
		}
	}
	fmt.Fprintf(buf, "\n init [shape = plaintext, label = \"\"];\n init -> %d;\n", d.start)
	for s, es := range d.edges {
		if s == sink {
			continue
		}
		// one edge per target, labelled with every pattern leading there
		var targets []int
		labels := map[int][]string{}
		for _, e := range es {
			if e.to == sink {
				continue
			}
			if _, ok := labels[e.to]; !ok {
				targets = append(targets, e.to)
			}
			labels[e.to] = append(labels[e.to], e.pattern)
		}
		for _, to := range targets {
			fmt.Fprintf(buf, " %d -> %d [label=\"%s\"];\n", s, to, strings.Join(labels[to], "\\n"))
		}
	}
	buf.WriteString("}\n")
	_, err := io.WriteString(w, buf.String())
	return err
}
