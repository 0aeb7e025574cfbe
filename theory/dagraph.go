// Package theory decomposes automata into strongly connected components
// and converts between unary, semilinear and binary representations of
// integer sets.
package theory

import (
	"cmp"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/signadot/strsolve/debug"
)

// Graph is the raw state graph of an automaton. Nodes are numbered from 0
// to NumNodes()-1.
type Graph interface {
	NumNodes() int
	Next(id int) []int
	IsStart(id int) bool
	IsSink(id int) bool
	IsFinal(id int) bool
	Flag(id int) int
}

// DAGraphNode is one strongly connected component of a Graph.
type DAGraphNode struct {
	ID       int
	Flag     int
	SubNodes []int

	next map[int]*DAGraphNode
	prev map[int]*DAGraphNode
}

func newDAGraphNode(id int) *DAGraphNode {
	return &DAGraphNode{
		ID:   id,
		next: map[int]*DAGraphNode{},
		prev: map[int]*DAGraphNode{},
	}
}

// Next returns the successor components ordered by id.
func (n *DAGraphNode) Next() []*DAGraphNode { return sortedNodes(n.next) }

// Prev returns the predecessor components ordered by id.
func (n *DAGraphNode) Prev() []*DAGraphNode { return sortedNodes(n.prev) }

func sortedNodes(m map[int]*DAGraphNode) []*DAGraphNode {
	return slices.SortedFunc(maps.Values(m), func(a, b *DAGraphNode) int {
		return cmp.Compare(a.ID, b.ID)
	})
}

// DAGraph is the acyclic graph of the strongly connected components of a
// Graph.
type DAGraph struct {
	raw    Graph
	nodes  map[int]*DAGraphNode
	finals map[int]*DAGraphNode
	byNode []*DAGraphNode
	start  *DAGraphNode
	sink   *DAGraphNode
}

// NewDAGraph decomposes g with Tarjan's algorithm. Each component is
// named by the id of its root state.
func NewDAGraph(g Graph) *DAGraph {
	n := g.NumNodes()
	d := &DAGraph{
		raw:    g,
		nodes:  map[int]*DAGraphNode{},
		finals: map[int]*DAGraphNode{},
		byNode: make([]*DAGraphNode, n),
	}
	disc := make([]int, n)
	low := make([]int, n)
	onStack := make([]bool, n)
	for i := range disc {
		disc[i] = -1
	}
	var stack []int
	time := 0

	type frame struct {
		u     int
		next  []int
		edge  int
		child int
	}
	for root := 0; root < n; root++ {
		if disc[root] != -1 {
			continue
		}
		calls := []frame{{u: root, child: -1}}
		disc[root], low[root] = time, time
		time++
		stack = append(stack, root)
		onStack[root] = true
		calls[0].next = g.Next(root)

		for len(calls) > 0 {
			f := &calls[len(calls)-1]
			if f.child != -1 {
				low[f.u] = min(low[f.u], low[f.child])
				f.child = -1
			}
			descended := false
			for f.edge < len(f.next) {
				v := f.next[f.edge]
				f.edge++
				if disc[v] == -1 {
					f.child = v
					disc[v], low[v] = time, time
					time++
					stack = append(stack, v)
					onStack[v] = true
					calls = append(calls, frame{u: v, next: g.Next(v), child: -1})
					descended = true
					break
				}
				if onStack[v] {
					low[f.u] = min(low[f.u], disc[v])
				}
			}
			if descended {
				continue
			}
			u := f.u
			calls = calls[:len(calls)-1]
			if low[u] != disc[u] {
				continue
			}
			scc := newDAGraphNode(u)
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				d.absorb(scc, w)
				if w == u {
					break
				}
			}
			d.nodes[scc.ID] = scc
		}
	}

	for u := 0; u < n; u++ {
		from := d.byNode[u]
		for _, v := range g.Next(u) {
			to := d.byNode[v]
			if from == to {
				continue
			}
			from.next[to.ID] = to
			to.prev[from.ID] = from
		}
	}
	if debug.SCC() {
		debug.Logf("dagraph: %d states in %d components\n", n, len(d.nodes))
	}
	return d
}

func (d *DAGraph) absorb(scc *DAGraphNode, w int) {
	scc.SubNodes = append(scc.SubNodes, w)
	d.byNode[w] = scc
	if f := d.raw.Flag(w); f != 0 {
		scc.Flag = f
	}
	if d.raw.IsStart(w) {
		d.start = scc
	}
	if d.raw.IsSink(w) {
		d.sink = scc
	}
	if d.raw.IsFinal(w) {
		d.finals[scc.ID] = scc
	}
}

func (d *DAGraph) Start() *DAGraphNode { return d.start }
func (d *DAGraph) Sink() *DAGraphNode  { return d.sink }
func (d *DAGraph) RawGraph() Graph     { return d.raw }

// Node returns the component with the given id, or nil.
func (d *DAGraph) Node(id int) *DAGraphNode { return d.nodes[id] }

// NodeOf returns the component absorbing raw state s.
func (d *DAGraph) NodeOf(s int) *DAGraphNode { return d.byNode[s] }

// Nodes returns the components ordered by id.
func (d *DAGraph) Nodes() []*DAGraphNode { return sortedNodes(d.nodes) }

// FinalNodes returns the accepting components ordered by id.
func (d *DAGraph) FinalNodes() []*DAGraphNode { return sortedNodes(d.finals) }

func (d *DAGraph) IsFinal(n *DAGraphNode) bool {
	_, ok := d.finals[n.ID]
	return ok
}

// Reachable returns the components reachable from the start component,
// ordered by id.
func (d *DAGraph) Reachable() []*DAGraphNode {
	if d.start == nil {
		return nil
	}
	seen := map[int]*DAGraphNode{d.start.ID: d.start}
	work := []*DAGraphNode{d.start}
	for len(work) > 0 {
		n := work[len(work)-1]
		work = work[:len(work)-1]
		for id, m := range n.next {
			if _, ok := seen[id]; !ok {
				seen[id] = m
				work = append(work, m)
			}
		}
	}
	return sortedNodes(seen)
}

// RemoveNode drops n from the graph and from the final set. Edges from its
// predecessors are severed.
func (d *DAGraph) RemoveNode(n *DAGraphNode) {
	delete(d.nodes, n.ID)
	delete(d.finals, n.ID)
	for _, p := range n.prev {
		delete(p.next, n.ID)
	}
	for _, m := range n.next {
		delete(m.prev, n.ID)
	}
	if d.start == n {
		d.start = nil
	}
	if d.sink == n {
		d.sink = nil
	}
}

// ResetFinalNodes replaces the final set.
func (d *DAGraph) ResetFinalNodes(nodes []*DAGraphNode) {
	d.finals = map[int]*DAGraphNode{}
	for _, n := range nodes {
		d.finals[n.ID] = n
	}
}

// WriteDot renders the component graph. Edges out of a flagged component
// are labelled with the flag unless they lead into the sink, which is only
// drawn when printSink is set.
func (d *DAGraph) WriteDot(w io.Writer, printSink bool) error {
	printSink = printSink || (len(d.nodes) == 1 && len(d.finals) == 0)
	skip := func(n *DAGraphNode) bool { return !printSink && n == d.sink }

	buf := &strings.Builder{}
	buf.WriteString("digraph MONA_DFA {\n" +
		" rankdir = LR;\n" +
		" center = true;\n" +
		" size = \"700.5,1000.5\";\n" +
		" edge [fontname = Courier];\n" +
		" node [height = .5, width = .5];\n" +
		" node [shape = doublecircle];")
	for _, n := range d.FinalNodes() {
		fmt.Fprintf(buf, " %d;", n.ID)
	}
	buf.WriteString("\n node [shape = circle];")
	nodes := d.Nodes()
	for _, n := range nodes {
		if !skip(n) {
			fmt.Fprintf(buf, " %d;", n.ID)
		}
	}
	buf.WriteString("\n init [shape = plaintext, label = \"\"];\n")
	if d.start != nil {
		fmt.Fprintf(buf, " init -> %d;\n", d.start.ID)
	}
	for _, n := range nodes {
		if skip(n) {
			continue
		}
		for _, m := range n.Next() {
			if skip(m) {
				continue
			}
			fmt.Fprintf(buf, " %d -> %d", n.ID, m.ID)
			if n.Flag != 0 && m != d.sink {
				fmt.Fprintf(buf, "[label = \"%d\"]", n.Flag)
			}
			buf.WriteString(";\n")
		}
	}
	buf.WriteString("}\n")
	_, err := io.WriteString(w, buf.String())
	return err
}

var inspectCount atomic.Int64

// Inspect writes the graph to a new inspect_dagraph_<n>.dot file in dir
// and returns its path.
func (d *DAGraph) Inspect(dir string, printSink bool) (string, error) {
	path := filepath.Join(dir, fmt.Sprintf("inspect_dagraph_%d.dot", inspectCount.Add(1)-1))
	if err := writeFile(path, func(w io.Writer) error { return d.WriteDot(w, printSink) }); err != nil {
		return "", err
	}
	return path, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("%w: %w", ErrInspect, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInspect, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("%w: %s: %w", ErrInspect, path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInspect, path, err)
	}
	return nil
}
