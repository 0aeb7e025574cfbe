package automaton

// StateGraph is the raw state graph of a DFA.
type StateGraph struct {
	dfa  *DFA
	sink int
}

// Graph returns the state graph of d. States with a self loop carry flag
// 1.
func (d *DFA) Graph() *StateGraph {
	return &StateGraph{dfa: d, sink: d.SinkState()}
}

func (g *StateGraph) NumNodes() int       { return g.dfa.NumStates() }
func (g *StateGraph) Next(id int) []int   { return g.dfa.NextStates(id) }
func (g *StateGraph) IsStart(id int) bool { return g.dfa.IsStart(id) }
func (g *StateGraph) IsSink(id int) bool  { return id == g.sink }
func (g *StateGraph) IsFinal(id int) bool { return g.dfa.IsAccepting(id) }

func (g *StateGraph) Flag(id int) int {
	if id != g.sink && g.dfa.HasSelfLoop(id) {
		return 1
	}
	return 0
}
