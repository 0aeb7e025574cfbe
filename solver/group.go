package solver

import (
	"maps"
	"slices"

	"github.com/signadot/strsolve/ast"
	"github.com/signadot/strsolve/formula"
	"github.com/signadot/strsolve/symtab"
	"github.com/signadot/strsolve/theory"
)

// addStringVariables assigns the variables of the formula of t to groups.
//
// By default every variable of a component joins the component group.
// With ForceDNF only variables related by a relational formula share a
// group. In both policies a non relational term formula is dropped once
// its variables are grouped.
func (g *StringFormulaGenerator) addStringVariables(t *ast.Term) {
	f := g.termFormula[t.ID]
	if f == nil || f.NumVariables() == 0 {
		return
	}
	if g.cfg.forceDNF() {
		g.addRelatedVariables(t, f)
		return
	}
	if g.currentGroup == "" {
		g.log.Warn("string term outside of any component", "term", t.String())
		return
	}
	carrier := g.groupFormula[g.currentGroup]
	if carrier == nil {
		carrier = formula.New(formula.NoneType)
		g.groupFormula[g.currentGroup] = carrier
	}
	carrier.MergeVariables(f)
	table := g.componentGroups()
	for _, v := range f.Variables() {
		table[v] = g.currentGroup
	}
	if f.Type() == formula.NonRelationalType {
		g.ClearTermFormula(t)
		return
	}
	g.termGroup[t.ID] = g.currentGroup
}

func (g *StringFormulaGenerator) addRelatedVariables(t *ast.Term, f *formula.String) {
	table := g.componentGroups()
	vars := f.Variables()
	if f.Type() == formula.NonRelationalType {
		for _, v := range vars {
			if _, ok := table[v]; ok {
				continue
			}
			name := g.groupName(t, v)
			carrier := formula.New(formula.NoneType)
			carrier.AddVariable(v, formula.Carrier)
			g.groupFormula[name] = carrier
			table[v] = name
		}
		g.ClearTermFormula(t)
		return
	}

	start := ""
	for _, v := range vars {
		if name, ok := table[v]; ok {
			start = name
			break
		}
	}
	if start == "" {
		start = g.groupName(t, vars[0])
		g.groupFormula[start] = formula.New(formula.NoneType)
	}
	carrier := g.groupFormula[start]
	for _, v := range vars {
		name, ok := table[v]
		switch {
		case !ok:
			table[v] = start
			carrier.AddVariable(v, formula.Carrier)
		case name != start:
			g.mergeGroup(table, name, start)
		}
	}
	g.termGroup[t.ID] = start
}

// mergeGroup moves every member of group from into group into and deletes
// from.
func (g *StringFormulaGenerator) mergeGroup(table map[string]string, from, into string) {
	carrier := g.groupFormula[into]
	for _, v := range g.groupFormula[from].Variables() {
		table[v] = into
		carrier.AddVariable(v, formula.Carrier)
	}
	delete(g.groupFormula, from)
	for id, name := range g.termGroup {
		if name == from {
			g.termGroup[id] = into
		}
	}
	g.log.Debug("merge group", "from", from, "into", into)
}

// componentGroups returns the variable to group table of the current
// component.
func (g *StringFormulaGenerator) componentGroups() map[string]string {
	var key ast.ID
	if g.component != nil {
		key = g.component.ID
	}
	table := g.variableGroups[key]
	if table == nil {
		table = map[string]string{}
		g.variableGroups[key] = table
	}
	return table
}

// componentCarrier returns the carrier of the current component and the
// group it belongs to. With ForceDNF a component may have several groups;
// the carrier is then their union and has no group name.
func (g *StringFormulaGenerator) componentCarrier() (string, *formula.String) {
	if !g.cfg.forceDNF() {
		return g.currentGroup, g.groupFormula[g.currentGroup]
	}
	names := map[string]bool{}
	for _, name := range g.componentGroups() {
		names[name] = true
	}
	switch len(names) {
	case 0:
		return "", nil
	case 1:
		for name := range names {
			return name, g.groupFormula[name]
		}
	}
	res := formula.New(formula.NoneType)
	for _, name := range slices.Sorted(maps.Keys(names)) {
		res.MergeVariables(g.groupFormula[name])
	}
	return "", res
}

func (g *StringFormulaGenerator) groupName(t *ast.Term, varName string) string {
	return g.symbols.VarNameForNode(t.ID, symtab.StringType) + varName
}

// Groups returns the group names in sorted order.
func (g *StringFormulaGenerator) Groups() []string {
	return slices.Sorted(maps.Keys(g.groupFormula))
}

// setGroupMappings completes every grouped term formula with the
// variables of its group and declares each group in the symbol table,
// bound to the automaton of all aligned strings over its variables.
func (g *StringFormulaGenerator) setGroupMappings() {
	for _, id := range slices.Sorted(maps.Keys(g.termGroup)) {
		if f := g.termFormula[id]; f != nil {
			f.MergeVariables(g.groupFormula[g.termGroup[id]])
		}
	}
	for _, name := range g.Groups() {
		carrier := g.groupFormula[name]
		g.symbols.AddVariable(&symtab.Variable{Name: name, Type: symtab.NoneType})
		g.symbols.SetValue(name, theory.MakeAnyStringAligned(carrier.Clone()))
		for _, v := range carrier.Variables() {
			g.symbols.AddVariableGroupMapping(v, name)
		}
	}
}
