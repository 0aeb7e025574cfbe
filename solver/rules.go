package solver

import (
	"slices"

	"github.com/signadot/strsolve/ast"
	"github.com/signadot/strsolve/symtab"
)

// GenerateSubstitutions derives rewrite rules from the equalities of
// script. An equality between a string variable and another string
// variable or a string constant, asserted directly in a conjunction,
// rewrites the variable on its left (or the only variable) in the scope of
// that conjunction. Disjunction branches are scopes of their own, nested in
// the scope of the disjunction.
//
// A rule is only added when neither side is already involved in a rule of
// the scope or rewritten in an enclosing one. A branch rule additionally
// requires the rewritten variable to occur nowhere outside the disjunction,
// and no rule rewrites a variable occurring under a quantifier.
func GenerateSubstitutions(script *ast.Script, symbols SymbolTable) SubstitutionTable {
	g := &ruleGenerator{
		symbols:    symbols,
		table:      SubstitutionTable{},
		total:      map[string]int{},
		quantified: map[string]bool{},
	}
	for _, t := range script.Assertions() {
		g.count(t, g.total, false)
	}
	g.collect(script.Assertions(), nil, []ast.ID{script.ID})
	return g.table
}

type ruleGenerator struct {
	symbols SymbolTable
	table   SubstitutionTable
	// occurrences of each identifier in the script
	total      map[string]int
	quantified map[string]bool
	// occurrences inside the disjunction being collected
	local map[string]int
}

func (g *ruleGenerator) count(t *ast.Term, counts map[string]int, quantified bool) {
	switch t.Kind {
	case ast.QualIdKind:
		counts[t.Name]++
		if quantified {
			g.quantified[t.Name] = true
		}
		return
	case ast.ExistsKind, ast.ForAllKind:
		quantified = true
	}
	for _, a := range t.Args {
		g.count(a, counts, quantified)
	}
}

// collect gathers the rules of the conjunction of terms. scopes lists
// the enclosing scopes, innermost last; or is the innermost enclosing
// disjunction. The equalities of a scope are collected before the scopes
// nested in it.
func (g *ruleGenerator) collect(terms []*ast.Term, or *ast.Term, scopes []ast.ID) {
	var ors []*ast.Term
	for _, t := range conjuncts(terms, nil) {
		switch t.Kind {
		case ast.OrKind:
			ors = append(ors, t)
		case ast.EqKind:
			if len(t.Args) == 2 {
				g.addRule(scopes, or != nil, t.Left(), t.Right())
			}
		}
	}
	for _, t := range ors {
		saved := g.local
		g.local = map[string]int{}
		g.count(t, g.local, false)
		for _, a := range t.Args {
			g.collect([]*ast.Term{a}, t, append(slices.Clip(scopes), a.ID))
		}
		g.local = saved
	}
}

// conjuncts appends the terms of nested conjunctions to dst.
func conjuncts(terms []*ast.Term, dst []*ast.Term) []*ast.Term {
	for _, t := range terms {
		if t.Kind == ast.AndKind {
			dst = conjuncts(t.Args, dst)
			continue
		}
		dst = append(dst, t)
	}
	return dst
}

func (g *ruleGenerator) addRule(scopes []ast.ID, branch bool, l, r *ast.Term) {
	if !g.isStringVar(l) {
		l, r = r, l
	}
	if !g.isStringVar(l) {
		return
	}
	if !g.isStringVar(r) && !r.IsConst(ast.StringPrimitive) {
		return
	}
	if l.Name == r.Name || g.quantified[l.Name] {
		return
	}
	if branch && g.total[l.Name] != g.local[l.Name] {
		return
	}
	scope, outer := scopes[len(scopes)-1], scopes[:len(scopes)-1]
	for _, key := range outer {
		if g.rewritten(key, l.Name) || g.rewritten(key, r.Name) {
			return
		}
	}
	rules := g.table[scope]
	if rules == nil {
		rules = map[string]*ast.Term{}
		g.table[scope] = rules
	}
	if g.involved(rules, l.Name) || g.involved(rules, r.Name) {
		return
	}
	rules[l.Name] = r
}

// rewritten reports whether scope has a rule rewriting name.
func (g *ruleGenerator) rewritten(scope ast.ID, name string) bool {
	_, ok := g.table[scope][name]
	return ok
}

func (g *ruleGenerator) isStringVar(t *ast.Term) bool {
	v := g.symbols.VariableOf(t)
	return v != nil && v.Type == symtab.StringType
}

// involved reports whether name is rewritten or a rewrite target in rules.
func (g *ruleGenerator) involved(rules map[string]*ast.Term, name string) bool {
	if name == "" {
		return false
	}
	if _, ok := rules[name]; ok {
		return true
	}
	for _, to := range rules {
		if to.Kind == ast.QualIdKind && to.Name == name {
			return true
		}
	}
	return false
}
