package solver

import (
	"fmt"
	"log/slog"

	"github.com/signadot/strsolve/ast"
	"github.com/signadot/strsolve/debug"
	"github.com/signadot/strsolve/formula"
	"github.com/signadot/strsolve/symtab"
)

// StringFormulaGenerator computes the string formula of the terms of a
// script in one pass and groups the string variables of each component.
//
// Formulas are owned by the generator and keyed by term id. Accessors
// return the stored formula; callers clone before mutating.
type StringFormulaGenerator struct {
	script  *ast.Script
	symbols SymbolTable
	info    ConstraintInformation
	cfg     Config
	log     *slog.Logger

	termFormula  map[ast.ID]*formula.String
	groupFormula map[string]*formula.String
	termGroup    map[ast.ID]string
	// component root id -> variable -> group
	variableGroups map[ast.ID]map[string]string

	currentGroup string
	component    *ast.Term
	hasMixed     bool
}

func NewStringFormulaGenerator(script *ast.Script, symbols SymbolTable, info ConstraintInformation, cfg *Config) *StringFormulaGenerator {
	return &StringFormulaGenerator{
		script:         script,
		symbols:        symbols,
		info:           info,
		cfg:            *cfg,
		log:            cfg.logger(),
		termFormula:    map[ast.ID]*formula.String{},
		groupFormula:   map[string]*formula.String{},
		termGroup:      map[ast.ID]string{},
		variableGroups: map[ast.ID]map[string]string{},
	}
}

// Start extracts the formulas of every assertion and then publishes the
// groups to the symbol table.
func (g *StringFormulaGenerator) Start() {
	g.StartAt(g.script.Assertions()...)
}

// StartAt is Start restricted to the given roots.
func (g *StringFormulaGenerator) StartAt(roots ...*ast.Term) {
	for _, t := range roots {
		t.Visit(g.visit)
	}
	g.setGroupMappings()
}

func (g *StringFormulaGenerator) visit(t *ast.Term, isPost bool) (bool, error) {
	switch t.Kind {
	case ast.AndKind, ast.OrKind:
		if isPost {
			g.postConnective(t)
		} else {
			g.preConnective(t)
		}
		return true, nil
	case ast.QualIdKind:
		if isPost {
			g.visitQualId(t)
		}
		return true, nil
	case ast.ConstKind:
		if isPost {
			g.visitConst(t)
		}
		return true, nil
	case ast.ConcatKind:
		if isPost {
			g.visitConcat(t)
		}
		return true, nil
	case ast.EqKind:
		if isPost {
			g.visitEquality(t, formula.EqType)
		}
		return true, nil
	case ast.NotEqKind:
		if isPost {
			g.visitEquality(t, formula.NotEqType)
		}
		return true, nil
	case ast.ContainsKind, ast.NotContainsKind:
		if isPost {
			g.visitContainment(t, true, true)
		}
		return true, nil
	case ast.IndexOfKind, ast.LastIndexOfKind:
		if isPost {
			g.visitContainment(t, true, false)
		}
		return true, nil
	case ast.CharAtKind, ast.SubStringKind:
		if isPost {
			g.visitContainment(t, false, false)
		}
		return true, nil

	case ast.NotKind, ast.UMinusKind, ast.MinusKind, ast.PlusKind, ast.TimesKind,
		ast.GtKind, ast.GeKind, ast.LtKind, ast.LeKind,
		ast.InKind, ast.NotInKind, ast.LenKind,
		ast.BeginsKind, ast.NotBeginsKind, ast.EndsKind, ast.NotEndsKind,
		ast.ToUpperKind, ast.ToLowerKind, ast.TrimKind, ast.ToStringKind, ast.ToIntKind,
		ast.ReplaceKind, ast.CountKind, ast.IteKind,
		ast.ReConcatKind, ast.ReUnionKind, ast.ReInterKind, ast.ReStarKind,
		ast.RePlusKind, ast.ReOptKind, ast.ToRegexKind,
		ast.LetKind, ast.ExistsKind, ast.ForAllKind:
		return false, nil
	default:
		panic(fmt.Errorf("%w: no extraction rule for %s", ErrInternal, t.Kind))
	}
}

func (g *StringFormulaGenerator) preConnective(t *ast.Term) {
	if !g.info.IsComponent(t) || g.currentGroup != "" {
		return
	}
	g.currentGroup = g.symbols.VarNameForNode(t.ID, symtab.StringType)
	g.component = t
	g.hasMixed = false
	g.log.Debug("open group", "group", g.currentGroup, "term", t.ID)
}

func (g *StringFormulaGenerator) postConnective(t *ast.Term) {
	if !g.info.IsComponent(t) {
		return
	}
	if g.component == t {
		defer func() {
			g.currentGroup, g.component, g.hasMixed = "", nil, false
		}()
	}
	typ := formula.IntersectType
	if t.Kind == ast.OrKind {
		typ = formula.UnionType
		if !g.hasStringChild(t) {
			return
		}
	}
	name, carrier := g.componentCarrier()
	if carrier == nil || carrier.NumVariables() == 0 {
		if t.Kind == ast.AndKind && g.hasMixed {
			g.info.AddMixedConstraint(t)
		}
		return
	}
	f := carrier.Clone()
	f.SetType(typ)
	g.setTermFormula(t, f)
	if name != "" {
		g.termGroup[t.ID] = name
	}
	g.info.AddStringConstraint(t)
	if g.hasMixed {
		g.info.AddMixedConstraint(t)
	}
}

func (g *StringFormulaGenerator) hasStringChild(t *ast.Term) bool {
	for _, a := range t.Args {
		if g.info.HasStringConstraint(a) || g.info.HasMixedConstraint(a) {
			return true
		}
	}
	return false
}

func (g *StringFormulaGenerator) visitQualId(t *ast.Term) {
	v := g.symbols.VariableOf(t)
	if v == nil || v.Type != symtab.StringType {
		return
	}
	g.setTermFormula(t, formula.NewVar(v.Name))
}

func (g *StringFormulaGenerator) visitConst(t *ast.Term) {
	switch t.ValueType {
	case ast.StringPrimitive:
		g.setTermFormula(t, formula.NewConstant(formula.StringConstantType, t.Value))
	case ast.RegexPrimitive:
		g.setTermFormula(t, formula.NewConstant(formula.RegexConstantType, t.Value))
	}
}

func (g *StringFormulaGenerator) visitConcat(t *ast.Term) {
	if len(t.Args) == 2 && t.Args[0].Kind == ast.QualIdKind && t.Args[1].Kind == ast.ConstKind {
		l, r := g.termFormula[t.Args[0].ID], g.termFormula[t.Args[1].ID]
		if c, ok := constantOf(r); ok && l != nil {
			f := l.Clone()
			f.SetConstant(c)
			f.SetType(formula.ConcatVarConstantType)
			g.deleteTermFormulas(t.Args...)
			g.setTermFormula(t, f)
			g.info.AddStringConstraint(t)
			return
		}
	}
	f := g.mergeFormulas(t.Args...)
	f.SetType(formula.NonRelationalType)
	g.deleteTermFormulas(t.Args...)
	g.setTermFormula(t, f)
	g.info.AddMixedConstraint(t)
}

func constantOf(f *formula.String) (string, bool) {
	if f == nil {
		return "", false
	}
	return f.Constant()
}

// visitEquality builds the formula of an equality (typ EqType) or
// disequality (typ NotEqType).
func (g *StringFormulaGenerator) visitEquality(t *ast.Term, typ formula.Type) {
	if len(t.Args) != 2 {
		panic(fmt.Errorf("%w: %s with %d arguments", ErrInternal, t.Kind, len(t.Args)))
	}
	l, r := g.termFormula[t.Left().ID], g.termFormula[t.Right().ID]
	var f *formula.String
	switch {
	case l != nil && r != nil:
		switch {
		case l.Type() == formula.VarType && r.Type() == formula.VarType,
			l.Type() == formula.VarType && r.Type() == formula.ConcatVarConstantType:
			f = relation(l, r, typ)
		case l.Type() == formula.ConcatVarConstantType && r.Type() == formula.VarType:
			f = relation(r, l, typ)
		default:
			f = l.Clone()
			f.MergeVariables(r)
			f.SetType(formula.NonRelationalType)
		}
		g.deleteTermFormulas(t.Args...)
	case l != nil && l.NumVariables() > 0:
		f = l.Clone()
		f.SetType(formula.NonRelationalType)
		g.deleteTermFormulas(t.Left())
	case r != nil && r.NumVariables() > 0:
		f = r.Clone()
		f.SetType(formula.NonRelationalType)
		g.deleteTermFormulas(t.Right())
	default:
		return
	}
	if f.Type() == formula.NonRelationalType {
		g.markMixed(t)
	} else {
		g.info.AddStringConstraint(t)
	}
	g.setTermFormula(t, f)
	g.addStringVariables(t)
}

// relation relates the variable of v to the variable of other, which is
// marked as merged. A constant of other is carried over.
func relation(v, other *formula.String, typ formula.Type) *formula.String {
	f := v.Clone()
	f.MergeVariables(other)
	f.SetType(typ)
	f.SetVariableCoefficient(other.VariableAt(0), formula.Merged)
	if c, ok := other.Constant(); ok {
		f.SetConstant(c)
	}
	return f
}

// visitContainment handles the operators that relate a subject string to
// other operands without a whole string relation. The subject needs a
// formula; so does the search operand when needSearch is set. Grouped
// operators join the current group and make the component mixed.
func (g *StringFormulaGenerator) visitContainment(t *ast.Term, needSearch, grouped bool) {
	if len(t.Args) == 0 || g.termFormula[t.Args[0].ID] == nil {
		return
	}
	if needSearch && (len(t.Args) < 2 || g.termFormula[t.Args[1].ID] == nil) {
		return
	}
	f := g.mergeFormulas(t.Args...)
	f.SetType(formula.NonRelationalType)
	g.deleteTermFormulas(t.Args...)
	g.setTermFormula(t, f)
	if grouped {
		g.addStringVariables(t)
		g.markMixed(t)
	}
}

// mergeFormulas returns a copy of the first formula of terms with the
// variables of the others merged in.
func (g *StringFormulaGenerator) mergeFormulas(terms ...*ast.Term) *formula.String {
	var res *formula.String
	for _, t := range terms {
		f := g.termFormula[t.ID]
		switch {
		case f == nil:
		case res == nil:
			res = f.Clone()
		default:
			res.MergeVariables(f)
		}
	}
	if res == nil {
		res = formula.New(formula.NonRelationalType)
	}
	return res
}

func (g *StringFormulaGenerator) markMixed(t *ast.Term) {
	g.hasMixed = true
	g.info.AddMixedConstraint(t)
}

func (g *StringFormulaGenerator) setTermFormula(t *ast.Term, f *formula.String) {
	if _, ok := g.termFormula[t.ID]; ok {
		panic(fmt.Errorf("%w: formula is already computed for term %d: %s", ErrInternal, t.ID, t))
	}
	if debug.Extract() {
		debug.Logf("extract: %d %s: %s\n", t.ID, t, f)
	}
	g.termFormula[t.ID] = f
}

func (g *StringFormulaGenerator) deleteTermFormulas(ts ...*ast.Term) {
	for _, t := range ts {
		g.ClearTermFormula(t)
	}
}

// TermFormula returns the formula of t, or nil.
func (g *StringFormulaGenerator) TermFormula(t *ast.Term) *formula.String {
	return g.termFormula[t.ID]
}

// GroupFormula returns the carrier formula of a group, or nil.
func (g *StringFormulaGenerator) GroupFormula(name string) *formula.String {
	return g.groupFormula[name]
}

// TermGroupName returns the group t was mapped to, or "".
func (g *StringFormulaGenerator) TermGroupName(t *ast.Term) string {
	return g.termGroup[t.ID]
}

// VariableGroupName returns the group of varName within the component
// rooted at component, or "".
func (g *StringFormulaGenerator) VariableGroupName(component *ast.Term, varName string) string {
	return g.variableGroups[component.ID][varName]
}

// ClearTermFormula drops the formula of t and its group mapping.
func (g *StringFormulaGenerator) ClearTermFormula(t *ast.Term) {
	delete(g.termFormula, t.ID)
	delete(g.termGroup, t.ID)
}

// ClearTermFormulas drops every term formula.
func (g *StringFormulaGenerator) ClearTermFormulas() {
	clear(g.termFormula)
	clear(g.termGroup)
}
