// Package symtab holds variable declarations, the scope stack with
// per-scope values, group mappings and substitution rules.
package symtab

import (
	"fmt"
	"slices"
	"strings"

	"github.com/signadot/strsolve/ast"
)

type Type int

const (
	NoneType Type = iota
	BoolType
	IntType
	StringType
)

func (t Type) String() string {
	s, ok := map[Type]string{
		NoneType:   "None",
		BoolType:   "Bool",
		IntType:    "Int",
		StringType: "String",
	}[t]
	if ok {
		return s
	}
	return "<unknown type>"
}

// TypeOf maps a declared sort to a variable type.
func TypeOf(s ast.Sort) Type {
	switch s {
	case ast.BoolSort:
		return BoolType
	case ast.IntSort:
		return IntType
	case ast.StringSort:
		return StringType
	}
	return NoneType
}

type Variable struct {
	Name string
	Type Type
}

func (v *Variable) String() string {
	return v.Name + ":" + v.Type.String()
}

// Value is whatever a solver binds to a variable in a scope (an automaton,
// a constant, ...). The table does not interpret it.
type Value any

type scope struct {
	key    ast.ID
	values map[string]Value
}

// Table is a symbol table. The zero value is not usable; use New.
type Table struct {
	variables map[string]*Variable
	order     []string
	scopes    []*scope
	scopeByID map[ast.ID]*scope
	groups    map[string]string
	subst     map[string]string
}

func New() *Table {
	return &Table{
		variables: map[string]*Variable{},
		scopeByID: map[ast.ID]*scope{},
		groups:    map[string]string{},
		subst:     map[string]string{},
	}
}

// Declare adds a variable for every declaration of script.
func (t *Table) Declare(script *ast.Script) error {
	for _, c := range script.Declarations() {
		if _, ok := t.variables[c.Name]; ok {
			return fmt.Errorf("%w: %s", ErrRedeclared, c.Name)
		}
		t.AddVariable(&Variable{Name: c.Name, Type: TypeOf(c.Sort)})
	}
	return nil
}

func (t *Table) AddVariable(v *Variable) {
	if _, ok := t.variables[v.Name]; !ok {
		t.order = append(t.order, v.Name)
	}
	t.variables[v.Name] = v
}

// Variable returns the variable called name, or nil.
func (t *Table) Variable(name string) *Variable {
	return t.variables[name]
}

// VariableOf returns the variable an identifier term refers to, or nil if
// term is not an identifier of a declared variable.
func (t *Table) VariableOf(term *ast.Term) *Variable {
	if term == nil || term.Kind != ast.QualIdKind {
		return nil
	}
	return t.variables[term.Name]
}

// Variables returns all variables in declaration order.
func (t *Table) Variables() []*Variable {
	res := make([]*Variable, 0, len(t.order))
	for _, name := range t.order {
		res = append(res, t.variables[name])
	}
	return res
}

// PushScope makes key the top scope. Re-entering a key reuses its values.
func (t *Table) PushScope(key ast.ID) {
	s, ok := t.scopeByID[key]
	if !ok {
		s = &scope{key: key, values: map[string]Value{}}
		t.scopeByID[key] = s
	}
	t.scopes = append(t.scopes, s)
}

func (t *Table) PopScope() {
	if len(t.scopes) == 0 {
		panic(fmt.Errorf("%w: pop of empty scope stack", ErrInternal))
	}
	t.scopes = t.scopes[:len(t.scopes)-1]
}

// TopScope returns the key of the innermost scope, or 0 when no scope is
// open.
func (t *Table) TopScope() ast.ID {
	if len(t.scopes) == 0 {
		return 0
	}
	return t.scopes[len(t.scopes)-1].key
}

// Scopes returns the keys of the open scopes, innermost first.
func (t *Table) Scopes() []ast.ID {
	res := make([]ast.ID, 0, len(t.scopes))
	for i := len(t.scopes) - 1; i >= 0; i-- {
		res = append(res, t.scopes[i].key)
	}
	return res
}

// SetValue binds a value to name in the top scope, opening a global scope
// if none is open.
func (t *Table) SetValue(name string, v Value) {
	if len(t.scopes) == 0 {
		t.PushScope(0)
	}
	t.scopes[len(t.scopes)-1].values[name] = v
}

// Value looks name up from the innermost scope outwards.
func (t *Table) Value(name string) (Value, bool) {
	for i := len(t.scopes) - 1; i >= 0; i-- {
		if v, ok := t.scopes[i].values[name]; ok {
			return v, true
		}
	}
	return nil, false
}

func (t *Table) AddVariableGroupMapping(varName, groupName string) {
	t.groups[varName] = groupName
}

// GroupOf returns the group a variable was mapped to.
func (t *Table) GroupOf(varName string) (string, bool) {
	g, ok := t.groups[varName]
	return g, ok
}

// GroupMembers returns the sorted names of the variables mapped to group.
func (t *Table) GroupMembers(group string) []string {
	var res []string
	for v, g := range t.groups {
		if g == group {
			res = append(res, v)
		}
	}
	slices.Sort(res)
	return res
}

// AddVariableSubstitutionRule records that v was replaced by repl.
func (t *Table) AddVariableSubstitutionRule(v, repl *Variable) {
	if v.Name == repl.Name {
		return
	}
	t.subst[v.Name] = repl.Name
}

// Representative follows substitution rules from name to the variable
// that finally replaced it.
func (t *Table) Representative(name string) string {
	seen := map[string]bool{}
	for {
		next, ok := t.subst[name]
		if !ok || seen[next] {
			return name
		}
		seen[name] = true
		name = next
	}
}

// VarNameForNode synthesizes a variable name unique to term and type.
func (t *Table) VarNameForNode(id ast.ID, typ Type) string {
	return fmt.Sprintf("__%s_%d", strings.ToLower(typ.String()), id)
}
