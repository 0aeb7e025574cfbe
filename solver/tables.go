package solver

import (
	"github.com/signadot/strsolve/ast"
	"github.com/signadot/strsolve/constraint"
	"github.com/signadot/strsolve/symtab"
)

// SymbolTable is the part of a symbol table the solver uses. It is
// implemented by *symtab.Table.
type SymbolTable interface {
	Variable(name string) *symtab.Variable
	VariableOf(t *ast.Term) *symtab.Variable
	AddVariable(v *symtab.Variable)
	SetValue(name string, v symtab.Value)
	Value(name string) (symtab.Value, bool)
	AddVariableGroupMapping(varName, groupName string)
	PushScope(key ast.ID)
	PopScope()
	TopScope() ast.ID
	Scopes() []ast.ID
	VarNameForNode(id ast.ID, typ symtab.Type) string
	AddVariableSubstitutionRule(v, repl *symtab.Variable)
}

// ConstraintInformation classifies terms. It is implemented by
// *constraint.Information.
type ConstraintInformation interface {
	IsComponent(t *ast.Term) bool
	AddComponent(t *ast.Term)
	AddStringConstraint(t *ast.Term)
	AddMixedConstraint(t *ast.Term)
	AddArithmeticConstraint(t *ast.Term)
	HasStringConstraint(t *ast.Term) bool
	HasMixedConstraint(t *ast.Term) bool
	HasArithmeticConstraint(t *ast.Term) bool
}

var (
	_ SymbolTable           = (*symtab.Table)(nil)
	_ ConstraintInformation = (*constraint.Information)(nil)
)
