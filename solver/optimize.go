package solver

import "github.com/signadot/strsolve/ast"

// Optimizer folds the degenerate structure left behind by substitution:
// trivial comparisons, constant and single argument connectives, and
// connectives nested in connectives of the same kind.
type Optimizer struct {
	script *ast.Script
}

func NewOptimizer(script *ast.Script) *Optimizer {
	return &Optimizer{script: script}
}

// Start folds every assertion. An assertion that folds to something other
// than a connective is wrapped in a single argument conjunction.
func (o *Optimizer) Start() {
	for _, c := range o.script.Commands {
		if c.Kind != ast.AssertCommand {
			continue
		}
		t := o.fold(c.Term)
		if !t.Kind.IsConnective() {
			t = ast.And(t)
		}
		t.Parent, t.ParentIndex = nil, 0
		c.Term = t
	}
}

func (o *Optimizer) fold(t *ast.Term) *ast.Term {
	for i, a := range t.Args {
		t.SetArg(i, o.fold(a))
	}
	switch t.Kind {
	case ast.AndKind:
		return foldConnective(t, true)
	case ast.OrKind:
		return foldConnective(t, false)
	case ast.EqKind, ast.NotEqKind:
		if len(t.Args) != 2 {
			return t
		}
		eq, ok := sameValue(t.Left(), t.Right())
		if !ok {
			return t
		}
		return ast.Bool(eq == (t.Kind == ast.EqKind))
	}
	return t
}

// foldConnective folds a conjunction when and is set, a disjunction
// otherwise.
func foldConnective(t *ast.Term, and bool) *ast.Term {
	unit, zero := (*ast.Term).IsTrue, (*ast.Term).IsFalse
	if !and {
		unit, zero = zero, unit
	}
	var args []*ast.Term
	for _, a := range t.Args {
		switch {
		case unit(a):
		case zero(a):
			return ast.Bool(!and)
		case a.Kind == t.Kind:
			args = append(args, a.Args...)
		default:
			args = append(args, a)
		}
	}
	switch len(args) {
	case 0:
		return ast.Bool(and)
	case 1:
		return args[0]
	}
	t.SetArgs(args)
	return t
}

// sameValue decides equality of two identical identifiers or two
// constants of the same type.
func sameValue(l, r *ast.Term) (eq, ok bool) {
	switch {
	case l.Kind == ast.QualIdKind && r.Kind == ast.QualIdKind && l.Name == r.Name:
		return true, true
	case l.Kind == ast.ConstKind && r.Kind == ast.ConstKind && l.ValueType == r.ValueType && l.ValueType != ast.RegexPrimitive:
		return l.Value == r.Value, true
	}
	return false, false
}
