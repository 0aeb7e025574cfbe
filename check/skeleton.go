package check

import (
	"fmt"

	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"
	"github.com/signadot/strsolve/ast"
	"github.com/signadot/strsolve/constraint"
	"github.com/signadot/strsolve/symtab"
)

type atomKind int

const (
	// equality between two identifiers or an identifier and a constant
	eqAtom atomKind = iota
	// a boolean variable
	boolAtom
	// any other theory atom, decided only by witness evaluation
	opaqueAtom
)

// operand is a side of an equality atom.
type operand struct {
	name  string
	konst *ast.Term
}

func (o operand) key() string {
	if o.konst != nil {
		return o.konst.ValueType.String() + ":" + o.konst.Value
	}
	return "$" + o.name
}

type atom struct {
	kind        atomKind
	key         string
	lit         z.Lit
	term        *ast.Term
	left, right operand
}

// skeleton is the propositional abstraction of a script as a gini
// circuit. Every theory atom becomes an input literal; atoms with the same
// key share a literal.
type skeleton struct {
	c          *logic.C
	symbols    *symtab.Table
	info       *constraint.Information
	atoms      []*atom
	byKey      map[string]*atom
	components map[ast.ID]z.Lit
	err        error // first error encountered
}

func newSkeleton(symbols *symtab.Table, info *constraint.Information) *skeleton {
	return &skeleton{
		c:          logic.NewC(),
		symbols:    symbols,
		info:       info,
		byKey:      map[string]*atom{},
		components: map[ast.ID]z.Lit{},
	}
}

// buildScript returns the literal of the conjunction of the assertions.
func (b *skeleton) buildScript(script *ast.Script) z.Lit {
	roots := script.Assertions()
	lits := make([]z.Lit, 0, len(roots))
	for _, t := range roots {
		lits = append(lits, b.build(t))
	}
	return b.c.Ands(lits...)
}

func (b *skeleton) build(t *ast.Term) z.Lit {
	if b.err != nil {
		return b.c.F
	}
	switch t.Kind {
	case ast.AndKind, ast.OrKind:
		lits := make([]z.Lit, 0, len(t.Args))
		for _, a := range t.Args {
			lits = append(lits, b.build(a))
		}
		var res z.Lit
		if t.Kind == ast.AndKind {
			res = b.c.Ands(lits...)
		} else {
			res = b.c.Ors(lits...)
		}
		if b.info != nil && b.info.IsComponent(t) {
			b.components[t.ID] = res
		}
		return res
	case ast.NotKind:
		return b.build(t.Args[0]).Not()
	case ast.IteKind:
		cond := b.build(t.Args[0])
		return b.c.Ors(
			b.c.Ands(cond, b.build(t.Args[1])),
			b.c.Ands(cond.Not(), b.build(t.Args[2])))
	case ast.ConstKind:
		switch {
		case t.IsTrue():
			return b.c.T
		case t.IsFalse():
			return b.c.F
		}
		b.err = fmt.Errorf("%s constant %s in boolean position", t.ValueType, t)
		return b.c.F
	case ast.QualIdKind:
		if v := b.symbols.VariableOf(t); v != nil && v.Type == symtab.BoolType {
			return b.atom(boolAtom, "?"+t.Name, t, operand{}, operand{})
		}
		b.err = fmt.Errorf("identifier %s in boolean position", t)
		return b.c.F
	case ast.EqKind, ast.NotEqKind:
		return b.equality(t)
	}
	return b.atom(opaqueAtom, t.String(), t, operand{}, operand{})
}

// equality returns the literal of an Eq or NotEq term. Comparisons of
// two constants fold; a disequality shares the literal of the equality.
func (b *skeleton) equality(t *ast.Term) z.Lit {
	l, lok := b.operand(t.Left())
	r, rok := b.operand(t.Right())
	if !lok || !rok {
		return b.atom(opaqueAtom, t.String(), t, operand{}, operand{})
	}
	var res z.Lit
	if l.konst != nil && r.konst != nil {
		res = b.c.F
		if l.key() == r.key() {
			res = b.c.T
		}
	} else {
		lk, rk := l.key(), r.key()
		if rk < lk {
			l, r, lk, rk = r, l, rk, lk
		}
		term := t
		if t.Kind == ast.NotEqKind {
			term = ast.Eq(t.Left().Clone(), t.Right().Clone())
		}
		res = b.atom(eqAtom, "= "+lk+" "+rk, term, l, r)
	}
	if t.Kind == ast.NotEqKind {
		return res.Not()
	}
	return res
}

func (b *skeleton) operand(t *ast.Term) (operand, bool) {
	switch t.Kind {
	case ast.QualIdKind:
		if v := b.symbols.VariableOf(t); v != nil && v.Type == symtab.BoolType {
			return operand{}, false
		}
		return operand{name: t.Name}, true
	case ast.ConstKind:
		if t.ValueType == ast.StringPrimitive || t.ValueType == ast.IntPrimitive {
			return operand{konst: t}, true
		}
	}
	return operand{}, false
}

func (b *skeleton) atom(kind atomKind, key string, t *ast.Term, l, r operand) z.Lit {
	if a, ok := b.byKey[key]; ok {
		return a.lit
	}
	a := &atom{kind: kind, key: key, lit: b.c.Lit(), term: t, left: l, right: r}
	b.atoms = append(b.atoms, a)
	b.byKey[key] = a
	return a.lit
}
