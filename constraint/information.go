// Package constraint records which terms are independently solvable
// components and which theories each term touches.
package constraint

import "github.com/signadot/strsolve/ast"

type flags uint8

const (
	component flags = 1 << iota
	stringConstraint
	mixedConstraint
	arithmeticConstraint
)

// Information is a classification table keyed by term id.
type Information struct {
	flags map[ast.ID]flags
}

func NewInformation() *Information {
	return &Information{flags: map[ast.ID]flags{}}
}

func (i *Information) set(id ast.ID, f flags)      { i.flags[id] |= f }
func (i *Information) has(id ast.ID, f flags) bool { return i.flags[id]&f != 0 }

func (i *Information) AddComponent(t *ast.Term)     { i.set(t.ID, component) }
func (i *Information) IsComponent(t *ast.Term) bool { return i.has(t.ID, component) }

func (i *Information) AddStringConstraint(t *ast.Term)      { i.set(t.ID, stringConstraint) }
func (i *Information) HasStringConstraint(t *ast.Term) bool { return i.has(t.ID, stringConstraint) }

func (i *Information) AddMixedConstraint(t *ast.Term)      { i.set(t.ID, mixedConstraint) }
func (i *Information) HasMixedConstraint(t *ast.Term) bool { return i.has(t.ID, mixedConstraint) }

func (i *Information) AddArithmeticConstraint(t *ast.Term) { i.set(t.ID, arithmeticConstraint) }
func (i *Information) HasArithmeticConstraint(t *ast.Term) bool {
	return i.has(t.ID, arithmeticConstraint)
}

// Components returns the component roots of script in visiting order.
func (i *Information) Components(script *ast.Script) []*ast.Term {
	var res []*ast.Term
	script.Visit(func(t *ast.Term, isPost bool) (bool, error) {
		if !isPost && i.IsComponent(t) {
			res = append(res, t)
		}
		return true, nil
	})
	return res
}

// MarkComponents marks every assertion root, every disjunction and every
// conjunction that is a direct branch of a disjunction as a component.
// Integer comparisons and operators are marked arithmetic.
func (i *Information) MarkComponents(script *ast.Script) {
	for _, root := range script.Assertions() {
		if root.Kind.IsConnective() {
			i.AddComponent(root)
		}
		root.Visit(func(t *ast.Term, isPost bool) (bool, error) {
			if isPost {
				return true, nil
			}
			switch t.Kind {
			case ast.OrKind:
				i.AddComponent(t)
				for _, a := range t.Args {
					if a.Kind == ast.AndKind {
						i.AddComponent(a)
					}
				}
			case ast.GtKind, ast.GeKind, ast.LtKind, ast.LeKind,
				ast.PlusKind, ast.MinusKind, ast.TimesKind, ast.UMinusKind:
				i.AddArithmeticConstraint(t)
			}
			return true, nil
		})
	}
}
