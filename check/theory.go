package check

import (
	"strconv"

	"github.com/signadot/strsolve/ast"
	"github.com/signadot/strsolve/symtab"
)

type unionFind map[string]string

func (u unionFind) find(x string) string {
	for {
		p, ok := u[x]
		if !ok || p == x {
			return x
		}
		if gp, ok := u[p]; ok {
			u[x] = gp
		}
		x = p
	}
}

func (u unionFind) union(x, y string) {
	rx, ry := u.find(x), u.find(y)
	if rx != ry {
		u[rx] = ry
	}
}

// equalities checks the equality atoms of an assignment. It returns the
// atoms of a conflicting class, or nil together with the classes when
// the assignment is consistent.
func (b *skeleton) equalities(values map[*atom]bool) ([]*atom, unionFind) {
	uf := unionFind{}
	for _, a := range b.atoms {
		if a.kind == eqAtom && values[a] {
			uf.union(a.left.key(), a.right.key())
		}
	}
	members := map[string][]*atom{}
	for _, a := range b.atoms {
		if a.kind == eqAtom && values[a] {
			root := uf.find(a.left.key())
			members[root] = append(members[root], a)
		}
	}
	konst := map[string]string{}
	for _, a := range b.atoms {
		if a.kind != eqAtom {
			continue
		}
		for _, o := range []operand{a.left, a.right} {
			if o.konst == nil {
				continue
			}
			root := uf.find(o.key())
			if k, ok := konst[root]; ok && k != o.key() {
				return members[root], nil
			}
			konst[root] = o.key()
		}
	}
	for _, a := range b.atoms {
		if a.kind != eqAtom || values[a] {
			continue
		}
		root := uf.find(a.left.key())
		if root == uf.find(a.right.key()) {
			return append([]*atom{a}, members[root]...), nil
		}
	}
	return nil, uf
}

// witness assigns a value to every variable of the script: the constant
// of its class if it has one and a fresh value otherwise. Fresh values
// differ from each other and from every constant, so every false
// equality atom holds.
func (b *skeleton) witness(values map[*atom]bool, uf unionFind, names []string) map[string]any {
	used := map[string]bool{}
	konst := map[string]*ast.Term{}
	for _, a := range b.atoms {
		if a.kind != eqAtom {
			continue
		}
		for _, o := range []operand{a.left, a.right} {
			if o.konst != nil {
				used[o.key()] = true
				konst[uf.find(o.key())] = o.konst
			}
		}
	}
	fresh := func(typ symtab.Type) any {
		for i := 0; ; i++ {
			if typ == symtab.IntType {
				if k := ast.IntPrimitive.String() + ":" + strconv.Itoa(i); !used[k] {
					used[k] = true
					return i
				}
				continue
			}
			s := "w" + strconv.Itoa(i)
			if k := ast.StringPrimitive.String() + ":" + s; !used[k] {
				used[k] = true
				return s
			}
		}
	}

	model := map[string]any{}
	classValue := map[string]any{}
	for _, name := range names {
		typ := symtab.StringType
		if v := b.symbols.Variable(name); v != nil {
			typ = v.Type
		}
		if typ == symtab.BoolType {
			a := b.byKey["?"+name]
			model[name] = a != nil && values[a]
			continue
		}
		root := uf.find(operand{name: name}.key())
		if v, ok := classValue[root]; ok {
			model[name] = v
			continue
		}
		var v any
		if k := konst[root]; k != nil {
			v = constValue(k)
		} else {
			v = fresh(typ)
		}
		classValue[root] = v
		model[name] = v
	}
	return model
}

func constValue(t *ast.Term) any {
	switch t.ValueType {
	case ast.IntPrimitive:
		n, err := strconv.Atoi(t.Value)
		if err != nil {
			return t.Value
		}
		return n
	case ast.BoolPrimitive:
		return t.IsTrue()
	}
	return t.Value
}
