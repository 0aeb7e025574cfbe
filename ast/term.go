package ast

import (
	"strconv"
	"strings"
	"sync/atomic"
)

// ID identifies a term or script for the lifetime of the process. Clones
// receive fresh ids.
type ID int64

var lastID atomic.Int64

func nextID() ID {
	return ID(lastID.Add(1))
}

// Term is a node of a formula tree. The fields used depend on Kind:
//
//   - QualIdKind: Name
//   - ConstKind: Value and ValueType
//   - LetKind: Bound names the first len(Bound) Args, the last Arg is the body
//   - ExistsKind, ForAllKind: Bound and Sorts declare variables, Args[0] is the body
//   - everything else: Args
type Term struct {
	ID          ID
	Kind        Kind
	Parent      *Term
	ParentIndex int
	Args        []*Term

	Name      string
	Value     string
	ValueType PrimitiveType

	Bound []string
	Sorts []Sort
}

func New(kind Kind, args ...*Term) *Term {
	t := &Term{ID: nextID(), Kind: kind}
	for _, a := range args {
		t.Append(a)
	}
	return t
}

func Var(name string) *Term {
	return &Term{ID: nextID(), Kind: QualIdKind, Name: name}
}

func Str(v string) *Term {
	return &Term{ID: nextID(), Kind: ConstKind, Value: v, ValueType: StringPrimitive}
}

func Regex(v string) *Term {
	return &Term{ID: nextID(), Kind: ConstKind, Value: v, ValueType: RegexPrimitive}
}

func Int(v int64) *Term {
	return &Term{ID: nextID(), Kind: ConstKind, Value: strconv.FormatInt(v, 10), ValueType: IntPrimitive}
}

func Bool(v bool) *Term {
	return &Term{ID: nextID(), Kind: ConstKind, Value: strconv.FormatBool(v), ValueType: BoolPrimitive}
}

func And(args ...*Term) *Term { return New(AndKind, args...) }
func Or(args ...*Term) *Term  { return New(OrKind, args...) }
func Not(arg *Term) *Term     { return New(NotKind, arg) }
func Eq(l, r *Term) *Term     { return New(EqKind, l, r) }
func NotEq(l, r *Term) *Term  { return New(NotEqKind, l, r) }

func Concat(args ...*Term) *Term { return New(ConcatKind, args...) }

// Append adds arg as the last child of t.
func (t *Term) Append(arg *Term) {
	arg.Parent = t
	arg.ParentIndex = len(t.Args)
	t.Args = append(t.Args, arg)
}

// SetArg replaces the i'th child of t.
func (t *Term) SetArg(i int, arg *Term) {
	arg.Parent = t
	arg.ParentIndex = i
	t.Args[i] = arg
}

// SetArgs replaces all children of t.
func (t *Term) SetArgs(args []*Term) {
	t.Args = t.Args[:0]
	for _, a := range args {
		t.Append(a)
	}
}

func (t *Term) Left() *Term  { return t.Args[0] }
func (t *Term) Right() *Term { return t.Args[1] }

// IsConst reports whether t is a constant of type p.
func (t *Term) IsConst(p PrimitiveType) bool {
	return t.Kind == ConstKind && t.ValueType == p
}

// IsTrue reports whether t is the boolean constant true.
func (t *Term) IsTrue() bool {
	return t.IsConst(BoolPrimitive) && t.Value == "true"
}

// IsFalse reports whether t is the boolean constant false.
func (t *Term) IsFalse() bool {
	return t.IsConst(BoolPrimitive) && t.Value == "false"
}

// Clone deep copies t. Every copied term gets a fresh id; the clone has
// no parent.
func (t *Term) Clone() *Term {
	res := &Term{}
	t.CloneTo(res)
	res.Parent = nil
	res.ParentIndex = 0
	return res
}

func (t *Term) CloneTo(dst *Term) *Term {
	dst.ID = nextID()
	dst.Kind = t.Kind
	dst.Parent = t.Parent
	dst.ParentIndex = t.ParentIndex
	dst.Name = t.Name
	dst.Value = t.Value
	dst.ValueType = t.ValueType
	if t.Bound != nil {
		dst.Bound = append([]string(nil), t.Bound...)
	}
	if t.Sorts != nil {
		dst.Sorts = append([]Sort(nil), t.Sorts...)
	}
	dst.Args = make([]*Term, len(t.Args))
	for i, a := range t.Args {
		dstI := &Term{}
		a.CloneTo(dstI)
		dstI.Parent = dst
		dstI.ParentIndex = i
		dst.Args[i] = dstI
	}
	return dst
}

// Visit calls f before (isPost false) and after (isPost true) visiting
// the children of t. Children are visited only when the pre call returns
// true.
func (t *Term) Visit(f func(t *Term, isPost bool) (bool, error)) error {
	dive, err := f(t, false)
	if err != nil {
		return err
	}
	if dive {
		for _, a := range t.Args {
			if err := a.Visit(f); err != nil {
				return err
			}
		}
	}
	if _, err := f(t, true); err != nil {
		return err
	}
	return nil
}

// Variables returns the names of the identifiers occurring in t, in order
// of first occurrence.
func (t *Term) Variables() []string {
	var res []string
	seen := map[string]bool{}
	t.Visit(func(y *Term, isPost bool) (bool, error) {
		if !isPost && y.Kind == QualIdKind && !seen[y.Name] {
			seen[y.Name] = true
			res = append(res, y.Name)
		}
		return true, nil
	})
	return res
}

func (t *Term) String() string {
	buf := &strings.Builder{}
	t.write(buf)
	return buf.String()
}

func (t *Term) write(buf *strings.Builder) {
	switch t.Kind {
	case QualIdKind:
		buf.WriteString(t.Name)
		return
	case ConstKind:
		switch t.ValueType {
		case StringPrimitive:
			buf.WriteByte('"')
			buf.WriteString(strings.ReplaceAll(t.Value, `"`, `""`))
			buf.WriteByte('"')
		case RegexPrimitive:
			buf.WriteByte('/')
			buf.WriteString(t.Value)
			buf.WriteByte('/')
		default:
			buf.WriteString(t.Value)
		}
		return
	}
	buf.WriteByte('(')
	buf.WriteString(t.Kind.String())
	switch t.Kind {
	case LetKind:
		buf.WriteString(" (")
		for i, name := range t.Bound {
			if i > 0 {
				buf.WriteByte(' ')
			}
			buf.WriteByte('(')
			buf.WriteString(name)
			buf.WriteByte(' ')
			t.Args[i].write(buf)
			buf.WriteByte(')')
		}
		buf.WriteByte(')')
		for _, a := range t.Args[len(t.Bound):] {
			buf.WriteByte(' ')
			a.write(buf)
		}
	case ExistsKind, ForAllKind:
		buf.WriteString(" (")
		for i, name := range t.Bound {
			if i > 0 {
				buf.WriteByte(' ')
			}
			buf.WriteString("(" + name + " " + t.Sorts[i].String() + ")")
		}
		buf.WriteByte(')')
		for _, a := range t.Args {
			buf.WriteByte(' ')
			a.write(buf)
		}
	default:
		for _, a := range t.Args {
			buf.WriteByte(' ')
			a.write(buf)
		}
	}
	buf.WriteByte(')')
}
