// Package formula provides the normalized algebraic form of a term's
// contribution to string constraints.
package formula

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

type Type int

const (
	NoneType Type = iota
	VarType
	StringConstantType
	RegexConstantType
	ConcatVarConstantType
	EqType
	NotEqType
	IntersectType
	UnionType
	NonRelationalType
)

func (t Type) String() string {
	s, ok := map[Type]string{
		NoneType:              "NONE",
		VarType:               "VAR",
		StringConstantType:    "STRING_CONSTANT",
		RegexConstantType:     "REGEX_CONSTANT",
		ConcatVarConstantType: "CONCAT_VAR_CONSTANT",
		EqType:                "EQ",
		NotEqType:             "NOTEQ",
		IntersectType:         "INTERSECT",
		UnionType:             "UNION",
		NonRelationalType:     "NONRELATIONAL",
	}[t]
	if ok {
		return s
	}
	return "<unknown formula type>"
}

func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// IsRelational reports whether t captures an exact relation between
// variables rather than their mere co-occurrence.
func (t Type) IsRelational() bool {
	switch t {
	case EqType, NotEqType, ConcatVarConstantType, VarType:
		return true
	}
	return false
}

// Coefficients used in variable maps.
const (
	// Carrier marks membership in a group aggregate.
	Carrier = 0
	// Ref is a plain reference.
	Ref = 1
	// Merged marks the right hand variable of a relation built from two
	// formulas.
	Merged = 2
)

// String is a string formula: a type, a variable to coefficient map and an
// optional constant payload.
type String struct {
	typ         Type
	coeffs      map[string]int
	constant    string
	hasConstant bool
}

func New(typ Type) *String {
	return &String{typ: typ, coeffs: map[string]int{}}
}

// NewVar returns a VAR formula over name.
func NewVar(name string) *String {
	f := New(VarType)
	f.AddVariable(name, Ref)
	return f
}

// NewConstant returns a constant formula of type typ carrying v.
func NewConstant(typ Type, v string) *String {
	f := New(typ)
	f.SetConstant(v)
	return f
}

func (f *String) Clone() *String {
	return &String{
		typ:         f.typ,
		coeffs:      maps.Clone(f.coeffs),
		constant:    f.constant,
		hasConstant: f.hasConstant,
	}
}

func (f *String) Type() Type       { return f.typ }
func (f *String) SetType(typ Type) { f.typ = typ }

func (f *String) Constant() (string, bool) { return f.constant, f.hasConstant }
func (f *String) SetConstant(v string) {
	f.constant = v
	f.hasConstant = true
}

// AddVariable sets the coefficient of name, adding it if needed.
func (f *String) AddVariable(name string, coeff int) {
	f.coeffs[name] = coeff
}

// SetVariableCoefficient changes the coefficient of a variable already in
// f. It reports whether the variable was present.
func (f *String) SetVariableCoefficient(name string, coeff int) bool {
	if _, ok := f.coeffs[name]; !ok {
		return false
	}
	f.coeffs[name] = coeff
	return true
}

func (f *String) Coefficient(name string) (int, bool) {
	c, ok := f.coeffs[name]
	return c, ok
}

func (f *String) HasVariable(name string) bool {
	_, ok := f.coeffs[name]
	return ok
}

// Coefficients returns a copy of the variable to coefficient map.
func (f *String) Coefficients() map[string]int {
	return maps.Clone(f.coeffs)
}

// Variables returns the variable names in sorted order.
func (f *String) Variables() []string {
	return slices.Sorted(maps.Keys(f.coeffs))
}

func (f *String) NumVariables() int {
	return len(f.coeffs)
}

// VariableAt returns the i'th variable in sorted order.
func (f *String) VariableAt(i int) string {
	vs := f.Variables()
	if i < 0 || i >= len(vs) {
		panic(fmt.Errorf("%w: variable index %d out of range in %s", ErrInternal, i, f))
	}
	return vs[i]
}

// MergeVariables adds every variable of other missing from f with the
// carrier coefficient. Coefficients already in f are kept.
func (f *String) MergeVariables(other *String) {
	if other == nil {
		return
	}
	for name := range other.coeffs {
		if _, ok := f.coeffs[name]; !ok {
			f.coeffs[name] = Carrier
		}
	}
}

// ResetCoefficients sets every coefficient to the carrier value.
func (f *String) ResetCoefficients() {
	for name := range f.coeffs {
		f.coeffs[name] = Carrier
	}
}

// RemoveVariable drops name from f.
func (f *String) RemoveVariable(name string) {
	delete(f.coeffs, name)
}

func (f *String) String() string {
	buf := &strings.Builder{}
	buf.WriteString(f.typ.String())
	buf.WriteByte('{')
	for i, name := range f.Variables() {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(name)
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(f.coeffs[name]))
	}
	buf.WriteByte('}')
	if f.hasConstant {
		buf.WriteByte(' ')
		buf.WriteString(strconv.Quote(f.constant))
	}
	return buf.String()
}
