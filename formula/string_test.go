package formula

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		f    *String
		want string
	}{
		{NewVar("x"), "VAR{x:1}"},
		{NewConstant(StringConstantType, "a\"b"), `STRING_CONSTANT{} "a\"b"`},
		{NewConstant(RegexConstantType, "[a-z]*"), `REGEX_CONSTANT{} "[a-z]*"`},
		{New(NonRelationalType), "NONRELATIONAL{}"},
	}
	for _, tt := range tests {
		if got := tt.f.String(); got != tt.want {
			t.Errorf("got %s, want %s", got, tt.want)
		}
	}
}

func TestMergeVariables(t *testing.T) {
	f := New(EqType)
	f.AddVariable("y", Ref)
	f.AddVariable("x", Merged)
	g := New(NoneType)
	g.AddVariable("x", Carrier)
	g.AddVariable("z", Ref)
	f.MergeVariables(g)
	f.MergeVariables(nil)
	if diff := cmp.Diff(map[string]int{"x": Merged, "y": Ref, "z": Carrier}, f.Coefficients()); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"x", "y", "z"}, f.Variables()); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	if f.VariableAt(1) != "y" {
		t.Errorf("VariableAt(1) = %s", f.VariableAt(1))
	}
	f.ResetCoefficients()
	if diff := cmp.Diff(map[string]int{"x": 0, "y": 0, "z": 0}, f.Coefficients()); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestClone(t *testing.T) {
	f := NewConstant(ConcatVarConstantType, "a")
	f.AddVariable("x", Ref)
	c := f.Clone()
	c.SetVariableCoefficient("x", Merged)
	c.AddVariable("y", Ref)
	c.SetType(UnionType)
	if f.String() != `CONCAT_VAR_CONSTANT{x:1} "a"` {
		t.Errorf("original changed: %s", f)
	}
	if v, ok := c.Constant(); !ok || v != "a" {
		t.Errorf("clone constant %q %t", v, ok)
	}
	if c.SetVariableCoefficient("w", Ref) {
		t.Error("coefficient set on a missing variable")
	}
	c.RemoveVariable("x")
	if c.HasVariable("x") || c.NumVariables() != 1 {
		t.Errorf("RemoveVariable left %s", c)
	}
}

func TestRelational(t *testing.T) {
	var got []Type
	for typ := NoneType; typ <= NonRelationalType; typ++ {
		if typ.IsRelational() {
			got = append(got, typ)
		}
	}
	want := []Type{VarType, ConcatVarConstantType, EqType, NotEqType}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestVariableAtOutOfRange(t *testing.T) {
	defer func() {
		r := recover()
		if err, ok := r.(error); !ok || !errors.Is(err, ErrInternal) {
			t.Errorf("recovered %v, want ErrInternal", r)
		}
	}()
	NewVar("x").VariableAt(1)
}
