package check

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/signadot/strsolve/ast"
	"github.com/signadot/strsolve/constraint"
	"github.com/signadot/strsolve/symtab"
)

func newChecker(t *testing.T, cfg *Config, asserts ...*ast.Term) (*Checker, *ast.Script) {
	t.Helper()
	cmds := []*ast.Command{
		ast.Declare("x", ast.StringSort),
		ast.Declare("y", ast.StringSort),
		ast.Declare("z", ast.StringSort),
		ast.Declare("n", ast.IntSort),
		ast.Declare("p", ast.BoolSort),
	}
	for _, a := range asserts {
		cmds = append(cmds, ast.Assert(a))
	}
	script := ast.NewScript(cmds...)
	symbols := symtab.New()
	if err := symbols.Declare(script); err != nil {
		t.Fatal(err)
	}
	info := constraint.NewInformation()
	info.MarkComponents(script)
	return NewChecker(script, symbols, info, cfg), script
}

func TestCheck(t *testing.T) {
	x, y, z, n, p := ast.Var("x"), ast.Var("y"), ast.Var("z"), ast.Var("n"), ast.Var("p")
	let := ast.New(ast.LetKind, ast.Str("a"), ast.Eq(ast.Var("b"), x.Clone()))
	let.Bound = []string{"b"}
	tests := []struct {
		name    string
		asserts []*ast.Term
		want    Status
		model   map[string]any
	}{
		{
			name:    "equal to constant",
			asserts: []*ast.Term{ast.And(ast.Eq(x, y), ast.Eq(y.Clone(), ast.Str("a")))},
			want:    Sat,
			model:   map[string]any{"x": "a", "y": "a"},
		},
		{
			name:    "two constants",
			asserts: []*ast.Term{ast.And(ast.Eq(x.Clone(), ast.Str("a")), ast.Eq(x.Clone(), ast.Str("b")))},
			want:    Unsat,
		},
		{
			name:    "propositional conflict",
			asserts: []*ast.Term{ast.And(ast.Eq(x.Clone(), y.Clone()), ast.NotEq(y.Clone(), x.Clone()))},
			want:    Unsat,
		},
		{
			name: "transitivity",
			asserts: []*ast.Term{ast.And(
				ast.Eq(x.Clone(), y.Clone()),
				ast.Eq(y.Clone(), z),
				ast.NotEq(x.Clone(), z.Clone()))},
			want: Unsat,
		},
		{
			name: "disjunction",
			asserts: []*ast.Term{
				ast.Or(ast.Eq(x.Clone(), ast.Str("a")), ast.Eq(x.Clone(), ast.Str("b"))),
				ast.NotEq(x.Clone(), ast.Str("a")),
			},
			want:  Sat,
			model: map[string]any{"x": "b"},
		},
		{
			name: "boolean variable",
			asserts: []*ast.Term{
				ast.Not(p),
				ast.Or(p.Clone(), ast.Eq(x.Clone(), ast.Str("c"))),
			},
			want:  Sat,
			model: map[string]any{"p": false, "x": "c"},
		},
		{
			name:    "self disequality",
			asserts: []*ast.Term{ast.NotEq(x.Clone(), x.Clone())},
			want:    Unsat,
		},
		{
			name:    "fresh values are distinct",
			asserts: []*ast.Term{ast.NotEq(x.Clone(), y.Clone()), ast.NotEq(y.Clone(), ast.Str("w0"))},
			want:    Sat,
			model:   map[string]any{"x": "w1", "y": "w2"},
		},
		{
			name:    "verified opaque atom",
			asserts: []*ast.Term{ast.New(ast.NotContainsKind, x.Clone(), ast.Str("a"))},
			want:    Sat,
		},
		{
			name:    "arithmetic under equality",
			asserts: []*ast.Term{ast.And(ast.Eq(n, ast.Int(3)), ast.New(ast.GtKind, n.Clone(), ast.Int(2)))},
			want:    Sat,
			model:   map[string]any{"n": 3},
		},
		{
			name:    "unverified opaque atom",
			asserts: []*ast.Term{ast.New(ast.ContainsKind, x.Clone(), ast.Str("ab"))},
			want:    Unknown,
		},
		{
			name:    "untranslatable",
			asserts: []*ast.Term{let},
			want:    Unknown,
		},
		{
			name:    "constant comparison",
			asserts: []*ast.Term{ast.Or(ast.Eq(ast.Str("a"), ast.Str("b")), ast.Eq(ast.Int(1), ast.Str("1")))},
			want:    Unsat,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newChecker(t, nil, tt.asserts...)
			res, err := c.Check()
			if err != nil {
				t.Fatal(err)
			}
			if res.Status != tt.want {
				t.Fatalf("got %s, want %s", res.Status, tt.want)
			}
			for name, want := range tt.model {
				if got := res.Model[name]; got != want {
					t.Errorf("%s = %v, want %v", name, got, want)
				}
			}
		})
	}
}

func TestCheckIterationLimit(t *testing.T) {
	x := ast.Var("x")
	c, _ := newChecker(t, &Config{MaxIterations: 1},
		ast.And(ast.Eq(x, ast.Str("a")), ast.Eq(x.Clone(), ast.Str("b"))))
	res, err := c.Check()
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != Unknown || res.Iterations != 1 {
		t.Errorf("got %s after %d iterations", res.Status, res.Iterations)
	}
}

func TestCheckContextCancelled(t *testing.T) {
	c, _ := newChecker(t, nil, ast.Eq(ast.Var("x"), ast.Str("a")))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := c.CheckContext(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
	if res == nil || res.Status != Unknown || res.Iterations != 0 {
		t.Errorf("got %+v", res)
	}
}

func TestCheckComponents(t *testing.T) {
	x := ast.Var("x")
	or := ast.Or(ast.And(ast.Eq(x, ast.Str("a"))), ast.And(ast.Eq(x.Clone(), ast.Str("b"))))
	c, script := newChecker(t, nil, or, ast.And(ast.NotEq(x.Clone(), ast.Str("a"))))
	res, err := c.Check()
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != Sat {
		t.Fatalf("got %s", res.Status)
	}
	want := map[ast.ID]bool{
		or.ID:                     true,
		or.Args[0].ID:             false,
		or.Args[1].ID:             true,
		script.Assertions()[1].ID: true,
	}
	if diff := cmp.Diff(want, res.Components); diff != "" {
		t.Errorf("components (-want +got):\n%s", diff)
	}
}

func TestCheckNonBooleanAssertion(t *testing.T) {
	c, _ := newChecker(t, nil, ast.And(ast.Var("x")))
	if _, err := c.Check(); err == nil {
		t.Error("string identifier accepted as an assertion")
	}
}

func TestVerify(t *testing.T) {
	x, n, p := ast.Var("x"), ast.Var("n"), ast.Var("p")
	re := func(args ...*ast.Term) *ast.Term { return ast.New(ast.ReStarKind, args...) }
	tests := []struct {
		term  *ast.Term
		model map[string]any
		want  bool
	}{
		{ast.Eq(ast.New(ast.LenKind, x), ast.Int(3)), map[string]any{"x": "abc"}, true},
		{ast.New(ast.InKind, x.Clone(), re(ast.New(ast.ToRegexKind, ast.Str("a.")))), map[string]any{"x": "a.a."}, true},
		{ast.New(ast.InKind, x.Clone(), re(ast.New(ast.ToRegexKind, ast.Str("a.")))), map[string]any{"x": "a.ab"}, false},
		{ast.New(ast.NotInKind, x.Clone(), ast.Regex("[0-9]+")), map[string]any{"x": "12a"}, true},
		{ast.Eq(ast.New(ast.SubStringKind, x.Clone(), ast.Int(1), ast.Int(2)), ast.Str("bc")), map[string]any{"x": "abcd"}, true},
		{ast.Eq(ast.New(ast.SubStringKind, x.Clone(), ast.Int(3), ast.Int(5)), ast.Str("d")), map[string]any{"x": "abcd"}, true},
		{ast.Eq(ast.New(ast.CharAtKind, x.Clone(), ast.Int(9)), ast.Str("")), map[string]any{"x": "abcd"}, true},
		{ast.Eq(ast.New(ast.IndexOfKind, x.Clone(), ast.Str("b"), ast.Int(2)), ast.Int(3)), map[string]any{"x": "abab"}, true},
		{ast.Eq(ast.New(ast.IndexOfKind, x.Clone(), ast.Str("c")), ast.New(ast.UMinusKind, ast.Int(1))), map[string]any{"x": "abab"}, true},
		{ast.Eq(ast.New(ast.ReplaceKind, x.Clone(), ast.Str("a"), ast.Str("z")), ast.Str("zba")), map[string]any{"x": "aba"}, true},
		{ast.Eq(ast.New(ast.ToStringKind, n), ast.Str("12")), map[string]any{"n": 12}, true},
		{ast.Eq(ast.New(ast.ToIntKind, x.Clone()), ast.Int(-1)), map[string]any{"x": "1a"}, true},
		{ast.New(ast.NotBeginsKind, x.Clone(), ast.Str("ab")), map[string]any{"x": "abc"}, false},
		{ast.Eq(ast.Concat(x.Clone(), ast.Str("b")), ast.Str("ab")), map[string]any{"x": "a"}, true},
		{ast.New(ast.LeKind, ast.New(ast.PlusKind, n.Clone(), ast.Int(1)), ast.Int(4)), map[string]any{"n": 3}, true},
		{ast.Eq(ast.New(ast.IteKind, p, x.Clone(), ast.Str("0")), ast.Str("1")), map[string]any{"p": true, "x": "1"}, true},
		{ast.Or(), nil, false},
	}
	for _, tt := range tests {
		got, err := Verify(tt.term, tt.model)
		if err != nil {
			t.Errorf("%s: %v", tt.term, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%s under %v: got %t", tt.term, tt.model, got)
		}
	}
}

func TestVerifyErrors(t *testing.T) {
	x := ast.Var("x")
	if _, err := Verify(ast.Eq(x, ast.Str("a")), nil); !errors.Is(err, ErrNoValue) {
		t.Errorf("got %v, want ErrNoValue", err)
	}
	inter := ast.New(ast.InKind, x.Clone(), ast.New(ast.ReInterKind, ast.Regex("a"), ast.Regex("b")))
	if _, err := Verify(inter, map[string]any{"x": "a"}); !errors.Is(err, ErrUntranslatable) {
		t.Errorf("got %v, want ErrUntranslatable", err)
	}
}
