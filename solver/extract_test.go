package solver

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/signadot/strsolve/ast"
	"github.com/signadot/strsolve/constraint"
	"github.com/signadot/strsolve/formula"
	"github.com/signadot/strsolve/symtab"
	"github.com/signadot/strsolve/theory"
)

type fixture struct {
	script  *ast.Script
	symbols *symtab.Table
	info    *constraint.Information
	gen     *StringFormulaGenerator
}

var (
	stringVars = []string{"u", "v", "w", "x", "y", "z"}
	intVars    = []string{"m", "n"}
)

func newFixture(t *testing.T, cfg *Config, asserts ...*ast.Term) *fixture {
	t.Helper()
	var cmds []*ast.Command
	for _, name := range stringVars {
		cmds = append(cmds, ast.Declare(name, ast.StringSort))
	}
	for _, name := range intVars {
		cmds = append(cmds, ast.Declare(name, ast.IntSort))
	}
	for _, a := range asserts {
		cmds = append(cmds, ast.Assert(a))
	}
	f := &fixture{
		script:  ast.NewScript(cmds...),
		symbols: symtab.New(),
		info:    constraint.NewInformation(),
	}
	if err := f.symbols.Declare(f.script); err != nil {
		t.Fatal(err)
	}
	f.info.MarkComponents(f.script)
	if cfg == nil {
		cfg = &Config{}
	}
	f.gen = NewStringFormulaGenerator(f.script, f.symbols, f.info, cfg)
	return f
}

func (f *fixture) root(i int) *ast.Term {
	return f.script.Assertions()[i]
}

func (f *fixture) group(t *ast.Term) string {
	return f.symbols.VarNameForNode(t.ID, symtab.StringType)
}

func mustPanicInternal(t *testing.T, f func()) {
	t.Helper()
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrInternal) {
			t.Errorf("recovered %v, want ErrInternal", r)
		}
	}()
	f()
}

func TestEqBetweenVariables(t *testing.T) {
	eq := ast.Eq(ast.Var("x"), ast.Var("y"))
	fx := newFixture(t, nil, eq)
	fx.gen.Start()

	f := fx.gen.TermFormula(eq)
	if f == nil {
		t.Fatal("no formula for x = y")
	}
	if f.Type() != formula.EqType {
		t.Errorf("type %s, want EQ", f.Type())
	}
	if diff := cmp.Diff(map[string]int{"x": 1, "y": 2}, f.Coefficients()); diff != "" {
		t.Errorf("coefficients (-want +got):\n%s", diff)
	}
	if !fx.info.HasStringConstraint(eq) || fx.info.HasMixedConstraint(eq) {
		t.Errorf("x = y should be a string constraint and not mixed")
	}

	root := fx.root(0)
	group := fx.group(root)
	rf := fx.gen.TermFormula(root)
	if rf == nil || rf.Type() != formula.IntersectType {
		t.Fatalf("root formula %v, want INTERSECT", rf)
	}
	if diff := cmp.Diff(map[string]int{"x": 0, "y": 0}, rf.Coefficients()); diff != "" {
		t.Errorf("root coefficients (-want +got):\n%s", diff)
	}
	if got := fx.gen.TermGroupName(eq); got != group {
		t.Errorf("eq group %q, want %q", got, group)
	}
	if got := fx.gen.VariableGroupName(root, "y"); got != group {
		t.Errorf("group of y %q, want %q", got, group)
	}

	v := fx.symbols.Variable(group)
	if v == nil || v.Type != symtab.NoneType {
		t.Fatalf("group variable %v not declared", v)
	}
	val, ok := fx.symbols.Value(group)
	if !ok {
		t.Fatal("group has no value")
	}
	auto, ok := val.(*theory.StringAutomaton)
	if !ok {
		t.Fatalf("group value is %T", val)
	}
	if diff := cmp.Diff([]string{"x", "y"}, auto.Tracks); diff != "" {
		t.Errorf("tracks (-want +got):\n%s", diff)
	}
	if !auto.Accepts(map[string]string{"x": "abc", "y": "d"}) {
		t.Errorf("group automaton rejects an aligned tuple")
	}
	for _, name := range []string{"x", "y"} {
		if g, _ := fx.symbols.GroupOf(name); g != group {
			t.Errorf("symbol table group of %s = %q, want %q", name, g, group)
		}
	}
}

func TestEqualityShapes(t *testing.T) {
	tests := []struct {
		name   string
		term   func() *ast.Term
		typ    formula.Type // NoneType: no formula left on the term
		coeffs map[string]int
		cnst   string
		str    bool
		mixed  bool
	}{
		{
			name:   "var neq var",
			term:   func() *ast.Term { return ast.NotEq(ast.Var("x"), ast.Var("y")) },
			typ:    formula.NotEqType,
			coeffs: map[string]int{"x": 1, "y": 2},
			str:    true,
		},
		{
			name:   "var eq concat",
			term:   func() *ast.Term { return ast.Eq(ast.Var("x"), ast.Concat(ast.Var("y"), ast.Str("ab"))) },
			typ:    formula.EqType,
			coeffs: map[string]int{"x": 1, "y": 2},
			cnst:   "ab",
			str:    true,
		},
		{
			name:   "concat eq var",
			term:   func() *ast.Term { return ast.Eq(ast.Concat(ast.Var("y"), ast.Str("c")), ast.Var("x")) },
			typ:    formula.EqType,
			coeffs: map[string]int{"x": 1, "y": 2},
			cnst:   "c",
			str:    true,
		},
		{
			name:   "var neq concat",
			term:   func() *ast.Term { return ast.NotEq(ast.Var("x"), ast.Concat(ast.Var("y"), ast.Str("c"))) },
			typ:    formula.NotEqType,
			coeffs: map[string]int{"x": 1, "y": 2},
			cnst:   "c",
			str:    true,
		},
		{
			name:  "var eq constant",
			term:  func() *ast.Term { return ast.Eq(ast.Var("x"), ast.Str("a")) },
			mixed: true,
		},
		{
			name:  "var eq general concat",
			term:  func() *ast.Term { return ast.Eq(ast.Var("x"), ast.Concat(ast.Var("y"), ast.Var("z"))) },
			mixed: true,
		},
		{
			name:   "constants",
			term:   func() *ast.Term { return ast.Eq(ast.Str("a"), ast.Str("b")) },
			typ:    formula.NonRelationalType,
			coeffs: map[string]int{},
			cnst:   "a",
			mixed:  true,
		},
		{
			name: "integers",
			term: func() *ast.Term { return ast.Eq(ast.Var("n"), ast.Int(3)) },
		},
		{
			name: "one string side",
			term: func() *ast.Term {
				return ast.Eq(ast.New(ast.IndexOfKind, ast.Var("x"), ast.Str("a")), ast.Int(2))
			},
			mixed: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			term := tt.term()
			fx := newFixture(t, nil, term)
			fx.gen.Start()
			f := fx.gen.TermFormula(term)
			switch {
			case tt.typ == formula.NoneType && f != nil:
				t.Errorf("unexpected formula %s", f)
			case tt.typ != formula.NoneType && f == nil:
				t.Errorf("no formula, want %s", tt.typ)
			case f != nil:
				if f.Type() != tt.typ {
					t.Errorf("type %s, want %s", f.Type(), tt.typ)
				}
				if diff := cmp.Diff(tt.coeffs, f.Coefficients()); diff != "" {
					t.Errorf("coefficients (-want +got):\n%s", diff)
				}
				if c, _ := f.Constant(); c != tt.cnst {
					t.Errorf("constant %q, want %q", c, tt.cnst)
				}
			}
			if got := fx.info.HasStringConstraint(term); got != tt.str {
				t.Errorf("string constraint %t, want %t", got, tt.str)
			}
			if got := fx.info.HasMixedConstraint(term); got != tt.mixed {
				t.Errorf("mixed constraint %t, want %t", got, tt.mixed)
			}
			if got := fx.info.HasMixedConstraint(fx.root(0)); got != tt.mixed {
				t.Errorf("component mixed %t, want %t", got, tt.mixed)
			}
		})
	}
}

func TestConcat(t *testing.T) {
	tests := []struct {
		name   string
		term   *ast.Term
		typ    formula.Type
		coeffs map[string]int
		cnst   string
		mixed  bool
	}{
		{
			name:   "var constant",
			term:   ast.Concat(ast.Var("y"), ast.Str("ab")),
			typ:    formula.ConcatVarConstantType,
			coeffs: map[string]int{"y": 1},
			cnst:   "ab",
		},
		{
			name:   "constant var",
			term:   ast.Concat(ast.Str("ab"), ast.Var("y")),
			typ:    formula.NonRelationalType,
			coeffs: map[string]int{"y": 0},
			cnst:   "ab",
			mixed:  true,
		},
		{
			name:   "var var",
			term:   ast.Concat(ast.Var("x"), ast.Var("y")),
			typ:    formula.NonRelationalType,
			coeffs: map[string]int{"x": 1, "y": 0},
			mixed:  true,
		},
		{
			name:   "three operands",
			term:   ast.Concat(ast.Var("x"), ast.Str("a"), ast.Var("y")),
			typ:    formula.NonRelationalType,
			coeffs: map[string]int{"x": 1, "y": 0},
			mixed:  true,
		},
		{
			name:   "int operand",
			term:   ast.Concat(ast.Var("n"), ast.Str("a")),
			typ:    formula.NonRelationalType,
			coeffs: map[string]int{},
			cnst:   "a",
			mixed:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newFixture(t, nil)
			fx.gen.StartAt(tt.term)
			f := fx.gen.TermFormula(tt.term)
			if f == nil {
				t.Fatal("no formula")
			}
			if f.Type() != tt.typ {
				t.Errorf("type %s, want %s", f.Type(), tt.typ)
			}
			if diff := cmp.Diff(tt.coeffs, f.Coefficients()); diff != "" {
				t.Errorf("coefficients (-want +got):\n%s", diff)
			}
			if c, _ := f.Constant(); c != tt.cnst {
				t.Errorf("constant %q, want %q", c, tt.cnst)
			}
			if got := fx.info.HasMixedConstraint(tt.term); got != tt.mixed {
				t.Errorf("mixed %t, want %t", got, tt.mixed)
			}
			if got := fx.info.HasStringConstraint(tt.term); got == tt.mixed {
				t.Errorf("string constraint %t", got)
			}
			for _, a := range tt.term.Args {
				if fx.gen.TermFormula(a) != nil {
					t.Errorf("operand %s keeps its formula", a)
				}
			}
		})
	}
}

func TestGeneralConcatMakesComponentMixed(t *testing.T) {
	fx := newFixture(t, nil, ast.And(
		ast.Eq(ast.Var("z"), ast.Concat(ast.Var("x"), ast.Var("y"))),
		ast.Eq(ast.Var("u"), ast.Var("v")),
	))
	fx.gen.Start()
	root := fx.root(0)
	if !fx.info.HasMixedConstraint(root) {
		t.Errorf("component not mixed")
	}
	f := fx.gen.TermFormula(root)
	if f == nil {
		t.Fatal("component has no formula")
	}
	if diff := cmp.Diff([]string{"u", "v", "x", "y", "z"}, f.Variables()); diff != "" {
		t.Errorf("component variables (-want +got):\n%s", diff)
	}
}

func TestContainment(t *testing.T) {
	tests := []struct {
		name    string
		term    *ast.Term
		typ     formula.Type
		vars    []string
		grouped bool
	}{
		{
			name:    "contains",
			term:    ast.New(ast.ContainsKind, ast.Var("x"), ast.Var("y")),
			vars:    []string{"x", "y"},
			grouped: true,
		},
		{
			name:    "not contains",
			term:    ast.New(ast.NotContainsKind, ast.Var("x"), ast.Str("ab")),
			vars:    []string{"x"},
			grouped: true,
		},
		{
			name: "contains int",
			term: ast.New(ast.ContainsKind, ast.Var("x"), ast.Var("n")),
		},
		{
			name: "indexof",
			term: ast.New(ast.IndexOfKind, ast.Var("x"), ast.Var("y")),
			typ:  formula.NonRelationalType,
			vars: []string{"x", "y"},
		},
		{
			name: "lastindexof",
			term: ast.New(ast.LastIndexOfKind, ast.Var("x"), ast.Str("a")),
			typ:  formula.NonRelationalType,
			vars: []string{"x"},
		},
		{
			name: "charat",
			term: ast.New(ast.CharAtKind, ast.Var("x"), ast.Int(1)),
			typ:  formula.NonRelationalType,
			vars: []string{"x"},
		},
		{
			name: "substr",
			term: ast.New(ast.SubStringKind, ast.Var("x"), ast.Int(0), ast.Var("n")),
			typ:  formula.NonRelationalType,
			vars: []string{"x"},
		},
		{
			name: "substr of int",
			term: ast.New(ast.SubStringKind, ast.Var("n"), ast.Int(0), ast.Int(1)),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newFixture(t, nil, tt.term)
			fx.gen.Start()
			f := fx.gen.TermFormula(tt.term)
			switch {
			case tt.typ == formula.NoneType && f != nil:
				t.Errorf("unexpected formula %s", f)
			case tt.typ != formula.NoneType && f == nil:
				t.Fatalf("no formula")
			case f != nil:
				if f.Type() != tt.typ {
					t.Errorf("type %s, want %s", f.Type(), tt.typ)
				}
				if diff := cmp.Diff(tt.vars, f.Variables()); diff != "" {
					t.Errorf("variables (-want +got):\n%s", diff)
				}
			}
			if got := fx.info.HasMixedConstraint(tt.term); got != tt.grouped {
				t.Errorf("mixed %t, want %t", got, tt.grouped)
			}
			group := fx.group(fx.root(0))
			if !tt.grouped {
				if got := fx.gen.GroupFormula(group); got != nil {
					t.Errorf("group formula %s, want none", got)
				}
				return
			}
			for _, v := range tt.vars {
				if got := fx.gen.VariableGroupName(fx.root(0), v); got != group {
					t.Errorf("group of %s = %q, want %q", v, got, group)
				}
			}
		})
	}
}

func TestDisjunction(t *testing.T) {
	arith := ast.Or(
		ast.New(ast.GtKind, ast.Var("n"), ast.Int(1)),
		ast.New(ast.LtKind, ast.Var("n"), ast.Int(0)),
	)
	str := ast.Or(
		ast.Eq(ast.Var("x"), ast.Var("y")),
		ast.New(ast.GtKind, ast.Var("m"), ast.Int(1)),
	)
	fx := newFixture(t, nil, arith, str)
	fx.gen.Start()
	if f := fx.gen.TermFormula(arith); f != nil {
		t.Errorf("arithmetic disjunction has formula %s", f)
	}
	if fx.info.HasStringConstraint(arith) {
		t.Errorf("arithmetic disjunction marked as string constraint")
	}
	f := fx.gen.TermFormula(str)
	if f == nil {
		t.Fatal("string disjunction has no formula")
	}
	if f.Type() != formula.UnionType {
		t.Errorf("type %s, want UNION", f.Type())
	}
	if diff := cmp.Diff(map[string]int{"x": 0, "y": 0}, f.Coefficients()); diff != "" {
		t.Errorf("coefficients (-want +got):\n%s", diff)
	}
	if got, want := fx.gen.TermGroupName(str), fx.group(str); got != want {
		t.Errorf("group %q, want %q", got, want)
	}
}

func TestNestedComponentsShareGroup(t *testing.T) {
	branch := ast.And(ast.Eq(ast.Var("x"), ast.Var("y")), ast.Eq(ast.Var("z"), ast.Str("a")))
	or := ast.Or(branch, ast.Eq(ast.Var("x"), ast.Var("w")))
	fx := newFixture(t, nil, ast.And(ast.Eq(ast.Var("u"), ast.Var("v")), or))
	fx.gen.Start()
	root := fx.root(0)
	group := fx.group(root)
	for _, term := range []*ast.Term{root, or, branch} {
		if !fx.info.IsComponent(term) {
			t.Errorf("%s is not a component", term)
		}
		if got := fx.gen.TermGroupName(term); got != group {
			t.Errorf("%s: group %q, want %q", term, got, group)
		}
	}
	if got := fx.gen.TermFormula(or).Type(); got != formula.UnionType {
		t.Errorf("or formula %s", got)
	}
	if got := fx.gen.TermFormula(branch).Type(); got != formula.IntersectType {
		t.Errorf("branch formula %s", got)
	}
	if diff := cmp.Diff([]string{"u", "v", "w", "x", "y", "z"}, fx.gen.TermFormula(root).Variables()); diff != "" {
		t.Errorf("root variables (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{group}, fx.gen.Groups()); diff != "" {
		t.Errorf("groups (-want +got):\n%s", diff)
	}
}

func TestNotHasNoFormula(t *testing.T) {
	eq := ast.Eq(ast.Var("x"), ast.Var("y"))
	not := ast.Not(eq)
	fx := newFixture(t, nil, not)
	fx.gen.Start()
	for _, term := range []*ast.Term{not, eq, fx.root(0)} {
		if f := fx.gen.TermFormula(term); f != nil {
			t.Errorf("%s has formula %s", term, f)
		}
	}
	if len(fx.gen.Groups()) != 0 {
		t.Errorf("groups %v, want none", fx.gen.Groups())
	}
}

func TestSeparateComponents(t *testing.T) {
	a := ast.Eq(ast.Var("x"), ast.Var("y"))
	b := ast.Eq(ast.Var("z"), ast.Var("w"))
	fx := newFixture(t, nil, a, b)
	fx.gen.Start()
	ga, gb := fx.gen.TermGroupName(a), fx.gen.TermGroupName(b)
	if ga == "" || ga == gb {
		t.Errorf("components share group %q", ga)
	}
	if got, _ := fx.symbols.GroupOf("w"); got != gb {
		t.Errorf("group of w %q, want %q", got, gb)
	}
}

func TestDoubleSetPanics(t *testing.T) {
	fx := newFixture(t, nil)
	x := ast.Var("x")
	fx.gen.StartAt(x)
	mustPanicInternal(t, func() { fx.gen.StartAt(x) })

	fx.gen.ClearTermFormula(x)
	fx.gen.StartAt(x)
	if fx.gen.TermFormula(x) == nil {
		t.Errorf("formula not recomputed after clear")
	}
	fx.gen.ClearTermFormulas()
	if fx.gen.TermFormula(x) != nil {
		t.Errorf("formula survived ClearTermFormulas")
	}
}

func TestVisitCoversAllKinds(t *testing.T) {
	fx := newFixture(t, nil)
	for _, k := range ast.Kinds() {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("%s: %v", k, r)
				}
			}()
			fx.gen.visit(&ast.Term{Kind: k}, false)
		}()
	}
	mustPanicInternal(t, func() {
		fx.gen.visit(&ast.Term{Kind: ast.Kind(len(ast.Kinds()))}, false)
	})
}

func TestPipeline(t *testing.T) {
	fx := newFixture(t, nil, ast.And(
		ast.Eq(ast.Var("x"), ast.Var("y")),
		ast.Eq(ast.Var("x"), ast.Concat(ast.Var("z"), ast.Str("a"))),
	))
	rules := GenerateSubstitutions(fx.script, fx.symbols)
	runner := NewSubstitutionRunner(fx.script, fx.symbols, rules, &Config{})
	if err := runner.Start(); err != nil {
		t.Fatal(err)
	}
	fx.info.MarkComponents(fx.script)
	fx.gen.Start()

	root := fx.root(0)
	if got, want := root.String(), `(and (= y (str.++ z "a")))`; got != want {
		t.Errorf("substituted %s, want %s", got, want)
	}
	f := fx.gen.TermFormula(root.Args[0])
	if f == nil {
		t.Fatal("no formula")
	}
	if diff := cmp.Diff(map[string]int{"y": 1, "z": 2}, f.Coefficients()); diff != "" {
		t.Errorf("coefficients (-want +got):\n%s", diff)
	}
	if c, _ := f.Constant(); c != "a" {
		t.Errorf("constant %q", c)
	}
	if got := fx.symbols.Representative("x"); got != "y" {
		t.Errorf("representative of x %q, want y", got)
	}
}

func TestChainedEqualityPanics(t *testing.T) {
	fx := newFixture(t, nil)
	for _, k := range []ast.Kind{ast.EqKind, ast.NotEqKind} {
		eq := ast.New(k, ast.Var("x"), ast.Var("y"), ast.Var("z"))
		mustPanicInternal(t, func() { fx.gen.visit(eq, true) })
	}
}
