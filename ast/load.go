package ast

import (
	"fmt"
	"math"
	"strconv"

	"github.com/goccy/go-yaml"
)

// document is the YAML (or JSON) form of a script:
//
//	declare:
//	  x: String
//	  n: Int
//	assert:
//	  - [and, [=, x, [str.++, y, {str: "a"}]], [>, n, 3]]
//	check-sat: true
//
// Terms are sequences whose head is an operator name. Mappings with a
// single key str, re, int or bool are constants; integers and booleans may
// also be written bare. Any other scalar is an identifier. Operators that
// start with a YAML indicator ("*", "!=", ">", "-") must be quoted.
type document struct {
	Declare  yaml.MapSlice `yaml:"declare"`
	Assert   []any         `yaml:"assert"`
	CheckSat bool          `yaml:"check-sat"`
	GetModel bool          `yaml:"get-model"`
}

// Load parses a script document.
func Load(data []byte) (*Script, error) {
	doc := &document{}
	if err := yaml.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	script := NewScript()
	for _, item := range doc.Declare {
		name, ok := item.Key.(string)
		if !ok {
			return nil, fmt.Errorf("%w: declaration key %v is not a name", ErrLoad, item.Key)
		}
		sortName, ok := item.Value.(string)
		if !ok {
			return nil, fmt.Errorf("%w: sort of %s is not a name", ErrLoad, name)
		}
		var sort Sort
		if err := sort.UnmarshalText([]byte(sortName)); err != nil {
			return nil, err
		}
		script.Commands = append(script.Commands, Declare(name, sort))
	}
	for i, v := range doc.Assert {
		t, err := loadTerm(v)
		if err != nil {
			return nil, fmt.Errorf("assertion %d: %w", i, err)
		}
		script.Commands = append(script.Commands, Assert(t))
	}
	if doc.CheckSat {
		script.Commands = append(script.Commands, &Command{Kind: CheckSatCommand})
	}
	if doc.GetModel {
		script.Commands = append(script.Commands, &Command{Kind: GetModelCommand})
	}
	return script, nil
}

func loadTerm(v any) (*Term, error) {
	switch x := v.(type) {
	case string:
		return Var(x), nil
	case bool:
		return Bool(x), nil
	case int:
		return Int(int64(x)), nil
	case int64:
		return Int(x), nil
	case uint64:
		if x > math.MaxInt64 {
			return nil, fmt.Errorf("%w: integer %d out of range", ErrLoad, x)
		}
		return Int(int64(x)), nil
	case float64:
		if x != math.Trunc(x) {
			return nil, fmt.Errorf("%w: non-integer constant %v", ErrLoad, x)
		}
		return Int(int64(x)), nil
	case map[string]any:
		return loadConstant(x)
	case []any:
		return loadApplication(x)
	case nil:
		return nil, fmt.Errorf("%w: empty term", ErrLoad)
	default:
		return nil, fmt.Errorf("%w: unexpected %T in term", ErrLoad, v)
	}
}

func loadConstant(m map[string]any) (*Term, error) {
	if len(m) != 1 {
		return nil, fmt.Errorf("%w: constant must have exactly one key, got %d", ErrLoad, len(m))
	}
	for k, v := range m {
		switch k {
		case "str":
			return Str(fmt.Sprint(v)), nil
		case "re":
			return Regex(fmt.Sprint(v)), nil
		case "int":
			i, err := strconv.ParseInt(fmt.Sprint(v), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrLoad, err)
			}
			return Int(i), nil
		case "bool":
			b, err := strconv.ParseBool(fmt.Sprint(v))
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrLoad, err)
			}
			return Bool(b), nil
		default:
			return nil, fmt.Errorf("%w: unknown constant type %q", ErrLoad, k)
		}
	}
	panic("unreachable")
}

func loadApplication(xs []any) (*Term, error) {
	if len(xs) == 0 {
		return nil, fmt.Errorf("%w: empty application", ErrLoad)
	}
	head, ok := xs[0].(string)
	if !ok {
		return nil, fmt.Errorf("%w: operator must be a name, got %v", ErrLoad, xs[0])
	}
	kind, err := ParseOperator(head, len(xs)-1)
	if err != nil {
		return nil, err
	}
	switch kind {
	case LetKind:
		return loadLet(xs)
	case ExistsKind, ForAllKind:
		return loadQuantifier(kind, xs)
	}
	if err := checkArity(kind, len(xs)-1); err != nil {
		return nil, fmt.Errorf("%s: %w", head, err)
	}
	t := New(kind)
	for _, x := range xs[1:] {
		arg, err := loadTerm(x)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", head, err)
		}
		t.Append(arg)
	}
	if kind == TimesKind && !isLinear(t) {
		return nil, fmt.Errorf("%w: non-linear multiplication %s", ErrUnsupported, t)
	}
	if (kind == EqKind || kind == NotEqKind) && len(t.Args) > 2 {
		return pairwise(t), nil
	}
	return t, nil
}

// pairwise expands a chained equality into the conjunction of the
// equalities of neighbouring arguments, and a chained disequality into the
// conjunction of the disequalities of all pairs.
func pairwise(t *Term) *Term {
	args := t.Args
	res := New(AndKind)
	for i := range args {
		for j := i + 1; j < len(args); j++ {
			if t.Kind == EqKind && j > i+1 {
				break
			}
			res.Append(New(t.Kind, args[i].Clone(), args[j].Clone()))
		}
	}
	return res
}

// isLinear reports whether at most one factor of a product is not an
// integer constant.
func isLinear(t *Term) bool {
	n := 0
	for _, a := range t.Args {
		if !a.IsConst(IntPrimitive) {
			n++
		}
	}
	return n <= 1
}

func loadLet(xs []any) (*Term, error) {
	if len(xs) != 3 {
		return nil, fmt.Errorf("%w: let expects bindings and a body", ErrLoad)
	}
	bindings, ok := xs[1].([]any)
	if !ok {
		return nil, fmt.Errorf("%w: let bindings must be a list", ErrLoad)
	}
	t := New(LetKind)
	for _, b := range bindings {
		pair, ok := b.([]any)
		if !ok || len(pair) != 2 {
			return nil, fmt.Errorf("%w: let binding must be [name, term]", ErrLoad)
		}
		name, ok := pair[0].(string)
		if !ok {
			return nil, fmt.Errorf("%w: let binding name must be a name", ErrLoad)
		}
		val, err := loadTerm(pair[1])
		if err != nil {
			return nil, fmt.Errorf("let %s: %w", name, err)
		}
		t.Bound = append(t.Bound, name)
		t.Append(val)
	}
	body, err := loadTerm(xs[2])
	if err != nil {
		return nil, fmt.Errorf("let: %w", err)
	}
	t.Append(body)
	return t, nil
}

func loadQuantifier(kind Kind, xs []any) (*Term, error) {
	if len(xs) != 3 {
		return nil, fmt.Errorf("%w: %s expects variables and a body", ErrLoad, kind)
	}
	vars, ok := xs[1].([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s variables must be a list", ErrLoad, kind)
	}
	t := New(kind)
	for _, v := range vars {
		pair, ok := v.([]any)
		if !ok || len(pair) != 2 {
			return nil, fmt.Errorf("%w: sorted variable must be [name, sort]", ErrLoad)
		}
		name, _ := pair[0].(string)
		sortName, _ := pair[1].(string)
		var sort Sort
		if err := sort.UnmarshalText([]byte(sortName)); err != nil {
			return nil, err
		}
		t.Bound = append(t.Bound, name)
		t.Sorts = append(t.Sorts, sort)
	}
	body, err := loadTerm(xs[2])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", kind, err)
	}
	t.Append(body)
	return t, nil
}
