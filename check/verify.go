package check

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/signadot/strsolve/ast"
)

// Verify evaluates the boolean term t under model. Identifiers and
// constants are bound in the expression environment; the string
// functions follow SMT-LIB semantics.
func Verify(t *ast.Term, model map[string]any) (bool, error) {
	src, env, err := Expression(t, model)
	if err != nil {
		return false, err
	}
	opts := append(functions(), expr.Env(env), expr.AsBool())
	program, err := expr.Compile(src, opts...)
	if err != nil {
		return false, fmt.Errorf("compile %q: %w", src, err)
	}
	res, err := vm.Run(program, env)
	if err != nil {
		return false, fmt.Errorf("run %q: %w", src, err)
	}
	return res.(bool), nil
}

// Expression translates t into an expr program and its environment.
func Expression(t *ast.Term, model map[string]any) (string, map[string]any, error) {
	tr := &translator{env: map[string]any{}, names: map[string]string{}, model: model}
	tr.write(t)
	if tr.err != nil {
		return "", nil, tr.err
	}
	return tr.buf.String(), tr.env, nil
}

type translator struct {
	buf   strings.Builder
	env   map[string]any
	names map[string]string
	model map[string]any
	n     int
	err   error
}

func (tr *translator) bind(v any) string {
	name := "c" + strconv.Itoa(tr.n)
	tr.n++
	tr.env[name] = v
	return name
}

var infix = map[ast.Kind]string{
	ast.AndKind:    " && ",
	ast.OrKind:     " || ",
	ast.EqKind:     " == ",
	ast.NotEqKind:  " != ",
	ast.GtKind:     " > ",
	ast.GeKind:     " >= ",
	ast.LtKind:     " < ",
	ast.LeKind:     " <= ",
	ast.PlusKind:   " + ",
	ast.MinusKind:  " - ",
	ast.TimesKind:  " * ",
	ast.ConcatKind: " + ",

	ast.ContainsKind: " contains ",
	ast.BeginsKind:   " startsWith ",
	ast.EndsKind:     " endsWith ",
}

var negated = map[ast.Kind]ast.Kind{
	ast.NotContainsKind: ast.ContainsKind,
	ast.NotBeginsKind:   ast.BeginsKind,
	ast.NotEndsKind:     ast.EndsKind,
	ast.NotInKind:       ast.InKind,
}

var calls = map[ast.Kind]string{
	ast.LenKind:         "strlen",
	ast.IndexOfKind:     "indexof",
	ast.LastIndexOfKind: "lastindexof",
	ast.CharAtKind:      "charat",
	ast.SubStringKind:   "substr",
	ast.ToUpperKind:     "upper",
	ast.ToLowerKind:     "lower",
	ast.TrimKind:        "trim",
	ast.ToStringKind:    "itos",
	ast.ToIntKind:       "stoi",
	ast.ReplaceKind:     "strreplace",
	ast.CountKind:       "strcount",
}

func (tr *translator) write(t *ast.Term) {
	if tr.err != nil {
		return
	}
	if sep, ok := infix[t.Kind]; ok {
		tr.buf.WriteByte('(')
		for i, a := range t.Args {
			if i > 0 {
				tr.buf.WriteString(sep)
			}
			tr.write(a)
		}
		if len(t.Args) == 0 {
			tr.buf.WriteString(strconv.FormatBool(t.Kind == ast.AndKind))
		}
		tr.buf.WriteByte(')')
		return
	}
	if fn, ok := calls[t.Kind]; ok {
		tr.buf.WriteString(fn)
		tr.buf.WriteByte('(')
		for i, a := range t.Args {
			if i > 0 {
				tr.buf.WriteString(", ")
			}
			tr.write(a)
		}
		if t.Kind == ast.IndexOfKind && len(t.Args) == 2 {
			tr.buf.WriteString(", 0")
		}
		tr.buf.WriteByte(')')
		return
	}
	if k, ok := negated[t.Kind]; ok {
		tr.buf.WriteString("!")
		pos := *t
		pos.Kind = k
		tr.write(&pos)
		return
	}
	switch t.Kind {
	case ast.NotKind:
		tr.buf.WriteString("!")
		tr.write(t.Args[0])
	case ast.UMinusKind:
		tr.buf.WriteString("(-")
		tr.write(t.Args[0])
		tr.buf.WriteByte(')')
	case ast.IteKind:
		tr.buf.WriteByte('(')
		tr.write(t.Args[0])
		tr.buf.WriteString(" ? ")
		tr.write(t.Args[1])
		tr.buf.WriteString(" : ")
		tr.write(t.Args[2])
		tr.buf.WriteByte(')')
	case ast.InKind:
		re, err := regexSource(t.Args[1])
		if err != nil {
			tr.err = err
			return
		}
		if _, err := regexp.Compile(re); err != nil {
			tr.err = fmt.Errorf("%w: %s: %w", ErrUntranslatable, t, err)
			return
		}
		tr.buf.WriteByte('(')
		tr.write(t.Args[0])
		tr.buf.WriteString(" matches ")
		tr.buf.WriteString(tr.bind("^" + re + "$"))
		tr.buf.WriteByte(')')
	case ast.QualIdKind:
		name, ok := tr.names[t.Name]
		if !ok {
			v, ok := tr.model[t.Name]
			if !ok {
				tr.err = fmt.Errorf("%w for %s", ErrNoValue, t.Name)
				return
			}
			name = tr.bind(v)
			tr.names[t.Name] = name
		}
		tr.buf.WriteString(name)
	case ast.ConstKind:
		switch t.ValueType {
		case ast.BoolPrimitive:
			tr.buf.WriteString(strconv.FormatBool(t.IsTrue()))
		case ast.RegexPrimitive:
			tr.err = fmt.Errorf("%w: regex %s outside membership", ErrUntranslatable, t)
		default:
			tr.buf.WriteString(tr.bind(constValue(t)))
		}
	default:
		tr.err = fmt.Errorf("%w: %s", ErrUntranslatable, t)
	}
}

// regexSource returns a Go regular expression for a regex term.
func regexSource(t *ast.Term) (string, error) {
	group := func(args []*ast.Term, sep string) (string, error) {
		parts := make([]string, 0, len(args))
		for _, a := range args {
			p, err := regexSource(a)
			if err != nil {
				return "", err
			}
			parts = append(parts, p)
		}
		return "(?:" + strings.Join(parts, sep) + ")", nil
	}
	switch t.Kind {
	case ast.ConstKind:
		if t.ValueType == ast.RegexPrimitive {
			return "(?:" + t.Value + ")", nil
		}
	case ast.ToRegexKind:
		if a := t.Args[0]; a.IsConst(ast.StringPrimitive) {
			return regexp.QuoteMeta(a.Value), nil
		}
	case ast.ReConcatKind:
		return group(t.Args, "")
	case ast.ReUnionKind:
		return group(t.Args, "|")
	case ast.ReStarKind, ast.RePlusKind, ast.ReOptKind:
		s, err := group(t.Args, "")
		if err != nil {
			return "", err
		}
		return s + map[ast.Kind]string{ast.ReStarKind: "*", ast.RePlusKind: "+", ast.ReOptKind: "?"}[t.Kind], nil
	}
	return "", fmt.Errorf("%w: regex %s", ErrUntranslatable, t)
}

func functions() []expr.Option {
	return []expr.Option{
		expr.Function("strlen", func(params ...any) (any, error) {
			return len(params[0].(string)), nil
		},
			new(func(string) int)),
		expr.Function("indexof", func(params ...any) (any, error) {
			return indexOf(params[0].(string), params[1].(string), params[2].(int)), nil
		},
			new(func(string, string, int) int)),
		expr.Function("lastindexof", func(params ...any) (any, error) {
			return strings.LastIndex(params[0].(string), params[1].(string)), nil
		},
			new(func(string, string) int)),
		expr.Function("charat", func(params ...any) (any, error) {
			return subString(params[0].(string), params[1].(int), 1), nil
		},
			new(func(string, int) string)),
		expr.Function("substr", func(params ...any) (any, error) {
			return subString(params[0].(string), params[1].(int), params[2].(int)), nil
		},
			new(func(string, int, int) string)),
		expr.Function("itos", func(params ...any) (any, error) {
			n := params[0].(int)
			if n < 0 {
				return "", nil
			}
			return strconv.Itoa(n), nil
		},
			new(func(int) string)),
		expr.Function("stoi", func(params ...any) (any, error) {
			return stringToInt(params[0].(string)), nil
		},
			new(func(string) int)),
		expr.Function("strreplace", func(params ...any) (any, error) {
			s, from, to := params[0].(string), params[1].(string), params[2].(string)
			if from == "" {
				return to + s, nil
			}
			return strings.Replace(s, from, to, 1), nil
		},
			new(func(string, string, string) string)),
		expr.Function("strcount", func(params ...any) (any, error) {
			if params[1].(string) == "" {
				return 0, nil
			}
			return strings.Count(params[0].(string), params[1].(string)), nil
		},
			new(func(string, string) int)),
	}
}

func indexOf(s, t string, i int) int {
	if i < 0 || i > len(s) {
		return -1
	}
	j := strings.Index(s[i:], t)
	if j < 0 {
		return -1
	}
	return i + j
}

func subString(s string, i, n int) string {
	if i < 0 || n <= 0 || i >= len(s) {
		return ""
	}
	return s[i:min(i+n, len(s))]
}

func stringToInt(s string) int {
	if s == "" {
		return -1
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return -1
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return -1
	}
	return n
}
