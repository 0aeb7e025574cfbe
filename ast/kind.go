package ast

import "fmt"

// Kind discriminates the closed set of term shapes.
type Kind int

const (
	AndKind Kind = iota
	OrKind
	NotKind
	UMinusKind
	MinusKind
	PlusKind
	TimesKind
	EqKind
	NotEqKind
	GtKind
	GeKind
	LtKind
	LeKind
	ConcatKind
	InKind
	NotInKind
	LenKind
	ContainsKind
	NotContainsKind
	BeginsKind
	NotBeginsKind
	EndsKind
	NotEndsKind
	IndexOfKind
	LastIndexOfKind
	CharAtKind
	SubStringKind
	ToUpperKind
	ToLowerKind
	TrimKind
	ToStringKind
	ToIntKind
	ReplaceKind
	CountKind
	IteKind
	ReConcatKind
	ReUnionKind
	ReInterKind
	ReStarKind
	RePlusKind
	ReOptKind
	ToRegexKind
	LetKind
	ExistsKind
	ForAllKind
	QualIdKind
	ConstKind

	numKinds
)

var kindNames = [numKinds]string{
	AndKind:         "and",
	OrKind:          "or",
	NotKind:         "not",
	UMinusKind:      "-",
	MinusKind:       "-",
	PlusKind:        "+",
	TimesKind:       "*",
	EqKind:          "=",
	NotEqKind:       "!=",
	GtKind:          ">",
	GeKind:          ">=",
	LtKind:          "<",
	LeKind:          "<=",
	ConcatKind:      "str.++",
	InKind:          "str.in.re",
	NotInKind:       "str.notin.re",
	LenKind:         "str.len",
	ContainsKind:    "str.contains",
	NotContainsKind: "str.notcontains",
	BeginsKind:      "str.begins",
	NotBeginsKind:   "str.notbegins",
	EndsKind:        "str.ends",
	NotEndsKind:     "str.notends",
	IndexOfKind:     "str.indexof",
	LastIndexOfKind: "str.lastindexof",
	CharAtKind:      "str.at",
	SubStringKind:   "str.substr",
	ToUpperKind:     "str.toupper",
	ToLowerKind:     "str.tolower",
	TrimKind:        "str.trim",
	ToStringKind:    "int.to.str",
	ToIntKind:       "str.to.int",
	ReplaceKind:     "str.replace",
	CountKind:       "str.count",
	IteKind:         "ite",
	ReConcatKind:    "re.++",
	ReUnionKind:     "re.union",
	ReInterKind:     "re.inter",
	ReStarKind:      "re.*",
	RePlusKind:      "re.+",
	ReOptKind:       "re.opt",
	ToRegexKind:     "str.to.re",
	LetKind:         "let",
	ExistsKind:      "exists",
	ForAllKind:      "forall",
	QualIdKind:      "<identifier>",
	ConstKind:       "<constant>",
}

func (k Kind) String() string {
	if k < 0 || k >= numKinds {
		return "<unknown kind>"
	}
	return kindNames[k]
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Kinds returns every kind in declaration order.
func Kinds() []Kind {
	res := make([]Kind, 0, numKinds)
	for k := AndKind; k < numKinds; k++ {
		res = append(res, k)
	}
	return res
}

// IsConnective reports whether k is a boolean conjunction or disjunction.
func (k Kind) IsConnective() bool {
	return k == AndKind || k == OrKind
}

// operator names accepted by the loader, including a few SMT-LIB 2.6 aliases.
var operators = map[string]Kind{
	"and":             AndKind,
	"or":              OrKind,
	"not":             NotKind,
	"+":               PlusKind,
	"*":               TimesKind,
	"=":               EqKind,
	"!=":              NotEqKind,
	"distinct":        NotEqKind,
	">":               GtKind,
	">=":              GeKind,
	"<":               LtKind,
	"<=":              LeKind,
	"str.++":          ConcatKind,
	"str.in.re":       InKind,
	"str.in_re":       InKind,
	"str.notin.re":    NotInKind,
	"str.len":         LenKind,
	"str.contains":    ContainsKind,
	"str.notcontains": NotContainsKind,
	"str.begins":      BeginsKind,
	"str.notbegins":   NotBeginsKind,
	"str.ends":        EndsKind,
	"str.notends":     NotEndsKind,
	"str.indexof":     IndexOfKind,
	"str.lastindexof": LastIndexOfKind,
	"str.at":          CharAtKind,
	"str.substr":      SubStringKind,
	"str.toupper":     ToUpperKind,
	"str.tolower":     ToLowerKind,
	"str.trim":        TrimKind,
	"int.to.str":      ToStringKind,
	"str.from_int":    ToStringKind,
	"str.to.int":      ToIntKind,
	"str.to_int":      ToIntKind,
	"str.replace":     ReplaceKind,
	"str.count":       CountKind,
	"ite":             IteKind,
	"re.++":           ReConcatKind,
	"re.union":        ReUnionKind,
	"re.inter":        ReInterKind,
	"re.*":            ReStarKind,
	"re.+":            RePlusKind,
	"re.opt":          ReOptKind,
	"str.to.re":       ToRegexKind,
	"str.to_re":       ToRegexKind,
	"let":             LetKind,
	"exists":          ExistsKind,
	"forall":          ForAllKind,
}

// arities bounds the argument count of applications; a max of -1 is
// unbounded. Binders are checked by their own loaders.
var arities = map[Kind][2]int{
	AndKind:         {1, -1},
	OrKind:          {1, -1},
	NotKind:         {1, 1},
	UMinusKind:      {1, 1},
	MinusKind:       {2, -1},
	PlusKind:        {2, -1},
	TimesKind:       {2, -1},
	EqKind:          {2, -1},
	NotEqKind:       {2, -1},
	GtKind:          {2, 2},
	GeKind:          {2, 2},
	LtKind:          {2, 2},
	LeKind:          {2, 2},
	ConcatKind:      {2, -1},
	InKind:          {2, 2},
	NotInKind:       {2, 2},
	LenKind:         {1, 1},
	ContainsKind:    {2, 2},
	NotContainsKind: {2, 2},
	BeginsKind:      {2, 2},
	NotBeginsKind:   {2, 2},
	EndsKind:        {2, 2},
	NotEndsKind:     {2, 2},
	IndexOfKind:     {2, 3},
	LastIndexOfKind: {2, 2},
	CharAtKind:      {2, 2},
	SubStringKind:   {3, 3},
	ToUpperKind:     {1, 1},
	ToLowerKind:     {1, 1},
	TrimKind:        {1, 1},
	ToStringKind:    {1, 1},
	ToIntKind:       {1, 1},
	ReplaceKind:     {3, 3},
	CountKind:       {2, 2},
	IteKind:         {3, 3},
	ReConcatKind:    {2, -1},
	ReUnionKind:     {2, -1},
	ReInterKind:     {2, -1},
	ReStarKind:      {1, 1},
	RePlusKind:      {1, 1},
	ReOptKind:       {1, 1},
	ToRegexKind:     {1, 1},
}

// checkArity reports an ErrLoad error if an application of k to nargs
// arguments is malformed.
func checkArity(k Kind, nargs int) error {
	a, ok := arities[k]
	if !ok {
		return nil
	}
	switch {
	case nargs < a[0]:
		return fmt.Errorf("%w: %s expects at least %d arguments, got %d", ErrLoad, k, a[0], nargs)
	case a[1] >= 0 && nargs > a[1]:
		return fmt.Errorf("%w: %s expects at most %d arguments, got %d", ErrLoad, k, a[1], nargs)
	}
	return nil
}

// ParseOperator maps an operator name and its argument count to a kind.
// "-" is unary minus with one argument and subtraction otherwise.
func ParseOperator(name string, nargs int) (Kind, error) {
	if name == "-" {
		if nargs == 1 {
			return UMinusKind, nil
		}
		return MinusKind, nil
	}
	k, ok := operators[name]
	if !ok {
		return 0, fmt.Errorf("%w: unknown operator %q", ErrLoad, name)
	}
	return k, nil
}

// PrimitiveType is the type of a constant payload.
type PrimitiveType int

const (
	BoolPrimitive PrimitiveType = iota
	IntPrimitive
	StringPrimitive
	RegexPrimitive
)

func (p PrimitiveType) String() string {
	s, ok := map[PrimitiveType]string{
		BoolPrimitive:   "Bool",
		IntPrimitive:    "Int",
		StringPrimitive: "String",
		RegexPrimitive:  "Regex",
	}[p]
	if ok {
		return s
	}
	return "<unknown primitive>"
}

// Sort is the declared sort of a function symbol or bound variable.
type Sort int

const (
	BoolSort Sort = iota
	IntSort
	StringSort
)

func (s Sort) String() string {
	switch s {
	case BoolSort:
		return "Bool"
	case IntSort:
		return "Int"
	case StringSort:
		return "String"
	default:
		return "<unknown sort>"
	}
}

func (s *Sort) UnmarshalText(d []byte) error {
	ss, ok := map[string]Sort{
		"Bool":   BoolSort,
		"Int":    IntSort,
		"String": StringSort,
	}[string(d)]
	if !ok {
		return fmt.Errorf("%w: unrecognized sort %q", ErrLoad, d)
	}
	*s = ss
	return nil
}
