package solver

import (
	"fmt"
	"log/slog"

	"github.com/signadot/strsolve/ast"
	"github.com/signadot/strsolve/debug"
)

// SubstitutionTable maps a scope key to the variable rewrite rules valid
// in that scope.
type SubstitutionTable map[ast.ID]map[string]*ast.Term

// SubstitutionRunner rewrites identifiers according to a SubstitutionTable
// and then folds the structure the rewriting leaves behind.
type SubstitutionRunner struct {
	script  *ast.Script
	symbols SymbolTable
	rules   SubstitutionTable
	log     *slog.Logger
}

func NewSubstitutionRunner(script *ast.Script, symbols SymbolTable, rules SubstitutionTable, cfg *Config) *SubstitutionRunner {
	return &SubstitutionRunner{
		script:  script,
		symbols: symbols,
		rules:   rules,
		log:     cfg.logger(),
	}
}

// HasRules reports whether some scope has a rule.
func (r *SubstitutionRunner) HasRules() bool {
	for _, rs := range r.rules {
		if len(rs) != 0 {
			return true
		}
	}
	return false
}

// Start applies the rules. Without rules the script is left untouched.
func (r *SubstitutionRunner) Start() error {
	if !r.HasRules() {
		return nil
	}
	r.symbols.PushScope(r.script.ID)
	for _, c := range r.script.Commands {
		if c.Kind != ast.AssertCommand {
			continue
		}
		if repl := r.substitution(c.Term); repl != nil {
			c.Term = repl
		}
		if err := r.visit(c.Term); err != nil {
			r.symbols.PopScope()
			return err
		}
	}
	r.symbols.PopScope()
	NewOptimizer(r.script).Start()
	return nil
}

func (r *SubstitutionRunner) visit(t *ast.Term) error {
	switch t.Kind {
	case ast.AndKind:
		for i := range t.Args {
			r.substituteArg(t, i)
			if err := r.visit(t.Args[i]); err != nil {
				return err
			}
		}
		return nil
	case ast.OrKind:
		for i := range t.Args {
			r.substituteArg(t, i)
			r.symbols.PushScope(t.Args[i].ID)
			err := r.visit(t.Args[i])
			r.symbols.PopScope()
			if err != nil {
				return err
			}
		}
		return nil
	case ast.LetKind:
		return fmt.Errorf("%w: substitution under %s", ErrUnsupported, t)

	case ast.NotKind, ast.UMinusKind, ast.MinusKind, ast.PlusKind, ast.TimesKind,
		ast.EqKind, ast.NotEqKind, ast.GtKind, ast.GeKind, ast.LtKind, ast.LeKind,
		ast.ConcatKind, ast.InKind, ast.NotInKind, ast.LenKind,
		ast.ContainsKind, ast.NotContainsKind, ast.BeginsKind, ast.NotBeginsKind,
		ast.EndsKind, ast.NotEndsKind, ast.IndexOfKind, ast.LastIndexOfKind,
		ast.CharAtKind, ast.SubStringKind, ast.ToUpperKind, ast.ToLowerKind,
		ast.TrimKind, ast.ToStringKind, ast.ToIntKind, ast.ReplaceKind, ast.CountKind,
		ast.IteKind, ast.ReConcatKind, ast.ReUnionKind, ast.ReInterKind,
		ast.ReStarKind, ast.RePlusKind, ast.ReOptKind, ast.ToRegexKind:
		for i := range t.Args {
			r.substituteArg(t, i)
		}
		for _, a := range t.Args {
			if err := r.visit(a); err != nil {
				return err
			}
		}
		return nil

	case ast.ExistsKind, ast.ForAllKind, ast.QualIdKind, ast.ConstKind:
		return nil
	default:
		panic(fmt.Errorf("%w: no substitution rule for %s", ErrInternal, t.Kind))
	}
}

func (r *SubstitutionRunner) substituteArg(t *ast.Term, i int) {
	if repl := r.substitution(t.Args[i]); repl != nil {
		t.SetArg(i, repl)
	}
}

// substitution returns a fresh copy of the replacement of t, or nil if t
// is not rewritten. Rules of enclosing scopes apply inside nested ones; the
// innermost rule wins.
func (r *SubstitutionRunner) substitution(t *ast.Term) *ast.Term {
	if t.Kind != ast.QualIdKind {
		return nil
	}
	var (
		to    *ast.Term
		scope ast.ID
	)
	for _, key := range r.symbols.Scopes() {
		if repl, ok := r.rules[key][t.Name]; ok {
			to, scope = repl, key
			break
		}
	}
	if to == nil {
		return nil
	}
	if debug.Subst() {
		debug.Logf("subst: %s -> %s in scope %d\n", t, to, scope)
	}
	r.log.Debug("apply rule", "var", t.Name, "term", to.String())
	if v, repl := r.symbols.VariableOf(t), r.symbols.VariableOf(to); v != nil && repl != nil {
		r.symbols.AddVariableSubstitutionRule(v, repl)
	}
	return to.Clone()
}
