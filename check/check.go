// Package check decides the boolean and equality skeleton of a script.
//
// The script is abstracted into a gini circuit whose inputs are its theory
// atoms. Each model of the circuit is checked against the equalities it
// chooses; conflicts are blocked and the solver asked again. A consistent
// model yields a witness which is verified by evaluating the assertions
// with expr.
package check

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/go-air/gini"
	"github.com/go-air/gini/z"
	"github.com/signadot/strsolve/ast"
	"github.com/signadot/strsolve/constraint"
	"github.com/signadot/strsolve/debug"
	"github.com/signadot/strsolve/symtab"
)

const DefaultMaxIterations = 64

type Config struct {
	MaxIterations int          `yaml:"max_iterations"`
	Log           *slog.Logger `yaml:"-"`
}

type Status int

const (
	Unknown Status = iota
	Sat
	Unsat
)

func (s Status) String() string {
	switch s {
	case Sat:
		return "sat"
	case Unsat:
		return "unsat"
	}
	return "unknown"
}

type Result struct {
	Status Status
	// Model maps variables to witness values when Status is Sat.
	Model map[string]any
	// Components reports, when Status is Sat, whether each component
	// holds under the model.
	Components map[ast.ID]bool
	Iterations int
}

type Checker struct {
	script  *ast.Script
	symbols *symtab.Table
	info    *constraint.Information
	max     int
	log     *slog.Logger
}

func NewChecker(script *ast.Script, symbols *symtab.Table, info *constraint.Information, cfg *Config) *Checker {
	c := &Checker{
		script:  script,
		symbols: symbols,
		info:    info,
		max:     DefaultMaxIterations,
		log:     slog.Default(),
	}
	if cfg != nil {
		if cfg.MaxIterations > 0 {
			c.max = cfg.MaxIterations
		}
		if cfg.Log != nil {
			c.log = cfg.Log
		}
	}
	return c
}

func (c *Checker) Check() (*Result, error) {
	return c.CheckContext(context.Background())
}

// CheckContext is Check stopping between iterations once ctx is done. The
// partial result then has status Unknown.
func (c *Checker) CheckContext(ctx context.Context) (*Result, error) {
	sk := newSkeleton(c.symbols, c.info)
	root := sk.buildScript(c.script)
	if sk.err != nil {
		return nil, fmt.Errorf("error building skeleton: %w", sk.err)
	}
	names := c.names()

	g := gini.New()
	sk.c.ToCnf(g)
	res := &Result{}
	// set once a model is blocked because its witness could not be
	// verified, so running out of models no longer means unsat.
	incomplete := false
	for res.Iterations < c.max {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Iterations++
		g.Assume(root)
		if g.Solve() != 1 {
			if !incomplete {
				res.Status = Unsat
			}
			return res, nil
		}
		values := make(map[*atom]bool, len(sk.atoms))
		for _, a := range sk.atoms {
			values[a] = value(g, a.lit)
		}
		conflict, uf := sk.equalities(values)
		if conflict != nil {
			if debug.Check() {
				debug.Logf("check: conflict %v\n", keys(conflict))
			}
			block(g, conflict, values)
			continue
		}
		model := sk.witness(values, uf, names)
		if !c.verify(model) {
			incomplete = true
			block(g, sk.atoms, values)
			continue
		}
		res.Status = Sat
		res.Model = model
		res.Components = make(map[ast.ID]bool, len(sk.components))
		for id, lit := range sk.components {
			res.Components[id] = value(g, lit)
		}
		return res, nil
	}
	c.log.Warn("iteration limit reached", "iterations", res.Iterations)
	return res, nil
}

// verify evaluates every assertion under model.
func (c *Checker) verify(model map[string]any) bool {
	for _, t := range c.script.Assertions() {
		ok, err := Verify(t, model)
		if err != nil {
			c.log.Debug("unverifiable assertion", "term", t.String(), "error", err)
			return false
		}
		if !ok {
			if debug.Check() {
				debug.Logf("check: witness %v falsifies %s\n", model, t)
			}
			return false
		}
	}
	return true
}

// names returns the declared variables of the script followed by any
// other identifier free in an assertion, in a stable order.
func (c *Checker) names() []string {
	var res []string
	seen := map[string]bool{}
	for _, v := range c.symbols.Variables() {
		if v.Type == symtab.NoneType || seen[v.Name] {
			continue
		}
		seen[v.Name] = true
		res = append(res, v.Name)
	}
	var extra []string
	for _, t := range c.script.Assertions() {
		for _, name := range t.Variables() {
			if !seen[name] {
				seen[name] = true
				extra = append(extra, name)
			}
		}
	}
	slices.Sort(extra)
	return append(res, extra...)
}

// value reads m from the last model. Variables the solver never saw
// are false.
func value(g *gini.Gini, m z.Lit) bool {
	if m.Var() > g.MaxVar() {
		return false
	}
	return g.Value(m)
}

// block adds the clause excluding the assignment of atoms.
func block(g *gini.Gini, atoms []*atom, values map[*atom]bool) {
	for _, a := range atoms {
		m := a.lit
		if values[a] {
			m = m.Not()
		}
		g.Add(m)
	}
	g.Add(0)
}

func keys(atoms []*atom) []string {
	res := make([]string, len(atoms))
	for i, a := range atoms {
		res[i] = a.key
	}
	return res
}
