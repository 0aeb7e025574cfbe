package main

import (
	"fmt"
	"io"
	"strings"

	diffpatch "github.com/sergi/go-diff/diffmatchpatch"

	"github.com/scott-cotton/cli"
	"github.com/signadot/strsolve/ast"
	"github.com/signadot/strsolve/constraint"
	"github.com/signadot/strsolve/solver"
)

func extract(cfg *ExtractConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Extract.Parse(cc, args)
	if err != nil {
		return err
	}
	inputs, err := readInputs(cc, args)
	if err != nil {
		return err
	}
	for _, in := range inputs {
		scfg := cfg.solverConfig(in)
		if cfg.ForceDNF {
			scfg.ForceDNF = true
			scfg.EnableDependencyAnalysis = true
		}
		before := in.script.String()
		rules := solver.GenerateSubstitutions(in.script, in.symbols)
		if err := solver.NewSubstitutionRunner(in.script, in.symbols, rules, scfg).Start(); err != nil {
			return fmt.Errorf("error substituting %s: %w", in.name, err)
		}
		if len(inputs) > 1 {
			fmt.Fprintf(cc.Out, "# %s\n", in.name)
		}
		if cfg.Diff {
			writeDiff(cc.Out, before, in.script.String())
		}
		info := constraint.NewInformation()
		info.MarkComponents(in.script)
		gen := solver.NewStringFormulaGenerator(in.script, in.symbols, info, scfg)
		gen.Start()
		writeExtraction(cc.Out, in, info, gen)
	}
	return nil
}

func writeExtraction(w io.Writer, in *input, info *constraint.Information, gen *solver.StringFormulaGenerator) {
	for _, c := range info.Components(in.script) {
		fmt.Fprintf(w, "component %d %s: %s\n", c.ID, classify(info, c), c)
		c.Visit(func(t *ast.Term, isPost bool) (bool, error) {
			if !isPost {
				return true, nil
			}
			f := gen.TermFormula(t)
			if f == nil {
				return true, nil
			}
			group := gen.TermGroupName(t)
			if group == "" {
				group = "-"
			}
			fmt.Fprintf(w, "  %s\n    %s group=%s\n", t, f, group)
			return true, nil
		})
	}
	for _, name := range gen.Groups() {
		fmt.Fprintf(w, "group %s: %s\n", name, strings.Join(gen.GroupFormula(name).Variables(), " "))
	}
}

func classify(info *constraint.Information, t *ast.Term) string {
	var res []string
	if info.HasStringConstraint(t) {
		res = append(res, "string")
	}
	if info.HasMixedConstraint(t) {
		res = append(res, "mixed")
	}
	if len(res) == 0 {
		return "other"
	}
	return strings.Join(res, ",")
}

func writeDiff(w io.Writer, before, after string) {
	dmp := diffpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)
	for _, d := range diffs {
		prefix := "  "
		switch d.Type {
		case diffpatch.DiffDelete:
			prefix = "- "
		case diffpatch.DiffInsert:
			prefix = "+ "
		}
		for _, ln := range strings.SplitAfter(d.Text, "\n") {
			if ln == "" {
				continue
			}
			fmt.Fprint(w, prefix, ln)
		}
	}
}
