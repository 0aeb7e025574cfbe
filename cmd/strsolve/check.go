package main

import (
	"fmt"
	"maps"
	"slices"

	"github.com/scott-cotton/cli"
	"github.com/signadot/strsolve/check"
	"github.com/signadot/strsolve/constraint"
)

func checkScripts(cfg *CheckConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Check.Parse(cc, args)
	if err != nil {
		return err
	}
	inputs, err := readInputs(cc, args)
	if err != nil {
		return err
	}
	colors := cfg.colors(cc.Out)
	for _, in := range inputs {
		ccfg := cfg.checkConfig(in)
		if cfg.MaxIter > 0 {
			ccfg.MaxIterations = cfg.MaxIter
		}
		info := constraint.NewInformation()
		info.MarkComponents(in.script)
		res, err := check.NewChecker(in.script, in.symbols, info, ccfg).CheckContext(cc.Go)
		if err != nil {
			return fmt.Errorf("error checking %s: %w", in.name, err)
		}
		if len(inputs) > 1 {
			fmt.Fprintf(cc.Out, "%s: ", in.name)
		}
		fmt.Fprintln(cc.Out, statusString(colors, res.Status))
		if !cfg.Model || res.Status != check.Sat {
			continue
		}
		for _, name := range slices.Sorted(maps.Keys(res.Model)) {
			fmt.Fprintf(cc.Out, "  %s = %s\n", name, quote(res.Model[name]))
		}
	}
	return nil
}
