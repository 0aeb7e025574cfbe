package main

import (
	"fmt"

	"github.com/scott-cotton/cli"
	"github.com/signadot/strsolve/theory"
)

func semilinear(cfg *SemilinearConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Semilinear.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("%w: semilinear requires one argument, a set", cli.ErrUsage)
	}
	set, err := theory.ParseSemilinearSet(args[0])
	if err != nil {
		return fmt.Errorf("%w: %w", cli.ErrUsage, err)
	}
	u := theory.MakeUnaryAutomaton(set)
	fmt.Fprintf(cc.Out, "states %d\n", u.DFA().NumStates())
	fmt.Fprintf(cc.Out, "set %s\n", u.SemilinearSet())
	var b *theory.BinaryIntAutomaton
	if cfg.Binary {
		b = u.ToBinaryIntAutomaton("x", cfg.MinusOne)
		fmt.Fprintf(cc.Out, "binary states %d\n", b.DFA.NumStates())
	}
	if !cfg.Dot {
		return nil
	}
	dir := cfg.outputDir()
	path, err := theory.InspectAutomaton(dir, u.DFA(), false)
	if err != nil {
		return err
	}
	fmt.Fprintf(cc.Out, "wrote %s\n", path)
	path, err = u.DAGraph().Inspect(dir, false)
	if err != nil {
		return err
	}
	fmt.Fprintf(cc.Out, "wrote %s\n", path)
	if b != nil {
		path, err = theory.InspectAutomaton(dir, b.DFA, false)
		if err != nil {
			return err
		}
		fmt.Fprintf(cc.Out, "wrote %s\n", path)
	}
	return nil
}
