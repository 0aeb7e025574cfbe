package main

import (
	"github.com/scott-cotton/cli"
)

func MainCommand() *cli.Command {
	cfg := &MainConfig{}
	sOpts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	opts := append(sOpts, &cli.Opt{
		Name:        "o",
		Description: "output file (default stdout)",
		Type:        cli.NamedFuncOpt(cfg.outOpt, "(filepath)"),
	})

	return cli.NewCommandAt(&cfg.Main, "strsolve").
		WithSynopsis("strsolve [opts] command [opts]").
		WithDescription("strsolve decomposes string constraint scripts.").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return strsolveMain(cfg, cc, args)
		}).
		WithSubs(
			ExtractCommand(cfg),
			CheckCommand(cfg),
			SemilinearCommand(cfg))
}

func ExtractCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &ExtractConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	cmd := cli.NewCommand("extract").
		WithAliases("x", "ex").
		WithSynopsis("extract [opts] [files]").
		WithDescription("substitute variables and extract string formulas and groups").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return extract(cfg, cc, args)
		})
	cfg.Extract = cmd
	return cmd
}

func CheckCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &CheckConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	cmd := cli.NewCommand("check").
		WithAliases("c").
		WithSynopsis("check [opts] [files]").
		WithDescription("decide the boolean and equality skeleton of scripts").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return checkScripts(cfg, cc, args)
		})
	cfg.Check = cmd
	return cmd
}

func SemilinearCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &SemilinearConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Semilinear, "semilinear").
		WithAliases("s", "sl").
		WithSynopsis("semilinear [opts] <c1,c2;head,period:r1,r2>").
		WithDescription("build the unary automaton of a semilinear set and analyze it back").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return semilinear(cfg, cc, args)
		})
}
