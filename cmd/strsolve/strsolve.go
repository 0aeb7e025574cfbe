package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/gops/agent"
	"github.com/scott-cotton/cli"
	"github.com/signadot/strsolve/ast"
	"github.com/signadot/strsolve/config"
	"github.com/signadot/strsolve/symtab"
)

func strsolveMain(cfg *MainConfig, cc *cli.Context, args []string) error {
	defer func() {
		if cfg.CloseOut != nil {
			cfg.CloseOut()
		}
	}()
	args, err := cfg.Main.Parse(cc, args)
	if err != nil {
		return err
	}
	cfg.File, err = config.Load(cfg.Config)
	if err != nil {
		return fmt.Errorf("%w: %w", cli.ErrUsage, err)
	}
	cfg.File.Apply()
	if cfg.V {
		logLevel.Set(slog.LevelDebug)
	}
	if cfg.Gops {
		if err := agent.Listen(agent.Options{}); err != nil {
			theLog.Warn("gops agent failed", "error", err)
		}
	}
	if len(args) == 0 {
		return cli.ErrNoCommandProvided
	}
	sub := cfg.Main.FindSub(cc, args[0])
	if sub == nil {
		return fmt.Errorf("%w: %q not found", cli.ErrNoSuchCommand, args[0])
	}
	err = sub.Run(cc, args[1:])
	if errors.Is(err, cli.ErrUsage) {
		sub.Usage(cc, err)
		os.Exit(sub.Exit(cc, err))
	}
	return err
}

type input struct {
	name    string
	script  *ast.Script
	symbols *symtab.Table
}

// readInputs loads and declares the scripts named by args, or the script
// on standard input when there are none.
func readInputs(cc *cli.Context, args []string) ([]*input, error) {
	if len(args) == 0 {
		args = []string{"-"}
	}
	res := make([]*input, 0, len(args))
	for _, arg := range args {
		var (
			d   []byte
			err error
		)
		if arg == "-" {
			d, err = io.ReadAll(cc.In)
		} else {
			d, err = os.ReadFile(arg)
		}
		if err != nil {
			return nil, fmt.Errorf("error reading %s: %w", arg, err)
		}
		script, err := ast.Load(d)
		if err != nil {
			return nil, fmt.Errorf("error loading %s: %w", arg, err)
		}
		symbols := symtab.New()
		if err := symbols.Declare(script); err != nil {
			return nil, fmt.Errorf("error declaring %s: %w", arg, err)
		}
		res = append(res, &input{name: arg, script: script, symbols: symbols})
	}
	return res, nil
}
