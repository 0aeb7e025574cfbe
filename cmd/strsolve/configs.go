package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/scott-cotton/cli"
	"github.com/signadot/strsolve/check"
	"github.com/signadot/strsolve/config"
	"github.com/signadot/strsolve/solver"
)

type MainConfig struct {
	Config string `cli:"name=config desc='configuration file'"`
	Gops   bool   `cli:"name=gops desc='start a gops agent'"`
	Color  bool   `cli:"name=color desc='color results'"`
	V      bool   `cli:"name=v desc='log debug records'"`

	Out      string
	CloseOut func() error

	File *config.File

	Main *cli.Command
}

func (cfg *MainConfig) outOpt(cc *cli.Context, a string) (any, error) {
	cfg.Out = a
	if a == "-" {
		return nil, nil
	}
	f, err := os.OpenFile(cfg.Out, os.O_CREATE|os.O_TRUNC|os.O_RDWR, 0644)
	if err != nil {
		return nil, err
	}
	cc.Out = f
	cfg.CloseOut = f.Close
	return nil, nil
}

func (cfg *MainConfig) solverConfig(in *input) *solver.Config {
	res := cfg.File.Solver
	res.Log = scriptLog(in.name)
	return &res
}

func (cfg *MainConfig) checkConfig(in *input) *check.Config {
	res := cfg.File.Check
	res.Log = scriptLog(in.name)
	return &res
}

func (cfg *MainConfig) outputDir() string {
	if cfg.File.OutputDir == "" {
		return "."
	}
	return cfg.File.OutputDir
}

// colors returns a coloring function per check status, or nil when w
// should not be colored.
func (cfg *MainConfig) colors(w io.Writer) map[check.Status]func(string, ...any) string {
	colors := map[check.Status]func(string, ...any) string{
		check.Sat:     color.RGB(16, 168, 64).SprintfFunc(),
		check.Unsat:   color.RGB(196, 32, 32).SprintfFunc(),
		check.Unknown: color.YellowString,
	}
	colorSet := false
	for _, opt := range cfg.Main.Opts {
		if opt.Name != "color" {
			continue
		}
		colorSet = opt.Value != nil
		break
	}
	if colorSet {
		if !cfg.Color {
			return nil
		}
		color.NoColor = false
		return colors
	}
	f, ok := w.(*os.File)
	if !ok || !isatty.IsTerminal(f.Fd()) {
		return nil
	}
	return colors
}

type ExtractConfig struct {
	*MainConfig
	Diff     bool `cli:"name=diff desc='show the script before and after substitution'"`
	ForceDNF bool `cli:"name=dnf desc='group only related variables'"`

	Extract *cli.Command
}

type CheckConfig struct {
	*MainConfig
	Model   bool `cli:"name=model desc='print the witness of satisfiable scripts'"`
	MaxIter int  `cli:"name=maxIter desc='maximum number of skeleton models to try'"`

	Check *cli.Command
}

type SemilinearConfig struct {
	*MainConfig
	Dot      bool `cli:"name=dot desc='write automata as dot files to the output directory'"`
	Binary   bool `cli:"name=binary desc='also build the binary automaton'"`
	MinusOne bool `cli:"name=m1 desc='add -1 to the set'"`

	Semilinear *cli.Command
}

func statusString(colors map[check.Status]func(string, ...any) string, s check.Status) string {
	if colors == nil {
		return s.String()
	}
	return colors[s]("%s", s)
}

func quote(v any) string {
	if s, ok := v.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return fmt.Sprint(v)
}
