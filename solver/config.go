// Package solver rewrites a script with substitution rules, extracts the
// string formula of every term and groups the string variables that must
// share an automaton.
package solver

import "log/slog"

// Config holds the solver options. The zero value uses the default
// grouping policy.
type Config struct {
	// ForceDNF only groups variables that occur together in a relational
	// formula. It takes effect with EnableDependencyAnalysis.
	ForceDNF                 bool `yaml:"force_dnf"`
	EnableDependencyAnalysis bool `yaml:"dependency_analysis"`

	Log *slog.Logger `yaml:"-"`
}

func (c *Config) forceDNF() bool {
	return c.ForceDNF && c.EnableDependencyAnalysis
}

func (c *Config) logger() *slog.Logger {
	if c.Log == nil {
		return slog.Default()
	}
	return c.Log
}
