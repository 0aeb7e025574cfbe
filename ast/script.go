package ast

import "strings"

type CommandKind int

const (
	DeclareFunCommand CommandKind = iota
	AssertCommand
	CheckSatCommand
	GetModelCommand
)

// Command is a top level script command. Assert uses Term, DeclareFun
// uses Name and Sort.
type Command struct {
	Kind CommandKind
	Term *Term
	Name string
	Sort Sort
}

// Script is the root of a parsed input. It has an id so it can key scopes
// and annotations like any term.
type Script struct {
	ID       ID
	Commands []*Command
}

func NewScript(cmds ...*Command) *Script {
	return &Script{ID: nextID(), Commands: cmds}
}

func Declare(name string, sort Sort) *Command {
	return &Command{Kind: DeclareFunCommand, Name: name, Sort: sort}
}

// Assert wraps t so that every assertion is rooted at a connective.
func Assert(t *Term) *Command {
	if !t.Kind.IsConnective() {
		t = And(t)
	}
	return &Command{Kind: AssertCommand, Term: t}
}

// Assertions returns the asserted terms in script order.
func (s *Script) Assertions() []*Term {
	var res []*Term
	for _, c := range s.Commands {
		if c.Kind == AssertCommand {
			res = append(res, c.Term)
		}
	}
	return res
}

// Declarations returns the declared names and sorts in script order.
func (s *Script) Declarations() []*Command {
	var res []*Command
	for _, c := range s.Commands {
		if c.Kind == DeclareFunCommand {
			res = append(res, c)
		}
	}
	return res
}

// Visit visits every asserted term; see Term.Visit.
func (s *Script) Visit(f func(t *Term, isPost bool) (bool, error)) error {
	for _, t := range s.Assertions() {
		if err := t.Visit(f); err != nil {
			return err
		}
	}
	return nil
}

func (s *Script) String() string {
	buf := &strings.Builder{}
	for _, c := range s.Commands {
		switch c.Kind {
		case DeclareFunCommand:
			buf.WriteString("(declare-fun " + c.Name + " () " + c.Sort.String() + ")\n")
		case AssertCommand:
			buf.WriteString("(assert " + c.Term.String() + ")\n")
		case CheckSatCommand:
			buf.WriteString("(check-sat)\n")
		case GetModelCommand:
			buf.WriteString("(get-model)\n")
		}
	}
	return buf.String()
}
