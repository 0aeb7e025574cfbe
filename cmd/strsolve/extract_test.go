package main

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/signadot/strsolve/ast"
	"github.com/signadot/strsolve/constraint"
	"github.com/signadot/strsolve/solver"
	"github.com/signadot/strsolve/symtab"
)

func TestWriteDiff(t *testing.T) {
	buf := &strings.Builder{}
	writeDiff(buf, "a\nb\nc\n", "a\nx\nc\n")
	want := "  a\n- b\n+ x\n  c\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestWriteExtraction(t *testing.T) {
	script, err := ast.Load([]byte(`
declare: {x: String, y: String}
assert:
  - ["=", x, ["str.++", y, {str: "a"}]]
`))
	if err != nil {
		t.Fatal(err)
	}
	in := &input{name: "-", script: script, symbols: symtab.New()}
	if err := in.symbols.Declare(script); err != nil {
		t.Fatal(err)
	}
	info := constraint.NewInformation()
	info.MarkComponents(script)
	gen := solver.NewStringFormulaGenerator(script, in.symbols, info, &solver.Config{})
	gen.Start()

	buf := &strings.Builder{}
	writeExtraction(buf, in, info, gen)
	root := script.Assertions()[0]
	group := in.symbols.VarNameForNode(root.ID, symtab.StringType)
	got := buf.String()
	for _, want := range []string{
		"component ",
		" string: (and (= x (str.++ y \"a\")))\n",
		"  (= x (str.++ y \"a\"))\n",
		"group=" + group + "\n",
		"group " + group + ": x y\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in\n%s", want, got)
		}
	}
}
