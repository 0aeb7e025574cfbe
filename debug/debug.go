package debug

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

type debug struct {
	Extract bool
	Subst   bool
	SCC     bool
	Unary   bool
	Check   bool
}

var d *debug

func init() {
	d = &debug{}
	d.Extract = boolEnv("STRSOLVE_DEBUG_EXTRACT")
	d.Subst = boolEnv("STRSOLVE_DEBUG_SUBST")
	d.SCC = boolEnv("STRSOLVE_DEBUG_SCC")
	d.Unary = boolEnv("STRSOLVE_DEBUG_UNARY")
	d.Check = boolEnv("STRSOLVE_DEBUG_CHECK")
}

func boolEnv(v string) bool {
	x := os.Getenv(v)
	if x == "" {
		return false
	}
	b, _ := strconv.ParseBool(x)
	return b
}

// Names lists the flags accepted by Set.
func Names() []string {
	return []string{"extract", "subst", "scc", "unary", "check"}
}

// Set overrides the environment, for configuration files. Unknown names
// are ignored.
func Set(name string, on bool) {
	switch name {
	case "extract":
		d.Extract = on
	case "subst":
		d.Subst = on
	case "scc":
		d.SCC = on
	case "unary":
		d.Unary = on
	case "check":
		d.Check = on
	}
}

func Extract() bool {
	return d.Extract
}
func Subst() bool {
	return d.Subst
}
func SCC() bool {
	return d.SCC
}
func Unary() bool {
	return d.Unary
}
func Check() bool {
	return d.Check
}

func Logf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format, args...)
}

func LogAny(v any) {
	d, err := json.Marshal(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", v)
		return
	}
	os.Stderr.Write(d)
	os.Stderr.Write([]byte{'\n'})
}
