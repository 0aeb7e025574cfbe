package automaton

import (
	"fmt"
	"strings"
)

// A cube is a symbol pattern over '0', '1' and 'X' (either bit). A
// transition function is stored as a list of pairwise disjoint cubes
// covering every symbol.

func allX(bits int) string {
	return strings.Repeat("X", bits)
}

func checkPattern(p string, bits int) {
	if len(p) != bits {
		panic(fmt.Errorf("%w: pattern %q has %d bits, want %d", ErrInternal, p, len(p), bits))
	}
	for i := 0; i < len(p); i++ {
		switch p[i] {
		case '0', '1', 'X':
		default:
			panic(fmt.Errorf("%w: bad pattern %q", ErrInternal, p))
		}
	}
}

func intersectCube(a, b string) (string, bool) {
	res := []byte(a)
	for i := 0; i < len(a); i++ {
		switch {
		case a[i] == 'X':
			res[i] = b[i]
		case b[i] == 'X' || a[i] == b[i]:
		default:
			return "", false
		}
	}
	return string(res), true
}

// subtractCube returns disjoint cubes covering a minus b.
func subtractCube(a, b string) []string {
	if _, ok := intersectCube(a, b); !ok {
		return []string{a}
	}
	var res []string
	cur := []byte(a)
	for i := 0; i < len(a); i++ {
		if a[i] != 'X' || b[i] == 'X' {
			continue
		}
		out := append([]byte(nil), cur...)
		out[i] = flip(b[i])
		res = append(res, string(out))
		cur[i] = b[i]
	}
	return res
}

func flip(c byte) byte {
	if c == '0' {
		return '1'
	}
	return '0'
}
