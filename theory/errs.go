package theory

import (
	"errors"
	"fmt"
)

var (
	ErrInternal   = errors.New("internal error")
	ErrNoSink     = fmt.Errorf("%w: automaton has no sink state", ErrInternal)
	ErrInspect    = errors.New("inspection output failed")
	ErrSemilinear = errors.New("malformed semilinear set")
)
