package solver

import (
	"errors"

	"github.com/signadot/strsolve/ast"
)

var (
	ErrInternal    = errors.New("internal error")
	ErrUnsupported = ast.ErrUnsupported
)
