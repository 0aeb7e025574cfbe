package symtab

import "errors"

var (
	ErrInternal   = errors.New("internal error")
	ErrRedeclared = errors.New("variable redeclared")
)
