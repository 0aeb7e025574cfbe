package ast

import "errors"

var (
	ErrLoad        = errors.New("load error")
	ErrUnsupported = errors.New("unsupported construct")
)
