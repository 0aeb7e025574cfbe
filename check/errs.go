package check

import "errors"

var (
	ErrUntranslatable = errors.New("term has no witness expression")
	ErrNoValue        = errors.New("no witness value")
)
