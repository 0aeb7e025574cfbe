package automaton

import "errors"

var ErrInternal = errors.New("internal error")
