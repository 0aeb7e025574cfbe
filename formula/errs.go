package formula

import "errors"

var ErrInternal = errors.New("internal error")
