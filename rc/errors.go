package rc

import "errors"

var (
	ErrUnknownChannel = errors.New("rc: unknown channel")
	ErrUnknownOrder   = errors.New("rc: unknown channel order")
	ErrBadOrder       = errors.New("rc: channel order is not a permutation")
)
