package fc

import "errors"

var (
	ErrArmed  = errors.New("fc: configuration cannot change while armed")
	ErrNoRC   = errors.New("fc: no RC buffer")
	ErrNoSens = errors.New("fc: no sensor")
	ErrNoOut  = errors.New("fc: no output driver")
)
