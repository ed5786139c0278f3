package sensor

import "errors"

var (
	ErrBadOrientation = errors.New("sensor: unknown orientation")
	ErrBadTable       = errors.New("sensor: inconsistent orientation table")
	ErrTooFewSamples  = errors.New("sensor: too few calibration samples")
	ErrNotConnected   = errors.New("sensor: device not connected")
)
