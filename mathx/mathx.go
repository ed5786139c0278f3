// Package mathx holds the small generic numeric helpers shared by the control
// packages.
package mathx

import "golang.org/x/exp/constraints"

// Number is any integer or floating point type.
type Number interface {
	constraints.Integer | constraints.Float
}

// Constrain limits value to the closed range [min, max].
func Constrain[T Number](value, min, max T) T {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// MapRange maps a value from one range to another.
func MapRange[T Number](value, fromMin, fromMax, toMin, toMax T) T {
	return (value-fromMin)*(toMax-toMin)/(fromMax-fromMin) + toMin
}

// Abs returns the absolute value of v.
func Abs[T constraints.Signed | constraints.Float](v T) T {
	if v < 0 {
		return -v
	}
	return v
}

// RoundDiv divides n by d rounding half away from zero. d must not be zero.
func RoundDiv[T constraints.Signed](n, d T) T {
	if d < 0 {
		n, d = -n, -d
	}
	if n < 0 {
		return -((-n + d/2) / d)
	}
	return (n + d/2) / d
}

// Deadband zeroes values whose magnitude does not exceed band.
func Deadband[T constraints.Signed](v, band T) T {
	if v >= -band && v <= band {
		return 0
	}
	return v
}
