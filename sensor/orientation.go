// Package sensor turns raw gyroscope and accelerometer readings into
// canonical roll/pitch/yaw samples: axes are permuted and sign corrected for
// the board's mounting orientation, then calibrated zero offsets are removed.
package sensor

import (
	"fmt"
	"strings"
)

// Axis indexes a canonical sample.
type Axis int

const (
	Roll Axis = iota
	Pitch
	Yaw

	NumAxes = 3
)

// Vector holds one value per axis.
type Vector [NumAxes]int32

// Orientation is the board mounting orientation.
type Orientation uint8

const (
	Up Orientation = iota
	UpCW90
	Up180
	UpCCW90
	Inverted
	InvertedCW90
	Inverted180
	InvertedCCW90

	OrientationCount
)

var orientationNames = [OrientationCount]string{
	"up", "up-cw90", "up-180", "up-ccw90",
	"inverted", "inverted-cw90", "inverted-180", "inverted-ccw90",
}

func (o Orientation) String() string {
	if o < OrientationCount {
		return orientationNames[o]
	}
	return "invalid"
}

// ParseOrientation returns the orientation with the given name.
func ParseOrientation(name string) (Orientation, error) {
	name = strings.ToLower(name)
	for i, n := range orientationNames {
		if n == name {
			return Orientation(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrBadOrientation, name)
}

// permutation[o][a] is the raw axis feeding canonical axis a.
var permutation = [OrientationCount][NumAxes]uint8{
	Up:            {0, 1, 2},
	UpCW90:        {1, 0, 2},
	Up180:         {0, 1, 2},
	UpCCW90:       {1, 0, 2},
	Inverted:      {0, 1, 2},
	InvertedCW90:  {1, 0, 2},
	Inverted180:   {0, 1, 2},
	InvertedCCW90: {1, 0, 2},
}

// polarity[o][a] is the sign applied to canonical axis a.
var polarity = [OrientationCount][NumAxes]int8{
	Up:            {1, 1, 1},
	UpCW90:        {-1, 1, 1},
	Up180:         {-1, -1, 1},
	UpCCW90:       {1, -1, 1},
	Inverted:      {1, -1, -1},
	InvertedCW90:  {-1, -1, -1},
	Inverted180:   {-1, 1, -1},
	InvertedCCW90: {1, 1, -1},
}

// CheckTables verifies that every orientation has a permutation using each
// raw axis once, only ±1 signs, and together describes a proper rotation.
func CheckTables() error {
	for o := Orientation(0); o < OrientationCount; o++ {
		if err := checkEntry(permutation[o], polarity[o]); err != nil {
			return fmt.Errorf("%w: %v: %v", ErrBadTable, o, err)
		}
	}
	return nil
}

func checkEntry(perm [NumAxes]uint8, sign [NumAxes]int8) error {
	var seen [NumAxes]bool
	for _, p := range perm {
		if int(p) >= NumAxes || seen[p] {
			return fmt.Errorf("permutation %v", perm)
		}
		seen[p] = true
	}
	det := int8(1)
	for _, s := range sign {
		if s != 1 && s != -1 {
			return fmt.Errorf("sign %v", sign)
		}
		det *= s
	}
	// parity of the permutation
	for i := 0; i < NumAxes; i++ {
		for j := i + 1; j < NumAxes; j++ {
			if perm[i] > perm[j] {
				det = -det
			}
		}
	}
	if det != 1 {
		return fmt.Errorf("mirror image (perm %v, sign %v)", perm, sign)
	}
	return nil
}

// Reorient maps a raw hardware-order reading into canonical axes.
func (o Orientation) Reorient(raw Vector) Vector {
	var v Vector
	perm, sign := permutation[o], polarity[o]
	for a := 0; a < NumAxes; a++ {
		v[a] = raw[perm[a]] * int32(sign[a])
	}
	return v
}

// Unorient is the inverse of Reorient: it maps a canonical vector back into
// hardware order.
func (o Orientation) Unorient(v Vector) Vector {
	var raw Vector
	perm, sign := permutation[o], polarity[o]
	for a := 0; a < NumAxes; a++ {
		raw[perm[a]] = v[a] * int32(sign[a])
	}
	return raw
}

// MarshalText implements encoding.TextMarshaler.
func (o Orientation) MarshalText() ([]byte, error) {
	if o >= OrientationCount {
		return nil, ErrBadOrientation
	}
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *Orientation) UnmarshalText(b []byte) error {
	v, err := ParseOrientation(string(b))
	if err != nil {
		return err
	}
	*o = v
	return nil
}
