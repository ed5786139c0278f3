// Package sim is a host-side model of the airframe, its sensor and its
// transmitter, for closed-loop tests and the sim command.
package sim

import "github.com/BryanSouza91/nextcopter/mixer"

const (
	Roll = iota
	Pitch
	Yaw
)

// Vehicle is a rigid body whose body rates follow the outputs through a
// first-order lag. Angles are Euler angles in degrees; the rates are
// integrated directly, which holds for the small pitch angles a stabilized
// model sees.
type Vehicle struct {
	// Response[i][a] is the steady rate about axis a, in deg/s, per
	// microsecond that output i sits away from centre.
	Response [][3]float64
	// Tau is the rate time constant in seconds.
	Tau float64
	// Disturbance is added to the commanded rates, in deg/s.
	Disturbance [3]float64

	Rate  [3]float64
	Angle [3]float64
}

// NewWing returns a flying wing matching the wing mixer preset: output 0 is
// the motor, outputs 1 and 2 the left and right elevons.
func NewWing() *Vehicle {
	return &Vehicle{
		Response: [][3]float64{
			{0, 0, 0},
			{0.5, 0.5, 0},
			{-0.5, 0.5, 0},
		},
		Tau: 0.05,
	}
}

// NewAeroplane returns a model matching the aeroplane preset.
func NewAeroplane() *Vehicle {
	return &Vehicle{
		Response: [][3]float64{
			{0, 0, 0},
			{1, 0, 0},
			{0, 1, 0},
			{0, 0, 0.5},
		},
		Tau: 0.08,
	}
}

// Step advances the model by dt seconds with the given output pulses.
func (v *Vehicle) Step(pulses []int, dt float64) {
	target := v.Disturbance
	for i, p := range pulses {
		if i >= len(v.Response) {
			break
		}
		off := float64(p - mixer.Center)
		for a := range target {
			target[a] += off * v.Response[i][a]
		}
	}
	k := dt / (v.Tau + dt)
	for a := range v.Rate {
		v.Rate[a] += (target[a] - v.Rate[a]) * k
		v.Angle[a] += v.Rate[a] * dt
	}
	v.Angle[Roll] = wrap180(v.Angle[Roll])
	v.Angle[Yaw] = wrap180(v.Angle[Yaw])
	if v.Angle[Pitch] > 90 {
		v.Angle[Pitch] = 90
	} else if v.Angle[Pitch] < -90 {
		v.Angle[Pitch] = -90
	}
}

func wrap180(d float64) float64 {
	for d > 180 {
		d -= 360
	}
	for d <= -180 {
		d += 360
	}
	return d
}
