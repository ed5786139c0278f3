package fc

import "github.com/BryanSouza91/nextcopter/status"

// State is the arming state.
type State uint8

const (
	// Waiting is disarmed: servos centred, motors at minimum.
	Waiting State = iota
	// Calibrating runs the gyro, accelerometer and stick calibration.
	Calibrating
	// Armed runs the stabilization loop.
	Armed
	// Failsafe holds the failsafe outputs after the link was lost while
	// armed.
	Failsafe
)

var stateNames = [...]string{"waiting", "calibrating", "armed", "failsafe"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "invalid"
}

// pattern picks the status LED pattern. A sensor error overrides everything
// except failsafe.
func pattern(s State, linked, sensorErr, calibrated bool) status.Pattern {
	switch {
	case s == Failsafe:
		return status.FastFlash
	case sensorErr:
		return status.SlowFlash
	}
	switch s {
	case Calibrating:
		if calibrated {
			return status.FastFlash
		}
		return status.Blink3
	case Armed:
		return status.On
	}
	if !linked {
		return status.Flash
	}
	return status.Alternate
}
