// Package hal describes the small set of hardware capabilities the flight core
// depends on. Decoders and status outputs are written against these interfaces
// rather than against a board's register layout, so the same state machines run
// on a microcontroller and in host tests.
package hal

import "sync"

// Direction selects how a pin is configured.
type Direction uint8

const (
	Input Direction = iota
	InputPullup
	Output
)

// InputPin reads the current logic level of a pin.
type InputPin interface {
	Get() bool
}

// OutputPin drives a pin high or low.
type OutputPin interface {
	Set(high bool)
}

// Pin is a fully capable GPIO.
type Pin interface {
	InputPin
	OutputPin
	Configure(dir Direction)
}

// Locker guards state shared between interrupt handlers and the main loop.
// On a microcontroller it disables interrupts for the critical section; on the
// host it is a mutex.
type Locker = sync.Locker
