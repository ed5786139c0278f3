//go:build tinygo

package hal

import "machine"

// MachinePin adapts a machine.Pin to Pin.
type MachinePin machine.Pin

func (p MachinePin) Get() bool     { return machine.Pin(p).Get() }
func (p MachinePin) Set(high bool) { machine.Pin(p).Set(high) }

func (p MachinePin) Configure(dir Direction) {
	mode := machine.PinInput
	switch dir {
	case InputPullup:
		mode = machine.PinInputPullup
	case Output:
		mode = machine.PinOutput
	}
	machine.Pin(p).Configure(machine.PinConfig{Mode: mode})
}
