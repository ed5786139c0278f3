//go:build tinygo

package main

import "machine"

// Hardware mappings for the Seeed XIAO BLE Sense.
const (
	ELEVON_L_PIN = machine.D0
	ELEVON_R_PIN = machine.D1
	ESC_PIN      = machine.D2

	// CPPM_PIN carries a CPPM train; PWM receivers use RX_PWM_PINS, one pin
	// per transmission slot.
	CPPM_PIN = machine.D3

	ESC_PWM_FREQUENCY = 500

	WATCHDOG_TIMEOUT_MS = 500
)

var RX_PWM_PINS = []machine.Pin{machine.D3, machine.D4, machine.D5, machine.D8, machine.D9, machine.D10}

var (
	pwmServo = machine.PWM0
	pwmESC   = machine.PWM1
	i2c      = machine.I2C0
	uart     = machine.DefaultUART
)
