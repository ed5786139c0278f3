//go:build tinygo

package output

import (
	"machine"

	"tinygo.org/x/drivers/servo"
)

// Servos drives 50 Hz servo outputs.
type Servos struct {
	servos []servo.Servo
}

// NewServos claims a servo output on every pin of one PWM peripheral.
func NewServos(pwm servo.PWM, pins ...machine.Pin) (*Servos, error) {
	s := &Servos{}
	for _, pin := range pins {
		sv, err := servo.New(pwm, pin)
		if err != nil {
			return nil, err
		}
		s.servos = append(s.servos, sv)
	}
	return s, nil
}

func (s *Servos) Write(pulses []int) error {
	if len(pulses) < len(s.servos) {
		return ErrShort
	}
	for i, sv := range s.servos {
		sv.SetMicroseconds(int16(pulses[i]))
	}
	return nil
}

// PWMGroup drives outputs on a PWM peripheral at a chosen rate, as used for
// ESCs that accept faster updates than servos.
type PWMGroup struct {
	pwm      servo.PWM
	periodNs uint64
	channels []uint8
}

// NewPWMGroup configures pwm at hz and claims a channel for every pin.
func NewPWMGroup(pwm servo.PWM, hz uint64, pins ...machine.Pin) (*PWMGroup, error) {
	period := uint64(1e9) / hz
	if err := pwm.Configure(machine.PWMConfig{Period: period}); err != nil {
		return nil, err
	}
	g := &PWMGroup{pwm: pwm, periodNs: period}
	for _, pin := range pins {
		ch, err := pwm.Channel(pin)
		if err != nil {
			return nil, err
		}
		g.channels = append(g.channels, ch)
	}
	return g, nil
}

func (g *PWMGroup) Write(pulses []int) error {
	if len(pulses) < len(g.channels) {
		return ErrShort
	}
	top := g.pwm.Top()
	for i, ch := range g.channels {
		g.pwm.Set(ch, Duty(pulses[i], top, g.periodNs))
	}
	return nil
}
