// Package mixer combines normalized stick values and stabilization
// corrections into one pulse width per output channel.
package mixer

import (
	"errors"
	"fmt"

	"github.com/BryanSouza91/nextcopter/mathx"
	"github.com/BryanSouza91/nextcopter/pid"
	"github.com/BryanSouza91/nextcopter/rc"
)

const (
	// Center is the neutral servo pulse in microseconds.
	Center = 1500
	// MinPulse and MaxPulse bound every configured travel limit.
	MinPulse = 800
	MaxPulse = 2200
	// MaxOutputs is the number of physical output channels.
	MaxOutputs = 8
	// MaxVolume bounds a source volume in percent.
	MaxVolume = 125
)

var ErrBadChannel = errors.New("mixer: invalid channel configuration")

// Source is one RC input feeding an output, scaled by Volume percent.
// Negative volumes reverse the source.
type Source struct {
	Channel rc.Channel `yaml:"channel"`
	Volume  int        `yaml:"volume"`
}

// SensorInput enables a correction term on an output.
type SensorInput struct {
	Enabled  bool `yaml:"enabled"`
	Reversed bool `yaml:"reversed"`
}

func (s SensorInput) term(v int32) int {
	switch {
	case !s.Enabled:
		return 0
	case s.Reversed:
		return -int(v)
	default:
		return int(v)
	}
}

// ChannelConfig configures one output.
type ChannelConfig struct {
	Name      string      `yaml:"name"`
	Sources   []Source    `yaml:"sources"`
	RollGyro  SensorInput `yaml:"roll_gyro"`
	PitchGyro SensorInput `yaml:"pitch_gyro"`
	YawGyro   SensorInput `yaml:"yaw_gyro"`
	RollAcc   SensorInput `yaml:"roll_acc"`
	PitchAcc  SensorInput `yaml:"pitch_acc"`
	Reverse   bool        `yaml:"reverse"`
	// Motor outputs are based at Min instead of Center and sit at Min when
	// disarmed.
	Motor    bool `yaml:"motor"`
	Min      int  `yaml:"min"`
	Max      int  `yaml:"max"`
	Trim     int  `yaml:"trim"`
	Failsafe int  `yaml:"failsafe"`
}

func (c *ChannelConfig) base() int {
	if c.Motor {
		return c.Min
	}
	return Center
}

func (c *ChannelConfig) validate() error {
	var errs []error
	if c.Min < MinPulse || c.Max > MaxPulse || c.Min > c.Max {
		errs = append(errs, fmt.Errorf("travel %d..%d outside %d..%d", c.Min, c.Max, MinPulse, MaxPulse))
	}
	if c.Failsafe < c.Min || c.Failsafe > c.Max {
		errs = append(errs, fmt.Errorf("failsafe %d outside travel", c.Failsafe))
	}
	for _, s := range c.Sources {
		if !s.Channel.Valid() {
			errs = append(errs, fmt.Errorf("source channel %d", s.Channel))
		}
		if s.Volume < -MaxVolume || s.Volume > MaxVolume {
			errs = append(errs, fmt.Errorf("volume %d%%", s.Volume))
		}
	}
	return errors.Join(errs...)
}

// Validate checks every channel configuration.
func Validate(channels []ChannelConfig) error {
	if len(channels) > MaxOutputs {
		return fmt.Errorf("%w: %d outputs, max %d", ErrBadChannel, len(channels), MaxOutputs)
	}
	var errs []error
	for i := range channels {
		if err := channels[i].validate(); err != nil {
			errs = append(errs, fmt.Errorf("%w %d (%s): %w", ErrBadChannel, i, channels[i].Name, err))
		}
	}
	return errors.Join(errs...)
}

// Mixer computes output pulses. The returned slices are reused on every
// call.
type Mixer struct {
	channels []ChannelConfig
	out      []int
}

// New returns a Mixer for channels.
func New(channels []ChannelConfig) *Mixer {
	m := &Mixer{}
	m.SetChannels(channels)
	return m
}

// SetChannels swaps the channel configuration. Call it between ticks only.
func (m *Mixer) SetChannels(channels []ChannelConfig) {
	m.channels = append(m.channels[:0], channels...)
	if cap(m.out) < len(channels) {
		m.out = make([]int, len(channels))
	}
	m.out = m.out[:len(channels)]
}

// Len returns the number of outputs.
func (m *Mixer) Len() int { return len(m.channels) }

// Mix returns one pulse width per output in microseconds.
func (m *Mixer) Mix(in rc.Normalized, corr pid.Output) []int {
	for i := range m.channels {
		c := &m.channels[i]
		v := 0
		for _, s := range c.Sources {
			v += mathx.RoundDiv(in[s.Channel]*s.Volume, 100)
		}
		v += c.RollGyro.term(corr.Gyro[pid.Roll])
		v += c.PitchGyro.term(corr.Gyro[pid.Pitch])
		v += c.YawGyro.term(corr.Gyro[pid.Yaw])
		v += c.RollAcc.term(corr.Acc[pid.Roll])
		v += c.PitchAcc.term(corr.Acc[pid.Pitch])
		if c.Reverse {
			v = -v
		}
		m.out[i] = mathx.Constrain(c.base()+c.Trim+v, c.Min, c.Max)
	}
	return m.out
}

// Failsafe returns every output's failsafe position.
func (m *Mixer) Failsafe() []int {
	for i := range m.channels {
		c := &m.channels[i]
		m.out[i] = mathx.Constrain(c.Failsafe, c.Min, c.Max)
	}
	return m.out
}

// Disarmed returns motors at Min and servos at their trimmed centre.
func (m *Mixer) Disarmed() []int {
	for i := range m.channels {
		c := &m.channels[i]
		if c.Motor {
			m.out[i] = c.Min
			continue
		}
		m.out[i] = mathx.Constrain(Center+c.Trim, c.Min, c.Max)
	}
	return m.out
}
