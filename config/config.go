// Package config holds the flight controller configuration snapshot, its
// defaults and its consistency checks. The controller treats a Config as
// immutable and only swaps it between ticks.
package config

import (
	"errors"
	"fmt"

	"github.com/BryanSouza91/nextcopter/capture"
	"github.com/BryanSouza91/nextcopter/imu"
	"github.com/BryanSouza91/nextcopter/mixer"
	"github.com/BryanSouza91/nextcopter/pid"
	"github.com/BryanSouza91/nextcopter/rc"
	"github.com/BryanSouza91/nextcopter/sensor"
	"github.com/BryanSouza91/nextcopter/serialrx"
)

// Receiver protocols handled by pulse capture rather than serialrx.
const (
	ProtocolPWM  = "pwm"
	ProtocolCPPM = "cppm"
)

var ErrInvalid = errors.New("config: invalid configuration")

// Receiver configures RC input.
type Receiver struct {
	// Protocol is pwm, cppm or a serialrx protocol name.
	Protocol string `yaml:"protocol"`
	// Order is a channel order preset name.
	Order string `yaml:"order"`
	// Zero is the raw width read as centre for each logical channel.
	Zero              [rc.NumChannels]int `yaml:"zero"`
	ActivityThreshold int                 `yaml:"activity_threshold"`
	HandsFreeBand     int                 `yaml:"hands_free_band"`
	HandsFreeAxes     [2]rc.Channel       `yaml:"hands_free_axes"`
	// StickDeadband zeroes small aileron, elevator and rudder inputs before
	// they reach the stabilization law.
	StickDeadband int `yaml:"stick_deadband"`
	// LinkTimeoutMs is the silence after which the link counts as lost.
	LinkTimeoutMs uint32 `yaml:"link_timeout_ms"`
	MinPulse      uint16 `yaml:"min_pulse"`
	MaxPulse      uint16 `yaml:"max_pulse"`
	SyncGap       uint16 `yaml:"sync_gap"`
}

// PID holds both flight profiles and the shared scale constants.
type PID struct {
	Profiles [2]pid.Profile `yaml:"profiles"`
	Scale    pid.Scale      `yaml:"scale"`
	// ProfileChannel selects profile 1 while above Arming.High.
	ProfileChannel rc.Channel `yaml:"profile_channel"`
	DynGainChannel rc.Channel `yaml:"dyn_gain_channel"`
}

// Mixer configures the outputs.
type Mixer struct {
	Channels []mixer.ChannelConfig `yaml:"channels"`
}

// Loop configures the control loop.
type Loop struct {
	RateHz int `yaml:"rate_hz"`
}

// Arming configures the switch channels. Values are normalized.
type Arming struct {
	Channel          rc.Channel `yaml:"channel"`
	CalibrateChannel rc.Channel `yaml:"calibrate_channel"`
	High             int        `yaml:"high"`
	// CalibrationSamples is the averaging count for gyro and accelerometer
	// calibration.
	CalibrationSamples int `yaml:"calibration_samples"`
	// RefuseOnSensorError holds the controller disarmed while a calibration
	// sensor error is flagged. Off by default; the error is only reported.
	RefuseOnSensorError bool `yaml:"refuse_on_sensor_error"`
}

// Config is the full configuration snapshot.
type Config struct {
	Receiver    Receiver           `yaml:"receiver"`
	Sensor      sensor.Config      `yaml:"sensor"`
	Calibration sensor.Calibration `yaml:"calibration"`
	IMU         imu.Config         `yaml:"imu"`
	PID         PID                `yaml:"pid"`
	Mixer       Mixer              `yaml:"mixer"`
	Loop        Loop               `yaml:"loop"`
	Arming      Arming             `yaml:"arming"`
	Debug       bool               `yaml:"debug"`
}

// Default returns a flying wing on a CRSF receiver with the on-board IMU.
func Default() Config {
	var zero [rc.NumChannels]int
	for i := range zero {
		zero[i] = 1500
	}
	zero[rc.Throttle] = 1000

	rate := pid.Profile{
		Mode:      [pid.NumAxes]pid.Mode{pid.Rate, pid.Rate, pid.Rate},
		StickSign: [pid.NumAxes]int8{1, 1, 1},
	}
	for a := range rate.Axes {
		rate.Axes[a] = pid.Gains{P: 80, I: 50, D: 0, ILimit: 2000, Deadband: 2, RateShift: 2}
	}
	// the level profile drops the roll and pitch integral, which would
	// otherwise hold the attitude the model had when armed
	level := rate
	level.AutoLevel = true
	for _, a := range []pid.Axis{pid.Roll, pid.Pitch} {
		level.Axes[a].I = 0
		level.Axes[a].AccGain = 64
	}

	return Config{
		Receiver: Receiver{
			Protocol:          serialrx.ProtocolCRSF.String(),
			Order:             "futaba",
			Zero:              zero,
			ActivityThreshold: 20,
			HandsFreeBand:     30,
			HandsFreeAxes:     [2]rc.Channel{rc.Aileron, rc.Elevator},
			StickDeadband:     4,
			LinkTimeoutMs:     500,
			MinPulse:          capture.DefaultMinPulse,
			MaxPulse:          capture.DefaultMaxPulse,
			SyncGap:           capture.DefaultSyncGap,
		},
		Sensor: sensor.Config{Orientation: sensor.Up, OneG: 500, StableThreshold: 6},
		IMU:    imu.Config{Variant: imu.GravityVector, LPF: 8, Weight: 50, OneG: 500, GyroScale: 0.5},
		PID: PID{
			Profiles:       [2]pid.Profile{rate, level},
			Scale:          pid.DefaultScale,
			ProfileChannel: rc.Aux1,
			DynGainChannel: rc.Aux2,
		},
		Mixer:  Mixer{Channels: mixer.FlyingWing()},
		Loop:   Loop{RateHz: 400},
		Arming: Arming{Channel: rc.Gear, CalibrateChannel: rc.Aux3, High: 300, CalibrationSamples: 32},
	}
}

// ChannelOrder resolves the channel order preset.
func (r Receiver) ChannelOrder() (rc.Order, error) { return rc.LookupOrder(r.Order) }

// Limits returns the pulse capture limits.
func (r Receiver) Limits() capture.Limits {
	return capture.Limits{MinPulse: r.MinPulse, MaxPulse: r.MaxPulse}
}

// Normalizer returns the normalizer settings.
func (r Receiver) Normalizer() rc.NormalizerConfig {
	return rc.NormalizerConfig{
		Zero:              r.Zero,
		ActivityThreshold: r.ActivityThreshold,
		HandsFreeBand:     r.HandsFreeBand,
		HandsFreeAxes:     r.HandsFreeAxes,
	}
}

// Serial reports whether the receiver is a byte-stream protocol, and which.
func (r Receiver) Serial() (serialrx.Protocol, bool) {
	p, err := serialrx.ParseProtocol(r.Protocol)
	return p, err == nil
}

// Validate reports every inconsistency in c. The controller refuses to run
// with a configuration that fails here.
func (c Config) Validate() error {
	var errs []error
	add := func(section string, err error) {
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %s: %w", ErrInvalid, section, err))
		}
	}

	r := c.Receiver
	if _, serial := r.Serial(); !serial && r.Protocol != ProtocolPWM && r.Protocol != ProtocolCPPM {
		add("receiver.protocol", fmt.Errorf("unknown protocol %q", r.Protocol))
	}
	if o, err := r.ChannelOrder(); err != nil {
		add("receiver.order", err)
	} else {
		add("receiver.order", o.Validate())
	}
	if r.MinPulse == 0 || r.MinPulse >= r.MaxPulse {
		add("receiver", fmt.Errorf("pulse limits %d..%d", r.MinPulse, r.MaxPulse))
	}
	if r.Protocol == ProtocolCPPM && r.SyncGap <= r.MaxPulse {
		add("receiver.sync_gap", fmt.Errorf("%d does not exceed max pulse %d", r.SyncGap, r.MaxPulse))
	}
	if r.StickDeadband < 0 || r.ActivityThreshold < 0 || r.HandsFreeBand < 0 {
		add("receiver", errors.New("negative threshold"))
	}
	if r.LinkTimeoutMs == 0 {
		add("receiver.link_timeout_ms", errors.New("must be positive"))
	}
	for _, ch := range r.HandsFreeAxes {
		if !ch.Valid() {
			add("receiver.hands_free_axes", rc.ErrUnknownChannel)
		}
	}

	if c.Sensor.Orientation >= sensor.OrientationCount {
		add("sensor.orientation", sensor.ErrBadOrientation)
	}
	if c.Sensor.OneG <= 0 {
		add("sensor.one_g", errors.New("must be positive"))
	}
	add("imu", c.IMU.Validate())

	for i, p := range c.PID.Profiles {
		add(fmt.Sprintf("pid.profiles[%d]", i), p.Validate())
	}
	add("pid.scale", c.PID.Scale.Validate())
	if !c.PID.ProfileChannel.Valid() || !c.PID.DynGainChannel.Valid() {
		add("pid", rc.ErrUnknownChannel)
	}

	if len(c.Mixer.Channels) == 0 {
		add("mixer", errors.New("no outputs"))
	}
	add("mixer", mixer.Validate(c.Mixer.Channels))

	if c.Loop.RateHz < 50 || c.Loop.RateHz > 2000 {
		add("loop.rate_hz", fmt.Errorf("%d outside 50..2000", c.Loop.RateHz))
	}
	if !c.Arming.Channel.Valid() || !c.Arming.CalibrateChannel.Valid() {
		add("arming", rc.ErrUnknownChannel)
	}
	if c.Arming.High <= 0 {
		add("arming.high", errors.New("must be positive"))
	}
	if n := c.Arming.CalibrationSamples; n != 0 && n < sensor.MinSamples {
		add("arming.calibration_samples", sensor.ErrTooFewSamples)
	}
	return errors.Join(errs...)
}

// LoopPeriodUs returns the control loop period in microseconds.
func (c Config) LoopPeriodUs() uint32 { return uint32(1000000 / c.Loop.RateHz) }
