package config

import (
	"errors"
	"testing"

	"github.com/BryanSouza91/nextcopter/imu"
	"github.com/BryanSouza91/nextcopter/mixer"
	"github.com/BryanSouza91/nextcopter/rc"
	"github.com/BryanSouza91/nextcopter/serialrx"
)

func TestDefaultValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown protocol", func(c *Config) { c.Receiver.Protocol = "dsm9" }},
		{"unknown order", func(c *Config) { c.Receiver.Order = "graupner" }},
		{"pulse limits", func(c *Config) { c.Receiver.MinPulse = 2300 }},
		{"cppm sync gap", func(c *Config) {
			c.Receiver.Protocol = ProtocolCPPM
			c.Receiver.SyncGap = 2000
		}},
		{"link timeout", func(c *Config) { c.Receiver.LinkTimeoutMs = 0 }},
		{"hands free axis", func(c *Config) { c.Receiver.HandsFreeAxes[1] = rc.Channel(9) }},
		{"one g", func(c *Config) { c.Sensor.OneG = 0 }},
		{"imu weight", func(c *Config) { c.IMU.Weight = -1 }},
		{"imu variant", func(c *Config) { c.IMU.Variant = imu.Variant(7) }},
		{"pid scale", func(c *Config) { c.PID.Scale.PShift = 40 }},
		{"no outputs", func(c *Config) { c.Mixer.Channels = nil }},
		{"bad output", func(c *Config) { c.Mixer.Channels[0].Min = 100 }},
		{"loop rate", func(c *Config) { c.Loop.RateHz = 10 }},
		{"arming channel", func(c *Config) { c.Arming.Channel = rc.Channel(8) }},
		{"arming high", func(c *Config) { c.Arming.High = 0 }},
		{"calibration samples", func(c *Config) { c.Arming.CalibrationSamples = 4 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Mixer.Channels = mixer.FlyingWing()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrInvalid) {
				t.Fatalf("Validate() = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestValidateCollectsAll(t *testing.T) {
	cfg := Default()
	cfg.Loop.RateHz = 0
	cfg.Arming.High = -1
	err := cfg.Validate()
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		t.Fatalf("Validate() = %v, want joined errors", err)
	}
	if n := len(joined.Unwrap()); n != 2 {
		t.Errorf("got %d errors, want 2: %v", n, err)
	}
}

func TestReceiverHelpers(t *testing.T) {
	r := Default().Receiver
	if p, ok := r.Serial(); !ok || p != serialrx.ProtocolCRSF {
		t.Errorf("Serial() = %v, %v", p, ok)
	}
	r.Protocol = ProtocolCPPM
	if _, ok := r.Serial(); ok {
		t.Error("cppm reported as serial")
	}
	o, err := r.ChannelOrder()
	if err != nil || o != rc.OrderFutaba {
		t.Errorf("ChannelOrder() = %v, %v", o, err)
	}
	n := r.Normalizer()
	if n.Zero[rc.Throttle] != 1000 || n.HandsFreeAxes != r.HandsFreeAxes {
		t.Errorf("Normalizer() = %+v", n)
	}
	if l := r.Limits(); l.MinPulse != r.MinPulse || l.MaxPulse != r.MaxPulse {
		t.Errorf("Limits() = %+v", l)
	}
}

func TestLoopPeriod(t *testing.T) {
	cfg := Default()
	for _, tt := range []struct {
		hz   int
		want uint32
	}{{400, 2500}, {50, 20000}, {1000, 1000}} {
		cfg.Loop.RateHz = tt.hz
		if got := cfg.LoopPeriodUs(); got != tt.want {
			t.Errorf("LoopPeriodUs(%d Hz) = %d, want %d", tt.hz, got, tt.want)
		}
	}
}
