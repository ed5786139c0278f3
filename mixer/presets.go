package mixer

import "github.com/BryanSouza91/nextcopter/rc"

var (
	gyroOn  = SensorInput{Enabled: true}
	gyroRev = SensorInput{Enabled: true, Reversed: true}
)

// FlyingWing is the elevon layout: throttle, then left and right elevons
// each mixing aileron and elevator with roll and pitch stabilization.
func FlyingWing() []ChannelConfig {
	return []ChannelConfig{
		{
			Name:    "esc",
			Sources: []Source{{rc.Throttle, 100}},
			Motor:   true, Min: 1000, Max: 2000, Failsafe: 1000,
		},
		{
			Name:     "elevon-left",
			Sources:  []Source{{rc.Aileron, 50}, {rc.Elevator, 50}},
			RollGyro: gyroRev, PitchGyro: gyroRev, RollAcc: gyroRev, PitchAcc: gyroRev,
			Min: 1000, Max: 2000, Failsafe: 1500,
		},
		{
			Name:     "elevon-right",
			Sources:  []Source{{rc.Aileron, -50}, {rc.Elevator, 50}},
			RollGyro: gyroOn, PitchGyro: gyroRev, RollAcc: gyroOn, PitchAcc: gyroRev,
			Min: 1000, Max: 2000, Failsafe: 1500,
		},
	}
}

// Aeroplane is a conventional layout: throttle, aileron, elevator, rudder.
func Aeroplane() []ChannelConfig {
	return []ChannelConfig{
		{Name: "esc", Sources: []Source{{rc.Throttle, 100}}, Motor: true, Min: 1000, Max: 2000, Failsafe: 1000},
		{Name: "aileron", Sources: []Source{{rc.Aileron, 100}}, RollGyro: gyroRev, RollAcc: gyroRev, Min: 1000, Max: 2000, Failsafe: 1500},
		{Name: "elevator", Sources: []Source{{rc.Elevator, 100}}, PitchGyro: gyroRev, PitchAcc: gyroRev, Min: 1000, Max: 2000, Failsafe: 1500},
		{Name: "rudder", Sources: []Source{{rc.Rudder, 100}}, YawGyro: gyroRev, Min: 1000, Max: 2000, Failsafe: 1500},
	}
}

var presets = map[string]func() []ChannelConfig{
	"wing":      FlyingWing,
	"aeroplane": Aeroplane,
}

// Preset returns a named channel layout.
func Preset(name string) ([]ChannelConfig, bool) {
	f, ok := presets[name]
	if !ok {
		return nil, false
	}
	return f(), true
}
