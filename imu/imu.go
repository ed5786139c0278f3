// Package imu estimates roll and pitch with a complementary filter: gyro
// rates are integrated every tick and pulled toward the accelerometer tilt
// whenever the measured acceleration is close to 1G.
package imu

import (
	"errors"
	"math"

	"github.com/BryanSouza91/nextcopter/sensor"
)

// Variant selects the filter state representation.
type Variant uint8

const (
	// GravityVector rotates an estimated gravity vector by the gyro rates and
	// blends it toward the smoothed accelerometer vector.
	GravityVector Variant = iota
	// AngleIntegrator keeps integrated roll and pitch angles and blends them
	// toward the accelerometer-derived angles.
	AngleIntegrator
)

var variantNames = [...]string{"gravity", "angle"}

func (v Variant) String() string {
	if int(v) < len(variantNames) {
		return variantNames[v]
	}
	return "invalid"
}

// ParseVariant returns the variant with the given name.
func ParseVariant(name string) (Variant, error) {
	for i, n := range variantNames {
		if n == name {
			return Variant(i), nil
		}
	}
	return 0, ErrBadVariant
}

// MarshalText implements encoding.TextMarshaler.
func (v Variant) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Variant) UnmarshalText(b []byte) error {
	p, err := ParseVariant(string(b))
	if err != nil {
		return err
	}
	*v = p
	return nil
}

var (
	ErrBadVariant = errors.New("imu: unknown filter variant")
	ErrBadConfig  = errors.New("imu: invalid configuration")
)

// Config configures an Estimator.
type Config struct {
	Variant Variant `yaml:"variant"`
	// LPF is the accelerometer smoothing divisor; 1 passes samples through.
	LPF int32 `yaml:"lpf"`
	// Weight is the complementary filter weight; larger trusts the gyro more.
	Weight int32 `yaml:"weight"`
	// OneG is the accelerometer reading for 1G.
	OneG int32 `yaml:"one_g"`
	// GyroScale is degrees per second per gyro unit.
	GyroScale float32 `yaml:"gyro_scale"`
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Variant > AngleIntegrator || c.LPF < 1 || c.Weight < 0 || c.OneG <= 0 || c.GyroScale <= 0 {
		return ErrBadConfig
	}
	return nil
}

// Attitude is roll and pitch in tenths of a degree. Roll spans ±1800 so that
// inverted flight reads as |roll| > 900 with pitch kept within ±900.
type Attitude struct {
	Roll  int16
	Pitch int16
}

type state uint8

const (
	uninitialized state = iota
	running
)

// Estimator is the complementary filter.
type Estimator struct {
	cfg    Config
	lo, hi int64

	state     state
	accSmooth [sensor.NumAxes]int32
	// est is the gravity vector in accelerometer units, or roll and pitch
	// in degrees, depending on the variant.
	est   [sensor.NumAxes]float32
	gated bool
	att   Attitude
}

// New returns an Estimator in the level state.
func New(cfg Config) *Estimator {
	e := &Estimator{}
	e.SetConfig(cfg)
	return e
}

// SetConfig swaps the configuration and resets the filter.
func (e *Estimator) SetConfig(cfg Config) {
	e.cfg = cfg
	g := int64(cfg.OneG)
	// 0.85G² and 1.15G²
	e.lo = g * g * 85 * 85 / 10000
	e.hi = g * g * 115 * 115 / 10000
	e.Reset()
}

// Reset returns the filter to the level state.
func (e *Estimator) Reset() {
	e.state = uninitialized
	e.accSmooth = [sensor.NumAxes]int32{}
	e.est = [sensor.NumAxes]float32{}
	if e.cfg.Variant == GravityVector {
		e.est[sensor.Yaw] = float32(e.cfg.OneG)
	}
	e.gated = false
	e.att = Attitude{}
}

// Running reports whether an update has run since the last reset.
func (e *Estimator) Running() bool { return e.state == running }

// Gated reports whether the last update skipped the accelerometer correction.
func (e *Estimator) Gated() bool { return e.gated }

// Attitude returns the latest estimate.
func (e *Estimator) Attitude() Attitude { return e.att }

// Update advances the filter by dtUs microseconds using s.
func (e *Estimator) Update(s sensor.Sample, dtUs uint32) Attitude {
	if e.state == uninitialized {
		e.accSmooth = s.Acc
		e.state = running
	} else {
		lpf := e.cfg.LPF
		if lpf < 1 {
			lpf = 1
		}
		for a := range e.accSmooth {
			e.accSmooth[a] += (s.Acc[a] - e.accSmooth[a]) / lpf
		}
	}

	var mag int64
	for _, v := range e.accSmooth {
		mag += int64(v) * int64(v)
	}
	e.gated = mag < e.lo || mag > e.hi

	// degrees turned this tick
	dt := float32(dtUs) * 1e-6 * e.cfg.GyroScale
	var turn [sensor.NumAxes]float32
	for a := range turn {
		turn[a] = float32(s.Gyro[a]) * dt
	}

	switch e.cfg.Variant {
	case AngleIntegrator:
		e.updateAngles(turn)
	default:
		e.updateVector(turn)
	}
	return e.att
}

func (e *Estimator) blend(est, target float32) float32 {
	w := float32(e.cfg.Weight)
	return (est*w + target) / (w + 1)
}

func (e *Estimator) updateVector(turn [sensor.NumAxes]float32) {
	const rad = math.Pi / 180
	wx, wy, wz := turn[0]*rad, turn[1]*rad, turn[2]*rad
	v := e.est
	// a world-fixed vector seen from the body turns against the body rates
	e.est[0] = v[0] - (wy*v[2] - wz*v[1])
	e.est[1] = v[1] - (wz*v[0] - wx*v[2])
	e.est[2] = v[2] - (wx*v[1] - wy*v[0])

	if e.gated {
		// keep the length steady while running on the gyro alone
		n := float32(math.Sqrt(float64(e.est[0]*e.est[0] + e.est[1]*e.est[1] + e.est[2]*e.est[2])))
		if n > 1 {
			k := float32(e.cfg.OneG) / n
			for a := range e.est {
				e.est[a] *= k
			}
		}
	} else {
		for a := range e.est {
			e.est[a] = e.blend(e.est[a], float32(e.accSmooth[a]))
		}
	}

	x, y, z := float64(e.est[0]), float64(e.est[1]), float64(e.est[2])
	roll := math.Atan2(y, z) * 180 / math.Pi
	pitch := math.Atan2(-x, math.Sqrt(y*y+z*z)) * 180 / math.Pi
	e.att = Attitude{Roll: tenths(float32(roll)), Pitch: tenths(float32(pitch))}
}

func (e *Estimator) updateAngles(turn [sensor.NumAxes]float32) {
	roll := e.est[sensor.Roll] + turn[sensor.Roll]
	pitch := e.est[sensor.Pitch] + turn[sensor.Pitch]

	if !e.gated {
		accRoll, accPitch := tilt(e.accSmooth)
		// blend along the short way round the ±180 boundary
		roll += e.blend(0, wrap180(accRoll-roll))
		pitch = e.blend(pitch, accPitch)
	}
	e.est[sensor.Roll] = wrap180(roll)
	e.est[sensor.Pitch] = clamp90(pitch)
	e.att = Attitude{Roll: tenths(e.est[sensor.Roll]), Pitch: tenths(e.est[sensor.Pitch])}
}

// tilt returns the roll and pitch in degrees implied by an accelerometer
// reading.
func tilt(acc [sensor.NumAxes]int32) (roll, pitch float32) {
	x, y, z := float64(acc[0]), float64(acc[1]), float64(acc[2])
	roll = float32(math.Atan2(y, z) * 180 / math.Pi)
	pitch = float32(math.Atan2(-x, math.Sqrt(y*y+z*z)) * 180 / math.Pi)
	return roll, pitch
}

func wrap180(d float32) float32 {
	for d > 180 {
		d -= 360
	}
	for d <= -180 {
		d += 360
	}
	return d
}

func clamp90(d float32) float32 {
	if d > 90 {
		return 90
	}
	if d < -90 {
		return -90
	}
	return d
}

func tenths(deg float32) int16 {
	t := deg * 10
	if t >= 0 {
		t += 0.5
	} else {
		t -= 0.5
	}
	return int16(t)
}
