// Package pid is the per-axis stabilization law: a PID on gyro rate with a
// stick-rate term, rate and lock modes, a stick-conditional integral clamp,
// optional dynamic gain and an auto-level accelerometer term.
package pid

import (
	"errors"
	"fmt"
	"math"

	"github.com/BryanSouza91/nextcopter/mathx"
)

// Axis indexes the control axes.
type Axis int

const (
	Roll Axis = iota
	Pitch
	Yaw

	NumAxes = 3
	// LevelAxes are the axes with an auto-level term.
	LevelAxes = 2
)

// Mode selects how the stick enters the proportional error.
type Mode uint8

const (
	// Rate passes the stick straight to the mixer; the gyro loop damps
	// rotation and the integral holds the commanded rate.
	Rate Mode = iota
	// Lock subtracts the stick rate from the gyro error too, giving
	// heading-hold behaviour.
	Lock
)

var modeNames = [...]string{"rate", "lock"}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return "invalid"
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(b []byte) error {
	for i, n := range modeNames {
		if n == string(b) {
			*m = Mode(i)
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrBadMode, b)
}

var (
	ErrBadMode    = errors.New("pid: unknown mode")
	ErrBadProfile = errors.New("pid: invalid profile")
)

// Gains are the per-axis tuning values.
type Gains struct {
	P int32 `yaml:"p"`
	I int32 `yaml:"i"`
	D int32 `yaml:"d"`
	// ILimit bounds the integral while the stick is off centre.
	ILimit int32 `yaml:"i_limit"`
	// Deadband zeroes gyro readings of this magnitude or less.
	Deadband int32 `yaml:"deadband"`
	// RateShift divides the stick input by 1<<RateShift to form the stick
	// rate.
	RateShift uint8 `yaml:"rate_shift"`
	// AccGain and AccTrim shape the auto-level term (roll and pitch only).
	// AccTrim is in tenths of a degree.
	AccGain int32 `yaml:"acc_gain"`
	AccTrim int32 `yaml:"acc_trim"`
}

// Scale holds the fixed-point multipliers and shifts that bring each term
// onto the output pulse span in microseconds.
type Scale struct {
	PMul     int32 `yaml:"p_mul"`
	PShift   uint8 `yaml:"p_shift"`
	IMul     int32 `yaml:"i_mul"`
	IShift   uint8 `yaml:"i_shift"`
	DMul     int32 `yaml:"d_mul"`
	DShift   uint8 `yaml:"d_shift"`
	AccShift uint8 `yaml:"acc_shift"`
}

// DefaultScale puts a full-gain gyro correction within ±500 µs for the
// 0.5 deg/s gyro unit.
var DefaultScale = Scale{
	PMul: 3, PShift: 7,
	IMul: 1, IShift: 10,
	DMul: 1, DShift: 5,
	AccShift: 6,
}

// DynGain scales the gyro correction by an RC channel.
type DynGain struct {
	Enabled bool `yaml:"enabled"`
	// Offset is added to the normalized channel value; the sum is clamped
	// to [0, Max] and divided by Max.
	Offset int32 `yaml:"offset"`
	Max    int32 `yaml:"max"`
}

// Profile is one complete set of tuning values.
type Profile struct {
	Axes      [NumAxes]Gains `yaml:"axes"`
	Mode      [NumAxes]Mode  `yaml:"mode"`
	StickSign [NumAxes]int8  `yaml:"stick_sign"`
	AutoLevel bool           `yaml:"auto_level"`
	// AutoCenter walks the integral back to zero one step per tick while
	// the stick is centred, for camera stabilization.
	AutoCenter bool    `yaml:"auto_center"`
	DynGain    DynGain `yaml:"dyn_gain"`
}

// Validate rejects profiles that would misbehave at run time.
func (p Profile) Validate() error {
	var errs []error
	for a, g := range p.Axes {
		if g.ILimit < 0 || g.Deadband < 0 {
			errs = append(errs, fmt.Errorf("%w: axis %d: negative limit", ErrBadProfile, a))
		}
		if g.RateShift > 15 {
			errs = append(errs, fmt.Errorf("%w: axis %d: rate shift %d", ErrBadProfile, a, g.RateShift))
		}
		if p.Mode[a] > Lock {
			errs = append(errs, fmt.Errorf("%w: axis %d: mode %d", ErrBadProfile, a, p.Mode[a]))
		}
		if s := p.StickSign[a]; s != 1 && s != -1 {
			errs = append(errs, fmt.Errorf("%w: axis %d: stick sign %d", ErrBadProfile, a, s))
		}
	}
	if p.DynGain.Enabled && p.DynGain.Max <= 0 {
		errs = append(errs, fmt.Errorf("%w: dynamic gain max must be positive", ErrBadProfile))
	}
	return errors.Join(errs...)
}

// Validate rejects shifts that overflow a 32-bit term.
func (s Scale) Validate() error {
	for _, sh := range []uint8{s.PShift, s.IShift, s.DShift, s.AccShift} {
		if sh > 30 {
			return fmt.Errorf("%w: shift %d", ErrBadProfile, sh)
		}
	}
	return nil
}

// Input is one tick of law input.
type Input struct {
	// Gyro is the zeroed rate per axis in sensor units.
	Gyro [NumAxes]int32
	// Stick is the normalized RC input for aileron, elevator and rudder.
	Stick [NumAxes]int32
	// Angle is the estimated roll and pitch in tenths of a degree.
	Angle [LevelAxes]int32
	// DynGain is the normalized value of the dynamic gain channel.
	DynGain int32
}

// Output holds the corrections handed to the mixer, plus the individual
// terms for telemetry.
type Output struct {
	Gyro [NumAxes]int32
	Acc  [LevelAxes]int32

	P, I, D [NumAxes]int32
}

// Law holds the integral and derivative memory for one profile.
type Law struct {
	profile  Profile
	scale    Scale
	integral [NumAxes]int64
	prev     [NumAxes]int32
}

// New returns a Law for profile p.
func New(p Profile, s Scale) *Law {
	return &Law{profile: p, scale: s}
}

// SetProfile swaps the profile and clears the controller memory.
func (l *Law) SetProfile(p Profile, s Scale) {
	l.profile, l.scale = p, s
	l.Reset()
}

// Profile returns the active profile.
func (l *Law) Profile() Profile { return l.profile }

// Reset clears the integral and derivative memory.
func (l *Law) Reset() {
	l.integral = [NumAxes]int64{}
	l.prev = [NumAxes]int32{}
}

// Integral returns the integral accumulator for axis a.
func (l *Law) Integral(a Axis) int64 { return l.integral[a] }

// Update runs one tick of the law.
func (l *Law) Update(in Input) Output {
	var out Output
	p, sc := &l.profile, &l.scale

	for a := 0; a < NumAxes; a++ {
		g := &p.Axes[a]
		gyro := mathx.Deadband(in.Gyro[a], g.Deadband)
		stick := in.Stick[a] * int32(p.StickSign[a])
		stickRate := stick >> g.RateShift

		l.integral[a] += int64(gyro) - int64(stickRate)
		if stick != 0 {
			lim := int64(g.ILimit)
			l.integral[a] = mathx.Constrain(l.integral[a], -lim, lim)
		} else if p.AutoCenter {
			switch {
			case l.integral[a] > 0:
				l.integral[a]--
			case l.integral[a] < 0:
				l.integral[a]++
			}
		}

		perr := gyro
		if p.Mode[a] == Lock {
			perr -= stickRate
		}

		pt := int64(perr) * int64(g.P) * int64(sc.PMul) >> sc.PShift
		it := l.integral[a] * int64(g.I) * int64(sc.IMul) >> sc.IShift
		dt := int64(gyro-l.prev[a]) * int64(g.D) * int64(sc.DMul) >> sc.DShift
		l.prev[a] = gyro

		out.P[a], out.I[a], out.D[a] = sat32(pt), sat32(it), sat32(dt)
		sum := pt + it + dt

		if p.DynGain.Enabled && p.DynGain.Max > 0 {
			dyn := mathx.Constrain(in.DynGain+p.DynGain.Offset, 0, p.DynGain.Max)
			sum = sum * int64(dyn) / int64(p.DynGain.Max)
		}
		out.Gyro[a] = sat32(sum)
	}

	if p.AutoLevel {
		for a := 0; a < LevelAxes; a++ {
			g := &p.Axes[a]
			acc := int64(in.Angle[a]-g.AccTrim) * int64(g.AccGain) >> sc.AccShift
			out.Acc[a] = sat32(acc)
		}
	}
	return out
}

func sat32(v int64) int32 {
	return int32(mathx.Constrain(v, math.MinInt32, math.MaxInt32))
}
