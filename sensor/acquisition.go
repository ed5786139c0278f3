package sensor

import "fmt"

const (
	// MinSamples is the smallest accepted calibration sample count.
	MinSamples = 16
	// DefaultSamples is the calibration sample count used when none is given.
	DefaultSamples = 32
)

// RawReader returns one hardware-order reading per call.
type RawReader interface {
	ReadGyro() (Vector, error)
	ReadAccel() (Vector, error)
}

// Sample is a reoriented, zeroed reading.
type Sample struct {
	Gyro Vector
	Acc  Vector
}

// Config configures an Acquisition.
type Config struct {
	Orientation Orientation `yaml:"orientation"`
	// OneG is the nominal accelerometer reading for 1G, used until both
	// accelerometer calibration passes have run.
	OneG int32 `yaml:"one_g"`
	// StableThreshold is the largest zeroed gyro reading accepted right
	// after calibration.
	StableThreshold int32 `yaml:"stable_threshold"`
}

// Calibration holds zero offsets in canonical axes.
type Calibration struct {
	Gyro Vector `yaml:"gyro"`
	Acc  Vector `yaml:"acc"`
	// NormalZ and InvertedZ are the Z readings averaged in the two resting
	// positions.
	NormalZ   int32 `yaml:"normal_z"`
	InvertedZ int32 `yaml:"inverted_z"`
	Normal    bool  `yaml:"normal"`
	Inverted  bool  `yaml:"inverted"`
}

// Acquisition reads, reorients and zeroes sensor samples.
type Acquisition struct {
	r         RawReader
	cfg       Config
	cal       Calibration
	sensorErr bool
}

// New returns an Acquisition over r.
func New(r RawReader, cfg Config) *Acquisition {
	return &Acquisition{r: r, cfg: cfg}
}

// SetConfig swaps the configuration. Calibration is kept.
func (a *Acquisition) SetConfig(cfg Config) { a.cfg = cfg }

// Calibration returns the current zero offsets.
func (a *Acquisition) Calibration() Calibration { return a.cal }

// SetCalibration restores previously stored zero offsets.
func (a *Acquisition) SetCalibration(c Calibration) {
	a.cal = c
	a.updateAccZ()
}

// Read returns a reoriented sample with zero offsets removed.
func (a *Acquisition) Read() (Sample, error) {
	g, acc, err := a.readRaw()
	if err != nil {
		return Sample{}, err
	}
	var s Sample
	for i := 0; i < NumAxes; i++ {
		s.Gyro[i] = g[i] - a.cal.Gyro[i]
		s.Acc[i] = acc[i] - a.cal.Acc[i]
	}
	return s, nil
}

func (a *Acquisition) readRaw() (Vector, Vector, error) {
	g, err := a.r.ReadGyro()
	if err != nil {
		return Vector{}, Vector{}, fmt.Errorf("sensor: read gyro: %w", err)
	}
	acc, err := a.r.ReadAccel()
	if err != nil {
		return Vector{}, Vector{}, fmt.Errorf("sensor: read accel: %w", err)
	}
	o := a.cfg.Orientation
	return o.Reorient(g), o.Reorient(acc), nil
}

// average reads n samples and returns the per-axis means.
func (a *Acquisition) average(n int) (gyro, acc Vector, err error) {
	if n == 0 {
		n = DefaultSamples
	}
	if n < MinSamples {
		return Vector{}, Vector{}, fmt.Errorf("%w: %d < %d", ErrTooFewSamples, n, MinSamples)
	}
	var gs, as [NumAxes]int64
	for i := 0; i < n; i++ {
		g, ac, err := a.readRaw()
		if err != nil {
			return Vector{}, Vector{}, err
		}
		for j := 0; j < NumAxes; j++ {
			gs[j] += int64(g[j])
			as[j] += int64(ac[j])
		}
	}
	for j := 0; j < NumAxes; j++ {
		gyro[j] = int32(gs[j] / int64(n))
		acc[j] = int32(as[j] / int64(n))
	}
	return gyro, acc, nil
}

// CalibrateGyro averages n stationary readings into the gyro zero, then
// takes one more reading and raises the sensor error if any axis is still
// outside the stability threshold.
func (a *Acquisition) CalibrateGyro(n int) error {
	g, _, err := a.average(n)
	if err != nil {
		return err
	}
	a.cal.Gyro = g
	s, err := a.Read()
	if err != nil {
		return err
	}
	for _, v := range s.Gyro {
		if v > a.cfg.StableThreshold || v < -a.cfg.StableThreshold {
			a.sensorErr = true
			break
		}
	}
	return nil
}

// CalibrateAccNormal averages n readings taken level and right way up.
func (a *Acquisition) CalibrateAccNormal(n int) error {
	_, acc, err := a.average(n)
	if err != nil {
		return err
	}
	a.cal.Acc[Roll] = acc[Roll]
	a.cal.Acc[Pitch] = acc[Pitch]
	a.cal.NormalZ = acc[Yaw]
	a.cal.Normal = true
	a.updateAccZ()
	return nil
}

// CalibrateAccInverted averages n Z readings taken level and upside down.
func (a *Acquisition) CalibrateAccInverted(n int) error {
	_, acc, err := a.average(n)
	if err != nil {
		return err
	}
	a.cal.InvertedZ = acc[Yaw]
	a.cal.Inverted = true
	a.updateAccZ()
	return nil
}

// updateAccZ places the Z zero midway between the normal and inverted
// readings once both exist. With only the normal pass the nominal 1G is
// assumed.
func (a *Acquisition) updateAccZ() {
	switch {
	case a.cal.Normal && a.cal.Inverted:
		a.cal.Acc[Yaw] = a.cal.NormalZ - (a.cal.NormalZ-a.cal.InvertedZ)/2
	case a.cal.Normal:
		a.cal.Acc[Yaw] = a.cal.NormalZ - a.cfg.OneG
	}
}

// OneG returns the measured 1G once both accelerometer passes have run and
// the configured nominal value otherwise.
func (a *Acquisition) OneG() int32 {
	if a.cal.Normal && a.cal.Inverted {
		if g := (a.cal.NormalZ - a.cal.InvertedZ) / 2; g > 0 {
			return g
		}
	}
	return a.cfg.OneG
}

// SensorError reports whether the last gyro calibration saw motion.
func (a *Acquisition) SensorError() bool { return a.sensorErr }

// ClearError acknowledges the sensor error.
func (a *Acquisition) ClearError() { a.sensorErr = false }
