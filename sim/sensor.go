package sim

import (
	"math"
	"math/rand"

	"github.com/BryanSouza91/nextcopter/sensor"
)

// Sensor reads a Vehicle like a board-mounted IMU. It implements
// sensor.RawReader.
type Sensor struct {
	Vehicle     *Vehicle
	Orientation sensor.Orientation
	// OneG is the accelerometer reading for 1G.
	OneG float64
	// GyroScale is deg/s per gyro unit.
	GyroScale float64
	// Biases are in hardware axes.
	GyroBias sensor.Vector
	AccBias  sensor.Vector
	// GyroDrift is added to GyroBias on every gyro read, to model a board
	// that is moving or warming up.
	GyroDrift sensor.Vector
	// Noise is the peak of the uniform noise added to every axis.
	Noise int32
	// Err, when set, is returned by every read.
	Err error

	rng *rand.Rand
}

// NewSensor returns a noiseless sensor with the LSM6DS3TR scaling: 1G reads
// 500 and one unit is 0.5 deg/s.
func NewSensor(v *Vehicle) *Sensor {
	return &Sensor{Vehicle: v, OneG: 500, GyroScale: 0.5, rng: rand.New(rand.NewSource(1))}
}

func (s *Sensor) ReadGyro() (sensor.Vector, error) {
	if s.Err != nil {
		return sensor.Vector{}, s.Err
	}
	var c sensor.Vector
	for a := range c {
		c[a] = int32(math.Round(s.Vehicle.Rate[a]/s.GyroScale)) + s.noise()
	}
	for a := range s.GyroBias {
		s.GyroBias[a] += s.GyroDrift[a]
	}
	return add(s.Orientation.Unorient(c), s.GyroBias), nil
}

// ReadAccel returns gravity seen from the body. The model does not
// accelerate.
func (s *Sensor) ReadAccel() (sensor.Vector, error) {
	if s.Err != nil {
		return sensor.Vector{}, s.Err
	}
	const rad = math.Pi / 180
	roll, pitch := s.Vehicle.Angle[Roll]*rad, s.Vehicle.Angle[Pitch]*rad
	g := [3]float64{
		-math.Sin(pitch),
		math.Sin(roll) * math.Cos(pitch),
		math.Cos(roll) * math.Cos(pitch),
	}
	var c sensor.Vector
	for a := range c {
		c[a] = int32(math.Round(g[a]*s.OneG)) + s.noise()
	}
	return add(s.Orientation.Unorient(c), s.AccBias), nil
}

func (s *Sensor) noise() int32 {
	if s.Noise <= 0 {
		return 0
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(1))
	}
	return s.rng.Int31n(2*s.Noise+1) - s.Noise
}

func add(a, b sensor.Vector) sensor.Vector {
	for i := range a {
		a[i] += b[i]
	}
	return a
}
