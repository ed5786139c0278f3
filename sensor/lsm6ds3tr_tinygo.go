//go:build tinygo

package sensor

import (
	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/lsm6ds3tr"
)

const (
	// µdps per gyro unit: 0.5 deg/s
	gyroMicroDPS = 500000
	// µg per accelerometer unit: 1G reads 500
	accMicroG = 2000
	// LSM6DS3TROneG is the nominal 1G reading of LSM6DS3TR.
	LSM6DS3TROneG = 1000000 / accMicroG
)

// LSM6DS3TR reads the on-board ST IMU over I2C.
type LSM6DS3TR struct {
	dev *lsm6ds3tr.Device
}

// NewLSM6DS3TR configures the device at ±8G and 1000 deg/s.
func NewLSM6DS3TR(bus drivers.I2C) (*LSM6DS3TR, error) {
	dev := lsm6ds3tr.New(bus)
	err := dev.Configure(lsm6ds3tr.Configuration{
		AccelRange:      lsm6ds3tr.ACCEL_8G,
		AccelSampleRate: lsm6ds3tr.ACCEL_SR_104,
		GyroRange:       lsm6ds3tr.GYRO_1000DPS,
		GyroSampleRate:  lsm6ds3tr.GYRO_SR_104,
	})
	if err != nil {
		return nil, err
	}
	if !dev.Connected() {
		return nil, ErrNotConnected
	}
	return &LSM6DS3TR{dev: dev}, nil
}

func (s *LSM6DS3TR) ReadGyro() (Vector, error) {
	x, y, z, err := s.dev.ReadRotation()
	if err != nil {
		return Vector{}, err
	}
	return Vector{x / gyroMicroDPS, y / gyroMicroDPS, z / gyroMicroDPS}, nil
}

func (s *LSM6DS3TR) ReadAccel() (Vector, error) {
	x, y, z, err := s.dev.ReadAcceleration()
	if err != nil {
		return Vector{}, err
	}
	return Vector{x / accMicroG, y / accMicroG, z / accMicroG}, nil
}
