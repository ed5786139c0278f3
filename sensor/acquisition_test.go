package sensor

import (
	"errors"
	"testing"
)

type mockReader struct {
	gyro, acc Vector
	// after is returned by ReadGyro once calls reaches switchAt.
	after    Vector
	switchAt int
	calls    int
	err      error
}

func (m *mockReader) ReadGyro() (Vector, error) {
	m.calls++
	if m.switchAt > 0 && m.calls > m.switchAt {
		return m.after, m.err
	}
	return m.gyro, m.err
}

func (m *mockReader) ReadAccel() (Vector, error) { return m.acc, m.err }

func TestCalibrateGyro(t *testing.T) {
	r := &mockReader{gyro: Vector{12, -4, 7}, acc: Vector{0, 0, 500}}
	a := New(r, Config{OneG: 500, StableThreshold: 3})
	if err := a.CalibrateGyro(32); err != nil {
		t.Fatal(err)
	}
	s, err := a.Read()
	if err != nil {
		t.Fatal(err)
	}
	if s.Gyro != (Vector{}) {
		t.Errorf("gyro = %v, want zero", s.Gyro)
	}
	if a.SensorError() {
		t.Error("unexpected sensor error")
	}
}

func TestCalibrateGyroDetectsMotion(t *testing.T) {
	r := &mockReader{gyro: Vector{0, 0, 0}, after: Vector{0, 40, 0}, switchAt: 32}
	a := New(r, Config{OneG: 500, StableThreshold: 3})
	if err := a.CalibrateGyro(32); err != nil {
		t.Fatal(err)
	}
	if !a.SensorError() {
		t.Fatal("motion after calibration not flagged")
	}
	// the error does not stop samples
	if _, err := a.Read(); err != nil {
		t.Fatal(err)
	}
	a.ClearError()
	if a.SensorError() {
		t.Error("ClearError did not clear")
	}
}

func TestCalibrateTooFewSamples(t *testing.T) {
	a := New(&mockReader{}, Config{OneG: 500})
	if err := a.CalibrateGyro(8); !errors.Is(err, ErrTooFewSamples) {
		t.Errorf("err = %v", err)
	}
}

func TestCalibrateReadError(t *testing.T) {
	boom := errors.New("i2c nack")
	a := New(&mockReader{err: boom}, Config{OneG: 500})
	if err := a.CalibrateAccNormal(0); !errors.Is(err, boom) {
		t.Errorf("err = %v", err)
	}
}

func TestAccelerometerZero(t *testing.T) {
	r := &mockReader{acc: Vector{6, -3, 530}}
	a := New(r, Config{OneG: 500})

	if err := a.CalibrateAccNormal(0); err != nil {
		t.Fatal(err)
	}
	// normal pass only: nominal 1G is assumed
	s, _ := a.Read()
	if s.Acc != (Vector{0, 0, 500}) {
		t.Errorf("normal only: acc = %v", s.Acc)
	}
	if a.OneG() != 500 {
		t.Errorf("OneG = %d, want nominal 500", a.OneG())
	}

	r.acc = Vector{6, -3, -490}
	if err := a.CalibrateAccInverted(0); err != nil {
		t.Fatal(err)
	}
	cal := a.Calibration()
	// zero = 530 - (530 - -490)/2 = 20
	if cal.Acc[Yaw] != 20 {
		t.Errorf("z zero = %d, want 20", cal.Acc[Yaw])
	}
	if a.OneG() != 510 {
		t.Errorf("OneG = %d, want 510", a.OneG())
	}

	r.acc = Vector{6, -3, 530}
	s, _ = a.Read()
	if s.Acc[Yaw] != 510 {
		t.Errorf("level z = %d, want 510", s.Acc[Yaw])
	}
}

func TestCalibrationUsesOrientation(t *testing.T) {
	// board mounted upside down: gravity shows on raw -Z
	r := &mockReader{acc: Vector{0, 0, -500}, gyro: Vector{5, 0, 0}}
	a := New(r, Config{Orientation: Inverted, OneG: 500, StableThreshold: 2})
	if err := a.CalibrateAccNormal(16); err != nil {
		t.Fatal(err)
	}
	if err := a.CalibrateGyro(16); err != nil {
		t.Fatal(err)
	}
	s, _ := a.Read()
	if s.Acc != (Vector{0, 0, 500}) || s.Gyro != (Vector{}) {
		t.Errorf("sample = %+v", s)
	}

	b := New(r, Config{Orientation: Inverted, OneG: 500})
	b.SetCalibration(a.Calibration())
	if got, _ := b.Read(); got != s {
		t.Errorf("restored calibration: %+v, want %+v", got, s)
	}
}
