package pid

import (
	"errors"
	"testing"
)

func testProfile() Profile {
	var p Profile
	for a := range p.Axes {
		p.Axes[a] = Gains{P: 80, I: 50, ILimit: 2000, Deadband: 2, RateShift: 2}
		p.StickSign[a] = 1
	}
	return p
}

func TestScenario(t *testing.T) {
	l := New(testProfile(), DefaultScale)

	out := l.Update(Input{})
	if out.Gyro[Roll] != 0 || l.Integral(Roll) != 0 {
		t.Fatalf("idle output = %d, integral = %d", out.Gyro[Roll], l.Integral(Roll))
	}

	wantP := int32(100 * 80 * 3 >> DefaultScale.PShift)
	var last int64
	for i := 1; i <= 50; i++ {
		out = l.Update(Input{Gyro: [NumAxes]int32{100, 0, 0}})
		integral := l.Integral(Roll)
		if integral <= last {
			t.Fatalf("tick %d: integral %d did not grow from %d", i, integral, last)
		}
		last = integral
		if out.P[Roll] != wantP {
			t.Fatalf("tick %d: P = %d, want %d", i, out.P[Roll], wantP)
		}
		wantI := int32(int64(i) * 100 * 50 >> DefaultScale.IShift)
		if out.I[Roll] != wantI {
			t.Fatalf("tick %d: I = %d, want %d", i, out.I[Roll], wantI)
		}
		if out.Gyro[Roll] != wantP+wantI {
			t.Fatalf("tick %d: output = %d, want %d", i, out.Gyro[Roll], wantP+wantI)
		}
	}
	if last != 5000 {
		t.Errorf("integral = %d, want 5000", last)
	}
	if out.Gyro[Pitch] != 0 || out.Gyro[Yaw] != 0 {
		t.Errorf("other axes moved: %v", out.Gyro)
	}
}

func TestIntegralClamp(t *testing.T) {
	tests := []struct {
		name    string
		stick   int32
		clamped bool
	}{
		{"stick held", 40, true},
		{"stick held negative", -40, true},
		{"hands off", 0, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := testProfile()
			l := New(p, DefaultScale)
			in := Input{Gyro: [NumAxes]int32{300, -300, 300}, Stick: [NumAxes]int32{tc.stick, tc.stick, tc.stick}}
			for i := 0; i < 1000; i++ {
				l.Update(in)
				for a := Axis(0); a < NumAxes; a++ {
					v := l.Integral(a)
					if tc.clamped && (v > 2000 || v < -2000) {
						t.Fatalf("tick %d axis %d: integral %d beyond limit", i, a, v)
					}
				}
			}
			if !tc.clamped && l.Integral(Roll) <= 2000 {
				t.Errorf("hands-off integral = %d, expected to run past the limit", l.Integral(Roll))
			}
		})
	}
}

func TestAutoCenter(t *testing.T) {
	p := testProfile()
	p.AutoCenter = true
	l := New(p, DefaultScale)
	for i := 0; i < 10; i++ {
		l.Update(Input{Gyro: [NumAxes]int32{10, -10, 0}})
	}
	// each tick adds 10 and walks back 1
	if l.Integral(Roll) != 90 || l.Integral(Pitch) != -90 {
		t.Fatalf("integral = %d, %d", l.Integral(Roll), l.Integral(Pitch))
	}
	for i := 0; i < 200; i++ {
		l.Update(Input{})
	}
	if l.Integral(Roll) != 0 || l.Integral(Pitch) != 0 {
		t.Errorf("not re-centred: %d, %d", l.Integral(Roll), l.Integral(Pitch))
	}
}

func TestModes(t *testing.T) {
	tests := []struct {
		mode  Mode
		sign  int8
		wantP int32
	}{
		{Rate, 1, 0},
		{Lock, 1, -16 * 80 * 3 >> 7},
		{Lock, -1, 16 * 80 * 3 >> 7},
	}
	for _, tc := range tests {
		t.Run(tc.mode.String(), func(t *testing.T) {
			p := testProfile()
			p.Mode[Yaw] = tc.mode
			p.StickSign[Yaw] = tc.sign
			l := New(p, DefaultScale)
			out := l.Update(Input{Stick: [NumAxes]int32{0, 0, 64}})
			if out.P[Yaw] != tc.wantP {
				t.Errorf("P = %d, want %d", out.P[Yaw], tc.wantP)
			}
			// the stick rate always feeds the integral
			if want := -int64(tc.sign) * 16; l.Integral(Yaw) != want {
				t.Errorf("integral = %d, want %d", l.Integral(Yaw), want)
			}
		})
	}
}

func TestDeadband(t *testing.T) {
	l := New(testProfile(), DefaultScale)
	for i := 0; i < 100; i++ {
		l.Update(Input{Gyro: [NumAxes]int32{2, -2, 1}})
	}
	for a := Axis(0); a < NumAxes; a++ {
		if l.Integral(a) != 0 {
			t.Errorf("axis %d crept to %d", a, l.Integral(a))
		}
	}
}

func TestDerivative(t *testing.T) {
	p := testProfile()
	p.Axes[Pitch] = Gains{D: 32}
	l := New(p, DefaultScale)
	l.Update(Input{})
	out := l.Update(Input{Gyro: [NumAxes]int32{0, 64, 0}})
	if out.D[Pitch] != 64 {
		t.Errorf("D = %d, want 64", out.D[Pitch])
	}
	out = l.Update(Input{Gyro: [NumAxes]int32{0, 64, 0}})
	if out.D[Pitch] != 0 {
		t.Errorf("steady D = %d, want 0", out.D[Pitch])
	}
}

func TestDynamicGain(t *testing.T) {
	tests := []struct {
		channel int32
		want    int32
	}{
		{500, 187},
		{0, 93},
		{-500, 0},
		{-900, 0},
		{900, 187},
	}
	for _, tc := range tests {
		p := testProfile()
		p.Axes[Roll].I = 0
		p.DynGain = DynGain{Enabled: true, Offset: 500, Max: 1000}
		l := New(p, DefaultScale)
		out := l.Update(Input{Gyro: [NumAxes]int32{100, 0, 0}, DynGain: tc.channel})
		if out.Gyro[Roll] != tc.want {
			t.Errorf("channel %d: output = %d, want %d", tc.channel, out.Gyro[Roll], tc.want)
		}
	}
}

func TestAutoLevel(t *testing.T) {
	p := testProfile()
	p.Axes[Roll].AccGain = 64
	p.Axes[Roll].AccTrim = 20
	p.Axes[Pitch].AccGain = 32
	l := New(p, DefaultScale)

	in := Input{Gyro: [NumAxes]int32{100, 0, 0}, Angle: [LevelAxes]int32{100, -50}}
	if out := l.Update(in); out.Acc != [LevelAxes]int32{} {
		t.Errorf("auto-level off: acc = %v", out.Acc)
	}

	p.AutoLevel = true
	l.SetProfile(p, DefaultScale)
	out := l.Update(in)
	if out.Acc != [LevelAxes]int32{80, -25} {
		t.Errorf("acc = %v, want [80 -25]", out.Acc)
	}
	// the gyro correction is still produced alongside
	if out.P[Roll] != 187 {
		t.Errorf("P = %d, want 187", out.P[Roll])
	}
}

func TestReset(t *testing.T) {
	l := New(testProfile(), DefaultScale)
	l.Update(Input{Gyro: [NumAxes]int32{50, 50, 50}})
	l.Reset()
	for a := Axis(0); a < NumAxes; a++ {
		if l.Integral(a) != 0 {
			t.Errorf("axis %d integral = %d", a, l.Integral(a))
		}
	}
	if out := l.Update(Input{}); out.D != [NumAxes]int32{} {
		t.Errorf("derivative memory kept: %v", out.D)
	}
}

func TestValidate(t *testing.T) {
	if err := testProfile().Validate(); err != nil {
		t.Fatal(err)
	}
	p := testProfile()
	p.DynGain = DynGain{Enabled: true}
	p.StickSign[Pitch] = 0
	err := p.Validate()
	if !errors.Is(err, ErrBadProfile) {
		t.Fatalf("err = %v", err)
	}
	if err := (Scale{PShift: 40}).Validate(); err == nil {
		t.Error("oversized shift accepted")
	}
}

func TestModeText(t *testing.T) {
	var m Mode
	if err := m.UnmarshalText([]byte("lock")); err != nil || m != Lock {
		t.Fatalf("m = %v, err = %v", m, err)
	}
	if err := m.UnmarshalText([]byte("acro")); !errors.Is(err, ErrBadMode) {
		t.Errorf("err = %v", err)
	}
}
