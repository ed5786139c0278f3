package rc

import "testing"

func testNormalizer() *Normalizer {
	cfg := NormalizerConfig{
		ActivityThreshold: 20,
		HandsFreeBand:     30,
		HandsFreeAxes:     [2]Channel{Aileron, Elevator},
	}
	for i := range cfg.Zero {
		cfg.Zero[i] = 1500
	}
	cfg.Zero[Throttle] = 1100
	return NewNormalizer(cfg)
}

func snapshot(values ...uint16) Snapshot {
	s := Snapshot{Updated: true, Linked: true}
	for i := range s.Raw {
		s.Raw[i] = 1500
	}
	copy(s.Raw[:], values)
	return s
}

func TestNormalizeSubtractsZero(t *testing.T) {
	n := testNormalizer()
	r := n.Normalize(snapshot(1100, 1750, 1250))
	if r.Values[Throttle] != 0 || r.Values[Aileron] != 250 || r.Values[Elevator] != -250 {
		t.Errorf("Values = %v", r.Values)
	}
	if r.Values[Aux3] != 0 {
		t.Errorf("Aux3 = %d, want 0", r.Values[Aux3])
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	n := testNormalizer()
	s := snapshot(1300, 1620, 1410, 1555)
	first := n.Normalize(s)
	for i := 0; i < 10; i++ {
		again := n.Normalize(s)
		if again.Values != first.Values {
			t.Fatalf("iteration %d: %v != %v", i, again.Values, first.Values)
		}
		if again.Active {
			t.Fatalf("iteration %d flagged activity on identical input", i)
		}
	}
}

func TestNormalizeKeepsLastFrame(t *testing.T) {
	n := testNormalizer()
	n.Normalize(snapshot(1100, 1700))
	r := n.Normalize(Snapshot{Linked: true})
	if r.Fresh {
		t.Error("Fresh set without a new frame")
	}
	if r.Values[Aileron] != 200 {
		t.Errorf("Aileron = %d, want previous value 200", r.Values[Aileron])
	}
}

func TestNormalizeActivity(t *testing.T) {
	n := testNormalizer()
	if r := n.Normalize(snapshot(1100)); r.Active {
		t.Error("first loop cannot report activity")
	}
	if r := n.Normalize(snapshot(1100, 1510)); r.Active {
		t.Error("10 units of movement is below the threshold")
	}
	if r := n.Normalize(snapshot(1100, 1600)); !r.Active {
		t.Error("90 units of movement should be activity")
	}
}

func TestNormalizeHandsFree(t *testing.T) {
	n := testNormalizer()
	if r := n.Normalize(snapshot(1800, 1520, 1480, 1900)); !r.HandsFree {
		t.Error("both axes inside the band should be hands-free")
	}
	if r := n.Normalize(snapshot(1800, 1520, 1420)); r.HandsFree {
		t.Error("elevator outside the band is not hands-free")
	}
}

func TestCenterSticks(t *testing.T) {
	s := snapshot(1090, 1512, 1493)
	s.Raw[Gear] = 1000
	var zero [NumChannels]int
	for ch := range zero {
		zero[ch] = 1500
	}
	zero = CenterSticks(s, zero)
	n := NewNormalizer(NormalizerConfig{Zero: zero})
	r := n.Normalize(s)
	for _, ch := range primaryChannels {
		if v := r.Values[ch]; v != 0 {
			t.Errorf("channel %s = %d after centring", ch, v)
		}
	}
	if r.Values[Gear] != -500 {
		t.Errorf("gear = %d, want -500 (switch zero untouched)", r.Values[Gear])
	}
}
