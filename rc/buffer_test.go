package rc

import (
	"sync"
	"testing"
)

func TestBufferRemapsSlots(t *testing.T) {
	b := NewBuffer(OrderFutaba, nil)
	b.StoreFrame([]uint16{1100, 1200, 1300, 1400, 1500, 1600, 1700, 1800, 1900, 2000})

	s := b.Snapshot()
	if !s.Updated || !s.Linked {
		t.Fatalf("snapshot flags = %+v, want updated and linked", s)
	}
	want := map[Channel]uint16{
		Aileron:  1100,
		Elevator: 1200,
		Throttle: 1300,
		Rudder:   1400,
		Aux3:     1800,
	}
	for ch, w := range want {
		if s.Raw[ch] != w {
			t.Errorf("Raw[%s] = %d, want %d", ch, s.Raw[ch], w)
		}
	}
}

func TestBufferSnapshotClearsUpdated(t *testing.T) {
	b := NewBuffer(OrderJR, nil)
	b.Store(2, 1600)

	if s := b.Snapshot(); !s.Updated || s.Raw[Elevator] != 1600 {
		t.Fatalf("first snapshot = %+v", s)
	}
	s := b.Snapshot()
	if s.Updated {
		t.Error("second snapshot still flagged updated")
	}
	if s.Raw[Elevator] != 1600 {
		t.Errorf("stale value lost: got %d", s.Raw[Elevator])
	}
	if !s.Linked {
		t.Error("link flag should persist")
	}
}

func TestBufferIgnoresUnmappedSlot(t *testing.T) {
	b := NewBuffer(OrderJR, nil)
	b.Store(NumChannels+3, 1500)
	if s := b.Snapshot(); s.Updated || s.Linked {
		t.Errorf("unmapped slot changed the buffer: %+v", s)
	}
}

func TestBufferConcurrentWriters(t *testing.T) {
	b := NewBuffer(OrderJR, nil)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		frame := make([]uint16, NumChannels)
		for i := 0; i < 1000; i++ {
			for j := range frame {
				frame[j] = uint16(1000 + i)
			}
			b.StoreFrame(frame)
		}
	}()
	for i := 0; i < 1000; i++ {
		s := b.Snapshot()
		for ch := 1; ch < NumChannels; ch++ {
			if s.Raw[ch] != s.Raw[0] {
				t.Fatalf("torn snapshot: %v", s.Raw)
			}
		}
	}
	wg.Wait()
}
