package serialrx

import "testing"

func TestMicrosToTicksInverse(t *testing.T) {
	for us := uint16(880); us < 2160; us++ {
		if got := ticksToMicros(microsToTicks(us)); got != us {
			t.Fatalf("round trip %d µs = %d", us, got)
		}
	}
	for _, tc := range []struct{ us, ticks uint16 }{{987, 172}, {1500, 992}, {2011, 1810}} {
		if got := microsToTicks(tc.us); got != tc.ticks {
			t.Errorf("microsToTicks(%d) = %d", tc.us, got)
		}
	}
}

func TestEncodeDecode(t *testing.T) {
	widths := []uint16{1000, 1250, 1500, 1750, 2000, 1100, 1900, 1333}
	for _, p := range []Protocol{ProtocolIBus, ProtocolCRSF, ProtocolELRS, ProtocolSBus, ProtocolSpektrum1024, ProtocolSpektrum2048} {
		t.Run(p.String(), func(t *testing.T) {
			frame, err := Encode(p, widths)
			if err != nil {
				t.Fatal(err)
			}
			d, err := New(p)
			if err != nil {
				t.Fatal(err)
			}
			if n := feedAll(d, frame); n == 0 {
				t.Fatalf("no frame decoded from % x", frame)
			}
			if d.Errors() != 0 {
				t.Errorf("errors = %d", d.Errors())
			}
			got := d.Channels()
			for i, want := range widths {
				if got[i] != want {
					t.Errorf("channel %d = %d, want %d", i, got[i], want)
				}
			}
		})
	}
}

func TestEncodeSpektrumFrames(t *testing.T) {
	us := make([]uint16, SpektrumChannels)
	for i := range us {
		us[i] = uint16(1000 + 50*i)
	}
	b := AppendSpektrum(nil, us, true)
	if len(b) != 2*spektrumFrameSize {
		t.Fatalf("len = %d, want two frames", len(b))
	}
	d := NewSpektrum(true)
	if n := feedAll(d, b); n != 2 {
		t.Fatalf("decoded %d frames, want 2", n)
	}
	for i, want := range us {
		if got := d.Channels()[i]; got != want {
			t.Errorf("channel %d = %d, want %d", i, got, want)
		}
	}
}

func TestEncodeUnknown(t *testing.T) {
	if _, err := Encode(Protocol(99), nil); err != ErrUnknownProtocol {
		t.Errorf("err = %v", err)
	}
}
