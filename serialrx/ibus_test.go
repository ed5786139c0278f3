package serialrx

import "testing"

func TestIBusDecode(t *testing.T) {
	var vals [IBusChannels]uint16
	for i := range vals {
		vals[i] = uint16(1000 + 50*i)
	}
	d := NewIBus()
	// a lone 0x20 before the real header must not desync the parser
	data := append([]byte{0x20, 0x20}, ibusFrame(vals)[1:]...)
	if n := feedAll(d, data); n != 1 {
		t.Fatalf("frames = %d, want 1", n)
	}
	for i, v := range d.Channels() {
		if v != vals[i] {
			t.Errorf("CH%d = %d, want %d", i+1, v, vals[i])
		}
	}
}

func TestIBusChecksumFailure(t *testing.T) {
	var vals [IBusChannels]uint16
	for i := range vals {
		vals[i] = 1500
	}
	d := NewIBus()
	feedAll(d, ibusFrame(vals))

	vals[0] = 2000
	bad := ibusFrame(vals)
	bad[5] ^= 0x01
	if n := feedAll(d, bad); n != 0 {
		t.Fatal("corrupt frame published")
	}
	if d.Errors() != 1 {
		t.Errorf("errors = %d, want 1", d.Errors())
	}
	if d.Channels()[0] != 1500 {
		t.Errorf("CH1 = %d, want 1500", d.Channels()[0])
	}
	if n := feedAll(d, ibusFrame(vals)); n != 1 {
		t.Fatal("parser did not recover")
	}
	if d.Channels()[0] != 2000 {
		t.Errorf("CH1 = %d, want 2000", d.Channels()[0])
	}
}
