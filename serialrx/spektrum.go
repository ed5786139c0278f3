package serialrx

const (
	spektrumFrameSize = 16
	spektrumWords     = 7
	SpektrumChannels  = 12
	spektrumUnused    = 0xFFFF
)

// Spektrum decodes DSM2/DSMX satellite frames: a fade counter byte, a system
// byte, then seven big-endian words each holding a channel id and value.
// Frames carry no header, so the caller calls Resync at every inter-frame
// gap. Each frame updates only the channels it carries.
type Spektrum struct {
	wide     bool
	buf      [spektrumFrameSize]byte
	idx      int
	channels [SpektrumChannels]uint16
	errors   uint32
}

// NewSpektrum returns a satellite decoder. wide selects 2048-step (11-bit)
// resolution over 1024-step.
func NewSpektrum(wide bool) *Spektrum {
	d := &Spektrum{wide: wide}
	for i := range d.channels {
		d.channels[i] = 1500
	}
	return d
}

func (d *Spektrum) Feed(b byte) bool {
	d.buf[d.idx] = b
	d.idx++
	if d.idx < spektrumFrameSize {
		return false
	}
	d.idx = 0
	return d.decode()
}

func (d *Spektrum) decode() bool {
	var ids [spektrumWords]int
	var vals [spektrumWords]uint16
	n := 0
	for w := 0; w < spektrumWords; w++ {
		word := uint16(d.buf[2+2*w])<<8 | uint16(d.buf[3+2*w])
		if word == spektrumUnused {
			continue
		}
		var id int
		var us uint16
		if d.wide {
			id = int(word>>11) & 0x0F
			us = 988 + (word&0x07FF)>>1
		} else {
			id = int(word>>10) & 0x0F
			us = 988 + word&0x03FF
		}
		if id >= SpektrumChannels {
			d.errors++
			return false
		}
		ids[n], vals[n] = id, us
		n++
	}
	for i := 0; i < n; i++ {
		d.channels[ids[i]] = vals[i]
	}
	return true
}

// Resync marks the next byte as the start of a frame.
func (d *Spektrum) Resync() { d.idx = 0 }

func (d *Spektrum) Channels() []uint16 { return d.channels[:] }
func (d *Spektrum) Errors() uint32     { return d.errors }
func (d *Spektrum) Reset()             { d.idx = 0 }
