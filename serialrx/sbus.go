package serialrx

const (
	sbusHeader     = 0x0F
	sbusFrameSize  = 25
	sbusPayload    = 22
	sbusFlagsIndex = 23
	SBusChannels   = 18

	sbusFlagCh17      = 1 << 0
	sbusFlagCh18      = 1 << 1
	sbusFlagFrameLost = 1 << 2
	sbusFlagFailsafe  = 1 << 3
	sbusDigitalLow    = 1000
	sbusDigitalHigh   = 2000
)

// SBus decodes Futaba S.Bus frames: 0x0F, sixteen 11-bit channels, a flag
// byte carrying two digital channels and the receiver's lost-frame and
// failsafe bits, then an end byte. A frame flagged failsafe carries the
// receiver's hold values and is not published.
type SBus struct {
	buf      [sbusFrameSize]byte
	idx      int
	channels [SBusChannels]uint16
	errors   uint32
	lost     uint32
	failsafe bool
}

// NewSBus returns an S.Bus decoder.
func NewSBus() *SBus { return &SBus{} }

func (d *SBus) Feed(b byte) bool {
	if d.idx == 0 && b != sbusHeader {
		return false
	}
	d.buf[d.idx] = b
	d.idx++
	if d.idx < sbusFrameSize {
		return false
	}
	d.idx = 0
	return d.decode()
}

// sbusEndByte accepts the plain S.Bus end byte and the S.Bus2 telemetry slot
// markers.
func sbusEndByte(b byte) bool {
	return b == 0x00 || b&0x0F == 0x04
}

func (d *SBus) decode() bool {
	if !sbusEndByte(d.buf[sbusFrameSize-1]) {
		d.errors++
		return false
	}
	flags := d.buf[sbusFlagsIndex]
	if flags&sbusFlagFrameLost != 0 {
		d.lost++
	}
	d.failsafe = flags&sbusFlagFailsafe != 0
	if d.failsafe {
		return false
	}
	var raw [16]uint16
	unpack11(raw[:], d.buf[1:1+sbusPayload])
	for i, v := range raw {
		d.channels[i] = ticksToMicros(v)
	}
	d.channels[16] = digital(flags&sbusFlagCh17 != 0)
	d.channels[17] = digital(flags&sbusFlagCh18 != 0)
	return true
}

func digital(on bool) uint16 {
	if on {
		return sbusDigitalHigh
	}
	return sbusDigitalLow
}

// Failsafe reports whether the last frame carried the receiver failsafe flag.
func (d *SBus) Failsafe() bool { return d.failsafe }

// LostFrames returns how many frames the receiver flagged as lost.
func (d *SBus) LostFrames() uint32 { return d.lost }

func (d *SBus) Channels() []uint16 { return d.channels[:] }
func (d *SBus) Errors() uint32     { return d.errors }
func (d *SBus) Reset()             { d.idx = 0 }
