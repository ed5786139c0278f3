package serialrx

const (
	ibusHeader1    = 0x20
	ibusHeader2    = 0x40
	IBusChannels   = 14
	ibusPacketSize = 2 + IBusChannels*2 + 2
)

type ibusState uint8

const (
	ibusWaitHeader1 ibusState = iota
	ibusWaitHeader2
	ibusPayload
	ibusChecksumLow
	ibusChecksumHigh
)

// IBus decodes FlySky iBus frames: 0x20 0x40, fourteen little-endian
// microsecond values, then a 16-bit checksum equal to 0xFFFF minus the sum of
// every preceding byte.
type IBus struct {
	state    ibusState
	buf      [ibusPacketSize]byte
	idx      int
	channels [IBusChannels]uint16
	errors   uint32
}

// NewIBus returns an iBus decoder.
func NewIBus() *IBus { return &IBus{} }

func (d *IBus) Feed(b byte) bool {
	switch d.state {
	case ibusWaitHeader1:
		if b == ibusHeader1 {
			d.buf[0] = b
			d.state = ibusWaitHeader2
		}
	case ibusWaitHeader2:
		switch b {
		case ibusHeader2:
			d.buf[1] = b
			d.idx = 2
			d.state = ibusPayload
		case ibusHeader1:
			// stay; this may be the real first header byte
		default:
			d.state = ibusWaitHeader1
		}
	case ibusPayload:
		d.buf[d.idx] = b
		d.idx++
		if d.idx >= ibusPacketSize-2 {
			d.state = ibusChecksumLow
		}
	case ibusChecksumLow:
		d.buf[d.idx] = b
		d.idx++
		d.state = ibusChecksumHigh
	case ibusChecksumHigh:
		d.buf[d.idx] = b
		d.state = ibusWaitHeader1
		return d.decode()
	}
	return false
}

func (d *IBus) decode() bool {
	sum := uint16(0xFFFF)
	for _, b := range d.buf[:ibusPacketSize-2] {
		sum -= uint16(b)
	}
	received := uint16(d.buf[ibusPacketSize-2]) | uint16(d.buf[ibusPacketSize-1])<<8
	if received != sum {
		d.errors++
		return false
	}
	for i := range d.channels {
		d.channels[i] = (uint16(d.buf[2+2*i]) | uint16(d.buf[3+2*i])<<8) & 0x0FFF
	}
	return true
}

func (d *IBus) Channels() []uint16 { return d.channels[:] }
func (d *IBus) Errors() uint32     { return d.errors }
func (d *IBus) Reset()             { d.state, d.idx = ibusWaitHeader1, 0 }
