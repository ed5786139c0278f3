package serialrx

const (
	// CRSF frames addressed to a flight controller start with this byte.
	crsfAddressFC         = 0xC8
	crsfFrameRCChannels   = 0x16
	crsfRCChannelsLength  = 24 // type + 22 payload bytes + CRC
	crsfMaxLength         = 62
	CRSFChannels          = 16
	crsfRCChannelsPayload = 22
)

type crsfState uint8

const (
	crsfWaitSync crsfState = iota
	crsfLength
	crsfBody
)

// CRSF decodes TBS Crossfire / ExpressLRS frames: address, length, then
// length bytes of type, payload and a CRC8 (DVB-S2) over type and payload.
// Only RC channel frames update the channels; other valid frames are skipped
// whole.
type CRSF struct {
	state    crsfState
	length   int
	idx      int
	buf      [crsfMaxLength]byte
	channels [CRSFChannels]uint16
	errors   uint32
}

// NewCRSF returns a CRSF decoder.
func NewCRSF() *CRSF { return &CRSF{} }

// NewELRS returns a decoder for ExpressLRS, which speaks CRSF on the wire.
func NewELRS() *CRSF { return NewCRSF() }

func (d *CRSF) Feed(b byte) bool {
	switch d.state {
	case crsfWaitSync:
		if b == crsfAddressFC {
			d.state = crsfLength
		}
	case crsfLength:
		if b < 2 || b > crsfMaxLength {
			d.state = crsfWaitSync
			return false
		}
		d.length, d.idx = int(b), 0
		d.state = crsfBody
	case crsfBody:
		d.buf[d.idx] = b
		d.idx++
		if d.idx == d.length {
			d.state = crsfWaitSync
			return d.decode()
		}
	}
	return false
}

func (d *CRSF) decode() bool {
	body := d.buf[:d.length]
	if crc8DVBS2(body[:len(body)-1]) != body[len(body)-1] {
		d.errors++
		return false
	}
	if body[0] != crsfFrameRCChannels || d.length != crsfRCChannelsLength {
		return false
	}
	var raw [CRSFChannels]uint16
	unpack11(raw[:], body[1:1+crsfRCChannelsPayload])
	for i, v := range raw {
		d.channels[i] = ticksToMicros(v)
	}
	return true
}

func (d *CRSF) Channels() []uint16 { return d.channels[:] }
func (d *CRSF) Errors() uint32     { return d.errors }
func (d *CRSF) Reset()             { d.state, d.idx = crsfWaitSync, 0 }

// crc8DVBS2 computes the CRSF frame CRC (polynomial 0xD5).
func crc8DVBS2(data []byte) byte {
	crc := byte(0)
	for _, b := range data {
		crc ^= b
		for i := 0; i < 8; i++ {
			if crc&0x80 != 0 {
				crc = crc<<1 ^ 0xD5
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
