package serialrx

// Encoders produce the frames a transmitter module sends. They feed the
// simulator and the decoder tests.

// microsToTicks inverts ticksToMicros exactly for 880..2159 µs.
func microsToTicks(us uint16) uint16 {
	if us <= 880 {
		return 0
	}
	v := (uint32(us-880)*8 + 4) / 5
	if v > 0x07FF {
		v = 0x07FF
	}
	return uint16(v)
}

// pack11 packs 11-bit values little-endian, the inverse of unpack11.
func pack11(vals []uint16) []byte {
	out := make([]byte, (len(vals)*11+7)/8)
	var acc uint32
	var bits uint
	i := 0
	for _, v := range vals {
		acc |= uint32(v&0x07FF) << bits
		bits += 11
		for bits >= 8 {
			out[i] = byte(acc)
			i++
			acc >>= 8
			bits -= 8
		}
	}
	if bits > 0 {
		out[i] = byte(acc)
	}
	return out
}

func ticks16(us []uint16) []uint16 {
	vals := make([]uint16, CRSFChannels)
	for i := range vals {
		vals[i] = microsToTicks(1500)
		if i < len(us) {
			vals[i] = microsToTicks(us[i])
		}
	}
	return vals
}

// AppendCRSF appends an RC channels frame carrying up to 16 widths in µs.
// Missing channels are sent centred.
func AppendCRSF(dst []byte, us []uint16) []byte {
	body := append([]byte{crsfFrameRCChannels}, pack11(ticks16(us))...)
	dst = append(dst, crsfAddressFC, byte(len(body)+1))
	dst = append(dst, body...)
	return append(dst, crc8DVBS2(body))
}

// AppendIBus appends an iBus frame carrying up to 14 widths in µs.
func AppendIBus(dst []byte, us []uint16) []byte {
	start := len(dst)
	dst = append(dst, ibusHeader1, ibusHeader2)
	for i := 0; i < IBusChannels; i++ {
		v := uint16(1500)
		if i < len(us) {
			v = us[i]
		}
		dst = append(dst, byte(v), byte(v>>8))
	}
	sum := uint16(0xFFFF)
	for _, b := range dst[start:] {
		sum -= uint16(b)
	}
	return append(dst, byte(sum), byte(sum>>8))
}

// AppendSBus appends an S.Bus frame carrying up to 16 widths in µs with the
// given flags byte.
func AppendSBus(dst []byte, us []uint16, flags byte) []byte {
	dst = append(dst, sbusHeader)
	dst = append(dst, pack11(ticks16(us))...)
	return append(dst, flags, 0x00)
}

// AppendSpektrum appends satellite frames, seven channels per frame, for up
// to 12 widths in µs.
func AppendSpektrum(dst []byte, us []uint16, wide bool) []byte {
	if len(us) > SpektrumChannels {
		us = us[:SpektrumChannels]
	}
	for first := 0; first < len(us) || first == 0; first += spektrumWords {
		dst = append(dst, 0, 0xB2)
		for w := 0; w < spektrumWords; w++ {
			id := first + w
			if id >= len(us) {
				dst = append(dst, 0xFF, 0xFF)
				continue
			}
			word := spektrumWord(id, us[id], wide)
			dst = append(dst, byte(word>>8), byte(word))
		}
	}
	return dst
}

func spektrumWord(id int, us uint16, wide bool) uint16 {
	v := uint16(0)
	if us > 988 {
		v = us - 988
	}
	if wide {
		v *= 2
		if v > 0x07FF {
			v = 0x07FF
		}
		return uint16(id)<<11 | v
	}
	if v > 0x03FF {
		v = 0x03FF
	}
	return uint16(id)<<10 | v
}

// Encode returns one transmission of us in protocol p. Spektrum output may
// hold several frames; the receiver must see an inter-frame gap between
// transmissions.
func Encode(p Protocol, us []uint16) ([]byte, error) {
	switch p {
	case ProtocolIBus:
		return AppendIBus(nil, us), nil
	case ProtocolCRSF, ProtocolELRS:
		return AppendCRSF(nil, us), nil
	case ProtocolSBus:
		return AppendSBus(nil, us, 0), nil
	case ProtocolSpektrum1024:
		return AppendSpektrum(nil, us, false), nil
	case ProtocolSpektrum2048:
		return AppendSpektrum(nil, us, true), nil
	}
	return nil, ErrUnknownProtocol
}
