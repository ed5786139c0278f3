package serialrx

func crsfFrame(vals [CRSFChannels]uint16) []byte {
	body := append([]byte{crsfFrameRCChannels}, pack11(vals[:])...)
	frame := append([]byte{crsfAddressFC, byte(len(body) + 1)}, body...)
	return append(frame, crc8DVBS2(body))
}

func ibusFrame(vals [IBusChannels]uint16) []byte {
	return AppendIBus(nil, vals[:])
}

func sbusFrame(vals [16]uint16, flags byte) []byte {
	frame := append([]byte{sbusHeader}, pack11(vals[:])...)
	return append(frame, flags, 0x00)
}

func feedAll(d Decoder, data []byte) int {
	n := 0
	for _, b := range data {
		if d.Feed(b) {
			n++
		}
	}
	return n
}
