package rc

// LinkMonitor flags signal loss when no frame has arrived for Timeout
// milliseconds. Timestamps come from a wrapping millisecond counter; the
// unsigned difference stays correct across the wrap.
type LinkMonitor struct {
	Timeout uint32
	last    uint32
	seen    bool
}

// Frame records the arrival of a valid frame at now.
func (m *LinkMonitor) Frame(now uint32) {
	m.last = now
	m.seen = true
}

// Lost reports whether the link is considered lost at now.
func (m *LinkMonitor) Lost(now uint32) bool {
	return !m.seen || now-m.last > m.Timeout
}

// Since returns the milliseconds elapsed since the last frame.
func (m *LinkMonitor) Since(now uint32) uint32 { return now - m.last }
