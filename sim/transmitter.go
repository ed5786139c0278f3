package sim

import "github.com/BryanSouza91/nextcopter/capture"

// Edge is one transition on a receiver line, timestamped by the 16-bit
// capture timer.
type Edge struct {
	Rising bool
	At     uint16
}

const (
	DefaultFrameTicks = 22500
	DefaultPulseTicks = 300
	minSyncTicks      = capture.DefaultSyncGap + 500
)

// CPPMTransmitter generates a CPPM train timed on falling edges: every
// channel starts with a short low pulse, and the frame is padded to
// FrameTicks with the sync gap. The timer wraps freely.
type CPPMTransmitter struct {
	FrameTicks uint16
	PulseTicks uint16
	now        uint16
}

// NewCPPMTransmitter returns a transmitter whose clock starts at start.
func NewCPPMTransmitter(start uint16) *CPPMTransmitter {
	return &CPPMTransmitter{FrameTicks: DefaultFrameTicks, PulseTicks: DefaultPulseTicks, now: start}
}

// Frame returns the edges of one frame carrying widths.
func (t *CPPMTransmitter) Frame(widths []uint16) []Edge {
	edges := make([]Edge, 0, 2*len(widths)+2)
	var sum uint32
	for i := 0; i <= len(widths); i++ {
		edges = append(edges, Edge{false, t.now}, Edge{true, t.now + t.PulseTicks})
		if i < len(widths) {
			t.now += widths[i]
			sum += uint32(widths[i])
		}
	}
	gap := uint32(minSyncTicks)
	if uint32(t.FrameTicks) > sum+gap {
		gap = uint32(t.FrameTicks) - sum
	}
	t.now += uint16(gap)
	return edges
}

// Send feeds one frame into d.
func (t *CPPMTransmitter) Send(d capture.PulseDecoder, widths []uint16) {
	for _, e := range t.Frame(widths) {
		d.Edge(0, e.Rising, e.At)
	}
}

// PWMTransmitter drives one line per channel, one pulse after the other.
type PWMTransmitter struct {
	now uint16
}

// NewPWMTransmitter returns a transmitter whose clock starts at start.
func NewPWMTransmitter(start uint16) *PWMTransmitter {
	return &PWMTransmitter{now: start}
}

// Send feeds one pulse per line into d. Line i carries widths[i].
func (t *PWMTransmitter) Send(d capture.PulseDecoder, widths []uint16) {
	for line, w := range widths {
		d.Edge(line, true, t.now)
		t.now += w
		d.Edge(line, false, t.now)
	}
	t.now += minSyncTicks
}
