// Package capture converts edge interrupts into RC pulse widths.
//
// Timestamps come from a free-running 16-bit timer. Widths are the unsigned
// difference of two timestamps, which is correct across the counter wrap as
// long as a pulse is shorter than one timer period.
package capture

import "sync/atomic"

const (
	DefaultMinPulse = 750
	DefaultMaxPulse = 2250
	// DefaultSyncGap separates CPPM frames; no channel pulse is this long.
	DefaultSyncGap = 3000

	MaxCPPMChannels = 12
	MinCPPMChannels = 4
)

// Limits bounds the widths a decoder accepts. Anything outside is treated as a
// glitch and the channel keeps its previous value.
type Limits struct {
	MinPulse uint16
	MaxPulse uint16
}

// DefaultLimits accepts 750-2250 ticks.
var DefaultLimits = Limits{MinPulse: DefaultMinPulse, MaxPulse: DefaultMaxPulse}

func (l Limits) valid(w uint16) bool {
	return w >= l.MinPulse && w <= l.MaxPulse
}

// PulseDecoder is implemented by every edge-driven decoder. Edge is called
// from interrupt context with the input line that fired, its new level and the
// timer value at the edge.
type PulseDecoder interface {
	Edge(line int, rising bool, now uint16)
	Stats() Stats
}

// Stats counts decoded frames and rejected edges.
type Stats struct {
	Frames uint32
	Errors uint32
}

type counters struct {
	frames atomic.Uint32
	errors atomic.Uint32
}

func (c *counters) Stats() Stats {
	return Stats{Frames: c.frames.Load(), Errors: c.errors.Load()}
}
