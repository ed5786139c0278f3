package capture

import "github.com/BryanSouza91/nextcopter/rc"

// CPPMConfig configures a CPPMDecoder.
type CPPMConfig struct {
	Limits Limits
	// SyncGap is the shortest interval treated as the inter-frame gap.
	SyncGap uint16
	// RisingEdge selects the rising edge as the timing edge instead of the
	// falling edge, for receivers with inverted output.
	RisingEdge bool
}

// DefaultCPPMConfig times falling edges with a 3000 tick sync gap.
var DefaultCPPMConfig = CPPMConfig{Limits: DefaultLimits, SyncGap: DefaultSyncGap}

// CPPMDecoder splits a combined pulse train into channels. Every interval
// between timing edges is one channel; an interval longer than the sync gap
// restarts the frame. The learned channel count is the highest index seen,
// and a frame is published as soon as the index reaches it. A shorter frame
// is counted as an error and dropped, since a lost edge merges two pulses and
// shifts the rest; the count is lowered only after ShortFrameRepeats
// consecutive frames of the same shorter length. Frames are staged locally
// and published whole, so a corrupt frame never reaches the buffer.
type CPPMDecoder struct {
	counters
	out *rc.Buffer
	cfg CPPMConfig

	last      uint16
	started   bool
	index     int
	learned   int
	committed bool
	corrupt   bool
	frame     [MaxCPPMChannels]uint16

	// shorter length seen in the last frames, and how many in a row
	short    int
	shortRun int
}

// ShortFrameRepeats is how many consecutive frames of one shorter length it
// takes to lower the learned channel count.
const ShortFrameRepeats = 3

// NewCPPMDecoder returns a decoder storing frames into out.
func NewCPPMDecoder(out *rc.Buffer, cfg CPPMConfig) *CPPMDecoder {
	return &CPPMDecoder{out: out, cfg: cfg, index: -1}
}

// Channels returns the learned frame length.
func (d *CPPMDecoder) Channels() int { return d.learned }

// Edge handles an edge on the CPPM input. Edges of the other polarity are
// ignored.
func (d *CPPMDecoder) Edge(_ int, rising bool, now uint16) {
	if rising != d.cfg.RisingEdge {
		return
	}
	delta := now - d.last
	d.last = now
	if !d.started {
		d.started = true
		return
	}
	if delta > d.cfg.SyncGap {
		d.sync()
		return
	}
	if d.index < 0 {
		// no sync seen yet
		return
	}
	if d.index >= MaxCPPMChannels {
		d.corrupt = true
		return
	}
	if !d.cfg.Limits.valid(delta) {
		d.corrupt = true
	}
	d.frame[d.index] = delta
	d.index++
	if d.index == d.learned && !d.corrupt && !d.committed {
		d.commit(d.index)
	}
}

func (d *CPPMDecoder) sync() {
	switch {
	case d.index < MinCPPMChannels:
		if d.index > 0 {
			d.errors.Add(1)
			d.shortRun = 0
		}
	case d.corrupt:
		d.errors.Add(1)
		d.shortRun = 0
	case d.index >= d.learned:
		if !d.committed {
			// first or longer frame; publish what it carried
			d.commit(d.index)
		}
		d.learned = d.index
		d.shortRun = 0
	default:
		if d.index != d.short {
			d.short, d.shortRun = d.index, 0
		}
		d.shortRun++
		if d.shortRun < ShortFrameRepeats {
			d.errors.Add(1)
			break
		}
		d.commit(d.index)
		d.learned = d.index
		d.shortRun = 0
	}
	d.index = 0
	d.committed = false
	d.corrupt = false
}

func (d *CPPMDecoder) commit(n int) {
	d.out.StoreFrame(d.frame[:n])
	d.committed = true
	d.frames.Add(1)
}
