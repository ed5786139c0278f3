package rc

import "github.com/BryanSouza91/nextcopter/mathx"

// Normalized holds zero-centred channel values indexed by logical channel.
type Normalized [NumChannels]int

// NormalizerConfig configures a Normalizer.
type NormalizerConfig struct {
	// Zero is the raw width that maps to 0 for each channel.
	Zero [NumChannels]int
	// ActivityThreshold is the change in the summed primary channels that
	// counts as stick movement.
	ActivityThreshold int
	// HandsFreeBand is the half-width of the centre band used for hands-free
	// detection.
	HandsFreeBand int
	// HandsFreeAxes are the two channels that must both be centred.
	HandsFreeAxes [2]Channel
}

// Result is the normalizer output for one loop iteration.
type Result struct {
	Values Normalized
	// Fresh is set when a new frame was consumed this loop.
	Fresh bool
	// Active is set when the sticks moved by more than the noise threshold
	// since the previous loop.
	Active bool
	// HandsFree is set when both hands-free axes sit inside the centre band.
	HandsFree bool
}

// primaryChannels are summed for activity detection.
var primaryChannels = [...]Channel{Throttle, Aileron, Elevator, Rudder}

// Normalizer turns raw widths into zero-centred values.
type Normalizer struct {
	cfg     NormalizerConfig
	raw     [NumChannels]uint16
	lastSum int
	primed  bool
}

// NewNormalizer returns a Normalizer using cfg.
func NewNormalizer(cfg NormalizerConfig) *Normalizer {
	return &Normalizer{cfg: cfg}
}

// SetConfig swaps the configuration. Call it between ticks only.
func (n *Normalizer) SetConfig(cfg NormalizerConfig) { n.cfg = cfg }

// Normalize subtracts the zero offsets from the snapshot. When the snapshot
// carries no new frame the previously consumed widths are used again.
// No clamping or deadband is applied here.
func (n *Normalizer) Normalize(s Snapshot) Result {
	r := Result{Fresh: s.Updated}
	if s.Updated {
		n.raw = s.Raw
	}
	for ch := 0; ch < NumChannels; ch++ {
		r.Values[ch] = int(n.raw[ch]) - n.cfg.Zero[ch]
	}

	sum := 0
	for _, ch := range primaryChannels {
		sum += r.Values[ch]
	}
	if n.primed {
		r.Active = mathx.Abs(sum-n.lastSum) > n.cfg.ActivityThreshold
	}
	n.lastSum = sum
	n.primed = true

	a, b := n.cfg.HandsFreeAxes[0], n.cfg.HandsFreeAxes[1]
	r.HandsFree = mathx.Abs(r.Values[a]) <= n.cfg.HandsFreeBand &&
		mathx.Abs(r.Values[b]) <= n.cfg.HandsFreeBand
	return r
}

// CenterSticks returns zero with the primary stick channels moved to their
// current positions, so they read zero. With the throttle at its low stop
// this sets the throttle zero to the bottom of its travel. Switch channels
// keep their configured zero.
func CenterSticks(s Snapshot, zero [NumChannels]int) [NumChannels]int {
	for _, ch := range primaryChannels {
		zero[ch] = int(s.Raw[ch])
	}
	return zero
}
