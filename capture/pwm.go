package capture

import (
	"github.com/BryanSouza91/nextcopter/hal"
	"github.com/BryanSouza91/nextcopter/rc"
)

// PWMDecoder measures one pulse per input line. Each line keeps its own start
// timestamp, so a missing edge on one channel never disturbs another.
type PWMDecoder struct {
	counters
	out    *rc.Buffer
	limits Limits
	start  [rc.MaxSlots]uint16
	high   [rc.MaxSlots]bool
}

// NewPWMDecoder returns a decoder storing widths into out.
func NewPWMDecoder(out *rc.Buffer, limits Limits) *PWMDecoder {
	return &PWMDecoder{out: out, limits: limits}
}

// Edge records the rising edge timestamp or, on the falling edge, stores the
// measured width for line.
func (d *PWMDecoder) Edge(line int, rising bool, now uint16) {
	if line < 0 || line >= len(d.start) {
		return
	}
	if rising {
		d.start[line] = now
		d.high[line] = true
		return
	}
	if !d.high[line] {
		d.errors.Add(1)
		return
	}
	d.high[line] = false
	w := now - d.start[line]
	if !d.limits.valid(w) {
		d.errors.Add(1)
		return
	}
	d.out.Store(line, w)
	d.frames.Add(1)
}

type vectorState uint8

const (
	vectorIdle vectorState = iota
	vectorARunning
	vectorBRunning
)

// SharedVectorDecoder measures two PWM inputs that share one pin-change
// interrupt. The interrupt does not say which pin changed, so the decoder
// polls both levels and walks idle -> A running -> idle or
// idle -> B running -> idle. An interrupt that fits neither path drops back
// to idle and the affected channel keeps its last good width.
type SharedVectorDecoder struct {
	counters
	out    *rc.Buffer
	limits Limits
	pins   [2]hal.InputPin
	slots  [2]int
	state  vectorState
	start  uint16
}

// NewSharedVectorDecoder watches pins a and b, storing their widths into
// slots slotA and slotB.
func NewSharedVectorDecoder(out *rc.Buffer, limits Limits, a, b hal.InputPin, slotA, slotB int) *SharedVectorDecoder {
	return &SharedVectorDecoder{
		out:    out,
		limits: limits,
		pins:   [2]hal.InputPin{a, b},
		slots:  [2]int{slotA, slotB},
	}
}

// Edge handles the shared interrupt. line and rising are ignored; the pin
// levels are read instead.
func (d *SharedVectorDecoder) Edge(_ int, _ bool, now uint16) {
	a, b := d.pins[0].Get(), d.pins[1].Get()
	switch d.state {
	case vectorIdle:
		switch {
		case a && !b:
			d.start, d.state = now, vectorARunning
		case b && !a:
			d.start, d.state = now, vectorBRunning
		default:
			d.errors.Add(1)
		}
	case vectorARunning:
		d.finish(0, !a, now)
	case vectorBRunning:
		d.finish(1, !b, now)
	}
}

func (d *SharedVectorDecoder) finish(i int, fell bool, now uint16) {
	d.state = vectorIdle
	if !fell {
		d.errors.Add(1)
		return
	}
	w := now - d.start
	if !d.limits.valid(w) {
		d.errors.Add(1)
		return
	}
	d.out.Store(d.slots[i], w)
	d.frames.Add(1)
}
