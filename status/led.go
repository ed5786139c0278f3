// Package status drives the status LEDs.
//
// While waiting the red and green LEDs alternate. Calibration counts down with
// three blinks and then flashes quickly. Flight is solid green, failsafe a
// rapid red flash and a sensor error a slow flash.
package status

import "github.com/BryanSouza91/nextcopter/hal"

// Pattern is an LED pattern.
type Pattern uint8

const (
	Off Pattern = iota
	On
	SlowFlash
	FastFlash
	Flash
	Alternate
	Blink3
)

var patternNames = [...]string{"off", "on", "slow-flash", "fast-flash", "flash", "alternate", "blink3"}

func (p Pattern) String() string {
	if int(p) < len(patternNames) {
		return patternNames[p]
	}
	return "invalid"
}

// half-periods in milliseconds
const (
	slowFlashMs = 250
	fastFlashMs = 50
	flashMs     = 150
	alternateMs = 500
	blinkMs     = 150
	blinkCount  = 3
)

// LED runs a pattern on a primary pin. Alternate swaps between the primary
// and the secondary pin; a nil secondary just flashes the primary.
type LED struct {
	pin       hal.OutputPin
	alt       hal.OutputPin
	pattern   Pattern
	lastMs    uint32
	isOn      bool
	toggles   int
	restarted bool
}

// NewLED returns an LED that starts off.
func NewLED(pin, alt hal.OutputPin) *LED {
	l := &LED{pin: pin, alt: alt}
	l.set(false)
	return l
}

// SetPattern switches pattern. Setting the current pattern again is a no-op,
// so the caller may set it every tick.
func (l *LED) SetPattern(p Pattern) {
	if p == l.pattern {
		return
	}
	l.pattern = p
	l.toggles = 0
	l.restarted = true
}

// Pattern returns the current pattern.
func (l *LED) Pattern() Pattern { return l.pattern }

// Lit reports whether the primary LED is on.
func (l *LED) Lit() bool { return l.isOn }

// Update advances the pattern to nowMs, a wrapping millisecond clock.
func (l *LED) Update(nowMs uint32) {
	if l.restarted {
		l.restarted = false
		l.lastMs = nowMs
		switch l.pattern {
		case Off:
			l.set(false)
		default:
			l.set(true)
		}
		return
	}
	switch l.pattern {
	case Off:
		l.set(false)
	case On:
		l.set(true)
	case SlowFlash:
		l.toggle(nowMs, slowFlashMs)
	case FastFlash:
		l.toggle(nowMs, fastFlashMs)
	case Flash:
		l.toggle(nowMs, flashMs)
	case Alternate:
		l.toggle(nowMs, alternateMs)
	case Blink3:
		if l.toggles >= blinkCount*2-1 {
			l.set(false)
			return
		}
		if l.toggle(nowMs, blinkMs) {
			l.toggles++
		}
	}
}

func (l *LED) toggle(nowMs, halfMs uint32) bool {
	if nowMs-l.lastMs < halfMs {
		return false
	}
	l.set(!l.isOn)
	l.lastMs = nowMs
	return true
}

func (l *LED) set(on bool) {
	l.isOn = on
	l.pin.Set(on)
	if l.alt != nil {
		l.alt.Set(l.pattern == Alternate && !on)
	}
}
