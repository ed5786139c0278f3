//go:build tinygo

package hal

import "runtime/interrupt"

// interruptLocker masks interrupts between Lock and Unlock. Nothing can preempt
// the holder, so the saved state is never overwritten while held.
type interruptLocker struct {
	state interrupt.State
}

func (l *interruptLocker) Lock()   { l.state = interrupt.Disable() }
func (l *interruptLocker) Unlock() { interrupt.Restore(l.state) }

// NewLocker returns the critical-section guard for microcontroller builds.
func NewLocker() Locker { return &interruptLocker{} }
