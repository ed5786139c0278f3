package rc

import "github.com/BryanSouza91/nextcopter/hal"

// Snapshot is a consistent copy of the latest raw channel widths.
type Snapshot struct {
	// Raw holds one pulse width per logical channel in timer ticks.
	Raw [NumChannels]uint16
	// Updated is set when a frame (or PWM channel) arrived since the previous
	// snapshot.
	Updated bool
	// Linked is set once a complete, valid frame has been seen.
	Linked bool
}

// Buffer is the single hand-off point between capture code running in
// interrupt context and the control loop. Writers store widths by transmission
// slot; the loop takes whole snapshots. Every access happens inside the
// locker's critical section, so a snapshot never sees a half-written width.
type Buffer struct {
	mu      hal.Locker
	order   Order
	raw     [NumChannels]uint16
	updated bool
	linked  bool
}

// NewBuffer returns a buffer that remaps slots through order. A nil locker
// selects the platform default.
func NewBuffer(order Order, mu hal.Locker) *Buffer {
	if mu == nil {
		mu = hal.NewLocker()
	}
	return &Buffer{mu: mu, order: order}
}

// SetOrder replaces the slot mapping. Call it between ticks only.
func (b *Buffer) SetOrder(order Order) {
	b.mu.Lock()
	b.order = order
	b.mu.Unlock()
}

// Store records the width of a single slot and flags the buffer updated.
// It is used by per-channel PWM capture, where every channel is its own frame.
func (b *Buffer) Store(slot int, width uint16) {
	b.mu.Lock()
	if ch, ok := b.order.Channel(slot); ok {
		b.raw[ch] = width
		b.updated = true
		b.linked = true
	}
	b.mu.Unlock()
}

// StoreFrame records a complete frame of widths in transmission order.
func (b *Buffer) StoreFrame(widths []uint16) {
	b.mu.Lock()
	for slot, w := range widths {
		if ch, ok := b.order.Channel(slot); ok {
			b.raw[ch] = w
		}
	}
	b.updated = true
	b.linked = true
	b.mu.Unlock()
}

// Snapshot copies the raw widths and flags, then clears the updated flag.
func (b *Buffer) Snapshot() Snapshot {
	b.mu.Lock()
	s := Snapshot{Raw: b.raw, Updated: b.updated, Linked: b.linked}
	b.updated = false
	b.mu.Unlock()
	return s
}

// Linked reports whether a complete frame has ever been stored.
func (b *Buffer) Linked() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.linked
}
