//go:build linux && !tinygo

// Package gpio feeds capture decoders from Linux GPIO character-device edge
// events, for running the receiver front end on a single-board computer.
package gpio

import (
	"fmt"
	"time"

	"github.com/warthog618/go-gpiocdev"

	"github.com/BryanSouza91/nextcopter/capture"
)

// Source delivers edges from a set of GPIO lines to a decoder. The line at
// offsets[i] is reported to the decoder as line i.
type Source struct {
	lines *gpiocdev.Lines
	dec   capture.PulseDecoder
	slots map[int]int
}

// Open requests offsets on chip with both-edge detection. Events are handed
// to dec from the gpiocdev watcher goroutine, one at a time.
func Open(chip string, offsets []int, dec capture.PulseDecoder) (*Source, error) {
	s := &Source{dec: dec, slots: make(map[int]int, len(offsets))}
	for i, o := range offsets {
		s.slots[o] = i
	}
	lines, err := gpiocdev.RequestLines(chip, offsets,
		gpiocdev.WithPullUp,
		gpiocdev.WithBothEdges,
		gpiocdev.WithEventHandler(s.handle))
	if err != nil {
		return nil, fmt.Errorf("request lines %v on %s: %w", offsets, chip, err)
	}
	s.lines = lines
	return s, nil
}

func (s *Source) handle(evt gpiocdev.LineEvent) {
	slot, ok := s.slots[evt.Offset]
	if !ok {
		return
	}
	// kernel timestamps are nanoseconds; the decoders count microseconds
	now := uint16(evt.Timestamp / time.Microsecond)
	s.dec.Edge(slot, evt.Type == gpiocdev.LineEventRisingEdge, now)
}

// Close releases the lines.
func (s *Source) Close() error {
	return s.lines.Close()
}
