package serialrx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/BryanSouza91/nextcopter/rc"
)

// ResyncGap is the silence on the line after which a gap-framed protocol
// starts a new frame.
const ResyncGap = 4 * time.Millisecond

// Receiver publishes every valid frame from a Decoder into a channel buffer.
type Receiver struct {
	dec    Decoder
	out    *rc.Buffer
	frames uint32
}

// NewReceiver returns a Receiver feeding out from dec.
func NewReceiver(dec Decoder, out *rc.Buffer) *Receiver {
	return &Receiver{dec: dec, out: out}
}

// Feed passes one byte to the decoder and publishes a completed frame.
func (r *Receiver) Feed(b byte) bool {
	if !r.dec.Feed(b) {
		return false
	}
	r.out.StoreFrame(r.dec.Channels())
	r.frames++
	return true
}

// Write feeds p byte by byte. It never fails.
func (r *Receiver) Write(p []byte) (int, error) {
	for _, b := range p {
		r.Feed(b)
	}
	return len(p), nil
}

// Resync drops any partial frame on gap-framed protocols.
func (r *Receiver) Resync() {
	if rs, ok := r.dec.(Resyncer); ok {
		rs.Resync()
	}
}

// Frames returns the number of frames published.
func (r *Receiver) Frames() uint32 { return r.frames }

// Errors returns the number of frames the decoder rejected.
func (r *Receiver) Errors() uint32 { return r.dec.Errors() }

// Pump reads src until ctx is done or src ends, feeding every byte to rx.
// Reads separated by more than ResyncGap resynchronize gap-framed decoders.
// A clean end of input returns nil.
func Pump(ctx context.Context, src io.Reader, rx *Receiver) error {
	buf := make([]byte, 64)
	var last time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		n, err := src.Read(buf)
		if n > 0 {
			now := time.Now()
			if !last.IsZero() && now.Sub(last) > ResyncGap {
				rx.Resync()
			}
			last = now
			rx.Write(buf[:n])
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("serialrx: read: %w", err)
		}
	}
}
