package cmd

import (
	"errors"
	"fmt"
	"io"
	"time"

	tarm "github.com/tarm/serial"
	"go.bug.st/serial"
)

const readTimeout = 100 * time.Millisecond

// standardBauds are the rates tarm/serial maps onto termios constants.
// Receiver links at other rates (CRSF at 420000, S.Bus at 100000) go through
// go.bug.st/serial, which programs arbitrary rates.
var standardBauds = map[int]bool{
	9600: true, 19200: true, 38400: true, 57600: true, 115200: true, 230400: true,
}

// timeoutReader turns the end-of-file tarm/serial reports on a read timeout
// into an empty read, so a quiet line does not end the stream.
type timeoutReader struct {
	io.ReadCloser
}

func (r timeoutReader) Read(p []byte) (int, error) {
	n, err := r.ReadCloser.Read(p)
	if errors.Is(err, io.EOF) {
		return n, nil
	}
	return n, err
}

// openPort opens name for reading at baud. Even parity with two stop bits
// is selected for S.Bus style links.
func openPort(name string, baud int, evenParity bool) (io.ReadCloser, error) {
	if standardBauds[baud] {
		c := &tarm.Config{Name: name, Baud: baud, ReadTimeout: readTimeout}
		if evenParity {
			c.Parity, c.StopBits = tarm.ParityEven, tarm.Stop2
		}
		p, err := tarm.OpenPort(c)
		if err != nil {
			return nil, fmt.Errorf("serial open %s: %w", name, err)
		}
		return timeoutReader{p}, nil
	}

	mode := &serial.Mode{BaudRate: baud, DataBits: 8, Parity: serial.NoParity, StopBits: serial.OneStopBit}
	if evenParity {
		mode.Parity, mode.StopBits = serial.EvenParity, serial.TwoStopBits
	}
	p, err := serial.Open(name, mode)
	if err != nil {
		return nil, fmt.Errorf("serial open %s: %w", name, err)
	}
	if err := p.SetReadTimeout(readTimeout); err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("serial timeout %s: %w", name, err)
	}
	return p, nil
}
