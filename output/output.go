// Package output hands mixed pulse widths to the hardware.
package output

import (
	"errors"
	"sync"

	"github.com/BryanSouza91/nextcopter/mathx"
)

var ErrShort = errors.New("output: fewer pulses than outputs")

// Driver writes one pulse width in microseconds per output.
type Driver interface {
	Write(pulses []int) error
}

// Duty converts a pulse width into a PWM compare value for a timer with the
// given top value and period.
func Duty(pulseUs int, top uint32, periodNs uint64) uint32 {
	if pulseUs < 0 {
		pulseUs = 0
	}
	return uint32(mathx.MapRange(uint64(pulseUs)*1000, 0, periodNs, 0, uint64(top)))
}

// Bank routes pulses From..To (exclusive) to Driver.
type Bank struct {
	Driver   Driver
	From, To int
}

// Banks splits one pulse array across several drivers, for boards where
// servos and ESCs run on timers with different periods.
type Banks []Bank

func (b Banks) Write(pulses []int) error {
	var errs []error
	for _, bank := range b {
		if bank.To > len(pulses) {
			errs = append(errs, ErrShort)
			continue
		}
		if err := bank.Driver.Write(pulses[bank.From:bank.To]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Recorder keeps the last pulses written. It backs the simulator and tests.
type Recorder struct {
	mu     sync.Mutex
	last   []int
	writes int
}

func (r *Recorder) Write(pulses []int) error {
	r.mu.Lock()
	r.last = append(r.last[:0], pulses...)
	r.writes++
	r.mu.Unlock()
	return nil
}

// Last returns a copy of the most recent write.
func (r *Recorder) Last() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.last...)
}

// Writes returns the number of writes seen.
func (r *Recorder) Writes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.writes
}
