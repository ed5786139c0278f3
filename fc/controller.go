// Package fc runs the flight control loop: RC snapshot, normalization, link
// monitoring, the arming state machine, sensor acquisition, attitude
// estimation, the stabilization law, mixing and output.
package fc

import (
	"errors"
	"fmt"

	"github.com/BryanSouza91/nextcopter/config"
	"github.com/BryanSouza91/nextcopter/imu"
	"github.com/BryanSouza91/nextcopter/mathx"
	"github.com/BryanSouza91/nextcopter/mixer"
	"github.com/BryanSouza91/nextcopter/output"
	"github.com/BryanSouza91/nextcopter/pid"
	"github.com/BryanSouza91/nextcopter/rc"
	"github.com/BryanSouza91/nextcopter/sensor"
	"github.com/BryanSouza91/nextcopter/status"
)

// CalibrationDelayMs lets the airframe settle after the calibration switch
// is thrown.
const CalibrationDelayMs = 1000

// Logger is the subset of logrus.FieldLogger the controller uses.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...interface{}) {}
func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}

// Deps are the hardware edges of the controller.
type Deps struct {
	RC     *rc.Buffer
	Sensor sensor.RawReader
	Output output.Driver
	// LED is optional.
	LED *status.LED
	// Log defaults to discarding everything.
	Log Logger
}

// Status reports one tick.
type Status struct {
	State       State
	Profile     int
	RC          rc.Result
	LinkLost    bool
	SensorError bool
	Attitude    imu.Attitude
	Gated       bool
	Correction  pid.Output
	// Outputs aliases the mixer buffer and is only valid until the next
	// Tick.
	Outputs []int
	DtUs    uint32
}

// Controller owns every loop-side component. It is not safe for concurrent
// use; only the RC buffer is shared with interrupt context.
type Controller struct {
	log  Logger
	cfg  config.Config
	rc   *rc.Buffer
	out  output.Driver
	led  *status.LED
	norm *rc.Normalizer
	link rc.LinkMonitor
	acq  *sensor.Acquisition
	est  *imu.Estimator
	law  *pid.Law
	mix  *mixer.Mixer

	state      State
	profile    int
	mustDisarm bool
	refused    bool
	lost       bool
	calStartMs uint32
	calibrated bool
	sample     sensor.Sample

	ticked  bool
	lastUs  uint32
	clockUs uint32
	nowMs   uint32
}

// New validates cfg and returns a disarmed controller.
func New(cfg config.Config, d Deps) (*Controller, error) {
	switch {
	case d.RC == nil:
		return nil, ErrNoRC
	case d.Sensor == nil:
		return nil, ErrNoSens
	case d.Output == nil:
		return nil, ErrNoOut
	}
	if d.Log == nil {
		d.Log = nopLogger{}
	}
	c := &Controller{
		log:  d.Log,
		rc:   d.RC,
		out:  d.Output,
		led:  d.LED,
		norm: rc.NewNormalizer(cfg.Receiver.Normalizer()),
		acq:  sensor.New(d.Sensor, cfg.Sensor),
		est:  imu.New(cfg.IMU),
		law:  pid.New(cfg.PID.Profiles[0], cfg.PID.Scale),
		mix:  mixer.New(cfg.Mixer.Channels),
		lost: true,
	}
	if err := c.Apply(cfg); err != nil {
		return nil, err
	}
	return c, nil
}

// Apply swaps in a new configuration between ticks. The estimator and the
// stabilization law restart. It is refused while armed.
func (c *Controller) Apply(cfg config.Config) error {
	if c.state == Armed {
		return ErrArmed
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	order, err := cfg.Receiver.ChannelOrder()
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.rc.SetOrder(order)
	c.norm.SetConfig(cfg.Receiver.Normalizer())
	c.link.Timeout = cfg.Receiver.LinkTimeoutMs
	c.acq.SetConfig(cfg.Sensor)
	c.acq.SetCalibration(cfg.Calibration)
	c.resetEstimator()
	c.law.SetProfile(cfg.PID.Profiles[c.profile], cfg.PID.Scale)
	c.mix.SetChannels(cfg.Mixer.Channels)
	c.log.Infof("configuration applied: %d outputs, %d Hz, imu %s", c.mix.Len(), cfg.Loop.RateHz, cfg.IMU.Variant)
	return nil
}

// Config returns the active configuration including the stick zeros and the
// sensor calibration learned since it was applied.
func (c *Controller) Config() config.Config {
	cfg := c.cfg
	cfg.Calibration = c.acq.Calibration()
	return cfg
}

// State returns the arming state.
func (c *Controller) State() State { return c.state }

// CalibrateInverted runs the upside-down accelerometer pass. The model must
// rest level and inverted.
func (c *Controller) CalibrateInverted() error {
	if c.state != Waiting {
		return ErrArmed
	}
	if err := c.acq.CalibrateAccInverted(c.cfg.Arming.CalibrationSamples); err != nil {
		return fmt.Errorf("fc: inverted calibration: %w", err)
	}
	c.resetEstimator()
	c.log.Infof("inverted calibration done, 1G = %d", c.acq.OneG())
	return nil
}

func (c *Controller) resetEstimator() {
	ic := c.cfg.IMU
	if cal := c.acq.Calibration(); cal.Normal && cal.Inverted {
		ic.OneG = c.acq.OneG()
	}
	c.est.SetConfig(ic)
}

// Tick runs one loop iteration. nowUs is a free-running microsecond counter;
// differences are taken unsigned so the wrap is harmless. An output is
// always written; the returned error reports a failed sensor read,
// calibration or output write.
func (c *Controller) Tick(nowUs uint32) (Status, error) {
	dt := c.cfg.LoopPeriodUs()
	if c.ticked {
		dt = nowUs - c.lastUs
	}
	c.lastUs, c.ticked = nowUs, true
	c.clockUs += dt
	c.nowMs += c.clockUs / 1000
	c.clockUs %= 1000
	now := c.nowMs

	snap := c.rc.Snapshot()
	in := c.norm.Normalize(snap)
	if snap.Updated {
		c.link.Frame(now)
	}
	lost := c.link.Lost(now)
	if lost != c.lost {
		if lost {
			c.log.Warnf("rc link lost after %d ms", c.link.Since(now))
		} else {
			c.log.Infof("rc link up")
		}
		c.lost = lost
	}

	high := func(ch rc.Channel) bool { return in.Values[ch] > c.cfg.Arming.High }
	if !lost {
		c.selectProfile(high(c.cfg.PID.ProfileChannel))
	}

	var errs []error
	errs = append(errs, c.step(now, snap, lost, high(c.cfg.Arming.Channel), high(c.cfg.Arming.CalibrateChannel)))

	sample, err := c.acq.Read()
	if err != nil {
		errs = append(errs, fmt.Errorf("fc: sensor read: %w", err))
		sample = c.sample
	}
	c.sample = sample
	att := c.est.Update(sample, dt)

	var corr pid.Output
	if c.state == Armed {
		dead := c.cfg.Receiver.StickDeadband
		corr = c.law.Update(pid.Input{
			Gyro: [pid.NumAxes]int32(sample.Gyro),
			Stick: [pid.NumAxes]int32{
				int32(mathx.Deadband(in.Values[rc.Aileron], dead)),
				int32(mathx.Deadband(in.Values[rc.Elevator], dead)),
				int32(mathx.Deadband(in.Values[rc.Rudder], dead)),
			},
			Angle:   [pid.LevelAxes]int32{int32(att.Roll), int32(att.Pitch)},
			DynGain: int32(in.Values[c.cfg.PID.DynGainChannel]),
		})
	}

	var pulses []int
	switch c.state {
	case Armed:
		pulses = c.mix.Mix(in.Values, corr)
	case Failsafe:
		pulses = c.mix.Failsafe()
	default:
		pulses = c.mix.Disarmed()
	}
	if err := c.out.Write(pulses); err != nil {
		errs = append(errs, fmt.Errorf("fc: output: %w", err))
	}

	sensorErr := c.acq.SensorError()
	if c.led != nil {
		c.led.SetPattern(pattern(c.state, !lost, sensorErr, c.calibrated))
		c.led.Update(now)
	}

	return Status{
		State:       c.state,
		Profile:     c.profile,
		RC:          in,
		LinkLost:    lost,
		SensorError: sensorErr,
		Attitude:    att,
		Gated:       c.est.Gated(),
		Correction:  corr,
		Outputs:     pulses,
		DtUs:        dt,
	}, errors.Join(errs...)
}

// step advances the arming state machine. A failsafe can only be left
// through Waiting, and Waiting will not arm again until the arm switch has
// been seen off.
func (c *Controller) step(now uint32, snap rc.Snapshot, lost, arm, cal bool) error {
	switch c.state {
	case Waiting:
		switch {
		case lost:
		case c.mustDisarm:
			if !arm {
				c.mustDisarm = false
			}
		case cal:
			c.calStartMs = now
			c.calibrated = false
			c.enter(Calibrating)
		case arm:
			if c.acq.SensorError() {
				if c.cfg.Arming.RefuseOnSensorError {
					if !c.refused {
						c.log.Warnf("arming refused: sensor error, recalibrate")
						c.refused = true
					}
					break
				}
				c.log.Warnf("arming with sensor error flagged")
			}
			c.law.Reset()
			c.enter(Armed)
		default:
			c.refused = false
		}

	case Calibrating:
		if lost || !cal {
			c.enter(Waiting)
			break
		}
		if !c.calibrated && now-c.calStartMs >= CalibrationDelayMs {
			c.calibrated = true
			return c.calibrate(snap)
		}

	case Armed:
		switch {
		case lost:
			c.mustDisarm = true
			c.enter(Failsafe)
		case !arm:
			c.enter(Waiting)
		}

	case Failsafe:
		if !lost {
			c.enter(Waiting)
		}
	}
	return nil
}

func (c *Controller) enter(s State) {
	c.log.Infof("state %s -> %s", c.state, s)
	c.state = s
}

func (c *Controller) selectProfile(high bool) {
	p := 0
	if high {
		p = 1
	}
	if p == c.profile {
		return
	}
	c.profile = p
	c.law.SetProfile(c.cfg.PID.Profiles[p], c.cfg.PID.Scale)
	c.log.Infof("profile %d selected", p)
}

// calibrate zeroes the gyro, runs the normal accelerometer pass and centres
// the sticks. The model must rest level.
func (c *Controller) calibrate(snap rc.Snapshot) error {
	n := c.cfg.Arming.CalibrationSamples
	c.acq.ClearError()
	if err := c.acq.CalibrateGyro(n); err != nil {
		c.log.Errorf("gyro calibration failed: %v", err)
		return fmt.Errorf("fc: gyro calibration: %w", err)
	}
	if err := c.acq.CalibrateAccNormal(n); err != nil {
		c.log.Errorf("accelerometer calibration failed: %v", err)
		return fmt.Errorf("fc: accelerometer calibration: %w", err)
	}
	if snap.Linked {
		c.cfg.Receiver.Zero = rc.CenterSticks(snap, c.cfg.Receiver.Zero)
		c.norm.SetConfig(c.cfg.Receiver.Normalizer())
	}
	c.resetEstimator()

	cal := c.acq.Calibration()
	c.log.Infof("calibrated: gyro %v acc %v", cal.Gyro, cal.Acc)
	if c.acq.SensorError() {
		c.log.Warnf("model moved during gyro calibration")
	}
	return nil
}
