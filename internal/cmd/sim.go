package cmd

import (
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/BryanSouza91/nextcopter/capture"
	"github.com/BryanSouza91/nextcopter/config"
	"github.com/BryanSouza91/nextcopter/fc"
	"github.com/BryanSouza91/nextcopter/mixer"
	"github.com/BryanSouza91/nextcopter/output"
	"github.com/BryanSouza91/nextcopter/rc"
	"github.com/BryanSouza91/nextcopter/sensor"
	"github.com/BryanSouza91/nextcopter/serialrx"
	"github.com/BryanSouza91/nextcopter/sim"
)

// rcFrameUs is the transmitter frame period.
const rcFrameUs = 20000

type simOptions struct {
	Seconds  float64
	Airframe string
	// Disturbance is a roll rate in deg/s pushed onto the airframe once it
	// is armed.
	Disturbance float64
	Roll, Pitch float64
	Level       bool
	// Calibrate adds a gyro bias and flips the calibration switch before
	// arming.
	Calibrate bool
	Noise     int32
	Report    float64
}

type simResult struct {
	Status fc.Status
	Angle  [3]float64
	Stats  capture.Stats
}

// link carries transmitter frames into the channel buffer through the
// configured receiver front end.
type link interface {
	send(widths []uint16)
	stats() capture.Stats
}

type pulseLink struct {
	dec capture.PulseDecoder
	tx  interface {
		Send(capture.PulseDecoder, []uint16)
	}
}

func (l pulseLink) send(widths []uint16) { l.tx.Send(l.dec, widths) }
func (l pulseLink) stats() capture.Stats { return l.dec.Stats() }

type serialLink struct {
	p  serialrx.Protocol
	rx *serialrx.Receiver
}

func (l serialLink) send(widths []uint16) {
	b, err := serialrx.Encode(l.p, widths)
	if err != nil {
		return
	}
	// frames arrive a full frame period apart
	l.rx.Resync()
	_, _ = l.rx.Write(b)
}

func (l serialLink) stats() capture.Stats {
	return capture.Stats{Frames: l.rx.Frames(), Errors: l.rx.Errors()}
}

func newLink(r config.Receiver, buf *rc.Buffer) (link, error) {
	switch r.Protocol {
	case config.ProtocolCPPM:
		dec := capture.NewCPPMDecoder(buf, capture.CPPMConfig{Limits: r.Limits(), SyncGap: r.SyncGap})
		return pulseLink{dec: dec, tx: sim.NewCPPMTransmitter(0)}, nil
	case config.ProtocolPWM:
		return pulseLink{dec: capture.NewPWMDecoder(buf, r.Limits()), tx: sim.NewPWMTransmitter(0)}, nil
	}
	p, ok := r.Serial()
	if !ok {
		return nil, fmt.Errorf("unknown receiver protocol %q", r.Protocol)
	}
	dec, err := serialrx.New(p)
	if err != nil {
		return nil, err
	}
	return serialLink{p: p, rx: serialrx.NewReceiver(dec, buf)}, nil
}

func newVehicle(airframe string) (*sim.Vehicle, []mixer.ChannelConfig, error) {
	ch, ok := mixer.Preset(airframe)
	if !ok {
		return nil, nil, fmt.Errorf("unknown airframe %q", airframe)
	}
	if airframe == "aeroplane" {
		return sim.NewAeroplane(), ch, nil
	}
	return sim.NewWing(), ch, nil
}

// runSim flies the controller against a simulated airframe in virtual time.
// Transmitter frames travel through the configured receiver decoder, so the
// whole input path is exercised.
func runSim(cfg config.Config, o simOptions, logger *log.Entry) (simResult, error) {
	veh, channels, err := newVehicle(o.Airframe)
	if err != nil {
		return simResult{}, err
	}
	cfg.Mixer.Channels = channels
	veh.Angle[sim.Roll] = o.Roll
	veh.Angle[sim.Pitch] = o.Pitch

	order, err := cfg.Receiver.ChannelOrder()
	if err != nil {
		return simResult{}, err
	}
	buf := rc.NewBuffer(order, nil)
	lnk, err := newLink(cfg.Receiver, buf)
	if err != nil {
		return simResult{}, err
	}

	sens := sim.NewSensor(veh)
	sens.Noise = o.Noise
	armAt := 0.5
	if o.Calibrate {
		sens.GyroBias = sensor.Vector{6, -4, 3}
		armAt = 2
	}

	rec := &output.Recorder{}
	ctl, err := fc.New(cfg, fc.Deps{RC: buf, Sensor: sens, Output: rec, Log: logger.WithField("component", "fc")})
	if err != nil {
		return simResult{}, err
	}

	var sticks [rc.NumChannels]uint16
	for ch := range sticks {
		sticks[ch] = 1500
	}
	sticks[rc.Throttle] = 1000
	sticks[rc.Aux1] = 1000
	if o.Level {
		sticks[rc.Aux1] = 2000
	}
	widths := make([]uint16, rc.NumChannels)

	period := cfg.LoopPeriodUs()
	dt := float64(period) * 1e-6
	ticks := int(o.Seconds / dt)
	reportEvery := ticks + 1
	if o.Report > 0 {
		reportEvery = int(math.Max(1, o.Report/dt))
	}

	var (
		res       simResult
		nextFrame uint32
		nowUs     uint32
	)
	for i := 0; i < ticks; i++ {
		t := float64(i) * dt
		sticks[rc.Gear] = 1000
		if t >= armAt {
			sticks[rc.Gear] = 2000
			sticks[rc.Throttle] = 1500
		}
		sticks[rc.Aux3] = 1000
		if o.Calibrate && t >= 0.1 && t < 1.5 {
			sticks[rc.Aux3] = 2000
		}

		if nowUs >= nextFrame {
			for slot, ch := range order {
				widths[slot] = sticks[ch]
			}
			lnk.send(widths)
			nextFrame += rcFrameUs
		}

		st, err := ctl.Tick(nowUs)
		if err != nil {
			logger.WithError(err).Warnln("tick")
		}
		if st.State == fc.Armed {
			veh.Disturbance[sim.Roll] = o.Disturbance
		}
		veh.Step(rec.Last(), dt)
		nowUs += period
		res.Status = st

		if (i+1)%reportEvery == 0 {
			logger.WithFields(log.Fields{
				"t":       fmt.Sprintf("%.2f", t+dt),
				"state":   st.State,
				"profile": st.Profile,
				"roll":    fmt.Sprintf("%.1f", veh.Angle[sim.Roll]),
				"pitch":   fmt.Sprintf("%.1f", veh.Angle[sim.Pitch]),
				"est":     fmt.Sprintf("%.1f/%.1f", float64(st.Attitude.Roll)/10, float64(st.Attitude.Pitch)/10),
				"outputs": fmt.Sprint(st.Outputs),
			}).Infoln("sim")
		}
	}

	res.Angle = veh.Angle
	res.Stats = lnk.stats()
	return res, nil
}

func SimCmdFlags(cmd *cobra.Command) {
	cmd.Flags().Float64("seconds", 10, "simulated flight time")
	cmd.Flags().String("protocol", "", "receiver protocol, defaults to the configured one")
	cmd.Flags().String("airframe", "wing", "airframe model and mixer preset: wing or aeroplane")
	cmd.Flags().Float64("disturbance", 20, "roll disturbance in deg/s once armed")
	cmd.Flags().Float64("roll", 0, "initial roll in degrees")
	cmd.Flags().Float64("pitch", 0, "initial pitch in degrees")
	cmd.Flags().Bool("level", false, "fly the auto-level profile")
	cmd.Flags().Bool("calibrate", false, "run the calibration switch before arming")
	cmd.Flags().Int32("noise", 0, "sensor noise amplitude in raw units")
	cmd.Flags().Float64("report", 1, "status report interval in seconds, 0 to disable")
}

func SimCmdRunE(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if p, _ := cmd.Flags().GetString("protocol"); p != "" {
		cfg.Receiver.Protocol = p
	}

	var o simOptions
	f := cmd.Flags()
	o.Seconds, _ = f.GetFloat64("seconds")
	o.Airframe, _ = f.GetString("airframe")
	o.Disturbance, _ = f.GetFloat64("disturbance")
	o.Roll, _ = f.GetFloat64("roll")
	o.Pitch, _ = f.GetFloat64("pitch")
	o.Level, _ = f.GetBool("level")
	o.Calibrate, _ = f.GetBool("calibrate")
	o.Noise, _ = f.GetInt32("noise")
	o.Report, _ = f.GetFloat64("report")

	logger := log.WithField("protocol", cfg.Receiver.Protocol)
	res, err := runSim(cfg, o, logger)
	if err != nil {
		return err
	}
	logger.WithFields(log.Fields{
		"state":  res.Status.State,
		"roll":   fmt.Sprintf("%.1f", res.Angle[sim.Roll]),
		"pitch":  fmt.Sprintf("%.1f", res.Angle[sim.Pitch]),
		"frames": res.Stats.Frames,
		"errors": res.Stats.Errors,
	}).Infoln("simulation finished")
	return nil
}

var SimCmd = &cobra.Command{
	Use: "sim",
	SuggestFor: []string{
		"si", "simulate",
	},
	Short: "sim fly the controller against a simulated airframe",
	Long: `sim fly the controller against a simulated airframe.
The loaded configuration drives the controller. Transmitter frames are encoded
for the configured receiver protocol and decoded by the same front end the
board uses. The model arms half a second in, or after the calibration switch
with --calibrate, and the roll disturbance is applied once armed.
`,
	Example: `  nextcopter sim --seconds 5
  nextcopter sim --protocol cppm --level --roll 30
  nextcopter sim --protocol sbus --calibrate --noise 2`,
	RunE: SimCmdRunE,
}
