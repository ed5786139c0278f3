//go:build tinygo

package main

import (
	"machine"
	"time"

	"github.com/BryanSouza91/nextcopter/capture"
	"github.com/BryanSouza91/nextcopter/config"
	"github.com/BryanSouza91/nextcopter/fc"
	"github.com/BryanSouza91/nextcopter/hal"
	"github.com/BryanSouza91/nextcopter/output"
	"github.com/BryanSouza91/nextcopter/rc"
	"github.com/BryanSouza91/nextcopter/sensor"
	"github.com/BryanSouza91/nextcopter/serialrx"
	"github.com/BryanSouza91/nextcopter/status"
)

const Version = "0.2.0"

var start = time.Now()

// micros is the free-running microsecond clock. Conversions truncate, so
// it wraps like a hardware timer.
func micros() uint32 { return uint32(time.Since(start).Microseconds()) }

// halt reports a fatal setup error forever; the watchdog is not running yet.
func halt(msg string, err error) {
	for {
		println(msg, err.Error())
		time.Sleep(time.Second)
	}
}

// serialInput drains the UART into the receiver. Gap-framed protocols are
// resynchronized after a quiet line.
type serialInput struct {
	rx   *serialrx.Receiver
	last uint32
}

func (s *serialInput) poll() {
	for uart.Buffered() > 0 {
		b, err := uart.ReadByte()
		if err != nil {
			return
		}
		now := micros()
		if now-s.last > uint32(serialrx.ResyncGap/time.Microsecond) {
			s.rx.Resync()
		}
		s.last = now
		s.rx.Feed(b)
	}
}

// startPulseCapture hooks the capture decoder to pin-change interrupts.
func startPulseCapture(cfg config.Receiver, buf *rc.Buffer) error {
	pins := RX_PWM_PINS
	var dec capture.PulseDecoder
	if cfg.Protocol == config.ProtocolCPPM {
		pins = []machine.Pin{CPPM_PIN}
		dec = capture.NewCPPMDecoder(buf, capture.CPPMConfig{Limits: cfg.Limits(), SyncGap: cfg.SyncGap})
	} else {
		dec = capture.NewPWMDecoder(buf, cfg.Limits())
	}
	for line, pin := range pins {
		line := line
		pin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
		err := pin.SetInterrupt(machine.PinToggle, func(p machine.Pin) {
			dec.Edge(line, p.Get(), uint16(micros()))
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func main() {
	time.Sleep(2 * time.Second)
	println("nextcopter firmware - Version", Version)

	cfg := config.Default()
	log := consoleLogger{debug: cfg.Debug}

	order, err := cfg.Receiver.ChannelOrder()
	if err != nil {
		halt("bad channel order:", err)
	}
	buf := rc.NewBuffer(order, nil)

	var input *serialInput
	if p, ok := cfg.Receiver.Serial(); ok {
		uart.Configure(machine.UARTConfig{
			BaudRate: uint32(p.BaudRate()),
			TX:       machine.NoPin,
			RX:       machine.UART_RX_PIN,
		})
		dec, err := serialrx.New(p)
		if err != nil {
			halt("receiver:", err)
		}
		input = &serialInput{rx: serialrx.NewReceiver(dec, buf)}
		println("UART configured for", p.String(), "receiver input.")
	} else if err := startPulseCapture(cfg.Receiver, buf); err != nil {
		halt("could not configure capture pins:", err)
	} else {
		println("Pin capture configured for", cfg.Receiver.Protocol, "receiver input.")
	}

	i2c.Configure(machine.I2CConfig{Frequency: 400 * machine.KHz})
	imu, err := sensor.NewLSM6DS3TR(i2c)
	if err != nil {
		halt("Failed to configure LSM6DS3TR:", err)
	}
	println("LSM6DS3TR initialized.")

	servos, err := output.NewServos(pwmServo, ELEVON_L_PIN, ELEVON_R_PIN)
	if err != nil {
		halt("could not configure servo PWM:", err)
	}
	esc, err := output.NewPWMGroup(pwmESC, ESC_PWM_FREQUENCY, ESC_PIN)
	if err != nil {
		halt("could not configure ESC PWM:", err)
	}
	// the wing preset puts the motor first, then the left and right elevons
	out := output.Banks{
		{Driver: esc, From: 0, To: 1},
		{Driver: servos, From: 1, To: 3},
	}
	println("PWM configured for servos and ESC.")

	red, green := hal.MachinePin(machine.LED_RED), hal.MachinePin(machine.LED_GREEN)
	red.Configure(hal.Output)
	green.Configure(hal.Output)

	ctl, err := fc.New(cfg, fc.Deps{
		RC:     buf,
		Sensor: imu,
		Output: out,
		LED:    status.NewLED(red, green),
		Log:    log,
	})
	if err != nil {
		halt("configuration rejected:", err)
	}

	machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: WATCHDOG_TIMEOUT_MS})
	machine.Watchdog.Start()
	println("Initialization complete. Entering control loop...")

	ticker := time.NewTicker(time.Duration(cfg.LoopPeriodUs()) * time.Microsecond)
	defer ticker.Stop()
	for {
		<-ticker.C
		if input != nil {
			input.poll()
		}
		if _, err := ctl.Tick(micros()); err != nil {
			log.Debugf("tick: %v", err)
		}
		machine.Watchdog.Update()
	}
}
