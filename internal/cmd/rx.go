package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/BryanSouza91/nextcopter/config"
	"github.com/BryanSouza91/nextcopter/rc"
	"github.com/BryanSouza91/nextcopter/serialrx"
)

func RxCmdFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("port", "p", "/dev/ttyUSB0", "serial device the receiver is wired to")
	cmd.Flags().Int("baud", 0, "line rate, 0 selects the protocol rate")
	cmd.Flags().String("protocol", "", "receiver protocol, defaults to the configured one")
	cmd.Flags().Duration("interval", 500*time.Millisecond, "report interval")
}

// reportChannels logs the buffer contents every interval until ctx is done.
func reportChannels(ctx context.Context, buf *rc.Buffer, r config.Receiver, interval time.Duration) {
	norm := rc.NewNormalizer(r.Normalizer())
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		snap := buf.Snapshot()
		res := norm.Normalize(snap)
		fields := log.Fields{"linked": snap.Linked, "fresh": snap.Updated, "hands_free": res.HandsFree}
		for ch := rc.Channel(0); ch < rc.NumChannels; ch++ {
			fields[ch.String()] = [2]int{int(snap.Raw[ch]), res.Values[ch]}
		}
		log.WithFields(fields).Infoln("channels")
	}
}

func RxCmdRunE(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	name, _ := cmd.Flags().GetString("protocol")
	if name == "" {
		name = cfg.Receiver.Protocol
	}
	p, err := serialrx.ParseProtocol(name)
	if err != nil {
		return err
	}
	baud, _ := cmd.Flags().GetInt("baud")
	if baud == 0 {
		baud = p.BaudRate()
	}
	if p.Inverted() {
		log.Warnln(p, "uses inverted levels, wire it through an inverter")
	}

	portName, _ := cmd.Flags().GetString("port")
	port, err := openPort(portName, baud, p == serialrx.ProtocolSBus)
	if err != nil {
		return err
	}
	defer func() { _ = port.Close() }()

	order, err := cfg.Receiver.ChannelOrder()
	if err != nil {
		return err
	}
	buf := rc.NewBuffer(order, nil)
	dec, err := serialrx.New(p)
	if err != nil {
		return err
	}
	rx := serialrx.NewReceiver(dec, buf)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	interval, _ := cmd.Flags().GetDuration("interval")
	go reportChannels(ctx, buf, cfg.Receiver, interval)

	log.WithFields(log.Fields{"port": portName, "baud": baud, "protocol": p}).Infoln("listening")
	err = serialrx.Pump(ctx, port, rx)
	stop()
	log.WithFields(log.Fields{"frames": rx.Frames(), "errors": rx.Errors()}).Infoln("receiver closed")
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

var RxCmd = &cobra.Command{
	Use: "rx",
	SuggestFor: []string{
		"receiver", "recv",
	},
	Short: "rx decode a serial receiver and print its channels",
	Long: `rx decode a serial receiver and print its channels.
The receiver is read from a serial port with the configured protocol. Raw widths
and normalized values are reported for every logical channel until interrupted.
`,
	Example: `  nextcopter rx -p /dev/ttyUSB0 --protocol ibus
  nextcopter rx -p /dev/ttyAMA0 --protocol crsf --interval 1s`,
	RunE: RxCmdRunE,
}
