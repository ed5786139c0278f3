//go:build linux

package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/BryanSouza91/nextcopter/capture"
	"github.com/BryanSouza91/nextcopter/capture/gpio"
	"github.com/BryanSouza91/nextcopter/config"
	"github.com/BryanSouza91/nextcopter/rc"
)

func CaptureCmdFlags(cmd *cobra.Command) {
	cmd.Flags().String("chip", "gpiochip0", "GPIO character device")
	cmd.Flags().IntSlice("lines", []int{17}, "line offsets, one for CPPM or one per channel slot for PWM")
	cmd.Flags().String("mode", "", "cppm or pwm, defaults to the configured protocol")
	cmd.Flags().Duration("interval", 500*time.Millisecond, "report interval")
}

func CaptureCmdRunE(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	mode, _ := cmd.Flags().GetString("mode")
	if mode == "" {
		mode = cfg.Receiver.Protocol
	}
	lines, _ := cmd.Flags().GetIntSlice("lines")
	order, err := cfg.Receiver.ChannelOrder()
	if err != nil {
		return err
	}
	buf := rc.NewBuffer(order, nil)

	var dec capture.PulseDecoder
	switch mode {
	case config.ProtocolCPPM:
		if len(lines) != 1 {
			return fmt.Errorf("cppm needs exactly one line, got %v", lines)
		}
		dec = capture.NewCPPMDecoder(buf, capture.CPPMConfig{Limits: cfg.Receiver.Limits(), SyncGap: cfg.Receiver.SyncGap})
	case config.ProtocolPWM:
		if len(lines) > rc.NumChannels {
			return fmt.Errorf("at most %d pwm lines, got %d", rc.NumChannels, len(lines))
		}
		dec = capture.NewPWMDecoder(buf, cfg.Receiver.Limits())
	default:
		return fmt.Errorf("mode %q is not a pulse protocol", mode)
	}

	chip, _ := cmd.Flags().GetString("chip")
	src, err := gpio.Open(chip, lines, dec)
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	log.WithFields(log.Fields{"chip": chip, "lines": lines, "mode": mode}).Infoln("capturing")
	interval, _ := cmd.Flags().GetDuration("interval")
	reportChannels(ctx, buf, cfg.Receiver, interval)

	st := dec.Stats()
	log.WithFields(log.Fields{"frames": st.Frames, "errors": st.Errors}).Infoln("capture closed")
	return nil
}

var CaptureCmd = &cobra.Command{
	Use: "capture",
	SuggestFor: []string{
		"cap", "gpio",
	},
	Short: "capture decode a PWM or CPPM receiver on GPIO lines",
	Long: `capture decode a PWM or CPPM receiver on GPIO lines.
Edges are timestamped by the kernel and fed to the same pulse decoders the
board runs from its timer interrupts.
`,
	Example: `  nextcopter capture --mode cppm --lines 17
  nextcopter capture --mode pwm --lines 5,6,13,19,26`,
	RunE: CaptureCmdRunE,
}

func addPlatformCommands(root *cobra.Command) {
	CaptureCmdFlags(CaptureCmd)
	root.AddCommand(CaptureCmd)
}
