package cmd

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// ProbePorts logs every serial port with its USB identity where the platform
// reports one.
func ProbePorts() error {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		log.WithError(err).Warnln("detailed port list unavailable")
		names, err := serial.GetPortsList()
		if err != nil {
			return err
		}
		for _, name := range names {
			log.WithField("port", name).Infoln("found")
		}
		if len(names) == 0 {
			log.Warnln("no serial ports found")
		}
		return nil
	}
	for _, p := range ports {
		entry := log.WithField("port", p.Name)
		if p.IsUSB {
			entry = entry.WithFields(log.Fields{"vid": p.VID, "pid": p.PID, "serial": p.SerialNumber})
		}
		entry.Infoln("found")
	}
	if len(ports) == 0 {
		log.Warnln("no serial ports found")
	}
	return nil
}

var ProbeCmd = &cobra.Command{
	Use: "probe",
	SuggestFor: []string{
		"pro", "pr", "prob",
	},
	Short: "probe list the serial ports a receiver can be read from",
	Long: `probe list the serial ports a receiver can be read from.
USB adapters are reported with their vendor and product ids.
`,
	Example: `  nextcopter probe`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return ProbePorts()
	},
}
