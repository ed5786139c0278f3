package cmd

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/BryanSouza91/nextcopter/config"
)

var RootCmd = &cobra.Command{
	Use:   config.AppName,
	Short: "host tools for the nextcopter flight controller",
	Long: `host tools for the nextcopter flight controller.
The same control core that runs on the board can be driven here against a
simulated airframe, or fed from a real receiver on a serial port or GPIO lines.`,
	SilenceUsage: true,
}

func RootCmdFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("config", "", "configuration file path")
	cmd.PersistentFlags().Bool("debug", false, "toggle debug logging")
}

// loadConfig resolves the configuration for cmd and applies its log level.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, file, err := config.Load(cmd)
	if err != nil {
		return config.Config{}, err
	}
	config.PostParse(cfg)
	if file != "" {
		log.WithField("file", file).Infoln("configuration loaded")
	}
	return cfg, nil
}

func getRootCmd() *cobra.Command {
	RootCmdFlags(RootCmd)

	InitCmdFlags(InitCmd)
	RootCmd.AddCommand(InitCmd)

	SimCmdFlags(SimCmd)
	RootCmd.AddCommand(SimCmd)

	RxCmdFlags(RxCmd)
	RootCmd.AddCommand(RxCmd)

	RootCmd.AddCommand(ProbeCmd)

	addPlatformCommands(RootCmd)

	return RootCmd
}

func Execute() {
	rootCmd := getRootCmd()
	if err := rootCmd.Execute(); err != nil {
		log.Fatalln(err)
	}
}
