package cmd

import (
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/BryanSouza91/nextcopter/config"
	"github.com/BryanSouza91/nextcopter/mixer"
)

func InitCmdFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("print", false, "print config to stdout")
	cmd.Flags().BoolP("yes", "y", false, "overwrite")
	cmd.Flags().StringP("output", "o", config.DefaultPath, "specify output file")
	cmd.Flags().String("airframe", "wing", "mixer preset: wing or aeroplane")
}

// templateConfig returns the defaults with the requested mixer preset.
func templateConfig(airframe string) (config.Config, error) {
	cfg := config.Default()
	ch, ok := mixer.Preset(airframe)
	if !ok {
		return config.Config{}, fmt.Errorf("unknown airframe %q", airframe)
	}
	cfg.Mixer.Channels = ch
	return cfg, nil
}

func InitCmdRunE(cmd *cobra.Command, _ []string) error {
	airframe, _ := cmd.Flags().GetString("airframe")
	cfg, err := templateConfig(airframe)
	if err != nil {
		return err
	}

	if printFlag, _ := cmd.Flags().GetBool("print"); printFlag {
		b, err := config.Dump(cfg)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), string(b))
		return nil
	}

	output, _ := cmd.Flags().GetString("output")
	yes, _ := cmd.Flags().GetBool("yes")
	switch err := config.Save(output, cfg, yes); {
	case errors.Is(err, config.ErrExists):
		log.Errorln("configuration exists, use -y to overwrite:", output)
		return err
	case err != nil:
		return err
	}
	log.Infoln("configuration written to", output)
	return nil
}

var InitCmd = &cobra.Command{
	Use: "init",
	SuggestFor: []string{
		"ini", "in",
	},
	Short: "init create a configuration template",
	Long: `init create a configuration template.
If --print flag is present, the configuration will be printed to stdout.
If --output / -o flag is present, the configuration will be saved to the path specified
Otherwise init will output configuration file to $HOME/.config/nextcopter/config.yaml
If --yes / -y flag is present, an existing file will be overwritten
`,
	Example: `  nextcopter init --print
  nextcopter init --airframe aeroplane -o ./config.yaml
  nextcopter init -o /path/to/config.yaml -y`,
	RunE: InitCmdRunE,
}
