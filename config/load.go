//go:build !tinygo

package config

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/mitchellh/mapstructure"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	AppName     = "nextcopter"
	ConfigName  = "config"
	EnvConfig   = "NEXTCOPTER_CONFIG"
	SearchPath1 = "/etc/" + AppName
	SearchPath2 = "./"
)

var userHomeDir, _ = os.UserHomeDir()

// DefaultPath is where init writes the configuration template.
var DefaultPath = path.Join(userHomeDir, ".config", AppName, ConfigName+".yaml")

// SearchPath0 is the per-user configuration directory.
var SearchPath0 = path.Join(userHomeDir, ".config", AppName)

// Load builds the configuration for cmd in this order: defaults, the file
// named by --config or NEXTCOPTER_CONFIG or found on the search path,
// NEXTCOPTER_* environment variables, then bound flags. It returns the
// validated configuration and the file used, if any.
func Load(cmd *cobra.Command) (Config, string, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	def, err := Dump(Default())
	if err != nil {
		return Config{}, "", err
	}
	if err := v.ReadConfig(bytes.NewReader(def)); err != nil {
		return Config{}, "", fmt.Errorf("config: defaults: %w", err)
	}

	if file, err := cmd.Flags().GetString("config"); err == nil && file != "" {
		v.SetConfigFile(file)
	} else if file := os.Getenv(EnvConfig); file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(ConfigName)
		v.AddConfigPath(SearchPath0)
		v.AddConfigPath(SearchPath1)
		v.AddConfigPath(SearchPath2)
	}

	v.SetEnvPrefix(AppName)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if f := cmd.Flags().Lookup("debug"); f != nil {
		_ = v.BindPFlag("debug", f)
	}

	var notFound viper.ConfigFileNotFoundError
	switch err := v.MergeInConfig(); {
	case err == nil:
		log.Debugln("using config file:", v.ConfigFileUsed())
	case errors.As(err, &notFound):
		log.Warnln("no config file found, using defaults")
	default:
		return Config{}, "", fmt.Errorf("config: read %s: %w", v.ConfigFileUsed(), err)
	}

	var cfg Config
	err = v.Unmarshal(&cfg,
		func(dc *mapstructure.DecoderConfig) { dc.TagName = "yaml" },
		viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
			mapstructure.TextUnmarshallerHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)),
	)
	if err != nil {
		return Config{}, "", fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, "", err
	}
	return cfg, v.ConfigFileUsed(), nil
}

// PostParse applies the logging level.
func PostParse(cfg Config) {
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}
}

// Dump renders cfg as YAML.
func Dump(cfg Config) ([]byte, error) {
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("config: encode: %w", err)
	}
	return b, nil
}

// Parse decodes YAML into a configuration on top of the defaults and
// validates it.
func Parse(b []byte) (Config, error) {
	cfg := Default()
	// a file that lists outputs replaces the default layout
	cfg.Mixer.Channels = nil
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if cfg.Mixer.Channels == nil {
		cfg.Mixer.Channels = Default().Mixer.Channels
	}
	return cfg, cfg.Validate()
}

// ErrExists is returned by Save when the file exists and overwrite is false.
var ErrExists = errors.New("config: file exists")

// Save writes cfg to file, creating the parent directory.
func Save(file string, cfg Config, overwrite bool) error {
	buffer, err := Dump(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(path.Dir(file), 0700); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}
	if !overwrite {
		if _, err := os.Stat(file); err == nil {
			return fmt.Errorf("%w: %s", ErrExists, file)
		}
	}
	f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("config: open: %w", err)
	}
	defer func() { _ = f.Close() }()

	w := bufio.NewWriter(f)
	if _, err := w.Write(buffer); err != nil {
		return fmt.Errorf("config: write: %w", err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("config: write: %w", err)
	}
	return f.Close()
}
