package main

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/i474232898/weather-cache/internal/config"
	"github.com/i474232898/weather-cache/internal/logging"
)

// rootFlags holds the persistent flags shared by every command.
type rootFlags struct {
	configFile string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:   "weather-cache",
		Short: "Weather snapshots behind a TTL cache",
		Long: `weather-cache serves current conditions and a 7-day forecast per location.

Snapshots come from a pluggable provider and are cached per location for a
configurable TTL, so repeated requests do not hit the provider.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// .env is optional.
			if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, flags)
		},
	}

	root.PersistentFlags().StringVarP(&flags.configFile, "config", "c", "", "path to a YAML config file (default $"+config.ConfigFileEnv+")")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides LOG_LEVEL)")

	root.AddCommand(newServeCmd(flags))
	root.AddCommand(newFetchCmd(flags))
	return root
}

// loadConfig loads configuration and builds the logger, applying flag overrides.
func loadConfig(cmd *cobra.Command, flags *rootFlags) (*config.AppConfig, zerolog.Logger, error) {
	cfg, err := config.Load(flags.configFile)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	if flags.logLevel != "" {
		cfg.LogLevel = flags.logLevel
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
	return cfg, log, nil
}
