package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dkarlov/faretrack/internal/config"
	"github.com/dkarlov/faretrack/pkg/logger"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "faretrack",
	Short: "Track fares and seat availability for one round-trip flight search",
	Long: `faretrack periodically captures a flight-search result from a booking
site, persists one dated snapshot per run, and serves the accumulated
snapshots as fare and seat-availability time series.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "faretrack.toml", "path to the TOML config file")
}

// setup loads the config file and builds the root logger.
func setup() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return cfg, log, nil
}
