package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/dkarlov/faretrack/internal/scraper"
	"github.com/dkarlov/faretrack/internal/storage/sqlite"
	"github.com/dkarlov/faretrack/pkg/logger"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Run one capture and persist a snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		defer log.Sync() //nolint:errcheck

		store, err := sqlite.Open(cfg.Storage.Path, log)
		if err != nil {
			return err
		}
		defer store.Close()

		runner := scraper.NewRunner(cfg, store, rodFactory(cfg, log), log)
		key, err := runner.RunOnce(context.Background())
		if err != nil {
			return err
		}

		log.Info("Snapshot stored", logger.String("key", key))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scrapeCmd)
}
