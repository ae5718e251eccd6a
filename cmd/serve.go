package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dkarlov/faretrack/internal/api"
	"github.com/dkarlov/faretrack/internal/automation"
	"github.com/dkarlov/faretrack/internal/config"
	"github.com/dkarlov/faretrack/internal/scraper"
	"github.com/dkarlov/faretrack/internal/series"
	"github.com/dkarlov/faretrack/internal/storage/sqlite"
	"github.com/dkarlov/faretrack/pkg/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the series API and run scheduled captures",
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

		aggregator := series.NewAggregator(store, log)
		runner := scraper.NewRunner(cfg, store, rodFactory(cfg, log), log)

		var scheduler *scraper.Scheduler
		if cfg.Scraper.Schedule != "" {
			scheduler = scraper.NewScheduler(runner, cfg.Scraper.Schedule, log)
			if err := scheduler.Start(); err != nil {
				return err
			}
			defer scheduler.Stop()
		} else {
			log.Info("No scrape schedule configured, serving stored snapshots only")
		}

		router := api.NewRouter(aggregator, runner, cfg, log)
		server := &http.Server{
			Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			Handler: router.Routes(),
		}

		errCh := make(chan error, 1)
		go func() {
			log.Info("HTTP server listening", logger.String("addr", server.Addr))
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errCh <- err
			}
		}()

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-errCh:
			return fmt.Errorf("server failed: %w", err)
		case sig := <-stop:
			log.Info("Shutting down", logger.String("signal", sig.String()))
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	},
}

// rodFactory creates one browser-backed driver per capture run.
func rodFactory(cfg *config.Config, log *logger.Logger) scraper.DriverFactory {
	return func(ctx context.Context) (automation.Driver, error) {
		return automation.NewRodDriver(ctx, automation.RodConfig{
			Headless:    cfg.Scraper.Headless,
			WaitTimeout: cfg.Scraper.WaitTimeout(),
		}, log)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
