package automation

import (
	"context"
	"fmt"

	"github.com/dkarlov/faretrack/pkg/logger"
)

// Session serializes dialog-opening interactions on one shared UI session.
// Opening a detail dialog, a seat-map overlay and a fare tray are mutually
// exclusive interactions on the same row, so each is wrapped in an explicit
// acquire/release scope: a failure mid-dialog still triggers the close path.
type Session struct {
	driver Driver
	logger *logger.Logger
}

// NewSession creates a session around the given driver.
func NewSession(driver Driver, log *logger.Logger) *Session {
	return &Session{
		driver: driver,
		logger: log.Named("session"),
	}
}

// Driver exposes the underlying driver for read-only interactions that do
// not open a dialog.
func (s *Session) Driver() Driver {
	return s.driver
}

// WithDialog opens a dialog, runs fn inside it, and always attempts the
// close path afterwards. A close failure after a successful fn is an error;
// a close failure after a failed fn is logged and the original error wins.
func (s *Session) WithDialog(ctx context.Context, open, close, fn func(context.Context) error) error {
	if err := open(ctx); err != nil {
		return fmt.Errorf("failed to open dialog: %w", err)
	}

	fnErr := fn(ctx)

	if err := close(ctx); err != nil {
		if fnErr != nil {
			s.logger.Warn("Failed to close dialog after error",
				logger.Error(err))
			return fnErr
		}
		return fmt.Errorf("failed to close dialog: %w", err)
	}

	return fnErr
}
