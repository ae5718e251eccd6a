package automation

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/dkarlov/faretrack/pkg/logger"
)

// RodConfig configures the go-rod driver.
type RodConfig struct {
	Headless    bool
	WaitTimeout time.Duration
}

// RodDriver implements Driver on top of a go-rod controlled browser.
// Descriptions are interpreted as CSS selectors by this driver only; the
// extraction pipeline never sees them as such.
type RodDriver struct {
	launcher    *launcher.Launcher
	browser     *rod.Browser
	page        *rod.Page
	waitTimeout time.Duration
	logger      *logger.Logger
}

// NewRodDriver launches a browser and opens one blank page. The caller owns
// the driver and must Close it.
func NewRodDriver(ctx context.Context, cfg RodConfig, log *logger.Logger) (*RodDriver, error) {
	l := launcher.New().Headless(cfg.Headless)

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		l.Cleanup()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		_ = browser.Close()
		l.Cleanup()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	waitTimeout := cfg.WaitTimeout
	if waitTimeout <= 0 {
		waitTimeout = 30 * time.Second
	}

	return &RodDriver{
		launcher:    l,
		browser:     browser,
		page:        page,
		waitTimeout: waitTimeout,
		logger:      log.Named("rod"),
	}, nil
}

// Navigate loads the given URL and waits for the load event.
func (d *RodDriver) Navigate(ctx context.Context, url string) error {
	d.logger.Debug("Navigating", logger.String("url", url))

	page := d.page.Context(ctx)
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("failed to wait for page load: %w", err)
	}
	return nil
}

// WaitFor blocks until an element matching the description appears, bounded
// by the configured wait timeout.
func (d *RodDriver) WaitFor(ctx context.Context, description string) (Handle, error) {
	el, err := d.page.Context(ctx).Timeout(d.waitTimeout).Element(description)
	if err != nil {
		return nil, fmt.Errorf("element %q did not appear: %w", description, err)
	}
	return &rodHandle{el: el}, nil
}

// Locate finds all currently present elements matching the description.
func (d *RodDriver) Locate(description string) ([]Handle, error) {
	els, err := d.page.Elements(description)
	if err != nil {
		return nil, fmt.Errorf("failed to locate %q: %w", description, err)
	}
	handles := make([]Handle, len(els))
	for i, el := range els {
		handles[i] = &rodHandle{el: el}
	}
	return handles, nil
}

// Count counts elements matching the description.
func (d *RodDriver) Count(description string) (int, error) {
	els, err := d.page.Elements(description)
	if err != nil {
		return 0, fmt.Errorf("failed to count %q: %w", description, err)
	}
	return len(els), nil
}

// Fill clears the element matching the description and types the value.
func (d *RodDriver) Fill(ctx context.Context, description, value string) error {
	el, err := d.page.Context(ctx).Timeout(d.waitTimeout).Element(description)
	if err != nil {
		return fmt.Errorf("failed to find %q for input: %w", description, err)
	}
	if err := el.SelectAllText(); err != nil {
		return fmt.Errorf("failed to select text in %q: %w", description, err)
	}
	if err := el.Input(value); err != nil {
		return fmt.Errorf("failed to fill %q: %w", description, err)
	}
	return nil
}

// Click clicks the first element matching the description.
func (d *RodDriver) Click(ctx context.Context, description string) error {
	el, err := d.page.Context(ctx).Timeout(d.waitTimeout).Element(description)
	if err != nil {
		return fmt.Errorf("failed to find %q for click: %w", description, err)
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("failed to click %q: %w", description, err)
	}
	return nil
}

// Close shuts the browser down and cleans up the launcher's temp profile.
func (d *RodDriver) Close() error {
	err := d.browser.Close()
	d.launcher.Cleanup()
	if err != nil {
		return fmt.Errorf("failed to close browser: %w", err)
	}
	return nil
}

// rodHandle wraps a rod element as a Handle.
type rodHandle struct {
	el *rod.Element
}

func (h *rodHandle) Text() (string, error) {
	return h.el.Text()
}

func (h *rodHandle) Click(ctx context.Context) error {
	return h.el.Context(ctx).Click(proto.InputMouseButtonLeft, 1)
}

func (h *rodHandle) Visible() (bool, error) {
	return h.el.Visible()
}

func (h *rodHandle) Locate(description string) ([]Handle, error) {
	els, err := h.el.Elements(description)
	if err != nil {
		return nil, fmt.Errorf("failed to locate %q: %w", description, err)
	}
	handles := make([]Handle, len(els))
	for i, el := range els {
		handles[i] = &rodHandle{el: el}
	}
	return handles, nil
}

func (h *rodHandle) Count(description string) (int, error) {
	els, err := h.el.Elements(description)
	if err != nil {
		return 0, fmt.Errorf("failed to count %q: %w", description, err)
	}
	return len(els), nil
}
