// Package automation defines the minimal browser capability surface the
// extraction pipeline consumes, plus a go-rod backed implementation. The
// pipeline never depends on a specific driver's selector syntax; element
// descriptions are opaque strings interpreted by the driver.
package automation

import "context"

// Handle is an opaque reference to a located page element.
type Handle interface {
	// Text returns the element's visible text.
	Text() (string, error)
	// Click clicks the element.
	Click(ctx context.Context) error
	// Visible reports whether the element is currently rendered.
	Visible() (bool, error)
	// Locate finds descendant elements matching the description.
	Locate(description string) ([]Handle, error)
	// Count counts descendant elements matching the description.
	Count(description string) (int, error)
}

// Driver is the capability surface consumed by the scraper. Any driver
// exposing this set suffices; the go-rod implementation is the default.
type Driver interface {
	// Navigate loads the given URL and waits for the page to settle.
	Navigate(ctx context.Context, url string) error
	// WaitFor blocks until an element matching the description appears.
	WaitFor(ctx context.Context, description string) (Handle, error)
	// Locate finds all elements matching the description without waiting.
	Locate(description string) ([]Handle, error)
	// Count counts elements matching the description.
	Count(description string) (int, error)
	// Fill types the value into the element matching the description.
	Fill(ctx context.Context, description, value string) error
	// Click clicks the first element matching the description.
	Click(ctx context.Context, description string) error
	// Close releases the underlying browser session.
	Close() error
}
