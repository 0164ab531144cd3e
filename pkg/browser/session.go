// Package browser wraps a remote headless browser behind a small Session API.
package browser

import (
	"context"
	"time"
)

// Session is a live handle to one headless browser instance. A Session is
// owned by a single caller and must be closed exactly once.
type Session interface {
	// Navigate loads url and waits for the page load event.
	Navigate(url string) error
	// Text returns the rendered text of the first element matching selector.
	Text(selector string) (string, error)
	// Click clicks the first element matching selector.
	Click(selector string) error
	// Input types value into the first element matching selector.
	Input(selector, value string) error
	// Lookup polls for selector for up to timeout. A timeout is reported as an
	// absent Presence, not as an error.
	Lookup(selector string, timeout time.Duration) (Presence, error)
	// Close releases the browser.
	Close() error
}

// Presence is the result of a bounded element lookup.
type Presence struct {
	Text  string
	Found bool
}

// Factory opens new sessions.
type Factory interface {
	NewSession(ctx context.Context) (Session, error)
}
