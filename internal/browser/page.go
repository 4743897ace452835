// Package browser provides the rendered-page capability the crawler,
// extractor and solver operate against. Two implementations exist: a
// headless-Chrome page driven over the DevTools protocol, and a static
// page backed by plain HTTP for browserless runs and tests.
package browser

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotInteractive is returned by element operations that require a
// live browser (clicks) when the page is a static snapshot.
var ErrNotInteractive = errors.New("page is not interactive")

// NavigationError wraps a failure to load a URL.
type NavigationError struct {
	URL string
	Err error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigation to %s failed: %v", e.URL, e.Err)
}

func (e *NavigationError) Unwrap() error { return e.Err }

// Element is a handle to one element of the rendered document.
// Handles may go stale after navigation or reload; operations on a
// stale handle return empty results or errors, never panic.
type Element interface {
	// Text returns the element's text content.
	Text(ctx context.Context) (string, error)

	// Attribute returns the named attribute, or "" when absent.
	Attribute(ctx context.Context, name string) (string, error)

	// TagName returns the lower-cased tag name.
	TagName(ctx context.Context) (string, error)

	// Click dispatches a click on the element.
	Click(ctx context.Context) error

	// Query returns all descendants matching the selector, in
	// document order.
	Query(ctx context.Context, selector string) ([]Element, error)

	// QueryOne returns the first matching descendant, or nil when
	// nothing matches.
	QueryOne(ctx context.Context, selector string) (Element, error)
}

// Page is the single rendered-page handle shared by the whole crawl.
// It is exclusively owned by whichever component is currently active;
// nothing accesses it concurrently.
type Page interface {
	// Navigate loads the URL. Failures are reported as *NavigationError.
	Navigate(ctx context.Context, url string) error

	// AwaitStable waits for the page to reach a loaded state. It is
	// best effort: on timeout it falls back to a weaker readiness
	// probe instead of returning the timeout.
	AwaitStable(ctx context.Context, timeout time.Duration) error

	// Reload reloads the current page, resetting transient state.
	Reload(ctx context.Context) error

	// Query returns all elements matching the selector in document order.
	Query(ctx context.Context, selector string) ([]Element, error)

	// QueryOne returns the first match, or nil when nothing matches.
	QueryOne(ctx context.Context, selector string) (Element, error)

	// Content returns the full serialized markup of the current page.
	Content(ctx context.Context) (string, error)

	// CurrentURL returns the page's current location.
	CurrentURL() string

	// Close releases the page and any underlying browser session.
	Close() error
}
