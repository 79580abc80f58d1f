package browser

import (
	"context"
	"time"
)

// Session is a live browser session. Elements are addressed by CSS selector and
// resolved on every call, so nothing returned by a Session outlives a navigation.
type Session interface {
	Navigate(ctx context.Context, url string) error
	// WaitVisible blocks until the first element matching selector is visible or the
	// timeout expires, in which case a *TimeoutError is returned.
	WaitVisible(ctx context.Context, selector string, timeout time.Duration) error
	Text(ctx context.Context, selector string) (string, error)
	// Attribute reads a property of the first matching element, falling back to the
	// markup attribute of the same name.
	Attribute(ctx context.Context, selector, name string) (string, error)
	// TextAll returns the text of every matching element in document order.
	TextAll(ctx context.Context, selector string) ([]string, error)
	InnerHTMLAll(ctx context.Context, selector string) ([]string, error)
	ComputedStyleAll(ctx context.Context, selector, property string) ([]string, error)
	Click(ctx context.Context, selector string) error
	// ClickNth clicks the n-th (zero based) element matching selector.
	ClickNth(ctx context.Context, selector string, n int) error
	SendKeys(ctx context.Context, selector, text string) error
	Screenshot(ctx context.Context) ([]byte, error)
	Close() error
}

// Factory opens a new isolated session.
type Factory func(ctx context.Context) (Session, error)
