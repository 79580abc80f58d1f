package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
)

// ErrUnsupported is returned by backends that cannot observe the requested value.
var ErrUnsupported = errors.New("operation is not supported by this browser backend")

// TimeoutError reports an element that did not become visible in time.
type TimeoutError struct {
	Role     string
	Selector string
	Timeout  time.Duration
}

func (e *TimeoutError) Error() string {
	if e.Role == "" {
		return fmt.Sprintf("element %q was not visible after %s", e.Selector, e.Timeout)
	}
	return fmt.Sprintf("%s (%q) was not visible after %s", e.Role, e.Selector, e.Timeout)
}

// WithRole fills in the role of a timeout error and returns err unchanged otherwise.
func WithRole(err error, role string) error {
	var timeoutErr *TimeoutError
	if errors.As(err, &timeoutErr) && timeoutErr.Role == "" {
		timeoutErr.Role = role
	}
	return err
}

// IsTimeout reports whether err is caused by a wait that expired.
func IsTimeout(err error) bool {
	var timeoutErr *TimeoutError
	return errors.As(err, &timeoutErr)
}

// WaitError converts a failed wait into a *TimeoutError when the wait deadline
// expired while the parent context was still alive.
func WaitError(parent context.Context, err error, selector string, timeout time.Duration) error {
	if err == nil {
		return nil
	}
	if parent.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{Selector: selector, Timeout: timeout}
	}
	return errors.Wrapf(err, "failed to wait for %q", selector)
}
