// Package suggest holds the checks applied to search suggestions and the decision
// of where the search button leads.
package suggest

import (
	"fmt"

	"github.com/pkg/errors"
)

// AssertionError is a check that observed something other than what it expected.
type AssertionError struct {
	Expected string
	Actual   string
	Detail   string
}

func (e *AssertionError) Error() string {
	if e.Expected == "" && e.Actual == "" {
		return e.Detail
	}
	return fmt.Sprintf("%s: expected %q, got %q", e.Detail, e.Expected, e.Actual)
}

// Assertf builds an AssertionError with a formatted detail.
func Assertf(expected, actual, format string, args ...any) error {
	return errors.WithStack(&AssertionError{
		Expected: expected,
		Actual:   actual,
		Detail:   fmt.Sprintf(format, args...),
	})
}

// IsAssertion reports whether err is a failed check.
func IsAssertion(err error) bool {
	var assertionErr *AssertionError
	return errors.As(err, &assertionErr)
}
