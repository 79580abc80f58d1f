// Package scenario holds the suite's named scenarios and runs them, each in its own
// browser session.
package scenario

import (
	"context"

	"github.com/pkg/errors"

	"github.com/integrail/suggest-e2e/pkg/wiki"
)

// ErrNotAutomated marks a scenario that is deliberately left to manual checks.
var ErrNotAutomated = errors.New("not automated")

type Scenario struct {
	Name  string
	Title string
	// NotAutomated, when set, explains why Run is never executed.
	NotAutomated string
	Run          func(ctx context.Context, home *wiki.HomePage) error
}

type Reporter interface {
	Report(msg string)
}

type nopReporter struct{}

func (nopReporter) Report(string) {}

// Select returns the scenarios with the given names, all of them if names is empty.
func Select(all []Scenario, names ...string) ([]Scenario, error) {
	if len(names) == 0 {
		return all, nil
	}
	byName := make(map[string]Scenario, len(all))
	for _, s := range all {
		byName[s.Name] = s
	}
	selected := make([]Scenario, 0, len(names))
	for _, name := range names {
		s, ok := byName[name]
		if !ok {
			return nil, errors.Errorf("unknown scenario %q", name)
		}
		selected = append(selected, s)
	}
	return selected, nil
}
