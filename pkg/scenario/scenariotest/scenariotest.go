// Package scenariotest runs scenarios under go test.
package scenariotest

import (
	"context"
	"testing"

	"github.com/integrail/suggest-e2e/pkg/scenario"
)

// RunT runs every scenario as a subtest titled by its display name. Not automated
// scenarios are skipped with their reason.
func RunT(t *testing.T, r *scenario.Runner, scenarios []scenario.Scenario) {
	t.Helper()
	for _, s := range scenarios {
		t.Run(s.Title, func(t *testing.T) {
			res := r.RunOne(context.Background(), s)
			switch res.Status {
			case scenario.Skipped:
				t.Skip(res.Err)
			case scenario.Failed:
				t.Fatalf("%s: %s failure: %v", s.Name, res.Kind(), res.Err)
			}
		})
	}
}

type reporter struct {
	t *testing.T
}

// Reporter reports through t.Log.
func Reporter(t *testing.T) scenario.Reporter {
	return reporter{t: t}
}

func (r reporter) Report(msg string) {
	r.t.Helper()
	r.t.Log(msg)
}
