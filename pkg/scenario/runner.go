package scenario

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/savioxavier/termlink"

	"github.com/integrail/suggest-e2e/pkg/browser"
	"github.com/integrail/suggest-e2e/pkg/suggest"
	"github.com/integrail/suggest-e2e/pkg/wiki"
)

type Status string

const (
	Passed  Status = "passed"
	Failed  Status = "failed"
	Skipped Status = "skipped"
)

type Result struct {
	Scenario   Scenario
	Status     Status
	Err        error
	Duration   time.Duration
	Screenshot string
}

// Kind names the error class of a failed result.
func (r Result) Kind() string {
	switch {
	case r.Err == nil:
		return ""
	case errors.Is(r.Err, ErrNotAutomated):
		return "not automated"
	case browser.IsTimeout(r.Err):
		return "timeout"
	case suggest.IsAssertion(r.Err):
		return "assertion"
	default:
		return "error"
	}
}

type Runner struct {
	sessions      browser.Factory
	baseURL       string
	pageOpts      []wiki.Option
	reporter      Reporter
	screenshotDir string
	onResult      func(Result)
}

type RunnerOption func(r *Runner)

func WithPageOptions(opts ...wiki.Option) RunnerOption {
	return func(r *Runner) {
		r.pageOpts = append(r.pageOpts, opts...)
	}
}

func WithReporter(reporter Reporter) RunnerOption {
	return func(r *Runner) {
		r.reporter = reporter
	}
}

// WithScreenshotDir saves a screenshot of every failed scenario into dir.
func WithScreenshotDir(dir string) RunnerOption {
	return func(r *Runner) {
		r.screenshotDir = dir
	}
}

// WithResultHandler is called after each scenario finishes.
func WithResultHandler(fn func(Result)) RunnerOption {
	return func(r *Runner) {
		r.onResult = fn
	}
}

func NewRunner(sessions browser.Factory, baseURL string, opts ...RunnerOption) *Runner {
	r := &Runner{
		sessions: sessions,
		baseURL:  baseURL,
		reporter: nopReporter{},
		onResult: func(Result) {},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes scenarios one after another. A failing scenario never stops the
// following ones.
func (r *Runner) Run(ctx context.Context, scenarios []Scenario) []Result {
	results := make([]Result, 0, len(scenarios))
	for _, s := range scenarios {
		res := r.RunOne(ctx, s)
		results = append(results, res)
		r.onResult(res)
	}
	return results
}

// RunOne executes a scenario in a fresh session that is closed whatever the outcome.
func (r *Runner) RunOne(ctx context.Context, s Scenario) (res Result) {
	res = Result{Scenario: s}
	if s.NotAutomated != "" {
		res.Status = Skipped
		res.Err = errors.Wrap(ErrNotAutomated, s.NotAutomated)
		r.reporter.Report(fmt.Sprintf("SKIP %s: %s", s.Name, s.NotAutomated))
		return res
	}

	start := time.Now()
	defer func() { res.Duration = time.Since(start) }()
	if err := ctx.Err(); err != nil {
		res.Status, res.Err = Failed, err
		return res
	}

	r.reporter.Report(fmt.Sprintf("RUN  %s (%s)", s.Name, s.Title))
	session, err := r.sessions(ctx)
	if err != nil {
		res.Status, res.Err = Failed, errors.Wrapf(err, "failed to open browser session")
		r.reporter.Report(fmt.Sprintf("FAIL %s: %v", s.Name, res.Err))
		return res
	}
	defer func() {
		if err := session.Close(); err != nil {
			r.reporter.Report(fmt.Sprintf("failed to close session of %s: %v", s.Name, err))
		}
	}()

	err = s.Run(ctx, wiki.NewHomePage(session, r.baseURL, r.pageOpts...))
	if err == nil {
		res.Status = Passed
		r.reporter.Report(fmt.Sprintf("PASS %s", s.Name))
		return res
	}
	res.Status, res.Err = Failed, err
	r.reporter.Report(fmt.Sprintf("FAIL %s: %v", s.Name, err))
	if r.screenshotDir != "" {
		res.Screenshot = r.saveScreenshot(ctx, session, s.Name)
	}
	return res
}

func (r *Runner) saveScreenshot(ctx context.Context, session browser.Session, name string) string {
	shot, err := session.Screenshot(ctx)
	if err != nil {
		r.reporter.Report(fmt.Sprintf("failed to take screenshot of %s: %v", name, err))
		return ""
	}
	if err := os.MkdirAll(r.screenshotDir, 0o755); err != nil {
		r.reporter.Report(fmt.Sprintf("failed to create %s: %v", r.screenshotDir, err))
		return ""
	}
	fileName := filepath.Join(r.screenshotDir, name+".png")
	if err := os.WriteFile(fileName, shot, 0o644); err != nil {
		r.reporter.Report(fmt.Sprintf("failed to save screenshot of %s to %s: %v", name, fileName, err))
		return ""
	}
	if abs, err := filepath.Abs(fileName); err == nil {
		fileName = abs
	}
	r.reporter.Report(fmt.Sprintf("screenshot of %s saved to ", name) +
		termlink.ColorLink(name+".png", "file://"+fileName, "italic green"))
	return fileName
}

// Failures counts results that did not pass and were not skipped.
func Failures(results []Result) int {
	n := 0
	for _, res := range results {
		if res.Status == Failed {
			n++
		}
	}
	return n
}
