// Package local drives a Chrome instance on this machine through the DevTools protocol.
package local

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
	"github.com/pkg/errors"

	"github.com/integrail/suggest-e2e/pkg/browser"
)

type Config struct {
	Headless bool   `json:"headless" yaml:"headless"`
	Width    int    `json:"width" yaml:"width"`
	Height   int    `json:"height" yaml:"height"`
	ExecPath string `json:"execPath" yaml:"execPath"`
}

type Option func(s *session)

// WithLogf routes driver log and error output.
func WithLogf(logf func(format string, args ...any)) Option {
	return func(s *session) {
		s.logf = logf
	}
}

type session struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	logf        func(format string, args ...any)
}

// NewSession starts a dedicated browser process and opens a tab in it.
func NewSession(ctx context.Context, cfg Config, opts ...Option) (browser.Session, error) {
	s := &session{logf: func(string, ...any) {}}
	for _, opt := range opts {
		opt(s)
	}

	width, height := cfg.Width, cfg.Height
	if width == 0 || height == 0 {
		width, height = 1920, 1080
	}
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(width, height),
	)
	if cfg.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(cfg.ExecPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	tabCtx, cancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(s.logf),
		chromedp.WithErrorf(s.logf),
	)
	s.ctx, s.cancel, s.allocCancel = tabCtx, cancel, allocCancel

	// the first Run launches the browser
	if err := chromedp.Run(tabCtx); err != nil {
		cancel()
		allocCancel()
		return nil, errors.Wrapf(err, "failed to start browser")
	}
	return s, nil
}

// run executes actions on the tab while honouring cancellation of the caller's ctx.
func (s *session) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(s.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	if err := chromedp.Run(runCtx, actions...); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

func (s *session) Navigate(ctx context.Context, url string) error {
	return errors.Wrapf(s.run(ctx, chromedp.Navigate(url)), "failed to navigate to %s", url)
}

func (s *session) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	err := s.run(waitCtx, chromedp.WaitVisible(selector, chromedp.ByQuery))
	return browser.WaitError(ctx, err, selector, timeout)
}

func (s *session) Text(ctx context.Context, selector string) (string, error) {
	var text string
	if err := s.run(ctx, chromedp.Text(selector, &text, chromedp.ByQuery)); err != nil {
		return "", errors.Wrapf(err, "failed to read text of %q", selector)
	}
	return text, nil
}

func (s *session) Attribute(ctx context.Context, selector, name string) (string, error) {
	var value string
	script := fmt.Sprintf(`(() => {
		const el = document.querySelector(%s);
		if (!el) { throw new Error("no element"); }
		const prop = el[%s];
		if (prop !== undefined && prop !== null && typeof prop !== "object" && typeof prop !== "function") {
			return String(prop);
		}
		return el.getAttribute(%s) ?? "";
	})()`, quote(selector), quote(name), quote(name))
	if err := s.run(ctx, chromedp.Evaluate(script, &value)); err != nil {
		return "", errors.Wrapf(err, "failed to read %s of %q", name, selector)
	}
	return value, nil
}

func (s *session) TextAll(ctx context.Context, selector string) ([]string, error) {
	return s.evalAll(ctx, selector, "el.innerText")
}

func (s *session) InnerHTMLAll(ctx context.Context, selector string) ([]string, error) {
	return s.evalAll(ctx, selector, "el.innerHTML")
}

func (s *session) ComputedStyleAll(ctx context.Context, selector, property string) ([]string, error) {
	return s.evalAll(ctx, selector, fmt.Sprintf("getComputedStyle(el).getPropertyValue(%s)", quote(property)))
}

// evalAll maps expr over every element matching selector, in document order.
func (s *session) evalAll(ctx context.Context, selector, expr string) ([]string, error) {
	var values []string
	script := fmt.Sprintf(`Array.from(document.querySelectorAll(%s), (el) => String(%s))`, quote(selector), expr)
	if err := s.run(ctx, chromedp.Evaluate(script, &values)); err != nil {
		return nil, errors.Wrapf(err, "failed to read %q", selector)
	}
	return values, nil
}

func (s *session) Click(ctx context.Context, selector string) error {
	return errors.Wrapf(s.run(ctx, chromedp.Click(selector, chromedp.ByQuery)), "failed to click %q", selector)
}

func (s *session) ClickNth(ctx context.Context, selector string, n int) error {
	var nodes []*cdp.Node
	if err := s.run(ctx, chromedp.Nodes(selector, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0))); err != nil {
		return errors.Wrapf(err, "failed to locate %q", selector)
	}
	if n < 0 || n >= len(nodes) {
		return errors.Errorf("cannot click %q #%d: %d element(s) found", selector, n, len(nodes))
	}
	return errors.Wrapf(s.run(ctx, chromedp.MouseClickNode(nodes[n])), "failed to click %q #%d", selector, n)
}

func (s *session) SendKeys(ctx context.Context, selector, text string) error {
	return errors.Wrapf(s.run(ctx, chromedp.SendKeys(selector, text, chromedp.ByQuery)), "failed to type into %q", selector)
}

func (s *session) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	if err := s.run(ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, errors.Wrapf(err, "failed to capture screenshot")
	}
	return buf, nil
}

func (s *session) Close() error {
	err := chromedp.Cancel(s.ctx)
	s.cancel()
	s.allocCancel()
	if err != nil && !errors.Is(err, context.Canceled) {
		return errors.Wrapf(err, "failed to close browser")
	}
	return nil
}

func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
