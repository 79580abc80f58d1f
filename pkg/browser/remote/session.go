package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/integrail/suggest-e2e/pkg/browser"
)

type Config struct {
	URL            string `json:"url" yaml:"url"`
	APIKey         string `json:"apiKey" yaml:"apiKey"`
	UseProxy       bool   `json:"useProxy" yaml:"useProxy"`
	Headful        bool   `json:"headful" yaml:"headful"`
	Timeout        string `json:"timeout" yaml:"timeout"`
	MessageTimeout string `json:"messageTimeout" yaml:"messageTimeout"`
}

type Reporter interface {
	Report(msg string)
}

type nopReporter struct{}

func (nopReporter) Report(string) {}

type Option func(s *session)

func WithReporter(r Reporter) Option {
	return func(s *session) {
		s.reporter = r
	}
}

type session struct {
	client         *client
	sessionID      string
	messageTimeout string
	stream         io.Closer
	cancel         context.CancelFunc
	reporter       Reporter
	closeOnce      sync.Once
	closeErr       error
}

// NewSession asks the backend for a new browser and keeps its start stream open
// until Close.
func NewSession(ctx context.Context, cfg Config, opts ...Option) (browser.Session, error) {
	s := &session{
		client:         newClient(cfg.URL, cfg.APIKey, 30*time.Second),
		messageTimeout: lo.If(cfg.MessageTimeout != "", cfg.MessageTimeout).Else("30s"),
		reporter:       nopReporter{},
	}
	for _, opt := range opts {
		opt(s)
	}

	startTimeout, err := time.ParseDuration(s.messageTimeout)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid message timeout %q", s.messageTimeout)
	}
	// outlives ctx once started: the stream is released by Close
	streamCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	startCtx, cancelStart := context.WithTimeout(ctx, startTimeout)
	defer cancelStart()
	detach := context.AfterFunc(startCtx, cancel)

	s.reporter.Report(fmt.Sprintf("Starting remote browser at %s...", cfg.URL))
	out, stream, err := s.client.start(streamCtx, startRequest{
		Browser: browserOpts{
			Headful:          cfg.Headful,
			ReturnScreenshot: lo.ToPtr(true),
			Timeout:          lo.If(cfg.Timeout != "", cfg.Timeout).Else("10m"),
		},
		UseRandomProxy: lo.ToPtr(cfg.UseProxy),
	})
	if !detach() {
		cancel()
		if stream != nil {
			_ = stream.Close()
		}
		return nil, errors.Wrapf(startCtx.Err(), "failed to start session within %s", startTimeout)
	}
	if err != nil {
		cancel()
		return nil, err
	}
	s.sessionID, s.stream, s.cancel = out.SessionID, stream, cancel
	s.reporter.Report("Got session " + s.sessionID)
	return s, nil
}

func (s *session) exec(ctx context.Context, program string) (*messageOut, error) {
	s.reporter.Report(fmt.Sprintf("Executing %s", program))
	res, err := s.client.message(ctx, messageIn{
		SessionID: s.sessionID,
		Program:   program,
		Timeout:   s.messageTimeout,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to execute %s", program)
	}
	return res, nil
}

func (s *session) execString(ctx context.Context, program string) (string, error) {
	res, err := s.exec(ctx, program)
	if err != nil {
		return "", err
	}
	value, ok := res.Value.(string)
	if !ok {
		return "", errors.Errorf("%s returned %T, expected string", program, res.Value)
	}
	return value, nil
}

func (s *session) Navigate(ctx context.Context, url string) error {
	_, err := s.exec(ctx, call("navigate", url))
	return err
}

func (s *session) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	_, err := s.exec(waitCtx, call("waitVisible", selector))
	if err != nil && waitCtx.Err() != nil {
		err = waitCtx.Err()
	}
	return browser.WaitError(ctx, err, selector, timeout)
}

func (s *session) Text(ctx context.Context, selector string) (string, error) {
	return s.execString(ctx, call("text", selector))
}

// Attribute reads markup attributes only: the snapshot does not carry live
// properties such as the current value of an input.
func (s *session) Attribute(ctx context.Context, selector, name string) (string, error) {
	if name == "value" {
		return "", errors.Wrapf(browser.ErrUnsupported, "reading %s of %q", name, selector)
	}
	sel, err := s.snapshot(ctx, selector)
	if err != nil {
		return "", err
	}
	if sel.Length() == 0 {
		return "", errors.Errorf("no element matches %q", selector)
	}
	return sel.First().AttrOr(name, ""), nil
}

func (s *session) TextAll(ctx context.Context, selector string) ([]string, error) {
	sel, err := s.snapshot(ctx, selector)
	if err != nil {
		return nil, err
	}
	return sel.Map(func(_ int, el *goquery.Selection) string {
		return el.Text()
	}), nil
}

func (s *session) InnerHTMLAll(ctx context.Context, selector string) ([]string, error) {
	sel, err := s.snapshot(ctx, selector)
	if err != nil {
		return nil, err
	}
	var contents []string
	for i := range sel.Nodes {
		html, err := sel.Eq(i).Html()
		if err != nil {
			return nil, errors.Wrapf(err, "failed to render %q #%d", selector, i)
		}
		contents = append(contents, html)
	}
	return contents, nil
}

func (s *session) ComputedStyleAll(_ context.Context, selector, property string) ([]string, error) {
	return nil, errors.Wrapf(browser.ErrUnsupported, "reading %s of %q", property, selector)
}

func (s *session) Click(ctx context.Context, selector string) error {
	_, err := s.exec(ctx, call("click", selector))
	return err
}

// ClickNth only supports the first element: the backend clicks the first match.
func (s *session) ClickNth(ctx context.Context, selector string, n int) error {
	if n != 0 {
		return errors.Wrapf(browser.ErrUnsupported, "clicking %q #%d", selector, n)
	}
	return s.Click(ctx, selector)
}

func (s *session) SendKeys(ctx context.Context, selector, text string) error {
	if _, err := s.exec(ctx, call("click", selector)); err != nil {
		return err
	}
	_, err := s.exec(ctx, call("sendKeys", text))
	return err
}

func (s *session) Screenshot(ctx context.Context) ([]byte, error) {
	const name = "screenshot"
	res, err := s.exec(ctx, call("takeScreenshot", name))
	if err != nil {
		return nil, err
	}
	if len(res.Screenshots[name]) == 0 {
		return nil, errors.Errorf("screenshot %s wasn't returned", name)
	}
	return res.Screenshots[name], nil
}

// Close stops the session once; later calls return the first result.
func (s *session) Close() error {
	s.closeOnce.Do(func() {
		defer s.cancel()
		defer s.stream.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_, err := s.client.message(ctx, messageIn{
			SessionID:   s.sessionID,
			Program:     call("log", "stopping session"),
			Timeout:     s.messageTimeout,
			StopSession: lo.ToPtr(true),
		})
		s.closeErr = errors.Wrapf(err, "failed to stop session %s", s.sessionID)
	})
	return s.closeErr
}

// snapshot resolves selector against the current page markup.
func (s *session) snapshot(ctx context.Context, selector string) (*goquery.Selection, error) {
	html, err := s.execString(ctx, call("outerHtml", "html"))
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse page markup")
	}
	return doc.Find(selector), nil
}

// call renders a program statement with string literal arguments.
func call(fn string, args ...string) string {
	return fmt.Sprintf("%s(%s)", fn, strings.Join(lo.Map(args, func(arg string, _ int) string {
		b, _ := json.Marshal(arg)
		return "'" + strings.ReplaceAll(string(b[1:len(b)-1]), "'", `\'`) + "'"
	}), ", "))
}
