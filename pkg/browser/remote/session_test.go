package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	. "github.com/onsi/gomega"
	"github.com/pkg/errors"

	"github.com/integrail/suggest-e2e/pkg/browser"
)

const homeMarkup = `<html><body>
<input id="searchInput" name="search">
<div class="suggestions"><div class="suggestions-results">
<a class="mw-searchSuggest-link"><div class="suggestions-result" rel="0"><span class="highlight">Иван</span></div></a>
<a class="mw-searchSuggest-link"><div class="suggestions-result" rel="1"><span class="highlight">Иван</span>ов</div></a>
</div></div>
</body></html>`

type fakeBackend struct {
	mu       sync.Mutex
	programs []string
	stopped  bool
	replies  map[string]any
	failing  map[string]string
	delay    time.Duration
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		replies: map[string]any{
			"outerHtml('html')": homeMarkup,
			"text('#firstHeading')": "Иван",
		},
		failing: map[string]string{},
	}
}

func (b *fakeBackend) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(startEndpoint, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte("bad key"))
			return
		}
		_, _ = fmt.Fprintln(w, `{"sessionID":"session-1"}`)
		w.(http.Flusher).Flush()
		<-r.Context().Done()
	})
	mux.HandleFunc(messageEndpoint, func(w http.ResponseWriter, r *http.Request) {
		var in messageIn
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Errorf("failed to decode message: %v", err)
			return
		}
		b.mu.Lock()
		b.programs = append(b.programs, in.Program)
		if in.StopSession != nil && *in.StopSession {
			b.stopped = true
		}
		value := b.replies[in.Program]
		failure := b.failing[in.Program]
		delay := b.delay
		b.mu.Unlock()

		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}
		out := map[string]any{"sessionID": in.SessionID, "requestID": in.RequestID, "value": value}
		if failure != "" {
			out["error"] = failure
		}
		if in.Program == "takeScreenshot('screenshot')" {
			out["screenshots"] = map[string][]byte{"screenshot": []byte("png")}
		}
		enc := json.NewEncoder(w)
		_ = enc.Encode(map[string]any{"requestID": "someone-else"})
		_ = enc.Encode(out)
	})
	return mux
}

func (b *fakeBackend) executed() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.programs...)
}

func (b *fakeBackend) isStopped() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stopped
}

func newTestSession(t *testing.T, backend *fakeBackend) browser.Session {
	server := httptest.NewServer(backend.handler(t))
	t.Cleanup(server.Close)

	s, err := NewSession(context.Background(), Config{
		URL:            server.URL,
		APIKey:         "test-key",
		MessageTimeout: "5s",
	})
	Expect(err).To(BeNil())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSessionSnapshotReads(t *testing.T) {
	RegisterTestingT(t)
	ctx := context.Background()
	s := newTestSession(t, newFakeBackend())

	contents, err := s.InnerHTMLAll(ctx, ".suggestions-result")
	Expect(err).To(BeNil())
	Expect(contents).To(Equal([]string{
		`<span class="highlight">Иван</span>`,
		`<span class="highlight">Иван</span>ов`,
	}))

	highlights, err := s.TextAll(ctx, ".suggestions-results span.highlight")
	Expect(err).To(BeNil())
	Expect(highlights).To(Equal([]string{"Иван", "Иван"}))

	name, err := s.Attribute(ctx, "#searchInput", "name")
	Expect(err).To(BeNil())
	Expect(name).To(Equal("search"))

	_, err = s.Attribute(ctx, "#missing", "name")
	Expect(err).To(MatchError(ContainSubstring(`no element matches "#missing"`)))
}

func TestSessionUnsupportedReads(t *testing.T) {
	RegisterTestingT(t)
	ctx := context.Background()
	s := newTestSession(t, newFakeBackend())

	_, err := s.Attribute(ctx, "#searchInput", "value")
	Expect(errors.Is(err, browser.ErrUnsupported)).To(BeTrue())

	_, err = s.ComputedStyleAll(ctx, "span.highlight", "font-weight")
	Expect(errors.Is(err, browser.ErrUnsupported)).To(BeTrue())

	err = s.ClickNth(ctx, ".suggestions-result", 1)
	Expect(errors.Is(err, browser.ErrUnsupported)).To(BeTrue())
}

func TestSessionPrograms(t *testing.T) {
	RegisterTestingT(t)
	ctx := context.Background()
	backend := newFakeBackend()
	s := newTestSession(t, backend)

	Expect(s.Navigate(ctx, "https://ru.wikipedia.org")).To(Succeed())
	Expect(s.SendKeys(ctx, "#searchInput", "Иван")).To(Succeed())
	Expect(s.ClickNth(ctx, ".suggestions-result", 0)).To(Succeed())
	Expect(s.WaitVisible(ctx, "#firstHeading", time.Second)).To(Succeed())

	heading, err := s.Text(ctx, "#firstHeading")
	Expect(err).To(BeNil())
	Expect(heading).To(Equal("Иван"))

	shot, err := s.Screenshot(ctx)
	Expect(err).To(BeNil())
	Expect(shot).To(Equal([]byte("png")))

	Expect(s.Close()).To(Succeed())
	Expect(backend.isStopped()).To(BeTrue())
	Expect(backend.executed()).To(Equal([]string{
		"navigate('https://ru.wikipedia.org')",
		"click('#searchInput')",
		"sendKeys('Иван')",
		"click('.suggestions-result')",
		"waitVisible('#firstHeading')",
		"text('#firstHeading')",
		"takeScreenshot('screenshot')",
		"log('stopping session')",
	}))
}

func TestSessionCloseStopsOnce(t *testing.T) {
	RegisterTestingT(t)
	backend := newFakeBackend()
	s := newTestSession(t, backend)

	Expect(s.Close()).To(Succeed())
	Expect(s.Close()).To(Succeed())
	Expect(backend.executed()).To(Equal([]string{"log('stopping session')"}))
}

func TestSessionOutlivesStartContext(t *testing.T) {
	RegisterTestingT(t)
	backend := newFakeBackend()
	server := httptest.NewServer(backend.handler(t))
	t.Cleanup(server.Close)

	ctx, cancel := context.WithCancel(context.Background())
	s, err := NewSession(ctx, Config{URL: server.URL, APIKey: "test-key", MessageTimeout: "5s"})
	Expect(err).To(BeNil())
	t.Cleanup(func() { _ = s.Close() })
	cancel()

	Expect(s.Navigate(context.Background(), "https://ru.wikipedia.org")).To(Succeed())
}

// silentStart accepts the start request but never sends the session line.
func silentStart(t *testing.T) *httptest.Server {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.(http.Flusher).Flush()
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	t.Cleanup(server.Close)
	t.Cleanup(func() { close(release) })
	return server
}

func TestStartHonoursContext(t *testing.T) {
	RegisterTestingT(t)
	server := silentStart(t)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	started := time.Now()
	_, err := NewSession(ctx, Config{URL: server.URL, APIKey: "test-key", MessageTimeout: "1m"})
	Expect(errors.Is(err, context.DeadlineExceeded)).To(BeTrue())
	Expect(time.Since(started)).To(BeNumerically("<", 2*time.Second))
}

func TestStartIsBoundedByMessageTimeout(t *testing.T) {
	RegisterTestingT(t)
	server := silentStart(t)

	started := time.Now()
	_, err := NewSession(context.Background(), Config{URL: server.URL, APIKey: "test-key", MessageTimeout: "200ms"})
	Expect(err).To(MatchError(ContainSubstring("failed to start session within 200ms")))
	Expect(time.Since(started)).To(BeNumerically("<", 2*time.Second))
}

func TestSessionReportsBackendErrors(t *testing.T) {
	RegisterTestingT(t)
	backend := newFakeBackend()
	backend.failing["click('#searchButton')"] = "element not found"
	s := newTestSession(t, backend)

	err := s.Click(context.Background(), "#searchButton")
	Expect(err).To(MatchError(ContainSubstring("element not found")))
}

func TestSessionWaitTimeout(t *testing.T) {
	RegisterTestingT(t)
	backend := newFakeBackend()
	backend.delay = 2 * time.Second
	s := newTestSession(t, backend)

	err := s.WaitVisible(context.Background(), ".suggestions", 50*time.Millisecond)
	Expect(browser.IsTimeout(err)).To(BeTrue())
}

func TestStartRejected(t *testing.T) {
	RegisterTestingT(t)
	server := httptest.NewServer(newFakeBackend().handler(t))
	defer server.Close()

	_, err := NewSession(context.Background(), Config{URL: server.URL, APIKey: "wrong"})
	Expect(err).To(MatchError(ContainSubstring("status code 401: bad key")))
}

func TestCall(t *testing.T) {
	RegisterTestingT(t)

	Expect(call("getURL")).To(Equal("getURL()"))
	Expect(call("click", "#searchButton")).To(Equal("click('#searchButton')"))
	Expect(call("click", `a[title='x']`)).To(Equal(`click('a[title=\'x\']')`))
	Expect(call("click", `div[class="x"]`)).To(Equal(`click('div[class=\"x\"]')`))
}

func TestDecodeReplies(t *testing.T) {
	RegisterTestingT(t)

	replies, err := decodeReplies([]byte(`{"requestID":"1"}` + "\n" + `{"requestID":"2"}`))
	Expect(err).To(BeNil())
	Expect(replies).To(HaveLen(2))
	Expect(replies[len(replies)-1].RequestID).To(Equal("2"))

	_, err = decodeReplies([]byte(`{"requestID":`))
	Expect(err).NotTo(BeNil())
}
