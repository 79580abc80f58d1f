package wiki

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/integrail/suggest-e2e/pkg/browser"
	"github.com/integrail/suggest-e2e/pkg/suggest"
)

type DestinationKind = suggest.DestinationKind

const (
	Article = suggest.Article
	Search  = suggest.Search
)

type Option func(p *page)

func WithTimeout(timeout time.Duration) Option {
	return func(p *page) {
		p.timeout = timeout
	}
}

func WithSelectors(selectors Selectors) Option {
	return func(p *page) {
		p.selectors = selectors.WithDefaults()
	}
}

// HomePage is the main page with the search box.
type HomePage struct {
	page
	url string
}

func NewHomePage(session browser.Session, url string, opts ...Option) *HomePage {
	p := page{
		session:   session,
		timeout:   DefaultWaitTimeout,
		selectors: DefaultSelectors(),
	}
	for _, opt := range opts {
		opt(&p)
	}
	return &HomePage{page: p, url: lo.If(url != "", url).Else(DefaultURL)}
}

func (h *HomePage) URL() string {
	return h.url
}

func (h *HomePage) Open(ctx context.Context) error {
	return h.session.Navigate(ctx, h.url)
}

func (h *HomePage) WaitForSearchBoxVisible(ctx context.Context) error {
	return h.wait(ctx, h.selectors.SearchBox, "search box")
}

// EnterQuery focuses the search box and types query into it.
func (h *HomePage) EnterQuery(ctx context.Context, query string) error {
	if err := h.session.Click(ctx, h.selectors.SearchBox); err != nil {
		return err
	}
	return h.session.SendKeys(ctx, h.selectors.SearchBox, query)
}

func (h *HomePage) WaitForSuggestionsVisible(ctx context.Context) error {
	return h.wait(ctx, h.selectors.Suggestions, "suggestions")
}

// SuggestionContents returns the lower-cased markup of every suggestion in rank order.
func (h *HomePage) SuggestionContents(ctx context.Context) ([]string, error) {
	contents, err := h.session.InnerHTMLAll(ctx, h.selectors.SuggestionItem)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read suggestions")
	}
	return lo.Map(contents, func(c string, _ int) string {
		return strings.ToLower(c)
	}), nil
}

// HighlightFontWeights returns the computed font weight of every highlight.
func (h *HomePage) HighlightFontWeights(ctx context.Context) ([]string, error) {
	weights, err := h.session.ComputedStyleAll(ctx, h.selectors.Highlight, "font-weight")
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read highlight font weights")
	}
	return weights, nil
}

func (h *HomePage) ClickFirstSuggestion(ctx context.Context) (*ArticlePage, error) {
	if err := h.session.ClickNth(ctx, h.selectors.SuggestionItem, 0); err != nil {
		return nil, errors.Wrapf(err, "failed to click first suggestion")
	}
	return &ArticlePage{page: h.page}, nil
}

// ClickSearchButton presses the search button and returns the page it leads to.
// The destination is decided from the state read before the click.
func (h *HomePage) ClickSearchButton(ctx context.Context) (Destination, error) {
	text, err := h.session.Attribute(ctx, h.selectors.SearchBox, "value")
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read search box")
	}
	highlights, err := h.session.TextAll(ctx, h.selectors.Highlight)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read highlights")
	}
	var firstHighlight *string
	if len(highlights) > 0 {
		firstHighlight = lo.ToPtr(highlights[0])
	}
	kind := suggest.DecideSearchButtonDestination(text, firstHighlight)

	if err := h.session.Click(ctx, h.selectors.SearchButton); err != nil {
		return nil, errors.Wrapf(err, "failed to click search button")
	}
	if kind == Article {
		return &ArticlePage{page: h.page}, nil
	}
	return &SearchPage{page: h.page}, nil
}

func (h *HomePage) WaitForSpecialHintVisible(ctx context.Context) error {
	return h.wait(ctx, h.selectors.SpecialHint, "special hint")
}

func (h *HomePage) ClickSpecialHint(ctx context.Context) (*SearchPage, error) {
	if err := h.session.Click(ctx, h.selectors.SpecialHint); err != nil {
		return nil, errors.Wrapf(err, "failed to click special hint")
	}
	return &SearchPage{page: h.page}, nil
}
