package wiki

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/integrail/suggest-e2e/pkg/browser"
)

// page is what every page model holds: a session, the wait bound and the selectors.
type page struct {
	session   browser.Session
	timeout   time.Duration
	selectors Selectors
}

func (p page) wait(ctx context.Context, selector, role string) error {
	return browser.WithRole(p.session.WaitVisible(ctx, selector, p.timeout), role)
}

func (p page) heading(ctx context.Context, selector string) (string, error) {
	text, err := p.session.Text(ctx, selector)
	if err != nil {
		return "", errors.Wrapf(err, "failed to read heading")
	}
	return strings.ToLower(strings.TrimSpace(text)), nil
}

// Destination is the page the search button leads to: *ArticlePage or *SearchPage.
type Destination interface {
	Kind() DestinationKind
	WaitForHeadingVisible(ctx context.Context) error
	Heading(ctx context.Context) (string, error)
	destination()
}

type ArticlePage struct {
	page
}

func (p *ArticlePage) Kind() DestinationKind { return Article }

func (p *ArticlePage) destination() {}

func (p *ArticlePage) WaitForHeadingVisible(ctx context.Context) error {
	return p.wait(ctx, p.selectors.ArticleHeading, "article heading")
}

// Heading returns the lower-cased article title.
func (p *ArticlePage) Heading(ctx context.Context) (string, error) {
	return p.heading(ctx, p.selectors.ArticleHeading)
}

type SearchPage struct {
	page
}

func (p *SearchPage) Kind() DestinationKind { return Search }

func (p *SearchPage) destination() {}

func (p *SearchPage) WaitForHeadingVisible(ctx context.Context) error {
	return p.wait(ctx, p.selectors.SearchHeading, "search results heading")
}

// Heading returns the lower-cased page heading, SearchResultsHeading on success.
func (p *SearchPage) Heading(ctx context.Context) (string, error) {
	return p.heading(ctx, p.selectors.SearchHeading)
}
