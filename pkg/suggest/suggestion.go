package suggest

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"
)

// Suggestion is one rendered autocomplete entry.
type Suggestion struct {
	// Raw is the lower-cased inner markup of the entry.
	Raw       string
	Text      string
	Highlight string
	// Highlighted is false when the entry has no highlight span.
	Highlighted bool
}

// ParseSuggestion derives the text and highlighted part of an entry's markup.
func ParseSuggestion(raw string) (Suggestion, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return Suggestion{}, errors.Wrapf(err, "failed to parse suggestion %q", raw)
	}
	s := Suggestion{
		Raw:  strings.ToLower(raw),
		Text: strings.ToLower(strings.TrimSpace(doc.Text())),
	}
	if highlight := doc.Find("span.highlight").First(); highlight.Length() > 0 {
		s.Highlight = strings.ToLower(highlight.Text())
		s.Highlighted = true
	}
	return s, nil
}
