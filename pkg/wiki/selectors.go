// Package wiki models the pages of the encyclopedia the suite drives.
package wiki

import "time"

const (
	DefaultURL = "https://ru.wikipedia.org"
	// SearchResultsHeading is the lower-cased heading of the search results page.
	SearchResultsHeading = "результаты поиска"

	DefaultWaitTimeout = 10 * time.Second
)

// Selectors locate the elements the pages depend on. They track the site markup.
type Selectors struct {
	SearchBox      string `json:"searchBox" yaml:"searchBox"`
	Suggestions    string `json:"suggestions" yaml:"suggestions"`
	SuggestionItem string `json:"suggestionItem" yaml:"suggestionItem"`
	Highlight      string `json:"highlight" yaml:"highlight"`
	SearchButton   string `json:"searchButton" yaml:"searchButton"`
	SpecialHint    string `json:"specialHint" yaml:"specialHint"`
	ArticleHeading string `json:"articleHeading" yaml:"articleHeading"`
	SearchHeading  string `json:"searchHeading" yaml:"searchHeading"`
}

func DefaultSelectors() Selectors {
	return Selectors{
		SearchBox:      "#searchInput",
		Suggestions:    ".suggestions",
		SuggestionItem: ".suggestions-result",
		Highlight:      ".suggestions-results span.highlight",
		SearchButton:   "#searchButton",
		SpecialHint:    ".suggestions-special",
		ArticleHeading: "#firstHeading span",
		SearchHeading:  "#firstHeading",
	}
}

// WithDefaults fills empty selectors from DefaultSelectors.
func (s Selectors) WithDefaults() Selectors {
	d := DefaultSelectors()
	for _, pair := range []struct{ v, def *string }{
		{&s.SearchBox, &d.SearchBox},
		{&s.Suggestions, &d.Suggestions},
		{&s.SuggestionItem, &d.SuggestionItem},
		{&s.Highlight, &d.Highlight},
		{&s.SearchButton, &d.SearchButton},
		{&s.SpecialHint, &d.SpecialHint},
		{&s.ArticleHeading, &d.ArticleHeading},
		{&s.SearchHeading, &d.SearchHeading},
	} {
		if *pair.v == "" {
			*pair.v = *pair.def
		}
	}
	return s
}
