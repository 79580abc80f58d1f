package scenario

import (
	"context"

	"github.com/integrail/suggest-e2e/pkg/suggest"
	"github.com/integrail/suggest-e2e/pkg/wiki"
)

// Suggests returns the search suggestion scenarios in their canonical order.
func Suggests() []Scenario {
	return []Scenario{
		{
			Name:  "first-suggests-start-with-query",
			Title: "Первые саджесты начинаются на поисковый запрос",
			Run: func(ctx context.Context, home *wiki.HomePage) error {
				const query = "Васильеви"
				if err := openAndSearch(ctx, home, query); err != nil {
					return err
				}
				contents, err := home.SuggestionContents(ctx)
				if err != nil {
					return err
				}
				return suggest.ValidateSuggestionsMatchQuery(contents, query)
			},
		},
		{
			Name:  "search-query-is-bold",
			Title: "Поисковый запрос выделяется жирным шрифтом",
			Run: func(ctx context.Context, home *wiki.HomePage) error {
				if err := openAndSearch(ctx, home, "Васильеви"); err != nil {
					return err
				}
				weights, err := home.HighlightFontWeights(ctx)
				if err != nil {
					return err
				}
				return suggest.ValidateHighlightsAreBold(weights)
			},
		},
		{
			Name:  "direct-suggest-navigation",
			Title: "Переход из саджеста по поисковой фразе идет в точности на ее страницу",
			Run: func(ctx context.Context, home *wiki.HomePage) error {
				const query = "Иван"
				if err := openAndSearch(ctx, home, query); err != nil {
					return err
				}
				article, err := home.ClickFirstSuggestion(ctx)
				if err != nil {
					return err
				}
				return expectHeading(ctx, article, "иван")
			},
		},
		{
			Name:  "search-button-article-navigation",
			Title: "При нажатии на кнопку поиска, переходим на страницу из 1-го саджеста",
			Run: func(ctx context.Context, home *wiki.HomePage) error {
				const query = "Иван"
				if err := openAndSearch(ctx, home, query); err != nil {
					return err
				}
				dest, err := home.ClickSearchButton(ctx)
				if err != nil {
					return err
				}
				article, ok := dest.(*wiki.ArticlePage)
				if !ok {
					return suggest.Assertf(wiki.Article.String(), dest.Kind().String(), "search button led to the wrong page")
				}
				return expectHeading(ctx, article, "иван")
			},
		},
		{
			Name:  "search-button-search-navigation",
			Title: "При нажатии на кнопку поиска, переходим на страницу поиска",
			Run: func(ctx context.Context, home *wiki.HomePage) error {
				if err := openAndSearch(ctx, home, "Иванннннн"); err != nil {
					return err
				}
				dest, err := home.ClickSearchButton(ctx)
				if err != nil {
					return err
				}
				searchPage, ok := dest.(*wiki.SearchPage)
				if !ok {
					return suggest.Assertf(wiki.Search.String(), dest.Kind().String(), "search button led to the wrong page")
				}
				return expectHeading(ctx, searchPage, wiki.SearchResultsHeading)
			},
		},
		{
			Name:         "special-hint-navigation",
			Title:        `При нажатии на подсказку "Поиск страниц, содержащих", переходим на страницу поиска`,
			NotAutomated: `the "search pages containing" hint does not appear reliably`,
			Run: func(ctx context.Context, home *wiki.HomePage) error {
				if err := openAndSearch(ctx, home, "Иван"); err != nil {
					return err
				}
				if err := home.WaitForSpecialHintVisible(ctx); err != nil {
					return err
				}
				searchPage, err := home.ClickSpecialHint(ctx)
				if err != nil {
					return err
				}
				return expectHeading(ctx, searchPage, wiki.SearchResultsHeading)
			},
		},
	}
}

// openAndSearch opens the home page, types query and waits for suggestions.
func openAndSearch(ctx context.Context, home *wiki.HomePage, query string) error {
	if err := home.Open(ctx); err != nil {
		return err
	}
	if err := home.WaitForSearchBoxVisible(ctx); err != nil {
		return err
	}
	if err := home.EnterQuery(ctx, query); err != nil {
		return err
	}
	return home.WaitForSuggestionsVisible(ctx)
}

func expectHeading(ctx context.Context, dest wiki.Destination, want string) error {
	if err := dest.WaitForHeadingVisible(ctx); err != nil {
		return err
	}
	heading, err := dest.Heading(ctx)
	if err != nil {
		return err
	}
	if heading != want {
		return suggest.Assertf(want, heading, "unexpected %s page heading", dest.Kind())
	}
	return nil
}
