package wiki

import (
	"context"
	"testing"
	"time"

	. "github.com/onsi/gomega"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/mock"

	"github.com/integrail/suggest-e2e/pkg/browser"
	"github.com/integrail/suggest-e2e/pkg/browser/mocks"
)

var anyCtx = mock.Anything

func TestHomePageDefaults(t *testing.T) {
	RegisterTestingT(t)

	h := NewHomePage(mocks.NewSession(t), "")
	Expect(h.URL()).To(Equal("https://ru.wikipedia.org"))
	Expect(h.timeout).To(Equal(10 * time.Second))
	Expect(h.selectors).To(Equal(DefaultSelectors()))

	h = NewHomePage(mocks.NewSession(t), "http://localhost:8080",
		WithTimeout(time.Second),
		WithSelectors(Selectors{SearchBox: "#q"}),
	)
	Expect(h.URL()).To(Equal("http://localhost:8080"))
	Expect(h.timeout).To(Equal(time.Second))
	Expect(h.selectors.SearchBox).To(Equal("#q"))
	Expect(h.selectors.SearchButton).To(Equal("#searchButton"))
}

func TestHomePageEnterQuery(t *testing.T) {
	RegisterTestingT(t)
	ctx := context.Background()
	session := mocks.NewSession(t)
	h := NewHomePage(session, "")

	session.On("Navigate", anyCtx, "https://ru.wikipedia.org").Return(nil).Once()
	session.On("WaitVisible", anyCtx, "#searchInput", 10*time.Second).Return(nil).Once()
	click := session.On("Click", anyCtx, "#searchInput").Return(nil).Once()
	session.On("SendKeys", anyCtx, "#searchInput", "Иван").Return(nil).Once().NotBefore(click)
	session.On("WaitVisible", anyCtx, ".suggestions", 10*time.Second).Return(nil).Once()

	Expect(h.Open(ctx)).To(Succeed())
	Expect(h.WaitForSearchBoxVisible(ctx)).To(Succeed())
	Expect(h.EnterQuery(ctx, "Иван")).To(Succeed())
	Expect(h.WaitForSuggestionsVisible(ctx)).To(Succeed())
}

func TestHomePageWaitTimeoutCarriesRole(t *testing.T) {
	RegisterTestingT(t)
	session := mocks.NewSession(t)
	h := NewHomePage(session, "")

	session.On("WaitVisible", anyCtx, ".suggestions", 10*time.Second).
		Return(&browser.TimeoutError{Selector: ".suggestions", Timeout: 10 * time.Second})

	err := h.WaitForSuggestionsVisible(context.Background())
	Expect(browser.IsTimeout(err)).To(BeTrue())
	Expect(err).To(MatchError(`suggestions (".suggestions") was not visible after 10s`))
}

func TestHomePageSuggestions(t *testing.T) {
	RegisterTestingT(t)
	ctx := context.Background()
	session := mocks.NewSession(t)
	h := NewHomePage(session, "")

	session.On("InnerHTMLAll", anyCtx, ".suggestions-result").Return([]string{
		`<span class="highlight">Иван</span>`,
		`<span class="highlight">Иван</span>ов`,
	}, nil)
	session.On("ComputedStyleAll", anyCtx, ".suggestions-results span.highlight", "font-weight").
		Return([]string{"700", "700"}, nil)

	contents, err := h.SuggestionContents(ctx)
	Expect(err).To(BeNil())
	Expect(contents).To(Equal([]string{
		`<span class="highlight">иван</span>`,
		`<span class="highlight">иван</span>ов`,
	}))

	weights, err := h.HighlightFontWeights(ctx)
	Expect(err).To(BeNil())
	Expect(weights).To(Equal([]string{"700", "700"}))
}

func TestHomePageClickFirstSuggestion(t *testing.T) {
	RegisterTestingT(t)
	ctx := context.Background()
	session := mocks.NewSession(t)
	h := NewHomePage(session, "")

	session.On("ClickNth", anyCtx, ".suggestions-result", 0).Return(nil).Once()
	session.On("WaitVisible", anyCtx, "#firstHeading span", 10*time.Second).Return(nil).Once()
	session.On("Text", anyCtx, "#firstHeading span").Return(" Иван ", nil).Once()

	article, err := h.ClickFirstSuggestion(ctx)
	Expect(err).To(BeNil())
	Expect(article.WaitForHeadingVisible(ctx)).To(Succeed())
	heading, err := article.Heading(ctx)
	Expect(err).To(BeNil())
	Expect(heading).To(Equal("иван"))
}

func TestHomePageClickSearchButton(t *testing.T) {
	testCases := []struct {
		name       string
		value      string
		highlights []string
		want       DestinationKind
	}{
		{name: "exact highlight leads to article", value: "Иван", highlights: []string{"Иван", "Иван"}, want: Article},
		{name: "partial highlight leads to search", value: "Иванннннн", highlights: []string{"Иван"}, want: Search},
		{name: "no highlight leads to search", value: "Иванннннн", want: Search},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			RegisterTestingT(t)
			session := mocks.NewSession(t)
			h := NewHomePage(session, "")

			readValue := session.On("Attribute", anyCtx, "#searchInput", "value").Return(tc.value, nil).Once()
			readHighlights := session.On("TextAll", anyCtx, ".suggestions-results span.highlight").Return(tc.highlights, nil).Once()
			session.On("Click", anyCtx, "#searchButton").Return(nil).Once().NotBefore(readValue, readHighlights)

			dest, err := h.ClickSearchButton(context.Background())
			Expect(err).To(BeNil())
			Expect(dest.Kind()).To(Equal(tc.want))
			switch dest.(type) {
			case *ArticlePage:
				Expect(tc.want).To(Equal(Article))
			case *SearchPage:
				Expect(tc.want).To(Equal(Search))
			}
		})
	}
}

func TestHomePageClickSearchButtonDoesNotClickOnReadFailure(t *testing.T) {
	RegisterTestingT(t)
	session := mocks.NewSession(t)
	h := NewHomePage(session, "")

	session.On("Attribute", anyCtx, "#searchInput", "value").Return("", browser.ErrUnsupported)

	_, err := h.ClickSearchButton(context.Background())
	Expect(errors.Is(err, browser.ErrUnsupported)).To(BeTrue())
	session.AssertNotCalled(t, "Click", anyCtx, "#searchButton")
}

func TestHomePageSpecialHint(t *testing.T) {
	RegisterTestingT(t)
	ctx := context.Background()
	session := mocks.NewSession(t)
	h := NewHomePage(session, "")

	session.On("WaitVisible", anyCtx, ".suggestions-special", 10*time.Second).Return(nil).Once()
	session.On("Click", anyCtx, ".suggestions-special").Return(nil).Once()
	session.On("WaitVisible", anyCtx, "#firstHeading", 10*time.Second).Return(nil).Once()
	session.On("Text", anyCtx, "#firstHeading").Return("Результаты поиска", nil).Once()

	Expect(h.WaitForSpecialHintVisible(ctx)).To(Succeed())
	searchPage, err := h.ClickSpecialHint(ctx)
	Expect(err).To(BeNil())
	Expect(searchPage.WaitForHeadingVisible(ctx)).To(Succeed())
	heading, err := searchPage.Heading(ctx)
	Expect(err).To(BeNil())
	Expect(heading).To(Equal(SearchResultsHeading))
}
