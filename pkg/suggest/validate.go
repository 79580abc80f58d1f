package suggest

import (
	"fmt"
	"strings"
)

const highlightTemplate = `<span class="highlight">%s</span>`

// HighlightPrefix is the markup a matching suggestion starts with.
func HighlightPrefix(query string) string {
	return fmt.Sprintf(highlightTemplate, strings.ToLower(query))
}

// LeadingMatchRun returns the suggestions up to, not including, the first one that
// does not contain query (case-insensitive).
//
// The search engine ranks matches first and may append loosely related results
// after them, so only the head of the list is held to the highlight rule. Do not
// turn this into a scan of the whole list: entries after the first miss are not
// expected to match.
func LeadingMatchRun(suggestions []string, query string) []string {
	lowered := strings.ToLower(query)
	for i, suggestion := range suggestions {
		if !strings.Contains(strings.ToLower(suggestion), lowered) {
			return suggestions[:i]
		}
	}
	return suggestions
}

// ValidateSuggestionsMatchQuery checks that every suggestion of the leading match
// run begins with the highlighted query, and that there is at least one.
func ValidateSuggestionsMatchQuery(suggestions []string, query string) error {
	expected := HighlightPrefix(query)
	run := LeadingMatchRun(suggestions, query)
	for i, suggestion := range run {
		if !strings.HasPrefix(strings.ToLower(suggestion), expected) {
			detail := fmt.Sprintf("suggestion #%d [%s] does not start with [%s]", i, suggestion, expected)
			if parsed, err := ParseSuggestion(suggestion); err == nil {
				detail += describeHighlight(parsed)
			}
			return Assertf(expected, suggestion, "%s", detail)
		}
	}
	if len(run) == 0 {
		return Assertf("", "", "no highlighted suggestion found for %q among %d suggestion(s)", query, len(suggestions))
	}
	return nil
}

// ValidateHighlightsAreBold checks that every highlight renders in bold.
func ValidateHighlightsAreBold(fontWeights []string) error {
	if len(fontWeights) == 0 {
		return Assertf("", "", "no highlighted suggestion found")
	}
	for i, weight := range fontWeights {
		if weight != "700" && !strings.EqualFold(weight, "bold") {
			return Assertf("700 or bold", weight, "font weight of highlight #%d is not bold", i)
		}
	}
	return nil
}

func describeHighlight(s Suggestion) string {
	if !s.Highlighted {
		return fmt.Sprintf(", %q has no highlight", s.Text)
	}
	return fmt.Sprintf(", %q highlights %q", s.Text, s.Highlight)
}
