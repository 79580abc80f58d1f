package suggest

import "strings"

type DestinationKind int

const (
	Search DestinationKind = iota
	Article
)

func (k DestinationKind) String() string {
	switch k {
	case Article:
		return "article"
	case Search:
		return "search"
	default:
		return "unknown"
	}
}

// DecideSearchButtonDestination tells where pressing the search button leads: the
// site jumps straight to the article when the first highlight is exactly what is
// typed, and lists search results otherwise. Both values must be read before the
// click since navigating discards the suggestion list.
func DecideSearchButtonDestination(currentSearchText string, firstHighlight *string) DestinationKind {
	if firstHighlight != nil && strings.ToLower(*firstHighlight) == strings.ToLower(currentSearchText) {
		return Article
	}
	return Search
}
