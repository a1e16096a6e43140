package retrieval

import (
	"strings"

	"github.com/soundprediction/biograph/pkg/types"
)

// Keyword groups checked in precedence order by RouteMode.
var (
	semanticKeywords = []string{
		"similar", "like", "resemble", "related to", "comparable", "analogous",
	}
	structuralKeywords = []string{
		"mechanism", "pathway", "interact", "target", "bind", "regulate",
		"how does", "how do",
	}
	exactKeywords = []string{
		"list all", "all drugs", "all diseases", "all proteins", "every",
		"enumerate",
	}
)

// RouteMode classifies a query by keyword presence, checked in precedence
// order: similarity phrasing, then mechanism/pathway phrasing, then
// exhaustive-listing phrasing, defaulting to hybrid.
//
// The routed mode is attached to results for observability only; every mode
// currently executes the same vector-search-plus-expansion strategy. Each
// mode was meant to select its own retrieval strategy but only one was ever
// implemented. Keep the label-and-report behavior until product decides
// whether per-mode strategies ship; do not branch on the mode here.
func RouteMode(query string) types.SearchMode {
	q := strings.ToLower(query)

	for _, kw := range semanticKeywords {
		if strings.Contains(q, kw) {
			return types.SearchModeSemantic
		}
	}
	for _, kw := range structuralKeywords {
		if strings.Contains(q, kw) {
			return types.SearchModeStructural
		}
	}
	for _, kw := range exactKeywords {
		if strings.Contains(q, kw) {
			return types.SearchModeExact
		}
	}
	return types.SearchModeHybrid
}
