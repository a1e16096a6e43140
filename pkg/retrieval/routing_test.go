package retrieval_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/soundprediction/biograph/pkg/retrieval"
	"github.com/soundprediction/biograph/pkg/types"
)

func TestRouteMode(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  types.SearchMode
	}{
		{"similarity phrasing", "find drugs similar to aspirin", types.SearchModeSemantic},
		{"related-to phrasing", "compounds related to ibuprofen", types.SearchModeSemantic},
		{"mechanism phrasing", "what is the mechanism of metformin", types.SearchModeStructural},
		{"how-does phrasing", "how does aspirin work", types.SearchModeStructural},
		{"pathway phrasing", "which pathway involves TP53", types.SearchModeStructural},
		{"list-all phrasing", "list all drugs for diabetes", types.SearchModeExact},
		{"enumerate phrasing", "enumerate proteins in this pathway family", types.SearchModeStructural},
		{"no keywords", "what treats headaches", types.SearchModeHybrid},
		{"case insensitive", "Drugs SIMILAR to warfarin", types.SearchModeSemantic},
		{"semantic wins over structural", "drugs similar to those that target EGFR", types.SearchModeSemantic},
		{"structural wins over exact", "list all drugs that bind EGFR", types.SearchModeStructural},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, retrieval.RouteMode(tt.query))
		})
	}
}
