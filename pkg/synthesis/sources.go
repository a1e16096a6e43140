package synthesis

import (
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/soundprediction/biograph/pkg/types"
)

const (
	// maxExcerptLength truncates source excerpts.
	maxExcerptLength = 200
	// noDescription is the excerpt fallback when no usable field exists.
	noDescription = "no description available"
)

// BuildSources derives one citation per ranked entity, sorted by
// non-increasing relevance score.
func BuildSources(entities []types.RankedEntity) []types.Source {
	sources := make([]types.Source, 0, len(entities))
	for _, entity := range entities {
		sources = append(sources, types.Source{
			Type:       entity.Type,
			Name:       entity.Name,
			ID:         entity.ID,
			Score:      entity.Score,
			Excerpt:    buildExcerpt(entity),
			Properties: entity.Properties,
		})
	}
	sort.SliceStable(sources, func(i, j int) bool {
		return sources[i].Score > sources[j].Score
	})
	return sources
}

// buildExcerpt picks the first usable type-specific field, truncated to
// maxExcerptLength.
func buildExcerpt(entity types.RankedEntity) string {
	var fields []string
	switch entity.Type {
	case types.EntityTypeDrug:
		fields = []string{"indication", "mechanism", "description"}
	case types.EntityTypeDisease:
		fields = []string{"definition", "symptoms"}
	case types.EntityTypeProtein:
		fields = []string{"synonyms", "description"}
	default:
		fields = []string{"description"}
	}

	for _, field := range fields {
		if value := propertyString(entity.Properties, field); value != "" {
			if len(value) > maxExcerptLength {
				cut := maxExcerptLength
				for cut > 0 && !utf8.RuneStart(value[cut]) {
					cut--
				}
				return value[:cut]
			}
			return value
		}
	}
	return noDescription
}

// Confidence scores an answer from its retrieval evidence: the top relevance
// score, a bonus per strongly matched entity (capped), and a bonus when the
// answer is grounded in subgraph relationships. Rounded to two decimals.
func Confidence(entities []types.RankedEntity, subgraph *types.Subgraph) float64 {
	if len(entities) == 0 {
		return 0
	}

	top := entities[0].Score
	for _, entity := range entities[1:] {
		if entity.Score > top {
			top = entity.Score
		}
	}

	strong := 0
	for _, entity := range entities {
		if entity.Score > 0.7 {
			strong++
		}
	}
	bonus := math.Min(0.05*float64(strong), 0.2)

	relBonus := 0.0
	if subgraph != nil && len(subgraph.Relationships) > 0 {
		relBonus = 0.1
	}

	confidence := math.Min(1.0, top+bonus+relBonus)
	return math.Round(confidence*100) / 100
}

// EmphasizeNames wraps every occurrence of the given entity names in the
// text with markdown emphasis. Longer names are wrapped first so a shorter
// name never splits a longer match, and a span is never wrapped twice.
func EmphasizeNames(text string, names []string) string {
	unique := make(map[string]struct{}, len(names))
	ordered := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, dup := unique[name]; dup {
			continue
		}
		unique[name] = struct{}{}
		ordered = append(ordered, name)
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return len(ordered[i]) > len(ordered[j])
	})

	type span struct{ start, end int }
	var wrapped []span
	overlaps := func(start, end int) bool {
		for _, s := range wrapped {
			if start < s.end && end > s.start {
				return true
			}
		}
		return false
	}

	for _, name := range ordered {
		from := 0
		for {
			start, end := foldIndex(text, name, from)
			if start < 0 {
				break
			}
			from = end
			if overlaps(start, end) {
				continue
			}
			// Skip spans the model already emphasized.
			if start >= 2 && text[start-2:start] == "**" && end+2 <= len(text) && text[end:end+2] == "**" {
				continue
			}
			wrapped = append(wrapped, span{start: start, end: end})
		}
	}

	if len(wrapped) == 0 {
		return text
	}
	sort.Slice(wrapped, func(i, j int) bool { return wrapped[i].start < wrapped[j].start })

	var b strings.Builder
	prev := 0
	for _, s := range wrapped {
		b.WriteString(text[prev:s.start])
		b.WriteString("**")
		b.WriteString(text[s.start:s.end])
		b.WriteString("**")
		prev = s.end
	}
	b.WriteString(text[prev:])
	return b.String()
}

// foldIndex returns the byte span of the first case-insensitive match of
// needle in text at or after from, or (-1, -1). Offsets are always valid
// byte positions in text, even when a case mapping changes rune width.
func foldIndex(text, needle string, from int) (int, int) {
	for i := from; i < len(text); {
		if n, ok := foldMatchLen(text[i:], needle); ok {
			return i, i + n
		}
		_, size := utf8.DecodeRuneInString(text[i:])
		i += size
	}
	return -1, -1
}

// foldMatchLen reports whether text begins with a case-insensitive match of
// needle, and the matched length in text's bytes.
func foldMatchLen(text, needle string) (int, bool) {
	n := 0
	for _, nr := range needle {
		tr, size := utf8.DecodeRuneInString(text[n:])
		if size == 0 {
			return 0, false
		}
		if tr != nr && unicode.ToLower(tr) != unicode.ToLower(nr) {
			return 0, false
		}
		n += size
	}
	return n, true
}
