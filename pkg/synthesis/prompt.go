package synthesis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/soundprediction/biograph/pkg/types"
)

// buildUserPrompt assembles the bounded context block: optional prior-turn
// context, one line per ranked entity with its type-specific key properties,
// then the deduplicated relationship list.
func buildUserPrompt(query string, entities []types.RankedEntity, subgraph *types.Subgraph, convCtx *types.ConversationContext) string {
	var b strings.Builder

	if convCtx != nil {
		if convCtx.LastQuery != "" {
			fmt.Fprintf(&b, "Previous question: %s\n", convCtx.LastQuery)
		}
		if len(convCtx.MentionedEntities) > 0 {
			ids := convCtx.MentionedEntityIDs()
			sort.Strings(ids)
			fmt.Fprintf(&b, "Previously discussed entities: %s\n", strings.Join(ids, ", "))
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
	}

	b.WriteString("Knowledge graph context:\n\n")
	for _, entity := range entities {
		b.WriteString(describeEntity(entity))
		b.WriteString("\n")
	}

	rels := relationshipLines(subgraph)
	if len(rels) > 0 {
		b.WriteString("\nRelationships:\n")
		for _, line := range rels {
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	fmt.Fprintf(&b, "\nQuestion: %s", query)
	return b.String()
}

// describeEntity renders one entity line with the key properties defined for
// its type.
func describeEntity(entity types.RankedEntity) string {
	var b strings.Builder
	fmt.Fprintf(&b, "- [%s] %s", entity.Type, entity.Name)

	var fields []string
	switch entity.Type {
	case types.EntityTypeDrug:
		fields = []string{"indication", "mechanism", "description"}
	case types.EntityTypeDisease:
		fields = []string{"definition", "symptoms"}
	case types.EntityTypeProtein:
		fields = []string{"synonyms"}
	}
	for _, field := range fields {
		if value := propertyString(entity.Properties, field); value != "" {
			fmt.Fprintf(&b, "; %s: %s", field, value)
		}
	}
	return b.String()
}

// relationshipLines renders subgraph relationships in
// "source -[type]-> target" form, deduplicated.
func relationshipLines(subgraph *types.Subgraph) []string {
	if subgraph.IsEmpty() {
		return nil
	}

	names := make(map[string]string, len(subgraph.Nodes))
	for _, node := range subgraph.Nodes {
		names[node.ID] = node.Name
	}
	display := func(id string) string {
		if name, ok := names[id]; ok && name != "" {
			return name
		}
		return id
	}

	seen := make(map[string]struct{})
	lines := make([]string, 0, len(subgraph.Relationships))
	for _, rel := range subgraph.Relationships {
		line := fmt.Sprintf("%s -[%s]-> %s", display(rel.SourceID), rel.Type, display(rel.TargetID))
		if _, dup := seen[line]; dup {
			continue
		}
		seen[line] = struct{}{}
		lines = append(lines, line)
	}
	return lines
}

// propertyString extracts a property as text, joining list values.
func propertyString(props map[string]interface{}, key string) string {
	if props == nil {
		return ""
	}
	switch v := props[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case []string:
		return strings.Join(v, ", ")
	case []interface{}:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return ""
	}
}
