package types_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/soundprediction/biograph/pkg/types"
)

func TestConversationContextAbsorb(t *testing.T) {
	t.Run("user message sets last query", func(t *testing.T) {
		ctx := types.NewConversationContext()
		ctx.Absorb(types.ChatMessage{Role: types.RoleUser, Content: "what treats headaches?"})
		assert.Equal(t, "what treats headaches?", ctx.LastQuery)
		assert.Empty(t, ctx.MentionedEntities)
	})

	t.Run("assistant message does not set last query", func(t *testing.T) {
		ctx := types.NewConversationContext()
		ctx.Absorb(types.ChatMessage{Role: types.RoleAssistant, Content: "aspirin treats headaches"})
		assert.Empty(t, ctx.LastQuery)
	})

	t.Run("sources join mentioned set and drive focus", func(t *testing.T) {
		ctx := types.NewConversationContext()
		ctx.Absorb(types.ChatMessage{
			Role: types.RoleAssistant,
			Sources: []types.Source{
				{ID: "drug:aspirin", Type: types.EntityTypeDrug},
				{ID: "disease:headache", Type: types.EntityTypeDisease},
			},
		})
		assert.Contains(t, ctx.MentionedEntities, "drug:aspirin")
		assert.Contains(t, ctx.MentionedEntities, "disease:headache")
		assert.Equal(t, types.EntityTypeDisease, ctx.CurrentFocus)
	})

	t.Run("subgraph relationships join explored set", func(t *testing.T) {
		ctx := types.NewConversationContext()
		ctx.Absorb(types.ChatMessage{
			Role: types.RoleAssistant,
			Subgraph: &types.Subgraph{
				Relationships: []types.GraphRelationship{{ID: "r1"}, {ID: "r2"}},
			},
		})
		assert.Len(t, ctx.ExploredRelationships, 2)
	})

	t.Run("sets grow monotonically across turns", func(t *testing.T) {
		ctx := types.NewConversationContext()
		ctx.Absorb(types.ChatMessage{
			Role:    types.RoleAssistant,
			Sources: []types.Source{{ID: "a", Type: types.EntityTypeDrug}},
		})
		ctx.Absorb(types.ChatMessage{
			Role:    types.RoleAssistant,
			Sources: []types.Source{{ID: "b", Type: types.EntityTypeProtein}},
		})
		assert.Len(t, ctx.MentionedEntities, 2)
		assert.Equal(t, types.EntityTypeProtein, ctx.CurrentFocus)
	})
}

func TestConversationContextClone(t *testing.T) {
	ctx := types.NewConversationContext()
	ctx.Absorb(types.ChatMessage{
		Role:    types.RoleAssistant,
		Sources: []types.Source{{ID: "a", Type: types.EntityTypeDrug}},
	})

	clone := ctx.Clone()
	clone.MentionedEntities["b"] = struct{}{}
	clone.LastQuery = "changed"

	assert.Len(t, ctx.MentionedEntities, 1)
	assert.Empty(t, ctx.LastQuery)
}
