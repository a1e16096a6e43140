package types_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/soundprediction/biograph/pkg/types"
)

func TestInferEntityType(t *testing.T) {
	tests := []struct {
		name   string
		labels []string
		want   types.EntityType
	}{
		{"single label", []string{"Disease"}, types.EntityTypeDisease},
		{"lowercase label", []string{"protein"}, types.EntityTypeProtein},
		{"priority picks drug over disease", []string{"Disease", "Drug"}, types.EntityTypeDrug},
		{"priority picks protein over gene", []string{"Gene", "Protein"}, types.EntityTypeProtein},
		{"unknown labels fall back to drug", []string{"Compound", "Molecule"}, types.EntityTypeDrug},
		{"no labels fall back to drug", nil, types.EntityTypeDrug},
		{"pathway", []string{"Pathway"}, types.EntityTypePathway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, types.InferEntityType(tt.labels))
		})
	}
}

func TestChatMessageValidate(t *testing.T) {
	t.Run("user message is valid", func(t *testing.T) {
		msg := types.ChatMessage{Role: types.RoleUser, Content: "what is aspirin"}
		assert.NoError(t, msg.Validate())
	})

	t.Run("assistant message is valid", func(t *testing.T) {
		msg := types.ChatMessage{Role: types.RoleAssistant, Content: "aspirin is a drug"}
		assert.NoError(t, msg.Validate())
	})

	t.Run("system role rejected", func(t *testing.T) {
		msg := types.ChatMessage{Role: types.RoleSystem, Content: "be helpful"}
		assert.ErrorIs(t, msg.Validate(), types.ErrInvalidRole)
	})

	t.Run("unknown role rejected", func(t *testing.T) {
		msg := types.ChatMessage{Role: "moderator", Content: "hello"}
		assert.ErrorIs(t, msg.Validate(), types.ErrInvalidRole)
	})
}

func TestSubgraphIsEmpty(t *testing.T) {
	t.Run("nil subgraph", func(t *testing.T) {
		var s *types.Subgraph
		assert.True(t, s.IsEmpty())
	})

	t.Run("zero value", func(t *testing.T) {
		assert.True(t, (&types.Subgraph{}).IsEmpty())
	})

	t.Run("with nodes", func(t *testing.T) {
		s := &types.Subgraph{Nodes: []types.GraphNode{{ID: "n1"}}}
		assert.False(t, s.IsEmpty())
	})
}
