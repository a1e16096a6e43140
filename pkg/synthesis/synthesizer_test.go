package synthesis_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/biograph/pkg/nlp"
	"github.com/soundprediction/biograph/pkg/synthesis"
	"github.com/soundprediction/biograph/pkg/types"
)

// fakeLLM implements nlp.Client with a canned response and call counting.
type fakeLLM struct {
	response     string
	err          error
	calls        int
	lastMessages []types.Message
}

func (f *fakeLLM) Chat(_ context.Context, messages []types.Message) (*types.Response, error) {
	f.calls++
	f.lastMessages = messages
	if f.err != nil {
		return nil, f.err
	}
	return &types.Response{Content: f.response, Model: "test-model"}, nil
}

func (f *fakeLLM) Close() error { return nil }

var _ nlp.Client = (*fakeLLM)(nil)

func aspirinEntities() []types.RankedEntity {
	return []types.RankedEntity{
		{
			ID:    "drug:aspirin",
			Type:  types.EntityTypeDrug,
			Name:  "Aspirin",
			Score: 0.95,
			Properties: map[string]interface{}{
				"indication": "pain relief",
			},
			Reason: types.MatchReasonSemantic,
		},
	}
}

func TestGenerateAnswerEmptyQuery(t *testing.T) {
	llm := &fakeLLM{}
	s := synthesis.NewSynthesizer(llm, nil)

	_, err := s.GenerateAnswer(context.Background(), "  ", aspirinEntities(), nil, nil)
	assert.ErrorIs(t, err, types.ErrEmptyQuery)
	assert.Equal(t, 0, llm.calls)
}

func TestGenerateAnswerEmptyResults(t *testing.T) {
	llm := &fakeLLM{response: "should never be called"}
	s := synthesis.NewSynthesizer(llm, nil)

	answer, err := s.GenerateAnswer(context.Background(), "what is xyzzy?", nil, &types.Subgraph{}, nil)
	require.NoError(t, err)

	assert.Equal(t, synthesis.NoResultsAnswer, answer.Text)
	assert.Equal(t, 0.0, answer.Confidence)
	assert.NotNil(t, answer.Sources)
	assert.Empty(t, answer.Sources)
	assert.Equal(t, 0, llm.calls, "no completion call may be made for an empty result set")
}

func TestGenerateAnswerSingleCompletionCall(t *testing.T) {
	llm := &fakeLLM{response: "Aspirin is indicated for pain relief."}
	s := synthesis.NewSynthesizer(llm, nil)

	answer, err := s.GenerateAnswer(context.Background(), "what is aspirin used for?", aspirinEntities(), &types.Subgraph{}, nil)
	require.NoError(t, err)

	require.Equal(t, 1, llm.calls)
	require.Len(t, llm.lastMessages, 2)
	assert.Equal(t, types.RoleSystem, llm.lastMessages[0].Role)
	assert.Equal(t, types.RoleUser, llm.lastMessages[1].Role)
	assert.Contains(t, llm.lastMessages[1].Content, "what is aspirin used for?")
	assert.Contains(t, llm.lastMessages[1].Content, "Aspirin")
	assert.Contains(t, llm.lastMessages[1].Content, "pain relief")

	assert.Contains(t, answer.Text, "**Aspirin**")
}

func TestGenerateAnswerAspirinScenario(t *testing.T) {
	llm := &fakeLLM{response: "Aspirin is commonly used for pain relief."}
	s := synthesis.NewSynthesizer(llm, nil)

	answer, err := s.GenerateAnswer(context.Background(), "what is aspirin used for?", aspirinEntities(), &types.Subgraph{}, nil)
	require.NoError(t, err)

	require.Len(t, answer.Sources, 1)
	assert.Equal(t, "Aspirin", answer.Sources[0].Name)
	assert.Equal(t, "pain relief", answer.Sources[0].Excerpt)
	assert.Greater(t, answer.Confidence, 0.8)
	assert.Equal(t, 1, llm.calls)
}

func TestGenerateAnswerIncludesConversationContext(t *testing.T) {
	llm := &fakeLLM{response: "It also reduces inflammation."}
	s := synthesis.NewSynthesizer(llm, nil)

	convCtx := types.NewConversationContext()
	convCtx.LastQuery = "what is aspirin used for?"
	convCtx.MentionedEntities["drug:aspirin"] = struct{}{}

	_, err := s.GenerateAnswer(context.Background(), "what else does it do?", aspirinEntities(), &types.Subgraph{}, &convCtx)
	require.NoError(t, err)

	prompt := llm.lastMessages[1].Content
	assert.Contains(t, prompt, "Previous question: what is aspirin used for?")
	assert.Contains(t, prompt, "drug:aspirin")
}

func TestGenerateAnswerIncludesRelationships(t *testing.T) {
	llm := &fakeLLM{response: "Aspirin inhibits COX-1."}
	s := synthesis.NewSynthesizer(llm, nil)

	subgraph := &types.Subgraph{
		Nodes: []types.GraphNode{
			{ID: "drug:aspirin", Name: "Aspirin", Type: types.EntityTypeDrug},
			{ID: "protein:cox1", Name: "COX-1", Type: types.EntityTypeProtein},
		},
		Relationships: []types.GraphRelationship{
			{ID: "r1", Type: "INHIBITS", SourceID: "drug:aspirin", TargetID: "protein:cox1"},
		},
	}

	_, err := s.GenerateAnswer(context.Background(), "how does aspirin work?", aspirinEntities(), subgraph, nil)
	require.NoError(t, err)

	prompt := llm.lastMessages[1].Content
	assert.Contains(t, prompt, "Aspirin -[INHIBITS]-> COX-1")
}

func TestGenerateAnswerPropagatesProviderError(t *testing.T) {
	llm := &fakeLLM{err: errors.New("provider down")}
	s := synthesis.NewSynthesizer(llm, nil)

	_, err := s.GenerateAnswer(context.Background(), "what is aspirin?", aspirinEntities(), nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "provider down")
}

func TestGenerateAnswerRejectsBlankCompletion(t *testing.T) {
	llm := &fakeLLM{response: "   "}
	s := synthesis.NewSynthesizer(llm, nil)

	_, err := s.GenerateAnswer(context.Background(), "what is aspirin?", aspirinEntities(), nil, nil)
	var emptyErr *nlp.EmptyResponseError
	assert.ErrorAs(t, err, &emptyErr)
}

func TestGenerateAnswerSourcesMatchEntities(t *testing.T) {
	entities := []types.RankedEntity{
		{ID: "a", Name: "Alpha", Type: types.EntityTypeDrug, Score: 0.6},
		{ID: "b", Name: "Beta", Type: types.EntityTypeProtein, Score: 0.9},
		{ID: "c", Name: "Gamma", Type: types.EntityTypeGene, Score: 0.7},
	}
	llm := &fakeLLM{response: "Alpha, Beta, and Gamma are related."}
	s := synthesis.NewSynthesizer(llm, nil)

	answer, err := s.GenerateAnswer(context.Background(), "how are these related?", entities, &types.Subgraph{}, nil)
	require.NoError(t, err)

	require.Len(t, answer.Sources, len(entities))
	scores := make([]float64, 0, len(answer.Sources))
	for _, src := range answer.Sources {
		scores = append(scores, src.Score)
	}
	assert.IsNonIncreasing(t, scores)
	assert.Equal(t, "Beta", answer.Sources[0].Name)

	// Every entity name is emphasized in the answer text.
	for _, entity := range entities {
		assert.True(t, strings.Contains(answer.Text, "**"+entity.Name+"**"),
			"answer should emphasize %s: %s", entity.Name, answer.Text)
	}
}
