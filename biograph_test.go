package biograph_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/biograph"
	"github.com/soundprediction/biograph/pkg/retrieval"
	"github.com/soundprediction/biograph/pkg/synthesis"
	"github.com/soundprediction/biograph/pkg/types"
)

// fakeDriver serves canned vector hits and an empty neighborhood.
type fakeDriver struct {
	hitsByIndex map[string][]types.VectorHit
	subgraph    *types.Subgraph
	expandCalls int
}

func (d *fakeDriver) VectorSearch(_ context.Context, indexName string, _ []float32, _ int) ([]types.VectorHit, error) {
	return d.hitsByIndex[indexName], nil
}

func (d *fakeDriver) ExpandNeighborhood(_ context.Context, _ []string, _ int) (*types.Subgraph, error) {
	d.expandCalls++
	if d.subgraph != nil {
		return d.subgraph, nil
	}
	return &types.Subgraph{}, nil
}

func (d *fakeDriver) Close(context.Context) error { return nil }

type fakeLLM struct {
	response     string
	calls        int
	lastMessages []types.Message
}

func (f *fakeLLM) Chat(_ context.Context, messages []types.Message) (*types.Response, error) {
	f.calls++
	f.lastMessages = messages
	return &types.Response{Content: f.response}, nil
}

func (f *fakeLLM) Close() error { return nil }

type fakeEmbedder struct{}

func (fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{0.5}
	}
	return out, nil
}

func (fakeEmbedder) EmbedSingle(context.Context, string) ([]float32, error) {
	return []float32{0.5}, nil
}

func (fakeEmbedder) Dimensions() int { return 1 }
func (fakeEmbedder) Close() error    { return nil }

func newTestClient(t *testing.T, d *fakeDriver, llm *fakeLLM) *biograph.Client {
	t.Helper()
	client, err := biograph.NewClient(d, llm, fakeEmbedder{}, nil, nil)
	require.NoError(t, err)
	return client
}

func aspirinDriver() *fakeDriver {
	return &fakeDriver{
		hitsByIndex: map[string][]types.VectorHit{
			"drug_embeddings": {{
				ID:    "drug:aspirin",
				Name:  "Aspirin",
				Score: 0.95,
				Properties: map[string]interface{}{
					"indication": "pain relief",
				},
			}},
		},
	}
}

func TestNewClientRequiresBackends(t *testing.T) {
	_, err := biograph.NewClient(nil, &fakeLLM{}, fakeEmbedder{}, nil, nil)
	assert.Error(t, err)

	_, err = biograph.NewClient(&fakeDriver{}, nil, fakeEmbedder{}, nil, nil)
	assert.Error(t, err)

	_, err = biograph.NewClient(&fakeDriver{}, &fakeLLM{}, nil, nil, nil)
	assert.Error(t, err)
}

func TestChatStartsNewConversation(t *testing.T) {
	llm := &fakeLLM{response: "Aspirin is used for pain relief."}
	client := newTestClient(t, aspirinDriver(), llm)

	result, err := client.Chat(context.Background(), "", "what is aspirin used for?")
	require.NoError(t, err)

	assert.NotEmpty(t, result.ConversationID)
	assert.Contains(t, result.Answer, "**Aspirin**")
	assert.Equal(t, 1, llm.calls)
	require.Len(t, result.Sources, 1)
	assert.Equal(t, "pain relief", result.Sources[0].Excerpt)
	assert.Greater(t, result.Confidence, 0.8)

	conv := client.GetConversation(result.ConversationID)
	require.NotNil(t, conv)
	require.Len(t, conv.Messages, 2)
	assert.Equal(t, types.RoleUser, conv.Messages[0].Role)
	assert.Equal(t, types.RoleAssistant, conv.Messages[1].Role)
	assert.Equal(t, result.Answer, conv.Messages[1].Content)
}

func TestChatCarriesContextIntoFollowUp(t *testing.T) {
	llm := &fakeLLM{response: "Aspirin also reduces inflammation."}
	client := newTestClient(t, aspirinDriver(), llm)

	first, err := client.Chat(context.Background(), "", "what is aspirin used for?")
	require.NoError(t, err)

	_, err = client.Chat(context.Background(), first.ConversationID, "what else does it do?")
	require.NoError(t, err)

	require.Len(t, llm.lastMessages, 2)
	prompt := llm.lastMessages[1].Content
	assert.Contains(t, prompt, "Previous question: what is aspirin used for?")
	assert.Contains(t, prompt, "drug:aspirin")

	conv := client.GetConversation(first.ConversationID)
	require.NotNil(t, conv)
	assert.Len(t, conv.Messages, 4)
}

func TestChatUnknownConversation(t *testing.T) {
	client := newTestClient(t, aspirinDriver(), &fakeLLM{response: "x"})

	_, err := client.Chat(context.Background(), "no-such-id", "hello?")
	assert.ErrorIs(t, err, biograph.ErrConversationNotFound)
}

func TestChatNoResults(t *testing.T) {
	llm := &fakeLLM{response: "should not be called"}
	client := newTestClient(t, &fakeDriver{}, llm)

	result, err := client.Chat(context.Background(), "", "what is xyzzy?")
	require.NoError(t, err)

	assert.Equal(t, synthesis.NoResultsAnswer, result.Answer)
	assert.Equal(t, 0.0, result.Confidence)
	assert.Empty(t, result.Sources)
	assert.Equal(t, 0, llm.calls)

	// The turn is still recorded.
	conv := client.GetConversation(result.ConversationID)
	require.NotNil(t, conv)
	assert.Len(t, conv.Messages, 2)
}

func TestSearchDoesNotTouchConversationsOrLLM(t *testing.T) {
	llm := &fakeLLM{response: "x"}
	client := newTestClient(t, aspirinDriver(), llm)

	result, err := client.Search(context.Background(), "what is aspirin?", retrieval.Options{})
	require.NoError(t, err)

	require.Len(t, result.Entities, 1)
	assert.Equal(t, "drug:aspirin", result.Entities[0].ID)
	assert.Equal(t, 0, llm.calls)
}

func TestGenerateAnswerOverRetrievedContext(t *testing.T) {
	llm := &fakeLLM{response: "Aspirin treats pain."}
	client := newTestClient(t, aspirinDriver(), llm)

	search, err := client.Search(context.Background(), "what is aspirin?", retrieval.Options{})
	require.NoError(t, err)

	answer, err := client.GenerateAnswer(context.Background(), "what is aspirin?", search.Entities, search.Subgraph, nil)
	require.NoError(t, err)
	assert.Contains(t, answer.Text, "**Aspirin**")
	assert.Equal(t, 1, llm.calls)
}

func TestConversationLifecycle(t *testing.T) {
	client := newTestClient(t, aspirinDriver(), &fakeLLM{response: "x"})

	conv := client.CreateConversation()
	require.NotEmpty(t, conv.ID)

	err := client.AppendMessage(conv.ID, types.ChatMessage{Role: types.RoleUser, Content: "hi"})
	require.NoError(t, err)

	ctx, err := client.GetContext(conv.ID)
	require.NoError(t, err)
	assert.Equal(t, "hi", ctx.LastQuery)

	client.RemoveConversation(conv.ID)
	assert.Nil(t, client.GetConversation(conv.ID))
}
