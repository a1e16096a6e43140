package biograph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/soundprediction/biograph/pkg/conversation"
	"github.com/soundprediction/biograph/pkg/driver"
	"github.com/soundprediction/biograph/pkg/embedder"
	"github.com/soundprediction/biograph/pkg/nlp"
	"github.com/soundprediction/biograph/pkg/retrieval"
	"github.com/soundprediction/biograph/pkg/synthesis"
	"github.com/soundprediction/biograph/pkg/types"
)

// ErrConversationNotFound is returned when a conversation lookup misses.
// Callers recover by starting a new conversation.
var ErrConversationNotFound = conversation.ErrConversationNotFound

// Config holds configuration for the biograph client.
type Config struct {
	// RetrievalLimit bounds the ranked entity list per turn.
	RetrievalLimit int
	// MaxHops bounds neighborhood expansion per turn.
	MaxHops int
	// ConversationCapacity bounds how many conversations stay in memory.
	ConversationCapacity int
	// ConversationTTL bounds how long an untouched conversation survives.
	ConversationTTL time.Duration
	// Archiver, when set, receives conversations as they are evicted.
	Archiver conversation.Archiver
}

// ChatResult is the outcome of one full chat turn.
type ChatResult struct {
	ConversationID string           `json:"conversation_id"`
	Answer         string           `json:"answer"`
	Sources        []types.Source   `json:"sources"`
	Confidence     float64          `json:"confidence"`
	Mode           types.SearchMode `json:"mode"`
}

// Client wires the retrieval, synthesis, and conversation stages into the
// question-answering pipeline.
type Client struct {
	driver      driver.GraphDriver
	llm         nlp.Client
	embedder    embedder.Client
	store       *conversation.Store
	retriever   *retrieval.Retriever
	synthesizer *synthesis.Synthesizer
	config      *Config
	logger      *slog.Logger
}

// NewClient creates a biograph client over the provided backends. A nil
// config selects the defaults; a nil logger selects slog.Default.
func NewClient(graphDriver driver.GraphDriver, llmClient nlp.Client, embedderClient embedder.Client, config *Config, logger *slog.Logger) (*Client, error) {
	if graphDriver == nil {
		return nil, fmt.Errorf("graph driver is required")
	}
	if llmClient == nil {
		return nil, fmt.Errorf("llm client is required")
	}
	if embedderClient == nil {
		return nil, fmt.Errorf("embedder client is required")
	}
	if config == nil {
		config = &Config{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	var storeOpts []conversation.Option
	if config.ConversationCapacity > 0 {
		storeOpts = append(storeOpts, conversation.WithCapacity(config.ConversationCapacity))
	}
	if config.ConversationTTL > 0 {
		storeOpts = append(storeOpts, conversation.WithTTL(config.ConversationTTL))
	}
	if config.Archiver != nil {
		storeOpts = append(storeOpts, conversation.WithArchiver(config.Archiver))
	}

	return &Client{
		driver:      graphDriver,
		llm:         llmClient,
		embedder:    embedderClient,
		store:       conversation.NewStore(logger, storeOpts...),
		retriever:   retrieval.NewRetriever(graphDriver, embedderClient, logger),
		synthesizer: synthesis.NewSynthesizer(llmClient, logger),
		config:      config,
		logger:      logger,
	}, nil
}

// CreateConversation starts a new conversation and returns it.
func (c *Client) CreateConversation() *types.Conversation {
	return c.store.Create()
}

// AppendMessage adds a message to an existing conversation.
func (c *Client) AppendMessage(conversationID string, msg types.ChatMessage) error {
	return c.store.Append(conversationID, msg)
}

// GetConversation returns a copy of a conversation, or nil when absent.
func (c *Client) GetConversation(conversationID string) *types.Conversation {
	return c.store.Get(conversationID)
}

// GetContext returns the derived context of a conversation.
func (c *Client) GetContext(conversationID string) (types.ConversationContext, error) {
	return c.store.GetContext(conversationID)
}

// RemoveConversation deletes a conversation. Removing an absent conversation
// is a no-op.
func (c *Client) RemoveConversation(conversationID string) {
	c.store.Remove(conversationID)
}

// Search runs the retrieve and expand stages without touching conversation
// state or the completion provider.
func (c *Client) Search(ctx context.Context, query string, opts retrieval.Options) (*retrieval.Result, error) {
	if opts.Limit <= 0 {
		opts.Limit = c.config.RetrievalLimit
	}
	if opts.MaxHops <= 0 {
		opts.MaxHops = c.config.MaxHops
	}
	return c.retriever.Search(ctx, query, opts)
}

// GenerateAnswer runs the generate stage over already-retrieved context.
func (c *Client) GenerateAnswer(ctx context.Context, query string, entities []types.RankedEntity, subgraph *types.Subgraph, convCtx *types.ConversationContext) (*synthesis.Answer, error) {
	return c.synthesizer.GenerateAnswer(ctx, query, entities, subgraph, convCtx)
}

// Chat runs one full question-answering turn: resolve the conversation,
// retrieve and expand, synthesize an answer informed by the conversation
// context, and record both the question and the answer in the conversation.
//
// An empty conversationID starts a new conversation. A non-empty ID that no
// longer exists returns ErrConversationNotFound; the caller starts over with
// an empty ID.
func (c *Client) Chat(ctx context.Context, conversationID string, query string) (*ChatResult, error) {
	var convCtx types.ConversationContext
	if conversationID == "" {
		conv := c.store.Create()
		conversationID = conv.ID
		convCtx = conv.Context
	} else {
		var err error
		convCtx, err = c.store.GetContext(conversationID)
		if err != nil {
			return nil, err
		}
	}

	result, err := c.retriever.Search(ctx, query, retrieval.Options{
		Limit:   c.config.RetrievalLimit,
		MaxHops: c.config.MaxHops,
	})
	if err != nil {
		return nil, err
	}

	answer, err := c.synthesizer.GenerateAnswer(ctx, query, result.Entities, result.Subgraph, &convCtx)
	if err != nil {
		return nil, err
	}

	if err := c.store.Append(conversationID, types.ChatMessage{
		Role:    types.RoleUser,
		Content: query,
	}); err != nil {
		return nil, err
	}
	if err := c.store.Append(conversationID, types.ChatMessage{
		Role:     types.RoleAssistant,
		Content:  answer.Text,
		Sources:  answer.Sources,
		Subgraph: result.Subgraph,
	}); err != nil {
		return nil, err
	}

	c.logger.Info("chat turn complete",
		"conversation_id", conversationID,
		"mode", string(result.Mode),
		"entities", len(result.Entities),
		"confidence", answer.Confidence,
	)

	return &ChatResult{
		ConversationID: conversationID,
		Answer:         answer.Text,
		Sources:        answer.Sources,
		Confidence:     answer.Confidence,
		Mode:           result.Mode,
	}, nil
}

// GetDriver returns the underlying graph driver.
func (c *Client) GetDriver() driver.GraphDriver {
	return c.driver
}

// GetLLM returns the completion client.
func (c *Client) GetLLM() nlp.Client {
	return c.llm
}

// GetEmbedder returns the embedder client.
func (c *Client) GetEmbedder() embedder.Client {
	return c.embedder
}

// Close closes all backend connections.
func (c *Client) Close(ctx context.Context) error {
	return errors.Join(
		c.llm.Close(),
		c.embedder.Close(),
		c.driver.Close(ctx),
	)
}
