package biograph

import (
	"context"

	"github.com/soundprediction/biograph/pkg/retrieval"
	"github.com/soundprediction/biograph/pkg/synthesis"
	"github.com/soundprediction/biograph/pkg/types"
)

// This file defines focused interfaces over the Client. Consumers should
// depend on the smallest interface that meets their needs.

// ConversationManager provides conversation lifecycle operations.
type ConversationManager interface {
	// CreateConversation starts a new conversation and returns it.
	CreateConversation() *types.Conversation

	// AppendMessage adds a message to an existing conversation.
	AppendMessage(conversationID string, msg types.ChatMessage) error

	// GetConversation returns a copy of a conversation, or nil when absent.
	GetConversation(conversationID string) *types.Conversation

	// GetContext returns the derived context of a conversation.
	GetContext(conversationID string) (types.ConversationContext, error)

	// RemoveConversation deletes a conversation.
	RemoveConversation(conversationID string)
}

// GraphSearcher provides read-only retrieval over the knowledge graph.
type GraphSearcher interface {
	// Search runs vector retrieval plus neighborhood expansion and returns
	// ranked entities with their supporting subgraph.
	Search(ctx context.Context, query string, opts retrieval.Options) (*retrieval.Result, error)
}

// AnswerGenerator produces cited answers over retrieved context.
type AnswerGenerator interface {
	// GenerateAnswer synthesizes an answer from already-retrieved context.
	GenerateAnswer(ctx context.Context, query string, entities []types.RankedEntity, subgraph *types.Subgraph, convCtx *types.ConversationContext) (*synthesis.Answer, error)

	// Chat runs one full question-answering turn against a conversation.
	Chat(ctx context.Context, conversationID string, query string) (*ChatResult, error)
}

// Ensure Client implements every focused interface.
var _ interface {
	ConversationManager
	GraphSearcher
	AnswerGenerator
} = (*Client)(nil)
