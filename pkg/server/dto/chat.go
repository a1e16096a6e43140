// Package dto defines the request and response shapes of the HTTP API.
package dto

import (
	"errors"
	"strings"

	"github.com/soundprediction/biograph/pkg/types"
)

// MaxQueryLength bounds the accepted question length.
const MaxQueryLength = 4096

var (
	// ErrEmptyQuery is returned when the query field is blank.
	ErrEmptyQuery = errors.New("query field is required and cannot be empty")
	// ErrQueryTooLong is returned when the query exceeds MaxQueryLength.
	ErrQueryTooLong = errors.New("query exceeds maximum length")
)

// ChatRequest is the body of POST /api/v1/chat.
type ChatRequest struct {
	// ConversationID continues an existing conversation. Empty starts a new
	// one.
	ConversationID string `json:"conversation_id,omitempty"`
	Query          string `json:"query" binding:"required"`
}

// Validate performs validation on ChatRequest.
func (r *ChatRequest) Validate() error {
	if strings.TrimSpace(r.Query) == "" {
		return ErrEmptyQuery
	}
	if len(r.Query) > MaxQueryLength {
		return ErrQueryTooLong
	}
	return nil
}

// ChatResponse is the body returned by POST /api/v1/chat.
type ChatResponse struct {
	ConversationID string         `json:"conversation_id"`
	Answer         string         `json:"answer"`
	Sources        []types.Source `json:"sources"`
	Confidence     float64        `json:"confidence"`
	Mode           string         `json:"mode"`
}

// SearchRequest is the body of POST /api/v1/search.
type SearchRequest struct {
	Query       string   `json:"query" binding:"required"`
	EntityTypes []string `json:"entity_types,omitempty"`
	Limit       int      `json:"limit,omitempty"`
	MaxHops     int      `json:"max_hops,omitempty"`
}

// Validate performs validation on SearchRequest.
func (r *SearchRequest) Validate() error {
	if strings.TrimSpace(r.Query) == "" {
		return ErrEmptyQuery
	}
	if len(r.Query) > MaxQueryLength {
		return ErrQueryTooLong
	}
	return nil
}

// SearchResponse is the body returned by POST /api/v1/search.
type SearchResponse struct {
	Entities []types.RankedEntity `json:"entities"`
	Subgraph *types.Subgraph      `json:"subgraph"`
	Mode     string               `json:"mode"`
	Total    int                  `json:"total"`
}

// ConversationResponse is the body returned by GET /api/v1/conversations/:id.
type ConversationResponse struct {
	ID       string              `json:"id"`
	Messages []types.ChatMessage `json:"messages"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
