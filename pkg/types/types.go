package types

import (
	"errors"
	"time"
)

// Validation errors
var (
	ErrEmptyQuery   = errors.New("query cannot be empty")
	ErrEmptyInput   = errors.New("input text cannot be empty")
	ErrEmptyID      = errors.New("id cannot be empty")
	ErrInvalidRole  = errors.New("role must be user or assistant")
	ErrInvalidLimit = errors.New("limit must be positive")
)

// EntityType identifies the kind of biomedical entity a graph node represents.
// The set is closed; InferEntityType falls back to the highest-priority type
// when no label matches.
type EntityType string

const (
	EntityTypeDrug    EntityType = "drug"
	EntityTypeDisease EntityType = "disease"
	EntityTypeProtein EntityType = "protein"
	EntityTypeGene    EntityType = "gene"
	EntityTypePathway EntityType = "pathway"
)

// EntityTypePriority is the fixed priority order used for label inference and
// for stable iteration wherever per-type work has to be deterministic.
var EntityTypePriority = []EntityType{
	EntityTypeDrug,
	EntityTypeDisease,
	EntityTypeProtein,
	EntityTypeGene,
	EntityTypePathway,
}

// InferEntityType maps a set of graph labels to an EntityType, walking the
// priority order. Labels that match no known type yield the first type in the
// order; this is a documented fallback, not an error.
func InferEntityType(labels []string) EntityType {
	labelSet := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		labelSet[normalizeLabel(l)] = struct{}{}
	}
	for _, t := range EntityTypePriority {
		if _, ok := labelSet[string(t)]; ok {
			return t
		}
	}
	return EntityTypePriority[0]
}

func normalizeLabel(label string) string {
	b := make([]byte, 0, len(label))
	for i := 0; i < len(label); i++ {
		c := label[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		b = append(b, c)
	}
	return string(b)
}

// SearchMode labels how a query was routed. The mode is attached to search
// results for observability; it does not select a retrieval strategy.
type SearchMode string

const (
	SearchModeSemantic   SearchMode = "semantic"
	SearchModeStructural SearchMode = "structural"
	SearchModeExact      SearchMode = "exact"
	SearchModeHybrid     SearchMode = "hybrid"
)

// MatchReason records why an entity appears in a ranked result set.
type MatchReason string

const (
	MatchReasonSemantic            MatchReason = "semantic_match"
	MatchReasonSemanticStructural  MatchReason = "semantic_and_structural"
	MatchReasonStructuralRelevance MatchReason = "structural_relevance"
)

// RankedEntity is an entity surfaced by retrieval carrying a fused relevance
// score in [0,1]. Ranked entities are ephemeral; they are consumed by answer
// synthesis and never persisted.
type RankedEntity struct {
	ID         string                 `json:"id"`
	Type       EntityType             `json:"type"`
	Name       string                 `json:"name"`
	Properties map[string]interface{} `json:"properties,omitempty"`
	Score      float64                `json:"score"`
	Reason     MatchReason            `json:"reason"`
}

// Source is the citation unit returned to the caller alongside an answer.
type Source struct {
	Type       EntityType             `json:"type"`
	Name       string                 `json:"name"`
	ID         string                 `json:"id"`
	Score      float64                `json:"score"`
	Excerpt    string                 `json:"excerpt"`
	Properties map[string]interface{} `json:"properties,omitempty"`
}

// Role identifies the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single prompt message sent to a language model.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Response is the result of a completion call.
type Response struct {
	Content      string      `json:"content"`
	Model        string      `json:"model,omitempty"`
	FinishReason string      `json:"finish_reason,omitempty"`
	TokensUsed   *TokenUsage `json:"tokens_used,omitempty"`
}

// TokenUsage reports token accounting when the provider supplies it.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatMessage is one turn in a conversation. Immutable once appended.
type ChatMessage struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Sources   []Source  `json:"sources,omitempty"`
	Subgraph  *Subgraph `json:"subgraph,omitempty"`
}

// Validate checks that a chat message is well formed before appending.
func (m *ChatMessage) Validate() error {
	if m.Role != RoleUser && m.Role != RoleAssistant {
		return ErrInvalidRole
	}
	return nil
}
