package types

import "time"

// Conversation is a bounded-lifetime session of turn-taking messages plus the
// context derived from them. Conversations are owned by the conversation
// store and mutated only through its append operation.
type Conversation struct {
	ID        string              `json:"id"`
	Messages  []ChatMessage       `json:"messages"`
	Context   ConversationContext `json:"context"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// ConversationContext is session-scoped memory used to resolve follow-up
// references. Entity and relationship sets grow monotonically; CurrentFocus
// is overwritten to the type of the most recently added source.
type ConversationContext struct {
	MentionedEntities     map[string]struct{} `json:"-"`
	ExploredRelationships map[string]struct{} `json:"-"`
	CurrentFocus          EntityType          `json:"current_focus,omitempty"`
	LastQuery             string              `json:"last_query,omitempty"`
}

// NewConversationContext returns an empty context with initialized sets.
func NewConversationContext() ConversationContext {
	return ConversationContext{
		MentionedEntities:     make(map[string]struct{}),
		ExploredRelationships: make(map[string]struct{}),
	}
}

// MentionedEntityIDs returns the mentioned-entity set as a slice. Order is
// unspecified; callers that need determinism sort the result.
func (c *ConversationContext) MentionedEntityIDs() []string {
	ids := make([]string, 0, len(c.MentionedEntities))
	for id := range c.MentionedEntities {
		ids = append(ids, id)
	}
	return ids
}

// Absorb folds a newly appended message into the context: source IDs join the
// mentioned-entity set, subgraph relationship IDs join the explored set,
// focus follows the last-added source, and user-authored text becomes the
// last query.
func (c *ConversationContext) Absorb(msg ChatMessage) {
	for _, src := range msg.Sources {
		c.MentionedEntities[src.ID] = struct{}{}
		c.CurrentFocus = src.Type
	}
	if msg.Subgraph != nil {
		for _, rel := range msg.Subgraph.Relationships {
			c.ExploredRelationships[rel.ID] = struct{}{}
		}
	}
	if msg.Role == RoleUser {
		c.LastQuery = msg.Content
	}
}

// Clone returns a deep copy so callers cannot mutate store-owned state.
func (c *ConversationContext) Clone() ConversationContext {
	out := ConversationContext{
		MentionedEntities:     make(map[string]struct{}, len(c.MentionedEntities)),
		ExploredRelationships: make(map[string]struct{}, len(c.ExploredRelationships)),
		CurrentFocus:          c.CurrentFocus,
		LastQuery:             c.LastQuery,
	}
	for id := range c.MentionedEntities {
		out.MentionedEntities[id] = struct{}{}
	}
	for id := range c.ExploredRelationships {
		out.ExploredRelationships[id] = struct{}{}
	}
	return out
}
