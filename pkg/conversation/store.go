package conversation

import (
	"container/list"
	"errors"
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/soundprediction/biograph/pkg/types"
)

// ErrConversationNotFound is returned when a conversation lookup misses.
// Callers recover by creating a new session.
var ErrConversationNotFound = errors.New("conversation not found")

const (
	// DefaultCapacity bounds how many conversations the store retains.
	DefaultCapacity = 100
	// DefaultTTL bounds how long an untouched conversation survives.
	DefaultTTL = 30 * time.Minute
)

// Archiver receives conversations as they are evicted. Archive failures must
// not surface to the caller whose create/append triggered the eviction.
type Archiver interface {
	Archive(conv *types.Conversation) error
}

// Store owns conversation lifecycle and the LRU+TTL-bounded memory of recent
// sessions. All access goes through one mutex; the access-order list gives
// O(1) recency touch and eviction.
type Store struct {
	mu       sync.Mutex
	convs    map[string]*list.Element
	order    *list.List // front = most recently used
	capacity int
	ttl      time.Duration
	archive  Archiver
	logger   *slog.Logger

	// now is swapped out in tests for deterministic TTL behavior.
	now func() time.Time
}

type entry struct {
	conv *types.Conversation
}

// Option configures a Store.
type Option func(*Store)

// WithCapacity sets the maximum number of retained conversations.
func WithCapacity(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.capacity = n
		}
	}
}

// WithTTL sets the time-to-live measured from a conversation's last update.
func WithTTL(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.ttl = d
		}
	}
}

// WithArchiver attaches an archive that receives evicted conversations.
func WithArchiver(a Archiver) Option {
	return func(s *Store) { s.archive = a }
}

// WithClock overrides the time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore creates a conversation store with the given options.
func NewStore(logger *slog.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		convs:    make(map[string]*list.Element),
		order:    list.New(),
		capacity: DefaultCapacity,
		ttl:      DefaultTTL,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create registers a new conversation with a fresh collision-free identifier,
// marks it most-recently-used, and runs the eviction sweep.
func (s *Store) Create() *types.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	conv := &types.Conversation{
		ID:        uuid.NewString(),
		Messages:  []types.ChatMessage{},
		Context:   types.NewConversationContext(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	elem := s.order.PushFront(&entry{conv: conv})
	s.convs[conv.ID] = elem

	s.evictLocked()
	return s.cloneConversation(conv)
}

// Append adds a message to a conversation, folds it into the derived context,
// touches recency, and runs the eviction sweep. Returns
// ErrConversationNotFound when the conversation is absent.
func (s *Store) Append(id string, msg types.ChatMessage) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.convs[id]
	if !ok {
		return ErrConversationNotFound
	}
	conv := elem.Value.(*entry).conv

	if msg.Timestamp.IsZero() {
		msg.Timestamp = s.now()
	}
	conv.Messages = append(conv.Messages, msg)
	conv.Context.Absorb(msg)
	conv.UpdatedAt = s.now()
	s.order.MoveToFront(elem)

	s.evictLocked()
	return nil
}

// GetContext returns a copy of the derived context and touches recency.
func (s *Store) GetContext(id string) (types.ConversationContext, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.convs[id]
	if !ok {
		return types.ConversationContext{}, ErrConversationNotFound
	}
	s.order.MoveToFront(elem)
	return elem.Value.(*entry).conv.Context.Clone(), nil
}

// Get returns a copy of the conversation, or nil when absent. Lookup misses
// are not errors here; Get serves read-only paths that should not fail hard.
// Get does not touch recency.
func (s *Store) Get(id string) *types.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.convs[id]
	if !ok {
		return nil
	}
	return s.cloneConversation(elem.Value.(*entry).conv)
}

// Remove deletes a single conversation. Removing an absent conversation is a
// no-op.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if elem, ok := s.convs[id]; ok {
		s.order.Remove(elem)
		delete(s.convs, id)
	}
}

// RemoveAll deletes every conversation.
func (s *Store) RemoveAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.convs = make(map[string]*list.Element)
	s.order.Init()
}

// Len reports the number of retained conversations.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.convs)
}

// evictLocked drops conversations whose age since last update exceeds the
// TTL, then drops least-recently-used conversations while over capacity.
// Eviction is silent. Caller holds the mutex.
func (s *Store) evictLocked() {
	now := s.now()

	for elem := s.order.Back(); elem != nil; {
		prev := elem.Prev()
		conv := elem.Value.(*entry).conv
		if now.Sub(conv.UpdatedAt) > s.ttl {
			s.dropLocked(elem, "ttl")
		}
		elem = prev
	}

	for len(s.convs) > s.capacity {
		oldest := s.order.Back()
		if oldest == nil {
			break
		}
		s.dropLocked(oldest, "capacity")
	}
}

func (s *Store) dropLocked(elem *list.Element, reason string) {
	conv := elem.Value.(*entry).conv
	s.order.Remove(elem)
	delete(s.convs, conv.ID)
	s.logger.Debug("evicted conversation",
		"conversation_id", conv.ID,
		"reason", reason,
		"messages", len(conv.Messages),
	)
	if s.archive != nil {
		if err := s.archive.Archive(conv); err != nil {
			s.logger.Warn("failed to archive evicted conversation",
				"conversation_id", conv.ID, "error", err)
		}
	}
}

// cloneConversation copies the conversation so callers cannot mutate
// store-owned state through the returned pointer. Message payloads are
// copied too; the Sources slices and Subgraph carried on assistant messages
// must not alias store-owned memory.
func (s *Store) cloneConversation(conv *types.Conversation) *types.Conversation {
	out := &types.Conversation{
		ID:        conv.ID,
		Messages:  make([]types.ChatMessage, len(conv.Messages)),
		Context:   conv.Context.Clone(),
		CreatedAt: conv.CreatedAt,
		UpdatedAt: conv.UpdatedAt,
	}
	for i, msg := range conv.Messages {
		out.Messages[i] = cloneMessage(msg)
	}
	return out
}

func cloneMessage(msg types.ChatMessage) types.ChatMessage {
	out := msg
	if msg.Sources != nil {
		out.Sources = make([]types.Source, len(msg.Sources))
		copy(out.Sources, msg.Sources)
		for i := range out.Sources {
			out.Sources[i].Properties = maps.Clone(out.Sources[i].Properties)
		}
	}
	if msg.Subgraph != nil {
		sg := &types.Subgraph{
			Nodes:         make([]types.GraphNode, len(msg.Subgraph.Nodes)),
			Relationships: make([]types.GraphRelationship, len(msg.Subgraph.Relationships)),
		}
		copy(sg.Nodes, msg.Subgraph.Nodes)
		copy(sg.Relationships, msg.Subgraph.Relationships)
		for i := range sg.Nodes {
			sg.Nodes[i].Properties = maps.Clone(sg.Nodes[i].Properties)
		}
		for i := range sg.Relationships {
			sg.Relationships[i].Properties = maps.Clone(sg.Relationships[i].Properties)
		}
		out.Subgraph = sg
	}
	return out
}
