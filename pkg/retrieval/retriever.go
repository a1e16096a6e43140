package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/soundprediction/biograph/pkg/driver"
	"github.com/soundprediction/biograph/pkg/embedder"
	"github.com/soundprediction/biograph/pkg/types"
)

const (
	// DefaultLimit is the default number of ranked entities returned.
	DefaultLimit = 10
	// DefaultMaxHops is the default neighborhood expansion depth.
	DefaultMaxHops = 2
)

// RetrievalError wraps a backend failure during search or expansion. It is
// fatal to the current turn but not to the session.
type RetrievalError struct {
	Stage string
	Err   error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieval failed during %s: %v", e.Stage, e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

// Is implements errors.Is support for RetrievalError.
func (e *RetrievalError) Is(target error) bool {
	_, ok := target.(*RetrievalError)
	return ok
}

// Options configures a single search call.
type Options struct {
	// Mode, when set, is used verbatim instead of routing by keywords.
	Mode types.SearchMode `json:"mode,omitempty"`
	// EntityTypes restricts vector search to the given types. Empty means
	// all known types.
	EntityTypes []types.EntityType `json:"entity_types,omitempty"`
	// Limit bounds the ranked entity list.
	Limit int `json:"limit,omitempty"`
	// MaxHops bounds neighborhood expansion.
	MaxHops int `json:"max_hops,omitempty"`
}

// Result is the output of one retrieval pass.
type Result struct {
	Entities []types.RankedEntity `json:"entities"`
	Subgraph *types.Subgraph      `json:"subgraph"`
	// Mode reports how the query was routed. It is observability metadata:
	// the same retrieval strategy executes regardless of mode (see RouteMode).
	Mode types.SearchMode `json:"mode"`
}

// Retriever turns a natural-language query into a ranked, graph-grounded
// entity set by fusing vector similarity with structural centrality.
type Retriever struct {
	driver   driver.GraphDriver
	embedder embedder.Client
	logger   *slog.Logger
}

// NewRetriever creates a hybrid retriever.
func NewRetriever(graphDriver driver.GraphDriver, embedderClient embedder.Client, logger *slog.Logger) *Retriever {
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{
		driver:   graphDriver,
		embedder: embedderClient,
		logger:   logger,
	}
}

// Search runs the retrieve and expand stages: embed the query, search each
// requested entity type's vector index, expand the neighborhood around the
// hits, and fuse similarity with centrality into a ranked list.
func (r *Retriever) Search(ctx context.Context, query string, opts Options) (*Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, types.ErrEmptyQuery
	}

	mode := opts.Mode
	if mode == "" {
		mode = RouteMode(query)
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	maxHops := opts.MaxHops
	if maxHops <= 0 {
		maxHops = DefaultMaxHops
	}

	vector, err := r.embedder.EmbedSingle(ctx, strings.ReplaceAll(query, "\n", " "))
	if err != nil {
		return nil, &RetrievalError{Stage: "query embedding", Err: err}
	}

	hits, err := r.vectorSearch(ctx, vector, opts.EntityTypes, limit)
	if err != nil {
		return nil, err
	}

	seedIDs := make([]string, 0, len(hits))
	for _, hit := range hits {
		seedIDs = append(seedIDs, hit.ID)
	}
	subgraph, err := r.ExpandGraph(ctx, seedIDs, maxHops)
	if err != nil {
		return nil, err
	}

	entities := Rank(hits, subgraph)
	r.logger.Debug("retrieval complete",
		"mode", string(mode),
		"vector_hits", len(hits),
		"subgraph_nodes", len(subgraph.Nodes),
		"ranked_entities", len(entities),
	)

	return &Result{
		Entities: entities,
		Subgraph: subgraph,
		Mode:     mode,
	}, nil
}

// vectorSearch queries each requested entity type's similarity index, tags
// the hits, merges, sorts descending by score, and truncates to limit. The
// sort is stable so ties keep type-iteration order, then index order; the
// same inputs always yield the same ordering.
func (r *Retriever) vectorSearch(ctx context.Context, vector []float32, entityTypes []types.EntityType, limit int) ([]types.VectorHit, error) {
	if len(entityTypes) == 0 {
		entityTypes = types.EntityTypePriority
	}

	var merged []types.VectorHit
	for _, entityType := range entityTypes {
		hits, err := r.driver.VectorSearch(ctx, IndexName(entityType), vector, limit)
		if err != nil {
			return nil, &RetrievalError{Stage: "vector search", Err: err}
		}
		for i := range hits {
			hits[i].Type = entityType
		}
		merged = append(merged, hits...)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score > merged[j].Score
	})
	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged, nil
}

// ExpandGraph retrieves the bounded neighborhood around the seed set. An
// empty seed set returns an empty subgraph without touching the backend.
func (r *Retriever) ExpandGraph(ctx context.Context, seedIDs []string, maxHops int) (*types.Subgraph, error) {
	if len(seedIDs) == 0 {
		return &types.Subgraph{Nodes: []types.GraphNode{}, Relationships: []types.GraphRelationship{}}, nil
	}
	subgraph, err := r.driver.ExpandNeighborhood(ctx, seedIDs, maxHops)
	if err != nil {
		return nil, &RetrievalError{Stage: "graph expansion", Err: err}
	}
	return subgraph, nil
}

// IndexName maps an entity type to its similarity index.
func IndexName(entityType types.EntityType) string {
	return string(entityType) + "_embeddings"
}
