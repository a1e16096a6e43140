package driver

import (
	"context"

	"github.com/soundprediction/biograph/pkg/types"
)

// GraphDriver is the contract the retrieval layer consumes: run a similarity
// search against a named vector index, expand a bounded neighborhood around a
// seed set. Graph queries are not retried by the core; a failed call surfaces
// to the caller as-is.
type GraphDriver interface {
	// VectorSearch queries the named similarity index for the top limit
	// matches to the given vector. Hits come back in index-returned order.
	VectorSearch(ctx context.Context, indexName string, vector []float32, limit int) ([]types.VectorHit, error)

	// ExpandNeighborhood retrieves all nodes and relationships reachable from
	// the seed set within maxHops hops, bounded to a fixed maximum path count
	// and deduplicated by identity. An empty seed set returns an empty
	// subgraph without issuing a query.
	ExpandNeighborhood(ctx context.Context, seedIDs []string, maxHops int) (*types.Subgraph, error)

	// Close releases all resources held by the driver.
	Close(ctx context.Context) error
}
