package driver

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/db"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/soundprediction/biograph/pkg/types"
)

// maxExpansionPaths bounds the number of paths an expansion query may walk.
const maxExpansionPaths = 50

// Neo4jDriver implements GraphDriver backed by a Neo4j database with native
// vector indexes. Safe for concurrent use; the underlying driver pools
// connections internally.
type Neo4jDriver struct {
	client   neo4j.DriverWithContext
	database string
}

// NewNeo4jDriver creates a new Neo4j driver and verifies connectivity.
func NewNeo4jDriver(ctx context.Context, uri, username, password, database string) (*Neo4jDriver, error) {
	client, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}
	if err := client.VerifyConnectivity(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to neo4j at %s: %w", uri, err)
	}
	if database == "" {
		database = "neo4j"
	}
	return &Neo4jDriver{client: client, database: database}, nil
}

// VectorSearch queries a named vector index via db.index.vector.queryNodes.
func (n *Neo4jDriver) VectorSearch(ctx context.Context, indexName string, vector []float32, limit int) ([]types.VectorHit, error) {
	if len(vector) == 0 {
		return []types.VectorHit{}, nil
	}
	if limit <= 0 {
		limit = 10
	}

	session := n.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: n.database})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			CALL db.index.vector.queryNodes($indexName, $limit, $vector)
			YIELD node, score
			RETURN node, score
		`
		res, err := tx.Run(ctx, query, map[string]any{
			"indexName": indexName,
			"limit":     limit,
			"vector":    toFloat64Slice(vector),
		})
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("vector search on index %s failed: %w", indexName, err)
	}

	records := result.([]*db.Record)
	hits := make([]types.VectorHit, 0, len(records))
	for _, record := range records {
		nodeValue, found := record.Get("node")
		if !found {
			continue
		}
		dbNode, ok := nodeValue.(dbtype.Node)
		if !ok {
			continue
		}
		score := 0.0
		if scoreValue, found := record.Get("score"); found {
			if s, ok := scoreValue.(float64); ok {
				score = s
			}
		}
		gn := graphNodeFromDBNode(dbNode)
		hits = append(hits, types.VectorHit{
			ID:         gn.ID,
			Type:       gn.Type,
			Name:       gn.Name,
			Properties: gn.Properties,
			Score:      score,
		})
	}
	return hits, nil
}

// ExpandNeighborhood walks up to maxHops from the seed set, bounded to
// maxExpansionPaths paths, and returns the deduplicated neighborhood.
func (n *Neo4jDriver) ExpandNeighborhood(ctx context.Context, seedIDs []string, maxHops int) (*types.Subgraph, error) {
	if len(seedIDs) == 0 {
		return &types.Subgraph{Nodes: []types.GraphNode{}, Relationships: []types.GraphRelationship{}}, nil
	}
	if maxHops <= 0 {
		maxHops = 2
	}

	session := n.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: n.database})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		// Variable-length bounds cannot be parameterized in Cypher.
		query := fmt.Sprintf(`
			MATCH (seed) WHERE seed.id IN $seedIds
			MATCH path = (seed)-[*1..%d]-(neighbor)
			WITH path LIMIT %d
			UNWIND nodes(path) AS n
			UNWIND relationships(path) AS r
			RETURN collect(DISTINCT n) AS nodes, collect(DISTINCT r) AS relationships
		`, maxHops, maxExpansionPaths)

		res, err := tx.Run(ctx, query, map[string]any{"seedIds": seedIDs})
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("neighborhood expansion failed: %w", err)
	}

	subgraph := &types.Subgraph{Nodes: []types.GraphNode{}, Relationships: []types.GraphRelationship{}}
	records := result.([]*db.Record)
	if len(records) == 0 {
		return subgraph, nil
	}

	seenNodes := make(map[string]struct{})
	seenRels := make(map[string]struct{})
	elementToID := make(map[string]string)
	record := records[0]

	if nodesValue, found := record.Get("nodes"); found {
		if nodeList, ok := nodesValue.([]any); ok {
			for _, item := range nodeList {
				dbNode, ok := item.(dbtype.Node)
				if !ok {
					continue
				}
				gn := graphNodeFromDBNode(dbNode)
				elementToID[dbNode.ElementId] = gn.ID
				if _, dup := seenNodes[gn.ID]; dup {
					continue
				}
				seenNodes[gn.ID] = struct{}{}
				subgraph.Nodes = append(subgraph.Nodes, gn)
			}
		}
	}
	if relsValue, found := record.Get("relationships"); found {
		if relList, ok := relsValue.([]any); ok {
			for _, item := range relList {
				dbRel, ok := item.(dbtype.Relationship)
				if !ok {
					continue
				}
				gr := relationshipFromDBRelationship(dbRel, elementToID)
				if _, dup := seenRels[gr.ID]; dup {
					continue
				}
				seenRels[gr.ID] = struct{}{}
				subgraph.Relationships = append(subgraph.Relationships, gr)
			}
		}
	}
	return subgraph, nil
}

// Close releases the underlying driver.
func (n *Neo4jDriver) Close(ctx context.Context) error {
	return n.client.Close(ctx)
}

var _ GraphDriver = (*Neo4jDriver)(nil)
