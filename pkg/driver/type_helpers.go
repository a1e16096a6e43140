// Package driver provides graph database access for biograph.
package driver

import (
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/soundprediction/biograph/pkg/types"
)

// graphNodeFromDBNode converts a Neo4j node into a GraphNode. The stable
// entity identifier is the node's id property; the element id is only a
// fallback for nodes ingested without one.
func graphNodeFromDBNode(dbNode dbtype.Node) types.GraphNode {
	node := types.GraphNode{
		ID:         dbNode.ElementId,
		Labels:     dbNode.Labels,
		Type:       types.InferEntityType(dbNode.Labels),
		Properties: dbNode.Props,
	}
	if id, ok := dbNode.Props["id"].(string); ok && id != "" {
		node.ID = id
	}
	if name, ok := dbNode.Props["name"].(string); ok {
		node.Name = name
	}
	return node
}

// relationshipFromDBRelationship converts a Neo4j relationship. Endpoint
// element ids are resolved to stable entity ids through elementToID where
// possible.
func relationshipFromDBRelationship(dbRel dbtype.Relationship, elementToID map[string]string) types.GraphRelationship {
	rel := types.GraphRelationship{
		ID:         dbRel.ElementId,
		Type:       dbRel.Type,
		SourceID:   dbRel.StartElementId,
		TargetID:   dbRel.EndElementId,
		Properties: dbRel.Props,
	}
	if id, ok := dbRel.Props["id"].(string); ok && id != "" {
		rel.ID = id
	}
	if sourceID, ok := elementToID[dbRel.StartElementId]; ok {
		rel.SourceID = sourceID
	}
	if targetID, ok := elementToID[dbRel.EndElementId]; ok {
		rel.TargetID = targetID
	}
	return rel
}

// toFloat64Slice converts an embedding to the float64 form the Neo4j driver
// serializes for vector index queries.
func toFloat64Slice(vector []float32) []float64 {
	out := make([]float64, len(vector))
	for i, v := range vector {
		out[i] = float64(v)
	}
	return out
}
