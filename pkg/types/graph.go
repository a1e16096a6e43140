package types

// GraphNode is a node returned by the graph backend.
type GraphNode struct {
	ID         string                 `json:"id"`
	Type       EntityType             `json:"type"`
	Name       string                 `json:"name"`
	Labels     []string               `json:"labels,omitempty"`
	Properties map[string]interface{} `json:"properties,omitempty"`
}

// GraphRelationship is a directed relationship between two graph nodes.
type GraphRelationship struct {
	ID         string                 `json:"id"`
	Type       string                 `json:"type"`
	SourceID   string                 `json:"source_id"`
	TargetID   string                 `json:"target_id"`
	Properties map[string]interface{} `json:"properties,omitempty"`
}

// Subgraph is a deduplicated neighborhood reachable from a seed set within a
// bounded hop count. Dedupe key is node/relationship ID.
type Subgraph struct {
	Nodes         []GraphNode         `json:"nodes"`
	Relationships []GraphRelationship `json:"relationships"`
}

// IsEmpty reports whether the subgraph holds no nodes and no relationships.
func (s *Subgraph) IsEmpty() bool {
	return s == nil || (len(s.Nodes) == 0 && len(s.Relationships) == 0)
}

// VectorHit is a single result from a named vector index query.
type VectorHit struct {
	ID         string                 `json:"id"`
	Type       EntityType             `json:"type"`
	Name       string                 `json:"name"`
	Properties map[string]interface{} `json:"properties,omitempty"`
	Score      float64                `json:"score"`
}
