package retrieval

import (
	"sort"

	"github.com/soundprediction/biograph/pkg/types"
)

const (
	// semanticWeight and structuralWeight blend an existing similarity score
	// with centrality for entities found by both paths.
	semanticWeight   = 0.7
	structuralWeight = 0.3
	// structuralOnlyWeight scales centrality for entities the similarity
	// search missed.
	structuralOnlyWeight = 0.5
	// centralityFloor drops weakly connected structural-only entities.
	centralityFloor = 0.1
)

// Rank fuses vector similarity with subgraph centrality. Pure similarity
// ignores how embedded an entity is in the locally relevant subgraph; pure
// centrality ignores semantic match. The blend rewards entities that are
// both, while still surfacing highly connected entities the similarity
// search missed.
func Rank(hits []types.VectorHit, subgraph *types.Subgraph) []types.RankedEntity {
	centrality := centralityScores(subgraph)

	entries := make(map[string]*types.RankedEntity)
	order := make([]string, 0, len(hits))

	for _, hit := range hits {
		if _, ok := entries[hit.ID]; ok {
			continue
		}
		entries[hit.ID] = &types.RankedEntity{
			ID:         hit.ID,
			Type:       hit.Type,
			Name:       hit.Name,
			Properties: hit.Properties,
			Score:      clamp01(hit.Score),
			Reason:     types.MatchReasonSemantic,
		}
		order = append(order, hit.ID)
	}

	if subgraph != nil {
		for _, node := range subgraph.Nodes {
			c := centrality[node.ID]
			if entry, ok := entries[node.ID]; ok {
				entry.Score = clamp01(semanticWeight*entry.Score + structuralWeight*c)
				entry.Reason = types.MatchReasonSemanticStructural
				continue
			}
			if c <= centralityFloor {
				continue
			}
			entries[node.ID] = &types.RankedEntity{
				ID:         node.ID,
				Type:       node.Type,
				Name:       node.Name,
				Properties: node.Properties,
				Score:      clamp01(structuralOnlyWeight * c),
				Reason:     types.MatchReasonStructuralRelevance,
			}
			order = append(order, node.ID)
		}
	}

	ranked := make([]types.RankedEntity, 0, len(order))
	for _, id := range order {
		ranked = append(ranked, *entries[id])
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// centralityScores computes degree / maxDegree per node within the expanded
// subgraph, a value in [0,1]. The max degree is floored at 1 to avoid
// division by zero in relationship-free subgraphs.
func centralityScores(subgraph *types.Subgraph) map[string]float64 {
	scores := make(map[string]float64)
	if subgraph == nil {
		return scores
	}

	degree := make(map[string]int, len(subgraph.Nodes))
	for _, rel := range subgraph.Relationships {
		degree[rel.SourceID]++
		degree[rel.TargetID]++
	}

	maxDegree := 1
	for _, d := range degree {
		if d > maxDegree {
			maxDegree = d
		}
	}
	for _, node := range subgraph.Nodes {
		scores[node.ID] = float64(degree[node.ID]) / float64(maxDegree)
	}
	return scores
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
