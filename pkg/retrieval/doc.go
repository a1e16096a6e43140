// Package retrieval implements hybrid search over the biomedical knowledge
// graph: per-entity-type vector similarity search, bounded graph-neighborhood
// expansion around the top hits, and a score fusion that blends similarity
// with structural centrality into one ranked entity list.
package retrieval
