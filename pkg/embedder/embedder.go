// Package embedder provides embedding clients for query and batch text
// embedding.
//
// Embed preserves input order. Batch workloads are processed in fixed-size
// chunks with an inter-batch pause to respect provider rate limits; this is a
// throughput control, not a correctness requirement.
package embedder

import (
	"context"
	"errors"
)

// ErrEmptyInput is returned when an embedding is requested for blank text.
var ErrEmptyInput = errors.New("input text cannot be empty")

// Client defines the interface for embedding operations.
type Client interface {
	// Embed generates embeddings for the given texts, preserving input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedSingle generates an embedding for a single text.
	EmbedSingle(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the number of dimensions in the embeddings.
	Dimensions() int

	// Close cleans up any resources.
	Close() error
}

// Config holds common embedder configuration.
type Config struct {
	Model      string `json:"model"`
	Dimensions int    `json:"dimensions"`
	BatchSize  int    `json:"batch_size"`
}
