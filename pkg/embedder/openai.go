package embedder

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

const (
	// DefaultDimensions matches text-embedding-3-small.
	DefaultDimensions = 1536
	// DefaultBatchSize is the chunk size for batch embedding.
	DefaultBatchSize = 64
	// defaultBatchPause is the pause between batch chunks.
	defaultBatchPause = 200 * time.Millisecond
	// singleRequestTimeout bounds one embedding call; batch calls get a
	// longer window per chunk.
	singleRequestTimeout = 10 * time.Second
	batchRequestTimeout  = 60 * time.Second
)

// OpenAIClient implements the Client interface for OpenAI embedding models.
type OpenAIClient struct {
	client     *openai.Client
	config     Config
	batchPause time.Duration
}

// NewOpenAIClient creates a new OpenAI embedding client.
func NewOpenAIClient(apiKey string, config Config) *OpenAIClient {
	if config.Model == "" {
		config.Model = string(openai.SmallEmbedding3)
	}
	if config.Dimensions <= 0 {
		config.Dimensions = DefaultDimensions
	}
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultBatchSize
	}
	return &OpenAIClient{
		client:     openai.NewClient(apiKey),
		config:     config,
		batchPause: defaultBatchPause,
	}
}

// EmbedSingle generates an embedding for a single text. Blank text fails with
// ErrEmptyInput.
func (c *OpenAIClient) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}

	ctx, cancel := context.WithTimeout(ctx, singleRequestTimeout)
	defer cancel()

	vectors, err := c.embedChunk(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// Embed generates embeddings for the given texts in fixed-size chunks,
// pausing between chunks. Input order is preserved.
func (c *OpenAIClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	for _, text := range texts {
		if strings.TrimSpace(text) == "" {
			return nil, ErrEmptyInput
		}
	}

	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += c.config.BatchSize {
		end := min(start+c.config.BatchSize, len(texts))

		chunkCtx, cancel := context.WithTimeout(ctx, batchRequestTimeout)
		chunk, err := c.embedChunk(chunkCtx, texts[start:end])
		cancel()
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, chunk...)

		if end < len(texts) {
			select {
			case <-time.After(c.batchPause):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	return vectors, nil
}

func (c *OpenAIClient) embedChunk(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(c.config.Model),
		Input: texts,
	})
	if err != nil {
		return nil, fmt.Errorf("openai embedding failed: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: got %d for %d inputs", len(resp.Data), len(texts))
	}

	// The API may reorder data; Index restores input order.
	vectors := make([][]float32, len(texts))
	for _, item := range resp.Data {
		if item.Index < 0 || item.Index >= len(vectors) {
			return nil, fmt.Errorf("embedding index %d out of range", item.Index)
		}
		vectors[item.Index] = item.Embedding
	}
	return vectors, nil
}

// Dimensions returns the number of dimensions in the embeddings.
func (c *OpenAIClient) Dimensions() int {
	return c.config.Dimensions
}

// Close cleans up any resources (no-op for OpenAI client).
func (c *OpenAIClient) Close() error {
	return nil
}

var _ Client = (*OpenAIClient)(nil)
