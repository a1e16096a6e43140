package synthesis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/soundprediction/biograph/pkg/nlp"
	"github.com/soundprediction/biograph/pkg/types"
)

// NoResultsAnswer is returned when retrieval produced no ranked entities.
const NoResultsAnswer = "I could not find any relevant information in the knowledge graph to answer your question."

const systemPrompt = `You are a biomedical knowledge assistant. Answer the user's question using only the knowledge graph context provided. Cite entities by name. If the context does not contain the answer, say so plainly. Do not speculate beyond the provided context.`

// Answer is the final synthesized output of one chat turn.
type Answer struct {
	Text       string         `json:"text"`
	Sources    []types.Source `json:"sources"`
	Confidence float64        `json:"confidence"`
}

// Synthesizer produces a cited natural-language answer from retrieved
// context through a single completion call.
type Synthesizer struct {
	llm    nlp.Client
	logger *slog.Logger
}

// NewSynthesizer creates an answer synthesizer. Wrap the client with
// nlp.RetryClient to get bounded retry on rate limits and transient failures.
func NewSynthesizer(llmClient nlp.Client, logger *slog.Logger) *Synthesizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Synthesizer{llm: llmClient, logger: logger}
}

// GenerateAnswer runs the generate stage over an already-retrieved and
// expanded context.
//
// When the ranked entity list is empty, it returns the fixed no-results
// answer with zero confidence and an empty source list, making zero calls to
// the completion provider. This holds for every empty-result input, not
// best-effort. Otherwise exactly one completion call is issued with a
// system/user message pair and no tool-calling capability.
func (s *Synthesizer) GenerateAnswer(ctx context.Context, query string, entities []types.RankedEntity, subgraph *types.Subgraph, convCtx *types.ConversationContext) (*Answer, error) {
	if strings.TrimSpace(query) == "" {
		return nil, types.ErrEmptyQuery
	}

	if len(entities) == 0 {
		return &Answer{
			Text:       NoResultsAnswer,
			Sources:    []types.Source{},
			Confidence: 0,
		}, nil
	}

	userPrompt := buildUserPrompt(query, entities, subgraph, convCtx)
	messages := []types.Message{
		nlp.NewSystemMessage(systemPrompt),
		nlp.NewUserMessage(userPrompt),
	}

	resp, err := s.llm.Chat(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("answer generation failed: %w", err)
	}
	if resp == nil || strings.TrimSpace(resp.Content) == "" {
		return nil, nlp.NewEmptyResponseError("completion returned no content")
	}

	names := make([]string, 0, len(entities))
	for _, entity := range entities {
		names = append(names, entity.Name)
	}
	text := EmphasizeNames(resp.Content, names)

	sources := BuildSources(entities)
	confidence := Confidence(entities, subgraph)

	s.logger.Debug("answer synthesized",
		"entities", len(entities),
		"sources", len(sources),
		"confidence", confidence,
		"model", resp.Model,
	)

	return &Answer{
		Text:       text,
		Sources:    sources,
		Confidence: confidence,
	}, nil
}
