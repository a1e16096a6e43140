package nlp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/soundprediction/biograph/pkg/types"
)

// OpenAIClient implements the Client interface for OpenAI's language models.
// Supports OpenAI-compatible services through custom BaseURL configuration.
type OpenAIClient struct {
	client *openai.Client
	config Config
}

// NewOpenAIClient creates a new OpenAI client.
func NewOpenAIClient(apiKey string, config Config) (*OpenAIClient, error) {
	var client *openai.Client

	if config.BaseURL != "" {
		if err := validateBaseURL(config.BaseURL); err != nil {
			return nil, fmt.Errorf("invalid base URL: %w", err)
		}

		// Some OpenAI-compatible services don't require authentication.
		if apiKey == "" {
			apiKey = "dummy-key"
		}

		clientConfig := openai.DefaultConfig(apiKey)
		clientConfig.BaseURL = config.BaseURL
		if !hasAPIPath(config.BaseURL) {
			clientConfig.BaseURL = config.BaseURL + "/v1"
		}
		client = openai.NewClientWithConfig(clientConfig)
	} else {
		client = openai.NewClient(apiKey)
	}

	if config.Model == "" {
		config.Model = openai.GPT4oMini
	}
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = DefaultRequestTimeout
	}

	return &OpenAIClient{
		client: client,
		config: config,
	}, nil
}

// Chat sends a chat completion request. The request never carries tool or
// function-calling parameters.
func (c *OpenAIClient) Chat(ctx context.Context, messages []types.Message) (*types.Response, error) {
	if len(messages) == 0 {
		return nil, NewValidationError("messages cannot be empty")
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.RequestTimeout)
	defer cancel()

	req := c.buildChatRequest(messages)

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, classifyError(err)
	}

	if len(resp.Choices) == 0 {
		return nil, NewEmptyResponseError("no choices returned from openai")
	}

	choice := resp.Choices[0]
	response := &types.Response{
		Content:      choice.Message.Content,
		FinishReason: string(choice.FinishReason),
		Model:        resp.Model,
	}

	// Some OpenAI-compatible services don't report usage.
	if resp.Usage.TotalTokens > 0 {
		response.TokensUsed = &types.TokenUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		}
	}

	return response, nil
}

// Close cleans up resources (no-op for OpenAI client).
func (c *OpenAIClient) Close() error {
	return nil
}

func (c *OpenAIClient) buildChatRequest(messages []types.Message) openai.ChatCompletionRequest {
	openaiMessages := make([]openai.ChatCompletionMessage, len(messages))
	for i, msg := range messages {
		openaiMessages[i] = openai.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		}
	}

	req := openai.ChatCompletionRequest{
		Model:    c.config.Model,
		Messages: openaiMessages,
	}
	if c.config.Temperature != nil {
		req.Temperature = *c.config.Temperature
	}
	if c.config.MaxTokens != nil {
		req.MaxTokens = *c.config.MaxTokens
	}
	return req
}

// classifyError maps provider failures onto the package error taxonomy so the
// retry layer can decide what is retryable.
func classifyError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == http.StatusTooManyRequests:
			return NewRateLimitError(apiErr.Message)
		case apiErr.HTTPStatusCode >= 500:
			return fmt.Errorf("%w: %s", ErrProviderUnavailable, apiErr.Message)
		case apiErr.HTTPStatusCode == http.StatusBadRequest ||
			apiErr.HTTPStatusCode == http.StatusUnprocessableEntity:
			return NewValidationError(apiErr.Message)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	return fmt.Errorf("openai chat completion failed: %w", err)
}

// validateBaseURL validates the base URL format.
func validateBaseURL(baseURL string) error {
	if baseURL == "" {
		return fmt.Errorf("baseURL cannot be empty")
	}
	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("invalid baseURL format: %w", err)
	}
	if parsedURL.Scheme == "" {
		return fmt.Errorf("baseURL must include scheme (http:// or https://)")
	}
	return nil
}

// hasAPIPath reports whether the base URL already names an API version path.
func hasAPIPath(baseURL string) bool {
	return strings.Contains(baseURL, "/v1") || strings.Contains(baseURL, "/api")
}

var _ Client = (*OpenAIClient)(nil)
