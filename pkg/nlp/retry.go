package nlp

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/soundprediction/biograph/pkg/types"
)

// RetryConfig is an explicit bounded-retry policy value, applied uniformly by
// RetryClient rather than scattered across call sites.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts, including the first
	// (default: 3).
	MaxAttempts int
	// BaseDelay is the delay before the first retry; it doubles each attempt
	// (default: 1 second).
	BaseDelay time.Duration
	// MaxDelay caps the delay between retries (default: 30 seconds).
	MaxDelay time.Duration
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   1 * time.Second,
		MaxDelay:    30 * time.Second,
	}
}

// RetryClient wraps an LLM client and adds retry with exponential backoff.
// Only rate-limit and transient provider failures are retried; validation
// errors fail immediately. Backoff sleeps are cancellable through the
// caller's context.
type RetryClient struct {
	client Client
	config *RetryConfig
}

// NewRetryClient creates a new retry client wrapper.
func NewRetryClient(client Client, config *RetryConfig) *RetryClient {
	if config == nil {
		config = DefaultRetryConfig()
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 3
	}
	if config.BaseDelay <= 0 {
		config.BaseDelay = 1 * time.Second
	}
	if config.MaxDelay <= 0 {
		config.MaxDelay = 30 * time.Second
	}
	return &RetryClient{client: client, config: config}
}

// Chat implements the Client interface with retry logic.
func (r *RetryClient) Chat(ctx context.Context, messages []types.Message) (*types.Response, error) {
	var lastErr error

	for attempt := 0; attempt < r.config.MaxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(r.delay(attempt)):
			case <-ctx.Done():
				return nil, fmt.Errorf("context cancelled during retry backoff: %w", ctx.Err())
			}
		}

		resp, err := r.client.Chat(ctx, messages)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !IsRetryable(err) {
			return nil, err
		}
	}

	if errors.Is(lastErr, &RateLimitError{}) || errors.Is(lastErr, ErrRateLimit) {
		return nil, &ProviderError{
			Message: fmt.Sprintf("rate limited after %d attempts", r.config.MaxAttempts),
			Err:     lastErr,
		}
	}
	return nil, &ProviderError{
		Message: fmt.Sprintf("failed after %d attempts", r.config.MaxAttempts),
		Err:     lastErr,
	}
}

// Close implements the Client interface.
func (r *RetryClient) Close() error {
	return r.client.Close()
}

// delay computes the backoff before the given attempt: BaseDelay doubling
// each retry, capped at MaxDelay.
func (r *RetryClient) delay(attempt int) time.Duration {
	d := float64(r.config.BaseDelay) * math.Pow(2, float64(attempt-1))
	if d > float64(r.config.MaxDelay) {
		d = float64(r.config.MaxDelay)
	}
	return time.Duration(d)
}

// IsRetryable reports whether an error should trigger a retry. Rate limits
// and unavailable providers are retryable; validation errors and other 4xx
// failures are not.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, &ValidationError{}) {
		return false
	}
	if errors.Is(err, &RateLimitError{}) || errors.Is(err, ErrRateLimit) {
		return true
	}
	if errors.Is(err, ErrProviderUnavailable) {
		return true
	}
	return false
}

var _ Client = (*RetryClient)(nil)
