package nlp_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/biograph/pkg/nlp"
	"github.com/soundprediction/biograph/pkg/types"
)

// flakyClient fails a configured number of times before succeeding.
type flakyClient struct {
	failures int
	err      error
	calls    int
}

func (f *flakyClient) Chat(_ context.Context, _ []types.Message) (*types.Response, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, f.err
	}
	return &types.Response{Content: "ok"}, nil
}

func (f *flakyClient) Close() error { return nil }

func fastRetryConfig(maxAttempts int) *nlp.RetryConfig {
	return &nlp.RetryConfig{
		MaxAttempts: maxAttempts,
		BaseDelay:   time.Millisecond,
		MaxDelay:    5 * time.Millisecond,
	}
}

func TestRetryClientSucceedsAfterTransientFailure(t *testing.T) {
	inner := &flakyClient{failures: 2, err: nlp.NewRateLimitError()}
	client := nlp.NewRetryClient(inner, fastRetryConfig(3))

	resp, err := client.Chat(context.Background(), []types.Message{nlp.NewUserMessage("hi")})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Content)
	assert.Equal(t, 3, inner.calls)
}

func TestRetryClientExhaustsAttempts(t *testing.T) {
	inner := &flakyClient{failures: 10, err: nlp.NewRateLimitError()}
	client := nlp.NewRetryClient(inner, fastRetryConfig(3))

	_, err := client.Chat(context.Background(), []types.Message{nlp.NewUserMessage("hi")})
	require.Error(t, err)
	assert.Equal(t, 3, inner.calls, "attempts must stop at the configured ceiling")

	var provErr *nlp.ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.ErrorIs(t, err, &nlp.RateLimitError{})
}

func TestRetryClientReportsRateLimitOnSentinel(t *testing.T) {
	inner := &flakyClient{failures: 10, err: nlp.ErrRateLimit}
	client := nlp.NewRetryClient(inner, fastRetryConfig(3))

	_, err := client.Chat(context.Background(), []types.Message{nlp.NewUserMessage("hi")})
	require.Error(t, err)
	assert.Equal(t, 3, inner.calls)
	assert.ErrorIs(t, err, nlp.ErrRateLimit)
	assert.Contains(t, err.Error(), "rate limited after 3 attempts")
}

func TestRetryClientDoesNotRetryValidationErrors(t *testing.T) {
	inner := &flakyClient{failures: 10, err: nlp.NewValidationError("bad prompt")}
	client := nlp.NewRetryClient(inner, fastRetryConfig(3))

	_, err := client.Chat(context.Background(), []types.Message{nlp.NewUserMessage("hi")})
	require.Error(t, err)
	assert.Equal(t, 1, inner.calls, "validation errors must fail immediately")
	assert.ErrorIs(t, err, &nlp.ValidationError{})
}

func TestRetryClientHonorsContextDuringBackoff(t *testing.T) {
	inner := &flakyClient{failures: 10, err: nlp.NewRateLimitError()}
	client := nlp.NewRetryClient(inner, &nlp.RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   time.Minute,
		MaxDelay:    time.Minute,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := client.Chat(ctx, []types.Message{nlp.NewUserMessage("hi")})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, inner.calls)
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"rate limit struct", nlp.NewRateLimitError(), true},
		{"rate limit sentinel", nlp.ErrRateLimit, true},
		{"provider unavailable", nlp.ErrProviderUnavailable, true},
		{"wrapped provider unavailable", errors.Join(errors.New("call failed"), nlp.ErrProviderUnavailable), true},
		{"validation", nlp.NewValidationError("bad input"), false},
		{"arbitrary error", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, nlp.IsRetryable(tt.err))
		})
	}
}
