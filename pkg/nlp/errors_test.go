package nlp_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/soundprediction/biograph/pkg/nlp"
)

func TestRateLimitError(t *testing.T) {
	t.Run("default message", func(t *testing.T) {
		err := nlp.NewRateLimitError()
		assert.Equal(t, "rate limit exceeded. Please try again later", err.Error())
	})

	t.Run("custom message", func(t *testing.T) {
		err := nlp.NewRateLimitError("slow down")
		assert.Equal(t, "slow down", err.Error())
	})

	t.Run("matches through wrapping", func(t *testing.T) {
		wrapped := fmt.Errorf("call failed: %w", nlp.NewRateLimitError())
		assert.ErrorIs(t, wrapped, &nlp.RateLimitError{})
	})
}

func TestValidationError(t *testing.T) {
	err := nlp.NewValidationError("prompt too long")
	assert.Equal(t, "prompt too long", err.Error())
	assert.ErrorIs(t, fmt.Errorf("wrap: %w", err), &nlp.ValidationError{})
}

func TestEmptyResponseError(t *testing.T) {
	err := nlp.NewEmptyResponseError("no content")
	assert.Equal(t, "no content", err.Error())
	assert.ErrorIs(t, err, &nlp.EmptyResponseError{})
}

func TestProviderErrorUnwrap(t *testing.T) {
	inner := nlp.NewRateLimitError()
	err := &nlp.ProviderError{Message: "failed after 3 attempts", Err: inner}

	assert.Contains(t, err.Error(), "failed after 3 attempts")
	assert.ErrorIs(t, err, &nlp.RateLimitError{})
	assert.ErrorIs(t, err, &nlp.ProviderError{})
}

func TestCommonErrors(t *testing.T) {
	assert.Contains(t, nlp.ErrRateLimit.Error(), "rate limit")
	assert.Contains(t, nlp.ErrEmptyResponse.Error(), "empty")
	assert.Contains(t, nlp.ErrProviderUnavailable.Error(), "unavailable")
}
