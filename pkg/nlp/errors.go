package nlp

import "errors"

// Common LLM client errors
var (
	// ErrRateLimit indicates the rate limit has been exceeded
	ErrRateLimit = errors.New("rate limit exceeded. Please try again later")

	// ErrEmptyResponse indicates the LLM returned an empty response
	ErrEmptyResponse = errors.New("the LLM returned an empty response")

	// ErrProviderUnavailable indicates the completion provider is unreachable
	ErrProviderUnavailable = errors.New("completion provider unavailable")
)

// RateLimitError represents a rate limit error with optional custom message
type RateLimitError struct {
	Message string
}

func (e *RateLimitError) Error() string {
	if e.Message == "" {
		return "rate limit exceeded. Please try again later"
	}
	return e.Message
}

// Is implements errors.Is support for RateLimitError.
// This allows errors.Is(err, &RateLimitError{}) to work with wrapped errors.
func (e *RateLimitError) Is(target error) bool {
	_, ok := target.(*RateLimitError)
	return ok
}

// NewRateLimitError creates a new rate limit error with optional custom message
func NewRateLimitError(message ...string) *RateLimitError {
	err := &RateLimitError{}
	if len(message) > 0 {
		err.Message = message[0]
	}
	return err
}

// ValidationError represents malformed input. Validation errors are never
// retried and surface directly to the caller.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is implements errors.Is support for ValidationError.
func (e *ValidationError) Is(target error) bool {
	_, ok := target.(*ValidationError)
	return ok
}

// NewValidationError creates a new validation error (message is required)
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

// EmptyResponseError represents an empty response error
type EmptyResponseError struct {
	Message string
}

func (e *EmptyResponseError) Error() string {
	return e.Message
}

// Is implements errors.Is support for EmptyResponseError.
func (e *EmptyResponseError) Is(target error) bool {
	_, ok := target.(*EmptyResponseError)
	return ok
}

// NewEmptyResponseError creates a new empty response error (message is required)
func NewEmptyResponseError(message string) *EmptyResponseError {
	return &EmptyResponseError{Message: message}
}

// ProviderError wraps a provider failure that exhausted its retries.
type ProviderError struct {
	Message string
	Err     error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Is implements errors.Is support for ProviderError.
func (e *ProviderError) Is(target error) bool {
	_, ok := target.(*ProviderError)
	return ok
}
