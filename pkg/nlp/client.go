package nlp

import (
	"context"
	"time"

	"github.com/soundprediction/biograph/pkg/types"
)

// Client defines the interface for language model completions. The interface
// deliberately carries no tool or function-calling parameters: answer
// synthesis requires that the provider is never handed tools.
type Client interface {
	// Chat sends a chat completion request and returns the response.
	Chat(ctx context.Context, messages []types.Message) (*types.Response, error)

	// Close cleans up any resources.
	Close() error
}

// DefaultRequestTimeout bounds a single completion call.
const DefaultRequestTimeout = 10 * time.Second

// Config holds configuration for LLM clients.
type Config struct {
	Model          string        `json:"model"`
	Temperature    *float32      `json:"temperature,omitempty"`
	MaxTokens      *int          `json:"max_tokens,omitempty"`
	BaseURL        string        `json:"base_url,omitempty"` // Custom base URL for OpenAI-compatible services
	RequestTimeout time.Duration `json:"request_timeout,omitempty"`
}

// NewMessage creates a new message with the specified role and content.
func NewMessage(role types.Role, content string) types.Message {
	return types.Message{
		Role:    role,
		Content: content,
	}
}

// NewSystemMessage creates a new system message.
func NewSystemMessage(content string) types.Message {
	return NewMessage(types.RoleSystem, content)
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) types.Message {
	return NewMessage(types.RoleUser, content)
}

// NewAssistantMessage creates a new assistant message.
func NewAssistantMessage(content string) types.Message {
	return NewMessage(types.RoleAssistant, content)
}
