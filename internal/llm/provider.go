// Package llm provides a small client interface over hosted text-generation
// APIs. The sentiment classifier and the report summarizer both talk to the
// model through it.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Provider names.
const (
	ProviderGemini = "gemini"
)

// Common errors returned by LLM providers.
var (
	ErrNoAPIKey       = errors.New("llm: API key not configured")
	ErrRateLimit      = errors.New("llm: rate limit exceeded")
	ErrProviderDown   = errors.New("llm: provider unavailable")
	ErrInvalidModel   = errors.New("llm: invalid model")
	ErrEmptyResponse  = errors.New("llm: empty response")
	ErrContentBlocked = errors.New("llm: content blocked")
)

// Role represents the role of a message sender.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// FinishReason indicates why the model stopped generating.
type FinishReason string

const (
	FinishStop   FinishReason = "stop"
	FinishLength FinishReason = "length"
	FinishSafety FinishReason = "safety"
)

// Message represents a single message in a conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Response represents a complete response from the LLM.
type Response struct {
	Content      string        `json:"content"`
	FinishReason FinishReason  `json:"finish_reason"`
	Usage        Usage         `json:"usage"`
	Model        string        `json:"model"`
	Provider     string        `json:"provider"`
	Latency      time.Duration `json:"latency"`
}

// Usage tracks token consumption for a request.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatOptions configures a single chat request.
type ChatOptions struct {
	Model       string   `json:"model,omitempty"`
	Temperature float64  `json:"temperature,omitempty"`
	MaxTokens   int      `json:"max_tokens,omitempty"`
	Stop        []string `json:"stop,omitempty"`
}

// LLMProvider is the interface every text-generation backend implements.
type LLMProvider interface {
	// Name returns the provider identifier (e.g., "gemini").
	Name() string

	// Chat sends a conversation and returns a complete response.
	Chat(ctx context.Context, messages []Message, opts *ChatOptions) (*Response, error)

	// Ping checks if the provider is reachable and the API key is valid.
	Ping(ctx context.Context) error
}

// NewMessage creates a message with the given role and content.
func NewMessage(role Role, content string) Message {
	return Message{Role: role, Content: content}
}

// SystemMessage creates a system prompt message.
func SystemMessage(content string) Message {
	return NewMessage(RoleSystem, content)
}

// UserMessage creates a user message.
func UserMessage(content string) Message {
	return NewMessage(RoleUser, content)
}

// Prompt sends a single user turn and returns the text reply.
// An empty reply is reported as ErrEmptyResponse.
func Prompt(ctx context.Context, p LLMProvider, prompt string, opts *ChatOptions) (string, error) {
	resp, err := p.Chat(ctx, []Message{UserMessage(prompt)}, opts)
	if err != nil {
		return "", err
	}
	if resp.Content == "" {
		if resp.FinishReason == FinishSafety {
			return "", ErrContentBlocked
		}
		return "", ErrEmptyResponse
	}
	return resp.Content, nil
}

// String returns a human-readable summary of the response.
func (r *Response) String() string {
	truncated := r.Content
	if len(truncated) > 100 {
		truncated = truncated[:100] + "..."
	}
	return fmt.Sprintf("[%s/%s] %q, %d tokens, %v",
		r.Provider, r.Model, truncated, r.Usage.TotalTokens, r.Latency.Round(time.Millisecond))
}
