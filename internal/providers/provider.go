// Package providers contains the LLM transport layer: a small client
// interface, an OpenAI-compatible implementation used for every hosted
// endpoint (Mistral La Plateforme, OpenAI, OpenRouter), a mock for tests,
// and per-client rate limiting. Retry policy is owned by the oracle layer,
// not here.
package providers

import (
	"context"
	"encoding/json"
	"time"
)

// LLMClient is the chat-completion interface the oracle layer consumes.
type LLMClient interface {
	// Chat sends one chat completion request. Implementations return the
	// result with Success=false alongside the error so callers can log
	// partial diagnostics.
	Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error)

	// Name returns the client identifier (e.g. "mistral").
	Name() string
}

// Message is a single chat message.
type Message struct {
	Role    string `json:"role"` // "system", "user", "assistant"
	Content string `json:"content"`
}

// ResponseFormat requests structured output from the model.
type ResponseFormat struct {
	// Type is "json_object" or "json_schema".
	Type string `json:"type"`
	// JSONSchema is the bare schema document, set when Type is
	// "json_schema".
	JSONSchema json.RawMessage `json:"json_schema,omitempty"`
}

// ChatRequest is one request to an LLM.
type ChatRequest struct {
	Messages []Message `json:"messages"`

	// Model overrides the client default when set.
	Model string `json:"model,omitempty"`

	Temperature float64 `json:"temperature,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`

	// Timeout bounds this single request; the client default applies when
	// zero.
	Timeout time.Duration `json:"-"`

	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`

	// RequestID tags the request through logs and traces.
	RequestID string `json:"-"`
}

// ChatResult is the complete outcome of one LLM call.
type ChatResult struct {
	Content    string          `json:"content"`
	ParsedJSON json.RawMessage `json:"parsed_json,omitempty"` // set when ResponseFormat was requested

	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`

	ExecutionTime time.Duration `json:"execution_time"`

	Provider  string `json:"provider"`
	ModelUsed string `json:"model_used"`

	RequestID string `json:"request_id"`
	Attempts  int    `json:"attempts"`

	Success      bool   `json:"success"`
	ErrorType    string `json:"error_type,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// Error type labels attached to failed ChatResults.
const (
	ErrTypeTimeout     = "timeout"
	ErrTypeCancelled   = "cancelled"
	ErrTypeRateLimited = "rate_limited"
	ErrTypeServerError = "server_error"
	ErrTypeAPIError    = "api_error"
	ErrTypeNetwork     = "network"
	ErrTypeBadResponse = "bad_response"
)
