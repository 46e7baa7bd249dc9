// Package llm provides LLM client interfaces and implementations.
package llm

import (
	"context"
)

// Variant distinguishes the two fixed model tiers. The prompt optimizer
// selects a variant; each provider maps it to a concrete model name.
type Variant string

const (
	VariantPrimary Variant = "primary"
	VariantLite    Variant = "lite"
)

// ChatMessage represents a chat message for LLM.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest represents a completion request. Operation labels the
// call for metrics and carries no provider semantics.
type CompletionRequest struct {
	Variant     Variant
	Operation   string
	Prompt      string
	History     []ChatMessage
	MaxTokens   int
	Temperature float64
}

// CompletionResponse represents a completion response.
type CompletionResponse struct {
	Content    string
	Model      string
	TokensIn   int
	TokensOut  int
	StopReason string
	LatencyMs  int64
}

// Client is the interface for LLM providers. All calls are synchronous: the
// pipeline awaits, parses and logs every completion before responding.
type Client interface {
	// Complete sends a completion request and returns the response.
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)

	// Name returns the provider name.
	Name() string

	// ModelFor returns the concrete model name for a variant.
	ModelFor(v Variant) string
}

// Provider is the type of LLM provider.
type Provider string

const (
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
)

// Models holds the concrete model names for the two variants. Zero values
// fall back to provider defaults.
type Models struct {
	Primary string
	Lite    string
}

// NewClient creates a new LLM client based on provider.
func NewClient(provider Provider, apiKey string, models Models) (Client, error) {
	switch provider {
	case ProviderOpenAI:
		return NewOpenAIClient(apiKey, models)
	default:
		return NewAnthropicClient(apiKey, models)
	}
}
