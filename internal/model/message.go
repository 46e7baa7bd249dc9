// Package model defines data structures for the assistant intelligence service.
package model

import (
	"time"
)

// Role represents the role of a message sender.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Intent classifies what a user message is asking for.
type Intent string

const (
	IntentText      Intent = "text"
	IntentImage     Intent = "image"
	IntentClarify   Intent = "clarify"
	IntentReasoning Intent = "contextual_reasoning"
)

// Message represents a conversation message. Messages are immutable once
// created and appended to the session's ordered log.
type Message struct {
	// Identity
	ID        string `json:"id"`
	SessionID string `json:"session_id"`
	TenantID  string `json:"tenant_id"`

	// Content
	Role    Role   `json:"role"`
	Content string `json:"content"`
	IsImage bool   `json:"is_image,omitempty"`

	// Pipeline metadata (assistant messages only)
	Intent      Intent   `json:"intent,omitempty"`
	Confidence  float64  `json:"confidence,omitempty"`
	Model       *string  `json:"model,omitempty"`
	TokensIn    *int     `json:"tokens_in,omitempty"`
	TokensOut   *int     `json:"tokens_out,omitempty"`
	LatencyMs   *int64   `json:"latency_ms,omitempty"`
	ActionLogID *string  `json:"action_log_id,omitempty"`

	// Timestamps
	CreatedAt time.Time `json:"created_at"`

	// JetStream metadata (populated on read)
	Sequence uint64 `json:"sequence,omitempty"`
}

// ChatRequest is the request to process a user message through the pipeline.
type ChatRequest struct {
	Content string `json:"content"`
	Model   string `json:"model,omitempty"`
}

// ChatResponse is the full bundle returned for one orchestration pass.
// Auxiliary fields are null when the pipeline degraded to its fallback.
type ChatResponse struct {
	Message           *Message              `json:"message"`
	ActionLog         *ActionLog            `json:"action_log,omitempty"`
	Patterns          []ConversationPattern `json:"patterns,omitempty"`
	Insight           *MemoryInsight        `json:"insight,omitempty"`
	Suggestions       []WorkflowSuggestion  `json:"suggestions,omitempty"`
	ConversationState ConversationState     `json:"conversation_state,omitempty"`
	NextBestActions   []string              `json:"next_best_actions,omitempty"`
}

// ListMessagesResponse is the response for listing messages.
type ListMessagesResponse struct {
	Messages     []Message `json:"messages"`
	HasMore      bool      `json:"has_more"`
	LastSequence uint64    `json:"last_sequence"`
}
