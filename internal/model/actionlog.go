package model

import (
	"time"
)

// ActionLog is the write-once audit record of one orchestration pass. It is
// returned to the caller for transparency and never persisted.
type ActionLog struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	Input     string    `json:"input"`
	Output    string    `json:"output"`

	Model      string        `json:"model,omitempty"`
	Confidence float64       `json:"confidence"`
	Duration   time.Duration `json:"duration_ms"`

	Reasoning    *ContextualReasoning  `json:"reasoning,omitempty"`
	Insight      *MemoryInsight        `json:"insight,omitempty"`
	Patterns     []ConversationPattern `json:"patterns,omitempty"`
	Steps        []string              `json:"steps,omitempty"`
	Optimization *OptimizationRecord   `json:"optimization,omitempty"`
}

// OptimizationRecord describes the token/cost optimization applied to one
// completion call.
type OptimizationRecord struct {
	OriginalMessages  int     `json:"original_messages"`
	OptimizedMessages int     `json:"optimized_messages"`
	TokensSaved       int     `json:"tokens_saved"`
	Variant           string  `json:"variant"`
	EstimatedCost     float64 `json:"estimated_cost"`
}
