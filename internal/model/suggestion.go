package model

// ConversationState is a coarse phase label for where the current turn falls.
type ConversationState string

const (
	StateBeginning  ConversationState = "beginning"
	StateDeveloping ConversationState = "developing"
	StateDeepDive   ConversationState = "deep_dive"
	StateConclusion ConversationState = "conclusion"
	StateTransition ConversationState = "transition"
)

// SuggestionType classifies a workflow suggestion.
type SuggestionType string

const (
	SuggestionExploration  SuggestionType = "exploration"
	SuggestionContinuation SuggestionType = "continuation"
	SuggestionDeepDive     SuggestionType = "deep_dive"
	SuggestionWorkflow     SuggestionType = "workflow"
	SuggestionSummary      SuggestionType = "summary"
)

// Priority ranks suggestions; high sorts before medium before low.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Rank returns the sort weight for a priority. Unknown priorities sort last.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	}
	return 3
}

// WorkflowSuggestion is one "what to do next" recommendation.
type WorkflowSuggestion struct {
	Type        SuggestionType `json:"type"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Prompt      string         `json:"prompt,omitempty"`
	Priority    Priority       `json:"priority"`
	Confidence  float64        `json:"confidence"`
}

// WorkflowResult bundles the suggester output for one turn.
type WorkflowResult struct {
	Suggestions     []WorkflowSuggestion `json:"suggestions"`
	State           ConversationState    `json:"state"`
	NextBestActions []string             `json:"next_best_actions"`
}
