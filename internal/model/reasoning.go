package model

// ConversationFlow classifies how the current input relates to the history.
type ConversationFlow string

const (
	FlowClarificationNeeded ConversationFlow = "clarification_needed"
	FlowContinuation        ConversationFlow = "continuation"
	FlowTopicShift          ConversationFlow = "topic_shift"
)

// ActionType is the response strategy chosen by the contextual reasoner.
type ActionType string

const (
	ActionText      ActionType = "text"
	ActionImage     ActionType = "image"
	ActionClarify   ActionType = "clarify"
	ActionReasoning ActionType = "contextual_reasoning"
)

// ConversationContext is the coarse classification of the conversation at
// the current turn.
type ConversationContext struct {
	Topic      string           `json:"topic"`
	Sentiment  string           `json:"sentiment"`
	Complexity float64          `json:"complexity"`
	Flow       ConversationFlow `json:"flow"`
}

// ContextualReasoning is the inference record for one turn: what the user
// likely means, what they will need next, and how to respond.
type ContextualReasoning struct {
	Context          ConversationContext   `json:"context"`
	RelevantPatterns []ConversationPattern `json:"relevant_patterns,omitempty"`
	IntentHypotheses []string              `json:"intent_hypotheses,omitempty"`
	PredictedNeeds   []string              `json:"predicted_needs,omitempty"`
	Action           ActionType            `json:"action"`
	Response         string                `json:"response"`
	Confidence       float64               `json:"confidence"`
}
