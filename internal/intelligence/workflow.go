package intelligence

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/capitalize-ai/assistant-intelligence/internal/llm"
	"github.com/capitalize-ai/assistant-intelligence/internal/model"
	"github.com/capitalize-ai/assistant-intelligence/pkg/logger"
	"github.com/capitalize-ai/assistant-intelligence/pkg/metrics"
)

const (
	// maxSuggestions caps the final ranked list.
	maxSuggestions = 5

	// suggestionConfidenceFloor filters weak suggestions after boosting.
	suggestionConfidenceFloor = 0.3

	// patternSuggestionThreshold gates per-pattern suggestion generation.
	patternSuggestionThreshold = 0.5

	// stateBoost is added when a suggestion's type matches the conversation
	// state.
	stateBoost = 0.15
)

var (
	conclusionKeywords  = []string{"thanks", "thank you", "perfect", "that's all", "goodbye", "done"}
	transitionKeywords  = []string{"next", "now", "instead", "switch", "another", "different topic"}
	elaborationKeywords = []string{"more", "deeper", "detail", "elaborate", "why", "expand"}
)

// conversationStarters are the fixed suggestions for a brand-new session.
var conversationStarters = []model.WorkflowSuggestion{
	{Type: model.SuggestionExploration, Title: "Ask a question", Description: "Start with anything you're curious about", Priority: model.PriorityMedium, Confidence: 0.8},
	{Type: model.SuggestionExploration, Title: "Generate an image", Description: "Describe a scene and get a picture", Priority: model.PriorityMedium, Confidence: 0.7},
	{Type: model.SuggestionExploration, Title: "Get help with code", Description: "Paste a snippet or describe a bug", Priority: model.PriorityMedium, Confidence: 0.6},
}

// incompleteWorkflowRules fire when the trigger keyword appears without its
// completion keyword anywhere in the conversation.
var incompleteWorkflowRules = []struct {
	trigger    string
	completion string
	suggestion model.WorkflowSuggestion
}{
	{
		trigger: "function", completion: "test",
		suggestion: model.WorkflowSuggestion{
			Type: model.SuggestionWorkflow, Title: "Add tests",
			Description: "You discussed a function without tests", Priority: model.PriorityHigh, Confidence: 0.7,
		},
	},
	{
		trigger: "draft", completion: "review",
		suggestion: model.WorkflowSuggestion{
			Type: model.SuggestionWorkflow, Title: "Review the draft",
			Description: "A draft was written but not reviewed", Priority: model.PriorityMedium, Confidence: 0.6,
		},
	},
	{
		trigger: "deploy", completion: "monitor",
		suggestion: model.WorkflowSuggestion{
			Type: model.SuggestionWorkflow, Title: "Set up monitoring",
			Description: "Deployment was discussed without monitoring", Priority: model.PriorityMedium, Confidence: 0.6,
		},
	},
}

// stateTypeAffinity maps each conversation state to the suggestion type it
// boosts.
var stateTypeAffinity = map[model.ConversationState]model.SuggestionType{
	model.StateBeginning:  model.SuggestionExploration,
	model.StateDeveloping: model.SuggestionContinuation,
	model.StateDeepDive:   model.SuggestionDeepDive,
	model.StateConclusion: model.SuggestionSummary,
	model.StateTransition: model.SuggestionExploration,
}

// nextActionsByState are the fixed next-best-action strings per state.
var nextActionsByState = map[model.ConversationState][]string{
	model.StateBeginning:  {"Ask your first question", "Describe what you want to make", "Share some context"},
	model.StateDeveloping: {"Continue the current thread", "Ask a follow-up question", "Request an example"},
	model.StateDeepDive:   {"Ask for more detail", "Request alternatives", "Challenge an assumption"},
	model.StateConclusion: {"Ask for a summary", "Save anything important", "Start a new topic"},
	model.StateTransition: {"Name the new topic", "Link it to what came before", "Set a goal for this thread"},
}

// WorkflowAdvisor derives ranked "what to do next" suggestions.
type WorkflowAdvisor struct {
	llm    llm.Client
	logger *logger.Logger
}

// NewWorkflowAdvisor creates a workflow advisor.
func NewWorkflowAdvisor(client llm.Client, log *logger.Logger) *WorkflowAdvisor {
	return &WorkflowAdvisor{llm: client, logger: log}
}

// Suggest aggregates suggestion sources, boosts by conversation state, and
// returns the ranked, capped result.
func (a *WorkflowAdvisor) Suggest(ctx context.Context, messages []model.Message, patterns []model.ConversationPattern, insight model.MemoryInsight) model.WorkflowResult {
	if len(messages) < 2 {
		return model.WorkflowResult{
			Suggestions:     conversationStarters,
			State:           model.StateBeginning,
			NextBestActions: nextActions(model.StateBeginning, conversationStarters),
		}
	}

	state := classifyState(messages)

	var suggestions []model.WorkflowSuggestion
	suggestions = append(suggestions, incompleteWorkflows(messages)...)
	suggestions = append(suggestions, patternSuggestions(patterns)...)
	suggestions = append(suggestions, a.contextualSuggestions(ctx, messages)...)
	suggestions = append(suggestions, explorationSuggestions(insight)...)

	ranked := rankSuggestions(suggestions, state)

	return model.WorkflowResult{
		Suggestions:     ranked,
		State:           state,
		NextBestActions: nextActions(state, ranked),
	}
}

// classifyState derives the coarse phase from message count and keyword
// presence in the last three user messages.
func classifyState(messages []model.Message) model.ConversationState {
	var lastUser []string
	for i := len(messages) - 1; i >= 0 && len(lastUser) < 3; i-- {
		if messages[i].Role == model.RoleUser {
			lastUser = append(lastUser, messages[i].Content)
		}
	}
	window := strings.ToLower(strings.Join(lastUser, " "))

	switch {
	case containsAny(window, conclusionKeywords):
		return model.StateConclusion
	case containsAny(window, transitionKeywords):
		return model.StateTransition
	case containsAny(window, elaborationKeywords):
		return model.StateDeepDive
	case len(messages) <= 2:
		return model.StateBeginning
	default:
		return model.StateDeveloping
	}
}

func incompleteWorkflows(messages []model.Message) []model.WorkflowSuggestion {
	var all strings.Builder
	for _, m := range messages {
		all.WriteString(strings.ToLower(m.Content))
		all.WriteByte(' ')
	}
	text := all.String()

	var out []model.WorkflowSuggestion
	for _, rule := range incompleteWorkflowRules {
		if strings.Contains(text, rule.trigger) && !strings.Contains(text, rule.completion) {
			out = append(out, rule.suggestion)
		}
	}
	return out
}

// patternSuggestions emits up to three suggestions per high-confidence
// pattern, specialized by pattern type.
func patternSuggestions(patterns []model.ConversationPattern) []model.WorkflowSuggestion {
	var out []model.WorkflowSuggestion
	for _, p := range patterns {
		if p.Confidence <= patternSuggestionThreshold {
			continue
		}
		switch p.Type {
		case model.PatternPreference:
			out = append(out, model.WorkflowSuggestion{
				Type:       model.SuggestionContinuation,
				Title:      fmt.Sprintf("More of what you like: %s", p.Pattern),
				Priority:   model.PriorityMedium,
				Confidence: p.Confidence,
			})
		case model.PatternDomainInterest:
			out = append(out, model.WorkflowSuggestion{
				Type:       model.SuggestionDeepDive,
				Title:      fmt.Sprintf("Go deeper on %s", p.Pattern),
				Priority:   model.PriorityMedium,
				Confidence: p.Confidence,
			})
		case model.PatternIntentSequence:
			out = append(out, model.WorkflowSuggestion{
				Type:       model.SuggestionWorkflow,
				Title:      fmt.Sprintf("Repeat your usual flow: %s", p.Pattern),
				Priority:   model.PriorityLow,
				Confidence: p.Confidence,
			})
		case model.PatternCommunicationStyle:
			// Style patterns shape responses, not next steps.
		}
	}
	return out
}

// rawSuggestion is the wire shape of one model-generated follow-up.
type rawSuggestion struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Prompt      string  `json:"prompt"`
	Priority    string  `json:"priority"`
	Confidence  float64 `json:"confidence"`
}

// contextualSuggestions asks the completion capability for two or three
// follow-ups. Any failure silently produces none.
func (a *WorkflowAdvisor) contextualSuggestions(ctx context.Context, messages []model.Message) []model.WorkflowSuggestion {
	var sb strings.Builder
	sb.WriteString("Given this conversation, suggest 2-3 useful follow-ups.\n\n")
	recent := messages
	if len(recent) > 5 {
		recent = recent[len(recent)-5:]
	}
	for _, msg := range recent {
		fmt.Fprintf(&sb, "%s: %s\n", msg.Role, truncate(msg.Content, 150))
	}
	sb.WriteString(`
Respond with ONLY a JSON object:
{"suggestions": [{"title": "...", "description": "...", "prompt": "...", "priority": "high|medium|low", "confidence": 0.0-1.0}]}`)

	resp, err := a.llm.Complete(ctx, &llm.CompletionRequest{
		Variant:   llm.VariantLite,
		Operation: "workflow_suggestions",
		Prompt:    sb.String(),
		MaxTokens: 512,
	})
	if err != nil {
		metrics.RecordFallback("workflow", "completion_error")
		a.logger.Warn("contextual suggestion call failed", zap.Error(err))
		return nil
	}

	var parsed struct {
		Suggestions []rawSuggestion `json:"suggestions"`
	}
	if err := parseObject(resp.Content, &parsed); err != nil {
		metrics.RecordFallback("workflow", "parse_error")
		return nil
	}

	var out []model.WorkflowSuggestion
	for _, s := range parsed.Suggestions {
		if len(out) == 3 {
			break
		}
		priority := model.Priority(s.Priority)
		if priority.Rank() == 3 {
			priority = model.PriorityMedium
		}
		out = append(out, model.WorkflowSuggestion{
			Type:        model.SuggestionContinuation,
			Title:       s.Title,
			Description: s.Description,
			Prompt:      s.Prompt,
			Priority:    priority,
			Confidence:  clamp01(s.Confidence),
		})
	}
	return out
}

// explorationSuggestions seeds static suggestions from the top two topic
// interests.
func explorationSuggestions(insight model.MemoryInsight) []model.WorkflowSuggestion {
	interests := insight.TopicInterests
	if len(interests) > 2 {
		interests = interests[:2]
	}
	var out []model.WorkflowSuggestion
	for _, topic := range interests {
		out = append(out, model.WorkflowSuggestion{
			Type:       model.SuggestionExploration,
			Title:      fmt.Sprintf("Explore a new angle on %s", topic),
			Priority:   model.PriorityLow,
			Confidence: 0.5,
		})
	}
	return out
}

// rankSuggestions boosts by state affinity, sorts by priority then boosted
// confidence, filters weak entries and caps the list.
func rankSuggestions(suggestions []model.WorkflowSuggestion, state model.ConversationState) []model.WorkflowSuggestion {
	affinity := stateTypeAffinity[state]
	for i := range suggestions {
		if suggestions[i].Type == affinity {
			suggestions[i].Confidence = clamp01(suggestions[i].Confidence + stateBoost)
		}
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		if suggestions[i].Priority.Rank() != suggestions[j].Priority.Rank() {
			return suggestions[i].Priority.Rank() < suggestions[j].Priority.Rank()
		}
		return suggestions[i].Confidence > suggestions[j].Confidence
	})

	var out []model.WorkflowSuggestion
	for _, s := range suggestions {
		if s.Confidence <= suggestionConfidenceFloor {
			continue
		}
		out = append(out, s)
		if len(out) == maxSuggestions {
			break
		}
	}
	return out
}

func nextActions(state model.ConversationState, ranked []model.WorkflowSuggestion) []string {
	var actions []string
	if len(ranked) > 0 {
		actions = append(actions, ranked[0].Title)
	}
	fixed := nextActionsByState[state]
	if len(fixed) > 3 {
		fixed = fixed[:3]
	}
	return append(actions, fixed...)
}
