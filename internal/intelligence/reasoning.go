package intelligence

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/capitalize-ai/assistant-intelligence/internal/llm"
	"github.com/capitalize-ai/assistant-intelligence/internal/model"
	"github.com/capitalize-ai/assistant-intelligence/internal/prompt"
	"github.com/capitalize-ai/assistant-intelligence/pkg/logger"
	"github.com/capitalize-ai/assistant-intelligence/pkg/metrics"
)

const (
	// maxHypotheses bounds intent hypotheses and predicted needs.
	maxHypotheses = 3

	// reasonerConfidenceFloor / Ceiling clamp the final confidence.
	reasonerConfidenceFloor   = 0.2
	reasonerConfidenceCeiling = 0.95

	// noPatternConfidence applies when nothing relevant matched.
	noPatternConfidence = 0.4

	// clarifyLengthThreshold marks very short inputs as clarify candidates.
	clarifyLengthThreshold = 10
)

// Reasoner maps input, history and patterns to a predicted intent and a
// response strategy.
type Reasoner struct {
	llm       llm.Client
	optimizer *prompt.Optimizer
	logger    *logger.Logger
}

// NewReasoner creates a contextual reasoner.
func NewReasoner(client llm.Client, opt *prompt.Optimizer, log *logger.Logger) *Reasoner {
	return &Reasoner{llm: client, optimizer: opt, logger: log}
}

// Reason runs the per-request inference sequence. Any completion failure past
// context classification degrades to the fixed fallback record; the caller
// always receives a usable reasoning result.
func (r *Reasoner) Reason(ctx context.Context, input string, history []model.Message, patterns []model.ConversationPattern, style model.StyleResult) model.ContextualReasoning {
	convCtx := r.classifyContext(input, history)

	relevant := relevantPatterns(input, patterns)
	hypotheses := intentHypotheses(input, relevant)
	needs := predictedNeeds(history)
	action := chooseAction(input, relevant)
	confidence := reasonerConfidence(relevant, convCtx.Complexity)

	response, err := r.buildResponse(ctx, input, history, style, needs, action)
	if err != nil {
		metrics.RecordFallback("reasoner", "completion_error")
		r.logger.Warn("reasoner response call failed", zap.Error(err))
		return fallbackReasoning(input, convCtx)
	}

	return model.ContextualReasoning{
		Context:          convCtx,
		RelevantPatterns: relevant,
		IntentHypotheses: hypotheses,
		PredictedNeeds:   needs,
		Action:           action,
		Response:         response,
		Confidence:       confidence,
	}
}

// classifyContext derives the coarse conversation classification for the
// current turn.
func (r *Reasoner) classifyContext(input string, history []model.Message) model.ConversationContext {
	return model.ConversationContext{
		Topic:      dominantTopic(input, history),
		Sentiment:  "neutral",
		Complexity: clamp01(float64(len(history)) / 10),
		Flow:       classifyFlow(input, history),
	}
}

// classifyFlow labels how the input relates to the history: empty history
// needs clarification, shared vocabulary with the previous message is a
// continuation, anything else is a topic shift.
func classifyFlow(input string, history []model.Message) model.ConversationFlow {
	if len(history) == 0 {
		return model.FlowClarificationNeeded
	}
	prev := history[len(history)-1]
	if wordOverlap(prev.Content, input) {
		return model.FlowContinuation
	}
	return model.FlowTopicShift
}

// relevantPatterns filters the pattern set to those textually relevant to
// the input. Communication-style patterns are always relevant.
func relevantPatterns(input string, patterns []model.ConversationPattern) []model.ConversationPattern {
	var out []model.ConversationPattern
	for _, p := range patterns {
		if p.Type == model.PatternCommunicationStyle || wordOverlap(p.Pattern, input) {
			out = append(out, p)
		}
	}
	return out
}

func intentHypotheses(input string, relevant []model.ConversationPattern) []string {
	hypotheses := []string{input}
	for _, p := range relevant {
		if len(hypotheses) == maxHypotheses {
			break
		}
		hypotheses = append(hypotheses, fmt.Sprintf("continue with %s", p.Pattern))
	}
	return hypotheses
}

func predictedNeeds(history []model.Message) []string {
	if len(history) > 0 {
		last := history[len(history)-1]
		if last.Role == model.RoleAssistant && last.IsImage {
			return []string{
				"variations on the generated image",
				"adjustments to style or composition",
				"a caption or description for the image",
			}
		}
	}
	return []string{
		"a follow-up question on the same topic",
		"an example or concrete illustration",
	}
}

// chooseAction applies the fixed keyword rules for the response strategy.
func chooseAction(input string, relevant []model.ConversationPattern) model.ActionType {
	if containsAny(input, imageKeywords) {
		return model.ActionImage
	}
	lower := strings.ToLower(strings.TrimSpace(input))
	if len(input) < clarifyLengthThreshold || strings.HasPrefix(lower, "what") || strings.HasPrefix(lower, "how") {
		return model.ActionClarify
	}
	if len(relevant) > 0 {
		return model.ActionReasoning
	}
	return model.ActionText
}

func reasonerConfidence(relevant []model.ConversationPattern, complexity float64) float64 {
	if len(relevant) == 0 {
		return noPatternConfidence
	}
	var sum float64
	for _, p := range relevant {
		sum += p.Confidence
	}
	confidence := sum / float64(len(relevant))
	if complexity > 0.5 {
		confidence -= 0.1
	} else {
		confidence += 0.1
	}
	if confidence < reasonerConfidenceFloor {
		return reasonerConfidenceFloor
	}
	if confidence > reasonerConfidenceCeiling {
		return reasonerConfidenceCeiling
	}
	return confidence
}

func (r *Reasoner) buildResponse(ctx context.Context, input string, history []model.Message, style model.StyleResult, needs []string, action model.ActionType) (string, error) {
	if action == model.ActionImage {
		return fmt.Sprintf("I'll create that image for you. Generating: %s", truncate(input, 100)), nil
	}

	recent, _ := r.optimizer.OptimizeHistory(history)

	notes := make([]string, 0, len(needs))
	for _, n := range needs {
		notes = append(notes, "the user may next want "+n)
	}

	resp, err := r.llm.Complete(ctx, &llm.CompletionRequest{
		Variant:   llm.VariantPrimary,
		Operation: "response_generation",
		Prompt:    r.optimizer.BuildResponsePrompt(input, string(style.Style), notes, recent),
		MaxTokens: 1024,
	})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

// fallbackReasoning is the fixed degraded record used when inference fails.
func fallbackReasoning(input string, convCtx model.ConversationContext) model.ContextualReasoning {
	confidence := 0.4
	if convCtx.Flow == model.FlowContinuation {
		confidence = 0.5
	}
	return model.ContextualReasoning{
		Context:    convCtx,
		Action:     model.ActionText,
		Response:   fmt.Sprintf("I understand you're asking about %q. Let me help you with that.", input),
		Confidence: confidence,
	}
}

// dominantTopic picks the most frequent long word across the input and
// recent history.
func dominantTopic(input string, history []model.Message) string {
	counts := make(map[string]int)
	record := func(text string) {
		for _, w := range strings.Fields(strings.ToLower(text)) {
			w = strings.Trim(w, ".,!?;:\"'()")
			if len(w) > 4 {
				counts[w]++
			}
		}
	}
	record(input)
	recent := history
	if len(recent) > 3 {
		recent = recent[len(recent)-3:]
	}
	for _, msg := range recent {
		record(msg.Content)
	}

	words := make([]string, 0, len(counts))
	for w := range counts {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if counts[words[i]] != counts[words[j]] {
			return counts[words[i]] > counts[words[j]]
		}
		return words[i] < words[j]
	})
	if len(words) == 0 {
		return "general"
	}
	return words[0]
}
