// Package prompt builds operation-specific prompts, trims conversation
// history to a bounded window, and routes between the two model variants.
package prompt

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/capitalize-ai/assistant-intelligence/internal/llm"
	"github.com/capitalize-ai/assistant-intelligence/internal/model"
)

// Operation is the kind of completion call a prompt is built for.
type Operation string

const (
	OpIntentClassification Operation = "intent_classification"
	OpPatternAnalysis      Operation = "pattern_analysis"
	OpResponseGeneration   Operation = "response_generation"
)

// Per-operation character caps for embedded message content.
const (
	intentContentCap   = 100
	patternContentCap  = 150
	responseContentCap = 200
)

const (
	// defaultHistoryWindow is the number of trailing messages retained when
	// no window is configured.
	defaultHistoryWindow = 5

	// maxImportantEarlier bounds how many high-importance earlier messages
	// survive trimming.
	maxImportantEarlier = 2

	// complexityLow is the routing threshold below which the lite variant
	// is eligible.
	complexityLow = 0.5
)

// importanceKeywords marks earlier messages worth keeping past the window.
var importanceKeywords = []string{
	"important", "remember", "always", "never", "must", "critical", "requirement",
}

// Optimizer trims history, builds prompts and selects model variants.
type Optimizer struct {
	primaryRate float64
	liteRate    float64
	window      int
}

// NewOptimizer creates an optimizer with per-variant dollar rates per 1K
// tokens and a history window size. A window of zero or less uses the
// default.
func NewOptimizer(primaryRate, liteRate float64, window int) *Optimizer {
	if window <= 0 {
		window = defaultHistoryWindow
	}
	return &Optimizer{primaryRate: primaryRate, liteRate: liteRate, window: window}
}

// OptimizeHistory returns a bounded message window and the estimated token
// savings. A history at or under the window passes through unchanged with
// zero savings.
func (o *Optimizer) OptimizeHistory(messages []model.Message) ([]model.Message, int) {
	if len(messages) <= o.window {
		return messages, 0
	}

	tail := messages[len(messages)-o.window:]
	earlier := messages[:len(messages)-o.window]

	var kept []model.Message
	for _, msg := range earlier {
		if len(kept) == maxImportantEarlier {
			break
		}
		if isImportant(msg) {
			kept = append(kept, msg)
		}
	}

	optimized := append(kept, tail...)

	saved := (totalChars(messages) - totalChars(optimized)) / 4
	if saved < 0 {
		saved = 0
	}
	return optimized, saved
}

func isImportant(msg model.Message) bool {
	if msg.IsImage {
		return true
	}
	if msg.Confidence > 0.8 {
		return true
	}
	lower := strings.ToLower(msg.Content)
	for _, kw := range importanceKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func totalChars(messages []model.Message) int {
	n := 0
	for _, m := range messages {
		n += len(m.Content)
	}
	return n
}

// BuildIntentPrompt builds the intent classification prompt.
func (o *Optimizer) BuildIntentPrompt(input string) string {
	return fmt.Sprintf(`Classify the intent of this user message as exactly one word from: text, image, clarify, contextual_reasoning.

Message: %s

Respond with only the single intent word.`, capContent(input, intentContentCap))
}

// BuildPatternPrompt builds the pattern analysis prompt with a strict JSON
// array response contract.
func (o *Optimizer) BuildPatternPrompt(messages []model.Message) string {
	var sb strings.Builder
	sb.WriteString(`Analyze this conversation and extract recurring user behavior patterns.

Conversation:
`)
	for _, msg := range messages {
		fmt.Fprintf(&sb, "%s: %s\n", msg.Role, capContent(msg.Content, patternContentCap))
	}
	sb.WriteString(`
Respond with a JSON array of at most 5 patterns:
[
  {
    "type": "preference|communication_style|domain_interest|intent_sequence",
    "pattern": "one-line description",
    "confidence": 0.0-1.0,
    "examples": ["supporting quote"]
  }
]

Only use the four listed type values. Return ONLY the JSON array, no markdown fences or other text.`)
	return sb.String()
}

// BuildResponsePrompt builds the response generation prompt from the input,
// style guidance, contextual notes and the optimized recent history.
func (o *Optimizer) BuildResponsePrompt(input, styleGuidance string, notes []string, recent []model.Message) string {
	var sb strings.Builder
	sb.WriteString("You are a helpful assistant.\n")
	if styleGuidance != "" {
		fmt.Fprintf(&sb, "Respond in a %s manner.\n", styleGuidance)
	}
	for _, note := range notes {
		fmt.Fprintf(&sb, "Note: %s\n", note)
	}
	if len(recent) > 0 {
		sb.WriteString("\nRecent conversation:\n")
		for _, msg := range recent {
			fmt.Fprintf(&sb, "%s: %s\n", msg.Role, capContent(msg.Content, responseContentCap))
		}
	}
	fmt.Fprintf(&sb, "\nUser: %s\nAssistant:", capContent(input, responseContentCap))
	return sb.String()
}

// SelectModel routes an operation to a model variant. The rule table is
// deterministic: cheap routing for low-complexity intent classification and
// short low-complexity contexts, the primary variant for everything else.
func (o *Optimizer) SelectModel(op Operation, complexity float64, contextLen int) llm.Variant {
	if op == OpIntentClassification && complexity < complexityLow {
		return llm.VariantLite
	}
	if contextLen <= 3 && complexity < complexityLow {
		return llm.VariantLite
	}
	return llm.VariantPrimary
}

// EstimateTokens estimates the token count of a character length.
func EstimateTokens(chars int) int {
	return chars / 4
}

// EstimateCost returns the dollar cost for a token count on a variant.
func (o *Optimizer) EstimateCost(variant llm.Variant, tokens int) float64 {
	rate := o.primaryRate
	if variant == llm.VariantLite {
		rate = o.liteRate
	}
	return float64(tokens) / 1000 * rate
}

// capContent truncates s to at most max bytes without splitting a rune.
func capContent(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
