package intelligence

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/capitalize-ai/assistant-intelligence/internal/llm"
	"github.com/capitalize-ai/assistant-intelligence/internal/model"
	"github.com/capitalize-ai/assistant-intelligence/pkg/logger"
	"github.com/capitalize-ai/assistant-intelligence/pkg/metrics"
)

// insightRecentWindow is how many trailing messages feed the insight prompt.
const insightRecentWindow = 5

// InsightBuilder projects the current pattern set into a single memory
// insight snapshot.
type InsightBuilder struct {
	llm    llm.Client
	logger *logger.Logger
}

// NewInsightBuilder creates an insight builder.
func NewInsightBuilder(client llm.Client, log *logger.Logger) *InsightBuilder {
	return &InsightBuilder{llm: client, logger: log}
}

// rawInsight is the wire shape of the structured insight response.
type rawInsight struct {
	Preferences        map[string]float64 `json:"preferences"`
	CommunicationStyle string             `json:"communication_style"`
	TopicInterests     []string           `json:"topic_interests"`
	SessionSummary     string             `json:"session_summary"`
}

// Build recomputes the insight snapshot. With no patterns it returns the
// fixed defaults; on any completion or parse failure it derives the same
// shape locally from the patterns.
func (b *InsightBuilder) Build(ctx context.Context, patterns []model.ConversationPattern, messages []model.Message) model.MemoryInsight {
	if len(patterns) == 0 {
		return model.MemoryInsight{
			Preferences:        map[string]float64{},
			CommunicationStyle: model.StyleCasual,
			TopicInterests:     nil,
			SessionSummary:     "new conversation",
		}
	}

	resp, err := b.llm.Complete(ctx, &llm.CompletionRequest{
		Variant:   llm.VariantLite,
		Operation: "insight_summary",
		Prompt:    b.buildPrompt(patterns, messages),
		MaxTokens: 512,
	})
	if err != nil {
		metrics.RecordFallback("insight", "completion_error")
		b.logger.Warn("insight call failed", zap.Error(err))
		return localInsight(patterns)
	}

	var raw rawInsight
	if err := parseObject(resp.Content, &raw); err != nil {
		metrics.RecordFallback("insight", "parse_error")
		b.logger.Warn("insight response unparseable", zap.Error(err))
		return localInsight(patterns)
	}

	style := model.Style(raw.CommunicationStyle)
	if !style.IsValid() {
		style = model.StyleCasual
	}

	prefs := raw.Preferences
	if prefs == nil {
		prefs = map[string]float64{}
	}
	for k, v := range prefs {
		prefs[k] = clamp01(v)
	}

	summary := raw.SessionSummary
	if summary == "" {
		summary = sessionSummary(patterns)
	}

	return model.MemoryInsight{
		Preferences:        prefs,
		CommunicationStyle: style,
		TopicInterests:     raw.TopicInterests,
		IntentSequences:    intentSequences(patterns),
		SessionSummary:     summary,
	}
}

func (b *InsightBuilder) buildPrompt(patterns []model.ConversationPattern, messages []model.Message) string {
	var sb strings.Builder
	sb.WriteString("Summarize what we know about this user from the observed patterns and recent messages.\n\nPatterns:\n")
	for _, p := range patterns {
		fmt.Fprintf(&sb, "- [%s] %s (confidence %.2f, seen %d times)\n", p.Type, p.Pattern, p.Confidence, p.Occurrences)
	}

	recent := messages
	if len(recent) > insightRecentWindow {
		recent = recent[len(recent)-insightRecentWindow:]
	}
	sb.WriteString("\nRecent messages:\n")
	for _, msg := range recent {
		fmt.Fprintf(&sb, "%s: %s\n", msg.Role, truncate(msg.Content, 150))
	}

	sb.WriteString(`
Respond with ONLY a JSON object:
{
  "preferences": {"name": 0.0-1.0},
  "communication_style": "direct|casual|detailed|creative|technical|formal",
  "topic_interests": ["topic"],
  "session_summary": "one sentence"
}`)
	return sb.String()
}

// localInsight derives the insight shape from patterns alone.
func localInsight(patterns []model.ConversationPattern) model.MemoryInsight {
	prefs := map[string]float64{}
	var interests []string
	for _, p := range patterns {
		switch p.Type {
		case model.PatternPreference:
			prefs[p.Pattern] = clamp01(p.Confidence)
		case model.PatternDomainInterest:
			interests = append(interests, p.Pattern)
		}
	}

	return model.MemoryInsight{
		Preferences:        prefs,
		CommunicationStyle: model.StyleCasual,
		TopicInterests:     interests,
		IntentSequences:    intentSequences(patterns),
		SessionSummary:     sessionSummary(patterns),
	}
}

func intentSequences(patterns []model.ConversationPattern) []model.IntentFrequency {
	var out []model.IntentFrequency
	for _, p := range patterns {
		if p.Type == model.PatternIntentSequence {
			out = append(out, model.IntentFrequency{Sequence: p.Pattern, Frequency: p.Occurrences})
		}
	}
	return out
}

func sessionSummary(patterns []model.ConversationPattern) string {
	return fmt.Sprintf("ongoing conversation with %d observed patterns", len(patterns))
}
