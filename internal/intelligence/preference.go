package intelligence

import (
	"fmt"
	"time"

	"github.com/capitalize-ai/assistant-intelligence/internal/model"
	"github.com/capitalize-ai/assistant-intelligence/pkg/logger"
)

const (
	// preferenceDecay is applied multiplicatively to every persisted entry
	// before merging a new analysis pass.
	preferenceDecay = 0.95

	// preferenceFloor prunes entries whose decayed strength falls below it.
	preferenceFloor = 0.1

	// styleStrengthThreshold gates response-style preference emission.
	styleStrengthThreshold = 0.3

	// contentTypeThreshold gates content-type emission (normalized hit rate).
	contentTypeThreshold = 0.2
)

// responseStyleLexicons maps a response-style label to its indicator keywords.
type responseStyleLexicon struct {
	label    string
	keywords []string
}

var responseStyleLexicons = []responseStyleLexicon{
	{label: "concise", keywords: []string{"short", "brief", "concise", "quick", "summary", "tldr"}},
	{label: "detailed", keywords: []string{"detail", "thorough", "explain more", "elaborate", "comprehensive"}},
	{label: "polite", keywords: []string{"please", "thank", "kindly", "appreciate"}},
	{label: "technical", keywords: []string{"code", "api", "function", "implementation", "spec", "config"}},
}

var contentTypeLexicons = []responseStyleLexicon{
	{label: "code", keywords: []string{"code", "function", "script", "snippet", "implement"}},
	{label: "explanation", keywords: []string{"explain", "why", "how does", "what is", "understand"}},
	{label: "creative", keywords: []string{"story", "poem", "imagine", "creative", "brainstorm"}},
	{label: "analysis", keywords: []string{"analyze", "compare", "evaluate", "assess", "pros and cons"}},
	{label: "troubleshooting", keywords: []string{"error", "bug", "fix", "broken", "not working", "debug"}},
	{label: "learning", keywords: []string{"learn", "teach", "tutorial", "practice", "example"}},
}

// PreferenceAnalyzer scores message history for user-preference signals and
// merges the result into the persisted profile with decay.
type PreferenceAnalyzer struct {
	logger *logger.Logger
	decay  float64
}

// NewPreferenceAnalyzer creates a preference analyzer. A zero decay uses the
// default.
func NewPreferenceAnalyzer(log *logger.Logger, decay float64) *PreferenceAnalyzer {
	if decay <= 0 || decay >= 1 {
		decay = preferenceDecay
	}
	return &PreferenceAnalyzer{logger: log, decay: decay}
}

// Analyze runs the three preference analyses over the full history and merges
// with the previously persisted profile.
func (a *PreferenceAnalyzer) Analyze(messages []model.Message, previous *model.PreferenceProfile) model.PreferenceResult {
	now := time.Now()

	userMessages := filterByRole(messages, model.RoleUser)

	var emitted []model.UserPreference
	var reasoning []string

	// Response-style indicators over user messages only.
	for _, lex := range responseStyleLexicons {
		hits := 0
		var examples []string
		for _, msg := range userMessages {
			if n := countKeywords(msg.Content, lex.keywords); n > 0 {
				hits += n
				if len(examples) < model.MaxPatternExamples {
					examples = append(examples, truncate(msg.Content, 80))
				}
			}
		}
		if len(userMessages) == 0 {
			continue
		}
		strength := clamp01(float64(hits) / float64(len(userMessages)))
		if strength > styleStrengthThreshold {
			emitted = append(emitted, model.UserPreference{
				Category:       model.CategoryResponseStyle,
				Label:          lex.label,
				Strength:       strength,
				Confidence:     clamp01(0.4 + strength/2),
				LastReinforced: now,
				Examples:       examples,
				Frequency:      hits,
			})
			reasoning = append(reasoning, fmt.Sprintf("response style %q: %d indicator hits across %d user messages", lex.label, hits, len(userMessages)))
		}
	}

	// Content-type indicators over the full history, normalized by message
	// count.
	if len(messages) > 0 {
		for _, lex := range contentTypeLexicons {
			hits := 0
			for _, msg := range messages {
				hits += countKeywords(msg.Content, lex.keywords)
			}
			rate := float64(hits) / float64(len(messages))
			if rate > contentTypeThreshold {
				emitted = append(emitted, model.UserPreference{
					Category:       model.CategoryContentType,
					Label:          lex.label,
					Strength:       clamp01(rate),
					Confidence:     clamp01(0.5 + rate/2),
					LastReinforced: now,
					Frequency:      hits,
				})
				reasoning = append(reasoning, fmt.Sprintf("content type %q: %d hits over %d messages", lex.label, hits, len(messages)))
			}
		}
	}

	// Generic interaction-pattern signal: fires whenever a back-and-forth
	// exists at all.
	if len(messages) > 1 {
		strength := clamp01(float64(len(messages)) / 20)
		emitted = append(emitted, model.UserPreference{
			Category:       model.CategoryInteractionPattern,
			Label:          "iterative",
			Strength:       strength,
			Confidence:     0.5,
			LastReinforced: now,
			Frequency:      len(messages),
		})
		reasoning = append(reasoning, fmt.Sprintf("interaction: %d messages exchanged", len(messages)))
	}

	merged := a.merge(emitted, previous)

	var confidence float64
	if len(emitted) > 0 {
		var sum float64
		for _, p := range emitted {
			sum += p.Confidence
		}
		confidence = sum / float64(len(emitted))
	}

	return model.PreferenceResult{
		Preferences: merged,
		Reasoning:   reasoning,
		Confidence:  confidence,
	}
}

// merge decays the persisted set, drops entries under the floor, and lets
// fresh entries win over stale ones sharing the same category and label.
func (a *PreferenceAnalyzer) merge(fresh []model.UserPreference, previous *model.PreferenceProfile) []model.UserPreference {
	byKey := make(map[string]model.UserPreference)

	if previous != nil {
		for _, p := range previous.Preferences {
			p.Strength *= a.decay
			if p.Strength < preferenceFloor {
				continue
			}
			byKey[p.Key()] = p
		}
	}

	for _, p := range fresh {
		if existing, ok := byKey[p.Key()]; ok {
			p.Frequency += existing.Frequency
		}
		byKey[p.Key()] = p
	}

	merged := make([]model.UserPreference, 0, len(byKey))
	// Keep a deterministic order: fresh entries first in emission order,
	// then surviving decayed entries.
	seen := make(map[string]bool)
	for _, p := range fresh {
		if v, ok := byKey[p.Key()]; ok && !seen[p.Key()] {
			merged = append(merged, v)
			seen[p.Key()] = true
		}
	}
	if previous != nil {
		for _, p := range previous.Preferences {
			if v, ok := byKey[p.Key()]; ok && !seen[p.Key()] {
				merged = append(merged, v)
				seen[p.Key()] = true
			}
		}
	}

	return merged
}

func filterByRole(messages []model.Message, role model.Role) []model.Message {
	var out []model.Message
	for _, m := range messages {
		if m.Role == role {
			out = append(out, m)
		}
	}
	return out
}
