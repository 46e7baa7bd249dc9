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

// Style scoring blends fixed-lexicon heuristics with a one-shot model rating:
// 60% heuristic, 40% model. A failed model call substitutes a neutral vector.
const (
	styleHeuristicWeight = 0.6
	styleModelWeight     = 0.4
	styleNeutralScore    = 0.5

	// minStyleMessages is the minimum user-message count for a meaningful
	// read; below it the detector returns the low-confidence default.
	minStyleMessages = 3
)

type lengthBand int

const (
	bandShort lengthBand = iota
	bandMedium
	bandLong
)

// styleLexicon holds the heuristic signals for one communication style.
type styleLexicon struct {
	keywords        []string
	keywordWeight   float64
	band            lengthBand
	maxAvgSentence  float64 // scores when avg sentence length is below this
	minAvgSentence  float64 // scores when avg sentence length is above this
	characteristics []string
}

var styleLexicons = map[model.Style]styleLexicon{
	model.StyleDirect: {
		keywords:        []string{"brief", "short", "quick", "just", "simply", "tldr", "summary"},
		keywordWeight:   0.4,
		band:            bandShort,
		maxAvgSentence:  8,
		characteristics: []string{"prefers short answers", "gets to the point", "avoids preamble"},
	},
	model.StyleCasual: {
		keywords:        []string{"hey", "cool", "awesome", "lol", "thanks", "btw", "gonna"},
		keywordWeight:   0.3,
		band:            bandShort,
		maxAvgSentence:  12,
		characteristics: []string{"informal tone", "conversational phrasing", "relaxed register"},
	},
	model.StyleDetailed: {
		keywords:        []string{"explain", "detail", "elaborate", "thorough", "comprehensive", "step by step"},
		keywordWeight:   0.4,
		band:            bandLong,
		minAvgSentence:  15,
		characteristics: []string{"wants full explanations", "values completeness", "asks follow-up questions"},
	},
	model.StyleCreative: {
		keywords:        []string{"imagine", "creative", "story", "design", "brainstorm", "idea", "inspire"},
		keywordWeight:   0.4,
		band:            bandMedium,
		characteristics: []string{"open-ended prompts", "exploratory requests", "visual thinking"},
	},
	model.StyleTechnical: {
		keywords:        []string{"code", "function", "api", "debug", "error", "implementation", "algorithm", "config"},
		keywordWeight:   0.4,
		band:            bandMedium,
		minAvgSentence:  10,
		characteristics: []string{"uses technical vocabulary", "precise requirements", "implementation focus"},
	},
	model.StyleFormal: {
		keywords:        []string{"please", "kindly", "would you", "could you", "regards", "appreciate"},
		keywordWeight:   0.3,
		band:            bandLong,
		minAvgSentence:  14,
		characteristics: []string{"polite phrasing", "complete sentences", "professional register"},
	},
}

// StyleDetector scores user messages against the six fixed style lexicons.
type StyleDetector struct {
	llm    llm.Client
	logger *logger.Logger
}

// NewStyleDetector creates a style detector.
func NewStyleDetector(client llm.Client, log *logger.Logger) *StyleDetector {
	return &StyleDetector{llm: client, logger: log}
}

// Detect returns the dominant communication style for a window of
// user-authored messages.
func (d *StyleDetector) Detect(ctx context.Context, userMessages []model.Message) model.StyleResult {
	if len(userMessages) < minStyleMessages {
		return model.StyleResult{
			Style:      model.StyleCasual,
			Confidence: 0.3,
		}
	}

	heuristic := d.heuristicScores(userMessages)
	rated := d.modelScores(ctx, userMessages)

	best := model.StyleCasual
	bestScore := -1.0
	for _, style := range model.Styles {
		blended := styleHeuristicWeight*heuristic[style] + styleModelWeight*rated[style]
		// Strict greater-than keeps ties on the earlier entry.
		if blended > bestScore {
			best = style
			bestScore = blended
		}
	}

	lex := styleLexicons[best]
	characteristics := lex.characteristics
	if len(characteristics) > 3 {
		characteristics = characteristics[:3]
	}

	return model.StyleResult{
		Style:           best,
		Confidence:      clamp01(bestScore),
		Characteristics: characteristics,
		Examples:        styleExamples(userMessages, lex.keywords),
	}
}

// HeuristicScores exposes the raw heuristic component for testing and for
// the insight fallback path.
func (d *StyleDetector) HeuristicScores(userMessages []model.Message) map[model.Style]float64 {
	return d.heuristicScores(userMessages)
}

func (d *StyleDetector) heuristicScores(userMessages []model.Message) map[model.Style]float64 {
	scores := make(map[model.Style]float64, len(model.Styles))

	for _, style := range model.Styles {
		lex := styleLexicons[style]
		var score float64
		for _, msg := range userMessages {
			score += float64(countKeywords(msg.Content, lex.keywords)) * lex.keywordWeight

			if messageBand(msg.Content) == lex.band {
				score += 0.2
			}

			avg := avgSentenceLength(msg.Content)
			if lex.maxAvgSentence > 0 && avg > 0 && avg < lex.maxAvgSentence {
				score += 0.1
			}
			if lex.minAvgSentence > 0 && avg > lex.minAvgSentence {
				score += 0.1
			}
		}
		scores[style] = score
	}

	// Normalize by the maximum observed score. All-zero stays all-zero.
	var max float64
	for _, s := range scores {
		if s > max {
			max = s
		}
	}
	if max > 0 {
		for style, s := range scores {
			scores[style] = s / max
		}
	}

	return scores
}

func (d *StyleDetector) modelScores(ctx context.Context, userMessages []model.Message) map[model.Style]float64 {
	neutral := make(map[model.Style]float64, len(model.Styles))
	for _, s := range model.Styles {
		neutral[s] = styleNeutralScore
	}

	var sb strings.Builder
	sb.WriteString("Rate how strongly these user messages match each communication style on a 0 to 1 scale.\n")
	sb.WriteString("Respond with ONLY a JSON object: {\"direct\":0.0,\"casual\":0.0,\"detailed\":0.0,\"creative\":0.0,\"technical\":0.0,\"formal\":0.0}\n\nMessages:\n")
	for _, msg := range userMessages {
		fmt.Fprintf(&sb, "- %s\n", truncate(msg.Content, 150))
	}

	resp, err := d.llm.Complete(ctx, &llm.CompletionRequest{
		Variant:   llm.VariantLite,
		Operation: "style_rating",
		Prompt:    sb.String(),
		MaxTokens: 256,
	})
	if err != nil {
		metrics.RecordFallback("style", "completion_error")
		d.logger.Warn("style rating call failed", zap.Error(err))
		return neutral
	}

	var rated map[string]float64
	if err := parseObject(resp.Content, &rated); err != nil {
		metrics.RecordFallback("style", "parse_error")
		d.logger.Warn("style rating unparseable", zap.Error(err))
		return neutral
	}

	out := make(map[model.Style]float64, len(model.Styles))
	for _, s := range model.Styles {
		if v, ok := rated[string(s)]; ok {
			out[s] = clamp01(v)
		} else {
			out[s] = styleNeutralScore
		}
	}
	return out
}

func messageBand(content string) lengthBand {
	switch n := len(content); {
	case n < 50:
		return bandShort
	case n < 200:
		return bandMedium
	default:
		return bandLong
	}
}

func styleExamples(userMessages []model.Message, keywords []string) []string {
	var examples []string
	for _, msg := range userMessages {
		if containsAny(msg.Content, keywords) {
			examples = append(examples, truncate(msg.Content, 80))
			if len(examples) == 2 {
				break
			}
		}
	}
	return examples
}
