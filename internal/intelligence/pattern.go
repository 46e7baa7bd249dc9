package intelligence

import (
	"context"
	"regexp"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/capitalize-ai/assistant-intelligence/internal/llm"
	"github.com/capitalize-ai/assistant-intelligence/internal/model"
	"github.com/capitalize-ai/assistant-intelligence/internal/prompt"
	"github.com/capitalize-ai/assistant-intelligence/pkg/logger"
	"github.com/capitalize-ai/assistant-intelligence/pkg/metrics"
)

const (
	// minPatternMessages gates extraction; shorter conversations go straight
	// to the keyword fallback.
	minPatternMessages = 3

	// minPatternConfidence filters accepted patterns.
	minPatternConfidence = 0.6

	// maxExtractedPatterns bounds one extraction pass.
	maxExtractedPatterns = 5

	// reinforcementBoost is added to confidence when an exchange matches an
	// existing pattern.
	reinforcementBoost = 0.1

	// defaultPatternMaxAge is the staleness horizon for cleanup.
	defaultPatternMaxAge = 7 * 24 * time.Hour
)

// PatternEngine extracts, reinforces and expires conversation patterns.
type PatternEngine struct {
	llm       llm.Client
	optimizer *prompt.Optimizer
	logger    *logger.Logger
	maxAge    time.Duration
}

// NewPatternEngine creates a pattern engine. A zero maxAge uses the default
// seven-day horizon.
func NewPatternEngine(client llm.Client, opt *prompt.Optimizer, log *logger.Logger, maxAge time.Duration) *PatternEngine {
	if maxAge <= 0 {
		maxAge = defaultPatternMaxAge
	}
	return &PatternEngine{llm: client, optimizer: opt, logger: log, maxAge: maxAge}
}

// rawPattern is the wire shape of one extracted pattern.
type rawPattern struct {
	Type       string   `json:"type"`
	Pattern    string   `json:"pattern"`
	Confidence float64  `json:"confidence"`
	Examples   []string `json:"examples"`
}

// Extract analyzes the conversation and returns fresh patterns. Every
// failure mode degrades: parse layers first, then positional regex, then the
// local keyword heuristic.
func (e *PatternEngine) Extract(ctx context.Context, messages []model.Message) []model.ConversationPattern {
	if len(messages) < minPatternMessages {
		return e.keywordFallback(messages)
	}

	resp, err := e.llm.Complete(ctx, &llm.CompletionRequest{
		Variant:   llm.VariantPrimary,
		Operation: "pattern_extraction",
		Prompt:    e.optimizer.BuildPatternPrompt(messages),
		MaxTokens: 1024,
	})
	if err != nil {
		metrics.RecordFallback("pattern", "completion_error")
		e.logger.Warn("pattern extraction call failed", zap.Error(err))
		return e.keywordFallback(messages)
	}

	var raw []rawPattern
	if err := parseArray(resp.Content, &raw); err != nil {
		raw = regexPatterns(resp.Content)
		if len(raw) == 0 {
			metrics.RecordFallback("pattern", "parse_error")
			e.logger.Warn("pattern extraction unparseable", zap.Error(err))
			return e.keywordFallback(messages)
		}
		metrics.RecordFallback("pattern", "regex_salvage")
	}

	return e.accept(raw)
}

func (e *PatternEngine) accept(raw []rawPattern) []model.ConversationPattern {
	now := time.Now()
	var patterns []model.ConversationPattern
	for _, r := range raw {
		if len(patterns) == maxExtractedPatterns {
			break
		}
		pt := model.PatternType(r.Type)
		if !pt.IsValid() {
			continue
		}
		conf := clamp01(r.Confidence)
		if conf < minPatternConfidence {
			continue
		}
		examples := r.Examples
		if len(examples) > model.MaxPatternExamples {
			examples = examples[:model.MaxPatternExamples]
		}
		patterns = append(patterns, model.ConversationPattern{
			ID:          uuid.New().String(),
			Type:        pt,
			Pattern:     r.Pattern,
			Confidence:  conf,
			Occurrences: 1,
			LastSeen:    now,
			Examples:    examples,
		})
	}
	return patterns
}

// Positional field regexes for the last-resort salvage layer.
var (
	patternTypeRe = regexp.MustCompile(`"type"\s*:\s*"([^"]+)"`)
	patternDescRe = regexp.MustCompile(`"pattern"\s*:\s*"([^"]+)"`)
	patternConfRe = regexp.MustCompile(`"confidence"\s*:\s*([0-9.]+)`)
)

// regexPatterns extracts type/pattern/confidence triples positionally from
// text that failed structured parsing.
func regexPatterns(text string) []rawPattern {
	types := patternTypeRe.FindAllStringSubmatch(text, -1)
	descs := patternDescRe.FindAllStringSubmatch(text, -1)
	confs := patternConfRe.FindAllStringSubmatch(text, -1)

	n := len(types)
	if len(descs) < n {
		n = len(descs)
	}
	if len(confs) < n {
		n = len(confs)
	}

	var out []rawPattern
	for i := 0; i < n; i++ {
		conf, err := strconv.ParseFloat(confs[i][1], 64)
		if err != nil {
			continue
		}
		out = append(out, rawPattern{
			Type:       types[i][1],
			Pattern:    descs[i][1],
			Confidence: conf,
		})
	}
	return out
}

// keywordFallback is the pure-heuristic layer. It detects exactly one canned
// pattern: frequent image requests, when at least two image keywords appear
// across user messages.
func (e *PatternEngine) keywordFallback(messages []model.Message) []model.ConversationPattern {
	hits := 0
	var examples []string
	for _, msg := range messages {
		if msg.Role != model.RoleUser {
			continue
		}
		if n := countKeywords(msg.Content, imageKeywords); n > 0 {
			hits += n
			if len(examples) < model.MaxPatternExamples {
				examples = append(examples, truncate(msg.Content, 80))
			}
		}
	}
	if hits < 2 {
		return nil
	}
	return []model.ConversationPattern{{
		ID:          uuid.New().String(),
		Type:        model.PatternPreference,
		Pattern:     "frequent image requests",
		Confidence:  0.7,
		Occurrences: 1,
		LastSeen:    time.Now(),
		Examples:    examples,
	}}
}

// Reinforce checks each existing pattern against a new user/assistant
// exchange. Matches gain an occurrence, a confidence boost and a fresh
// example.
func (e *PatternEngine) Reinforce(patterns []model.ConversationPattern, userMsg, assistantMsg model.Message) []model.ConversationPattern {
	exchange := userMsg.Content + " " + assistantMsg.Content
	for i := range patterns {
		if !wordOverlap(patterns[i].Pattern, exchange) {
			continue
		}
		patterns[i].Occurrences++
		patterns[i].Confidence = clamp01(patterns[i].Confidence + reinforcementBoost)
		patterns[i].LastSeen = time.Now()
		patterns[i].AddExample(truncate(userMsg.Content, 100))
	}
	return patterns
}

// Merge combines freshly extracted patterns into the existing set. A fresh
// pattern describing the same observation reinforces the existing entry
// instead of duplicating it.
func (e *PatternEngine) Merge(existing, fresh []model.ConversationPattern) []model.ConversationPattern {
	out := existing
	for _, f := range fresh {
		matched := false
		for i := range out {
			if out[i].Type == f.Type && wordOverlap(out[i].Pattern, f.Pattern) {
				out[i].Occurrences++
				out[i].Confidence = clamp01(out[i].Confidence + reinforcementBoost)
				out[i].LastSeen = f.LastSeen
				for _, ex := range f.Examples {
					out[i].AddExample(ex)
				}
				matched = true
				break
			}
		}
		if !matched {
			out = append(out, f)
		}
	}
	return out
}

// Cleanup drops patterns that are simultaneously stale, low-confidence and
// rarely seen.
func (e *PatternEngine) Cleanup(patterns []model.ConversationPattern) []model.ConversationPattern {
	now := time.Now()
	var kept []model.ConversationPattern
	for _, p := range patterns {
		if p.Stale(now, e.maxAge) {
			continue
		}
		kept = append(kept, p)
	}
	return kept
}
