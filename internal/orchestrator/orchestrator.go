// Package orchestrator sequences the intelligence pipeline for each incoming
// user message and assembles the response bundle.
package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/capitalize-ai/assistant-intelligence/internal/intelligence"
	"github.com/capitalize-ai/assistant-intelligence/internal/llm"
	"github.com/capitalize-ai/assistant-intelligence/internal/model"
	"github.com/capitalize-ai/assistant-intelligence/internal/prompt"
	"github.com/capitalize-ai/assistant-intelligence/internal/store"
	"github.com/capitalize-ai/assistant-intelligence/pkg/logger"
	"github.com/capitalize-ai/assistant-intelligence/pkg/metrics"
)

// fallbackResponse is the single degraded reply used when the pipeline fails
// past the top-level boundary.
const fallbackResponse = "I'm having trouble processing that right now. Could you try rephrasing your message?"

// Deps holds the stateless services the orchestrator sequences. All are
// constructed once at startup and injected.
type Deps struct {
	LLM         llm.Client
	Style       *intelligence.StyleDetector
	Preferences *intelligence.PreferenceAnalyzer
	Patterns    *intelligence.PatternEngine
	Insights    *intelligence.InsightBuilder
	Reasoner    *intelligence.Reasoner
	Workflow    *intelligence.WorkflowAdvisor
	Optimizer   *prompt.Optimizer
	PatternKV   *store.PatternStore
	PrefKV      *store.PreferenceStore
	Logger      *logger.Logger
}

// Orchestrator runs one sequential pipeline per user message. It holds no
// per-request state; concurrent sessions only contend on the persisted
// snapshots, where the last write wins.
type Orchestrator struct {
	deps Deps
}

// New creates an orchestrator.
func New(deps Deps) *Orchestrator {
	return &Orchestrator{deps: deps}
}

// Process runs the full pipeline for one user message. It never returns an
// error: any failure inside the sequence degrades to a low-confidence
// fallback message with empty auxiliary data.
func (o *Orchestrator) Process(ctx context.Context, sessionID, tenantID string, history []model.Message, req *model.ChatRequest) (resp *model.ChatResponse) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			o.deps.Logger.Error("pipeline panic", zap.Any("panic", r), zap.String("session_id", sessionID))
			metrics.RecordFallback("orchestrator", "panic")
			resp = o.fallbackBundle(sessionID, tenantID, req.Content)
		}
	}()

	d := o.deps
	steps := make([]string, 0, 11)
	steps = append(steps, fmt.Sprintf("Received user message (%d chars)", len(req.Content)))

	// Persisted state first: patterns inform everything downstream.
	patterns := d.PatternKV.Load(ctx, sessionID)
	steps = append(steps, fmt.Sprintf("Loaded %d persisted patterns", len(patterns)))

	stageStart := time.Now()
	intent := o.classifyIntent(ctx, req.Content, history)
	observeStage("intent_classification", stageStart)
	steps = append(steps, fmt.Sprintf("Classified intent as %s", intent))

	stageStart = time.Now()
	fresh := d.Patterns.Extract(ctx, append(history, userMessage(sessionID, tenantID, req.Content)))
	steps = append(steps, fmt.Sprintf("Extracted %d patterns from history", len(fresh)))

	patterns = d.Patterns.Merge(patterns, fresh)
	observeStage("pattern_extraction", stageStart)
	steps = append(steps, fmt.Sprintf("Merged to %d active patterns", len(patterns)))

	stageStart = time.Now()
	insight := d.Insights.Build(ctx, patterns, history)
	observeStage("insight", stageStart)
	steps = append(steps, fmt.Sprintf("Derived memory insight: %s", insight.SessionSummary))

	stageStart = time.Now()
	style := d.Style.Detect(ctx, userMessages(history, req.Content, sessionID, tenantID))
	observeStage("style_detection", stageStart)
	steps = append(steps, fmt.Sprintf("Detected %s communication style (%.2f confidence)", style.Style, style.Confidence))

	stageStart = time.Now()
	profile := d.PrefKV.Load(ctx, sessionID)
	prefResult := d.Preferences.Analyze(append(history, userMessage(sessionID, tenantID, req.Content)), profile)
	observeStage("preference_analysis", stageStart)
	steps = append(steps, fmt.Sprintf("Merged preference profile: %d preferences", len(prefResult.Preferences)))

	optimized, saved := d.Optimizer.OptimizeHistory(history)
	variant := d.Optimizer.SelectModel(prompt.OpResponseGeneration, clamp01(float64(len(history))/10), len(optimized))
	steps = append(steps, fmt.Sprintf("Selected %s model variant (saved ~%d tokens)", variant, saved))

	stageStart = time.Now()
	response, reasoning, isImage := o.respond(ctx, intent, req.Content, history, optimized, patterns, style, prefResult.Preferences)
	observeStage("response_generation", stageStart)
	steps = append(steps, fmt.Sprintf("Generated response via %s path", intent))

	// Reinforce with the completed exchange, then expire stale patterns.
	userMsg := userMessage(sessionID, tenantID, req.Content)
	assistantMsg := o.assistantMessage(sessionID, tenantID, response, intent, variant, isImage, start)
	patterns = d.Patterns.Cleanup(d.Patterns.Reinforce(patterns, userMsg, assistantMsg))

	d.PatternKV.Save(ctx, sessionID, patterns)
	d.PrefKV.Save(ctx, &model.PreferenceProfile{
		SessionID:   sessionID,
		Preferences: prefResult.Preferences,
		UpdatedAt:   time.Now(),
	})
	metrics.PatternsActive.Set(float64(len(patterns)))
	steps = append(steps, "Persisted pattern and preference snapshots")

	stageStart = time.Now()
	workflow := d.Workflow.Suggest(ctx, append(history, userMsg, assistantMsg), patterns, insight)
	observeStage("workflow_suggestions", stageStart)

	confidence := style.Confidence
	if reasoning != nil {
		confidence = reasoning.Confidence
	}
	assistantMsg.Confidence = confidence

	tokens := prompt.EstimateTokens(len(response))
	log := &model.ActionLog{
		ID:         uuid.New().String(),
		Timestamp:  start,
		Action:     "chat_response",
		Input:      req.Content,
		Output:     response,
		Model:      d.LLM.ModelFor(variant),
		Confidence: confidence,
		Duration:   time.Since(start),
		Reasoning:  reasoning,
		Insight:    &insight,
		Patterns:   patterns,
		Steps:      steps,
		Optimization: &model.OptimizationRecord{
			OriginalMessages:  len(history),
			OptimizedMessages: len(optimized),
			TokensSaved:       saved,
			Variant:           string(variant),
			EstimatedCost:     d.Optimizer.EstimateCost(variant, tokens),
		},
	}
	assistantMsg.ActionLogID = &log.ID

	return &model.ChatResponse{
		Message:           &assistantMsg,
		ActionLog:         log,
		Patterns:          patterns,
		Insight:           &insight,
		Suggestions:       workflow.Suggestions,
		ConversationState: workflow.State,
		NextBestActions:   workflow.NextBestActions,
	}
}

// classifyIntent asks the lite variant for a one-word classification and
// falls back to keyword rules on any failure.
func (o *Orchestrator) classifyIntent(ctx context.Context, input string, history []model.Message) model.Intent {
	d := o.deps
	variant := d.Optimizer.SelectModel(prompt.OpIntentClassification, clamp01(float64(len(history))/10), len(history))

	resp, err := d.LLM.Complete(ctx, &llm.CompletionRequest{
		Variant:   variant,
		Operation: "intent_classification",
		Prompt:    d.Optimizer.BuildIntentPrompt(input),
		MaxTokens: 16,
	})
	if err == nil {
		word := strings.ToLower(strings.TrimSpace(resp.Content))
		switch model.Intent(word) {
		case model.IntentText, model.IntentImage, model.IntentClarify, model.IntentReasoning:
			return model.Intent(word)
		}
	} else {
		metrics.RecordFallback("orchestrator", "intent_completion_error")
		d.Logger.Warn("intent classification call failed", zap.Error(err))
	}

	return keywordIntent(input)
}

// keywordIntent is the deterministic classification fallback.
func keywordIntent(input string) model.Intent {
	lower := strings.ToLower(strings.TrimSpace(input))
	for _, kw := range []string{"image", "picture", "photo", "draw", "illustration", "render", "sketch"} {
		if strings.Contains(lower, kw) {
			return model.IntentImage
		}
	}
	if len(input) < 10 || strings.HasPrefix(lower, "what") || strings.HasPrefix(lower, "how") {
		return model.IntentClarify
	}
	return model.IntentText
}

// respond builds the assistant response along the path chosen by intent.
func (o *Orchestrator) respond(
	ctx context.Context,
	intent model.Intent,
	input string,
	history, optimized []model.Message,
	patterns []model.ConversationPattern,
	style model.StyleResult,
	preferences []model.UserPreference,
) (string, *model.ContextualReasoning, bool) {
	d := o.deps

	switch {
	case intent == model.IntentImage:
		return o.imageResponse(ctx, input), nil, true

	case intent == model.IntentReasoning || len(patterns) > 0:
		reasoning := d.Reasoner.Reason(ctx, input, history, patterns, style)
		return reasoning.Response, &reasoning, reasoning.Action == model.ActionImage

	case intent == model.IntentClarify:
		return o.clarifyResponse(ctx, input, optimized), nil, false

	default:
		return o.textResponse(ctx, input, optimized, style, preferences), nil, false
	}
}

// imageResponse asks the model for an enriched image-generation prompt and
// wraps it in the canned reply. The completion failure path degrades to the
// raw input as the prompt.
func (o *Orchestrator) imageResponse(ctx context.Context, input string) string {
	d := o.deps
	imagePrompt := input

	resp, err := d.LLM.Complete(ctx, &llm.CompletionRequest{
		Variant:   llm.VariantLite,
		Operation: "image_prompt",
		Prompt:    fmt.Sprintf("Rewrite this as a vivid one-sentence image generation prompt: %s", input),
		MaxTokens: 128,
	})
	if err != nil {
		metrics.RecordFallback("orchestrator", "image_prompt_error")
		d.Logger.Warn("image prompt call failed", zap.Error(err))
	} else if trimmed := strings.TrimSpace(resp.Content); trimmed != "" {
		imagePrompt = trimmed
	}

	return fmt.Sprintf("Generating an image: %s", imagePrompt)
}

// clarifyResponse asks for one clarifying question, with a template fallback.
func (o *Orchestrator) clarifyResponse(ctx context.Context, input string, optimized []model.Message) string {
	d := o.deps
	resp, err := d.LLM.Complete(ctx, &llm.CompletionRequest{
		Variant:   llm.VariantLite,
		Operation: "clarification",
		Prompt:    d.Optimizer.BuildResponsePrompt(input, "", []string{"ask one short clarifying question before answering"}, optimized),
		MaxTokens: 128,
	})
	if err != nil {
		metrics.RecordFallback("orchestrator", "clarify_completion_error")
		d.Logger.Warn("clarification call failed", zap.Error(err))
		return fmt.Sprintf("Could you tell me a bit more about what you mean by %q?", input)
	}
	return resp.Content
}

// textResponse is the style-adapted, preference-annotated default path.
func (o *Orchestrator) textResponse(ctx context.Context, input string, optimized []model.Message, style model.StyleResult, preferences []model.UserPreference) string {
	d := o.deps

	notes := make([]string, 0, len(preferences))
	for _, p := range preferences {
		if len(notes) == 3 {
			break
		}
		notes = append(notes, fmt.Sprintf("the user prefers %s (%s)", p.Label, p.Category))
	}

	resp, err := d.LLM.Complete(ctx, &llm.CompletionRequest{
		Variant:   llm.VariantPrimary,
		Operation: "response_generation",
		Prompt:    d.Optimizer.BuildResponsePrompt(input, string(style.Style), notes, optimized),
		MaxTokens: 1024,
	})
	if err != nil {
		metrics.RecordFallback("orchestrator", "text_completion_error")
		d.Logger.Warn("response call failed", zap.Error(err))
		return fmt.Sprintf("I understand you're asking about %q. Let me help you with that.", input)
	}
	return resp.Content
}

// fallbackBundle is the bundle returned when the pipeline fails outright:
// one low-confidence message, no auxiliary data.
func (o *Orchestrator) fallbackBundle(sessionID, tenantID, input string) *model.ChatResponse {
	msg := model.Message{
		ID:         uuid.Must(uuid.NewV7()).String(),
		SessionID:  sessionID,
		TenantID:   tenantID,
		Role:       model.RoleAssistant,
		Content:    fallbackResponse,
		Intent:     model.IntentText,
		Confidence: 0.1,
		CreatedAt:  time.Now(),
	}
	return &model.ChatResponse{Message: &msg}
}

func (o *Orchestrator) assistantMessage(sessionID, tenantID, content string, intent model.Intent, variant llm.Variant, isImage bool, start time.Time) model.Message {
	modelName := o.deps.LLM.ModelFor(variant)
	latency := time.Since(start).Milliseconds()
	return model.Message{
		ID:        uuid.Must(uuid.NewV7()).String(),
		SessionID: sessionID,
		TenantID:  tenantID,
		Role:      model.RoleAssistant,
		Content:   content,
		IsImage:   isImage,
		Intent:    intent,
		Model:     &modelName,
		LatencyMs: &latency,
		CreatedAt: time.Now(),
	}
}

func userMessage(sessionID, tenantID, content string) model.Message {
	return model.Message{
		ID:        uuid.Must(uuid.NewV7()).String(),
		SessionID: sessionID,
		TenantID:  tenantID,
		Role:      model.RoleUser,
		Content:   content,
		CreatedAt: time.Now(),
	}
}

func userMessages(history []model.Message, input, sessionID, tenantID string) []model.Message {
	var out []model.Message
	for _, m := range history {
		if m.Role == model.RoleUser {
			out = append(out, m)
		}
	}
	return append(out, userMessage(sessionID, tenantID, input))
}

func observeStage(stage string, start time.Time) {
	metrics.PipelineStageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
