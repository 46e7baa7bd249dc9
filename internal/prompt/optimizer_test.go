package prompt

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/capitalize-ai/assistant-intelligence/internal/llm"
	"github.com/capitalize-ai/assistant-intelligence/internal/model"
)

func msg(role model.Role, content string) model.Message {
	return model.Message{Role: role, Content: content}
}

func TestOptimizeHistoryShortPassthrough(t *testing.T) {
	o := NewOptimizer(0.003, 0.00025, 0)

	history := []model.Message{
		msg(model.RoleUser, "one"),
		msg(model.RoleAssistant, "two"),
		msg(model.RoleUser, "three"),
	}

	optimized, saved := o.OptimizeHistory(history)
	if len(optimized) != 3 {
		t.Errorf("got %d messages, want unchanged 3", len(optimized))
	}
	if saved != 0 {
		t.Errorf("saved = %d, want 0", saved)
	}

	// Optimizing an already-optimized window changes nothing.
	again, saved := o.OptimizeHistory(optimized)
	if len(again) != len(optimized) || saved != 0 {
		t.Error("optimization must be idempotent at or under the window")
	}
}

func TestOptimizeHistoryKeepsImportantEarlier(t *testing.T) {
	o := NewOptimizer(0.003, 0.00025, 0)

	history := []model.Message{
		msg(model.RoleUser, "always remember my deploy target is us-east"),
		msg(model.RoleUser, "filler message padding the early history considerably"),
		msg(model.RoleUser, "more filler that should be trimmed away entirely"),
		msg(model.RoleUser, "m4"),
		msg(model.RoleUser, "m5"),
		msg(model.RoleUser, "m6"),
		msg(model.RoleUser, "m7"),
		msg(model.RoleUser, "m8"),
	}

	optimized, saved := o.OptimizeHistory(history)

	if len(optimized) != 6 {
		t.Fatalf("got %d messages, want 1 important + 5 trailing", len(optimized))
	}
	if !strings.Contains(optimized[0].Content, "always remember") {
		t.Errorf("important earlier message lost: %q", optimized[0].Content)
	}
	if optimized[len(optimized)-1].Content != "m8" {
		t.Error("trailing window must end with the latest message")
	}
	if saved <= 0 {
		t.Errorf("saved = %d, want positive", saved)
	}
}

func TestOptimizeHistoryImportantCap(t *testing.T) {
	o := NewOptimizer(0.003, 0.00025, 0)

	var history []model.Message
	for i := 0; i < 4; i++ {
		history = append(history, msg(model.RoleUser, "this is critical and important, remember it"))
	}
	for i := 0; i < 5; i++ {
		history = append(history, msg(model.RoleUser, "tail"))
	}

	optimized, _ := o.OptimizeHistory(history)
	if len(optimized) != maxImportantEarlier+defaultHistoryWindow {
		t.Errorf("got %d messages, want %d", len(optimized), maxImportantEarlier+defaultHistoryWindow)
	}
}

func TestOptimizeHistoryConfiguredWindow(t *testing.T) {
	o := NewOptimizer(0.003, 0.00025, 2)

	history := []model.Message{
		msg(model.RoleUser, "one"),
		msg(model.RoleUser, "two"),
		msg(model.RoleUser, "three"),
		msg(model.RoleUser, "four"),
	}

	optimized, _ := o.OptimizeHistory(history)
	if len(optimized) != 2 {
		t.Fatalf("got %d messages, want the configured window of 2", len(optimized))
	}
	if optimized[0].Content != "three" || optimized[1].Content != "four" {
		t.Errorf("window kept %q, %q; want the two latest messages", optimized[0].Content, optimized[1].Content)
	}
}

func TestIsImportant(t *testing.T) {
	if !isImportant(model.Message{IsImage: true}) {
		t.Error("image messages are important")
	}
	if !isImportant(model.Message{Confidence: 0.9}) {
		t.Error("high-confidence messages are important")
	}
	if !isImportant(model.Message{Content: "you must never delete the prod database"}) {
		t.Error("keyword-bearing messages are important")
	}
	if isImportant(model.Message{Content: "nice weather today"}) {
		t.Error("ordinary messages are not important")
	}
}

func TestBuildIntentPromptCapsContent(t *testing.T) {
	o := NewOptimizer(0.003, 0.00025, 0)

	long := strings.Repeat("x", 300)
	p := o.BuildIntentPrompt(long)
	if strings.Contains(p, long) {
		t.Error("intent prompt must cap embedded content")
	}
	if !strings.Contains(p, strings.Repeat("x", intentContentCap)+"...") {
		t.Error("capped content should carry an ellipsis")
	}
}

func TestBuildPatternPromptContract(t *testing.T) {
	o := NewOptimizer(0.003, 0.00025, 0)

	p := o.BuildPatternPrompt([]model.Message{msg(model.RoleUser, "draw a fox")})
	if !strings.Contains(p, "Return ONLY the JSON array") {
		t.Error("pattern prompt must state the strict response contract")
	}
	if !strings.Contains(p, "user: draw a fox") {
		t.Error("pattern prompt must embed the conversation")
	}
}

func TestSelectModel(t *testing.T) {
	o := NewOptimizer(0.003, 0.00025, 0)

	cases := []struct {
		op         Operation
		complexity float64
		contextLen int
		want       llm.Variant
	}{
		{OpIntentClassification, 0.2, 10, llm.VariantLite},
		{OpIntentClassification, 0.8, 10, llm.VariantPrimary},
		{OpResponseGeneration, 0.2, 2, llm.VariantLite},
		{OpResponseGeneration, 0.2, 8, llm.VariantPrimary},
		{OpPatternAnalysis, 0.9, 1, llm.VariantPrimary},
	}
	for _, tc := range cases {
		if got := o.SelectModel(tc.op, tc.complexity, tc.contextLen); got != tc.want {
			t.Errorf("SelectModel(%s, %v, %d) = %s, want %s", tc.op, tc.complexity, tc.contextLen, got, tc.want)
		}
	}
}

func TestCapContentRuneBoundary(t *testing.T) {
	// 10 two-byte runes. A cap of 11 bytes lands mid-rune and must back up.
	s := strings.Repeat("é", 10)
	got := capContent(s, 11)
	if !utf8.ValidString(got) {
		t.Fatalf("capContent produced invalid UTF-8: %q", got)
	}
	if got != strings.Repeat("é", 5)+"..." {
		t.Errorf("capContent = %q, want cut on the rune boundary", got)
	}

	if capContent("short", 100) != "short" {
		t.Error("content under the cap must pass through unchanged")
	}
}

func TestEstimateCost(t *testing.T) {
	o := NewOptimizer(0.003, 0.00025, 0)

	if got := o.EstimateCost(llm.VariantPrimary, 2000); got != 0.006 {
		t.Errorf("primary cost = %v, want 0.006", got)
	}
	if got := o.EstimateCost(llm.VariantLite, 2000); got != 0.0005 {
		t.Errorf("lite cost = %v, want 0.0005", got)
	}
	if EstimateTokens(400) != 100 {
		t.Error("token estimate should be chars/4")
	}
}
