package intelligence

import (
	"testing"
	"time"

	"github.com/capitalize-ai/assistant-intelligence/internal/model"
	"github.com/capitalize-ai/assistant-intelligence/pkg/logger"
)

func TestAnalyzeEmitsConciseStyle(t *testing.T) {
	a := NewPreferenceAnalyzer(logger.NewNop(), 0)

	messages := []model.Message{
		userMsg("keep it short please"),
		userMsg("brief answer is fine"),
		userMsg("give me the tldr"),
	}

	result := a.Analyze(messages, nil)

	var concise *model.UserPreference
	for i := range result.Preferences {
		if result.Preferences[i].Category == model.CategoryResponseStyle && result.Preferences[i].Label == "concise" {
			concise = &result.Preferences[i]
		}
	}
	if concise == nil {
		t.Fatal("expected a concise response-style preference")
	}
	if concise.Strength <= styleStrengthThreshold {
		t.Errorf("strength = %v, want above threshold", concise.Strength)
	}
	if len(result.Reasoning) == 0 {
		t.Error("expected reasoning entries")
	}
	if result.Confidence <= 0 {
		t.Error("expected positive aggregate confidence")
	}
}

func TestAnalyzeEmptyHistory(t *testing.T) {
	a := NewPreferenceAnalyzer(logger.NewNop(), 0)

	result := a.Analyze(nil, nil)
	if len(result.Preferences) != 0 {
		t.Errorf("got %d preferences, want none", len(result.Preferences))
	}
	if result.Confidence != 0 {
		t.Errorf("confidence = %v, want 0", result.Confidence)
	}
}

func TestMergeDecaysAndPrunes(t *testing.T) {
	a := NewPreferenceAnalyzer(logger.NewNop(), 0.95)

	previous := &model.PreferenceProfile{
		SessionID: "s1",
		Preferences: []model.UserPreference{
			{Category: model.CategoryResponseStyle, Label: "detailed", Strength: 0.5, Frequency: 3},
			{Category: model.CategoryContentType, Label: "code", Strength: 0.1, Frequency: 1},
		},
		UpdatedAt: time.Now(),
	}

	// No fresh signal at all: only decay applies.
	result := a.Analyze(nil, previous)

	var detailed, code bool
	for _, p := range result.Preferences {
		switch p.Label {
		case "detailed":
			detailed = true
			if p.Strength >= 0.5 || p.Strength < 0.47 {
				t.Errorf("detailed strength = %v, want decayed to ~0.475", p.Strength)
			}
		case "code":
			code = true
		}
	}
	if !detailed {
		t.Error("decayed entry above the floor should survive")
	}
	if code {
		t.Error("entry decayed below the floor should be pruned")
	}
}

func TestMergeFreshWinsAndAccumulatesFrequency(t *testing.T) {
	a := NewPreferenceAnalyzer(logger.NewNop(), 0.95)

	previous := &model.PreferenceProfile{
		SessionID: "s1",
		Preferences: []model.UserPreference{
			{Category: model.CategoryResponseStyle, Label: "concise", Strength: 0.9, Frequency: 4},
		},
	}

	messages := []model.Message{
		userMsg("short answer please"),
		userMsg("brief is best"),
		userMsg("quick summary only"),
	}

	result := a.Analyze(messages, previous)

	for _, p := range result.Preferences {
		if p.Label != "concise" {
			continue
		}
		if p.Frequency <= 4 {
			t.Errorf("frequency = %d, want accumulated above the prior 4", p.Frequency)
		}
		return
	}
	t.Fatal("concise preference missing after merge")
}
