package intelligence

import (
	"context"
	"errors"
	"testing"

	"github.com/capitalize-ai/assistant-intelligence/internal/model"
	"github.com/capitalize-ai/assistant-intelligence/pkg/logger"
)

func TestBuildNoPatternsDefaults(t *testing.T) {
	client := &fakeClient{response: "should not be called"}
	b := NewInsightBuilder(client, logger.NewNop())

	got := b.Build(context.Background(), nil, nil)

	if got.CommunicationStyle != model.StyleCasual {
		t.Errorf("style = %s, want casual", got.CommunicationStyle)
	}
	if got.SessionSummary != "new conversation" {
		t.Errorf("summary = %q", got.SessionSummary)
	}
	if got.Preferences == nil || len(got.Preferences) != 0 {
		t.Errorf("preferences = %v, want empty non-nil map", got.Preferences)
	}
	if client.calls != 0 {
		t.Errorf("model calls = %d, want 0 without patterns", client.calls)
	}
}

func TestBuildParsesModelResponse(t *testing.T) {
	client := &fakeClient{response: `{
		"preferences": {"visual content": 1.4},
		"communication_style": "technical",
		"topic_interests": ["astronomy"],
		"session_summary": "user explores space imagery"
	}`}
	b := NewInsightBuilder(client, logger.NewNop())

	patterns := []model.ConversationPattern{
		{Type: model.PatternDomainInterest, Pattern: "astronomy", Confidence: 0.8, Occurrences: 2},
	}
	got := b.Build(context.Background(), patterns, nil)

	if got.CommunicationStyle != model.StyleTechnical {
		t.Errorf("style = %s, want technical", got.CommunicationStyle)
	}
	if got.Preferences["visual content"] != 1.0 {
		t.Errorf("preference not clamped: %v", got.Preferences["visual content"])
	}
	if got.SessionSummary != "user explores space imagery" {
		t.Errorf("summary = %q", got.SessionSummary)
	}
}

func TestBuildLocalFallbackOnError(t *testing.T) {
	b := NewInsightBuilder(&fakeClient{err: errors.New("down")}, logger.NewNop())

	patterns := []model.ConversationPattern{
		{Type: model.PatternPreference, Pattern: "frequent image requests", Confidence: 0.7},
		{Type: model.PatternDomainInterest, Pattern: "wildlife", Confidence: 0.8},
		{Type: model.PatternIntentSequence, Pattern: "image then caption", Occurrences: 3},
	}
	got := b.Build(context.Background(), patterns, nil)

	if got.Preferences["frequent image requests"] != 0.7 {
		t.Errorf("preferences = %v", got.Preferences)
	}
	if len(got.TopicInterests) != 1 || got.TopicInterests[0] != "wildlife" {
		t.Errorf("interests = %v", got.TopicInterests)
	}
	if len(got.IntentSequences) != 1 || got.IntentSequences[0].Frequency != 3 {
		t.Errorf("intent sequences = %v", got.IntentSequences)
	}
	if got.SessionSummary != "ongoing conversation with 3 observed patterns" {
		t.Errorf("summary = %q", got.SessionSummary)
	}
}

func TestBuildUnknownStyleFallsBackToCasual(t *testing.T) {
	client := &fakeClient{response: `{"communication_style": "sarcastic", "session_summary": "x"}`}
	b := NewInsightBuilder(client, logger.NewNop())

	got := b.Build(context.Background(), []model.ConversationPattern{{Type: model.PatternPreference, Pattern: "p", Confidence: 0.7}}, nil)
	if got.CommunicationStyle != model.StyleCasual {
		t.Errorf("style = %s, want casual for unrecognized value", got.CommunicationStyle)
	}
}
