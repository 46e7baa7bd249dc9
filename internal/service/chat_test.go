package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/capitalize-ai/assistant-intelligence/internal/intelligence"
	"github.com/capitalize-ai/assistant-intelligence/internal/llm"
	"github.com/capitalize-ai/assistant-intelligence/internal/model"
	"github.com/capitalize-ai/assistant-intelligence/internal/orchestrator"
	"github.com/capitalize-ai/assistant-intelligence/internal/prompt"
	"github.com/capitalize-ai/assistant-intelligence/internal/store"
	"github.com/capitalize-ai/assistant-intelligence/pkg/logger"
)

// fakeMessageLog records published messages in order and serves an empty
// history.
type fakeMessageLog struct {
	published []model.Message
	seq       uint64
}

func (f *fakeMessageLog) PublishMessage(ctx context.Context, msg *model.Message) (uint64, error) {
	f.seq++
	f.published = append(f.published, *msg)
	return f.seq, nil
}

func (f *fakeMessageLog) GetMessages(ctx context.Context, tenantID, sessionID string, afterSequence uint64, limit int) ([]model.Message, uint64, bool, error) {
	return nil, 0, false, nil
}

type failingLLM struct{}

func (failingLLM) Complete(ctx context.Context, req *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	return nil, errors.New("provider down")
}

func (failingLLM) Name() string { return "failing" }

func (failingLLM) ModelFor(v llm.Variant) string { return "failing-model" }

func newChatService(t *testing.T) (*ChatService, *SessionService, *fakeMessageLog, string) {
	t.Helper()

	log := logger.NewNop()
	opt := prompt.NewOptimizer(0.003, 0.00025, 0)
	client := failingLLM{}

	orch := orchestrator.New(orchestrator.Deps{
		LLM:         client,
		Style:       intelligence.NewStyleDetector(client, log),
		Preferences: intelligence.NewPreferenceAnalyzer(log, 0.95),
		Patterns:    intelligence.NewPatternEngine(client, opt, log, 0),
		Insights:    intelligence.NewInsightBuilder(client, log),
		Reasoner:    intelligence.NewReasoner(client, opt, log),
		Workflow:    intelligence.NewWorkflowAdvisor(client, log),
		Optimizer:   opt,
		PatternKV:   store.NewPatternStore(store.NewMemoryKV(), log),
		PrefKV:      store.NewPreferenceStore(store.NewMemoryKV(), log),
		Logger:      log,
	})

	msgLog := &fakeMessageLog{}
	sessions := NewSessionService(msgLog, store.NewPatternStore(store.NewMemoryKV(), log), store.NewPreferenceStore(store.NewMemoryKV(), log), log)
	session, err := sessions.Create(context.Background(), "t1", "u1", &model.CreateSessionRequest{Title: "chat"})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	return NewChatService(msgLog, sessions, orch, log), sessions, msgLog, session.ID
}

func TestSendPublishesBothMessagesWithOwnTimestamps(t *testing.T) {
	chat, _, msgLog, sessionID := newChatService(t)

	bundle, err := chat.Send(context.Background(), "t1", sessionID, &model.ChatRequest{
		Content: "tell me about lighthouses",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if len(msgLog.published) != 2 {
		t.Fatalf("published %d messages, want user then assistant", len(msgLog.published))
	}
	user, assistant := msgLog.published[0], msgLog.published[1]
	if user.Role != model.RoleUser || assistant.Role != model.RoleAssistant {
		t.Fatalf("publish order = %s, %s; want user, assistant", user.Role, assistant.Role)
	}
	if user.Content != "tell me about lighthouses" {
		t.Errorf("user content = %q", user.Content)
	}
	if !user.CreatedAt.Before(assistant.CreatedAt) {
		t.Errorf("user message must carry its receive time, got %v vs assistant %v", user.CreatedAt, assistant.CreatedAt)
	}
	if bundle.Message.Sequence != 2 {
		t.Errorf("assistant sequence = %d, want 2", bundle.Message.Sequence)
	}
}

func TestSendAppendsGeneratedImageToGallery(t *testing.T) {
	chat, sessions, _, sessionID := newChatService(t)

	if _, err := chat.Send(context.Background(), "t1", sessionID, &model.ChatRequest{
		Content: "draw a lighthouse at dusk",
	}); err != nil {
		t.Fatalf("send: %v", err)
	}

	session, err := sessions.Get(context.Background(), "t1", sessionID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if len(session.Gallery) != 1 {
		t.Fatalf("gallery has %d images, want 1", len(session.Gallery))
	}
	if strings.HasPrefix(session.Gallery[0].Prompt, "Generating an image: ") {
		t.Errorf("gallery prompt must strip the message prefix: %q", session.Gallery[0].Prompt)
	}
}

func TestSendUnknownSession(t *testing.T) {
	chat, _, msgLog, _ := newChatService(t)

	if _, err := chat.Send(context.Background(), "t1", "missing", &model.ChatRequest{Content: "hello there friend"}); err == nil {
		t.Fatal("expected an error for an unknown session")
	}
	if len(msgLog.published) != 0 {
		t.Errorf("nothing should be published for an unknown session, got %d", len(msgLog.published))
	}
}
