package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/capitalize-ai/assistant-intelligence/internal/model"
	"github.com/capitalize-ai/assistant-intelligence/internal/orchestrator"
	"github.com/capitalize-ai/assistant-intelligence/pkg/logger"
	"github.com/capitalize-ai/assistant-intelligence/pkg/metrics"
)

// historyFetchLimit bounds how much history feeds one pipeline pass.
const historyFetchLimit = 50

// messageLog is the subset of the message stream the chat service uses.
// *nats.StreamManager satisfies it.
type messageLog interface {
	PublishMessage(ctx context.Context, msg *model.Message) (uint64, error)
	GetMessages(ctx context.Context, tenantID, sessionID string, afterSequence uint64, limit int) ([]model.Message, uint64, bool, error)
}

// ChatService runs the intelligence pipeline for one incoming message and
// appends the exchange to the session log.
type ChatService struct {
	messages     messageLog
	sessions     *SessionService
	orchestrator *orchestrator.Orchestrator
	logger       *logger.Logger
}

// NewChatService creates a new chat service.
func NewChatService(messages messageLog, sessions *SessionService, orch *orchestrator.Orchestrator, log *logger.Logger) *ChatService {
	return &ChatService{
		messages:     messages,
		sessions:     sessions,
		orchestrator: orch,
		logger:       log,
	}
}

// Send processes a user message through the pipeline and returns the full
// bundle. Pipeline failures are absorbed by the orchestrator; only session
// lookup and message-log publishing surface errors.
func (s *ChatService) Send(ctx context.Context, tenantID, sessionID string, req *model.ChatRequest) (*model.ChatResponse, error) {
	if _, err := s.sessions.Get(ctx, tenantID, sessionID); err != nil {
		return nil, err
	}
	receivedAt := time.Now()

	history, _, _, err := s.messages.GetMessages(ctx, tenantID, sessionID, 0, historyFetchLimit)
	if err != nil {
		s.logger.Warn("history fetch failed, proceeding with empty history",
			zap.String("session_id", sessionID), zap.Error(err))
		history = nil
	}

	bundle := s.orchestrator.Process(ctx, sessionID, tenantID, history, req)

	userMsg := &model.Message{
		ID:        uuid.Must(uuid.NewV7()).String(),
		SessionID: sessionID,
		TenantID:  tenantID,
		Role:      model.RoleUser,
		Content:   req.Content,
		CreatedAt: receivedAt,
	}

	if _, err := s.messages.PublishMessage(ctx, userMsg); err != nil {
		return nil, fmt.Errorf("failed to publish user message: %w", err)
	}
	if seq, err := s.messages.PublishMessage(ctx, bundle.Message); err != nil {
		return nil, fmt.Errorf("failed to publish assistant message: %w", err)
	} else {
		bundle.Message.Sequence = seq
	}

	s.sessions.RecordMessage(ctx, tenantID, sessionID, bundle.Message)

	if bundle.Message.IsImage {
		prompt := strings.TrimPrefix(bundle.Message.Content, "Generating an image: ")
		if _, err := s.sessions.AddGalleryImage(ctx, tenantID, sessionID, prompt); err != nil {
			s.logger.Warn("gallery append failed", zap.String("session_id", sessionID), zap.Error(err))
		}
	}

	metrics.MessagesTotal.WithLabelValues(tenantID, string(model.RoleUser)).Inc()
	metrics.MessagesTotal.WithLabelValues(tenantID, string(model.RoleAssistant)).Inc()

	return bundle, nil
}
