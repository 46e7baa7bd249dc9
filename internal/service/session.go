// Package service provides business logic for the assistant platform.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/capitalize-ai/assistant-intelligence/internal/model"
	"github.com/capitalize-ai/assistant-intelligence/internal/store"
	"github.com/capitalize-ai/assistant-intelligence/pkg/logger"
	"github.com/capitalize-ai/assistant-intelligence/pkg/metrics"
)

// SessionService handles session lifecycle. A session exclusively owns its
// messages and gallery images; deleting it also deletes its intelligence
// snapshots.
type SessionService struct {
	messages     messageLog
	patternStore *store.PatternStore
	prefStore    *store.PreferenceStore
	logger       *logger.Logger

	// In-memory session index (would be a database in production).
	sessions map[string]*model.ConversationSession
	mu       sync.RWMutex
}

// NewSessionService creates a new session service.
func NewSessionService(messages messageLog, patterns *store.PatternStore, prefs *store.PreferenceStore, log *logger.Logger) *SessionService {
	return &SessionService{
		messages:     messages,
		patternStore: patterns,
		prefStore:    prefs,
		logger:       log,
		sessions:     make(map[string]*model.ConversationSession),
	}
}

// Create creates a new session.
func (s *SessionService) Create(ctx context.Context, tenantID, userID string, req *model.CreateSessionRequest) (*model.ConversationSession, error) {
	now := time.Now()

	session := &model.ConversationSession{
		ID:        uuid.Must(uuid.NewV7()).String(),
		TenantID:  tenantID,
		UserID:    userID,
		Title:     req.Title,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	metrics.SessionsTotal.WithLabelValues(tenantID).Inc()
	s.logger.Info("session created",
		zap.String("session_id", session.ID),
		zap.String("tenant_id", tenantID),
	)

	return session, nil
}

// Get retrieves a session by ID.
func (s *SessionService) Get(ctx context.Context, tenantID, sessionID string) (*model.ConversationSession, error) {
	s.mu.RLock()
	session, exists := s.sessions[sessionID]
	s.mu.RUnlock()

	if !exists || session.TenantID != tenantID || session.Deleted {
		return nil, fmt.Errorf("session not found")
	}

	return session, nil
}

// List retrieves sessions for a tenant.
func (s *SessionService) List(ctx context.Context, tenantID string, limit, offset int) (*model.ListSessionsResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sessions []model.ConversationSession
	for _, session := range s.sessions {
		if session.TenantID == tenantID && !session.Deleted {
			sessions = append(sessions, *session)
		}
	}

	total := len(sessions)
	start := offset
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return &model.ListSessionsResponse{
		Sessions: sessions[start:end],
		Total:    total,
		HasMore:  end < total,
	}, nil
}

// Update updates a session title.
func (s *SessionService) Update(ctx context.Context, tenantID, sessionID string, req *model.UpdateSessionRequest) (*model.ConversationSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, exists := s.sessions[sessionID]
	if !exists || session.TenantID != tenantID {
		return nil, fmt.Errorf("session not found")
	}

	if req.Title != "" {
		session.Title = req.Title
	}
	session.UpdatedAt = time.Now()

	return session, nil
}

// Delete soft deletes a session and removes the intelligence snapshots and
// gallery it owns.
func (s *SessionService) Delete(ctx context.Context, tenantID, sessionID string) error {
	s.mu.Lock()
	session, exists := s.sessions[sessionID]
	if !exists || session.TenantID != tenantID {
		s.mu.Unlock()
		return fmt.Errorf("session not found")
	}
	session.Deleted = true
	session.Gallery = nil
	session.UpdatedAt = time.Now()
	s.mu.Unlock()

	s.patternStore.Delete(ctx, sessionID)
	s.prefStore.Delete(ctx, sessionID)

	return nil
}

// AddGalleryImage appends a generated image to the session's gallery.
func (s *SessionService) AddGalleryImage(ctx context.Context, tenantID, sessionID, prompt string) (*model.GalleryImage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, exists := s.sessions[sessionID]
	if !exists || session.TenantID != tenantID || session.Deleted {
		return nil, fmt.Errorf("session not found")
	}

	img := model.GalleryImage{
		ID:        uuid.Must(uuid.NewV7()).String(),
		Prompt:    prompt,
		CreatedAt: time.Now(),
	}
	session.Gallery = append(session.Gallery, img)
	session.UpdatedAt = time.Now()

	return &img, nil
}

// RecordMessage updates the session's last-message bookkeeping.
func (s *SessionService) RecordMessage(ctx context.Context, tenantID, sessionID string, msg *model.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, exists := s.sessions[sessionID]
	if !exists || session.TenantID != tenantID {
		return fmt.Errorf("session not found")
	}

	session.LastMessage = msg
	session.MessageCount++
	session.UpdatedAt = time.Now()

	return nil
}

// GetMessages retrieves messages for a session from the message log.
func (s *SessionService) GetMessages(ctx context.Context, tenantID, sessionID string, afterSequence uint64, limit int) (*model.ListMessagesResponse, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}

	messages, lastSeq, hasMore, err := s.messages.GetMessages(ctx, tenantID, sessionID, afterSequence, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}

	return &model.ListMessagesResponse{
		Messages:     messages,
		HasMore:      hasMore,
		LastSequence: lastSeq,
	}, nil
}
