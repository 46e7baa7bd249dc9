package store

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/capitalize-ai/assistant-intelligence/internal/model"
	"github.com/capitalize-ai/assistant-intelligence/pkg/logger"
)

// PatternStore persists conversation pattern snapshots keyed by session id.
// Reads degrade to empty on any failure; writes swallow errors with a warning.
type PatternStore struct {
	kv     KV
	logger *logger.Logger
}

// NewPatternStore creates a pattern store over a KV capability.
func NewPatternStore(kv KV, log *logger.Logger) *PatternStore {
	return &PatternStore{kv: kv, logger: log}
}

// Load returns the persisted patterns for a session, or nil when absent.
func (s *PatternStore) Load(ctx context.Context, sessionID string) []model.ConversationPattern {
	data, found, err := s.kv.Get(ctx, sessionID)
	if err != nil {
		s.logger.Warn("pattern load failed", zap.String("session_id", sessionID), zap.Error(err))
		return nil
	}
	if !found {
		return nil
	}

	var patterns []model.ConversationPattern
	if err := json.Unmarshal(data, &patterns); err != nil {
		s.logger.Warn("pattern snapshot corrupt", zap.String("session_id", sessionID), zap.Error(err))
		return nil
	}
	return patterns
}

// Save persists the pattern snapshot for a session. Fire and forget.
func (s *PatternStore) Save(ctx context.Context, sessionID string, patterns []model.ConversationPattern) {
	data, err := json.Marshal(patterns)
	if err != nil {
		s.logger.Warn("pattern snapshot marshal failed", zap.String("session_id", sessionID), zap.Error(err))
		return
	}
	if err := s.kv.Put(ctx, sessionID, data); err != nil {
		s.logger.Warn("pattern save failed", zap.String("session_id", sessionID), zap.Error(err))
	}
}

// Delete removes the snapshot for a session.
func (s *PatternStore) Delete(ctx context.Context, sessionID string) {
	if err := s.kv.Delete(ctx, sessionID); err != nil {
		s.logger.Warn("pattern delete failed", zap.String("session_id", sessionID), zap.Error(err))
	}
}

// PreferenceStore persists user preference profiles keyed by session id with
// the same degradation semantics as PatternStore.
type PreferenceStore struct {
	kv     KV
	logger *logger.Logger
}

// NewPreferenceStore creates a preference store over a KV capability.
func NewPreferenceStore(kv KV, log *logger.Logger) *PreferenceStore {
	return &PreferenceStore{kv: kv, logger: log}
}

// Load returns the persisted profile for a session, or nil when absent.
func (s *PreferenceStore) Load(ctx context.Context, sessionID string) *model.PreferenceProfile {
	data, found, err := s.kv.Get(ctx, sessionID)
	if err != nil {
		s.logger.Warn("preference load failed", zap.String("session_id", sessionID), zap.Error(err))
		return nil
	}
	if !found {
		return nil
	}

	var profile model.PreferenceProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		s.logger.Warn("preference profile corrupt", zap.String("session_id", sessionID), zap.Error(err))
		return nil
	}
	return &profile
}

// Save persists the profile for a session. Fire and forget.
func (s *PreferenceStore) Save(ctx context.Context, profile *model.PreferenceProfile) {
	data, err := json.Marshal(profile)
	if err != nil {
		s.logger.Warn("preference profile marshal failed", zap.String("session_id", profile.SessionID), zap.Error(err))
		return
	}
	if err := s.kv.Put(ctx, profile.SessionID, data); err != nil {
		s.logger.Warn("preference save failed", zap.String("session_id", profile.SessionID), zap.Error(err))
	}
}

// Delete removes the profile for a session.
func (s *PreferenceStore) Delete(ctx context.Context, sessionID string) {
	if err := s.kv.Delete(ctx, sessionID); err != nil {
		s.logger.Warn("preference delete failed", zap.String("session_id", sessionID), zap.Error(err))
	}
}
