package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/capitalize-ai/assistant-intelligence/internal/intelligence"
	"github.com/capitalize-ai/assistant-intelligence/internal/middleware"
	"github.com/capitalize-ai/assistant-intelligence/internal/model"
	"github.com/capitalize-ai/assistant-intelligence/internal/service"
	"github.com/capitalize-ai/assistant-intelligence/internal/store"
)

// IntelligenceHandler serves read access to a session's learned state.
type IntelligenceHandler struct {
	sessions     *service.SessionService
	patternStore *store.PatternStore
	prefStore    *store.PreferenceStore
	insights     *intelligence.InsightBuilder
}

// NewIntelligenceHandler creates an intelligence handler.
func NewIntelligenceHandler(sessions *service.SessionService, patterns *store.PatternStore, prefs *store.PreferenceStore, insights *intelligence.InsightBuilder) *IntelligenceHandler {
	return &IntelligenceHandler{
		sessions:     sessions,
		patternStore: patterns,
		prefStore:    prefs,
		insights:     insights,
	}
}

// Patterns handles GET /api/v1/sessions/{sessionID}/patterns.
func (h *IntelligenceHandler) Patterns(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.resolveSession(w, r)
	if !ok {
		return
	}

	patterns := h.patternStore.Load(r.Context(), sessionID)
	if patterns == nil {
		patterns = []model.ConversationPattern{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"session_id": sessionID,
		"patterns":   patterns,
	})
}

// Preferences handles GET /api/v1/sessions/{sessionID}/preferences.
func (h *IntelligenceHandler) Preferences(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.resolveSession(w, r)
	if !ok {
		return
	}

	profile := h.prefStore.Load(r.Context(), sessionID)
	if profile == nil {
		profile = &model.PreferenceProfile{SessionID: sessionID}
	}

	writeJSON(w, http.StatusOK, profile)
}

// Insight handles GET /api/v1/sessions/{sessionID}/insight. The insight is
// derived fresh from the persisted pattern snapshot.
func (h *IntelligenceHandler) Insight(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.resolveSession(w, r)
	if !ok {
		return
	}

	patterns := h.patternStore.Load(r.Context(), sessionID)
	insight := h.insights.Build(r.Context(), patterns, nil)

	writeJSON(w, http.StatusOK, insight)
}

func (h *IntelligenceHandler) resolveSession(w http.ResponseWriter, r *http.Request) (string, bool) {
	sessionID := chi.URLParam(r, "sessionID")
	if err := middleware.ValidateSessionID(sessionID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	if _, err := h.sessions.Get(r.Context(), middleware.GetTenantID(r.Context()), sessionID); err != nil {
		writeError(w, http.StatusNotFound, "session not found")
		return "", false
	}
	return sessionID, true
}
