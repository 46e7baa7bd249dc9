package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/capitalize-ai/assistant-intelligence/internal/middleware"
	"github.com/capitalize-ai/assistant-intelligence/internal/model"
	"github.com/capitalize-ai/assistant-intelligence/internal/service"
)

// ChatHandler handles the message-processing endpoint.
type ChatHandler struct {
	chat *service.ChatService
}

// NewChatHandler creates a chat handler.
func NewChatHandler(chat *service.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// Send handles POST /api/v1/sessions/{sessionID}/chat. Pipeline failures never
// surface as 5xx: the orchestrator always returns a usable bundle. Only bad
// input, a missing session, or a message-log write failure produce errors.
func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if err := middleware.ValidateSessionID(sessionID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req model.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := middleware.ValidateMessageContent(req.Content); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	tenantID := middleware.GetTenantID(r.Context())
	bundle, err := h.chat.Send(r.Context(), tenantID, sessionID, &req)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			writeError(w, http.StatusNotFound, "session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to record message")
		return
	}

	writeJSON(w, http.StatusOK, bundle)
}
