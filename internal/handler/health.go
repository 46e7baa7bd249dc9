package handler

import (
	"net/http"

	natsclient "github.com/capitalize-ai/assistant-intelligence/internal/nats"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	nats *natsclient.Client
}

// NewHealthHandler creates a health handler.
func NewHealthHandler(nc *natsclient.Client) *HealthHandler {
	return &HealthHandler{nats: nc}
}

// Health returns liveness status.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready returns readiness status. The service is degraded but still serving
// when the message log is unreachable.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.nats != nil && !h.nats.IsConnected() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "degraded",
			"nats":   "disconnected",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
