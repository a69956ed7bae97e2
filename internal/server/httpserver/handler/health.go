package handler

import (
	"context"
	"net/http"
	"time"
)

const readyTimeout = 2 * time.Second

// handleHealth handles GET /health.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, &StatusResponse{
		Status: "healthy",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// handleReady handles GET /ready. The server is ready once the codec is
// built and the inbox answers.
func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	if reason := h.notReadyReason(r.Context()); reason != "" {
		h.writeJSON(w, r, http.StatusServiceUnavailable, &StatusResponse{
			Status: "not_ready",
			Time:   time.Now().UTC().Format(time.RFC3339),
			Reason: reason,
		})
		return
	}

	h.writeJSON(w, r, http.StatusOK, &StatusResponse{
		Status: "ready",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) notReadyReason(ctx context.Context) string {
	if h.draining.Load() {
		return "shutting down"
	}
	if h.codec == nil {
		return "schema context unavailable"
	}
	if h.inbox != nil {
		ctx, cancel := context.WithTimeout(ctx, readyTimeout)
		defer cancel()
		if _, err := h.inbox.Count(ctx); err != nil {
			return "inbox unavailable"
		}
	}
	return ""
}
