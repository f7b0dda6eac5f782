package handlers

import (
	"net/http"
	"time"

	"github.com/noteflow/syncserver/internal/api/httpx"
	"github.com/noteflow/syncserver/internal/api/middleware"
	"github.com/noteflow/syncserver/internal/fallback"
)

// Fallback adapts the Fallback Manager to the admin surface (spec §4.5
// "Both are exposed via the HTTP surface").
type Fallback struct {
	Manager *fallback.Manager
}

// Status serves GET /sync/fallback-status?clientId=.
func (h *Fallback) Status(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	clientID := r.URL.Query().Get("clientId")
	if clientID == "" {
		httpx.WriteValidationError(w, requestID, "clientId is required")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]interface{}{"success": true, "status": h.Manager.StatusFor(clientID)})
}

type forceFallbackRequest struct {
	ClientID string `json:"clientId" validate:"required"`
}

// Force serves POST /sync/force-fallback.
func (h *Fallback) Force(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	userID, _ := middleware.UserID(r.Context())

	var req forceFallbackRequest
	if err := httpx.DecodeJSON(r, &req); err != nil || req.ClientID == "" {
		httpx.WriteValidationError(w, requestID, "clientId is required")
		return
	}
	h.Manager.ForceFallback(r.Context(), userID, req.ClientID, time.Now(), func(fallback.PullResponse) {})
	httpx.WriteJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// Exit serves POST /sync/exit-fallback.
func (h *Fallback) Exit(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var req forceFallbackRequest
	if err := httpx.DecodeJSON(r, &req); err != nil || req.ClientID == "" {
		httpx.WriteValidationError(w, requestID, "clientId is required")
		return
	}
	h.Manager.ExitFallback(req.ClientID)
	httpx.WriteJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}
