// Package handlers implements the HTTP surface described in spec §6, one
// file per route group, each a thin adapter from net/http onto the
// Coordinator/Engine/Queue/Manager APIs those packages already expose.
package handlers

import (
	"net/http"
	"time"

	"github.com/noteflow/syncserver/internal/api/httpx"
	"github.com/noteflow/syncserver/internal/api/middleware"
	"github.com/noteflow/syncserver/internal/domain"
	syncpkg "github.com/noteflow/syncserver/internal/sync"
)

// Sync wraps the Sync Coordinator for the batch sync and poll routes.
type Sync struct {
	Coordinator *syncpkg.Coordinator
	// PollIntervalMs is advertised to clients as the suggested cadence for
	// their next poll when not in fallback.
	PollIntervalMs int64
}

// Handle serves POST /sync/sync.
func (h *Sync) Handle(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	userID, _ := middleware.UserID(r.Context())

	var req domain.SyncRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteValidationError(w, requestID, "malformed request body: "+err.Error())
		return
	}
	if err := middleware.ValidateStruct(req); err != nil {
		httpx.WriteValidationError(w, requestID, "validation failed: "+err.Error())
		return
	}

	resp, err := h.Coordinator.Sync(r.Context(), userID, req)
	if err != nil {
		httpx.WriteError(w, requestID, http.StatusBadRequest, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// pollRequest is the POST /sync/poll body.
type pollRequest struct {
	Since        *time.Time         `json:"since,omitempty"`
	EntityKinds  []domain.EntityKind `json:"entityKinds,omitempty"`
}

type pollResponse struct {
	Updates             []domain.ServerUpdate `json:"updates"`
	HasMore             bool                  `json:"hasMore"`
	ServerTime          time.Time             `json:"serverTime"`
	SuggestedIntervalMs int64                 `json:"suggestedIntervalMs"`
}

// Poll serves POST /sync/poll, the pull-mode incremental fetch.
func (h *Sync) Poll(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	userID, _ := middleware.UserID(r.Context())

	var req pollRequest
	if r.ContentLength > 0 {
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteValidationError(w, requestID, "malformed request body: "+err.Error())
			return
		}
	}
	since := time.Unix(0, 0)
	if req.Since != nil {
		since = *req.Since
	}

	updates, err := h.Coordinator.Poll(r.Context(), userID, since, req.EntityKinds)
	if err != nil {
		httpx.WriteError(w, requestID, http.StatusInternalServerError, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, pollResponse{
		Updates:             updates,
		HasMore:             false,
		ServerTime:          time.Now(),
		SuggestedIntervalMs: h.PollIntervalMs,
	})
}

// Status serves GET /sync/status?syncId=.
func (h *Sync) Status(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	userID, _ := middleware.UserID(r.Context())

	if syncID := r.URL.Query().Get("syncId"); syncID != "" {
		job, ok := h.Coordinator.Jobs().Get(syncID, userID)
		if !ok {
			httpx.WriteError(w, requestID, http.StatusNotFound, domain.ErrNotFound)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]interface{}{"success": true, "job": job, "progress": job.Progress()})
		return
	}
	jobs := h.Coordinator.Jobs().ListActive(userID)
	httpx.WriteJSON(w, http.StatusOK, map[string]interface{}{"success": true, "jobs": jobs})
}

type syncIDRequest struct {
	SyncID string `json:"syncId" validate:"required"`
}

// Cancel serves POST /sync/cancel.
func (h *Sync) Cancel(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	userID, _ := middleware.UserID(r.Context())

	var req syncIDRequest
	if err := httpx.DecodeJSON(r, &req); err != nil || req.SyncID == "" {
		httpx.WriteValidationError(w, requestID, "syncId is required")
		return
	}
	if !h.Coordinator.Jobs().Cancel(req.SyncID, userID) {
		httpx.WriteError(w, requestID, http.StatusNotFound, domain.ErrNotFound)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// DataDiff serves POST /sync/data-diff.
type dataDiffRequest struct {
	EntityKind    domain.EntityKind `json:"entityKind" validate:"required,oneof=note folder review"`
	EntityID      int64             `json:"entityId" validate:"required"`
	ClientPayload domain.Payload    `json:"clientPayload"`
}

func (h *Sync) DataDiff(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	userID, _ := middleware.UserID(r.Context())

	var req dataDiffRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteValidationError(w, requestID, "malformed request body: "+err.Error())
		return
	}
	if err := middleware.ValidateStruct(req); err != nil {
		httpx.WriteValidationError(w, requestID, "validation failed: "+err.Error())
		return
	}

	result, err := h.Coordinator.DataDiff(r.Context(), userID, req.EntityKind, req.EntityID, req.ClientPayload)
	if err != nil {
		httpx.WriteError(w, requestID, http.StatusInternalServerError, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]interface{}{"success": true, "diff": result})
}
