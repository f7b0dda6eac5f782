package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/noteflow/syncserver/internal/api/httpx"
	"github.com/noteflow/syncserver/internal/api/middleware"
	"github.com/noteflow/syncserver/internal/domain"
	"github.com/noteflow/syncserver/internal/queue"
	syncpkg "github.com/noteflow/syncserver/internal/sync"
)

// Queue adapts the Operations Queue to the /sync/queue* admin surface.
type Queue struct {
	Queue       *queue.Queue
	Coordinator *syncpkg.Coordinator
	MaxRetries  int
	RetryDelay  time.Duration
}

// List serves GET /sync/queue.
func (h *Queue) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())
	httpx.WriteJSON(w, http.StatusOK, map[string]interface{}{"success": true, "items": h.Queue.List(userID)})
}

type enqueueRequest struct {
	Operation   domain.Operation `json:"operation" validate:"required"`
	MaxRetries  int              `json:"maxRetries,omitempty"`
	RetryDelayMs int64           `json:"retryDelayMs,omitempty"`
	ScheduledAt *time.Time       `json:"scheduledAt,omitempty"`
}

// Enqueue serves POST /sync/queue.
func (h *Queue) Enqueue(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	userID, _ := middleware.UserID(r.Context())

	var req enqueueRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteValidationError(w, requestID, "malformed request body: "+err.Error())
		return
	}
	if err := middleware.ValidateStruct(req.Operation); err != nil {
		httpx.WriteValidationError(w, requestID, "validation failed: "+err.Error())
		return
	}

	maxRetries := req.MaxRetries
	if maxRetries <= 0 {
		maxRetries = h.MaxRetries
	}
	retryDelay := h.RetryDelay
	if req.RetryDelayMs > 0 {
		retryDelay = time.Duration(req.RetryDelayMs) * time.Millisecond
	}
	var scheduledAt time.Time
	if req.ScheduledAt != nil {
		scheduledAt = *req.ScheduledAt
	}

	item := h.Queue.Enqueue(userID, req.Operation, maxRetries, retryDelay, scheduledAt)
	httpx.WriteJSON(w, http.StatusCreated, map[string]interface{}{"success": true, "item": item})
}

// Remove serves DELETE /sync/queue[/:opId].
func (h *Queue) Remove(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())
	opID := mux.Vars(r)["opId"]
	ok := h.Queue.Remove(userID, opID)
	httpx.WriteJSON(w, http.StatusOK, map[string]interface{}{"success": true, "removed": ok})
}

// Process serves POST /sync/queue/process, draining due pending items through
// the coordinator's single-operation dispatch path.
func (h *Queue) Process(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())
	stats := h.Queue.Process(userID, func(op domain.Operation) error {
		return h.Coordinator.ApplyQueuedOperation(r.Context(), userID, op, "")
	})
	httpx.WriteJSON(w, http.StatusOK, map[string]interface{}{"success": true, "stats": stats})
}

// Status serves GET /sync/queue/status (an alias of stats: the queue has no
// separate worker-liveness concept beyond its per-status counts).
func (h *Queue) Status(w http.ResponseWriter, r *http.Request) {
	h.Stats(w, r)
}

// Stats serves GET /sync/queue/stats.
func (h *Queue) Stats(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())
	httpx.WriteJSON(w, http.StatusOK, map[string]interface{}{"success": true, "stats": h.Queue.Stats(userID)})
}
