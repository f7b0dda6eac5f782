package handlers

import (
	"net/http"

	"github.com/noteflow/syncserver/internal/api/httpx"
	"github.com/noteflow/syncserver/internal/api/middleware"
	"github.com/noteflow/syncserver/internal/queue"
)

// Retry adapts the queue's failed-operation reset to POST /sync/retry.
type Retry struct {
	Queue *queue.Queue
}

// Handle resets every failed operation of the caller's queue back to
// pending so the next /sync/queue/process pass picks them up again.
func (h *Retry) Handle(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())
	reset := h.Queue.ResetFailed(userID)
	httpx.WriteJSON(w, http.StatusOK, map[string]interface{}{"success": true, "reset": reset})
}
