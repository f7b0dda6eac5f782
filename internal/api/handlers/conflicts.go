package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/noteflow/syncserver/internal/api/httpx"
	"github.com/noteflow/syncserver/internal/api/middleware"
	"github.com/noteflow/syncserver/internal/conflict"
	"github.com/noteflow/syncserver/internal/domain"
	syncpkg "github.com/noteflow/syncserver/internal/sync"
)

// Conflicts adapts the Conflict Engine's registry to the /sync/conflicts*
// surface.
type Conflicts struct {
	Engine      *conflict.Engine
	Coordinator *syncpkg.Coordinator
}

// List serves GET /sync/conflicts[?status=&limit=&page=].
func (h *Conflicts) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())
	q := r.URL.Query()

	status := domain.ConflictStatus(q.Get("status"))
	limit := parseIntDefault(q.Get("limit"), 50)
	page := parseIntDefault(q.Get("page"), 1)
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit

	conflicts := h.Engine.Registry().List(userID, status, limit, offset)
	httpx.WriteJSON(w, http.StatusOK, map[string]interface{}{"success": true, "conflicts": conflicts})
}

// Get serves GET /sync/conflicts/{id}.
func (h *Conflicts) Get(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	userID, _ := middleware.UserID(r.Context())
	id := mux.Vars(r)["id"]

	c, ok := h.Engine.Registry().Lookup(id, userID)
	if !ok {
		httpx.WriteError(w, requestID, http.StatusNotFound, domain.ErrNotFound)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]interface{}{"success": true, "conflict": c})
}

type resolveRequest struct {
	Strategy domain.Strategy `json:"strategy" validate:"required,oneof=server-wins client-wins latest-wins merge append-suffix manual"`
}

// Resolve serves POST /sync/conflicts/{id}/resolve.
func (h *Conflicts) Resolve(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	userID, _ := middleware.UserID(r.Context())
	id := mux.Vars(r)["id"]

	var req resolveRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteValidationError(w, requestID, "malformed request body: "+err.Error())
		return
	}
	if err := middleware.ValidateStruct(req); err != nil {
		httpx.WriteValidationError(w, requestID, "validation failed: "+err.Error())
		return
	}

	if err := h.resolveOne(r, id, userID, req.Strategy); err != nil {
		httpx.WriteError(w, requestID, http.StatusBadRequest, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (h *Conflicts) resolveOne(r *http.Request, conflictID string, userID int64, strategy domain.Strategy) error {
	res, c, err := h.Engine.Resolve(conflictID, userID, strategy)
	if err != nil {
		return err
	}
	if !res.Success {
		return domain.ErrConflictUnresolved
	}
	return h.Coordinator.ApplyResolution(r.Context(), userID, c.EntityKind, c.EntityID, res, c.Server.Version)
}

// Ignore serves POST /sync/conflicts/{id}/ignore.
func (h *Conflicts) Ignore(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	userID, _ := middleware.UserID(r.Context())
	id := mux.Vars(r)["id"]

	if !h.Engine.Registry().MarkIgnored(id, userID) {
		httpx.WriteError(w, requestID, http.StatusNotFound, domain.ErrNotFound)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

type batchResolveRequest struct {
	ConflictIDs []string        `json:"conflictIds" validate:"required,min=1"`
	Strategy    domain.Strategy `json:"strategy" validate:"required,oneof=server-wins client-wins latest-wins merge append-suffix manual"`
}

type batchResolveResult struct {
	ConflictID string `json:"conflictId"`
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
}

// BatchResolve serves POST /sync/conflicts/resolve.
func (h *Conflicts) BatchResolve(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	userID, _ := middleware.UserID(r.Context())

	var req batchResolveRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteValidationError(w, requestID, "malformed request body: "+err.Error())
		return
	}
	if err := middleware.ValidateStruct(req); err != nil {
		httpx.WriteValidationError(w, requestID, "validation failed: "+err.Error())
		return
	}

	results := make([]batchResolveResult, 0, len(req.ConflictIDs))
	for _, id := range req.ConflictIDs {
		if err := h.resolveOne(r, id, userID, req.Strategy); err != nil {
			results = append(results, batchResolveResult{ConflictID: id, Success: false, Error: err.Error()})
			continue
		}
		results = append(results, batchResolveResult{ConflictID: id, Success: true})
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]interface{}{"success": true, "results": results})
}

// Stats serves GET /sync/conflicts/stats.
func (h *Conflicts) Stats(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())
	httpx.WriteJSON(w, http.StatusOK, map[string]interface{}{"success": true, "stats": h.Engine.Registry().Stats(userID)})
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
