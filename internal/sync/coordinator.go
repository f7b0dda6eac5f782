// Package sync implements the Sync Coordinator described in spec §4.3: it
// accepts a batch sync request, runs each operation through the Conflict
// Engine, applies non-conflicting operations via the Repository, collects
// server-side changes the client has not yet seen, and returns a structured
// response. It tracks in-flight sync jobs and exposes progress/cancellation.
package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/noteflow/syncserver/internal/conflict"
	"github.com/noteflow/syncserver/internal/domain"
	"github.com/noteflow/syncserver/internal/repository"
)

// SupportedProtocolVersion is the only protocolVersion the coordinator
// accepts (spec §4.3 step 1).
const SupportedProtocolVersion = 1

// Coordinator is the Sync Coordinator. One instance is shared process-wide.
type Coordinator struct {
	repo    repository.Repository
	engine  *conflict.Engine
	jobs    *JobStore
	idem    *idempotencyStore
	logger  *slog.Logger
	timeout time.Duration
}

// New creates a Coordinator. timeout bounds total wall-clock per job (spec
// §5 "Timeouts", default 60s).
func New(repo repository.Repository, engine *conflict.Engine, logger *slog.Logger, timeout time.Duration) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Coordinator{repo: repo, engine: engine, jobs: newJobStore(), idem: newIdempotencyStore(), logger: logger, timeout: timeout}
}

// Jobs exposes the job store for status/cancel HTTP handlers.
func (c *Coordinator) Jobs() *JobStore { return c.jobs }

// Sync runs the algorithm in spec §4.3: reject unknown protocol versions,
// allocate a job, dispatch every operation through detect/resolve/apply in
// submission order, collect server updates, and build the response.
func (c *Coordinator) Sync(ctx context.Context, userID int64, req domain.SyncRequest) (*domain.SyncResponse, error) {
	if req.ProtocolVersion != SupportedProtocolVersion {
		return nil, fmt.Errorf("protocol version %d: %w", req.ProtocolVersion, domain.ErrProtocolMismatch)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	h := c.jobs.create(userID, req.ClientID, len(req.Operations))

	defaultStrategy := req.DefaultResolutionStrategy

	var results []domain.OperationResult
	var conflicts []*domain.Conflict

	for _, op := range req.Operations {
		if h.isCancelled() {
			break
		}
		select {
		case <-ctx.Done():
			h.update(func(j *domain.SyncJob) {
				j.Status = domain.SyncStatusFailed
				now := time.Now()
				j.EndTime = &now
			})
			return nil, fmt.Errorf("sync job %s: %w", h.job.SyncID, domain.ErrTimedOut)
		default:
		}

		result, conf := c.dispatch(ctx, userID, op, defaultStrategy)
		results = append(results, result)
		if conf != nil {
			conflicts = append(conflicts, conf)
		}

		h.update(func(j *domain.SyncJob) {
			j.Counters.Completed++
			if result.Success {
				j.Counters.Successful++
			} else {
				j.Counters.Failed++
			}
			if conf != nil {
				j.Counters.ConflictsDetected++
				if conf.Status == domain.ConflictResolved {
					j.Counters.ConflictsResolved++
				}
			}
		})
	}

	serverUpdates, err := c.collectServerUpdates(ctx, userID, req.ClientState.LastSyncTime, req.EntityKindsWanted)
	if err != nil {
		c.logger.Error("collecting server updates failed", "error", err, "userId", userID)
	}

	now := time.Now()
	finalStatus := domain.SyncStatusSuccess
	for _, conf := range conflicts {
		if conf.Status == domain.ConflictUnresolved {
			finalStatus = domain.SyncStatusConflict
			break
		}
	}
	if h.isCancelled() {
		finalStatus = domain.SyncStatusCancelled
	}

	h.update(func(j *domain.SyncJob) {
		if j.Status == domain.SyncStatusSyncing {
			j.Status = finalStatus
			j.EndTime = &now
		}
	})

	c.logger.Info("sync completed",
		"syncId", h.job.SyncID, "userId", userID, "clientId", req.ClientID,
		"operations", len(req.Operations), "conflicts", len(conflicts), "status", finalStatus,
	)

	return &domain.SyncResponse{
		RequestID:     req.RequestID,
		ServerTime:    now,
		Status:        finalStatus,
		Operations:    results,
		ServerUpdates: serverUpdates,
		Conflicts:     conflicts,
		NewClientState: domain.ClientState{
			ClientID:     req.ClientID,
			LastSyncTime: now,
			LastSyncID:   h.job.SyncID,
		},
	}, nil
}

// dispatch processes a single operation: load current state, detect,
// resolve-or-apply, and report the outcome. It never returns an error;
// per-operation failures are encoded in the OperationResult (spec §4.3 step
// 3d, §7 "per-operation errors never abort a batch").
func (c *Coordinator) dispatch(ctx context.Context, userID int64, op domain.Operation, defaultStrategy domain.Strategy) (domain.OperationResult, *domain.Conflict) {
	current, err := c.loadCurrent(ctx, userID, op)
	if err != nil {
		return fail(op, err), nil
	}

	conf, err := c.engine.Detect(ctx, userID, op, current)
	if err != nil {
		return fail(op, err), nil
	}

	if conf != nil {
		c.engine.Registry().Save(conf)
		c.logger.Info("conflict detected",
			"conflictId", conf.ConflictID, "kind", conf.Kind, "entityKind", conf.EntityKind, "entityId", conf.EntityID,
		)
		strategy := defaultStrategy
		if strategy == "" {
			strategy = conf.Suggested
		}
		res, resolved, rerr := c.engine.Resolve(conf.ConflictID, userID, strategy)
		if rerr != nil || !res.Success {
			// Manual strategy or unknown strategy: conflict stays
			// unresolved, surfaced to the client, operation not applied.
			return domain.OperationResult{
				OperationID: op.OperationID,
				Success:     false,
				ErrorCode:   "conflict-unresolved",
				Error:       domain.ErrConflictUnresolved.Error(),
			}, resolved
		}
		if res.NewVersion > conf.Server.Version {
			// Only strategies that actually change server state persist a
			// write; server-wins (and latest-wins/merge ties resolved to the
			// server) leave the server snapshot bit-identical (spec §8).
			if err := c.applyResolved(ctx, userID, op, res); err != nil {
				return fail(op, err), resolved
			}
		}
		c.logger.Info("conflict auto-resolved", "conflictId", conf.ConflictID, "strategy", strategy)
		return domain.OperationResult{
			OperationID: op.OperationID,
			Success:     true,
			Entity:      res.ResolvedPayload,
			Version:     res.NewVersion,
		}, resolved
	}

	return c.apply(ctx, userID, op)
}

func fail(op domain.Operation, err error) domain.OperationResult {
	return domain.OperationResult{
		OperationID: op.OperationID,
		Success:     false,
		ErrorCode:   domain.ErrorCode(err),
		Error:       err.Error(),
	}
}

// loadCurrent loads the engine's view of server state for op, skipped for
// create operations (spec §4.3 step 3a).
func (c *Coordinator) loadCurrent(ctx context.Context, userID int64, op domain.Operation) (conflict.CurrentRecord, error) {
	if op.Kind == domain.OpCreate || op.EntityID == nil {
		return conflict.CurrentRecord{}, nil
	}
	id := *op.EntityID
	switch op.EntityKind {
	case domain.KindNote:
		n, ok, err := c.repo.Notes().Get(ctx, userID, id)
		if err != nil {
			return conflict.CurrentRecord{}, err
		}
		if !ok {
			return conflict.CurrentRecord{}, nil
		}
		return conflict.CurrentRecord{Exists: true, Tombstone: n.IsTombstone(), Version: n.Version, Payload: notePayload(n), ModifiedAt: n.UpdatedAt}, nil
	case domain.KindFolder:
		f, ok, err := c.repo.Folders().Get(ctx, userID, id)
		if err != nil {
			return conflict.CurrentRecord{}, err
		}
		if !ok {
			return conflict.CurrentRecord{}, nil
		}
		return conflict.CurrentRecord{Exists: true, Tombstone: f.IsTombstone(), Version: f.Version, Payload: folderPayload(f), ModifiedAt: f.UpdatedAt}, nil
	case domain.KindReview:
		r, ok, err := c.repo.Reviews().Get(ctx, userID, id)
		if err != nil {
			return conflict.CurrentRecord{}, err
		}
		if !ok {
			return conflict.CurrentRecord{}, nil
		}
		return conflict.CurrentRecord{Exists: true, Tombstone: r.IsTombstone(), Version: r.Version, Payload: reviewPayload(r), ModifiedAt: r.UpdatedAt}, nil
	default:
		return conflict.CurrentRecord{}, fmt.Errorf("unknown entity kind %q: %w", op.EntityKind, domain.ErrInvariantViolation)
	}
}

// apply dispatches a non-conflicting operation to the repository.
func (c *Coordinator) apply(ctx context.Context, userID int64, op domain.Operation) (domain.OperationResult, *domain.Conflict) {
	switch op.Kind {
	case domain.OpRead:
		current, err := c.loadCurrent(ctx, userID, op)
		if err != nil {
			return fail(op, err), nil
		}
		if !current.Exists {
			return fail(op, fmt.Errorf("entity %v: %w", op.EntityID, domain.ErrNotFound)), nil
		}
		return domain.OperationResult{OperationID: op.OperationID, Success: true, Entity: current.Payload, Version: current.Version}, nil

	case domain.OpCreate:
		// Resubmitting the same operationId must yield exactly one created
		// entity (spec §8): short-circuit to the prior result instead of
		// dispatching another repository Create.
		if cached, ok := c.idem.lookup(userID, op.OperationID); ok {
			return cached, nil
		}
		payload, version, err := c.create(ctx, userID, op)
		if err != nil {
			return fail(op, err), nil
		}
		result := domain.OperationResult{OperationID: op.OperationID, Success: true, Entity: payload, Version: version}
		c.idem.record(userID, op.OperationID, result)
		return result, nil

	case domain.OpUpdate:
		payload, version, err := c.update(ctx, userID, op, nil)
		if err != nil {
			return fail(op, err), nil
		}
		return domain.OperationResult{OperationID: op.OperationID, Success: true, Entity: payload, Version: version}, nil

	case domain.OpDelete:
		version, err := c.softDelete(ctx, userID, op)
		if err != nil {
			return fail(op, err), nil
		}
		return domain.OperationResult{OperationID: op.OperationID, Success: true, Version: version}, nil

	default:
		return fail(op, fmt.Errorf("operation kind %q: %w", op.Kind, domain.ErrInvariantViolation)), nil
	}
}

// applyResolved persists an auto-resolved conflict's outcome, using the
// resolution's NewVersion as the expected version so the repository's own
// monotonic version check still applies.
func (c *Coordinator) applyResolved(ctx context.Context, userID int64, op domain.Operation, res conflict.Resolution) error {
	_, _, err := c.update(ctx, userID, domain.Operation{
		EntityKind: op.EntityKind,
		EntityID:   op.EntityID,
		Changes:    res.ResolvedPayload,
	}, nil)
	if errors.Is(err, domain.ErrNotFound) && op.EntityID != nil {
		// update-vs-delete resolved to client-wins/latest-wins against a
		// tombstoned entity: nothing to update, the tombstone already
		// reflects server-wins; treat as success with no further write.
		return nil
	}
	return err
}

func (c *Coordinator) create(ctx context.Context, userID int64, op domain.Operation) (domain.Payload, int64, error) {
	switch op.EntityKind {
	case domain.KindNote:
		n, err := c.repo.Notes().Create(ctx, userID, op.Payload)
		if err != nil {
			return nil, 0, err
		}
		return notePayload(n), n.Version, nil
	case domain.KindFolder:
		f, err := c.repo.Folders().Create(ctx, userID, op.Payload)
		if err != nil {
			return nil, 0, err
		}
		return folderPayload(f), f.Version, nil
	case domain.KindReview:
		r, err := c.repo.Reviews().Create(ctx, userID, op.Payload)
		if err != nil {
			return nil, 0, err
		}
		return reviewPayload(r), r.Version, nil
	default:
		return nil, 0, fmt.Errorf("entity kind %q: %w", op.EntityKind, domain.ErrInvariantViolation)
	}
}

func (c *Coordinator) update(ctx context.Context, userID int64, op domain.Operation, expectedVersion *int64) (domain.Payload, int64, error) {
	if op.EntityID == nil {
		return nil, 0, fmt.Errorf("update requires entityId: %w", domain.ErrInvariantViolation)
	}
	id := *op.EntityID
	switch op.EntityKind {
	case domain.KindNote:
		n, err := c.repo.Notes().Update(ctx, userID, id, op.Changes, expectedVersion)
		if err != nil {
			return nil, 0, err
		}
		return notePayload(n), n.Version, nil
	case domain.KindFolder:
		f, err := c.repo.Folders().Update(ctx, userID, id, op.Changes, expectedVersion)
		if err != nil {
			return nil, 0, err
		}
		return folderPayload(f), f.Version, nil
	case domain.KindReview:
		r, err := c.repo.Reviews().Update(ctx, userID, id, op.Changes, expectedVersion)
		if err != nil {
			return nil, 0, err
		}
		return reviewPayload(r), r.Version, nil
	default:
		return nil, 0, fmt.Errorf("entity kind %q: %w", op.EntityKind, domain.ErrInvariantViolation)
	}
}

func (c *Coordinator) softDelete(ctx context.Context, userID int64, op domain.Operation) (int64, error) {
	if op.EntityID == nil {
		return 0, fmt.Errorf("delete requires entityId: %w", domain.ErrInvariantViolation)
	}
	id := *op.EntityID
	switch op.EntityKind {
	case domain.KindNote:
		n, err := c.repo.Notes().SoftDelete(ctx, userID, id)
		if err != nil {
			return 0, err
		}
		return n.Version, nil
	case domain.KindFolder:
		f, err := c.repo.Folders().SoftDelete(ctx, userID, id)
		if err != nil {
			return 0, err
		}
		return f.Version, nil
	case domain.KindReview:
		r, err := c.repo.Reviews().SoftDelete(ctx, userID, id)
		if err != nil {
			return 0, err
		}
		return r.Version, nil
	default:
		return 0, fmt.Errorf("entity kind %q: %w", op.EntityKind, domain.ErrInvariantViolation)
	}
}

// collectServerUpdates gathers entities changed since `since` across the
// requested kinds (all three if kinds is empty), turning tombstones into
// delete updates with no payload (spec §4.3 step 4).
func (c *Coordinator) collectServerUpdates(ctx context.Context, userID int64, since time.Time, kinds []domain.EntityKind) ([]domain.ServerUpdate, error) {
	want := func(k domain.EntityKind) bool {
		if len(kinds) == 0 {
			return true
		}
		for _, w := range kinds {
			if w == k {
				return true
			}
		}
		return false
	}

	var updates []domain.ServerUpdate

	if want(domain.KindNote) {
		notes, err := c.repo.Notes().ListChangedSince(ctx, userID, since)
		if err != nil {
			return nil, fmt.Errorf("listing changed notes: %w", err)
		}
		for _, n := range notes {
			updates = append(updates, toServerUpdate(domain.KindNote, n.Envelope, notePayload(n)))
		}
	}
	if want(domain.KindFolder) {
		folders, err := c.repo.Folders().ListChangedSince(ctx, userID, since)
		if err != nil {
			return nil, fmt.Errorf("listing changed folders: %w", err)
		}
		for _, f := range folders {
			updates = append(updates, toServerUpdate(domain.KindFolder, f.Envelope, folderPayload(f)))
		}
	}
	if want(domain.KindReview) {
		reviews, err := c.repo.Reviews().ListChangedSince(ctx, userID, since)
		if err != nil {
			return nil, fmt.Errorf("listing changed reviews: %w", err)
		}
		for _, r := range reviews {
			updates = append(updates, toServerUpdate(domain.KindReview, r.Envelope, reviewPayload(r)))
		}
	}
	return updates, nil
}

// ApplyResolution persists a conflict resolution's outcome against
// entityKind/entityID, mirroring the write dispatch performs automatically
// when a conflict surfaces mid-sync. Used by the conflict admin endpoints to
// commit an out-of-band resolve/batch-resolve call. serverVersion is the
// conflict's recorded server version; resolutions that leave it unchanged
// (server-wins, or a tie resolved to the server) write nothing.
func (c *Coordinator) ApplyResolution(ctx context.Context, userID int64, entityKind domain.EntityKind, entityID int64, res conflict.Resolution, serverVersion int64) error {
	if res.NewVersion <= serverVersion {
		return nil
	}
	return c.applyResolved(ctx, userID, domain.Operation{EntityKind: entityKind, EntityID: &entityID}, res)
}

// ApplyQueuedOperation runs a single operation through the same
// detect/resolve/apply path Sync uses for each batch entry, for the queue's
// Process loop to drive one retried or scheduled operation at a time.
func (c *Coordinator) ApplyQueuedOperation(ctx context.Context, userID int64, op domain.Operation, defaultStrategy domain.Strategy) error {
	result, conflictRecord := c.dispatch(ctx, userID, op, defaultStrategy)
	if conflictRecord != nil {
		return fmt.Errorf("operation %s left an unresolved conflict: %w", op.OperationID, domain.ErrConflictUnresolved)
	}
	if !result.Success {
		return fmt.Errorf("operation %s: %s", op.OperationID, result.Error)
	}
	return nil
}

// Poll collects server updates since a cursor for the HTTP pull surface
// (POST /sync/poll), independent of a full sync job: no operations are
// dispatched, nothing is written, and no conflict detection runs.
func (c *Coordinator) Poll(ctx context.Context, userID int64, since time.Time, kinds []domain.EntityKind) ([]domain.ServerUpdate, error) {
	return c.collectServerUpdates(ctx, userID, since, kinds)
}

// DataDiffResult is the response body for POST /sync/data-diff.
type DataDiffResult struct {
	Exists        bool            `json:"exists"`
	ServerVersion int64           `json:"serverVersion,omitempty"`
	ServerEntity  domain.Payload  `json:"serverEntity,omitempty"`
	ConflictFields []string       `json:"conflictFields"`
}

// DataDiff compares a client-held copy of an entity against the current
// server record field by field, without mutating anything or running the
// conflict engine's classification. Used by clients to decide whether a
// pull is worth fetching in full before committing to a write.
func (c *Coordinator) DataDiff(ctx context.Context, userID int64, kind domain.EntityKind, entityID int64, clientPayload domain.Payload) (DataDiffResult, error) {
	current, err := c.loadCurrent(ctx, userID, domain.Operation{EntityKind: kind, EntityID: &entityID})
	if err != nil {
		return DataDiffResult{}, err
	}
	if !current.Exists {
		return DataDiffResult{Exists: false}, nil
	}
	return DataDiffResult{
		Exists:         true,
		ServerVersion:  current.Version,
		ServerEntity:   current.Payload,
		ConflictFields: conflict.FieldDiff(current.Payload, clientPayload),
	}, nil
}

func toServerUpdate(kind domain.EntityKind, env domain.Envelope, payload domain.Payload) domain.ServerUpdate {
	if env.IsTombstone() {
		return domain.ServerUpdate{
			EntityKind: kind, EntityID: env.ID, UpdateKind: domain.UpdateFull,
			Operation: domain.OpDelete, Version: env.Version, ModifiedAt: env.UpdatedAt,
		}
	}
	return domain.ServerUpdate{
		EntityKind: kind, EntityID: env.ID, UpdateKind: domain.UpdateIncremental,
		Operation: domain.OpUpdate, Version: env.Version, Payload: payload, ModifiedAt: env.UpdatedAt,
	}
}
