// Package conflict implements the classification, policy, and resolution
// engine described in spec §4.2: given a proposed client operation and the
// current server record it detects the conflict kind (if any), suggests a
// strategy, and executes resolution on demand. It owns the in-memory
// conflict registry.
package conflict

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/noteflow/syncserver/internal/domain"
	"github.com/noteflow/syncserver/internal/repository"
)

// DefaultPolicy is the per-kind suggested-strategy table (spec §4.2).
var DefaultPolicy = map[domain.ConflictKind]domain.Strategy{
	domain.ConflictConcurrentUpdate: domain.StrategyLatestWins,
	domain.ConflictDeleteVsUpdate:   domain.StrategyServerWins,
	domain.ConflictUpdateVsDelete:   domain.StrategyLatestWins,
	domain.ConflictRename:           domain.StrategyAppendSuffix,
	domain.ConflictFolderMove:       domain.StrategyLatestWins,
	domain.ConflictParentMissing:    domain.StrategyManual,
}

// concurrentFieldChangeWindow bounds how far back the recent-ops signal
// looks when deciding whether a title change is a genuine concurrent rename.
const concurrentFieldChangeWindow = 2 * time.Minute

// RecentOpsIndex is the subset of recentops.Index the engine consumes; kept
// narrow here so the engine package does not import the redis client.
type RecentOpsIndex interface {
	WasConcurrentlyChanged(ctx context.Context, entityKind string, entityID int64, field string, excludeOperationID string, asOf time.Time, window time.Duration) bool
}

// CurrentRecord is the engine's view of the server-side state at detection
// time, produced by the coordinator from whichever repository kind applies.
type CurrentRecord struct {
	Exists     bool
	Tombstone  bool
	Version    int64
	Payload    domain.Payload
	ModifiedAt time.Time
	ModifiedBy string
}

// Engine is the conflict detection/resolution engine. One Engine instance is
// shared process-wide.
type Engine struct {
	repo      repository.Repository
	recent    RecentOpsIndex
	registry  *Registry
	policy    map[domain.ConflictKind]domain.Strategy
	retention Retention
}

// Retention bounds the conflict registry.
type Retention struct {
	Days     int
	MaxCount int
}

// DefaultRetention matches spec §6 defaults.
var DefaultRetention = Retention{Days: 30, MaxCount: 1000}

// New creates an Engine. recent may be nil, in which case the "concurrent
// field change" predicate always returns false (spec §4.2 Open Questions).
func New(repo repository.Repository, recent RecentOpsIndex, retention Retention) *Engine {
	if recent == nil {
		recent = noopRecentOps{}
	}
	policy := make(map[domain.ConflictKind]domain.Strategy, len(DefaultPolicy))
	for k, v := range DefaultPolicy {
		policy[k] = v
	}
	return &Engine{
		repo:      repo,
		recent:    recent,
		registry:  NewRegistry(retention),
		policy:    policy,
		retention: retention,
	}
}

type noopRecentOps struct{}

func (noopRecentOps) WasConcurrentlyChanged(context.Context, string, int64, string, string, time.Time, time.Duration) bool {
	return false
}

// Registry exposes the engine's conflict registry.
func (e *Engine) Registry() *Registry { return e.registry }

// Detect runs the decision procedure in spec §4.2 and returns a conflict
// record if the operation diverges from current server state, nil
// otherwise. It does not mutate the registry; callers that want the
// conflict persisted call Registry().Save.
func (e *Engine) Detect(ctx context.Context, userID int64, op domain.Operation, current CurrentRecord) (*domain.Conflict, error) {
	// 1. create never conflicts.
	if op.Kind == domain.OpCreate {
		return nil, nil
	}

	entityID := int64(0)
	if op.EntityID != nil {
		entityID = *op.EntityID
	}

	// 2. absent/tombstone server record vs. an update.
	if (!current.Exists || current.Tombstone) && op.Kind == domain.OpUpdate {
		kind := domain.ConflictUpdateVsDelete
		// "equivalently delete-vs-update when the server side is the
		// deleter": the server deleted first (its ModifiedAt predates the
		// client's claimed edit) — so from the client's perspective it is
		// really the server winning a race it didn't know about.
		if !current.ModifiedAt.IsZero() && current.ModifiedAt.Before(op.ClientTimestamp) {
			kind = domain.ConflictDeleteVsUpdate
		}
		return e.build(userID, op, entityID, kind, current), nil
	}

	// 3. stale fromVersion.
	if current.Exists && current.Version > op.FromVersion {
		kind := domain.ConflictConcurrentUpdate
		if _, ok := op.Changes[domain.FieldTitle]; ok && !canonicalEqual(current.Payload[domain.FieldTitle], op.Changes[domain.FieldTitle]) {
			// A title change only classifies as a genuine rename race when the
			// recent-ops signal confirms a concurrent title edit; absent that
			// signal (the sanctioned default with no recent-ops index wired)
			// it is an ordinary concurrent update, resolved by latest-wins.
			if e.recent.WasConcurrentlyChanged(ctx, string(op.EntityKind), entityID, domain.FieldTitle, op.OperationID, op.ClientTimestamp, concurrentFieldChangeWindow) {
				kind = domain.ConflictRename
			}
		} else if _, ok := op.Changes[domain.FieldFolderID]; ok && !canonicalEqual(current.Payload[domain.FieldFolderID], op.Changes[domain.FieldFolderID]) {
			kind = domain.ConflictFolderMove
		} else if _, ok := op.Changes[domain.FieldParentID]; ok && !canonicalEqual(current.Payload[domain.FieldParentID], op.Changes[domain.FieldParentID]) {
			kind = domain.ConflictFolderMove
		}
		return e.build(userID, op, entityID, kind, current), nil
	}

	// 4. parent integrity check, only reached when 1-3 did not match.
	if op.Kind == domain.OpUpdate {
		if parentConflict, err := e.checkParentIntegrity(ctx, userID, op, entityID, current); err != nil {
			return nil, err
		} else if parentConflict != nil {
			return parentConflict, nil
		}
	}

	// 5. no conflict.
	return nil, nil
}

func (e *Engine) checkParentIntegrity(ctx context.Context, userID int64, op domain.Operation, entityID int64, current CurrentRecord) (*domain.Conflict, error) {
	switch op.EntityKind {
	case domain.KindNote:
		raw, present := op.Changes[domain.FieldFolderID]
		if !present || raw == nil {
			return nil, nil
		}
		fid, ok := int64FromPayload(op.Changes, domain.FieldFolderID)
		if !ok {
			return nil, nil
		}
		ok2, err := e.repo.Folders().Exists(ctx, userID, fid)
		if err != nil {
			return nil, fmt.Errorf("checking parent folder %d: %w", fid, err)
		}
		if !ok2 {
			return e.build(userID, op, entityID, domain.ConflictParentMissing, current), nil
		}
		return nil, nil

	case domain.KindFolder:
		raw, present := op.Changes[domain.FieldParentID]
		if !present || raw == nil {
			return nil, nil
		}
		pid, ok := int64FromPayload(op.Changes, domain.FieldParentID)
		if !ok {
			return nil, nil
		}
		if pid == entityID {
			return e.build(userID, op, entityID, domain.ConflictParentMissing, current), nil
		}
		exists, err := e.repo.Folders().Exists(ctx, userID, pid)
		if err != nil {
			return nil, fmt.Errorf("checking parent folder %d: %w", pid, err)
		}
		if !exists {
			return e.build(userID, op, entityID, domain.ConflictParentMissing, current), nil
		}
		cyclic, err := e.wouldCycle(ctx, userID, entityID, pid)
		if err != nil {
			return nil, err
		}
		if cyclic {
			return e.build(userID, op, entityID, domain.ConflictParentMissing, current), nil
		}
		return nil, nil

	default:
		return nil, nil
	}
}

// wouldCycle walks newParentID's ancestor chain; if entityID appears, making
// newParentID the parent of entityID would create a cycle.
func (e *Engine) wouldCycle(ctx context.Context, userID, entityID, newParentID int64) (bool, error) {
	visited := map[int64]bool{}
	cur := newParentID
	for {
		if cur == entityID {
			return true, nil
		}
		if visited[cur] {
			return false, nil // pre-existing cycle elsewhere; not this op's doing
		}
		visited[cur] = true
		f, ok, err := e.repo.Folders().Get(ctx, userID, cur)
		if err != nil {
			return false, fmt.Errorf("walking folder ancestry: %w", err)
		}
		if !ok || f.ParentID == nil {
			return false, nil
		}
		cur = *f.ParentID
	}
}

func (e *Engine) build(userID int64, op domain.Operation, entityID int64, kind domain.ConflictKind, current CurrentRecord) *domain.Conflict {
	fields := fieldDiff(current.Payload, op.EffectivePayload())
	suggested := e.policy[kind]
	if suggested == "" {
		suggested = domain.StrategyManual
	}
	return &domain.Conflict{
		ConflictID:  uuid.NewString(),
		UserID:      userID,
		Kind:        kind,
		EntityKind:  op.EntityKind,
		EntityID:    entityID,
		OperationID: op.OperationID,
		Server: domain.Snapshot{
			Version:    current.Version,
			Payload:    current.Payload,
			ModifiedAt: current.ModifiedAt,
			ModifiedBy: current.ModifiedBy,
		},
		Client: domain.Snapshot{
			Version:       0,
			Payload:       op.EffectivePayload(),
			ModifiedAt:    op.ClientTimestamp,
			FromVersion:   op.FromVersion,
			OperationKind: string(op.Kind),
		},
		ConflictFields: fields,
		Suggested:      suggested,
		Status:         domain.ConflictUnresolved,
		DetectedAt:     time.Now(),
	}
}

func int64FromPayload(p domain.Payload, key string) (int64, bool) {
	v, ok := p[key]
	if !ok || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	}
	return 0, false
}

// Resolve executes strategy against conflict and, on success, transitions
// the conflict to resolved in the registry (spec §4.2 "Resolution
// execution"). The caller is responsible for persisting ResolvedPayload via
// the repository using NewVersion.
func (e *Engine) Resolve(conflictID string, userID int64, strategy domain.Strategy) (Resolution, *domain.Conflict, error) {
	c, ok := e.registry.lookupAny(conflictID, userID)
	if !ok {
		return Resolution{}, nil, domain.ErrNotFound
	}
	res, err := Execute(c, strategy, time.Now())
	if err != nil {
		return res, c, err
	}
	if res.Success {
		e.registry.markResolved(conflictID, strategy, res.ResolvedPayload)
	}
	return res, c, nil
}
