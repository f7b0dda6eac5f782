package conflict

import (
	"sort"
	"sync"
	"time"

	"github.com/noteflow/syncserver/internal/domain"
)

// Registry is the in-memory, process-wide conflict registry (spec §4.2
// "Registry"). All operations are atomic with respect to each other; a
// conflict's status transition out of unresolved is a single CAS-style
// update performed under the registry's lock.
type Registry struct {
	mu        sync.Mutex
	byID      map[string]*domain.Conflict
	retention Retention
	now       func() time.Time
}

// NewRegistry creates an empty registry governed by retention.
func NewRegistry(retention Retention) *Registry {
	return &Registry{
		byID:      make(map[string]*domain.Conflict),
		retention: retention,
		now:       time.Now,
	}
}

// Save inserts or replaces a conflict record, then runs the size guard.
func (r *Registry) Save(c *domain.Conflict) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[c.ConflictID] = c.Clone()
	r.evictOldestLocked()
}

// Lookup authorizes by userID: a conflict belonging to another user is
// reported as not found.
func (r *Registry) Lookup(conflictID string, userID int64) (*domain.Conflict, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[conflictID]
	if !ok || c.UserID != userID {
		return nil, false
	}
	return c.Clone(), true
}

// lookupAny is used internally by Resolve, which has already authorized the
// caller at the handler layer via Lookup-equivalent checks; kept private so
// external callers cannot bypass the userID check.
func (r *Registry) lookupAny(conflictID string, userID int64) (*domain.Conflict, bool) {
	return r.Lookup(conflictID, userID)
}

// List returns conflicts for userID, most-recent-first, optionally filtered
// by status, with limit/offset pagination.
func (r *Registry) List(userID int64, status domain.ConflictStatus, limit, offset int) []*domain.Conflict {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []*domain.Conflict
	for _, c := range r.byID {
		if c.UserID != userID {
			continue
		}
		if status != "" && c.Status != status {
			continue
		}
		matched = append(matched, c)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].DetectedAt.After(matched[j].DetectedAt) })

	if offset >= len(matched) {
		return nil
	}
	matched = matched[offset:]
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	out := make([]*domain.Conflict, len(matched))
	for i, c := range matched {
		out[i] = c.Clone()
	}
	return out
}

// MarkResolved is the public, authorized entry point; it delegates to the
// same CAS path the engine's Resolve uses.
func (r *Registry) MarkResolved(conflictID string, userID int64, strategy domain.Strategy, payload domain.Payload) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[conflictID]
	if !ok || c.UserID != userID || c.Status != domain.ConflictUnresolved {
		return false
	}
	r.transitionLocked(c, domain.ConflictResolved, strategy, payload)
	return true
}

func (r *Registry) markResolved(conflictID string, strategy domain.Strategy, payload domain.Payload) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[conflictID]
	if !ok || c.Status != domain.ConflictUnresolved {
		return
	}
	r.transitionLocked(c, domain.ConflictResolved, strategy, payload)
}

func (r *Registry) transitionLocked(c *domain.Conflict, status domain.ConflictStatus, strategy domain.Strategy, payload domain.Payload) {
	now := r.now()
	c.Status = status
	c.ResolvedStrategy = strategy
	c.ResolvedPayload = payload
	c.ResolvedAt = &now
}

// MarkIgnored transitions an unresolved conflict to ignored.
func (r *Registry) MarkIgnored(conflictID string, userID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[conflictID]
	if !ok || c.UserID != userID || c.Status != domain.ConflictUnresolved {
		return false
	}
	now := r.now()
	c.Status = domain.ConflictIgnored
	c.ResolvedAt = &now
	return true
}

// Stats returns per-status counts and a per-kind histogram for userID.
func (r *Registry) Stats(userID int64) domain.ConflictStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := domain.ConflictStats{ByKind: make(map[domain.ConflictKind]int)}
	for _, c := range r.byID {
		if c.UserID != userID {
			continue
		}
		stats.Total++
		switch c.Status {
		case domain.ConflictUnresolved:
			stats.Unresolved++
		case domain.ConflictResolved:
			stats.Resolved++
		case domain.ConflictIgnored:
			stats.Ignored++
		}
		stats.ByKind[c.Kind]++
	}
	return stats
}

// Sweep evicts conflicts older than the retention window. Intended to run on
// an hourly scheduled task (spec §4.2 "a periodic sweeper (hourly) evicts
// records older than retention").
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := r.now().AddDate(0, 0, -r.retention.Days)
	evicted := 0
	for id, c := range r.byID {
		if c.DetectedAt.Before(cutoff) {
			delete(r.byID, id)
			evicted++
		}
	}
	return evicted
}

// evictOldestLocked enforces the size cap, evicting the oldest records first
// (age-then-size eviction per spec §3 "Lifecycle"). Caller must hold mu.
func (r *Registry) evictOldestLocked() {
	if r.retention.MaxCount <= 0 || len(r.byID) <= r.retention.MaxCount {
		return
	}
	all := make([]*domain.Conflict, 0, len(r.byID))
	for _, c := range r.byID {
		all = append(all, c)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].DetectedAt.Before(all[j].DetectedAt) })
	excess := len(all) - r.retention.MaxCount
	for i := 0; i < excess; i++ {
		delete(r.byID, all[i].ConflictID)
	}
}

// RunSweeper starts the hourly sweep task; it returns a stop function that
// must be called on shutdown to avoid leaking the ticker goroutine (spec §9
// "Auto-recovery and heartbeat loops... cancellation is mandatory on
// teardown").
func (r *Registry) RunSweeper(interval time.Duration) (stop func()) {
	if interval <= 0 {
		interval = time.Hour
	}
	done := make(chan struct{})
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				r.Sweep()
			case <-done:
				return
			}
		}
	}()
	return func() { close(done) }
}
