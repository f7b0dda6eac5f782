package sync

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/noteflow/syncserver/internal/domain"
)

// jobHandle is the coordinator's internal bookkeeping for an in-flight sync
// job: the public domain.SyncJob plus a cancellation flag observed at
// per-operation granularity (spec §4.3 "Cancellation").
type jobHandle struct {
	mu        sync.Mutex
	job       *domain.SyncJob
	cancelled bool
}

func (h *jobHandle) snapshot() *domain.SyncJob {
	h.mu.Lock()
	defer h.mu.Unlock()
	cp := *h.job
	return &cp
}

func (h *jobHandle) isCancelled() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cancelled
}

func (h *jobHandle) cancel() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.job.Status != domain.SyncStatusSyncing {
		return false
	}
	h.cancelled = true
	h.job.Status = domain.SyncStatusCancelled
	now := time.Now()
	h.job.EndTime = &now
	return true
}

func (h *jobHandle) update(fn func(*domain.SyncJob)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	fn(h.job)
}

// JobStore tracks in-flight and recently completed sync jobs, process-wide.
type JobStore struct {
	mu   sync.RWMutex
	jobs map[string]*jobHandle
}

func newJobStore() *JobStore {
	return &JobStore{jobs: make(map[string]*jobHandle)}
}

func (s *JobStore) create(userID int64, clientID string, total int) *jobHandle {
	h := &jobHandle{job: &domain.SyncJob{
		SyncID:    uuid.NewString(),
		UserID:    userID,
		ClientID:  clientID,
		Status:    domain.SyncStatusSyncing,
		StartTime: time.Now(),
		Counters:  domain.SyncCounters{Total: total},
	}}
	s.mu.Lock()
	s.jobs[h.job.SyncID] = h
	s.mu.Unlock()
	return h
}

// Get returns a snapshot of the job if it belongs to userID.
func (s *JobStore) Get(syncID string, userID int64) (*domain.SyncJob, bool) {
	s.mu.RLock()
	h, ok := s.jobs[syncID]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	snap := h.snapshot()
	if snap.UserID != userID {
		return nil, false
	}
	return snap, true
}

// ListActive returns active and recent jobs for userID, most-recent-first.
func (s *JobStore) ListActive(userID int64) []*domain.SyncJob {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.SyncJob
	for _, h := range s.jobs {
		snap := h.snapshot()
		if snap.UserID == userID {
			out = append(out, snap)
		}
	}
	return out
}

// Cancel flips a job's status to cancelled if it is still syncing.
func (s *JobStore) Cancel(syncID string, userID int64) bool {
	s.mu.RLock()
	h, ok := s.jobs[syncID]
	s.mu.RUnlock()
	if !ok {
		return false
	}
	if h.snapshot().UserID != userID {
		return false
	}
	return h.cancel()
}
