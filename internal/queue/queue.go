// Package queue implements the Operations Queue satellite the Sync
// Coordinator uses for operations that cannot be applied synchronously:
// retries and scheduled execution (spec §2, "Operations Queue"). It is
// specified only through its public surface.
package queue

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/noteflow/syncserver/internal/domain"
)

// Status is the lifecycle of a queued operation.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Item is one queued operation.
type Item struct {
	QueueID     string
	UserID      int64
	Operation   domain.Operation
	Status      Status
	Attempts    int
	MaxRetries  int
	RetryDelay  time.Duration
	EnqueuedAt  time.Time
	ScheduledAt time.Time
	LastError   string
}

// Stats summarizes queue contents for a user.
type Stats struct {
	Pending    int `json:"pending"`
	Processing int `json:"processing"`
	Completed  int `json:"completed"`
	Failed     int `json:"failed"`
}

// Queue is an in-memory, process-wide operations queue.
type Queue struct {
	mu    sync.Mutex
	items map[string]*Item
}

// New creates an empty queue.
func New() *Queue {
	return &Queue{items: make(map[string]*Item)}
}

// Enqueue adds op for later/retried processing and returns its queue entry.
func (q *Queue) Enqueue(userID int64, op domain.Operation, maxRetries int, retryDelay time.Duration, scheduledAt time.Time) *Item {
	q.mu.Lock()
	defer q.mu.Unlock()
	if scheduledAt.IsZero() {
		scheduledAt = time.Now()
	}
	item := &Item{
		QueueID:     uuid.NewString(),
		UserID:      userID,
		Operation:   op,
		Status:      StatusPending,
		MaxRetries:  maxRetries,
		RetryDelay:  retryDelay,
		EnqueuedAt:  time.Now(),
		ScheduledAt: scheduledAt,
	}
	q.items[item.QueueID] = item
	return item
}

// List returns a user's queued items, oldest first.
func (q *Queue) List(userID int64) []*Item {
	q.mu.Lock()
	defer q.mu.Unlock()
	var out []*Item
	for _, it := range q.items {
		if it.UserID == userID {
			cp := *it
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EnqueuedAt.Before(out[j].EnqueuedAt) })
	return out
}

// Remove deletes an item by ID; if opID is empty, every item for userID is
// removed (matching the DELETE /sync/queue[/:opId] surface).
func (q *Queue) Remove(userID int64, queueID string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if queueID == "" {
		removed := false
		for id, it := range q.items {
			if it.UserID == userID {
				delete(q.items, id)
				removed = true
			}
		}
		return removed
	}
	it, ok := q.items[queueID]
	if !ok || it.UserID != userID {
		return false
	}
	delete(q.items, queueID)
	return true
}

// ResetFailed resets every failed item belonging to userID back to pending,
// used by POST /sync/retry to give one more attempt to failed operations of
// a sync job.
func (q *Queue) ResetFailed(userID int64) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := 0
	for _, it := range q.items {
		if it.UserID == userID && it.Status == StatusFailed {
			it.Status = StatusPending
			it.Attempts = 0
			it.LastError = ""
			n++
		}
	}
	return n
}

// Process attempts to run every due, pending item for userID through
// process, marking success/failure and bumping attempts. Items that have
// exhausted MaxRetries are left failed.
func (q *Queue) Process(userID int64, process func(domain.Operation) error) Stats {
	q.mu.Lock()
	due := make([]*Item, 0)
	now := time.Now()
	for _, it := range q.items {
		if it.UserID == userID && it.Status == StatusPending && !it.ScheduledAt.After(now) {
			it.Status = StatusProcessing
			due = append(due, it)
		}
	}
	q.mu.Unlock()

	for _, it := range due {
		err := process(it.Operation)
		q.mu.Lock()
		if err != nil {
			it.Attempts++
			it.LastError = err.Error()
			if it.Attempts >= it.MaxRetries {
				it.Status = StatusFailed
			} else {
				it.Status = StatusPending
				it.ScheduledAt = time.Now().Add(it.RetryDelay)
			}
		} else {
			it.Status = StatusCompleted
		}
		q.mu.Unlock()
	}
	return q.Stats(userID)
}

// Stats summarizes the current queue state for userID.
func (q *Queue) Stats(userID int64) Stats {
	q.mu.Lock()
	defer q.mu.Unlock()
	var s Stats
	for _, it := range q.items {
		if it.UserID != userID {
			continue
		}
		switch it.Status {
		case StatusPending:
			s.Pending++
		case StatusProcessing:
			s.Processing++
		case StatusCompleted:
			s.Completed++
		case StatusFailed:
			s.Failed++
		}
	}
	return s
}
