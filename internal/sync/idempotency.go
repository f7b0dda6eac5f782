package sync

import (
	"sync"

	"github.com/noteflow/syncserver/internal/domain"
)

// idempotencyKey identifies a previously-applied create operation so a
// resubmission with the same operationId is recognized rather than applied
// again (spec §8 "submitting the same create operation twice yields exactly
// one created entity").
type idempotencyKey struct {
	userID      int64
	operationID string
}

// idempotencyStore remembers the result of completed create operations,
// keyed by (userID, operationId), for the coordinator's process lifetime.
type idempotencyStore struct {
	mu      sync.RWMutex
	results map[idempotencyKey]domain.OperationResult
}

func newIdempotencyStore() *idempotencyStore {
	return &idempotencyStore{results: make(map[idempotencyKey]domain.OperationResult)}
}

func (s *idempotencyStore) lookup(userID int64, operationID string) (domain.OperationResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res, ok := s.results[idempotencyKey{userID, operationID}]
	return res, ok
}

// record remembers res for (userID, operationID). Only successful creates
// are recorded, so a create that failed (e.g. invalid payload) can still be
// retried by the client under the same operationId.
func (s *idempotencyStore) record(userID int64, operationID string, res domain.OperationResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[idempotencyKey{userID, operationID}] = res
}
