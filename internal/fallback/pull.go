package fallback

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/noteflow/syncserver/internal/domain"
	"github.com/noteflow/syncserver/internal/repository"
)

// Priority selects the pull loop's base cadence.
type Priority string

const (
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// PollConfig bounds pull-loop cadence (spec §6 defaults).
type PollConfig struct {
	NormalIntervalMs   int64
	HighIntervalMs     int64
	MinIntervalMs      int64
	MaxIntervalMs      int64
}

// DefaultPollConfig matches spec §6.
var DefaultPollConfig = PollConfig{
	NormalIntervalMs: 5000,
	HighIntervalMs:   1000,
	MinIntervalMs:    1000,
	MaxIntervalMs:    30000,
}

func (c PollConfig) clamp(ms int64) int64 {
	if ms < c.MinIntervalMs {
		return c.MinIntervalMs
	}
	if ms > c.MaxIntervalMs {
		return c.MaxIntervalMs
	}
	return ms
}

func (c PollConfig) base(p Priority) int64 {
	if p == PriorityHigh {
		return c.HighIntervalMs
	}
	return c.NormalIntervalMs
}

// PullResponse is the envelope handed to the client-supplied callback on
// each tick (spec §4.5 "Pull loop").
type PullResponse struct {
	Updates                []domain.ServerUpdate
	HasMore                bool
	ServerTime              time.Time
	SuggestedNextIntervalMs int64
}

// PullCallback is invoked once per tick with the computed response.
type PullCallback func(PullResponse)

// pullLoop is the per-client running pull task. Start/Stop are idempotent;
// ticks never overlap (spec §5 "Pull-loop ticks for a given client never
// overlap").
type pullLoop struct {
	mu       sync.Mutex
	cancel   context.CancelFunc
	running  bool
	priority Priority
}

// PullManager runs one pull loop per clientId.
type PullManager struct {
	mu       sync.Mutex
	loops    map[string]*pullLoop
	cursors  map[string]time.Time
	repo     repository.Repository
	health   *HealthTracker
	cfg      PollConfig
	logger   *slog.Logger
}

// NewPullManager creates a manager for repo-backed pull ticks.
func NewPullManager(repo repository.Repository, health *HealthTracker, cfg PollConfig, logger *slog.Logger) *PullManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &PullManager{
		loops:   make(map[string]*pullLoop),
		cursors: make(map[string]time.Time),
		repo:    repo,
		health:  health,
		cfg:     cfg,
		logger:  logger,
	}
}

// SetCursor seeds/advances the client's pull cursor, used on first fallback
// engagement to start from the client's last-known-good sync time.
func (m *PullManager) SetCursor(clientID string, since time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cursors[clientID] = since
}

// Start begins (or reconfigures, if already running) the pull loop for
// userID/clientID at the given priority, invoking cb once per tick.
func (m *PullManager) Start(ctx context.Context, userID int64, clientID string, priority Priority, cb PullCallback) {
	m.mu.Lock()
	loop, ok := m.loops[clientID]
	if !ok {
		loop = &pullLoop{}
		m.loops[clientID] = loop
	}
	m.mu.Unlock()

	loop.mu.Lock()
	defer loop.mu.Unlock()
	loop.priority = priority
	if loop.running {
		return // reconfigure only; ticker reads priority fresh each tick
	}
	loopCtx, cancel := context.WithCancel(ctx)
	loop.cancel = cancel
	loop.running = true

	go m.run(loopCtx, userID, clientID, loop, cb)
}

// Stop halts the client's pull loop if running; idempotent.
func (m *PullManager) Stop(clientID string) {
	m.mu.Lock()
	loop, ok := m.loops[clientID]
	m.mu.Unlock()
	if !ok {
		return
	}
	loop.mu.Lock()
	defer loop.mu.Unlock()
	if loop.running && loop.cancel != nil {
		loop.cancel()
	}
	loop.running = false
}

// IsRunning reports whether a pull loop is currently active for clientID.
func (m *PullManager) IsRunning(clientID string) bool {
	m.mu.Lock()
	loop, ok := m.loops[clientID]
	m.mu.Unlock()
	if !ok {
		return false
	}
	loop.mu.Lock()
	defer loop.mu.Unlock()
	return loop.running
}

func (m *PullManager) run(ctx context.Context, userID int64, clientID string, loop *pullLoop, cb PullCallback) {
	intervalFor := func() time.Duration {
		loop.mu.Lock()
		p := loop.priority
		loop.mu.Unlock()
		base := m.cfg.base(p)
		if snap, ok := m.health.Snapshot(clientID); ok && snap.MeanResponseTimeMs > 0 {
			base = m.cfg.clamp(int64(snap.MeanResponseTimeMs * 2))
		} else {
			base = m.cfg.clamp(base)
		}
		return time.Duration(base) * time.Millisecond
	}

	timer := time.NewTimer(intervalFor())
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			m.tick(ctx, userID, clientID, cb)
			timer.Reset(intervalFor())
		}
	}
}

func (m *PullManager) tick(ctx context.Context, userID int64, clientID string, cb PullCallback) {
	m.mu.Lock()
	since, ok := m.cursors[clientID]
	m.mu.Unlock()
	if !ok {
		since = time.Now().Add(-24 * time.Hour)
	}

	start := time.Now()
	updates := m.collect(ctx, userID, since)
	now := time.Now()

	m.mu.Lock()
	m.cursors[clientID] = now
	m.mu.Unlock()

	m.health.RecordResponseTime(clientID, time.Since(start).Milliseconds())

	snap, _ := m.health.Snapshot(clientID)
	suggested := m.cfg.clamp(m.cfg.NormalIntervalMs)
	if snap.MeanResponseTimeMs > 0 {
		suggested = m.cfg.clamp(int64(snap.MeanResponseTimeMs * 2))
	}

	cb(PullResponse{
		Updates:                 updates,
		HasMore:                 false,
		ServerTime:              now,
		SuggestedNextIntervalMs: suggested,
	})
}

func (m *PullManager) collect(ctx context.Context, userID int64, since time.Time) []domain.ServerUpdate {
	var out []domain.ServerUpdate
	if notes, err := m.repo.Notes().ListChangedSince(ctx, userID, since); err == nil {
		for _, n := range notes {
			out = append(out, toServerUpdate(domain.KindNote, n.Envelope))
		}
	} else {
		m.logger.Warn("pull tick: listing changed notes failed", "error", err, "userId", userID)
	}
	if folders, err := m.repo.Folders().ListChangedSince(ctx, userID, since); err == nil {
		for _, f := range folders {
			out = append(out, toServerUpdate(domain.KindFolder, f.Envelope))
		}
	} else {
		m.logger.Warn("pull tick: listing changed folders failed", "error", err, "userId", userID)
	}
	if reviews, err := m.repo.Reviews().ListChangedSince(ctx, userID, since); err == nil {
		for _, r := range reviews {
			out = append(out, toServerUpdate(domain.KindReview, r.Envelope))
		}
	} else {
		m.logger.Warn("pull tick: listing changed reviews failed", "error", err, "userId", userID)
	}
	return out
}

func toServerUpdate(kind domain.EntityKind, env domain.Envelope) domain.ServerUpdate {
	if env.IsTombstone() {
		return domain.ServerUpdate{EntityKind: kind, EntityID: env.ID, UpdateKind: domain.UpdateFull, Operation: domain.OpDelete, Version: env.Version, ModifiedAt: env.UpdatedAt}
	}
	return domain.ServerUpdate{EntityKind: kind, EntityID: env.ID, UpdateKind: domain.UpdateIncremental, Operation: domain.OpUpdate, Version: env.Version, ModifiedAt: env.UpdatedAt}
}
