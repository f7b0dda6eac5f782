package fallback

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/noteflow/syncserver/internal/domain"
	"github.com/noteflow/syncserver/internal/repository"
)

// Status is the fallback-manager's external view of a client's current
// serving mode, returned to the /sync/fallback-status handler.
type Status struct {
	ClientID      string
	InFallback    bool
	HealthStatus  string
	Reason        string
	PullRunning   bool
}

// Manager ties HealthTracker and PullManager together (spec §4.5): it
// decides when to degrade a client to pull, runs the pull loop while
// degraded, and restores push once the client reconnects cleanly. One
// Manager instance is shared process-wide.
type Manager struct {
	health *HealthTracker
	pull   *PullManager
	cfg    HealthConfig
	logger *slog.Logger

	mu         sync.Mutex
	recoveries map[string]context.CancelFunc
}

// NewManager creates a Manager wired to repo via an owned PullManager.
func NewManager(repo repository.Repository, healthCfg HealthConfig, pollCfg PollConfig, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	health := NewHealthTracker(healthCfg)
	return &Manager{
		health:     health,
		pull:       NewPullManager(repo, health, pollCfg, logger),
		cfg:        healthCfg,
		logger:     logger,
		recoveries: make(map[string]context.CancelFunc),
	}
}

// Health exposes the tracker so session-lifecycle code can record
// connect/disconnect/timeout/response-time events directly.
func (m *Manager) Health() *HealthTracker { return m.pull.health }

// HandleDisconnection records a disconnection and, if the client has now
// crossed the degradation threshold, engages fallback (spec §4.5, scenario
// 4 "Fallback trigger").
func (m *Manager) HandleDisconnection(ctx context.Context, userID int64, clientID, reason string, since time.Time, cb PullCallback) {
	m.health.RecordDisconnection(clientID, reason)
	if m.health.NeedsFallback(clientID) {
		m.engage(ctx, userID, clientID, since, cb)
	}
}

// HandleTimeout records a timeout and engages fallback if warranted.
func (m *Manager) HandleTimeout(ctx context.Context, userID int64, clientID string, durationMs int64, since time.Time, cb PullCallback) {
	m.health.RecordTimeout(clientID, durationMs)
	if m.health.NeedsFallback(clientID) {
		m.engage(ctx, userID, clientID, since, cb)
	}
}

// engage starts the pull loop at normal priority and logs the transition.
func (m *Manager) engage(ctx context.Context, userID int64, clientID string, since time.Time, cb PullCallback) {
	m.pull.SetCursor(clientID, since)
	m.pull.Start(ctx, userID, clientID, PriorityNormal, cb)
	m.logger.Warn("client degraded to pull fallback", "clientId", clientID, "userId", userID)
}

// HandleReconnect is invoked when a new push session for clientID
// authenticates successfully (spec §4.5 "Recovery"): it stops the pull
// loop, clears the fallback flag, marks the client recovering, and starts a
// bounded auto-recovery timer that also exits fallback absent an explicit
// heartbeat confirmation.
func (m *Manager) HandleReconnect(clientID string) {
	m.pull.Stop(clientID)
	m.health.SetRecovering(clientID)
	m.cancelRecoveryTimer(clientID)

	delay := m.cfg.AutoRecoveryDelay
	if delay <= 0 {
		delay = DefaultHealthConfig.AutoRecoveryDelay
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.mu.Lock()
	m.recoveries[clientID] = cancel
	m.mu.Unlock()

	go func() {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
		case <-timer.C:
			m.health.SetHealthy(clientID)
		}
	}()
}

// HandleHeartbeat is invoked on the first successful heartbeat after a
// reconnect; it short-circuits the auto-recovery timer and marks the client
// immediately healthy.
func (m *Manager) HandleHeartbeat(clientID string) {
	if snap, ok := m.health.Snapshot(clientID); ok && snap.Status == domain.HealthRecovering {
		m.health.SetHealthy(clientID)
		m.cancelRecoveryTimer(clientID)
	}
}

func (m *Manager) cancelRecoveryTimer(clientID string) {
	m.mu.Lock()
	cancel, ok := m.recoveries[clientID]
	if ok {
		delete(m.recoveries, clientID)
	}
	m.mu.Unlock()
	if ok {
		cancel()
	}
}

// ForceFallback engages pull regardless of current health, for the
// administrative POST /sync/force-fallback hook.
func (m *Manager) ForceFallback(ctx context.Context, userID int64, clientID string, since time.Time, cb PullCallback) {
	m.engage(ctx, userID, clientID, since, cb)
}

// ExitFallback stops the pull loop unconditionally, for the administrative
// POST /sync/exit-fallback hook.
func (m *Manager) ExitFallback(clientID string) {
	m.pull.Stop(clientID)
	m.health.SetHealthy(clientID)
	m.cancelRecoveryTimer(clientID)
}

// StatusFor reports the current fallback status for a client.
func (m *Manager) StatusFor(clientID string) Status {
	snap, ok := m.health.Snapshot(clientID)
	status := Status{ClientID: clientID, PullRunning: m.pull.IsRunning(clientID)}
	if !ok {
		status.HealthStatus = string(domain.HealthHealthy)
		return status
	}
	status.HealthStatus = string(snap.Status)
	status.Reason = snap.Reason
	status.InFallback = snap.NeedsFallback || status.PullRunning
	return status
}

// Shutdown stops every running pull loop and pending recovery timer.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	for clientID, cancel := range m.recoveries {
		cancel()
		delete(m.recoveries, clientID)
	}
	m.mu.Unlock()
}
