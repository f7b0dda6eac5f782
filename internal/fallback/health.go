// Package fallback implements the Fallback Manager described in spec §4.5:
// it observes push health, decides when to degrade a client to periodic
// pull, runs the pull loop at adaptive cadence, and restores push once the
// client reconnects cleanly.
package fallback

import (
	"sync"
	"time"

	"github.com/noteflow/syncserver/internal/domain"
)

// HealthConfig bounds the health-tracking thresholds (spec §6 defaults).
type HealthConfig struct {
	DisconnectThreshold  int
	DisconnectWindow     time.Duration
	TimeoutThresholdMs   int64
	AutoRecoveryDelay    time.Duration
	MaxResponseSamples   int
}

// DefaultHealthConfig matches spec §6.
var DefaultHealthConfig = HealthConfig{
	DisconnectThreshold: 3,
	DisconnectWindow:    60 * time.Second,
	TimeoutThresholdMs:  5000,
	AutoRecoveryDelay:   30 * time.Second,
	MaxResponseSamples:  100,
}

// HealthTracker tracks per-clientId health records, process-wide.
type HealthTracker struct {
	mu      sync.Mutex
	records map[string]*domain.HealthRecord
	cfg     HealthConfig
	now     func() time.Time
}

// NewHealthTracker creates a tracker governed by cfg.
func NewHealthTracker(cfg HealthConfig) *HealthTracker {
	return &HealthTracker{records: make(map[string]*domain.HealthRecord), cfg: cfg, now: time.Now}
}

func (t *HealthTracker) recordFor(clientID string) *domain.HealthRecord {
	r, ok := t.records[clientID]
	if !ok {
		r = &domain.HealthRecord{ClientID: clientID, Status: domain.HealthHealthy}
		t.records[clientID] = r
	}
	return r
}

// RecordConnection resets a client's health to healthy and clears fallback.
func (t *HealthTracker) RecordConnection(clientID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	r := t.recordFor(clientID)
	r.Status = domain.HealthHealthy
	r.NeedsFallback = false
	r.Reason = ""
	r.LastConnectAt = t.now()
}

// RecordDisconnection appends a disconnection timestamp, prunes entries
// outside the observation window, and degrades if the threshold is reached.
func (t *HealthTracker) RecordDisconnection(clientID, reason string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	r := t.recordFor(clientID)
	now := t.now()
	r.LastDisconnectAt = now
	r.DisconnectTimes = append(r.DisconnectTimes, now)
	cutoff := now.Add(-t.cfg.DisconnectWindow)
	kept := r.DisconnectTimes[:0:0]
	for _, ts := range r.DisconnectTimes {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	r.DisconnectTimes = kept
	if len(kept) >= t.cfg.DisconnectThreshold {
		r.Status = domain.HealthDegraded
		r.NeedsFallback = true
		r.Reason = reason
	}
}

// RecordTimeout increments the timeout counter, appends to the bounded
// response-time buffer, recomputes the mean, and degrades if durationMs or
// the mean exceeds the timeout threshold.
func (t *HealthTracker) RecordTimeout(clientID string, durationMs int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	r := t.recordFor(clientID)
	r.TimeoutCount++
	r.LastTimeoutAt = t.now()
	t.appendSampleLocked(r, float64(durationMs))
	if durationMs >= t.cfg.TimeoutThresholdMs || r.MeanResponseTimeMs >= float64(t.cfg.TimeoutThresholdMs) {
		r.Status = domain.HealthDegraded
		r.NeedsFallback = true
		r.Reason = "response-timeout"
	}
}

// RecordResponseTime updates the response-time buffer without degrading.
func (t *HealthTracker) RecordResponseTime(clientID string, durationMs int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	r := t.recordFor(clientID)
	t.appendSampleLocked(r, float64(durationMs))
}

func (t *HealthTracker) appendSampleLocked(r *domain.HealthRecord, sampleMs float64) {
	max := t.cfg.MaxResponseSamples
	if max <= 0 {
		max = 100
	}
	r.ResponseTimesMs = append(r.ResponseTimesMs, sampleMs)
	if len(r.ResponseTimesMs) > max {
		r.ResponseTimesMs = r.ResponseTimesMs[len(r.ResponseTimesMs)-max:]
	}
	var sum float64
	for _, v := range r.ResponseTimesMs {
		sum += v
	}
	r.MeanResponseTimeMs = sum / float64(len(r.ResponseTimesMs))
}

// NeedsFallback is the pure decision function (spec §4.5 "Decision").
func (t *HealthTracker) NeedsFallback(clientID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	r, ok := t.records[clientID]
	return ok && r.NeedsFallback
}

// Snapshot returns a copy of the client's health record.
func (t *HealthTracker) Snapshot(clientID string) (domain.HealthRecord, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	r, ok := t.records[clientID]
	if !ok {
		return domain.HealthRecord{}, false
	}
	cp := *r
	cp.DisconnectTimes = append([]time.Time(nil), r.DisconnectTimes...)
	cp.ResponseTimesMs = append([]float64(nil), r.ResponseTimesMs...)
	return cp, true
}

// SetRecovering marks a client's status as recovering (post-reconnect,
// pre-first-heartbeat) and clears the fallback flag.
func (t *HealthTracker) SetRecovering(clientID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	r := t.recordFor(clientID)
	r.Status = domain.HealthRecovering
	r.NeedsFallback = false
}

// SetHealthy marks a client fully healthy, called after its first
// successful post-recovery heartbeat.
func (t *HealthTracker) SetHealthy(clientID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	r := t.recordFor(clientID)
	r.Status = domain.HealthHealthy
}
