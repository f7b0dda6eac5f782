package realtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/noteflow/syncserver/internal/domain"
)

// Verifier is the external authentication collaborator the spec requires
// only through `verify(token) -> userId` (spec §1 "Explicitly out of
// scope").
type Verifier interface {
	Verify(ctx context.Context, token string) (userID int64, err error)
}

// SyncHandler is the subset of the Sync Coordinator the supervisor routes
// `sync` envelopes to.
type SyncHandler interface {
	Sync(ctx context.Context, userID int64, req domain.SyncRequest) (*domain.SyncResponse, error)
}

// FallbackNotifier is the subset of the Fallback Manager the supervisor
// drives on connect/disconnect/heartbeat (spec §4.4 "subscribes the
// Fallback Manager to transport health events").
type FallbackNotifier interface {
	HandleDisconnection(ctx context.Context, userID int64, clientID, reason string, since time.Time, cb func(PullEvent))
	HandleReconnect(clientID string)
	HandleHeartbeat(clientID string)
}

// PullEvent is a transport-agnostic alias kept local so this package does
// not need to import internal/fallback's concrete PullResponse type; the
// wiring layer (cmd/server) adapts fallback.PullResponse into this shape.
type PullEvent struct {
	Updates                 []domain.ServerUpdate
	HasMore                 bool
	ServerTime               time.Time
	SuggestedNextIntervalMs int64
}

// Config bounds the supervisor's timers (spec §6 defaults).
type Config struct {
	AuthTimeout        time.Duration
	HeartbeatInterval  time.Duration
	HeartbeatTimeout   time.Duration
	MaxAuthAttempts    int
	PerUserMaxSessions int // 0 = unbounded
}

// DefaultConfig matches spec §6.
var DefaultConfig = Config{
	AuthTimeout:       5 * time.Second,
	HeartbeatInterval: 30 * time.Second,
	HeartbeatTimeout:  60 * time.Second,
	MaxAuthAttempts:   3,
}

// Supervisor manages the per-push-session lifecycle described in spec §4.4.
// One instance is shared process-wide.
type Supervisor struct {
	cfg      Config
	verifier Verifier
	sync     SyncHandler
	fallback FallbackNotifier
	logger   *slog.Logger

	mu         sync.RWMutex
	sessions   map[string]*Session
	byUser     map[int64]map[string]bool
	byClient   map[string]*Session
	cancelFns  map[string]context.CancelFunc // per-session timer teardown
	shutdownMu sync.Mutex
	shutdown   bool
}

// New creates a Supervisor. fallback may be nil, in which case disconnection
// and heartbeat events are simply not forwarded.
func New(cfg Config, verifier Verifier, sync SyncHandler, fallback FallbackNotifier, logger *slog.Logger) *Supervisor {
	if cfg.AuthTimeout <= 0 {
		cfg = DefaultConfig
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Supervisor{
		cfg:       cfg,
		verifier:  verifier,
		sync:      sync,
		fallback:  fallback,
		logger:    logger,
		sessions:  make(map[string]*Session),
		byUser:    make(map[int64]map[string]bool),
		byClient:  make(map[string]*Session),
		cancelFns: make(map[string]context.CancelFunc),
	}
}

// Connect registers a new inbound transport, sends the handshake envelope,
// and starts the authentication deadline (spec §4.4 "Handshake ->
// authentication"). Returns the session so the transport-specific read loop
// (e.g. the websocket adapter) can forward inbound envelopes via Handle.
func (s *Supervisor) Connect(t Transport) *Session {
	id := uuid.NewString()
	sess := newSession(id, t)

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	sess.Send(Envelope{
		Type: MsgHandshake, Timestamp: time.Now(),
		ServerID: "syncserver", ProtocolVer: 1, ConnectionID: id,
	})

	ctx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	s.cancelFns[id] = cancel
	s.mu.Unlock()

	go s.authDeadline(ctx, sess)

	s.logger.Info("session connected", "connectionId", id, "remoteAddr", t.RemoteAddr())
	return sess
}

func (s *Supervisor) authDeadline(ctx context.Context, sess *Session) {
	timer := time.NewTimer(s.cfg.AuthTimeout)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return
	case <-timer.C:
		if sess.snapshot() == domain.StateConnected {
			s.closeSession(sess, "auth-timeout", CloseAuthTimeout)
		}
	}
}

// Handle processes one inbound envelope from sess (spec §4.4 "Messages
// accepted"). Unknown types fail loudly but do not close the session.
func (s *Supervisor) Handle(ctx context.Context, sess *Session, env Envelope) {
	switch env.Type {
	case MsgAuth:
		s.handleAuth(ctx, sess, env)
	case MsgPing:
		s.handlePing(sess)
	case MsgSync:
		s.handleSync(ctx, sess, env)
	default:
		sess.Send(Envelope{
			Type: MsgError, Timestamp: time.Now(),
			ErrorCode: "unknown-message-type", ErrorMessage: fmt.Sprintf("unsupported message type %q", env.Type),
		})
	}
}

func (s *Supervisor) handleAuth(ctx context.Context, sess *Session, env Envelope) {
	userID, err := s.verifier.Verify(ctx, env.Token)
	if err != nil {
		attempts := sess.incAuthAttempt()
		ok := false
		sess.Send(Envelope{Type: MsgAuth, Timestamp: time.Now(), Success: &ok, Error: err.Error()})
		max := s.cfg.MaxAuthAttempts
		if max <= 0 {
			max = DefaultConfig.MaxAuthAttempts
		}
		if attempts >= max {
			s.closeSession(sess, "auth-failed", CloseAuthFailed)
		}
		return
	}

	clientID := env.ConnectionID
	if clientID == "" {
		clientID = sess.ID
	}
	s.evictOverCapIfNeeded(userID)

	sess.markAuthenticated(userID, clientID)
	s.mu.Lock()
	s.byUser[userID] = addTo(s.byUser[userID], sess.ID)
	s.byClient[clientID] = sess
	s.mu.Unlock()

	ok := true
	sess.Send(Envelope{Type: MsgAuth, Timestamp: time.Now(), Success: &ok, UserID: userID})

	if s.fallback != nil {
		s.fallback.HandleReconnect(clientID)
	}

	s.startHeartbeat(sess)
	s.logger.Info("session authenticated", "connectionId", sess.ID, "userId", userID, "clientId", clientID)
}

func addTo(set map[string]bool, id string) map[string]bool {
	if set == nil {
		set = make(map[string]bool)
	}
	set[id] = true
	return set
}

func (s *Supervisor) evictOverCapIfNeeded(userID int64) {
	limit := s.cfg.PerUserMaxSessions
	if limit <= 0 {
		return
	}
	s.mu.Lock()
	ids := s.byUser[userID]
	if len(ids) < limit {
		s.mu.Unlock()
		return
	}
	var oldest *Session
	for id := range ids {
		sess, ok := s.sessions[id]
		if !ok {
			continue
		}
		if oldest == nil || sess.connectedAt.Before(oldest.connectedAt) {
			oldest = sess
		}
	}
	s.mu.Unlock()
	if oldest != nil {
		s.closeSession(oldest, "session-cap-exceeded", CloseHeartbeatTimeout)
	}
}

func (s *Supervisor) handlePing(sess *Session) {
	sess.touchHeartbeat()
	if s.fallback != nil {
		if _, clientID := sess.identity(); clientID != "" {
			s.fallback.HandleHeartbeat(clientID)
		}
	}
	sess.Send(Envelope{Type: MsgPong, Timestamp: time.Now()})
}

func (s *Supervisor) handleSync(ctx context.Context, sess *Session, env Envelope) {
	if sess.snapshot() != domain.StateAuthenticated {
		sess.Send(Envelope{Type: MsgError, Timestamp: time.Now(), ErrorCode: "auth-failed", ErrorMessage: "sync requires authentication"})
		return
	}
	req, ok := env.Data.(domain.SyncRequest)
	if !ok {
		sess.Send(Envelope{Type: MsgError, Timestamp: time.Now(), ErrorCode: "internal", ErrorMessage: "malformed sync request"})
		return
	}
	userID, _ := sess.identity()
	resp, err := s.sync.Sync(ctx, userID, req)
	if err != nil {
		sess.Send(Envelope{
			Type: MsgError, Timestamp: time.Now(), RequestID: env.RequestID,
			ErrorCode: domain.ErrorCode(err), ErrorMessage: err.Error(),
		})
		return
	}
	sess.Send(Envelope{Type: MsgSyncResponse, Timestamp: time.Now(), RequestID: resp.RequestID, Data: resp})
}

func (s *Supervisor) startHeartbeat(sess *Session) {
	s.mu.Lock()
	if cancel, ok := s.cancelFns[sess.ID]; ok {
		cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancelFns[sess.ID] = cancel
	s.mu.Unlock()

	go s.heartbeatLoop(ctx, sess)
}

func (s *Supervisor) heartbeatLoop(ctx context.Context, sess *Session) {
	interval := s.cfg.HeartbeatInterval
	if interval <= 0 {
		interval = DefaultConfig.HeartbeatInterval
	}
	timeout := s.cfg.HeartbeatTimeout
	if timeout <= 0 {
		timeout = DefaultConfig.HeartbeatTimeout
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if sess.heartbeatAge() > timeout {
				s.closeSession(sess, "heartbeat-timeout", CloseHeartbeatTimeout)
				return
			}
			sess.Send(Envelope{Type: MsgPing, Timestamp: time.Now()})
		}
	}
}

// Broadcast sends message to every authenticated session owned by userID
// (spec §4.4 "Broadcast"). Per-session sends are best-effort; send failure
// removes the offending session.
func (s *Supervisor) Broadcast(userID int64, env Envelope) {
	s.mu.RLock()
	ids := make([]string, 0, len(s.byUser[userID]))
	for id := range s.byUser[userID] {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	for _, id := range ids {
		s.mu.RLock()
		sess, ok := s.sessions[id]
		s.mu.RUnlock()
		if !ok {
			continue
		}
		if !sess.Send(env) {
			s.closeSession(sess, "transport-error", 0)
		}
	}
}

// closeSession tears down timers, notifies the fallback manager, and closes
// the transport. Safe to call more than once.
func (s *Supervisor) closeSession(sess *Session, reason string, code int) {
	sess.Send(Envelope{Type: MsgClose, Timestamp: time.Now(), Reason: reason, Code: code})
	sess.setState(domain.StateDisconnected)
	sess.closeTransport()

	s.mu.Lock()
	delete(s.sessions, sess.ID)
	if cancel, ok := s.cancelFns[sess.ID]; ok {
		cancel()
		delete(s.cancelFns, sess.ID)
	}
	userID, clientID := sess.identity()
	if ids, ok := s.byUser[userID]; ok {
		delete(ids, sess.ID)
	}
	if clientID != "" {
		delete(s.byClient, clientID)
	}
	s.mu.Unlock()

	if s.fallback != nil && clientID != "" {
		// The session's transport is already closed, so there is nothing to
		// push pull ticks to; a real no-op closure (never nil) keeps the
		// pull loop's unconditional cb(...) call safe.
		s.fallback.HandleDisconnection(context.Background(), userID, clientID, reason, time.Now(), func(PullEvent) {})
	}
	s.logger.Info("session closed", "connectionId", sess.ID, "reason", reason, "code", code)
}

// ActiveCount returns the number of tracked sessions (any state).
func (s *Supervisor) ActiveCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Shutdown cancels every timer, closes every session, and hands off to the
// fallback manager's own shutdown (spec §4.4 "Shutdown"). Idempotent.
func (s *Supervisor) Shutdown() {
	s.shutdownMu.Lock()
	if s.shutdown {
		s.shutdownMu.Unlock()
		return
	}
	s.shutdown = true
	s.shutdownMu.Unlock()

	s.mu.RLock()
	sessions := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.RUnlock()

	for _, sess := range sessions {
		s.closeSession(sess, "server-shutdown", 0)
	}
}
