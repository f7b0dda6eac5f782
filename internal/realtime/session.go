package realtime

import (
	"sync"
	"time"

	"github.com/noteflow/syncserver/internal/domain"
)

// Transport is the narrow interface the supervisor needs from a physical
// connection; gorilla/websocket's *websocket.Conn satisfies it via the
// wsTransport adapter in transport.go. Kept abstract so the lifecycle logic
// here is testable without a real socket.
type Transport interface {
	WriteJSON(v interface{}) error
	Close() error
	RemoteAddr() string
}

// Session is one authenticated-or-authenticating push connection (spec §3
// "Connection session"). Outbound sends are funneled through a buffered
// channel and a single pump goroutine so per-session delivery stays FIFO
// (spec §5 "per-session message delivery is ordered").
type Session struct {
	ID        string
	transport Transport

	mu               sync.Mutex
	userID           int64
	clientID         string
	state            domain.ConnectionState
	connectedAt      time.Time
	lastHeartbeatAt  time.Time
	missedHeartbeats int
	authAttempts     int

	outbound chan Envelope
	done     chan struct{}
	closeOnce sync.Once
}

func newSession(id string, t Transport) *Session {
	s := &Session{
		ID:          id,
		transport:   t,
		state:       domain.StateConnected,
		connectedAt: time.Now(),
		outbound:    make(chan Envelope, 64),
		done:        make(chan struct{}),
	}
	go s.pump()
	return s
}

func (s *Session) pump() {
	for {
		select {
		case env := <-s.outbound:
			if err := s.transport.WriteJSON(env); err != nil {
				s.closeTransport()
				return
			}
		case <-s.done:
			return
		}
	}
}

// Send enqueues env for delivery; best-effort — a full buffer or a closed
// session drops the message rather than blocking the caller (spec §4.4
// "Broadcast... per-session sends are best-effort").
func (s *Session) Send(env Envelope) bool {
	select {
	case s.outbound <- env:
		return true
	case <-s.done:
		return false
	default:
		return false
	}
}

func (s *Session) closeTransport() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.transport.Close()
	})
}

func (s *Session) markAuthenticated(userID int64, clientID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userID = userID
	s.clientID = clientID
	s.state = domain.StateAuthenticated
	s.lastHeartbeatAt = time.Now()
}

func (s *Session) touchHeartbeat() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastHeartbeatAt = time.Now()
	s.missedHeartbeats = 0
}

func (s *Session) snapshot() domain.ConnectionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) identity() (userID int64, clientID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID, s.clientID
}

func (s *Session) setState(st domain.ConnectionState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = st
}

func (s *Session) incAuthAttempt() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authAttempts++
	return s.authAttempts
}

func (s *Session) heartbeatAge() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastHeartbeatAt.IsZero() {
		return time.Since(s.connectedAt)
	}
	return time.Since(s.lastHeartbeatAt)
}
