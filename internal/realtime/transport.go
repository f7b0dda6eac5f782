package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/noteflow/syncserver/internal/domain"
)

// upgrader mirrors the teacher's WebSocketHub upgrader configuration
// (cmd/server/handlers/silence_ws.go): generous buffers, origin check left
// to the caller's reverse proxy / CORS layer.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// wsTransport adapts *websocket.Conn to the Transport interface.
type wsTransport struct {
	conn *websocket.Conn
}

func (w wsTransport) WriteJSON(v interface{}) error {
	w.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return w.conn.WriteJSON(v)
}

func (w wsTransport) Close() error { return w.conn.Close() }

func (w wsTransport) RemoteAddr() string { return w.conn.RemoteAddr().String() }

// inboundEnvelope mirrors Envelope but keeps Data as raw JSON so it can be
// decoded into the right concrete type (SyncRequest for "sync", nothing
// else expects structured Data from the client) after the discriminator is
// known.
type inboundEnvelope struct {
	Type      MessageType     `json:"type"`
	Token     string          `json:"token,omitempty"`
	RequestID string          `json:"requestId,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	ConnectionID string       `json:"connectionId,omitempty"`
}

// HandleWebSocket upgrades an inbound HTTP request and runs the connection's
// read pump, dispatching decoded envelopes to sup.Handle (spec §4.4,
// grounded on the teacher's HandleWebSocket + readPump split).
func HandleWebSocket(sup *Supervisor, logger *slog.Logger) http.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Error("websocket upgrade failed", "error", err, "remoteAddr", r.RemoteAddr)
			return
		}
		sess := sup.Connect(wsTransport{conn: conn})
		go readPump(r.Context(), sup, sess, conn, logger)
	}
}

func readPump(ctx context.Context, sup *Supervisor, sess *Session, conn *websocket.Conn, logger *slog.Logger) {
	conn.SetReadDeadline(time.Now().Add(sup.cfg.HeartbeatTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(sup.cfg.HeartbeatTimeout))
		return nil
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("websocket read error", "error", err, "connectionId", sess.ID)
			}
			return
		}

		var env inboundEnvelope
		if err := json.Unmarshal(raw, &env); err != nil {
			sess.Send(Envelope{Type: MsgError, Timestamp: time.Now(), ErrorCode: "internal", ErrorMessage: "malformed envelope"})
			continue
		}

		decoded := Envelope{Type: env.Type, Token: env.Token, RequestID: env.RequestID, ConnectionID: env.ConnectionID, Timestamp: time.Now()}
		if env.Type == MsgSync && len(env.Data) > 0 {
			var req domain.SyncRequest
			if err := json.Unmarshal(env.Data, &req); err != nil {
				sess.Send(Envelope{Type: MsgError, Timestamp: time.Now(), RequestID: env.RequestID, ErrorCode: "internal", ErrorMessage: "malformed sync request"})
				continue
			}
			decoded.Data = req
		}

		sup.Handle(ctx, sess, decoded)
	}
}
