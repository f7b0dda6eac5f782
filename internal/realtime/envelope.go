// Package realtime implements the Connection Supervisor described in spec
// §4.4: per-push-session lifecycle (handshake, authentication deadline,
// heartbeat scheduling, disconnection bookkeeping) and broadcast to all
// sessions of a given user. Grounded on the teacher's WebSocketHub
// (cmd/server/handlers/silence_ws.go) register/unregister/broadcast channel
// pattern, generalized from a single broadcast topic to per-session
// request/response routing plus authenticated broadcast groups.
package realtime

import "time"

// MessageType is the closed set of push envelope types (spec §6).
type MessageType string

const (
	MsgHandshake    MessageType = "handshake"
	MsgAuth         MessageType = "auth"
	MsgPing         MessageType = "ping"
	MsgPong         MessageType = "pong"
	MsgSync         MessageType = "sync"
	MsgSyncResponse MessageType = "sync_response"
	MsgServerUpdate MessageType = "server_update"
	MsgConflict     MessageType = "conflict"
	MsgStatusChange MessageType = "status_change"
	MsgError        MessageType = "error"
	MsgClose        MessageType = "close"
)

// Close codes (spec §6 "Close codes of note").
const (
	CloseAuthTimeout       = 4000
	CloseAuthFailed        = 4001
	CloseHeartbeatTimeout  = 4002
	CloseProtocolMismatch  = 4003
)

// Envelope is the transport-neutral JSON push message (spec §6). Data
// carries the type-specific payload; handlers type-assert/unmarshal it as
// needed since the wire representation is a single JSON object with a
// `type` discriminator.
type Envelope struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	RequestID string      `json:"requestId,omitempty"`
	Data      interface{} `json:"data,omitempty"`

	// Flattened fields used by specific message types, kept alongside Data
	// so handlers can read either shape depending on direction.
	ServerID      string      `json:"serverId,omitempty"`
	ProtocolVer   int         `json:"protocolVersion,omitempty"`
	ConnectionID  string      `json:"connectionId,omitempty"`
	Token         string      `json:"token,omitempty"`
	Success       *bool       `json:"success,omitempty"`
	UserID        int64       `json:"userId,omitempty"`
	Error         string      `json:"error,omitempty"`
	EntityKind    string      `json:"entityKind,omitempty"`
	EntityID      *int64      `json:"entityId,omitempty"`
	UpdateKind    string      `json:"updateKind,omitempty"`
	UpdateData    interface{} `json:"updateData,omitempty"`
	Conflict      interface{} `json:"conflict,omitempty"`
	RequiresManual bool       `json:"requiresManualResolution,omitempty"`
	SyncID        string      `json:"syncId,omitempty"`
	OldStatus     string      `json:"oldStatus,omitempty"`
	NewStatus     string      `json:"newStatus,omitempty"`
	Progress      *int        `json:"progress,omitempty"`
	ErrorCode     string      `json:"errorCode,omitempty"`
	ErrorMessage  string      `json:"errorMessage,omitempty"`
	Details       interface{} `json:"details,omitempty"`
	Reason        string      `json:"reason,omitempty"`
	Code          int         `json:"code,omitempty"`
}

func newEnvelope(t MessageType) Envelope {
	return Envelope{Type: t, Timestamp: time.Now()}
}
