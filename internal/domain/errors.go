package domain

import "errors"

// Closed error taxonomy (spec §7). Callers should use errors.Is against
// these sentinels; wrapping with fmt.Errorf("...: %w", ...) is expected at
// every layer boundary.
var (
	ErrAuthFailed         = errors.New("auth-failed")
	ErrAuthTimeout        = errors.New("auth-timeout")
	ErrProtocolMismatch   = errors.New("protocol-mismatch")
	ErrNotFound           = errors.New("not-found")
	ErrInvariantViolation = errors.New("invariant-violation")
	ErrVersionMismatch    = errors.New("version-mismatch")
	ErrConflictUnresolved = errors.New("conflict-unresolved")
	ErrCancelled          = errors.New("cancelled")
	ErrTimedOut           = errors.New("timed-out")
	ErrTransport          = errors.New("transport-error")
	ErrInternal           = errors.New("internal")
)

// ErrorCode maps a taxonomy sentinel to its wire errorCode string. Returns
// "internal" for anything not in the closed set.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrAuthFailed):
		return "auth-failed"
	case errors.Is(err, ErrAuthTimeout):
		return "auth-timeout"
	case errors.Is(err, ErrProtocolMismatch):
		return "protocol-mismatch"
	case errors.Is(err, ErrNotFound):
		return "not-found"
	case errors.Is(err, ErrInvariantViolation):
		return "invariant-violation"
	case errors.Is(err, ErrVersionMismatch):
		return "version-mismatch"
	case errors.Is(err, ErrConflictUnresolved):
		return "conflict-unresolved"
	case errors.Is(err, ErrCancelled):
		return "cancelled"
	case errors.Is(err, ErrTimedOut):
		return "timed-out"
	case errors.Is(err, ErrTransport):
		return "transport-error"
	default:
		return "internal"
	}
}
