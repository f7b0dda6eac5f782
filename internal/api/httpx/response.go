// Package httpx holds the HTTP response envelope shared by every handler,
// grounded on the teacher's internal/api/errors package but shaped to the
// wire contract of this service: a flat {success, error, errorCode} failure
// envelope rather than a nested APIError object (spec §7).
package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/noteflow/syncserver/internal/domain"
)

// errorEnvelope is the body of every non-2xx JSON response.
type errorEnvelope struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	ErrorCode string `json:"errorCode,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// statusFor maps a taxonomy error code to its HTTP status. Codes outside the
// closed set (including plain validation failures, which carry no sentinel)
// fall through to 500/400 at the call site.
func statusFor(code string) int {
	switch code {
	case "auth-failed", "auth-timeout":
		return http.StatusUnauthorized
	case "not-found":
		return http.StatusNotFound
	case "version-mismatch", "conflict-unresolved":
		return http.StatusConflict
	case "invariant-violation", "protocol-mismatch":
		return http.StatusBadRequest
	case "cancelled":
		return http.StatusConflict
	case "timed-out":
		return http.StatusGatewayTimeout
	case "transport-error":
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// WriteError writes err as the standard failure envelope, deriving the HTTP
// status and errorCode from the domain error taxonomy when err participates
// in it, or from statusHint otherwise.
func WriteError(w http.ResponseWriter, requestID string, statusHint int, err error) {
	code := domain.ErrorCode(err)
	status := statusHint
	if errors.Is(err, domain.ErrAuthFailed) || errors.Is(err, domain.ErrAuthTimeout) ||
		errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrVersionMismatch) ||
		errors.Is(err, domain.ErrConflictUnresolved) || errors.Is(err, domain.ErrInvariantViolation) ||
		errors.Is(err, domain.ErrProtocolMismatch) || errors.Is(err, domain.ErrCancelled) ||
		errors.Is(err, domain.ErrTimedOut) || errors.Is(err, domain.ErrTransport) {
		status = statusFor(code)
	}
	if status == 0 {
		status = http.StatusInternalServerError
	}
	WriteJSON(w, status, errorEnvelope{Success: false, Error: err.Error(), ErrorCode: code, RequestID: requestID})
}

// WriteValidationError writes a 400 with a plain message and no taxonomy
// code, used for request decoding/validation failures that never reach
// domain logic.
func WriteValidationError(w http.ResponseWriter, requestID, message string) {
	WriteJSON(w, http.StatusBadRequest, errorEnvelope{Success: false, Error: message, ErrorCode: "validation-error", RequestID: requestID})
}

// WriteJSON writes v as a JSON body with status, setting Content-Type first.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// DecodeJSON decodes r's body into dst, returning a validation-shaped error
// the caller can hand to WriteValidationError.
func DecodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
