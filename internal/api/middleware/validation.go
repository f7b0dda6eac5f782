package middleware

import (
	"net/http"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateStruct runs struct-tag validation (the `validate:"..."` tags on
// domain.SyncRequest, domain.Operation, etc.) and is called directly by
// handlers after JSON-decoding a request body, matching the teacher's
// ValidateStruct/FormatValidationErrors split between middleware and
// handler-level validation.
func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

// FieldErrors flattens validator.ValidationErrors into field:tag pairs
// suitable for a validation error response.
func FieldErrors(err error) map[string]string {
	out := map[string]string{}
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range verrs {
			out[e.Field()] = e.Tag()
		}
	}
	return out
}

// RequireJSON rejects a POST/PUT body that isn't application/json or that
// exceeds the size cap, before it reaches any handler decoding.
func RequireJSON(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodDelete || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			if ct := r.Header.Get("Content-Type"); ct != "" && ct != "application/json" {
				r = r.WithContext(r.Context())
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnsupportedMediaType)
				_, _ = w.Write([]byte(`{"success":false,"error":"Content-Type must be application/json","errorCode":"validation-error"}`))
				return
			}
			if maxBytes > 0 {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
