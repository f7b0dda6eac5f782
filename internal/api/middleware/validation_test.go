package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type validatedPayload struct {
	Name string `validate:"required"`
}

func TestValidateStruct_ReportsMissingRequiredField(t *testing.T) {
	err := ValidateStruct(validatedPayload{})
	require.Error(t, err)
	fields := FieldErrors(err)
	assert.Equal(t, "required", fields["Name"])
}

func TestValidateStruct_PassesWhenSatisfied(t *testing.T) {
	err := ValidateStruct(validatedPayload{Name: "ok"})
	assert.NoError(t, err)
}

func TestRequireJSON_RejectsWrongContentType(t *testing.T) {
	handler := RequireJSON(1024)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }))

	req := httptest.NewRequest(http.MethodPost, "/sync", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestRequireJSON_AllowsGetWithoutContentType(t *testing.T) {
	handler := RequireJSON(1024)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }))

	req := httptest.NewRequest(http.MethodGet, "/sync/status", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireJSON_AllowsApplicationJSON(t *testing.T) {
	handler := RequireJSON(1024)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }))

	req := httptest.NewRequest(http.MethodPost, "/sync", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
