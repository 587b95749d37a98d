package errors

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"purchdash/internal/middleware"
)

func TestAPIErrorInterface(t *testing.T) {
	err := New(http.StatusBadGateway, "DATA_LOAD_FAILED", "table is empty")
	assert.Equal(t, "table is empty", err.Error())
	assert.Equal(t, http.StatusBadGateway, err.StatusCode)
}

func TestHandleErrorMapsAPIError(t *testing.T) {
	h := NewErrorHandler(slog.Default())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)

	h.HandleError(rec, req, DataLoadError("purchase_orders", fmt.Errorf("no rows")))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, TypeDataLoad, body["type"])
	assert.Contains(t, body["detail"], "purchase_orders")
}

func TestHandleErrorAuthFailure(t *testing.T) {
	h := NewErrorHandler(slog.Default())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)

	h.HandleError(rec, req, AuthError(fmt.Errorf("invalid grant")))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, TypeUnauthorized, body["type"])
}

func TestHandleErrorCarriesTraceID(t *testing.T) {
	h := NewErrorHandler(slog.Default())

	handler := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.HandleError(w, r, ErrValidation("chart", "unknown chart"))
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/export/pptx", nil)
	req.Header.Set("X-Request-ID", "req-42")
	handler.ServeHTTP(rec, req)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "req-42", body["trace_id"])
}

func TestHandleErrorGenericFallback(t *testing.T) {
	h := NewErrorHandler(slog.Default())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)

	h.HandleError(rec, req, fmt.Errorf("something unexpected"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestProblemDetailsExtensions(t *testing.T) {
	p := NewProblemDetails(http.StatusBadRequest, TypeValidation, "Validation Failed", "bad field", "/api/comments")
	p.WithExtension("errors", []ValidationError{{Field: "text", Message: "required"}})

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Contains(t, body, "errors")
	assert.Equal(t, float64(http.StatusBadRequest), body["status"])
}
