package response

import (
	"encoding/json/v2"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sproutme/sprout-server/internal/errors"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestJSON_Success(t *testing.T) {
	w := httptest.NewRecorder()

	data := map[string]string{"message": "test"}
	JSON(w, http.StatusOK, data, discardLogger())

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))

	var result Envelope
	err := json.Unmarshal(w.Body.Bytes(), &result)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.NotNil(t, result.Data)
	assert.Empty(t, result.Error)
}

func TestJSON_NilLogger(t *testing.T) {
	w := httptest.NewRecorder()

	JSON(w, http.StatusOK, map[string]string{"message": "test"}, nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var result Envelope
	err := json.Unmarshal(w.Body.Bytes(), &result)
	require.NoError(t, err)
	assert.True(t, result.Success)
}

func TestNoContent(t *testing.T) {
	w := httptest.NewRecorder()

	NoContent(w)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestErrorHelpers(t *testing.T) {
	tests := []struct {
		name   string
		write  func(w http.ResponseWriter)
		status int
		msg    string
	}{
		{"bad request", func(w http.ResponseWriter) { BadRequest(w, "invalid input", discardLogger()) }, http.StatusBadRequest, "invalid input"},
		{"unauthorized", func(w http.ResponseWriter) { Unauthorized(w, "authentication required", discardLogger()) }, http.StatusUnauthorized, "authentication required"},
		{"forbidden", func(w http.ResponseWriter) { Forbidden(w, "access denied", discardLogger()) }, http.StatusForbidden, "access denied"},
		{"not found", func(w http.ResponseWriter) { NotFound(w, "resource not found", discardLogger()) }, http.StatusNotFound, "resource not found"},
		{"conflict", func(w http.ResponseWriter) { Conflict(w, "toggle in flight", discardLogger()) }, http.StatusConflict, "toggle in flight"},
		{"too many requests", func(w http.ResponseWriter) { TooManyRequests(w, "slow down", discardLogger()) }, http.StatusTooManyRequests, "slow down"},
		{"internal", func(w http.ResponseWriter) { InternalError(w, "internal server error", discardLogger()) }, http.StatusInternalServerError, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.write(w)

			assert.Equal(t, tt.status, w.Code)

			var result Envelope
			err := json.Unmarshal(w.Body.Bytes(), &result)
			require.NoError(t, err)

			assert.False(t, result.Success)
			assert.Nil(t, result.Data)
			assert.Equal(t, tt.msg, result.Error)
		})
	}
}

func TestHandleError_DomainError(t *testing.T) {
	w := httptest.NewRecorder()

	HandleError(w, errors.NotFound("event not found"), discardLogger())

	assert.Equal(t, http.StatusNotFound, w.Code)

	var result Envelope
	err := json.Unmarshal(w.Body.Bytes(), &result)
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, "event not found", result.Error)
	assert.Equal(t, "NOT_FOUND", result.Code)
}

func TestHandleError_WrappedDomainError(t *testing.T) {
	w := httptest.NewRecorder()

	inner := errors.Conflict("favorite toggle already in progress")
	HandleError(w, fmt.Errorf("toggle: %w", inner), discardLogger())

	assert.Equal(t, http.StatusConflict, w.Code)

	var result Envelope
	err := json.Unmarshal(w.Body.Bytes(), &result)
	require.NoError(t, err)
	assert.Equal(t, "CONFLICT", result.Code)
}

func TestHandleError_UnknownError(t *testing.T) {
	w := httptest.NewRecorder()

	HandleError(w, fmt.Errorf("boom"), discardLogger())

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var result Envelope
	err := json.Unmarshal(w.Body.Bytes(), &result)
	require.NoError(t, err)
	assert.Equal(t, "internal server error", result.Error)
}

func TestStatusCodeBoundary(t *testing.T) {
	tests := []struct {
		name            string
		status          int
		expectedSuccess bool
	}{
		{"200 OK", 200, true},
		{"201 Created", 201, true},
		{"399 Custom Success", 399, true},
		{"400 Bad Request", 400, false},
		{"500 Internal Server Error", 500, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			JSON(w, tt.status, nil, discardLogger())

			var result Envelope
			err := json.Unmarshal(w.Body.Bytes(), &result)
			require.NoError(t, err)

			assert.Equal(t, tt.expectedSuccess, result.Success, "Status %d should have Success=%v", tt.status, tt.expectedSuccess)
		})
	}
}

func TestEnvelope_OmitEmpty(t *testing.T) {
	data, err := json.Marshal(Envelope{Success: true, Data: "test"})
	require.NoError(t, err)

	jsonStr := string(data)
	assert.Contains(t, jsonStr, "\"success\":true")
	assert.Contains(t, jsonStr, "\"data\":\"test\"")
	assert.NotContains(t, jsonStr, "\"error\":")
	assert.NotContains(t, jsonStr, "\"code\":")
	assert.NotContains(t, jsonStr, "\"message\":")
}
