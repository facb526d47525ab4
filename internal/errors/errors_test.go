package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecotech-dashboard/internal/dataset"
)

func TestFromDataset(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   ErrorCode
		wantStatus int
	}{
		{"empty table", fmt.Errorf("geo impact: %w", dataset.ErrEmptyTable), CodeValidation, http.StatusBadRequest},
		{"missing column", fmt.Errorf("pivot: %w: sales", dataset.ErrMissingColumn), CodeValidation, http.StatusBadRequest},
		{"sparse pivot", dataset.ErrSparsePivot, CodeValidation, http.StatusBadRequest},
		{"invalid catalog", dataset.ErrInvalidCatalog, CodeInternal, http.StatusInternalServerError},
		{"other", stderrors.New("disk on fire"), CodeInternal, http.StatusInternalServerError},
		{"already classified", NotFound("chart"), CodeNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := FromDataset(tt.err, "Failed to compute view")
			assert.Equal(t, tt.wantCode, appErr.Code)
			assert.Equal(t, tt.wantStatus, appErr.StatusCode)
			if tt.wantCode == CodeValidation {
				assert.Equal(t, tt.err.Error(), appErr.Details)
				assert.ErrorIs(t, appErr, tt.err)
			}
		})
	}
}

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	WriteError(w, logger, fmt.Errorf("wrapped: %w", BadRequest("invalid year")), "req-1")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp struct {
		Error   AppError `json:"error"`
		Success bool     `json:"success"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.False(t, resp.Success)
	assert.Equal(t, CodeBadRequest, resp.Error.Code)
	assert.Equal(t, "invalid year", resp.Error.Message)
	assert.Equal(t, "req-1", resp.Error.RequestID)
}

func TestWriteError_Unclassified(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, slog.New(slog.NewTextHandler(io.Discard, nil)), stderrors.New("boom"), "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), string(CodeInternal))
	assert.NotContains(t, w.Body.String(), "boom")
}

func TestWriteSuccessWithHeaders(t *testing.T) {
	w := httptest.NewRecorder()
	WriteSuccessWithHeaders(w, map[string]int{"rows": 3}, map[string]string{"Cache-Control": "public, max-age=300"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "public, max-age=300", w.Header().Get("Cache-Control"))
	assert.JSONEq(t, `{"data":{"rows":3},"success":true}`, w.Body.String())
}

func TestAppErrorMessage(t *testing.T) {
	err := InternalWrap(stderrors.New("io"), "export failed")
	assert.Equal(t, "INTERNAL_ERROR: export failed (caused by: io)", err.Error())
	assert.Equal(t, "RATE_LIMIT_EXCEEDED: slow down", RateLimit("slow down").Error())
	assert.Equal(t, http.StatusServiceUnavailable, ServiceUnavailable("loading").StatusCode)
}
