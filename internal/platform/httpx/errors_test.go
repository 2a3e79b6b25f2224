package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"not found", fmt.Errorf("entry abc: %w", ErrNotFound), http.StatusNotFound},
		{"validation", fmt.Errorf("amount: %w", ErrValidation), http.StatusBadRequest},
		{"invalid range", fmt.Errorf("period: %w", ErrInvalidRange), http.StatusBadRequest},
		{"conflict", fmt.Errorf("revision: %w", ErrConflict), http.StatusConflict},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		RespondError(rec, tc.err)
		assert.Equal(t, tc.code, rec.Code, tc.name)
		assert.Contains(t, rec.Header().Get("Content-Type"), "application/json", tc.name)
		assert.Equal(t, tc.code, StatusFor(tc.err), tc.name)
	}
}

func TestRespondErrorHidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, fmt.Errorf("pool exhausted: connection refused"))

	var problem ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, "Internal Error", problem.Title)
	assert.Empty(t, problem.Detail, "internal failure detail must not leak")
}
