package handlers_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abzsd/CareAgents/internal/handlers"
)

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name         string
		pingErr      error
		expectedCode int
		expectedBody handlers.HealthResponse
	}{
		{
			name:         "database up",
			expectedCode: http.StatusOK,
			expectedBody: handlers.HealthResponse{Status: "ok", Database: "up"},
		},
		{
			name:         "database down",
			pingErr:      errors.New("connection refused"),
			expectedCode: http.StatusServiceUnavailable,
			expectedBody: handlers.HealthResponse{Status: "degraded", Database: "down"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := handlers.NewHealthHandler(&mockPinger{err: tt.pingErr})

			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedCode, rr.Code)

			var resp handlers.HealthResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Equal(t, tt.expectedBody, resp)
		})
	}
}
