package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type checkFunc func(ctx context.Context) error

func (f checkFunc) HealthCheck(ctx context.Context) error { return f(ctx) }

func TestHealthHandler(t *testing.T) {
	healthy := checkFunc(func(ctx context.Context) error { return nil })
	down := checkFunc(func(ctx context.Context) error { return errors.New("connection refused") })

	tests := []struct {
		name           string
		checks         map[string]HealthChecker
		expectedStatus int
		expectedState  string
	}{
		{"no dependencies", nil, http.StatusOK, "ready"},
		{"all healthy", map[string]HealthChecker{"database": healthy, "redis": nil}, http.StatusOK, "ready"},
		{"redis down", map[string]HealthChecker{"database": healthy, "redis": down}, http.StatusServiceUnavailable, "not ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(tt.checks)
			r := gin.New()
			r.GET("/health", h.Health)
			r.GET("/ready", h.Ready)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
			assert.Equal(t, http.StatusOK, w.Code)

			w = httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
			assert.Equal(t, tt.expectedStatus, w.Code)

			var resp ReadyResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.expectedState, resp.Status)
			if _, ok := tt.checks["redis"]; ok && tt.checks["redis"] == nil {
				assert.Equal(t, "not configured", resp.Components["redis"])
			}
		})
	}
}
