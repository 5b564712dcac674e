package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingFunc func(context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

type cacheState struct {
	loaded bool
	n      int
}

func (s cacheState) Loaded() bool { return s.loaded }
func (s cacheState) Len() int     { return s.n }

func TestHealthReady(t *testing.T) {
	ok := pingFunc(func(context.Context) error { return nil })
	down := pingFunc(func(context.Context) error { return errors.New("down") })

	tests := []struct {
		name       string
		postgres   Pinger
		redis      Pinger
		cache      CacheState
		wantStatus int
	}{
		{"all healthy", ok, ok, cacheState{loaded: true, n: 3}, http.StatusOK},
		{"redis down is tolerated", ok, down, cacheState{loaded: true}, http.StatusOK},
		{"postgres down", down, ok, cacheState{loaded: true}, http.StatusServiceUnavailable},
		{"cache cold", ok, ok, cacheState{}, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler("auth-service", "test", tt.postgres, tt.redis, tt.cache)
			app := fiber.New()
			app.Get("/health/ready", h.Ready)

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health/ready", nil))
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestHealthLive(t *testing.T) {
	h := NewHealthHandler("auth-service", "1.2.3", nil, nil, nil)
	app := fiber.New()
	app.Get("/health/live", h.Live)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health/live", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "alive", body["status"])
	assert.Equal(t, "1.2.3", body["version"])
}
