package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"APP_ENV", "AUTH_JWT_SECRET", "AUTH_TOKEN_VALIDITY", "AUTH_FRESHNESS_WINDOW",
		"AUTH_REFRESH_INTERVAL", "AUTH_TEST_BYPASS", "REDIS_DB",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultJWTSecret, cfg.Auth.JWTSecret)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenValidity)
	assert.Equal(t, 15*time.Minute, cfg.Auth.FreshnessWindow)
	assert.Equal(t, 60*time.Second, cfg.Auth.RefreshInterval)
	assert.False(t, cfg.Auth.TestBypass)
	assert.Equal(t, "auth:refresh", cfg.Redis.TriggerChannel)
}

func TestLoadDurationsFromEnv(t *testing.T) {
	t.Setenv("AUTH_FRESHNESS_WINDOW", "5m")
	t.Setenv("AUTH_REFRESH_INTERVAL", "10s")
	t.Setenv("AUTH_TOKEN_VALIDITY", "not-a-duration")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5*time.Minute, cfg.Auth.FreshnessWindow)
	assert.Equal(t, 10*time.Second, cfg.Auth.RefreshInterval)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenValidity, "invalid values fall back to default")
}

func TestValidateProduction(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "default secret rejected", mutate: func(c *Config) {}, wantErr: true},
		{name: "real secret accepted", mutate: func(c *Config) { c.Auth.JWTSecret = "s3cr3t" }},
		{name: "test bypass rejected", mutate: func(c *Config) {
			c.Auth.JWTSecret = "s3cr3t"
			c.Auth.TestBypass = true
		}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				App: AppConfig{Env: "production"},
				Auth: AuthConfig{
					JWTSecret:       DefaultJWTSecret,
					TokenValidity:   time.Hour,
					FreshnessWindow: time.Minute,
					RefreshInterval: time.Second,
				},
			}
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateRejectsNonPositiveWindows(t *testing.T) {
	tests := []struct {
		name      string
		freshness time.Duration
		interval  time.Duration
		wantErr   bool
	}{
		{"zero freshness", 0, time.Second, true},
		{"zero interval", time.Minute, 0, true},
		{"freshness shorter than interval", time.Minute, 5 * time.Minute, true},
		{"freshness equal to interval", time.Minute, time.Minute, true},
		{"freshness longer than interval", 15 * time.Minute, time.Minute, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Auth: AuthConfig{
				JWTSecret:       "x",
				TokenValidity:   time.Hour,
				FreshnessWindow: tt.freshness,
				RefreshInterval: tt.interval,
			}}
			if tt.wantErr {
				assert.Error(t, cfg.Validate())
			} else {
				assert.NoError(t, cfg.Validate())
			}
		})
	}
}

func TestLoadRejectsFreshnessNotExceedingInterval(t *testing.T) {
	t.Setenv("AUTH_FRESHNESS_WINDOW", "1m")
	t.Setenv("AUTH_REFRESH_INTERVAL", "5m")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AUTH_FRESHNESS_WINDOW")
}
