package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	// DefaultJWTSecret is only acceptable outside production.
	DefaultJWTSecret = "dev-secret"

	envProduction = "production"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr           string
	Password       string
	DB             int
	TriggerChannel string
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret       string
	Domain          string
	TokenValidity   time.Duration
	FreshnessWindow time.Duration
	RefreshInterval time.Duration
	InvitationTTL   time.Duration
	BcryptCost      int
	CookieName      string
	CookieSecure    bool
	// TestBypass short-circuits request authorization to TestIdentity.
	// Never honored in production.
	TestBypass   bool
	TestIdentity string
}

// NotificationConfig holds invitation delivery settings.
type NotificationConfig struct {
	EmailFrom   string
	CallbackURL string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "auth-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "3000"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,
		},
		Redis: RedisConfig{
			Addr:           getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password:       os.Getenv("REDIS_PASSWORD"),
			DB:             redisDB,
			TriggerChannel: getEnv("REDIS_TRIGGER_CHANNEL", "auth:refresh"),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:       getEnv("AUTH_JWT_SECRET", DefaultJWTSecret),
			Domain:          getEnv("AUTH_DOMAIN", "localhost"),
			TokenValidity:   getEnvAsDuration("AUTH_TOKEN_VALIDITY", 24*time.Hour),
			FreshnessWindow: getEnvAsDuration("AUTH_FRESHNESS_WINDOW", 15*time.Minute),
			RefreshInterval: getEnvAsDuration("AUTH_REFRESH_INTERVAL", 60*time.Second),
			InvitationTTL:   getEnvAsDuration("AUTH_INVITATION_TTL", 24*time.Hour),
			BcryptCost:      getEnvAsInt("AUTH_BCRYPT_COST", 10),
			CookieName:      getEnv("AUTH_COOKIE_NAME", "auth"),
			CookieSecure:    getEnvAsBool("AUTH_COOKIE_SECURE", false),
			TestBypass:      getEnvAsBool("AUTH_TEST_BYPASS", false),
			TestIdentity:    getEnv("AUTH_TEST_IDENTITY", "user@test"),
		},
		Notification: NotificationConfig{
			EmailFrom:   getEnv("NOTIFY_EMAIL_FROM", "noreply@example.com"),
			CallbackURL: getEnv("NOTIFY_CALLBACK_URL", "http://localhost:3000/register.html"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects combinations that are unsafe or meaningless.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("AUTH_JWT_SECRET must not be empty")
	}
	if c.App.IsProduction() {
		if c.Auth.JWTSecret == DefaultJWTSecret {
			return errors.New("AUTH_JWT_SECRET must be set in production")
		}
		if c.Auth.TestBypass {
			return errors.New("AUTH_TEST_BYPASS is not allowed in production")
		}
	}
	if c.Auth.TokenValidity <= 0 {
		return fmt.Errorf("invalid AUTH_TOKEN_VALIDITY: %s", c.Auth.TokenValidity)
	}
	if c.Auth.FreshnessWindow <= 0 {
		return fmt.Errorf("invalid AUTH_FRESHNESS_WINDOW: %s", c.Auth.FreshnessWindow)
	}
	if c.Auth.RefreshInterval <= 0 {
		return fmt.Errorf("invalid AUTH_REFRESH_INTERVAL: %s", c.Auth.RefreshInterval)
	}
	// Entries must outlive the gap between two refreshes or every token is
	// refused for the tail of each cycle.
	if c.Auth.FreshnessWindow <= c.Auth.RefreshInterval {
		return fmt.Errorf("AUTH_FRESHNESS_WINDOW (%s) must exceed AUTH_REFRESH_INTERVAL (%s)",
			c.Auth.FreshnessWindow, c.Auth.RefreshInterval)
	}
	return nil
}

// IsProduction reports whether the service runs with production settings.
func (a AppConfig) IsProduction() bool {
	return a.Env == envProduction
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(val)
	if err != nil {
		return fallback
	}
	return parsed
}
