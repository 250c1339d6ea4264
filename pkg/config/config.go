// Package config loads the resolver core's runtime configuration from
// environment variables, following the teacher's get-or-default-then-Validate
// shape.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	// Application
	LogLevel string
	HTTPPort string
	Series   string // "btc15m" or "eth15m"

	// Polymarket API
	GammaBaseURL string
	ClobBaseURL  string

	// Resolver tuning (Component D)
	ResolverToleranceSecs       int64
	ResolverCheckPreviousBucket bool
	ResolverClobValidation      bool

	// Switch controller tuning (Component E)
	SwitchLeadTimeSecs   int64
	SwitchMinConsecutive int
	SwitchOverlapSecs    int64
	SwitchPollInterval   time.Duration

	// Freeze gate tuning (hysteresis around Component D/E)
	FreezeGatePollInterval  time.Duration
	FreezeGateRecoverAfter  int

	// Storage
	StorageMode  string // "postgres" or "console"
	PostgresHost string
	PostgresPort string
	PostgresUser string
	PostgresPass string
	PostgresDB   string
	PostgresSSL  string

	// Audit cache (bounded recent-history window backing /status/history)
	AuditCacheTTL        time.Duration
	AuditCacheMaxHistory int

	// WebSocket frame recorder (optional, out-of-core-scope capture tool)
	WSRecorderEnabled     bool
	WSURL                 string
	WSOutputPath          string
	WSDialTimeout         time.Duration
	WSPingInterval        time.Duration
	WSReconnectInitialDelay time.Duration
	WSReconnectMaxDelay     time.Duration
	WSReconnectBackoffMult  float64
	WSMessageLimit          uint64
}

// LoadFromEnv loads configuration from environment variables with defaults.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
		HTTPPort: getEnvOrDefault("HTTP_PORT", "8080"),
		Series:   getEnvOrDefault("SERIES", "btc15m"),

		GammaBaseURL: getEnvOrDefault("POLYMARKET_GAMMA_API_URL", "https://gamma-api.polymarket.com"),
		ClobBaseURL:  getEnvOrDefault("POLYMARKET_CLOB_API_URL", "https://clob.polymarket.com"),

		ResolverToleranceSecs:       int64(getIntOrDefault("RESOLVER_TOLERANCE_SECS", 120)),
		ResolverCheckPreviousBucket: getBoolOrDefault("RESOLVER_CHECK_PREVIOUS_BUCKET", true),
		ResolverClobValidation:      getBoolOrDefault("RESOLVER_CLOB_VALIDATION", true),

		SwitchLeadTimeSecs:   int64(getIntOrDefault("SWITCH_LEAD_TIME_SECS", 90)),
		SwitchMinConsecutive: getIntOrDefault("SWITCH_MIN_CONSECUTIVE", 3),
		SwitchOverlapSecs:    int64(getIntOrDefault("SWITCH_OVERLAP_SECS", 15)),
		SwitchPollInterval:   getDurationOrDefault("SWITCH_POLL_INTERVAL", 2*time.Second),

		FreezeGatePollInterval: getDurationOrDefault("FREEZE_GATE_POLL_INTERVAL", 2*time.Second),
		FreezeGateRecoverAfter: getIntOrDefault("FREEZE_GATE_RECOVER_AFTER", 3),

		StorageMode:  getEnvOrDefault("STORAGE_MODE", "console"),
		PostgresHost: getEnvOrDefault("POSTGRES_HOST", "localhost"),
		PostgresPort: getEnvOrDefault("POSTGRES_PORT", "5432"),
		PostgresUser: getEnvOrDefault("POSTGRES_USER", "resolver"),
		PostgresPass: getEnvOrDefault("POSTGRES_PASSWORD", "resolver123"),
		PostgresDB:   getEnvOrDefault("POSTGRES_DB", "resolver_core"),
		PostgresSSL:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),

		AuditCacheTTL:        getDurationOrDefault("AUDIT_CACHE_TTL", 10*time.Minute),
		AuditCacheMaxHistory: getIntOrDefault("AUDIT_CACHE_MAX_HISTORY", 50),

		WSRecorderEnabled:       getBoolOrDefault("WS_RECORDER_ENABLED", false),
		WSURL:                   getEnvOrDefault("POLYMARKET_WS_URL", "wss://ws-subscriptions-clob.polymarket.com/ws/market"),
		WSOutputPath:            getEnvOrDefault("WS_RECORDER_OUTPUT_PATH", "frames.jsonl"),
		WSDialTimeout:           getDurationOrDefault("WS_DIAL_TIMEOUT", 10*time.Second),
		WSPingInterval:          getDurationOrDefault("WS_PING_INTERVAL", 10*time.Second),
		WSReconnectInitialDelay: getDurationOrDefault("WS_RECONNECT_INITIAL_DELAY", 1*time.Second),
		WSReconnectMaxDelay:     getDurationOrDefault("WS_RECONNECT_MAX_DELAY", 30*time.Second),
		WSReconnectBackoffMult:  getFloat64OrDefault("WS_RECONNECT_BACKOFF_MULTIPLIER", 2.0),
		WSMessageLimit:          uint64(getIntOrDefault("WS_RECORDER_MESSAGE_LIMIT", 0)),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks that configuration values are valid.
func (c *Config) Validate() error {
	if c.HTTPPort == "" {
		return errors.New("HTTP_PORT cannot be empty")
	}

	if c.Series != "btc15m" && c.Series != "eth15m" {
		return fmt.Errorf("SERIES must be 'btc15m' or 'eth15m', got %q", c.Series)
	}

	if c.GammaBaseURL == "" {
		return errors.New("POLYMARKET_GAMMA_API_URL cannot be empty")
	}

	if c.ClobBaseURL == "" {
		return errors.New("POLYMARKET_CLOB_API_URL cannot be empty")
	}

	if c.ResolverToleranceSecs < 0 {
		return fmt.Errorf("RESOLVER_TOLERANCE_SECS must be non-negative, got %d", c.ResolverToleranceSecs)
	}

	if c.SwitchLeadTimeSecs <= 0 {
		return fmt.Errorf("SWITCH_LEAD_TIME_SECS must be positive, got %d", c.SwitchLeadTimeSecs)
	}

	if c.SwitchMinConsecutive < 1 {
		return fmt.Errorf("SWITCH_MIN_CONSECUTIVE must be at least 1, got %d", c.SwitchMinConsecutive)
	}

	if c.SwitchOverlapSecs < 0 {
		return fmt.Errorf("SWITCH_OVERLAP_SECS must be non-negative, got %d", c.SwitchOverlapSecs)
	}

	if c.SwitchPollInterval <= 0 {
		return fmt.Errorf("SWITCH_POLL_INTERVAL must be positive, got %s", c.SwitchPollInterval)
	}

	if c.FreezeGateRecoverAfter < 1 {
		return fmt.Errorf("FREEZE_GATE_RECOVER_AFTER must be at least 1, got %d", c.FreezeGateRecoverAfter)
	}

	if c.StorageMode != "postgres" && c.StorageMode != "console" {
		return fmt.Errorf("STORAGE_MODE must be 'postgres' or 'console', got %q", c.StorageMode)
	}

	if c.AuditCacheMaxHistory < 1 {
		return fmt.Errorf("AUDIT_CACHE_MAX_HISTORY must be at least 1, got %d", c.AuditCacheMaxHistory)
	}

	if c.WSRecorderEnabled && c.WSURL == "" {
		return errors.New("POLYMARKET_WS_URL cannot be empty when WS_RECORDER_ENABLED is true")
	}

	return nil
}

func getEnvOrDefault(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intVal, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intVal
}

func getFloat64OrDefault(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	floatVal, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}

	return floatVal
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}

	return duration
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	boolVal, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}

	return boolVal
}
