package config

import (
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"LOG_LEVEL", "HTTP_PORT", "SERIES",
		"POLYMARKET_GAMMA_API_URL", "POLYMARKET_CLOB_API_URL",
		"RESOLVER_TOLERANCE_SECS", "RESOLVER_CHECK_PREVIOUS_BUCKET", "RESOLVER_CLOB_VALIDATION",
		"SWITCH_LEAD_TIME_SECS", "SWITCH_MIN_CONSECUTIVE", "SWITCH_OVERLAP_SECS", "SWITCH_POLL_INTERVAL",
		"FREEZE_GATE_POLL_INTERVAL", "FREEZE_GATE_RECOVER_AFTER",
		"STORAGE_MODE", "POSTGRES_HOST", "POSTGRES_PORT", "POSTGRES_USER", "POSTGRES_PASSWORD",
		"POSTGRES_DB", "POSTGRES_SSLMODE", "AUDIT_CACHE_TTL", "AUDIT_CACHE_MAX_HISTORY",
		"WS_RECORDER_ENABLED", "POLYMARKET_WS_URL", "WS_RECORDER_OUTPUT_PATH",
	}
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestLoadFromEnvDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Series != "btc15m" {
		t.Errorf("expected default series btc15m, got %q", cfg.Series)
	}
	if cfg.HTTPPort != "8080" {
		t.Errorf("expected default http port 8080, got %q", cfg.HTTPPort)
	}
	if cfg.SwitchLeadTimeSecs != 90 {
		t.Errorf("expected default lead time 90, got %d", cfg.SwitchLeadTimeSecs)
	}
	if cfg.SwitchMinConsecutive != 3 {
		t.Errorf("expected default min consecutive 3, got %d", cfg.SwitchMinConsecutive)
	}
	if cfg.StorageMode != "console" {
		t.Errorf("expected default storage mode console, got %q", cfg.StorageMode)
	}
}

func TestLoadFromEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERIES", "eth15m")
	t.Setenv("SWITCH_LEAD_TIME_SECS", "60")
	t.Setenv("SWITCH_POLL_INTERVAL", "500ms")
	t.Setenv("STORAGE_MODE", "postgres")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Series != "eth15m" {
		t.Errorf("expected eth15m, got %q", cfg.Series)
	}
	if cfg.SwitchLeadTimeSecs != 60 {
		t.Errorf("expected 60, got %d", cfg.SwitchLeadTimeSecs)
	}
	if cfg.SwitchPollInterval != 500*time.Millisecond {
		t.Errorf("expected 500ms, got %s", cfg.SwitchPollInterval)
	}
	if cfg.StorageMode != "postgres" {
		t.Errorf("expected postgres, got %q", cfg.StorageMode)
	}
}

func TestValidateRejectsUnknownSeries(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg.Series = "doge15m"

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected an error for an unknown series")
	}
}

func TestValidateRejectsEmptyHTTPPort(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg.HTTPPort = ""

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected an error for an empty http port")
	}
}

func TestValidateRejectsInvalidStorageMode(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg.StorageMode = "s3"

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected an error for an invalid storage mode")
	}
}

func TestValidateRejectsNonPositiveLeadTime(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg.SwitchLeadTimeSecs = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected an error for a non-positive lead time")
	}
}

func TestValidateRequiresWSURLWhenRecorderEnabled(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg.WSRecorderEnabled = true
	cfg.WSURL = ""

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected an error when the recorder is enabled with no URL")
	}
}

func TestGetIntOrDefaultFallsBackOnInvalidValue(t *testing.T) {
	t.Setenv("SWITCH_MIN_CONSECUTIVE", "not-a-number")
	if got := getIntOrDefault("SWITCH_MIN_CONSECUTIVE", 3); got != 3 {
		t.Errorf("expected fallback to default 3, got %d", got)
	}
}

func TestGetDurationOrDefaultFallsBackOnInvalidValue(t *testing.T) {
	t.Setenv("SWITCH_POLL_INTERVAL", "not-a-duration")
	if got := getDurationOrDefault("SWITCH_POLL_INTERVAL", 2*time.Second); got != 2*time.Second {
		t.Errorf("expected fallback to default 2s, got %s", got)
	}
}
