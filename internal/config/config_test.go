package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("NATS_SUBJECT", "")
	t.Setenv("DEFAULT_CONFLICT_STRATEGY", "")
	t.Setenv("CLASSIFY_WORKERS", "")
	t.Setenv("API_RATE_LIMIT_RPS", "")

	cfg := Load()
	if cfg.NATSSubject != "plans.submitted" {
		t.Fatalf("expected default subject plans.submitted, got %q", cfg.NATSSubject)
	}
	if cfg.DefaultConflictStrategy != "version" {
		t.Fatalf("expected default conflict strategy version, got %q", cfg.DefaultConflictStrategy)
	}
	if cfg.ClassifyWorkers != 4 {
		t.Fatalf("expected default classify workers 4, got %d", cfg.ClassifyWorkers)
	}
	if cfg.APIRateLimitRPS != 0 {
		t.Fatalf("expected rate limit disabled by default, got %d", cfg.APIRateLimitRPS)
	}
	if cfg.RetryMaxAttempts != 3 || cfg.RetryBackoffMillis != 100 {
		t.Fatalf("expected retry defaults 3/100ms, got %d/%d", cfg.RetryMaxAttempts, cfg.RetryBackoffMillis)
	}
	if !cfg.BreakerEnabled || cfg.BreakerOpenTimeoutSeconds != 30 {
		t.Fatalf("expected breaker enabled with 30s open timeout, got %v/%d", cfg.BreakerEnabled, cfg.BreakerOpenTimeoutSeconds)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("DEFAULT_CONFLICT_STRATEGY", "skip")
	t.Setenv("CLASSIFY_WORKERS", "8")
	t.Setenv("API_RATE_LIMIT_RPS", "25")
	t.Setenv("API_RATE_LIMIT_BURST", "50")
	t.Setenv("CLASSIFY_WORKERS_BAD", "x")

	cfg := Load()
	if cfg.DefaultConflictStrategy != "skip" {
		t.Fatalf("expected conflict strategy override, got %q", cfg.DefaultConflictStrategy)
	}
	if cfg.ClassifyWorkers != 8 {
		t.Fatalf("expected classify workers 8, got %d", cfg.ClassifyWorkers)
	}
	if cfg.APIRateLimitRPS != 25 || cfg.APIRateLimitBurst != 50 {
		t.Fatalf("expected rate limit 25/50, got %d/%d", cfg.APIRateLimitRPS, cfg.APIRateLimitBurst)
	}
}

func TestLoadParsesResilienceKnobs(t *testing.T) {
	t.Setenv("RETRY_MAX_ATTEMPTS", "5")
	t.Setenv("RETRY_BACKOFF_MS", "250")
	t.Setenv("BREAKER_ENABLED", "false")
	t.Setenv("BREAKER_OPEN_TIMEOUT_S", "60")

	cfg := Load()
	if cfg.RetryMaxAttempts != 5 || cfg.RetryBackoffMillis != 250 {
		t.Fatalf("expected retry override 5/250ms, got %d/%d", cfg.RetryMaxAttempts, cfg.RetryBackoffMillis)
	}
	if cfg.BreakerEnabled {
		t.Fatalf("expected breaker disabled")
	}
	if cfg.BreakerOpenTimeoutSeconds != 60 {
		t.Fatalf("expected 60s open timeout, got %d", cfg.BreakerOpenTimeoutSeconds)
	}
}

func TestLoadIgnoresUnparsableBool(t *testing.T) {
	t.Setenv("BREAKER_ENABLED", "sim")

	cfg := Load()
	if !cfg.BreakerEnabled {
		t.Fatalf("expected fallback on unparsable bool")
	}
}

func TestLoadIgnoresUnparsableInt(t *testing.T) {
	t.Setenv("CLASSIFY_WORKERS", "not-a-number")

	cfg := Load()
	if cfg.ClassifyWorkers != 4 {
		t.Fatalf("expected fallback on unparsable int, got %d", cfg.ClassifyWorkers)
	}
}
