package config

import (
	"os"
	"testing"
	"time"
)

func clearEnv(t *testing.T, keys ...string) {
	for _, k := range keys {
		old, had := os.LookupEnv(k)
		os.Unsetenv(k)
		t.Cleanup(func() {
			if had {
				os.Setenv(k, old)
			}
		})
	}
}

func TestLoadFromEnvRequiresSecrets(t *testing.T) {
	clearEnv(t, "DATABASE_URL", "AUTH_JWT_SECRET", "BRAIN_HMAC_SECRET", "CRON_SECRET", "PORT")

	if _, err := LoadFromEnv(); err == nil {
		t.Fatalf("expected error when DATABASE_URL is missing")
	}

	os.Setenv("DATABASE_URL", "postgres://localhost/brain")
	if _, err := LoadFromEnv(); err == nil {
		t.Fatalf("expected error when AUTH_JWT_SECRET is missing")
	}

	os.Setenv("AUTH_JWT_SECRET", "jwt-secret")
	if _, err := LoadFromEnv(); err == nil {
		t.Fatalf("expected error when BRAIN_HMAC_SECRET is missing")
	}

	os.Setenv("BRAIN_HMAC_SECRET", "hmac-secret")
	if _, err := LoadFromEnv(); err == nil {
		t.Fatalf("expected error when CRON_SECRET is missing")
	}

	os.Setenv("CRON_SECRET", "cron-secret")
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Fatalf("Addr = %q, want :8080", cfg.Addr)
	}
	if cfg.SweepInterval != 5*time.Minute {
		t.Fatalf("SweepInterval = %v, want 5m", cfg.SweepInterval)
	}
}

func TestLoadFromEnvPortWithoutColon(t *testing.T) {
	clearEnv(t, "DATABASE_URL", "AUTH_JWT_SECRET", "BRAIN_HMAC_SECRET", "CRON_SECRET", "PORT")
	os.Setenv("DATABASE_URL", "postgres://localhost/brain")
	os.Setenv("AUTH_JWT_SECRET", "jwt-secret")
	os.Setenv("BRAIN_HMAC_SECRET", "hmac-secret")
	os.Setenv("CRON_SECRET", "cron-secret")
	os.Setenv("PORT", "9090")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Addr != ":9090" {
		t.Fatalf("Addr = %q, want :9090", cfg.Addr)
	}
}

func TestEnvDurationDefaultFallsBackOnGarbage(t *testing.T) {
	clearEnv(t, "BRAIN_SWEEP_INTERVAL")
	os.Setenv("BRAIN_SWEEP_INTERVAL", "not-a-duration")

	got := envDurationDefault("BRAIN_SWEEP_INTERVAL", 7*time.Minute)
	if got != 7*time.Minute {
		t.Fatalf("envDurationDefault = %v, want fallback 7m", got)
	}
}

func TestLoadCLIFromEnvTrimsTrailingSlash(t *testing.T) {
	clearEnv(t, "BRAIN_API_BASE_URL")
	os.Setenv("BRAIN_API_BASE_URL", "http://localhost:8080/")

	cfg := LoadCLIFromEnv()
	if cfg.APIBaseURL != "http://localhost:8080" {
		t.Fatalf("APIBaseURL = %q, want trimmed", cfg.APIBaseURL)
	}
}
