// Package config loads the brain service's runtime configuration from
// environment variables, the same flat-struct-with-defaults shape the
// teacher uses for its API/CLI configs.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the single configuration struct shared by brain-api and
// brain-worker. Each binary only reads the fields it
// needs, but loading is done once, in one place, so required-secret
// validation never has to be duplicated.
type Config struct {
	Addr string

	DatabaseURL string

	AuthJWTSecret   string
	BrainHMACSecret string
	CronSecret      string

	SweepAdvisoryLockKey int64
	SweepInterval        time.Duration

	MatchdayLambdaHome float64
	MatchdayLambdaAway float64
	MatchdayRetryMax   int
	MatchdayRetryBase  time.Duration

	LeaderboardPageSize int
}

// LoadFromEnv loads Config from the process environment, applying the
// teacher's envDefault/envDurationDefault/envBoolDefault idiom, and fails
// fast if a required secret is missing.
func LoadFromEnv() (Config, error) {
	addr := os.Getenv("PORT")
	if addr != "" {
		if !strings.HasPrefix(addr, ":") {
			addr = ":" + addr
		}
	} else {
		addr = envDefault("BRAIN_API_ADDR", ":8080")
	}

	cfg := Config{
		Addr:                 addr,
		DatabaseURL:          strings.TrimSpace(os.Getenv("DATABASE_URL")),
		AuthJWTSecret:        os.Getenv("AUTH_JWT_SECRET"),
		BrainHMACSecret:      os.Getenv("BRAIN_HMAC_SECRET"),
		CronSecret:           os.Getenv("CRON_SECRET"),
		SweepAdvisoryLockKey: envInt64Default("BRAIN_SWEEP_LOCK_KEY", 847_291),
		SweepInterval:        envDurationDefault("BRAIN_SWEEP_INTERVAL", 5*time.Minute),
		MatchdayLambdaHome:   envFloatDefault("BRAIN_MATCHDAY_LAMBDA_HOME", 1.45),
		MatchdayLambdaAway:   envFloatDefault("BRAIN_MATCHDAY_LAMBDA_AWAY", 1.15),
		MatchdayRetryMax:     envIntDefault("BRAIN_MATCHDAY_RETRY_MAX", 3),
		MatchdayRetryBase:    envDurationDefault("BRAIN_MATCHDAY_RETRY_BASE", 500*time.Millisecond),
		LeaderboardPageSize:  envIntDefault("BRAIN_LEADERBOARD_PAGE_SIZE", 50),
	}

	if cfg.DatabaseURL == "" {
		return cfg, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.AuthJWTSecret == "" {
		return cfg, fmt.Errorf("AUTH_JWT_SECRET is required")
	}
	if cfg.BrainHMACSecret == "" {
		return cfg, fmt.Errorf("BRAIN_HMAC_SECRET is required")
	}
	if cfg.CronSecret == "" {
		return cfg, fmt.Errorf("CRON_SECRET is required")
	}
	return cfg, nil
}

// CLIConfig is brainctl's own minimal config: where the API lives and
// how it authenticates, loaded separately since brainctl never opens a
// database connection directly.
type CLIConfig struct {
	APIBaseURL string
	CronSecret string
}

func LoadCLIFromEnv() CLIConfig {
	return CLIConfig{
		APIBaseURL: strings.TrimRight(envDefault("BRAIN_API_BASE_URL", "http://localhost:8080"), "/"),
		CronSecret: os.Getenv("CRON_SECRET"),
	}
}

func envDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envDurationDefault(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func envFloatDefault(key string, fallback float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func envIntDefault(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envInt64Default(key string, fallback int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func envBoolDefault(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
