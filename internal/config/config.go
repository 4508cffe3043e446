// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing or malformed, Load returns an
// error and the process exits.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// MemoryDatabase selects the in-memory backend instead of PostgreSQL.
const MemoryDatabase = "memory"

// Config holds all runtime configuration for the board service.
type Config struct {
	Port              string
	GRPCPort          string
	DatabaseURL       string
	RedisURL          string
	SessionTTL        time.Duration
	ResumeDir         string
	MaxResumeBytes    int64
	DigestSchedule    string
	StrictTransitions bool
	SecureCookies     bool
}

// InMemory reports whether the service runs without PostgreSQL and Redis.
func (c *Config) InMemory() bool { return c.DatabaseURL == MemoryDatabase }

// Load reads a .env file when present, then the environment, and returns a
// validated Config.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required (use %q for the in-memory backend)", MemoryDatabase)
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" && dbURL != MemoryDatabase {
		return nil, fmt.Errorf("REDIS_URL is required")
	}

	sessionTTL, err := durationEnv("SESSION_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	maxResume, err := intEnv("MAX_RESUME_BYTES", 5<<20)
	if err != nil {
		return nil, err
	}
	strict, err := boolEnv("WORKFLOW_STRICT_TRANSITIONS", false)
	if err != nil {
		return nil, err
	}
	secure, err := boolEnv("SECURE_COOKIES", false)
	if err != nil {
		return nil, err
	}

	return &Config{
		Port:              stringEnv("BOARD_PORT", "8083"),
		GRPCPort:          stringEnv("BOARD_GRPC_PORT", "9083"),
		DatabaseURL:       dbURL,
		RedisURL:          redisURL,
		SessionTTL:        sessionTTL,
		ResumeDir:         stringEnv("RESUME_DIR", "./media"),
		MaxResumeBytes:    int64(maxResume),
		DigestSchedule:    stringEnv("DIGEST_SCHEDULE", "@daily"),
		StrictTransitions: strict,
		SecureCookies:     secure,
	}, nil
}

func stringEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration, got %q", key, s)
	}
	return d, nil
}

func intEnv(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, s)
	}
	return v, nil
}

func boolEnv(key string, fallback bool) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean, got %q", key, s)
	}
	return v, nil
}
