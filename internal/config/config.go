// Package config loads client configuration from environment variables,
// with an optional .env file for local development.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the CLI and the stub server read from the environment.
type Config struct {
	// APIBaseURL is the root of the BitEvents REST API, including the /api prefix.
	APIBaseURL string
	// StateFile is where the persisted session (user + token) lives.
	StateFile string
	// HTTPTimeout bounds every outgoing API request.
	HTTPTimeout time.Duration
	// LogLevel is one of debug, info, warn, error.
	LogLevel string

	Stub struct {
		Addr         string
		JWTSecret    string
		TokenExpiry  time.Duration
		ReadTimeout  time.Duration
		WriteTimeout time.Duration
		IdleTimeout  time.Duration
	}
}

// Load reads configuration from the environment. A .env file in the working
// directory is merged in first when present; missing keys fall back to
// local-development defaults.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		APIBaseURL:  getEnv("BITEVENTS_API_URL", "http://localhost:8080/api"),
		StateFile:   getEnv("BITEVENTS_STATE_FILE", defaultStateFile()),
		HTTPTimeout: getEnvAsDuration("BITEVENTS_HTTP_TIMEOUT", "10s"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
	}

	cfg.Stub.Addr = getEnv("STUB_ADDR", ":8080")
	cfg.Stub.JWTSecret = getEnv("STUB_JWT_SECRET", "bitevents-dev-secret")
	cfg.Stub.TokenExpiry = getEnvAsDuration("STUB_TOKEN_EXPIRY", "24h")
	cfg.Stub.ReadTimeout = getEnvAsDuration("STUB_READ_TIMEOUT", "15s")
	cfg.Stub.WriteTimeout = getEnvAsDuration("STUB_WRITE_TIMEOUT", "15s")
	cfg.Stub.IdleTimeout = getEnvAsDuration("STUB_IDLE_TIMEOUT", "60s")

	return cfg
}

// defaultStateFile places the session file under the user config directory,
// falling back to the working directory when none is resolvable.
func defaultStateFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".bitevents-session.json"
	}
	return filepath.Join(dir, "bitevents", "session.json")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsDuration(key, fallback string) time.Duration {
	d, err := time.ParseDuration(getEnv(key, fallback))
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}
