package server

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/julianstephens/ihsan/internal/keyring"
)

// Config captures runtime configuration for the HTTP API.
type Config struct {
	Address        string
	JWTSecret      string
	JWTIssuer      string
	AllowedOrigins []string
	// SessionIdle is how long an unused session stays in memory.
	SessionIdle time.Duration
}

// ErrMissingSecret is returned when no token signing secret is configured.
var ErrMissingSecret = errors.New("no API secret configured: set IHSAN_JWT_SECRET or run 'ihsan keyring set-secret'")

// getSecret is replaced in tests.
var getSecret = keyring.GetJWTSecret

// ConfigFromEnv reads the server configuration from the environment, falling
// back to the OS keyring for the signing secret.
func ConfigFromEnv() (Config, error) {
	cfg := Config{
		Address:        getEnv("IHSAN_HTTP_ADDRESS", ":8080"),
		JWTSecret:      getEnv("IHSAN_JWT_SECRET", ""),
		JWTIssuer:      getEnv("IHSAN_JWT_ISSUER", "ihsan"),
		AllowedOrigins: splitAndTrim(getEnv("IHSAN_ALLOWED_ORIGINS", "*")),
	}
	idle, err := time.ParseDuration(getEnv("IHSAN_SESSION_IDLE", defaultSessionIdle.String()))
	if err != nil || idle <= 0 {
		return Config{}, fmt.Errorf("invalid IHSAN_SESSION_IDLE: %q", os.Getenv("IHSAN_SESSION_IDLE"))
	}
	cfg.SessionIdle = idle
	if cfg.JWTSecret == "" {
		secret, err := getSecret()
		if err != nil {
			if errors.Is(err, keyring.ErrNotFound) {
				return Config{}, ErrMissingSecret
			}
			return Config{}, fmt.Errorf("failed to read API secret: %w", err)
		}
		cfg.JWTSecret = secret
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func splitAndTrim(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
