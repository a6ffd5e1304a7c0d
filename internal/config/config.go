// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	GitHubToken     string
	ListenAddr      string
	DBPath          string
	RefreshInterval time.Duration // 0 disables periodic refresh; reloads are then user intents only.
	Debounce        time.Duration
}

// Load reads configuration from environment variables and returns a validated
// Config. REVIEWDECK_GITHUB_TOKEN is required. Optional variables with
// defaults: REVIEWDECK_LISTEN_ADDR (127.0.0.1:8080), REVIEWDECK_DB_PATH
// (reviewdeck.db), REVIEWDECK_REFRESH_INTERVAL (0, disabled),
// REVIEWDECK_DEBOUNCE (300ms).
func Load() (*Config, error) {
	token := os.Getenv("REVIEWDECK_GITHUB_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("REVIEWDECK_GITHUB_TOKEN is required")
	}

	listenAddr := "127.0.0.1:8080"
	if v, ok := os.LookupEnv("REVIEWDECK_LISTEN_ADDR"); ok {
		listenAddr = v
	}

	dbPath := "reviewdeck.db"
	if v, ok := os.LookupEnv("REVIEWDECK_DB_PATH"); ok {
		dbPath = v
	}

	var refreshInterval time.Duration
	if v, ok := os.LookupEnv("REVIEWDECK_REFRESH_INTERVAL"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("REVIEWDECK_REFRESH_INTERVAL has invalid duration %q: %w", v, err)
		}
		refreshInterval = parsed
	}

	debounce := 300 * time.Millisecond
	if v, ok := os.LookupEnv("REVIEWDECK_DEBOUNCE"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("REVIEWDECK_DEBOUNCE has invalid duration %q: %w", v, err)
		}
		debounce = parsed
	}

	return &Config{
		GitHubToken:     token,
		ListenAddr:      listenAddr,
		DBPath:          dbPath,
		RefreshInterval: refreshInterval,
		Debounce:        debounce,
	}, nil
}
