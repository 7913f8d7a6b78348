// Package config loads the report server's configuration from environment
// variables. Every knob has a default; an empty environment yields a server
// with no sources wired, which still serves push-style reports.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	Fetch           FetchConfig
	Sources         []SourceConfig
}

// FetchConfig tunes the windowed fetch coordinator shared by all sources.
type FetchConfig struct {
	MaxAttempts       int
	PageTimeout       time.Duration
	BackoffBase       time.Duration
	RequestsPerSecond float64
}

// SourceConfig wires one upstream provider endpoint.
type SourceConfig struct {
	// Source name used in report URLs: "rdstation-email", "ga4", "meta-ads",
	// or "leads".
	Name string

	BaseURL string
	Token   string
	RowsKey string

	// Provider fetch constraints; zero values fall back to the provider preset.
	MaxSpanDays int
	MaxPages    int
}

// knownSources maps source names to the environment prefix carrying their
// endpoint settings.
var knownSources = []struct {
	name   string
	prefix string
}{
	{"rdstation-email", "ROLLUP_RDSTATION"},
	{"ga4", "ROLLUP_GA4"},
	{"meta-ads", "ROLLUP_META"},
	{"leads", "ROLLUP_LEADS"},
}

func Load() (*Config, error) {
	cfg := &Config{
		Addr:            envString("ROLLUP_ADDR", ":8080"),
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    60 * time.Second,
		ShutdownTimeout: 30 * time.Second,
		Fetch: FetchConfig{
			MaxAttempts:       3,
			PageTimeout:       20 * time.Second,
			BackoffBase:       500 * time.Millisecond,
			RequestsPerSecond: 5,
		},
	}

	var err error
	if cfg.ReadTimeout, err = envDuration("ROLLUP_READ_TIMEOUT", cfg.ReadTimeout); err != nil {
		return nil, err
	}
	if cfg.WriteTimeout, err = envDuration("ROLLUP_WRITE_TIMEOUT", cfg.WriteTimeout); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = envDuration("ROLLUP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout); err != nil {
		return nil, err
	}
	if cfg.Fetch.MaxAttempts, err = envInt("ROLLUP_FETCH_MAX_ATTEMPTS", cfg.Fetch.MaxAttempts); err != nil {
		return nil, err
	}
	if cfg.Fetch.PageTimeout, err = envDuration("ROLLUP_FETCH_PAGE_TIMEOUT", cfg.Fetch.PageTimeout); err != nil {
		return nil, err
	}
	if cfg.Fetch.BackoffBase, err = envDuration("ROLLUP_FETCH_BACKOFF_BASE", cfg.Fetch.BackoffBase); err != nil {
		return nil, err
	}
	if cfg.Fetch.RequestsPerSecond, err = envFloat("ROLLUP_FETCH_RATE", cfg.Fetch.RequestsPerSecond); err != nil {
		return nil, err
	}

	for _, known := range knownSources {
		baseURL := os.Getenv(known.prefix + "_URL")
		if baseURL == "" {
			continue
		}
		source := SourceConfig{
			Name:    known.name,
			BaseURL: baseURL,
			Token:   os.Getenv(known.prefix + "_TOKEN"),
			RowsKey: os.Getenv(known.prefix + "_ROWS_KEY"),
		}
		if source.MaxSpanDays, err = envInt(known.prefix+"_MAX_SPAN_DAYS", 0); err != nil {
			return nil, err
		}
		if source.MaxPages, err = envInt(known.prefix+"_MAX_PAGES", 0); err != nil {
			return nil, err
		}
		cfg.Sources = append(cfg.Sources, source)
	}

	return cfg, nil
}

func envString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}

func envInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}

func envFloat(key string, fallback float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}
