package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("empty environment yields defaults with no sources", func(t *testing.T) {
		cfg, err := Load()

		require.NoError(t, err)
		assert.Equal(t, ":8080", cfg.Addr)
		assert.Equal(t, 15*time.Second, cfg.ReadTimeout)
		assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
		assert.Equal(t, 3, cfg.Fetch.MaxAttempts)
		assert.Equal(t, 20*time.Second, cfg.Fetch.PageTimeout)
		assert.Empty(t, cfg.Sources)
	})

	t.Run("reads server and fetch tuning from environment", func(t *testing.T) {
		t.Setenv("ROLLUP_ADDR", ":9090")
		t.Setenv("ROLLUP_READ_TIMEOUT", "5s")
		t.Setenv("ROLLUP_FETCH_MAX_ATTEMPTS", "5")
		t.Setenv("ROLLUP_FETCH_BACKOFF_BASE", "250ms")
		t.Setenv("ROLLUP_FETCH_RATE", "2.5")

		cfg, err := Load()

		require.NoError(t, err)
		assert.Equal(t, ":9090", cfg.Addr)
		assert.Equal(t, 5*time.Second, cfg.ReadTimeout)
		assert.Equal(t, 5, cfg.Fetch.MaxAttempts)
		assert.Equal(t, 250*time.Millisecond, cfg.Fetch.BackoffBase)
		assert.Equal(t, 2.5, cfg.Fetch.RequestsPerSecond)
	})

	t.Run("a source appears once its URL is set", func(t *testing.T) {
		t.Setenv("ROLLUP_RDSTATION_URL", "https://api.rd.services/email_campaigns")
		t.Setenv("ROLLUP_RDSTATION_TOKEN", "secret")
		t.Setenv("ROLLUP_RDSTATION_MAX_SPAN_DAYS", "30")

		cfg, err := Load()

		require.NoError(t, err)
		require.Len(t, cfg.Sources, 1)
		source := cfg.Sources[0]
		assert.Equal(t, "rdstation-email", source.Name)
		assert.Equal(t, "https://api.rd.services/email_campaigns", source.BaseURL)
		assert.Equal(t, "secret", source.Token)
		assert.Equal(t, 30, source.MaxSpanDays)
	})

	t.Run("multiple sources load independently", func(t *testing.T) {
		t.Setenv("ROLLUP_GA4_URL", "https://ga4-proxy.internal/report")
		t.Setenv("ROLLUP_GA4_ROWS_KEY", "rows")
		t.Setenv("ROLLUP_LEADS_URL", "http://localhost:3000/leads")

		cfg, err := Load()

		require.NoError(t, err)
		require.Len(t, cfg.Sources, 2)
		assert.Equal(t, "ga4", cfg.Sources[0].Name)
		assert.Equal(t, "rows", cfg.Sources[0].RowsKey)
		assert.Equal(t, "leads", cfg.Sources[1].Name)
	})

	t.Run("malformed duration returns error", func(t *testing.T) {
		t.Setenv("ROLLUP_READ_TIMEOUT", "soon")

		_, err := Load()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "ROLLUP_READ_TIMEOUT")
	})

	t.Run("malformed int returns error", func(t *testing.T) {
		t.Setenv("ROLLUP_GA4_URL", "https://ga4-proxy.internal/report")
		t.Setenv("ROLLUP_GA4_MAX_PAGES", "lots")

		_, err := Load()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "ROLLUP_GA4_MAX_PAGES")
	})
}
