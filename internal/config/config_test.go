package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsValidate(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, []int64{1_000, 10_000, 50_000, 100_000, 500_000}, cfg.Analysis.ClipSizesUSD)
	assert.Len(t, cfg.Venues.Enabled, 5)
	assert.Equal(t, "static", cfg.Fees.Source)
	assert.Equal(t, 4.0, cfg.Fees.Table["Hyperliquid"])
	assert.Equal(t, 0.0, cfg.Fees.Table["Paradex"])
}

func TestLoadMergesTOMLOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
mode = "scan"
log_level = "debug"

[analysis]
clip_sizes_usd = [1000, 25000]
fetch_timeout = "5s"

[venues]
enabled = ["Hyperliquid", "Paradex"]
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "scan", cfg.Mode)
	assert.Equal(t, []int64{1000, 25000}, cfg.Analysis.ClipSizesUSD)
	assert.Equal(t, 5*time.Second, cfg.Analysis.FetchTimeout.Duration)
	assert.Equal(t, []string{"Hyperliquid", "Paradex"}, cfg.Venues.Enabled)

	// Untouched sections keep their defaults.
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PERPLIQ_MODE", "scan")
	t.Setenv("PERPLIQ_ANALYSIS_FETCH_TIMEOUT", "3s")
	t.Setenv("PERPLIQ_ANALYSIS_INSTRUMENTS", "BTC, ETH")
	t.Setenv("PERPLIQ_SERVER_PORT", "9090")
	t.Setenv("PERPLIQ_REDIS_ENABLED", "true")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "scan", cfg.Mode)
	assert.Equal(t, 3*time.Second, cfg.Analysis.FetchTimeout.Duration)
	assert.Equal(t, []string{"BTC", "ETH"}, cfg.Analysis.Instruments)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.True(t, cfg.Redis.Enabled)
}

func TestValidateCollectsAllProblems(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "dashboard"
	cfg.Analysis.ClipSizesUSD = nil
	cfg.Venues.Enabled = []string{"Binance"}
	cfg.Fees.Source = "csv"

	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorContains(t, err, "unknown mode")
	assert.ErrorContains(t, err, "clip_sizes_usd")
	assert.ErrorContains(t, err, `unknown venue "Binance"`)
	assert.ErrorContains(t, err, "unknown source")
}

func TestValidateFeedRequiresRedis(t *testing.T) {
	cfg := Defaults()
	cfg.Feed.Enabled = true
	cfg.Redis.Enabled = false

	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorContains(t, err, "requires redis")
}

func TestValidatePostgresOnlyWhenFeeSourceIsPostgres(t *testing.T) {
	cfg := Defaults()
	cfg.Postgres.Host = ""
	cfg.Postgres.Database = ""
	require.NoError(t, cfg.Validate(), "postgres settings are ignored with a static fee source")

	cfg.Fees.Source = "postgres"
	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorContains(t, err, "postgres: host")
}

func TestFetchTimeoutOrDefault(t *testing.T) {
	var a Analysis
	assert.Equal(t, 10*time.Second, a.FetchTimeoutOrDefault())

	a.FetchTimeout = duration{5 * time.Second}
	assert.Equal(t, 5*time.Second, a.FetchTimeoutOrDefault())

	// Deadlines are capped so one slow venue cannot stall a whole report.
	a.FetchTimeout = duration{time.Minute}
	assert.Equal(t, 15*time.Second, a.FetchTimeoutOrDefault())
}

func TestAllowedInstrument(t *testing.T) {
	cfg := Defaults()
	assert.True(t, cfg.AllowedInstrument("BTC"))
	assert.True(t, cfg.AllowedInstrument("btc"))
	assert.False(t, cfg.AllowedInstrument("DOGE"))
}
