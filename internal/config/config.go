// Package config defines the top-level configuration for perpliq and
// provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by PERPLIQ_* environment
// variables.
type Config struct {
	Analysis Analysis       `toml:"analysis"`
	Venues   VenuesConfig   `toml:"venues"`
	Fees     FeesConfig     `toml:"fees"`
	Postgres PostgresConfig `toml:"postgres"`
	Redis    RedisConfig    `toml:"redis"`
	S3       S3Config       `toml:"s3"`
	Feed     FeedConfig     `toml:"feed"`
	Server   ServerConfig   `toml:"server"`
	Mode     string         `toml:"mode"`
	LogLevel string         `toml:"log_level"`
}

// Analysis holds the engine parameters: clip sizes, the instruments users may
// select, and the per-venue fetch deadline.
type Analysis struct {
	// ClipSizesUSD are the notional sizes simulated against every book.
	ClipSizesUSD []int64 `toml:"clip_sizes_usd"`

	// Instruments is the allowlist of tickers that may be analyzed.
	Instruments []string `toml:"instruments"`

	// FetchTimeout bounds each venue fetch; a venue that misses the deadline
	// fails alone without aborting the others.
	FetchTimeout duration `toml:"fetch_timeout"`

	// CacheTTL is how long a completed report stays servable from cache.
	// Zero disables report caching.
	CacheTTL duration `toml:"cache_ttl"`

	// ArchiveReports uploads each completed report to object storage.
	ArchiveReports bool `toml:"archive_reports"`
}

// VenuesConfig selects which venues are queried and lets deployments point
// clients at alternative API hosts.
type VenuesConfig struct {
	Enabled     []string    `toml:"enabled"`
	Hyperliquid VenueConfig `toml:"hyperliquid"`
	Paradex     VenueConfig `toml:"paradex"`
	Extended    VenueConfig `toml:"extended"`
	Lighter     VenueConfig `toml:"lighter"`
	Pacifica    VenueConfig `toml:"pacifica"`
}

// VenueConfig holds per-venue endpoint overrides. Empty fields fall back to
// the venue package's production defaults.
type VenueConfig struct {
	BaseURL string `toml:"base_url"`
	WsURL   string `toml:"ws_url"`
	Depth   int    `toml:"depth"`
}

// FeesConfig seeds the static taker-fee table. When postgres is enabled the
// database table takes precedence and these rows act as the bootstrap seed.
type FeesConfig struct {
	// Source selects where fees are read from: "static" or "postgres".
	Source string `toml:"source"`

	// Table maps exchange name to taker fee in basis points.
	Table map[string]float64 `toml:"table"`

	// Assumptions documents the tier each fee assumes, keyed like Table.
	Assumptions map[string]string `toml:"assumptions"`
}

// PostgresConfig holds PostgreSQL connection parameters for the fee store.
type PostgresConfig struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Enabled    bool   `toml:"enabled"`
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// S3Config holds S3-compatible object storage parameters for report archival.
type S3Config struct {
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// FeedConfig controls the optional Hyperliquid websocket book feed that keeps
// the book cache warm in serve mode.
type FeedConfig struct {
	Enabled     bool     `toml:"enabled"`
	Instruments []string `toml:"instruments"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
	APIKey      string   `toml:"api_key"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "10s", "5m").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "10s" or "5m".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// FetchTimeoutOrDefault returns the per-venue fetch deadline, defaulting to
// 10s and capped at 15s.
func (a Analysis) FetchTimeoutOrDefault() time.Duration {
	t := a.FetchTimeout.Duration
	if t <= 0 {
		return 10 * time.Second
	}
	if t > 15*time.Second {
		return 15 * time.Second
	}
	return t
}

// Defaults returns a Config populated with reasonable default values.
// These match the values in config.example.toml.
func Defaults() Config {
	return Config{
		Analysis: Analysis{
			ClipSizesUSD: []int64{1_000, 10_000, 50_000, 100_000, 500_000},
			Instruments:  []string{"BTC", "ETH", "SOL", "XRP", "HYPE", "BNB"},
			FetchTimeout: duration{10 * time.Second},
			CacheTTL:     duration{30 * time.Second},
		},
		Venues: VenuesConfig{
			Enabled: []string{"Extended", "Hyperliquid", "Lighter", "Pacifica", "Paradex"},
		},
		Fees: FeesConfig{
			Source: "static",
			Table: map[string]float64{
				"Hyperliquid": 4,
				"Extended":    2.5,
				"Lighter":     2,
				"Paradex":     0,
				"Pacifica":    4,
			},
			Assumptions: map[string]string{
				"Hyperliquid": ">5M 14D volume, 0 HYPE staked",
				"Lighter":     "Premium Account",
			},
		},
		Postgres: PostgresConfig{
			Host:          "localhost",
			Port:          5432,
			Database:      "perpliq",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   20,
			MaxRetries: 3,
		},
		S3: S3Config{
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			Bucket:         "perpliq-reports",
			ForcePathStyle: true,
		},
		Server: ServerConfig{
			Port: 8080,
		},
		Mode:     "serve",
		LogLevel: "info",
	}
}

var validModes = map[string]bool{
	"serve": true,
	"scan":  true,
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validFeeSources = map[string]bool{
	"static":   true,
	"postgres": true,
}

var knownVenues = map[string]bool{
	"Hyperliquid": true,
	"Paradex":     true,
	"Extended":    true,
	"Lighter":     true,
	"Pacifica":    true,
}

// Validate checks Config for obviously invalid or missing values and returns
// a combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: serve, scan)", c.Mode))
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Analysis
	if len(c.Analysis.ClipSizesUSD) == 0 {
		errs = append(errs, "analysis: clip_sizes_usd must not be empty")
	}
	for _, size := range c.Analysis.ClipSizesUSD {
		if size <= 0 {
			errs = append(errs, fmt.Sprintf("analysis: clip size must be positive, got %d", size))
		}
	}
	if len(c.Analysis.Instruments) == 0 {
		errs = append(errs, "analysis: instruments must not be empty")
	}
	if c.Analysis.FetchTimeout.Duration < 0 {
		errs = append(errs, "analysis: fetch_timeout must not be negative")
	}

	// Venues
	if len(c.Venues.Enabled) == 0 {
		errs = append(errs, "venues: enabled must not be empty")
	}
	for _, v := range c.Venues.Enabled {
		if !knownVenues[v] {
			errs = append(errs, fmt.Sprintf("venues: unknown venue %q", v))
		}
	}

	// Fees
	if !validFeeSources[strings.ToLower(c.Fees.Source)] {
		errs = append(errs, fmt.Sprintf("fees: unknown source %q (valid: static, postgres)", c.Fees.Source))
	}
	for exch, fee := range c.Fees.Table {
		if fee < 0 {
			errs = append(errs, fmt.Sprintf("fees: taker fee for %s must not be negative, got %g", exch, fee))
		}
	}

	// Postgres is only required when it backs the fee store.
	if strings.ToLower(c.Fees.Source) == "postgres" {
		if strings.TrimSpace(c.Postgres.DSN) == "" {
			if c.Postgres.Host == "" {
				errs = append(errs, "postgres: host must not be empty (or set postgres.dsn)")
			}
			if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
				errs = append(errs, fmt.Sprintf("postgres: port must be 1-65535, got %d", c.Postgres.Port))
			}
			if c.Postgres.Database == "" {
				errs = append(errs, "postgres: database must not be empty")
			}
		}
		if c.Postgres.PoolMaxConns < 1 {
			errs = append(errs, "postgres: pool_max_conns must be >= 1")
		}
	}

	// Redis is required when report caching or the book feed is enabled.
	if c.Redis.Enabled && c.Redis.Addr == "" {
		errs = append(errs, "redis: addr must not be empty when redis is enabled")
	}
	if c.Feed.Enabled && !c.Redis.Enabled {
		errs = append(errs, "feed: the book feed requires redis to be enabled")
	}

	// S3 is required when report archival is enabled.
	if c.Analysis.ArchiveReports {
		if c.S3.Bucket == "" {
			errs = append(errs, "s3: bucket must not be empty when archive_reports is enabled")
		}
		if c.S3.Region == "" {
			errs = append(errs, "s3: region must not be empty when archive_reports is enabled")
		}
	}

	// Server
	if strings.ToLower(c.Mode) == "serve" {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// AllowedInstrument reports whether the ticker is on the analysis allowlist.
// Comparison is case-insensitive.
func (c *Config) AllowedInstrument(ticker string) bool {
	for _, t := range c.Analysis.Instruments {
		if strings.EqualFold(t, ticker) {
			return true
		}
	}
	return false
}
