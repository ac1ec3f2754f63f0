package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies PERPLIQ_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known PERPLIQ_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty). This lets operators inject secrets at deploy time without touching
// the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Analysis ──
	setDuration(&cfg.Analysis.FetchTimeout, "PERPLIQ_ANALYSIS_FETCH_TIMEOUT")
	setDuration(&cfg.Analysis.CacheTTL, "PERPLIQ_ANALYSIS_CACHE_TTL")
	setBool(&cfg.Analysis.ArchiveReports, "PERPLIQ_ANALYSIS_ARCHIVE_REPORTS")
	setStringSlice(&cfg.Analysis.Instruments, "PERPLIQ_ANALYSIS_INSTRUMENTS")

	// ── Venues ──
	setStringSlice(&cfg.Venues.Enabled, "PERPLIQ_VENUES_ENABLED")
	setStr(&cfg.Venues.Hyperliquid.BaseURL, "PERPLIQ_VENUES_HYPERLIQUID_BASE_URL")
	setStr(&cfg.Venues.Hyperliquid.WsURL, "PERPLIQ_VENUES_HYPERLIQUID_WS_URL")
	setStr(&cfg.Venues.Paradex.BaseURL, "PERPLIQ_VENUES_PARADEX_BASE_URL")
	setStr(&cfg.Venues.Extended.BaseURL, "PERPLIQ_VENUES_EXTENDED_BASE_URL")
	setStr(&cfg.Venues.Lighter.BaseURL, "PERPLIQ_VENUES_LIGHTER_BASE_URL")
	setStr(&cfg.Venues.Pacifica.BaseURL, "PERPLIQ_VENUES_PACIFICA_BASE_URL")

	// ── Fees ──
	setStr(&cfg.Fees.Source, "PERPLIQ_FEES_SOURCE")

	// ── Postgres ──
	setStr(&cfg.Postgres.DSN, "PERPLIQ_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "PERPLIQ_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "PERPLIQ_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "PERPLIQ_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "PERPLIQ_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "PERPLIQ_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "PERPLIQ_POSTGRES_SSLMODE")
	setInt(&cfg.Postgres.PoolMaxConns, "PERPLIQ_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "PERPLIQ_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "PERPLIQ_POSTGRES_RUN_MIGRATIONS")

	// ── Redis ──
	setBool(&cfg.Redis.Enabled, "PERPLIQ_REDIS_ENABLED")
	setStr(&cfg.Redis.Addr, "PERPLIQ_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "PERPLIQ_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "PERPLIQ_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "PERPLIQ_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "PERPLIQ_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "PERPLIQ_REDIS_TLS_ENABLED")

	// ── S3 ──
	setStr(&cfg.S3.Endpoint, "PERPLIQ_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "PERPLIQ_S3_REGION")
	setStr(&cfg.S3.Bucket, "PERPLIQ_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "PERPLIQ_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "PERPLIQ_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "PERPLIQ_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "PERPLIQ_S3_FORCE_PATH_STYLE")

	// ── Feed ──
	setBool(&cfg.Feed.Enabled, "PERPLIQ_FEED_ENABLED")
	setStringSlice(&cfg.Feed.Instruments, "PERPLIQ_FEED_INSTRUMENTS")

	// ── Server ──
	setInt(&cfg.Server.Port, "PERPLIQ_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "PERPLIQ_SERVER_CORS_ORIGINS")
	setStr(&cfg.Server.APIKey, "PERPLIQ_SERVER_API_KEY")

	// ── Top-level ──
	setStr(&cfg.Mode, "PERPLIQ_MODE")
	setStr(&cfg.LogLevel, "PERPLIQ_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
