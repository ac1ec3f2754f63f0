package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/perpliq/perpliq/internal/analysis"
	s3blob "github.com/perpliq/perpliq/internal/blob/s3"
	"github.com/perpliq/perpliq/internal/cache/redis"
	"github.com/perpliq/perpliq/internal/config"
	"github.com/perpliq/perpliq/internal/domain"
	"github.com/perpliq/perpliq/internal/fees"
	"github.com/perpliq/perpliq/internal/server/handler"
	"github.com/perpliq/perpliq/internal/store/postgres"
	"github.com/perpliq/perpliq/internal/venue"
)

// Dependencies bundles everything the application modes need. It is
// constructed by Wire and torn down by the returned cleanup function.
type Dependencies struct {
	Fetchers []domain.BookFetcher
	Fees     domain.FeeStore

	// Caches; nil when Redis is disabled.
	ReportCache domain.ReportCache
	BookCache   domain.BookCache

	// Archiver; nil unless report archival is enabled.
	Archiver domain.ReportArchiver

	// HealthChecks pings the wired backing services, keyed by name.
	HealthChecks map[string]handler.CheckFunc

	Service *analysis.Service
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function to be
// called on shutdown.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{
		HealthChecks: make(map[string]handler.CheckFunc),
	}

	// --- Venue fetchers ---
	fetchers, err := venue.Build(cfg.Venues)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: venues: %w", err)
	}
	deps.Fetchers = fetchers

	// --- Fee source ---
	switch cfg.Fees.Source {
	case "postgres":
		pgClient, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Postgres.DSN,
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			Database: cfg.Postgres.Database,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			SSLMode:  cfg.Postgres.SSLMode,
			MaxConns: cfg.Postgres.PoolMaxConns,
			MinConns: cfg.Postgres.PoolMinConns,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres: %w", err)
		}
		closers = append(closers, pgClient.Close)

		if cfg.Postgres.RunMigrations {
			if err := pgClient.RunMigrations(ctx); err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
			}
		}
		deps.Fees = postgres.NewFeeStore(pgClient)
		deps.HealthChecks["postgres"] = pgClient.Ping
	default:
		deps.Fees = fees.NewStaticStore(cfg.Fees)
	}

	// --- Redis caches ---
	if cfg.Redis.Enabled {
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })

		deps.ReportCache = redis.NewReportCache(redisClient, cfg.Analysis.CacheTTL.Duration)
		deps.BookCache = redis.NewBookCache(redisClient)
		deps.HealthChecks["redis"] = redisClient.Ping
	}

	// --- S3 archiver ---
	if cfg.Analysis.ArchiveReports {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		deps.Archiver = s3blob.NewArchiver(s3blob.NewWriter(s3Client))
		deps.HealthChecks["s3"] = s3Client.Health
	}

	// --- Analysis service ---
	orch := analysis.NewOrchestrator(fetchers, cfg.Analysis.FetchTimeoutOrDefault(), logger)
	analyzer := analysis.NewAnalyzer(cfg.Analysis.ClipSizesUSD, deps.Fees, logger)
	deps.Service = analysis.NewService(orch, analyzer, deps.ReportCache, deps.Archiver, logger)

	return deps, cleanup, nil
}
