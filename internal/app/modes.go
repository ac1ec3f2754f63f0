package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/perpliq/perpliq/internal/analysis"
	"github.com/perpliq/perpliq/internal/domain"
	"github.com/perpliq/perpliq/internal/server"
	"github.com/perpliq/perpliq/internal/server/handler"
	"github.com/perpliq/perpliq/internal/venue/hyperliquid"
)

// shutdownGrace bounds how long in-flight HTTP requests may run after the
// context is cancelled.
const shutdownGrace = 10 * time.Second

// ServeMode runs the HTTP API server, plus the optional Hyperliquid
// websocket feed that keeps the book cache warm. It blocks until the context
// is cancelled.
func (a *App) ServeMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting serve mode")

	g, ctx := errgroup.WithContext(ctx)

	handlers := server.Handlers{
		Health:   handler.NewHealthHandler(a.logger, deps.HealthChecks),
		Analysis: handler.NewAnalysisHandler(deps.Service, a.cfg.AllowedInstrument, a.logger),
		Fees:     handler.NewFeesHandler(deps.Fees, a.logger),
	}

	srv := server.NewServer(server.Config{
		Port:        a.cfg.Server.Port,
		CORSOrigins: a.cfg.Server.CORSOrigins,
		APIKey:      a.cfg.Server.APIKey,
	}, handlers, a.logger)

	g.Go(func() error {
		return srv.Start()
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	// Streaming book feed: only useful when there is a cache to write into.
	if a.cfg.Feed.Enabled {
		if deps.BookCache == nil {
			a.logger.WarnContext(ctx, "feed.enabled is set but redis is disabled; feed not started")
		} else {
			wsURL := a.cfg.Venues.Hyperliquid.WsURL
			if wsURL == "" {
				wsURL = hyperliquid.DefaultWSURL
			}
			instruments := a.cfg.Feed.Instruments
			if len(instruments) == 0 {
				instruments = a.cfg.Analysis.Instruments
			}

			feed := hyperliquid.NewWSFeed(wsURL, instruments,
				func(ctx context.Context, book domain.OrderBook) {
					if err := deps.BookCache.SetBook(ctx, book); err != nil {
						a.logger.WarnContext(ctx, "book cache write failed",
							slog.String("exchange", book.Exchange),
							slog.String("instrument", book.Instrument),
							slog.String("error", err.Error()),
						)
					}
				}, a.logger)
			g.Go(func() error {
				return feed.Run(ctx)
			})
		}
	}

	return g.Wait()
}

// ScanMode runs one analysis per configured instrument, prints the rendered
// ranking tables to stdout, and exits.
func (a *App) ScanMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting scan mode",
		slog.Any("instruments", a.cfg.Analysis.Instruments),
	)

	reports := make([]domain.Report, 0, len(a.cfg.Analysis.Instruments))
	for _, instrument := range a.cfg.Analysis.Instruments {
		report, err := deps.Service.Run(ctx, instrument)
		if err != nil {
			return fmt.Errorf("app: scan %s: %w", instrument, err)
		}
		reports = append(reports, *report)
		fmt.Fprintln(os.Stdout, analysis.RenderReportText(report))
	}

	// A scan run also lands in cold storage as one bulk object when the
	// archiver supports it.
	if sa, ok := deps.Archiver.(domain.ScanArchiver); ok {
		if err := sa.ArchiveScan(ctx, reports); err != nil {
			a.logger.WarnContext(ctx, "scan archival failed",
				slog.String("error", err.Error()),
			)
		}
	}
	return nil
}
