package analysis

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/perpliq/perpliq/internal/domain"
)

// Service runs the full analysis pipeline for one instrument: concurrent
// fetch, per-venue analysis, and ranking. Caching and archival are optional
// calling-layer concerns wired in here; the pipeline itself holds no state
// between requests.
type Service struct {
	orch     *Orchestrator
	analyzer *Analyzer
	cache    domain.ReportCache    // nil disables caching
	archiver domain.ReportArchiver // nil disables archival
	logger   *slog.Logger
}

// NewService creates a Service. cache and archiver may be nil.
func NewService(orch *Orchestrator, analyzer *Analyzer, cache domain.ReportCache, archiver domain.ReportArchiver, logger *slog.Logger) *Service {
	return &Service{
		orch:     orch,
		analyzer: analyzer,
		cache:    cache,
		archiver: archiver,
		logger:   logger.With(slog.String("component", "analysis")),
	}
}

// Run produces a Report for the instrument. Failed venues appear in the
// report's Analyses with their error string and contribute nothing to the
// rankings. Even every venue failing is not an error: a best-effort report
// is always produced.
func (s *Service) Run(ctx context.Context, instrument string) (*domain.Report, error) {
	if s.cache != nil {
		cached, err := s.cache.GetReport(ctx, instrument)
		if err == nil {
			s.logger.DebugContext(ctx, "serving cached report",
				slog.String("instrument", instrument),
				slog.String("report_id", cached.ID.String()),
			)
			return &cached, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.WarnContext(ctx, "report cache read failed",
				slog.String("instrument", instrument),
				slog.String("error", err.Error()),
			)
		}
	}

	books := s.orch.FetchAll(ctx, instrument)

	analyses := make([]domain.VenueAnalysis, 0, len(books))
	for _, vb := range books {
		if vb.Err != nil {
			analyses = append(analyses, domain.VenueAnalysis{
				Exchange: vb.Exchange,
				Err:      vb.Err.Error(),
			})
			continue
		}
		// The registered fetcher name is authoritative for fee lookup and
		// ranking identity, whatever the payload claimed.
		vb.Book.Exchange = vb.Exchange
		a := s.analyzer.AnalyzeVenue(ctx, vb.Book)
		a.RPI = vb.RPI
		analyses = append(analyses, a)
	}

	// Deterministic presentation order regardless of fetch completion order.
	sort.Slice(analyses, func(i, j int) bool {
		return analyses[i].Exchange < analyses[j].Exchange
	})

	report := &domain.Report{
		ID:          uuid.New(),
		Instrument:  instrument,
		GeneratedAt: time.Now().UTC(),
		Analyses:    analyses,
		Rankings:    RankBySize(analyses),
	}

	if s.cache != nil {
		if err := s.cache.SetReport(ctx, *report); err != nil {
			s.logger.WarnContext(ctx, "report cache write failed",
				slog.String("instrument", instrument),
				slog.String("error", err.Error()),
			)
		}
	}

	if s.archiver != nil {
		if err := s.archiver.ArchiveReport(ctx, *report); err != nil {
			s.logger.WarnContext(ctx, "report archival failed",
				slog.String("instrument", instrument),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "analysis complete",
		slog.String("instrument", instrument),
		slog.String("report_id", report.ID.String()),
		slog.Int("venues", len(analyses)),
		slog.Int("failed", countFailed(analyses)),
	)

	return report, nil
}

func countFailed(analyses []domain.VenueAnalysis) int {
	n := 0
	for _, a := range analyses {
		if a.Failed() {
			n++
		}
	}
	return n
}
