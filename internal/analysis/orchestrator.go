package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/perpliq/perpliq/internal/domain"
)

// VenueBook is the per-venue outcome of one fan-out fetch: either a
// normalized book (plus optional RPI quote data) or the error that venue
// produced. One venue's failure never touches another's slot.
type VenueBook struct {
	Exchange string
	Book     domain.OrderBook
	RPI      *domain.RPIQuote
	Err      error
}

// Orchestrator fans a single instrument request out to every registered
// venue fetcher concurrently and joins the results after all venues have
// completed or failed. There are no retries and no global cancellation: a
// venue that times out fails alone.
type Orchestrator struct {
	fetchers []domain.BookFetcher
	timeout  time.Duration
	logger   *slog.Logger
}

// NewOrchestrator creates an Orchestrator over the given fetchers with a
// per-venue fetch deadline.
func NewOrchestrator(fetchers []domain.BookFetcher, timeout time.Duration, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		fetchers: fetchers,
		timeout:  timeout,
		logger:   logger.With(slog.String("component", "orchestrator")),
	}
}

// FetchAll fetches the instrument's book from every venue in parallel. The
// returned slice has one slot per fetcher, in fetcher registration order,
// and is only assembled after the full barrier join.
func (o *Orchestrator) FetchAll(ctx context.Context, instrument string) []VenueBook {
	results := make([]VenueBook, len(o.fetchers))

	g, ctx := errgroup.WithContext(ctx)
	for i, f := range o.fetchers {
		g.Go(func() error {
			results[i] = o.fetchOne(ctx, f, instrument)
			return nil
		})
	}
	// Goroutines never return errors; failures live in their result slots.
	_ = g.Wait()

	return results
}

func (o *Orchestrator) fetchOne(ctx context.Context, f domain.BookFetcher, instrument string) VenueBook {
	res := VenueBook{Exchange: f.Exchange()}

	fetchCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	start := time.Now()
	book, err := f.FetchOrderBook(fetchCtx, instrument)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w after %s: %w", domain.ErrFetchTimeout, o.timeout, err)
		}
		o.logger.WarnContext(ctx, "venue fetch failed",
			slog.String("exchange", f.Exchange()),
			slog.String("instrument", instrument),
			slog.Duration("elapsed", time.Since(start)),
			slog.String("error", err.Error()),
		)
		res.Err = err
		return res
	}

	res.Book = book
	if rpi, ok := f.(domain.RPIProvider); ok {
		res.RPI = rpi.RPIQuote(instrument)
	}

	o.logger.DebugContext(ctx, "venue fetch complete",
		slog.String("exchange", f.Exchange()),
		slog.String("instrument", instrument),
		slog.Int("bids", len(book.Bids)),
		slog.Int("asks", len(book.Asks)),
		slog.Duration("elapsed", time.Since(start)),
	)
	return res
}
