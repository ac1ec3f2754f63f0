package analysis

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/perpliq/perpliq/internal/domain"
)

// Analyzer applies the fill simulator across the configured clip sizes for
// both sides of a venue's book and attaches taker-fee data.
type Analyzer struct {
	sizes  []int64
	fees   domain.FeeSource
	logger *slog.Logger
}

// NewAnalyzer creates an Analyzer for the given clip sizes (USD notionals)
// and taker-fee source.
func NewAnalyzer(sizes []int64, fees domain.FeeSource, logger *slog.Logger) *Analyzer {
	return &Analyzer{
		sizes:  sizes,
		fees:   fees,
		logger: logger.With(slog.String("component", "analyzer")),
	}
}

// AnalyzeVenue produces the full per-venue analysis for one normalized book.
// Structural problems with the book are reported in the Err field of the
// returned analysis rather than as an error; a bad venue never aborts the
// multi-venue run.
func (a *Analyzer) AnalyzeVenue(ctx context.Context, book domain.OrderBook) domain.VenueAnalysis {
	out := domain.VenueAnalysis{
		Exchange:   book.Exchange,
		Instrument: book.Instrument,
	}

	if err := book.Validate(); err != nil {
		out.Err = err.Error()
		return out
	}

	out.TakerFeeBps = a.takerFee(ctx, book.Exchange)

	mid, _ := book.MidPrice().Float64()
	out.MidPrice = mid
	out.SpreadBps = book.SpreadBps()

	if book.Crossed() {
		// Crossed books are upstream data errors. Metrics are still computed
		// (the spread comes out negative) but the flag lets callers avoid
		// presenting them as clean data.
		out.Crossed = true
		a.logger.WarnContext(ctx, "crossed orderbook",
			slog.String("exchange", book.Exchange),
			slog.String("instrument", book.Instrument),
		)
	}

	out.Slippage = make(map[int64]domain.SizeMetrics, len(a.sizes))
	for _, size := range a.sizes {
		notional := decimal.NewFromInt(size)
		buy := SimulateFill(book, notional, domain.SideBuy)
		sell := SimulateFill(book, notional, domain.SideSell)
		out.Slippage[size] = a.combine(ctx, book, size, buy, sell, out.TakerFeeBps)
	}

	return out
}

// combine merges the buy and sell fill results for one clip size. When only
// one side produced a measurable fill its value is used alone; a missing side
// is propagated as missing, never treated as zero.
func (a *Analyzer) combine(ctx context.Context, book domain.OrderBook, size int64, buy, sell domain.FillResult, feeBps float64) domain.SizeMetrics {
	m := domain.SizeMetrics{
		TakerFeeBps: feeBps,
		Filled:      buy.Filled && sell.Filled,
		BuyLevels:   buy.LevelsUsed,
		SellLevels:  sell.LevelsUsed,
	}

	buyOK := !buy.NoLiquidity
	sellOK := !sell.NoLiquidity

	switch {
	case buyOK && sellOK:
		avg := (buy.SlippageBps + sell.SlippageBps) / 2
		m.SlippageBps = &avg
		m.EffectiveSpreadBps = (buy.EffectiveSpreadBps + sell.EffectiveSpreadBps) / 2
	case buyOK:
		v := buy.SlippageBps
		m.SlippageBps = &v
		m.EffectiveSpreadBps = buy.EffectiveSpreadBps
		a.logSideMissing(ctx, book, size, domain.SideSell)
	case sellOK:
		v := sell.SlippageBps
		m.SlippageBps = &v
		m.EffectiveSpreadBps = sell.EffectiveSpreadBps
		a.logSideMissing(ctx, book, size, domain.SideBuy)
	default:
		a.logSideMissing(ctx, book, size, domain.SideBuy)
		a.logSideMissing(ctx, book, size, domain.SideSell)
	}

	if m.SlippageBps != nil {
		total := *m.SlippageBps + feeBps
		m.TotalCostBps = &total
	}

	depth, _ := buy.DepthUsedUSD.Add(sell.DepthUsedUSD).Float64()
	m.DepthUsedUSD = depth

	return m
}

func (a *Analyzer) logSideMissing(ctx context.Context, book domain.OrderBook, size int64, side domain.Side) {
	a.logger.ErrorContext(ctx, "unable to calculate slippage",
		slog.String("exchange", book.Exchange),
		slog.String("instrument", book.Instrument),
		slog.String("side", string(side)),
		slog.Int64("size_usd", size),
	)
}

// takerFee resolves the venue's taker fee. An unknown venue is not a hard
// failure: it falls back to zero with a logged warning so the comparison can
// still run.
func (a *Analyzer) takerFee(ctx context.Context, exchange string) float64 {
	if a.fees == nil {
		return 0
	}
	fee, err := a.fees.TakerFeeBps(ctx, exchange)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.logger.WarnContext(ctx, "no taker fee configured, assuming zero",
				slog.String("exchange", exchange),
			)
		} else {
			a.logger.WarnContext(ctx, "taker fee lookup failed, assuming zero",
				slog.String("exchange", exchange),
				slog.String("error", err.Error()),
			)
		}
		return 0
	}
	return fee
}
