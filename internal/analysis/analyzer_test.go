package analysis

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perpliq/perpliq/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubFees is a FeeSource with a fixed table.
type stubFees struct {
	table map[string]float64
}

func (s *stubFees) TakerFeeBps(_ context.Context, exchange string) (float64, error) {
	fee, ok := s.table[exchange]
	if !ok {
		return 0, fmt.Errorf("stub: %s: %w", exchange, domain.ErrNotFound)
	}
	return fee, nil
}

func (s *stubFees) All(context.Context) ([]domain.TakerFee, error) {
	fees := make([]domain.TakerFee, 0, len(s.table))
	for exchange, bps := range s.table {
		fees = append(fees, domain.TakerFee{Exchange: exchange, FeeBps: bps})
	}
	return fees, nil
}

func TestAnalyzeVenueComputesAllSizes(t *testing.T) {
	fees := &stubFees{table: map[string]float64{"TestVenue": 4}}
	analyzer := NewAnalyzer([]int64{150, 500}, fees, testLogger())

	out := analyzer.AnalyzeVenue(context.Background(), newTestBook())

	require.False(t, out.Failed())
	assert.Equal(t, "TestVenue", out.Exchange)
	assert.Equal(t, 100.5, out.MidPrice)
	assert.Equal(t, 4.0, out.TakerFeeBps)
	assert.False(t, out.Crossed)
	require.Len(t, out.Slippage, 2)

	m := out.Slippage[150]
	require.NotNil(t, m.SlippageBps)
	require.NotNil(t, m.TotalCostBps)
	assert.True(t, m.Filled)
	// Buy and sell slippage are symmetric on this book, both ~49.75 bps.
	assert.InDelta(t, 49.75, *m.SlippageBps, 0.01)
	assert.InDelta(t, *m.SlippageBps+4, *m.TotalCostBps, 1e-9)
}

func TestAnalyzeVenueUnknownFeeAssumesZero(t *testing.T) {
	analyzer := NewAnalyzer([]int64{150}, &stubFees{}, testLogger())

	out := analyzer.AnalyzeVenue(context.Background(), newTestBook())

	require.False(t, out.Failed())
	assert.Equal(t, 0.0, out.TakerFeeBps)

	m := out.Slippage[150]
	require.NotNil(t, m.SlippageBps)
	require.NotNil(t, m.TotalCostBps)
	assert.Equal(t, *m.SlippageBps, *m.TotalCostBps)
}

func TestAnalyzeVenueOneSidedBookUsesLoneSide(t *testing.T) {
	book := newTestBook()
	// A sell-side of zero size cannot absorb anything; only the buy side
	// remains measurable once mid exists. Empty bids would kill the mid, so
	// keep one zero-size bid level.
	book.Bids = []domain.PriceLevel{
		{Price: decimal.NewFromInt(100), Size: decimal.Zero},
	}
	analyzer := NewAnalyzer([]int64{150}, &stubFees{}, testLogger())

	out := analyzer.AnalyzeVenue(context.Background(), book)

	require.False(t, out.Failed())
	m := out.Slippage[150]
	require.NotNil(t, m.SlippageBps, "one measurable side must still produce a value")
	// Only the buy side filled, so the combined metric equals the buy side's
	// slippage rather than an average against zero.
	assert.InDelta(t, 49.75, *m.SlippageBps, 0.01)
	assert.False(t, m.Filled)
	assert.Equal(t, 0, m.SellLevels)
}

func TestAnalyzeVenueNoLiquidityPropagatesNil(t *testing.T) {
	book := newTestBook()
	book.Bids = []domain.PriceLevel{{Price: decimal.NewFromInt(100), Size: decimal.Zero}}
	book.Asks = []domain.PriceLevel{{Price: decimal.NewFromInt(101), Size: decimal.Zero}}
	analyzer := NewAnalyzer([]int64{150}, &stubFees{}, testLogger())

	out := analyzer.AnalyzeVenue(context.Background(), book)

	require.False(t, out.Failed())
	m := out.Slippage[150]
	assert.Nil(t, m.SlippageBps)
	assert.Nil(t, m.TotalCostBps)
	assert.False(t, m.Filled)
}

func TestAnalyzeVenueCrossedBookFlagged(t *testing.T) {
	book := newTestBook()
	book.Bids[0].Price = decimal.NewFromInt(103) // above best ask
	analyzer := NewAnalyzer([]int64{150}, &stubFees{}, testLogger())

	out := analyzer.AnalyzeVenue(context.Background(), book)

	require.False(t, out.Failed())
	assert.True(t, out.Crossed)
	// Metrics are still computed; the quoted spread just comes out negative.
	assert.Less(t, out.SpreadBps, 0.0)
}

func TestAnalyzeVenueMalformedBook(t *testing.T) {
	book := newTestBook()
	book.Asks = nil
	analyzer := NewAnalyzer([]int64{150}, &stubFees{}, testLogger())

	out := analyzer.AnalyzeVenue(context.Background(), book)

	assert.True(t, out.Failed())
	assert.Empty(t, out.Slippage)
}
