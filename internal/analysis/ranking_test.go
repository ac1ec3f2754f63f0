package analysis

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perpliq/perpliq/internal/domain"
)

func fptr(v float64) *float64 { return &v }

func venueWith(exchange string, size int64, slippage, fee float64, filled bool) domain.VenueAnalysis {
	m := domain.SizeMetrics{
		SlippageBps: fptr(slippage),
		TakerFeeBps: fee,
		Filled:      filled,
	}
	total := slippage + fee
	m.TotalCostBps = &total
	return domain.VenueAnalysis{
		Exchange: exchange,
		Slippage: map[int64]domain.SizeMetrics{size: m},
	}
}

func TestRankBySizeOrdersByTotalCost(t *testing.T) {
	analyses := []domain.VenueAnalysis{
		venueWith("Hyperliquid", 10_000, 3, 4, true), // 7
		venueWith("Paradex", 10_000, 2, 0, true),     // 2
		venueWith("Extended", 10_000, 2, 2.5, true),  // 4.5
	}

	tables := RankBySize(analyses)
	require.Len(t, tables, 1)

	table := tables[10_000]
	require.Len(t, table, 3)
	assert.Equal(t, "Paradex", table[0].Exchange)
	assert.Equal(t, "Extended", table[1].Exchange)
	assert.Equal(t, "Hyperliquid", table[2].Exchange)
	assert.Equal(t, []int{1, 2, 3}, []int{table[0].Rank, table[1].Rank, table[2].Rank})
}

func TestRankBySizeUnfilledSortsLast(t *testing.T) {
	cheapButUnfilled := venueWith("Lighter", 50_000, 1, 2, false)
	expensive := venueWith("Pacifica", 50_000, 40, 4, true)

	table := RankBySize([]domain.VenueAnalysis{cheapButUnfilled, expensive})[50_000]
	require.Len(t, table, 2)

	// An unfilled venue loses to any filled venue regardless of cost, but its
	// computed values survive for display.
	assert.Equal(t, "Pacifica", table[0].Exchange)
	assert.Equal(t, "Lighter", table[1].Exchange)
	assert.Equal(t, insufficientLiquidityNote, table[1].Note)
	require.NotNil(t, table[1].TotalCostBps)
	assert.Equal(t, 3.0, *table[1].TotalCostBps)
}

func TestRankBySizeNilCostSortsLast(t *testing.T) {
	noCost := domain.VenueAnalysis{
		Exchange: "Lighter",
		Slippage: map[int64]domain.SizeMetrics{100_000: {Filled: false}},
	}
	filled := venueWith("Extended", 100_000, 5, 2.5, true)

	table := RankBySize([]domain.VenueAnalysis{noCost, filled})[100_000]
	require.Len(t, table, 2)
	assert.Equal(t, "Extended", table[0].Exchange)
	assert.Nil(t, table[1].TotalCostBps)
	assert.Equal(t, insufficientLiquidityNote, table[1].Note)
}

func TestRankBySizeTieBreaksAlphabetically(t *testing.T) {
	a := venueWith("Paradex", 1000, 5, 0, true)
	b := venueWith("Extended", 1000, 2.5, 2.5, true)
	c := venueWith("Hyperliquid", 1000, 1, 4, true)

	// All three cost exactly 5 bps; order must be alphabetical every run.
	for range 10 {
		table := RankBySize([]domain.VenueAnalysis{a, b, c})[1000]
		require.Len(t, table, 3)
		assert.Equal(t, "Extended", table[0].Exchange)
		assert.Equal(t, "Hyperliquid", table[1].Exchange)
		assert.Equal(t, "Paradex", table[2].Exchange)
	}
}

func TestRankBySizeFailedVenuesExcluded(t *testing.T) {
	failed := domain.VenueAnalysis{Exchange: "Pacifica", Err: "connect timeout"}
	ok := venueWith("Paradex", 1000, 2, 0, true)

	table := RankBySize([]domain.VenueAnalysis{failed, ok})[1000]
	require.Len(t, table, 1)
	assert.Equal(t, "Paradex", table[0].Exchange)
}

func TestRankBySizeUnionOfSizes(t *testing.T) {
	a := venueWith("Paradex", 1000, 2, 0, true)
	b := venueWith("Extended", 10_000, 3, 2.5, true)

	tables := RankBySize([]domain.VenueAnalysis{a, b})
	require.Len(t, tables, 2)
	assert.Len(t, tables[1000], 1)
	assert.Len(t, tables[10_000], 1)
}

func TestRenderTextMedalsAndBreakdown(t *testing.T) {
	table := RankBySize([]domain.VenueAnalysis{
		venueWith("Paradex", 1000, 2, 0, true),
		venueWith("Extended", 1000, 2, 2.5, true),
		venueWith("Hyperliquid", 1000, 3, 4, true),
		venueWith("Pacifica", 1000, 40, 4, true),
	})[1000]

	text := RenderText(table)
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	require.Len(t, lines, 4)

	assert.Contains(t, lines[0], "🥇")
	assert.Contains(t, lines[0], "Paradex")
	assert.Contains(t, lines[0], "2.00 bps (slippage 2.00 + taker fee 0.00)")
	assert.Contains(t, lines[1], "🥈")
	assert.Contains(t, lines[2], "🥉")
	assert.NotContains(t, lines[3], "🥉")
	assert.Contains(t, lines[3], "#4")
}

func TestRenderTextInsufficientLiquidity(t *testing.T) {
	table := RankBySize([]domain.VenueAnalysis{
		venueWith("Paradex", 1000, 2, 0, true),
		{
			Exchange: "Lighter",
			Slippage: map[int64]domain.SizeMetrics{1000: {Filled: false}},
		},
	})[1000]

	text := RenderText(table)
	assert.Contains(t, text, insufficientLiquidityNote)
}

func TestRenderReportTextOrdersSizesAscending(t *testing.T) {
	report := &domain.Report{
		ID:         uuid.New(),
		Instrument: "BTC",
		Rankings: RankBySize([]domain.VenueAnalysis{
			venueWith("Paradex", 1000, 2, 0, true),
			venueWith("Paradex", 500_000, 30, 0, true),
			venueWith("Paradex", 10_000, 5, 0, true),
		}),
	}

	text := RenderReportText(report)
	i1 := strings.Index(text, "$1k")
	i10 := strings.Index(text, "$10k")
	i500 := strings.Index(text, "$500k")
	require.NotEqual(t, -1, i1)
	require.NotEqual(t, -1, i10)
	require.NotEqual(t, -1, i500)
	assert.Less(t, i1, i10)
	assert.Less(t, i10, i500)
}

func TestFormatClipSize(t *testing.T) {
	assert.Equal(t, "1k", FormatClipSize(1000))
	assert.Equal(t, "500k", FormatClipSize(500_000))
	assert.Equal(t, "1.5k", FormatClipSize(1500))
}
