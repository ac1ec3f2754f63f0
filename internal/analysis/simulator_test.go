package analysis

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perpliq/perpliq/internal/domain"
)

// newTestBook builds the reference book used across the simulator tests:
// bids [(100,2),(99,3)], asks [(101,2),(102,3)], mid 100.5, ask depth $508.
func newTestBook() domain.OrderBook {
	return domain.OrderBook{
		Exchange:   "TestVenue",
		Instrument: "BTC",
		Bids: []domain.PriceLevel{
			{Price: decimal.NewFromInt(100), Size: decimal.NewFromInt(2)},
			{Price: decimal.NewFromInt(99), Size: decimal.NewFromInt(3)},
		},
		Asks: []domain.PriceLevel{
			{Price: decimal.NewFromInt(101), Size: decimal.NewFromInt(2)},
			{Price: decimal.NewFromInt(102), Size: decimal.NewFromInt(3)},
		},
	}
}

func TestSimulateFillSingleLevelPartialTake(t *testing.T) {
	book := newTestBook()

	res := SimulateFill(book, decimal.NewFromInt(150), domain.SideBuy)

	require.True(t, res.Filled)
	require.False(t, res.NoLiquidity)
	assert.Equal(t, 1, res.LevelsUsed)
	assert.Equal(t, float64(100), res.FilledPercent)

	// $150 at price 101 takes 150/101 units; the average price is exactly the
	// level price.
	assert.True(t, res.AvgPrice.Equal(decimal.NewFromInt(101)),
		"avg price = %s", res.AvgPrice)
	assert.InDelta(t, 0.4975, res.SlippagePercent, 0.0001)
	assert.InDelta(t, 49.75, res.SlippageBps, 0.01)

	// A single level means no price walk, so the effective spread is zero.
	assert.Equal(t, 0.0, res.EffectiveSpreadBps)
}

func TestSimulateFillMultiLevelWalk(t *testing.T) {
	book := newTestBook()

	res := SimulateFill(book, decimal.NewFromInt(500), domain.SideBuy)

	require.True(t, res.Filled)
	assert.Equal(t, 2, res.LevelsUsed)

	// $202 consumes level 0 (2 units at 101), $298 remain; level 1 fills the
	// rest with 298/102 units. Total qty ~4.9216, avg price 500/qty ~101.594.
	avg, _ := res.AvgPrice.Float64()
	assert.InDelta(t, 101.594, avg, 0.001)

	depth, _ := res.DepthUsedUSD.Float64()
	assert.Equal(t, 500.0, depth)

	assert.True(t, res.BestPrice.Equal(decimal.NewFromInt(101)))
	assert.True(t, res.WorstPrice.Equal(decimal.NewFromInt(102)))
	assert.InDelta(t, 99.0099, res.EffectiveSpreadBps, 0.001)
}

func TestSimulateFillExhaustsBook(t *testing.T) {
	book := newTestBook()

	// Ask depth is 101*2 + 102*3 = $508; $1000 cannot fill.
	res := SimulateFill(book, decimal.NewFromInt(1000), domain.SideBuy)

	require.False(t, res.Filled)
	require.False(t, res.NoLiquidity)
	assert.InDelta(t, 50.8, res.FilledPercent, 0.0001)
	assert.Equal(t, 2, res.LevelsUsed)

	res = SimulateFill(book, decimal.NewFromInt(1_000_000), domain.SideBuy)
	require.False(t, res.Filled)
	assert.InDelta(t, 0.0508, res.FilledPercent, 0.0001)
}

func TestSimulateFillDepthBoundary(t *testing.T) {
	book := newTestBook()
	depth := domain.TotalDepthUSD(book.Asks) // $508

	exact := SimulateFill(book, depth, domain.SideBuy)
	require.True(t, exact.Filled)
	assert.Equal(t, float64(100), exact.FilledPercent)

	over := SimulateFill(book, depth.Add(decimal.NewFromInt(1)), domain.SideBuy)
	require.False(t, over.Filled)
	assert.Less(t, over.FilledPercent, float64(100))
}

func TestSimulateFillSellWalksBids(t *testing.T) {
	book := newTestBook()

	res := SimulateFill(book, decimal.NewFromInt(150), domain.SideSell)

	require.True(t, res.Filled)
	assert.True(t, res.AvgPrice.Equal(decimal.NewFromInt(100)))

	// Sell below mid is a cost and the sign convention keeps it positive.
	assert.InDelta(t, 49.75, res.SlippageBps, 0.01)
}

func TestSimulateFillTakerNeverBeatsMid(t *testing.T) {
	book := newTestBook()
	mid := book.MidPrice()

	for _, size := range []int64{1, 150, 300, 500} {
		notional := decimal.NewFromInt(size)

		buy := SimulateFill(book, notional, domain.SideBuy)
		require.True(t, buy.AvgPrice.GreaterThanOrEqual(mid),
			"buy avg %s below mid %s at size %d", buy.AvgPrice, mid, size)

		sell := SimulateFill(book, notional, domain.SideSell)
		require.True(t, sell.AvgPrice.LessThanOrEqual(mid),
			"sell avg %s above mid %s at size %d", sell.AvgPrice, mid, size)
	}
}

func TestSimulateFillIdempotent(t *testing.T) {
	book := newTestBook()
	notional := decimal.NewFromInt(500)

	first := SimulateFill(book, notional, domain.SideBuy)
	second := SimulateFill(book, notional, domain.SideBuy)

	assert.Equal(t, first, second)
}

func TestSimulateFillEmptySide(t *testing.T) {
	book := newTestBook()
	book.Asks = nil

	res := SimulateFill(book, decimal.NewFromInt(100), domain.SideBuy)
	assert.True(t, res.NoLiquidity)
	assert.False(t, res.Filled)
	assert.Equal(t, 0, res.LevelsUsed)

	// An empty bid side also kills buys: no mid price exists.
	book = newTestBook()
	book.Bids = nil
	res = SimulateFill(book, decimal.NewFromInt(100), domain.SideBuy)
	assert.True(t, res.NoLiquidity)
}

func TestSimulateFillZeroSizeLevelsSkipped(t *testing.T) {
	book := newTestBook()
	book.Asks = []domain.PriceLevel{
		{Price: decimal.NewFromInt(101), Size: decimal.Zero},
		{Price: decimal.NewFromInt(102), Size: decimal.NewFromInt(3)},
	}

	res := SimulateFill(book, decimal.NewFromInt(150), domain.SideBuy)

	require.True(t, res.Filled)
	assert.Equal(t, 1, res.LevelsUsed)
	assert.True(t, res.AvgPrice.Equal(decimal.NewFromInt(102)))
}

func TestSimulateFillSingleLevelAvgExact(t *testing.T) {
	// 10/3 units has no finite decimal expansion, so any divide-out-and-back
	// round trip would drift the average off the level price.
	book := domain.OrderBook{
		Exchange:   "TestVenue",
		Instrument: "BTC",
		Bids: []domain.PriceLevel{
			{Price: decimal.NewFromInt(2), Size: decimal.NewFromInt(100)},
		},
		Asks: []domain.PriceLevel{
			{Price: decimal.NewFromInt(3), Size: decimal.NewFromInt(100)},
		},
	}

	res := SimulateFill(book, decimal.NewFromInt(10), domain.SideBuy)

	require.True(t, res.Filled)
	assert.True(t, res.AvgPrice.Equal(decimal.NewFromInt(3)),
		"avg price = %s", res.AvgPrice)
}

func TestSimulateFillAllZeroSizes(t *testing.T) {
	book := newTestBook()
	book.Asks = []domain.PriceLevel{
		{Price: decimal.NewFromInt(101), Size: decimal.Zero},
		{Price: decimal.NewFromInt(102), Size: decimal.Zero},
	}

	res := SimulateFill(book, decimal.NewFromInt(150), domain.SideBuy)
	assert.True(t, res.NoLiquidity)
	assert.Equal(t, 0, res.LevelsUsed)
}

func TestSimulateFillZeroNotional(t *testing.T) {
	book := newTestBook()

	res := SimulateFill(book, decimal.Zero, domain.SideBuy)

	require.True(t, res.Filled)
	assert.Equal(t, float64(100), res.FilledPercent)
	assert.True(t, res.AvgPrice.Equal(decimal.NewFromInt(101)))
	// The limit value: top-of-book price against mid.
	assert.InDelta(t, 49.75, res.SlippageBps, 0.01)
}
