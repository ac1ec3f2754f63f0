// Package analysis implements the cross-venue liquidity engine: market-order
// fill simulation against normalized orderbooks, per-venue slippage analysis
// across a set of notional clip sizes, and cost-ranked venue comparison.
package analysis

import (
	"github.com/shopspring/decimal"

	"github.com/perpliq/perpliq/internal/domain"
)

var (
	oneHundred = decimal.NewFromInt(100)
	tenK       = decimal.NewFromInt(10_000)
)

// SimulateFill walks the opposing side of the book with a taker order of the
// given USD notional and reports the achieved fill. It is a pure function:
// identical inputs always produce identical outputs.
//
// Buys consume asks (ascending), sells consume bids (descending); the
// normalizer guarantees level ordering. All accumulation is done in full
// decimal precision; rounding to display precision is the renderer's job.
//
// An empty or zero-size opposing side produces a NoLiquidity result rather
// than an error. A book deeper than zero but shallower than the requested
// notional produces Filled=false with the achieved FilledPercent.
func SimulateFill(book domain.OrderBook, notionalUSD decimal.Decimal, side domain.Side) domain.FillResult {
	res := domain.FillResult{
		Side:        side,
		NotionalUSD: notionalUSD,
	}

	var levels []domain.PriceLevel
	if side == domain.SideBuy {
		levels = book.Asks
	} else {
		levels = book.Bids
	}

	if len(levels) == 0 || len(book.Bids) == 0 || len(book.Asks) == 0 {
		res.NoLiquidity = true
		return res
	}

	mid := book.MidPrice()
	if mid.IsZero() {
		res.NoLiquidity = true
		return res
	}

	bestPrice := levels[0].Price
	res.BestPrice = bestPrice
	res.WorstPrice = bestPrice

	if !notionalUSD.IsPositive() {
		// Degenerate zero-size order: fills instantly at the top of book.
		res.Filled = true
		res.FilledPercent = 100
		res.AvgPrice = bestPrice
		res.SlippagePercent, res.SlippageBps = slippageVsMid(bestPrice, mid, side)
		return res
	}

	remaining := notionalUSD
	totalQty := decimal.Zero
	totalCost := decimal.Zero
	worst := bestPrice

	// When the whole order closes inside one level, its volume-weighted price
	// is that level's price; dividing out a quantity and dividing back would
	// round twice.
	var singleLevelPrice decimal.Decimal
	singleLevel := false

	for _, level := range levels {
		if !level.Price.IsPositive() || !level.Size.IsPositive() {
			continue
		}
		valueAtLevel := level.Notional()
		worst = level.Price
		res.LevelsUsed++

		if remaining.LessThanOrEqual(valueAtLevel) {
			// Terminal level: partial take of remaining/price units.
			if totalQty.IsZero() {
				singleLevel = true
				singleLevelPrice = level.Price
			}
			qtyTaken := remaining.Div(level.Price)
			totalQty = totalQty.Add(qtyTaken)
			totalCost = totalCost.Add(remaining)
			remaining = decimal.Zero
			break
		}

		totalQty = totalQty.Add(level.Size)
		totalCost = totalCost.Add(valueAtLevel)
		remaining = remaining.Sub(valueAtLevel)
	}

	if totalQty.IsZero() {
		res.NoLiquidity = true
		res.LevelsUsed = 0
		return res
	}

	res.WorstPrice = worst
	res.DepthUsedUSD = totalCost
	if singleLevel {
		res.AvgPrice = singleLevelPrice
	} else {
		res.AvgPrice = totalCost.Div(totalQty)
	}
	res.SlippagePercent, res.SlippageBps = slippageVsMid(res.AvgPrice, mid, side)

	effSpread, _ := worst.Sub(bestPrice).Abs().Div(bestPrice).Mul(tenK).Float64()
	res.EffectiveSpreadBps = effSpread

	if remaining.IsPositive() {
		// Book exhausted before the full notional was consumed.
		res.Filled = false
		filledPct, _ := notionalUSD.Sub(remaining).Div(notionalUSD).Mul(oneHundred).Float64()
		res.FilledPercent = filledPct
		return res
	}

	res.Filled = true
	res.FilledPercent = 100
	return res
}

// slippageVsMid returns the taker's cost relative to mid as a percentage and
// in basis points. The sign convention makes positive always mean cost: buys
// pay above mid, sells receive below mid.
func slippageVsMid(avg, mid decimal.Decimal, side domain.Side) (pct, bps float64) {
	var diff decimal.Decimal
	if side == domain.SideBuy {
		diff = avg.Sub(mid)
	} else {
		diff = mid.Sub(avg)
	}
	pct, _ = diff.Div(mid).Mul(oneHundred).Float64()
	bps, _ = diff.Div(mid).Mul(tenK).Float64()
	return pct, bps
}
