package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// PriceLevel is a single price+size entry in an orderbook. Prices and sizes
// are kept as decimals so that level arithmetic in the fill simulator does
// not accumulate binary rounding error across levels.
type PriceLevel struct {
	Price decimal.Decimal `json:"price"`
	Size  decimal.Decimal `json:"size"`
}

// Notional returns price * size, the USD value resting at this level.
func (l PriceLevel) Notional() decimal.Decimal {
	return l.Price.Mul(l.Size)
}

// OrderBook is the canonical representation of a venue orderbook snapshot.
// Normalizers guarantee that Bids are sorted descending and Asks ascending
// by price, regardless of the order the venue returned them in.
type OrderBook struct {
	Exchange   string       `json:"exchange"`
	Instrument string       `json:"instrument"`
	Bids       []PriceLevel `json:"bids"`
	Asks       []PriceLevel `json:"asks"`
	FetchedAt  time.Time    `json:"fetched_at"`
}

// BestBid returns the highest bid price, or zero if there are no bids.
func (b *OrderBook) BestBid() decimal.Decimal {
	if len(b.Bids) == 0 {
		return decimal.Zero
	}
	return b.Bids[0].Price
}

// BestAsk returns the lowest ask price, or zero if there are no asks.
func (b *OrderBook) BestAsk() decimal.Decimal {
	if len(b.Asks) == 0 {
		return decimal.Zero
	}
	return b.Asks[0].Price
}

// MidPrice returns (best bid + best ask) / 2, or zero if either side is empty.
func (b *OrderBook) MidPrice() decimal.Decimal {
	if len(b.Bids) == 0 || len(b.Asks) == 0 {
		return decimal.Zero
	}
	return b.BestBid().Add(b.BestAsk()).Div(decimal.NewFromInt(2))
}

// SpreadBps returns the quoted bid-ask spread in basis points relative to the
// best bid, or zero if either side is empty.
func (b *OrderBook) SpreadBps() float64 {
	if len(b.Bids) == 0 || len(b.Asks) == 0 {
		return 0
	}
	bid := b.BestBid()
	if bid.IsZero() {
		return 0
	}
	spread, _ := b.BestAsk().Sub(bid).Div(bid).Mul(decimal.NewFromInt(10000)).Float64()
	return spread
}

// Crossed reports whether best bid >= best ask. Crossed books are a venue
// data error; they are analyzed anyway but flagged so the presentation layer
// does not show misleading metrics as clean data.
func (b *OrderBook) Crossed() bool {
	if len(b.Bids) == 0 || len(b.Asks) == 0 {
		return false
	}
	return b.BestBid().GreaterThanOrEqual(b.BestAsk())
}

// Validate checks the structural invariants required before any analysis:
// non-empty bids and asks, and no negative price or size on either side.
func (b *OrderBook) Validate() error {
	if len(b.Bids) == 0 || len(b.Asks) == 0 {
		return &MalformedBookError{
			Venue:      b.Exchange,
			Instrument: b.Instrument,
			Reason:     "empty bid or ask side",
		}
	}
	for _, l := range b.Bids {
		if l.Price.IsNegative() || l.Size.IsNegative() {
			return &MalformedBookError{
				Venue:      b.Exchange,
				Instrument: b.Instrument,
				Reason:     "negative price or size on bid side",
			}
		}
	}
	for _, l := range b.Asks {
		if l.Price.IsNegative() || l.Size.IsNegative() {
			return &MalformedBookError{
				Venue:      b.Exchange,
				Instrument: b.Instrument,
				Reason:     "negative price or size on ask side",
			}
		}
	}
	return nil
}

// SortSides orders bids descending and asks ascending by price. Normalizers
// call this unconditionally: some venues return sorted levels, others do not,
// and the canonical form never assumes either.
func (b *OrderBook) SortSides() {
	sort.SliceStable(b.Bids, func(i, j int) bool {
		return b.Bids[i].Price.GreaterThan(b.Bids[j].Price)
	})
	sort.SliceStable(b.Asks, func(i, j int) bool {
		return b.Asks[i].Price.LessThan(b.Asks[j].Price)
	})
}

// TotalDepthUSD returns the summed notional resting on one side of the book.
func TotalDepthUSD(levels []PriceLevel) decimal.Decimal {
	total := decimal.Zero
	for _, l := range levels {
		total = total.Add(l.Notional())
	}
	return total
}
