package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Side identifies which direction a simulated market order trades.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// FillResult is the outcome of simulating a single market order of a given
// notional size against one side of an orderbook.
//
// SlippagePercent/SlippageBps and EffectiveSpreadBps are only meaningful when
// NoLiquidity is false; when the opposing side was empty (or held zero size)
// there is no average price to measure against.
type FillResult struct {
	Side               Side            `json:"side"`
	NotionalUSD        decimal.Decimal `json:"notional_usd"`
	Filled             bool            `json:"filled"`
	FilledPercent      float64         `json:"filled_percent"`
	NoLiquidity        bool            `json:"no_liquidity,omitempty"`
	SlippagePercent    float64         `json:"slippage_percent"`
	SlippageBps        float64         `json:"slippage_bps"`
	EffectiveSpreadBps float64         `json:"effective_spread_bps"`
	LevelsUsed         int             `json:"levels_used"`
	DepthUsedUSD       decimal.Decimal `json:"depth_used_usd"`
	BestPrice          decimal.Decimal `json:"best_price"`
	WorstPrice         decimal.Decimal `json:"worst_price"`
	AvgPrice           decimal.Decimal `json:"avg_price"`
}

// SizeMetrics aggregates the buy and sell FillResults for one notional size.
// SlippageBps and TotalCostBps are nil when slippage was not computable on
// either side; a missing value is propagated, never replaced with zero.
type SizeMetrics struct {
	SlippageBps        *float64 `json:"slippage_bps"`
	TakerFeeBps        float64  `json:"taker_fee_bps"`
	TotalCostBps       *float64 `json:"total_cost_bps"`
	EffectiveSpreadBps float64  `json:"effective_spread_bps"`
	Filled             bool     `json:"filled"`
	BuyLevels          int      `json:"buy_levels"`
	SellLevels         int      `json:"sell_levels"`
	DepthUsedUSD       float64  `json:"depth_used_usd"`
}

// RPIQuote carries Paradex retail-price-improvement quote data when the venue
// exposes a separate interactive (RPI) book alongside the API book.
type RPIQuote struct {
	APIBid       *float64 `json:"api_bid"`
	APIAsk       *float64 `json:"api_ask"`
	APISpreadBps *float64 `json:"api_spread_bps"`
	RPIBid       float64  `json:"rpi_bid"`
	RPIAsk       float64  `json:"rpi_ask"`
	RPISpreadBps float64  `json:"rpi_spread_bps"`
}

// VenueAnalysis is the per-venue result of applying the fill simulator across
// all configured notional sizes on both sides of the book. A venue whose
// fetch or normalization failed carries only Exchange and Err.
type VenueAnalysis struct {
	Exchange    string                `json:"exchange"`
	Instrument  string                `json:"instrument,omitempty"`
	MidPrice    float64               `json:"mid_price,omitempty"`
	SpreadBps   float64               `json:"spread_bps,omitempty"`
	TakerFeeBps float64               `json:"taker_fee_bps"`
	Crossed     bool                  `json:"crossed,omitempty"`
	RPI         *RPIQuote             `json:"rpi,omitempty"`
	Slippage    map[int64]SizeMetrics `json:"slippage,omitempty"`
	Err         string                `json:"error,omitempty"`
}

// Failed reports whether this venue produced no usable analysis.
func (a VenueAnalysis) Failed() bool {
	return a.Err != ""
}

// RankingEntry is one row of a per-size ranking table. SlippageBps and
// TotalCostBps are nil for venues whose cost was not computable; such venues
// sort last and carry an explanatory Note.
type RankingEntry struct {
	Rank         int      `json:"rank"`
	Exchange     string   `json:"exchange"`
	SlippageBps  *float64 `json:"slippage_bps"`
	TakerFeeBps  float64  `json:"taker_fee_bps"`
	TotalCostBps *float64 `json:"total_cost_bps"`
	Filled       bool     `json:"filled"`
	Note         string   `json:"note,omitempty"`
}

// RankingTable is the ordered venue comparison for a single notional size,
// sorted ascending by total cost with unfilled venues last.
type RankingTable []RankingEntry

// Report is the full output of one analysis run: every per-venue analysis
// (including failed venues) plus the ranking tables keyed by notional size.
// Reports are transient; persistence, caching and archival are concerns of
// the calling layer.
type Report struct {
	ID          uuid.UUID              `json:"id"`
	Instrument  string                 `json:"instrument"`
	GeneratedAt time.Time              `json:"generated_at"`
	Analyses    []VenueAnalysis        `json:"analyses"`
	Rankings    map[int64]RankingTable `json:"rankings"`
}

// TakerFee is one row of the externally maintained taker-fee table.
type TakerFee struct {
	Exchange   string    `json:"exchange"`
	FeeBps     float64   `json:"fee_bps"`
	Assumption string    `json:"assumption,omitempty"`
	UpdatedAt  time.Time `json:"updated_at,omitempty"`
}
