package hyperliquid

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perpliq/perpliq/internal/domain"
)

const l2BookFixture = `{
	"coin": "BTC",
	"time": 1735689600000,
	"levels": [
		[
			{"px": "97100.0", "sz": "0.5", "n": 3},
			{"px": "97099.0", "sz": "1.2", "n": 1}
		],
		[
			{"px": "97101.0", "sz": "0.4", "n": 2},
			{"px": "97102.0", "sz": "2.0", "n": 5}
		]
	]
}`

func TestNormalizeBook(t *testing.T) {
	var raw l2BookResponse
	require.NoError(t, json.Unmarshal([]byte(l2BookFixture), &raw))

	book, err := normalizeBook("BTC", raw)
	require.NoError(t, err)

	assert.Equal(t, "Hyperliquid", book.Exchange)
	assert.Equal(t, "BTC", book.Instrument)
	require.Len(t, book.Bids, 2)
	require.Len(t, book.Asks, 2)

	assert.True(t, book.BestBid().Equal(decimal.RequireFromString("97100.0")))
	assert.True(t, book.BestAsk().Equal(decimal.RequireFromString("97101.0")))
	assert.Equal(t, int64(1735689600), book.FetchedAt.Unix())
}

func TestNormalizeBookMissingSide(t *testing.T) {
	raw := l2BookResponse{
		Coin:   "BTC",
		Levels: [][]bookLevel{{{Px: "97100", Sz: "1"}}},
	}

	_, err := normalizeBook("BTC", raw)
	require.Error(t, err)
	assert.True(t, domain.IsMalformedBook(err))
}

func TestNormalizeBookBadNumeric(t *testing.T) {
	raw := l2BookResponse{
		Coin: "BTC",
		Levels: [][]bookLevel{
			{{Px: "not-a-price", Sz: "1"}},
			{{Px: "97101", Sz: "1"}},
		},
	}

	_, err := normalizeBook("BTC", raw)
	require.Error(t, err)
	assert.True(t, domain.IsMalformedBook(err))
}
