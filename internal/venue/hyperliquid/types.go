package hyperliquid

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/perpliq/perpliq/internal/domain"
)

// infoRequest is the request envelope for the /info endpoint.
type infoRequest struct {
	Type string `json:"type"`
	Coin string `json:"coin"`
}

// bookLevel is one price level as returned by l2Book: price, size, and order
// count, all numerics encoded as strings.
type bookLevel struct {
	Px string `json:"px"`
	Sz string `json:"sz"`
	N  int    `json:"n"`
}

// l2BookResponse is the l2Book snapshot: levels[0] holds bids, levels[1]
// holds asks.
type l2BookResponse struct {
	Coin   string        `json:"coin"`
	Time   int64         `json:"time"`
	Levels [][]bookLevel `json:"levels"`
}

// normalizeBook converts an l2Book response into the canonical orderbook.
func normalizeBook(instrument string, raw l2BookResponse) (domain.OrderBook, error) {
	if len(raw.Levels) < 2 {
		return domain.OrderBook{}, &domain.MalformedBookError{
			Venue:      exchangeName,
			Instrument: instrument,
			Reason:     "levels array missing bid or ask side",
		}
	}

	bids, err := parseLevels(instrument, raw.Levels[0])
	if err != nil {
		return domain.OrderBook{}, err
	}
	asks, err := parseLevels(instrument, raw.Levels[1])
	if err != nil {
		return domain.OrderBook{}, err
	}

	book := domain.OrderBook{
		Exchange:   exchangeName,
		Instrument: instrument,
		Bids:       bids,
		Asks:       asks,
		FetchedAt:  time.Now().UTC(),
	}
	if raw.Time > 0 {
		book.FetchedAt = time.UnixMilli(raw.Time).UTC()
	}
	book.SortSides()

	if err := book.Validate(); err != nil {
		return domain.OrderBook{}, err
	}
	return book, nil
}

func parseLevels(instrument string, raw []bookLevel) ([]domain.PriceLevel, error) {
	levels := make([]domain.PriceLevel, 0, len(raw))
	for _, l := range raw {
		price, err := decimal.NewFromString(l.Px)
		if err != nil {
			return nil, &domain.MalformedBookError{
				Venue:      exchangeName,
				Instrument: instrument,
				Reason:     "unparseable level price " + l.Px,
			}
		}
		size, err := decimal.NewFromString(l.Sz)
		if err != nil {
			return nil, &domain.MalformedBookError{
				Venue:      exchangeName,
				Instrument: instrument,
				Reason:     "unparseable level size " + l.Sz,
			}
		}
		levels = append(levels, domain.PriceLevel{Price: price, Size: size})
	}
	return levels, nil
}
