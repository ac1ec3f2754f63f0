package extended

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/perpliq/perpliq/internal/domain"
)

// orderbookResponse is the Extended orderbook envelope. A payload is only
// usable when Status is "OK" and Data is present.
type orderbookResponse struct {
	Status string         `json:"status"`
	Data   *orderbookData `json:"data"`
}

type orderbookData struct {
	Market string      `json:"market"`
	Bid    []bookLevel `json:"bid"`
	Ask    []bookLevel `json:"ask"`
}

// bookLevel is one price level with string-encoded numerics.
type bookLevel struct {
	Price string `json:"price"`
	Qty   string `json:"qty"`
}

// normalizeBook converts the Extended payload into the canonical orderbook.
func normalizeBook(instrument string, raw orderbookResponse) (domain.OrderBook, error) {
	if raw.Status != "OK" || raw.Data == nil {
		return domain.OrderBook{}, &domain.MalformedBookError{
			Venue:      exchangeName,
			Instrument: instrument,
			Reason:     "response status not OK or data missing",
		}
	}

	bids, err := parseLevels(instrument, raw.Data.Bid)
	if err != nil {
		return domain.OrderBook{}, err
	}
	asks, err := parseLevels(instrument, raw.Data.Ask)
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
	book.SortSides()

	if err := book.Validate(); err != nil {
		return domain.OrderBook{}, err
	}
	return book, nil
}

func parseLevels(instrument string, raw []bookLevel) ([]domain.PriceLevel, error) {
	levels := make([]domain.PriceLevel, 0, len(raw))
	for _, l := range raw {
		price, err := decimal.NewFromString(l.Price)
		if err != nil {
			return nil, &domain.MalformedBookError{
				Venue:      exchangeName,
				Instrument: instrument,
				Reason:     "unparseable level price " + l.Price,
			}
		}
		qty, err := decimal.NewFromString(l.Qty)
		if err != nil {
			return nil, &domain.MalformedBookError{
				Venue:      exchangeName,
				Instrument: instrument,
				Reason:     "unparseable level qty " + l.Qty,
			}
		}
		levels = append(levels, domain.PriceLevel{Price: price, Size: qty})
	}
	return levels, nil
}
