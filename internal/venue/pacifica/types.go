package pacifica

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/perpliq/perpliq/internal/domain"
)

// bookResponse is the Pacifica book envelope. The "l" array holds the two
// sides: l[0] bids, l[1] asks.
type bookResponse struct {
	Success bool      `json:"success"`
	Data    *bookData `json:"data"`
}

type bookData struct {
	Levels [][]bookLevel `json:"l"`
}

// bookLevel is one price level: p = price, a = amount, both string-encoded.
type bookLevel struct {
	Price  string `json:"p"`
	Amount string `json:"a"`
}

// normalizeBook converts the Pacifica payload into the canonical orderbook.
func normalizeBook(instrument string, raw bookResponse) (domain.OrderBook, error) {
	if !raw.Success || raw.Data == nil || len(raw.Data.Levels) < 2 {
		return domain.OrderBook{}, &domain.MalformedBookError{
			Venue:      exchangeName,
			Instrument: instrument,
			Reason:     "response unsuccessful or level sides missing",
		}
	}

	bids, err := parseLevels(instrument, raw.Data.Levels[0])
	if err != nil {
		return domain.OrderBook{}, err
	}
	asks, err := parseLevels(instrument, raw.Data.Levels[1])
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
		amount, err := decimal.NewFromString(l.Amount)
		if err != nil {
			return nil, &domain.MalformedBookError{
				Venue:      exchangeName,
				Instrument: instrument,
				Reason:     "unparseable level amount " + l.Amount,
			}
		}
		levels = append(levels, domain.PriceLevel{Price: price, Size: amount})
	}
	return levels, nil
}
