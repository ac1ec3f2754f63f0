package lighter

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/perpliq/perpliq/internal/domain"
)

// detailsResponse is the market catalogue payload.
type detailsResponse struct {
	OrderBookDetails []marketDetail `json:"order_book_details"`
}

type marketDetail struct {
	Symbol   string `json:"symbol"`
	MarketID int64  `json:"market_id"`
	Status   string `json:"status"`
}

// ordersResponse holds the resting orders for one market. Sizes are reported
// as the remaining (unfilled) base amount of each order.
type ordersResponse struct {
	Bids []restingOrder `json:"bids"`
	Asks []restingOrder `json:"asks"`
}

type restingOrder struct {
	Price               string `json:"price"`
	RemainingBaseAmount string `json:"remaining_base_amount"`
}

// normalizeBook converts Lighter resting orders into the canonical
// orderbook.
func normalizeBook(instrument string, raw ordersResponse) (domain.OrderBook, error) {
	bids, err := parseOrders(instrument, raw.Bids)
	if err != nil {
		return domain.OrderBook{}, err
	}
	asks, err := parseOrders(instrument, raw.Asks)
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

func parseOrders(instrument string, raw []restingOrder) ([]domain.PriceLevel, error) {
	levels := make([]domain.PriceLevel, 0, len(raw))
	for _, o := range raw {
		price, err := decimal.NewFromString(o.Price)
		if err != nil {
			return nil, &domain.MalformedBookError{
				Venue:      exchangeName,
				Instrument: instrument,
				Reason:     "unparseable order price " + o.Price,
			}
		}
		size, err := decimal.NewFromString(o.RemainingBaseAmount)
		if err != nil {
			return nil, &domain.MalformedBookError{
				Venue:      exchangeName,
				Instrument: instrument,
				Reason:     "unparseable order size " + o.RemainingBaseAmount,
			}
		}
		levels = append(levels, domain.PriceLevel{Price: price, Size: size})
	}
	return levels, nil
}
