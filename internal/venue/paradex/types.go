package paradex

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/perpliq/perpliq/internal/domain"
)

// orderbookResponse is the interactive orderbook payload. Levels are
// [price, size] string tuples; the best_*_interactive / best_*_api fields
// carry the RPI vs API top of book when the venue distinguishes them.
type orderbookResponse struct {
	Market             string     `json:"market"`
	Bids               [][]string `json:"bids"`
	Asks               [][]string `json:"asks"`
	BestBidInteractive []string   `json:"best_bid_interactive"`
	BestAskInteractive []string   `json:"best_ask_interactive"`
	BestBidAPI         []string   `json:"best_bid_api"`
	BestAskAPI         []string   `json:"best_ask_api"`
}

// normalizeBook converts the interactive orderbook payload into the
// canonical book plus optional RPI quote data.
func normalizeBook(instrument string, raw orderbookResponse) (domain.OrderBook, *domain.RPIQuote, error) {
	if len(raw.Bids) == 0 || len(raw.Asks) == 0 {
		return domain.OrderBook{}, nil, &domain.MalformedBookError{
			Venue:      exchangeName,
			Instrument: instrument,
			Reason:     "missing bid or ask levels",
		}
	}

	bids, err := parseTuples(instrument, raw.Bids)
	if err != nil {
		return domain.OrderBook{}, nil, err
	}
	asks, err := parseTuples(instrument, raw.Asks)
	if err != nil {
		return domain.OrderBook{}, nil, err
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
		return domain.OrderBook{}, nil, err
	}

	return book, parseRPI(raw), nil
}

func parseTuples(instrument string, raw [][]string) ([]domain.PriceLevel, error) {
	levels := make([]domain.PriceLevel, 0, len(raw))
	for _, tuple := range raw {
		if len(tuple) < 2 {
			return nil, &domain.MalformedBookError{
				Venue:      exchangeName,
				Instrument: instrument,
				Reason:     "level tuple shorter than [price, size]",
			}
		}
		price, err := decimal.NewFromString(tuple[0])
		if err != nil {
			return nil, &domain.MalformedBookError{
				Venue:      exchangeName,
				Instrument: instrument,
				Reason:     "unparseable level price " + tuple[0],
			}
		}
		size, err := decimal.NewFromString(tuple[1])
		if err != nil {
			return nil, &domain.MalformedBookError{
				Venue:      exchangeName,
				Instrument: instrument,
				Reason:     "unparseable level size " + tuple[1],
			}
		}
		levels = append(levels, domain.PriceLevel{Price: price, Size: size})
	}
	return levels, nil
}

// parseRPI extracts RPI quote data when both interactive best quotes are
// present. The API-book quotes are optional; their spread is only computed
// when both sides exist. Unparseable values drop the whole RPI block rather
// than failing the book.
func parseRPI(raw orderbookResponse) *domain.RPIQuote {
	rpiBid, okBid := tupleHead(raw.BestBidInteractive)
	rpiAsk, okAsk := tupleHead(raw.BestAskInteractive)
	if !okBid || !okAsk || rpiBid <= 0 {
		return nil
	}

	q := &domain.RPIQuote{
		RPIBid:       rpiBid,
		RPIAsk:       rpiAsk,
		RPISpreadBps: (rpiAsk - rpiBid) / rpiBid * 10_000,
	}

	if apiBid, ok := tupleHead(raw.BestBidAPI); ok {
		q.APIBid = &apiBid
	}
	if apiAsk, ok := tupleHead(raw.BestAskAPI); ok {
		q.APIAsk = &apiAsk
	}
	if q.APIBid != nil && q.APIAsk != nil && *q.APIBid > 0 {
		spread := (*q.APIAsk - *q.APIBid) / *q.APIBid * 10_000
		q.APISpreadBps = &spread
	}

	return q
}

func tupleHead(tuple []string) (float64, bool) {
	if len(tuple) == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(tuple[0], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
