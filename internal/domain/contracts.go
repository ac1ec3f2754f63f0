package domain

import (
	"context"
	"io"
)

// BookFetcher retrieves and normalizes a live orderbook snapshot for one
// venue. Adding a venue means adding one implementation of this interface;
// the analysis engine itself never changes.
type BookFetcher interface {
	// Exchange returns the display name of the venue, e.g. "Hyperliquid".
	Exchange() string

	// FetchOrderBook fetches the venue-native payload for the instrument and
	// returns it normalized: bids descending, asks ascending, decimal fields
	// parsed. Structural problems surface as *MalformedBookError.
	FetchOrderBook(ctx context.Context, instrument string) (OrderBook, error)
}

// RPIProvider is implemented by fetchers that expose retail-price-improvement
// quote data alongside the regular book (currently only Paradex).
type RPIProvider interface {
	RPIQuote(instrument string) *RPIQuote
}

// FeeSource resolves the taker fee for an exchange. The underlying table is
// maintained outside the engine and refreshed independently of it.
type FeeSource interface {
	// TakerFeeBps returns the taker fee in basis points for the exchange.
	// Unknown exchanges return ErrNotFound; callers decide the fallback.
	TakerFeeBps(ctx context.Context, exchange string) (float64, error)

	// All returns every known fee row, for display alongside rankings.
	All(ctx context.Context) ([]TakerFee, error)
}

// FeeStore is a FeeSource whose rows can also be updated, backing the
// fee-table refresh performed by the calling layer.
type FeeStore interface {
	FeeSource
	Upsert(ctx context.Context, fee TakerFee) error
}

// ReportCache stores completed analysis reports so repeated requests for the
// same instrument within the TTL do not re-hit every venue.
type ReportCache interface {
	SetReport(ctx context.Context, report Report) error
	GetReport(ctx context.Context, instrument string) (Report, error)
}

// BookCache stores the most recent normalized orderbook snapshot per
// (exchange, instrument), written by streaming feeds and read by anything
// that wants a book without a REST round trip.
type BookCache interface {
	SetBook(ctx context.Context, book OrderBook) error
	GetBook(ctx context.Context, exchange, instrument string) (OrderBook, error)
}

// BlobWriter uploads data to object storage. Put is the normal path for
// single documents; PutMultipart streams bulk exports in parts.
type BlobWriter interface {
	Put(ctx context.Context, path string, data io.Reader, contentType string) error
	PutMultipart(ctx context.Context, path string, data io.Reader, partSize int64) error
}

// ReportArchiver persists completed reports to cold storage.
type ReportArchiver interface {
	ArchiveReport(ctx context.Context, report Report) error
}

// ScanArchiver is implemented by archivers that can also persist a whole
// scan run as one bulk object.
type ScanArchiver interface {
	ArchiveScan(ctx context.Context, reports []Report) error
}

// BookUpdateHandler is invoked by streaming feeds for each fresh snapshot.
type BookUpdateHandler func(ctx context.Context, book OrderBook)
