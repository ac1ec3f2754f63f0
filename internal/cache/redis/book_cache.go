package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/perpliq/perpliq/internal/domain"
)

// bookTTL bounds how long a streamed snapshot is trusted. Books older than
// this are useless for slippage simulation anyway.
const bookTTL = 30 * time.Second

// BookCache implements domain.BookCache, storing the latest normalized book
// per (exchange, instrument) as a JSON blob.
//
// Key schema:
//
//	book:{exchange}:{INSTRUMENT} - JSON-encoded domain.OrderBook
type BookCache struct {
	rdb *redis.Client
}

// NewBookCache creates a BookCache backed by the given Client.
func NewBookCache(c *Client) *BookCache {
	return &BookCache{rdb: c.rdb}
}

func bookKey(exchange, instrument string) string {
	return "book:" + exchange + ":" + strings.ToUpper(instrument)
}

// SetBook stores the snapshot, replacing any previous one for the same
// exchange and instrument.
func (bc *BookCache) SetBook(ctx context.Context, book domain.OrderBook) error {
	data, err := json.Marshal(book)
	if err != nil {
		return fmt.Errorf("redis: marshal book %s/%s: %w", book.Exchange, book.Instrument, err)
	}
	key := bookKey(book.Exchange, book.Instrument)
	if err := bc.rdb.Set(ctx, key, data, bookTTL).Err(); err != nil {
		return fmt.Errorf("redis: set book %s/%s: %w", book.Exchange, book.Instrument, err)
	}
	return nil
}

// GetBook returns the latest snapshot for the exchange and instrument, or
// domain.ErrNotFound when none is cached.
func (bc *BookCache) GetBook(ctx context.Context, exchange, instrument string) (domain.OrderBook, error) {
	data, err := bc.rdb.Get(ctx, bookKey(exchange, instrument)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.OrderBook{}, domain.ErrNotFound
		}
		return domain.OrderBook{}, fmt.Errorf("redis: get book %s/%s: %w", exchange, instrument, err)
	}

	var book domain.OrderBook
	if err := json.Unmarshal(data, &book); err != nil {
		return domain.OrderBook{}, fmt.Errorf("redis: unmarshal book %s/%s: %w", exchange, instrument, err)
	}
	return book, nil
}

// Compile-time interface check.
var _ domain.BookCache = (*BookCache)(nil)
