// Package fees provides an in-memory taker-fee source seeded from
// configuration, for deployments that do not run PostgreSQL.
package fees

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/perpliq/perpliq/internal/config"
	"github.com/perpliq/perpliq/internal/domain"
)

// StaticStore holds taker fees in memory. Upserts mutate the in-memory
// table only and do not survive a restart.
type StaticStore struct {
	mu   sync.RWMutex
	fees map[string]domain.TakerFee
}

// NewStaticStore builds a store seeded from the configured fee table and
// assumption notes.
func NewStaticStore(cfg config.FeesConfig) *StaticStore {
	fees := make(map[string]domain.TakerFee, len(cfg.Table))
	now := time.Now().UTC()
	for exchange, feeBps := range cfg.Table {
		fees[exchange] = domain.TakerFee{
			Exchange:   exchange,
			FeeBps:     feeBps,
			Assumption: cfg.Assumptions[exchange],
			UpdatedAt:  now,
		}
	}
	return &StaticStore{fees: fees}
}

// TakerFeeBps returns the taker fee in basis points for the given exchange.
// Returns domain.ErrNotFound when the exchange is not in the table.
func (s *StaticStore) TakerFeeBps(_ context.Context, exchange string) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fee, ok := s.fees[exchange]
	if !ok {
		return 0, fmt.Errorf("fees: taker fee for %s: %w", exchange, domain.ErrNotFound)
	}
	return fee.FeeBps, nil
}

// All returns every known fee ordered by exchange name.
func (s *StaticStore) All(_ context.Context) ([]domain.TakerFee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fees := make([]domain.TakerFee, 0, len(s.fees))
	for _, fee := range s.fees {
		fees = append(fees, fee)
	}
	sort.Slice(fees, func(i, j int) bool {
		return fees[i].Exchange < fees[j].Exchange
	})
	return fees, nil
}

// Upsert inserts or replaces the fee for fee.Exchange.
func (s *StaticStore) Upsert(_ context.Context, fee domain.TakerFee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fee.UpdatedAt = time.Now().UTC()
	s.fees[fee.Exchange] = fee
	return nil
}
