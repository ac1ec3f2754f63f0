package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/perpliq/perpliq/internal/domain"
)

const feeColumns = "exchange, fee_bps, assumption, updated_at"

// FeeStore persists per-venue taker fees in the taker_fees table.
type FeeStore struct {
	client *Client
}

// NewFeeStore creates a fee store backed by the given client.
func NewFeeStore(client *Client) *FeeStore {
	return &FeeStore{client: client}
}

// TakerFeeBps returns the taker fee in basis points for the given exchange.
// Returns domain.ErrNotFound when the exchange has no fee row.
func (s *FeeStore) TakerFeeBps(ctx context.Context, exchange string) (float64, error) {
	var feeBps float64
	err := s.client.pool.QueryRow(ctx,
		"SELECT fee_bps FROM taker_fees WHERE exchange = $1", exchange,
	).Scan(&feeBps)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("postgres: taker fee for %s: %w", exchange, domain.ErrNotFound)
		}
		return 0, fmt.Errorf("postgres: query taker fee for %s: %w", exchange, err)
	}
	return feeBps, nil
}

// All returns every fee row ordered by exchange name.
func (s *FeeStore) All(ctx context.Context) ([]domain.TakerFee, error) {
	rows, err := s.client.pool.Query(ctx,
		"SELECT "+feeColumns+" FROM taker_fees ORDER BY exchange",
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: query taker fees: %w", err)
	}
	defer rows.Close()

	var fees []domain.TakerFee
	for rows.Next() {
		var fee domain.TakerFee
		if err := rows.Scan(&fee.Exchange, &fee.FeeBps, &fee.Assumption, &fee.UpdatedAt); err != nil {
			return nil, fmt.Errorf("postgres: scan taker fee: %w", err)
		}
		fees = append(fees, fee)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate taker fees: %w", err)
	}
	return fees, nil
}

// Upsert inserts or replaces the fee row for fee.Exchange.
func (s *FeeStore) Upsert(ctx context.Context, fee domain.TakerFee) error {
	_, err := s.client.pool.Exec(ctx, `
		INSERT INTO taker_fees (exchange, fee_bps, assumption, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (exchange) DO UPDATE SET
			fee_bps = EXCLUDED.fee_bps,
			assumption = EXCLUDED.assumption,
			updated_at = NOW()`,
		fee.Exchange, fee.FeeBps, fee.Assumption,
	)
	if err != nil {
		return fmt.Errorf("postgres: upsert taker fee for %s: %w", fee.Exchange, err)
	}
	return nil
}
