package fees

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perpliq/perpliq/internal/config"
	"github.com/perpliq/perpliq/internal/domain"
)

func newTestStore() *StaticStore {
	return NewStaticStore(config.FeesConfig{
		Table: map[string]float64{
			"Hyperliquid": 4,
			"Paradex":     0,
			"Extended":    2.5,
		},
		Assumptions: map[string]string{
			"Hyperliquid": "base tier",
		},
	})
}

func TestTakerFeeBps(t *testing.T) {
	store := newTestStore()

	fee, err := store.TakerFeeBps(context.Background(), "Hyperliquid")
	require.NoError(t, err)
	assert.Equal(t, 4.0, fee)

	// Zero is a real fee, not a missing one.
	fee, err = store.TakerFeeBps(context.Background(), "Paradex")
	require.NoError(t, err)
	assert.Equal(t, 0.0, fee)
}

func TestTakerFeeBpsUnknownExchange(t *testing.T) {
	store := newTestStore()

	_, err := store.TakerFeeBps(context.Background(), "Binance")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAllSortedByExchange(t *testing.T) {
	store := newTestStore()

	fees, err := store.All(context.Background())
	require.NoError(t, err)
	require.Len(t, fees, 3)
	assert.Equal(t, "Extended", fees[0].Exchange)
	assert.Equal(t, "Hyperliquid", fees[1].Exchange)
	assert.Equal(t, "Paradex", fees[2].Exchange)
	assert.Equal(t, "base tier", fees[1].Assumption)
}

func TestUpsert(t *testing.T) {
	store := newTestStore()

	err := store.Upsert(context.Background(), domain.TakerFee{
		Exchange:   "Hyperliquid",
		FeeBps:     3.5,
		Assumption: "staking discount",
	})
	require.NoError(t, err)

	fee, err := store.TakerFeeBps(context.Background(), "Hyperliquid")
	require.NoError(t, err)
	assert.Equal(t, 3.5, fee)

	err = store.Upsert(context.Background(), domain.TakerFee{Exchange: "Lighter", FeeBps: 2})
	require.NoError(t, err)

	fees, err := store.All(context.Background())
	require.NoError(t, err)
	assert.Len(t, fees, 4)
}
