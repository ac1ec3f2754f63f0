package venue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perpliq/perpliq/internal/config"
)

func TestBuildAllVenuesSorted(t *testing.T) {
	cfg := config.VenuesConfig{
		Enabled: []string{"Paradex", "Hyperliquid", "Pacifica", "Extended", "Lighter"},
	}

	fetchers, err := Build(cfg)
	require.NoError(t, err)
	require.Len(t, fetchers, 5)

	names := make([]string, len(fetchers))
	for i, f := range fetchers {
		names[i] = f.Exchange()
	}
	assert.Equal(t, []string{"Extended", "Hyperliquid", "Lighter", "Pacifica", "Paradex"}, names)
}

func TestBuildSubset(t *testing.T) {
	fetchers, err := Build(config.VenuesConfig{Enabled: []string{"Hyperliquid"}})
	require.NoError(t, err)
	require.Len(t, fetchers, 1)
	assert.Equal(t, "Hyperliquid", fetchers[0].Exchange())
}

func TestBuildUnknownVenue(t *testing.T) {
	_, err := Build(config.VenuesConfig{Enabled: []string{"Binance"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown venue")
}
