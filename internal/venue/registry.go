// Package venue assembles the per-venue book fetchers. Adding a venue means
// adding one package with a client + normalizer and registering its
// constructor here; nothing in the analysis engine changes.
package venue

import (
	"fmt"
	"sort"

	"github.com/perpliq/perpliq/internal/config"
	"github.com/perpliq/perpliq/internal/domain"
	"github.com/perpliq/perpliq/internal/venue/extended"
	"github.com/perpliq/perpliq/internal/venue/hyperliquid"
	"github.com/perpliq/perpliq/internal/venue/lighter"
	"github.com/perpliq/perpliq/internal/venue/pacifica"
	"github.com/perpliq/perpliq/internal/venue/paradex"
)

// Build constructs a fetcher for every enabled venue, sorted by exchange
// name for deterministic fan-out order. Unknown venue names are rejected
// (config validation should already have caught them).
func Build(cfg config.VenuesConfig) ([]domain.BookFetcher, error) {
	fetchers := make([]domain.BookFetcher, 0, len(cfg.Enabled))
	for _, name := range cfg.Enabled {
		f, err := build(name, cfg)
		if err != nil {
			return nil, err
		}
		fetchers = append(fetchers, f)
	}

	sort.Slice(fetchers, func(i, j int) bool {
		return fetchers[i].Exchange() < fetchers[j].Exchange()
	})
	return fetchers, nil
}

func build(name string, cfg config.VenuesConfig) (domain.BookFetcher, error) {
	switch name {
	case "Hyperliquid":
		return hyperliquid.NewClient(cfg.Hyperliquid.BaseURL), nil
	case "Paradex":
		return paradex.NewClient(cfg.Paradex.BaseURL, cfg.Paradex.Depth), nil
	case "Extended":
		return extended.NewClient(cfg.Extended.BaseURL), nil
	case "Lighter":
		return lighter.NewClient(cfg.Lighter.BaseURL, cfg.Lighter.Depth), nil
	case "Pacifica":
		return pacifica.NewClient(cfg.Pacifica.BaseURL), nil
	default:
		return nil, fmt.Errorf("venue: unknown venue %q", name)
	}
}
