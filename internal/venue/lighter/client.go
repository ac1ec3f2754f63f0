// Package lighter fetches and normalizes orderbook snapshots from the
// Lighter REST API. Lighter addresses books by numeric market ID, so each
// fetch is two steps: resolve the instrument's market ID from the market
// catalogue, then pull the resting orders for that market.
package lighter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/perpliq/perpliq/internal/domain"
)

const (
	// DefaultBaseURL is the production Lighter REST endpoint.
	DefaultBaseURL = "https://mainnet.zklighter.elliot.ai"

	// defaultDepth is the number of resting orders requested per side.
	defaultDepth = 50

	exchangeName = "Lighter"
)

// Client is the REST client for the Lighter API.
type Client struct {
	baseURL    string
	depth      int
	httpClient *http.Client

	// Market IDs are stable, so successful resolutions are memoized for the
	// life of the client.
	marketMu  sync.Mutex
	marketIDs map[string]int64
}

// NewClient creates a Lighter client. An empty baseURL selects the
// production endpoint; depth <= 0 selects the default depth.
func NewClient(baseURL string, depth int) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if depth <= 0 {
		depth = defaultDepth
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		depth:   depth,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		marketIDs: make(map[string]int64),
	}
}

// Exchange returns the venue display name.
func (c *Client) Exchange() string { return exchangeName }

// FetchOrderBook resolves the instrument's market ID and retrieves its
// resting orders, normalized into the canonical book. Lighter does not
// guarantee level ordering, so normalization always sorts.
func (c *Client) FetchOrderBook(ctx context.Context, instrument string) (domain.OrderBook, error) {
	marketID, err := c.resolveMarketID(ctx, instrument)
	if err != nil {
		return domain.OrderBook{}, err
	}

	var raw ordersResponse
	path := fmt.Sprintf("/api/v1/orderBookOrders?market_id=%d&limit=%d", marketID, c.depth)
	if err := c.getJSON(ctx, path, &raw); err != nil {
		return domain.OrderBook{}, fmt.Errorf("lighter: fetch orderbook %s: %w", instrument, err)
	}

	return normalizeBook(instrument, raw)
}

// resolveMarketID finds the active market whose symbol matches the
// instrument. Instruments without an active Lighter market surface
// ErrInstrumentUnavailable.
func (c *Client) resolveMarketID(ctx context.Context, instrument string) (int64, error) {
	symbol := strings.ToUpper(instrument)

	c.marketMu.Lock()
	id, ok := c.marketIDs[symbol]
	c.marketMu.Unlock()
	if ok {
		return id, nil
	}

	var raw detailsResponse
	if err := c.getJSON(ctx, "/api/v1/orderBookDetails", &raw); err != nil {
		return 0, fmt.Errorf("lighter: fetch market catalogue: %w", err)
	}

	for _, m := range raw.OrderBookDetails {
		if strings.EqualFold(m.Symbol, symbol) && m.Status == "active" {
			c.marketMu.Lock()
			c.marketIDs[symbol] = m.MarketID
			c.marketMu.Unlock()
			return m.MarketID, nil
		}
	}

	return 0, fmt.Errorf("lighter: %s: %w", symbol, domain.ErrInstrumentUnavailable)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
