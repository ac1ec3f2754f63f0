// Package paradex fetches and normalizes orderbook snapshots from the
// Paradex REST API, including the retail-price-improvement (RPI) quote data
// the interactive book exposes alongside the API book.
package paradex

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/perpliq/perpliq/internal/domain"
)

const (
	// DefaultBaseURL is the production Paradex REST endpoint.
	DefaultBaseURL = "https://api.prod.paradex.trade"

	// defaultDepth is the number of levels requested per side.
	defaultDepth = 100

	exchangeName = "Paradex"
)

// Client is the REST client for the Paradex API.
type Client struct {
	baseURL    string
	depth      int
	httpClient *http.Client

	// Latest RPI quote per instrument, refreshed on every fetch.
	rpiMu sync.RWMutex
	rpi   map[string]*domain.RPIQuote
}

// NewClient creates a Paradex client. An empty baseURL selects the production
// endpoint; depth <= 0 selects the default depth.
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
		rpi: make(map[string]*domain.RPIQuote),
	}
}

// Exchange returns the venue display name.
func (c *Client) Exchange() string { return exchangeName }

// FetchOrderBook retrieves the interactive orderbook for the instrument's
// USD perp pair and normalizes it. RPI quote data, when present, is retained
// and available via RPIQuote until the next fetch of the same instrument.
func (c *Client) FetchOrderBook(ctx context.Context, instrument string) (domain.OrderBook, error) {
	pair := strings.ToUpper(instrument) + "-USD-PERP"
	path := fmt.Sprintf("/v1/orderbook/%s/interactive?depth=%d", url.PathEscape(pair), c.depth)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return domain.OrderBook{}, fmt.Errorf("paradex: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.OrderBook{}, fmt.Errorf("paradex: fetch orderbook %s: %w", instrument, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.OrderBook{}, fmt.Errorf("paradex: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.OrderBook{}, fmt.Errorf("paradex: HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var raw orderbookResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return domain.OrderBook{}, fmt.Errorf("paradex: decode orderbook: %w", err)
	}

	book, rpi, err := normalizeBook(instrument, raw)
	if err != nil {
		return domain.OrderBook{}, err
	}

	c.rpiMu.Lock()
	c.rpi[strings.ToUpper(instrument)] = rpi
	c.rpiMu.Unlock()

	return book, nil
}

// RPIQuote returns the RPI data captured by the most recent fetch of the
// instrument, or nil when the venue supplied none.
func (c *Client) RPIQuote(instrument string) *domain.RPIQuote {
	c.rpiMu.RLock()
	defer c.rpiMu.RUnlock()
	return c.rpi[strings.ToUpper(instrument)]
}
