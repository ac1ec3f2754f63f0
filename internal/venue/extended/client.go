// Package extended fetches and normalizes orderbook snapshots from the
// Extended exchange REST API.
package extended

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/perpliq/perpliq/internal/domain"
)

const (
	// DefaultBaseURL is the production Extended REST endpoint.
	DefaultBaseURL = "https://api.starknet.extended.exchange"

	exchangeName = "Extended"
)

// Client is the REST client for the Extended API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates an Extended client. An empty baseURL selects the
// production endpoint.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Exchange returns the venue display name.
func (c *Client) Exchange() string { return exchangeName }

// FetchOrderBook retrieves the orderbook for the instrument's USD market and
// normalizes it.
func (c *Client) FetchOrderBook(ctx context.Context, instrument string) (domain.OrderBook, error) {
	market := strings.ToUpper(instrument) + "-USD"
	path := fmt.Sprintf("/api/v1/info/markets/%s/orderbook", url.PathEscape(market))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return domain.OrderBook{}, fmt.Errorf("extended: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.OrderBook{}, fmt.Errorf("extended: fetch orderbook %s: %w", instrument, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.OrderBook{}, fmt.Errorf("extended: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.OrderBook{}, fmt.Errorf("extended: HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var raw orderbookResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return domain.OrderBook{}, fmt.Errorf("extended: decode orderbook: %w", err)
	}

	return normalizeBook(instrument, raw)
}
