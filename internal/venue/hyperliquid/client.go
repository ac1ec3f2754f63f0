// Package hyperliquid fetches and normalizes L2 orderbook snapshots from the
// Hyperliquid info API, and optionally streams them over websocket.
package hyperliquid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/perpliq/perpliq/internal/domain"
)

const (
	// DefaultBaseURL is the production Hyperliquid REST endpoint.
	DefaultBaseURL = "https://api.hyperliquid.xyz"

	// DefaultWSURL is the production Hyperliquid websocket endpoint.
	DefaultWSURL = "wss://api.hyperliquid.xyz/ws"

	exchangeName = "Hyperliquid"
)

// Client is the REST client for the Hyperliquid info API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Hyperliquid client. An empty baseURL selects the
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

// FetchOrderBook retrieves the l2Book snapshot for the instrument via the
// info endpoint and normalizes it.
func (c *Client) FetchOrderBook(ctx context.Context, instrument string) (domain.OrderBook, error) {
	reqBody := infoRequest{
		Type: "l2Book",
		Coin: strings.ToUpper(instrument),
	}

	var raw l2BookResponse
	if err := c.postInfo(ctx, reqBody, &raw); err != nil {
		return domain.OrderBook{}, fmt.Errorf("hyperliquid: fetch orderbook %s: %w", instrument, err)
	}

	return normalizeBook(instrument, raw)
}

// postInfo sends a POST to /info and decodes the JSON response into out.
func (c *Client) postInfo(ctx context.Context, reqBody any, out any) error {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/info", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
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
