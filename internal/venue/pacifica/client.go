// Package pacifica fetches and normalizes orderbook snapshots from the
// Pacifica REST API.
package pacifica

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
	// DefaultBaseURL is the production Pacifica REST endpoint.
	DefaultBaseURL = "https://api.pacifica.fi"

	exchangeName = "Pacifica"
)

// Client is the REST client for the Pacifica API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Pacifica client. An empty baseURL selects the
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

// FetchOrderBook retrieves the book for the instrument and normalizes it.
func (c *Client) FetchOrderBook(ctx context.Context, instrument string) (domain.OrderBook, error) {
	symbol := strings.ToUpper(instrument)
	path := "/api/v1/book?symbol=" + url.QueryEscape(symbol)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return domain.OrderBook{}, fmt.Errorf("pacifica: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.OrderBook{}, fmt.Errorf("pacifica: fetch orderbook %s: %w", instrument, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.OrderBook{}, fmt.Errorf("pacifica: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.OrderBook{}, fmt.Errorf("pacifica: HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var raw bookResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return domain.OrderBook{}, fmt.Errorf("pacifica: decode orderbook: %w", err)
	}

	return normalizeBook(instrument, raw)
}
