package hyperliquid

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/perpliq/perpliq/internal/domain"
)

const (
	// writeWait is the time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// readWait is the time allowed between inbound messages before the
	// connection is considered dead. The server answers app-level pings, so
	// a healthy connection always has traffic inside this window.
	readWait = 60 * time.Second

	// pingPeriod sends app-level pings at this interval. Must be less than
	// readWait.
	pingPeriod = 45 * time.Second

	// reconnectDelay is the delay before attempting to reconnect.
	reconnectDelay = 2 * time.Second
)

// WSFeed subscribes to l2Book snapshots for a set of instruments and invokes
// a handler for each normalized book. It reconnects on disconnect, so a
// single Run call keeps the feed alive until the context is cancelled.
//
// Hyperliquid uses application-level ping/pong frames ({"method":"ping"} /
// {"channel":"pong"}) rather than websocket control frames.
type WSFeed struct {
	wsURL       string
	instruments []string
	onBook      domain.BookUpdateHandler
	logger      *slog.Logger
	closeOnce   sync.Once
	done        chan struct{}
}

// NewWSFeed creates a feed for the given instruments. An empty wsURL selects
// the production endpoint.
func NewWSFeed(wsURL string, instruments []string, onBook domain.BookUpdateHandler, logger *slog.Logger) *WSFeed {
	if wsURL == "" {
		wsURL = DefaultWSURL
	}
	return &WSFeed{
		wsURL:       wsURL,
		instruments: instruments,
		onBook:      onBook,
		logger:      logger.With(slog.String("component", "hyperliquid_ws_feed")),
		done:        make(chan struct{}),
	}
}

// Run connects, subscribes to l2Book for every configured instrument, and
// dispatches snapshots until ctx is cancelled. Reconnects on disconnect.
func (f *WSFeed) Run(ctx context.Context) error {
	if len(f.instruments) == 0 {
		f.logger.Info("no instruments to subscribe, feed exiting")
		return nil
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-f.done:
			return nil
		default:
		}

		err := f.runConnection(ctx)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		f.logger.Warn("hyperliquid ws disconnected, reconnecting",
			slog.String("error", err.Error()),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(reconnectDelay):
		}
	}
}

// Close stops the feed.
func (f *WSFeed) Close() {
	f.closeOnce.Do(func() { close(f.done) })
}

type wsRequest struct {
	Method       string         `json:"method"`
	Subscription map[string]any `json:"subscription,omitempty"`
}

type wsMessage struct {
	Channel string          `json:"channel"`
	Data    json.RawMessage `json:"data"`
}

func (f *WSFeed) runConnection(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 15 * time.Second}
	conn, _, err := dialer.DialContext(ctx, f.wsURL, nil)
	if err != nil {
		return fmt.Errorf("hyperliquid/ws: connect: %w", err)
	}
	defer conn.Close()

	var writeMu sync.Mutex
	send := func(v any) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(v)
	}

	for _, instrument := range f.instruments {
		sub := wsRequest{
			Method: "subscribe",
			Subscription: map[string]any{
				"type": "l2Book",
				"coin": strings.ToUpper(instrument),
			},
		}
		if err := send(sub); err != nil {
			return fmt.Errorf("hyperliquid/ws: subscribe %s: %w", instrument, err)
		}
	}
	f.logger.Info("hyperliquid ws subscribed", slog.Int("instruments", len(f.instruments)))

	// App-level keep-alive.
	pingCtx, cancelPing := context.WithCancel(ctx)
	defer cancelPing()
	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-pingCtx.Done():
				return
			case <-ticker.C:
				if err := send(wsRequest{Method: "ping"}); err != nil {
					return
				}
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-f.done:
			return nil
		default:
		}

		conn.SetReadDeadline(time.Now().Add(readWait))
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("hyperliquid/ws: read: %w", domain.ErrWSDisconnect)
		}

		var msg wsMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			f.logger.Warn("hyperliquid ws unparseable message", slog.String("error", err.Error()))
			continue
		}

		switch msg.Channel {
		case "l2Book":
			f.handleBook(ctx, msg.Data)
		case "pong", "subscriptionResponse":
			// keep-alive and subscription acks carry no book data
		default:
		}
	}
}

func (f *WSFeed) handleBook(ctx context.Context, data json.RawMessage) {
	var raw l2BookResponse
	if err := json.Unmarshal(data, &raw); err != nil {
		f.logger.Warn("hyperliquid ws unparseable l2Book", slog.String("error", err.Error()))
		return
	}

	book, err := normalizeBook(raw.Coin, raw)
	if err != nil {
		f.logger.Warn("hyperliquid ws malformed l2Book",
			slog.String("coin", raw.Coin),
			slog.String("error", err.Error()),
		)
		return
	}

	if f.onBook != nil {
		f.onBook(ctx, book)
	}
}
