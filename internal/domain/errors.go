package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound              = errors.New("not found")
	ErrNoLiquidity           = errors.New("no liquidity")
	ErrInstrumentUnavailable = errors.New("instrument not available on venue")
	ErrFetchTimeout          = errors.New("venue fetch timed out")
	ErrWSDisconnect          = errors.New("websocket disconnected")
)

// MalformedBookError indicates a venue payload that could not be normalized
// into a canonical orderbook: missing sides, empty levels, or structurally
// invalid level tuples. It names the venue and instrument so a per-venue
// failure slot can be reported without aborting the other venues.
type MalformedBookError struct {
	Venue      string
	Instrument string
	Reason     string
}

func (e *MalformedBookError) Error() string {
	return fmt.Sprintf("malformed orderbook for %s on %s: %s", e.Instrument, e.Venue, e.Reason)
}

// IsMalformedBook reports whether err is (or wraps) a MalformedBookError.
func IsMalformedBook(err error) bool {
	var target *MalformedBookError
	return errors.As(err, &target)
}
