package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"
)

// Tick is one kline close for an instrument.
type Tick struct {
	Symbol string
	Close  float64
}

// Handler processes one tick. A non-nil error tears the stream down.
type Handler func(Tick) error

// ProcessingError is a malformed or unexpected feed event, or a handler
// failure. It is terminal for the stream connection: the feed is the
// cancellation boundary and restart is an external-supervision concern.
type ProcessingError struct {
	Err error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("feed processing: %v", e.Err)
}

func (e *ProcessingError) Unwrap() error { return e.Err }

// frame is the combined-stream envelope around a kline event.
type frame struct {
	Stream string `json:"stream"`
	Data   struct {
		Symbol string `json:"s"`
		Kline  struct {
			Close string `json:"c"`
		} `json:"k"`
	} `json:"data"`
}

// StreamURL builds the combined kline stream URL for the given symbols.
func StreamURL(baseURL string, symbols []string) string {
	streams := make([]string, 0, len(symbols))
	for _, symbol := range symbols {
		streams = append(streams, strings.ToLower(symbol)+"@kline_1m")
	}
	return strings.TrimRight(baseURL, "/") + "/stream?streams=" + strings.Join(streams, "/")
}

// Stream connects to the combined kline stream and dispatches ticks to the
// handler in arrival order from a single goroutine. It returns when the
// context is cancelled or on the first processing failure; the connection
// is closed either way.
func Stream(ctx context.Context, url string, handler Handler) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("dial feed: %w", err)
	}

	// Unblock ReadMessage on cancellation.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
			_ = conn.Close()
		}
	}()

	slog.Info("feed connected", "url", url)

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read feed: %w", err)
		}

		tick, err := parseTick(message)
		if err != nil {
			return &ProcessingError{Err: err}
		}
		if err := handler(tick); err != nil {
			return &ProcessingError{Err: err}
		}
	}
}

func parseTick(message []byte) (Tick, error) {
	var f frame
	if err := json.Unmarshal(message, &f); err != nil {
		return Tick{}, fmt.Errorf("decode frame: %w", err)
	}
	if f.Data.Symbol == "" {
		return Tick{}, fmt.Errorf("frame missing symbol: %s", string(message))
	}
	closePrice, err := strconv.ParseFloat(f.Data.Kline.Close, 64)
	if err != nil {
		return Tick{}, fmt.Errorf("parse close price %q: %w", f.Data.Kline.Close, err)
	}
	return Tick{Symbol: strings.ToUpper(f.Data.Symbol), Close: closePrice}, nil
}
