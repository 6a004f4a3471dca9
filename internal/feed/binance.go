// Package feed streams live ticker data from the Binance websocket API
// and pushes normalized ticks into the bot's tick channel.
//
// On any read or dial error the feed waits a fixed delay and reconnects.
// Ticks missed during the outage are simply absent from history — there
// is no gap filling.
package feed

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"paperbot/internal/metrics"
	"paperbot/internal/model"
)

// DefaultReconnectDelay is the fixed backoff between connection attempts.
const DefaultReconnectDelay = 5 * time.Second

// Config holds the feed parameters.
type Config struct {
	// BaseURL is the websocket endpoint, e.g. "wss://stream.binance.com:9443/ws".
	BaseURL string
	// Symbol is the trading pair, e.g. "BTCUSDT".
	Symbol string
	// ReconnectDelay overrides the fixed reconnect backoff (optional).
	ReconnectDelay time.Duration
}

// Feed ingests the <symbol>@ticker stream.
type Feed struct {
	cfg Config
	met *metrics.Metrics // optional
}

// New creates a feed. met may be nil.
func New(cfg Config, met *metrics.Metrics) *Feed {
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = DefaultReconnectDelay
	}
	return &Feed{cfg: cfg, met: met}
}

// tickerMsg mirrors the fields of the Binance 24h ticker event we use:
// last price (c), 24h volume (v), and event time (E, epoch millis).
type tickerMsg struct {
	LastPrice string `json:"c"`
	Volume    string `json:"v"`
	EventTime int64  `json:"E"`
}

// URL returns the full stream URL for the configured symbol.
func (f *Feed) URL() string {
	return fmt.Sprintf("%s/%s@ticker", f.cfg.BaseURL, strings.ToLower(f.cfg.Symbol))
}

// Run connects and streams ticks into tickCh until ctx is done.
// A full channel drops the tick rather than blocking the reader.
func (f *Feed) Run(ctx context.Context, tickCh chan<- model.Tick) {
	url := f.URL()
	for {
		if ctx.Err() != nil {
			return
		}

		conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
		if err != nil {
			log.Printf("[feed] dial %s: %v, retrying in %s", url, err, f.cfg.ReconnectDelay)
			if !f.sleep(ctx) {
				return
			}
			continue
		}
		log.Printf("[feed] connected: %s", url)

		f.readLoop(ctx, conn, tickCh)
		conn.Close()

		if ctx.Err() != nil {
			return
		}
		if f.met != nil {
			f.met.WSReconnects.Inc()
		}
		log.Printf("[feed] disconnected, reconnecting in %s", f.cfg.ReconnectDelay)
		if !f.sleep(ctx) {
			return
		}
	}
}

// readLoop consumes messages until the connection breaks or ctx is done.
func (f *Feed) readLoop(ctx context.Context, conn *websocket.Conn, tickCh chan<- model.Tick) {
	// Unblock ReadMessage when the context is cancelled.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		var msg tickerMsg
		if err := conn.ReadJSON(&msg); err != nil {
			if ctx.Err() == nil {
				log.Printf("[feed] read error: %v", err)
			}
			return
		}

		tick, err := parseTick(msg)
		if err != nil {
			// Malformed input is dropped, never propagated.
			log.Printf("[feed] parse error: %v", err)
			if f.met != nil {
				f.met.DroppedTicks.Inc()
			}
			continue
		}

		select {
		case tickCh <- tick:
		default:
			if f.met != nil {
				f.met.DroppedTicks.Inc()
			}
		}
	}
}

func (f *Feed) sleep(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(f.cfg.ReconnectDelay):
		return true
	}
}

// parseTick converts a raw ticker message into a model.Tick.
func parseTick(msg tickerMsg) (model.Tick, error) {
	price, err := strconv.ParseFloat(msg.LastPrice, 64)
	if err != nil || price <= 0 {
		return model.Tick{}, fmt.Errorf("bad price %q", msg.LastPrice)
	}
	volume, err := strconv.ParseFloat(msg.Volume, 64)
	if err != nil || volume < 0 {
		return model.Tick{}, fmt.Errorf("bad volume %q", msg.Volume)
	}

	ts := time.Now().UTC()
	if msg.EventTime > 0 {
		ts = time.Unix(0, msg.EventTime*int64(time.Millisecond)).UTC()
	}
	return model.Tick{Price: price, Volume: volume, TS: ts}, nil
}
