// cmd/tickserver — Demo WebSocket tick server.
// Broadcasts simulated ticker data so the bot can run without hitting
// the real exchange. Point BINANCE_WS_URL at this server:
//
//	BINANCE_WS_URL=ws://localhost:9001/ws
//
// Frames match the exchange's 24h ticker event shape:
//
//	{"e":"24hrTicker","E":1700000000000,"s":"BTCUSDT","c":"64250.12","v":"18432.55"}
//
// Config (env vars):
//
//	TICK_SERVER_ADDR  — listen address (default: ":9001")
//	TICK_SYMBOL       — symbol to simulate (default: "BTCUSDT")
//	TICK_START_PRICE  — starting price (default: "60000")
//	TICK_INTERVAL_MS  — broadcast interval milliseconds (default: "500")
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// tickerMsg mirrors the exchange 24h ticker event fields the bot reads.
type tickerMsg struct {
	Event     string `json:"e"`
	EventTime int64  `json:"E"`
	Symbol    string `json:"s"`
	LastPrice string `json:"c"`
	Volume    string `json:"v"`
}

type hub struct {
	mu      sync.RWMutex
	clients map[*websocket.Conn]chan []byte
}

func newHub() *hub {
	return &hub{clients: make(map[*websocket.Conn]chan []byte)}
}

func (h *hub) register(conn *websocket.Conn) chan []byte {
	ch := make(chan []byte, 256)
	h.mu.Lock()
	h.clients[conn] = ch
	h.mu.Unlock()
	return ch
}

func (h *hub) unregister(conn *websocket.Conn) {
	h.mu.Lock()
	if ch, ok := h.clients[conn]; ok {
		close(ch)
		delete(h.clients, conn)
	}
	h.mu.Unlock()
}

func (h *hub) broadcast(msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.clients {
		select {
		case ch <- msg:
		default: // slow client — drop tick
		}
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(_ *http.Request) bool { return true },
}

func wsHandler(h *hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("[tickserver] upgrade error: %v", err)
			return
		}
		log.Printf("[tickserver] client connected: %s %s", r.RemoteAddr, r.URL.Path)

		ch := h.register(conn)
		defer func() {
			h.unregister(conn)
			conn.Close()
			log.Printf("[tickserver] client disconnected: %s", r.RemoteAddr)
		}()

		for msg := range ch {
			conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		}
	}
}

// walkPrice applies a tiny random walk (±0.1%) to simulate price movement.
func walkPrice(price float64) float64 {
	pct := (rand.Float64()*0.2 - 0.1) / 100.0
	newPrice := price * (1 + pct)
	if newPrice < 0.01 {
		newPrice = 0.01
	}
	return newPrice
}

func runGenerator(h *hub, symbol string, startPrice float64, intervalMs int) {
	ticker := time.NewTicker(time.Duration(intervalMs) * time.Millisecond)
	defer ticker.Stop()

	price := startPrice
	volume := 10000.0

	for range ticker.C {
		price = walkPrice(price)
		// Volume drifts slowly with an occasional spike.
		volume += rand.Float64()*20 - 10
		if volume < 100 {
			volume = 100
		}
		if rand.Intn(50) == 0 {
			volume *= 2
		}

		msg := tickerMsg{
			Event:     "24hrTicker",
			EventTime: time.Now().UnixMilli(),
			Symbol:    symbol,
			LastPrice: strconv.FormatFloat(price, 'f', 2, 64),
			Volume:    strconv.FormatFloat(volume, 'f', 2, 64),
		}
		b, err := json.Marshal(msg)
		if err != nil {
			continue
		}
		h.broadcast(b)
	}
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)
	log.Println("[tickserver] starting demo tick server...")

	addr := envOrDefault("TICK_SERVER_ADDR", ":9001")
	symbol := strings.ToUpper(envOrDefault("TICK_SYMBOL", "BTCUSDT"))
	startPrice := envFloatOrDefault("TICK_START_PRICE", 60000)
	intervalMs := envIntOrDefault("TICK_INTERVAL_MS", 500)

	log.Printf("[tickserver] symbol=%s start=%.2f interval=%dms", symbol, startPrice, intervalMs)

	h := newHub()
	go runGenerator(h, symbol, startPrice, intervalMs)

	// Any stream path under /ws/ gets the same broadcast, so the bot can
	// dial ws://host/ws/btcusdt@ticker unchanged.
	http.HandleFunc("/ws", wsHandler(h))
	http.HandleFunc("/ws/", wsHandler(h))
	http.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintln(w, `{"status":"ok","service":"tickserver"}`)
	})

	log.Printf("[tickserver] ✅ listening on %s  (WebSocket: ws://localhost%s/ws)", addr, addr)
	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Fatalf("[tickserver] server error: %v", err)
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOrDefault(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envFloatOrDefault(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
