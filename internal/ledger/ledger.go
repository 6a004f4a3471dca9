// Package ledger keeps the bounded in-memory record of closed trades and
// the running statistics derived from them. Nothing here is persisted;
// the cap doubles as backpressure on long sessions.
package ledger

import (
	"sync"

	"paperbot/internal/model"
)

// DefaultCap bounds the retained trade list.
const DefaultCap = 20

// Stats are the monotonically accumulated counters over closed trades.
// Reset only by explicit operator action.
type Stats struct {
	TotalTrades int     `json:"total_trades"`
	Wins        int     `json:"wins"`
	Losses      int     `json:"losses"`
	TotalProfit float64 `json:"total_profit"`
	WinRate     float64 `json:"win_rate"` // percent
	ROI         float64 `json:"roi"`      // percent of capital
}

// Ledger is the bounded append-only trade log plus running stats.
type Ledger struct {
	mu     sync.RWMutex
	cap    int
	nextID int64
	trades []model.ClosedTrade // newest first
	stats  Stats
}

// New creates a ledger retaining at most cap trades (DefaultCap if ≤0).
func New(cap int) *Ledger {
	if cap <= 0 {
		cap = DefaultCap
	}
	return &Ledger{cap: cap, trades: make([]model.ClosedTrade, 0, cap)}
}

// Record assigns the trade an ID, prepends it (evicting the oldest entry
// beyond the cap), and folds it into the stats. capital is the operator
// capital used for ROI. Returns the stored trade.
func (l *Ledger) Record(trade model.ClosedTrade, capital float64) model.ClosedTrade {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.nextID++
	trade.ID = l.nextID

	l.trades = append([]model.ClosedTrade{trade}, l.trades...)
	if len(l.trades) > l.cap {
		l.trades = l.trades[:l.cap]
	}

	l.stats.TotalTrades++
	l.stats.TotalProfit += trade.Profit
	if trade.Profit > 0 {
		l.stats.Wins++
	} else {
		l.stats.Losses++
	}
	l.stats.WinRate = float64(l.stats.Wins) / float64(l.stats.TotalTrades) * 100
	if capital > 0 {
		l.stats.ROI = l.stats.TotalProfit / capital * 100
	}

	return trade
}

// Trades returns a copy of the retained trades, newest first.
func (l *Ledger) Trades() []model.ClosedTrade {
	l.mu.RLock()
	defer l.mu.RUnlock()
	cp := make([]model.ClosedTrade, len(l.trades))
	copy(cp, l.trades)
	return cp
}

// GetStats returns a snapshot of the running statistics.
func (l *Ledger) GetStats() Stats {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.stats
}

// Reset clears the trade list and zeroes the stats. Trade IDs keep
// incrementing so records stay unique across resets.
func (l *Ledger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.trades = l.trades[:0]
	l.stats = Stats{}
}
