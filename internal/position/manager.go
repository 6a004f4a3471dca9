// Package position owns the lifecycle of the bot's single simulated
// position: entry sizing, trailing-stop tracking, and exit evaluation.
//
// The manager holds at most one open position. Exit conditions are
// evaluated in a fixed priority order each tick — stop-loss first as the
// safety-critical check, then trailing stop, then take-profit — and only
// the first match fires.
package position

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"paperbot/internal/model"
)

// ErrPositionOpen is returned by Open when a position already exists.
var ErrPositionOpen = errors.New("position already open")

// ErrNoPosition is returned by Close when the manager is flat.
var ErrNoPosition = errors.New("no open position")

// Sizing modifier bounds (percent of capital).
const (
	winStreakFactor  = 1.3
	winStreakCap     = 30.0
	lossStreakFactor = 0.7
	lossStreakFloor  = 5.0
	highScoreFactor  = 1.2
	highScoreCap     = 35.0
	highScoreMin     = 80
	streakLen        = 2
)

// Manager tracks the single open position and the win/loss streaks that
// drive position sizing.
type Manager struct {
	mu  sync.Mutex
	pos *model.Position

	consecWins   int
	consecLosses int

	log *slog.Logger
}

// NewManager creates a flat position manager.
func NewManager(log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{log: log}
}

// Flat reports whether no position is open.
func (m *Manager) Flat() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pos == nil
}

// Current returns a copy of the open position, or nil when flat.
func (m *Manager) Current() *model.Position {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pos == nil {
		return nil
	}
	cp := *m.pos
	return &cp
}

// SizePct applies the streak and score modifiers to the configured base
// percent. Modifiers compose multiplicatively, each clamped to its own
// cap or floor.
func (m *Manager) SizePct(basePct float64, score int) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sizePctLocked(basePct, score)
}

func (m *Manager) sizePctLocked(basePct float64, score int) float64 {
	pct := basePct
	if m.consecWins >= streakLen {
		pct *= winStreakFactor
		if pct > winStreakCap {
			pct = winStreakCap
		}
	}
	if m.consecLosses >= streakLen {
		pct *= lossStreakFactor
		if pct < lossStreakFloor {
			pct = lossStreakFloor
		}
	}
	if score >= highScoreMin {
		pct *= highScoreFactor
		if pct > highScoreCap {
			pct = highScoreCap
		}
	}
	return pct
}

// Open creates the position at the given entry price. Size is
// (capital × pct/100) / entryPrice in base-asset units, with pct derived
// from the configured base percent and the sizing modifiers.
func (m *Manager) Open(dir model.Direction, entryPrice float64, cfg model.TradingConfig, score int) (*model.Position, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pos != nil {
		return nil, ErrPositionOpen
	}
	if entryPrice <= 0 {
		return nil, errors.New("entry price must be positive")
	}

	pct := m.sizePctLocked(cfg.PositionSizePct, score)
	size := cfg.Capital * pct / 100 / entryPrice

	m.pos = &model.Position{
		Direction:  dir,
		EntryPrice: entryPrice,
		Size:       size,
		OpenedAt:   time.Now().UTC(),
		Extremum:   entryPrice,
	}
	m.log.Info("position opened",
		slog.String("direction", string(dir)),
		slog.Float64("entry", entryPrice),
		slog.Float64("size", size),
		slog.Float64("size_pct", pct),
		slog.Int("score", score),
	)
	cp := *m.pos
	return &cp, nil
}

// Exit describes a triggered exit condition.
type Exit struct {
	Reason    model.CloseReason
	ProfitPct float64
}

// EvaluateExit updates the trailing stop against the current price and
// returns the first exit condition that fires, or nil. Priority:
// stop-loss, trailing stop (if armed), take-profit.
func (m *Manager) EvaluateExit(price float64, cfg model.TradingConfig) *Exit {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pos == nil {
		return nil
	}

	profitPct := m.pos.ProfitPct(price)

	// Arm the trailing stop once profit reaches the start threshold,
	// seeding the extremum at the current price.
	if !m.pos.TrailingActive && profitPct >= cfg.TrailingStartPct {
		m.pos.TrailingActive = true
		m.pos.Extremum = price
		m.log.Info("trailing stop armed",
			slog.Float64("profit_pct", profitPct),
			slog.Float64("extremum", price),
		)
	}

	// Ratchet the extremum in the favorable direction only.
	if m.pos.TrailingActive {
		if m.pos.Direction == model.Long && price > m.pos.Extremum {
			m.pos.Extremum = price
		}
		if m.pos.Direction == model.Short && price < m.pos.Extremum {
			m.pos.Extremum = price
		}
	}

	// 1. Stop-loss — safety-critical, checked ahead of everything else.
	if profitPct <= -cfg.StopLossPct {
		return &Exit{Reason: model.CloseStopLoss, ProfitPct: profitPct}
	}

	// 2. Trailing stop — retracement from the tracked extremum.
	if m.pos.TrailingActive {
		var retrace float64
		if m.pos.Direction == model.Long {
			retrace = (m.pos.Extremum - price) / m.pos.Extremum * 100
		} else {
			retrace = (price - m.pos.Extremum) / m.pos.Extremum * 100
		}
		if retrace >= cfg.TrailingDeltaPct {
			return &Exit{Reason: model.CloseTrailingStop, ProfitPct: profitPct}
		}
	}

	// 3. Take-profit.
	if profitPct >= cfg.TakeProfitPct {
		return &Exit{Reason: model.CloseTakeProfit, ProfitPct: profitPct}
	}

	return nil
}

// Close realizes the position at the given exit price, updates the
// win/loss streaks, and returns the trade record (ID unassigned — the
// ledger numbers it).
func (m *Manager) Close(exitPrice float64, reason model.CloseReason) (model.ClosedTrade, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pos == nil {
		return model.ClosedTrade{}, ErrNoPosition
	}

	profit := m.pos.Profit(exitPrice)
	now := time.Now().UTC()
	trade := model.ClosedTrade{
		Direction:  m.pos.Direction,
		EntryPrice: m.pos.EntryPrice,
		ExitPrice:  exitPrice,
		Size:       m.pos.Size,
		Profit:     profit,
		ExitReason: reason,
		DurationMs: now.Sub(m.pos.OpenedAt).Milliseconds(),
		ClosedAt:   now,
	}

	if profit > 0 {
		m.consecWins++
		m.consecLosses = 0
	} else {
		m.consecLosses++
		m.consecWins = 0
	}

	m.log.Info("position closed",
		slog.String("direction", string(m.pos.Direction)),
		slog.String("reason", string(reason)),
		slog.Float64("exit", exitPrice),
		slog.Float64("profit", profit),
	)
	m.pos = nil
	return trade, nil
}

// Streaks returns the current consecutive win and loss counts.
func (m *Manager) Streaks() (wins, losses int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.consecWins, m.consecLosses
}
