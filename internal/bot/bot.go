// Package bot owns the trading pipeline: rolling history, indicator
// computation, signal scoring, and the position lifecycle.
//
// All mutable state lives behind one mutex. Tick ingest, the periodic
// re-evaluation timer, and every control-API mutation are serialized
// through it, so the "evaluate and possibly trade" sequence always has a
// single writer. A separate busy flag drops trade triggers that arrive
// while a trade is executing — at-most-once, never queued.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"paperbot/internal/indicator"
	"paperbot/internal/ledger"
	"paperbot/internal/metrics"
	"paperbot/internal/model"
	"paperbot/internal/notification"
	"paperbot/internal/position"
	"paperbot/internal/ringbuf"
	"paperbot/internal/signal"
)

// History caps: prices keep a longer window than volumes.
const (
	PriceHistoryCap  = 200
	VolumeHistoryCap = 50
)

// DefaultEvalInterval is the cadence of the timer-driven re-evaluation,
// independent of tick arrival.
const DefaultEvalInterval = 3 * time.Second

// ErrInvalidCapital is returned by Start when capital is not positive.
var ErrInvalidCapital = errors.New("Capital invalide")

// Options configures optional collaborators of the engine.
type Options struct {
	Metrics      *metrics.Metrics      // nil disables metric updates
	Notifier     notification.Notifier // nil falls back to the log notifier
	Logger       *slog.Logger
	EvalInterval time.Duration
	TradeCap     int // retained closed trades, ledger.DefaultCap if 0
}

// Engine is the owned context object holding all bot state.
type Engine struct {
	mu sync.Mutex

	cfg            model.TradingConfig
	initialCapital float64

	prices  *ringbuf.Window
	volumes *ringbuf.Window
	ind     *indicator.Engine
	pm      *position.Manager
	ldg     *ledger.Ledger

	running      bool
	trading      bool // re-entrancy guard around trade execution
	currentPrice float64
	lastSet      indicator.Set
	lastScore    int
	prevMACDHist float64 // histogram from the evaluation before the latest
	startedAt    time.Time
	bootedAt     time.Time

	evalInterval time.Duration
	activity     *ActivityLog
	met          *metrics.Metrics
	notifier     notification.Notifier
	log          *slog.Logger
}

// New creates an engine with the given trading defaults.
func New(cfg model.TradingConfig, opts Options) *Engine {
	logg := opts.Logger
	if logg == nil {
		logg = slog.Default()
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = notification.NewLogNotifier()
	}
	interval := opts.EvalInterval
	if interval <= 0 {
		interval = DefaultEvalInterval
	}
	return &Engine{
		cfg:            cfg,
		initialCapital: cfg.Capital,
		prices:         ringbuf.New(PriceHistoryCap),
		volumes:        ringbuf.New(VolumeHistoryCap),
		ind:            indicator.NewEngine(),
		pm:             position.NewManager(logg),
		ldg:            ledger.New(opts.TradeCap),
		lastSet:        indicator.Placeholder(),
		evalInterval:   interval,
		activity:       NewActivityLog(),
		met:            opts.Metrics,
		notifier:       notifier,
		log:            logg,
		bootedAt:       time.Now().UTC(),
	}
}

// OnTick ingests a feed tick: appends to the rolling windows, refreshes
// the current-price snapshot, and — when the loop is running — runs one
// evaluation pass. Synchronous; the feed goroutine is the single caller.
func (e *Engine) OnTick(t model.Tick) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if t.Price <= 0 {
		if e.met != nil {
			e.met.DroppedTicks.Inc()
		}
		return
	}

	e.prices.Push(t.Price)
	e.volumes.Push(t.Volume)
	e.currentPrice = t.Price
	if e.met != nil {
		e.met.TicksTotal.Inc()
	}

	if e.running {
		e.evaluateLocked()
	}
}

// Run drives the timer-based re-evaluation until ctx is done. Signals
// may fire from this path even when no tick arrived in the interval.
func (e *Engine) Run(ctx context.Context) {
	ticker := time.NewTicker(e.evalInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.mu.Lock()
			if e.running && e.currentPrice > 0 {
				e.evaluateLocked()
			}
			e.mu.Unlock()
		}
	}
}

// evaluateLocked recomputes indicators, scores them, and either opens a
// position or evaluates exit conditions. Caller holds e.mu.
func (e *Engine) evaluateLocked() {
	start := time.Now()

	e.prevMACDHist = e.ind.PrevHistogram()
	set := e.ind.Compute(e.prices.Values(), e.volumes.Values())
	e.lastSet = set
	score, _, _ := signal.Score(set, e.cfg.Mode)
	e.lastScore = score
	if e.met != nil {
		e.met.Score.Set(float64(score))
	}

	if e.pm.Flat() {
		if d := signal.Decide(set, e.cfg); d != nil {
			e.openLocked(d)
		}
	} else if exit := e.pm.EvaluateExit(e.currentPrice, e.cfg); exit != nil {
		e.closeLocked(exit.Reason)
	}

	if e.met != nil {
		e.met.EvalDur.Observe(time.Since(start).Seconds())
	}
}

// openLocked executes a position open under the busy guard.
func (e *Engine) openLocked(d *signal.Decision) {
	if e.trading {
		e.log.Debug("trade in progress, dropping open signal")
		return
	}
	e.trading = true
	defer func() { e.trading = false }()

	pos, err := e.pm.Open(d.Direction, e.currentPrice, e.cfg, d.Score)
	if err != nil {
		e.log.Warn("open failed", slog.String("error", err.Error()))
		return
	}
	if e.met != nil {
		e.met.PositionUp.Set(1)
	}
	msg := fmt.Sprintf("%s opened at %.2f (score %d, %s)", pos.Direction, pos.EntryPrice, d.Score, d.Reason)
	e.activity.Add("info", msg)
	e.notify(notification.AlertInfo, "Position opened", msg)
}

// closeLocked executes a position close under the busy guard and records
// the trade.
func (e *Engine) closeLocked(reason model.CloseReason) {
	if e.trading {
		e.log.Debug("trade in progress, dropping close signal")
		return
	}
	e.trading = true
	defer func() { e.trading = false }()
	e.forceCloseLocked(reason)
}

// forceCloseLocked closes unconditionally — the manual-stop path, which
// bypasses the busy guard.
func (e *Engine) forceCloseLocked(reason model.CloseReason) {
	trade, err := e.pm.Close(e.currentPrice, reason)
	if err != nil {
		return
	}
	e.cfg.Capital += trade.Profit
	trade = e.ldg.Record(trade, e.initialCapital)

	if e.met != nil {
		e.met.PositionUp.Set(0)
		e.met.TradesTotal.WithLabelValues(string(reason)).Inc()
	}
	msg := fmt.Sprintf("%s closed at %.2f (%s, profit %+.2f)", trade.Direction, trade.ExitPrice, reason, trade.Profit)
	e.activity.Add("info", msg)
	level := notification.AlertInfo
	if trade.Profit <= 0 {
		level = notification.AlertWarning
	}
	e.notify(level, "Position closed", msg)
}

// notify fires an alert without blocking the trading path.
func (e *Engine) notify(level notification.AlertLevel, title, msg string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.notifier.Send(ctx, notification.Alert{Level: level, Title: title, Message: msg}); err != nil {
			e.log.Warn("notification failed", slog.String("error", err.Error()))
		}
	}()
}

// Start begins trading with the given capital. Capital must be positive.
func (e *Engine) Start(capital float64) error {
	if capital <= 0 {
		return ErrInvalidCapital
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		return nil
	}
	e.cfg.Capital = capital
	e.initialCapital = capital
	e.running = true
	e.startedAt = time.Now().UTC()
	e.activity.Add("info", fmt.Sprintf("bot started with capital %.2f", capital))
	e.log.Info("bot started", slog.Float64("capital", capital))
	return nil
}

// Stop halts trading and force-closes any open position with
// MANUAL_STOP, bypassing the exit-policy checks.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.running && e.pm.Flat() {
		return
	}
	e.running = false
	if !e.pm.Flat() {
		e.forceCloseLocked(model.CloseManualStop)
	}
	e.activity.Add("info", "bot stopped")
	e.log.Info("bot stopped")
}

// Running reports whether the trading loop is active.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// Config returns a copy of the current trading configuration.
func (e *Engine) Config() model.TradingConfig {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg
}

// SetConfig replaces the full trading configuration (used when restoring
// a saved config at startup).
func (e *Engine) SetConfig(cfg model.TradingConfig) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cfg = cfg
	if e.initialCapital == 0 {
		e.initialCapital = cfg.Capital
	}
}

// UpdateConfig applies a partial update and returns the resulting config.
func (e *Engine) UpdateConfig(u model.ConfigUpdate) (model.TradingConfig, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := u.Apply(&e.cfg); err != nil {
		return e.cfg, err
	}
	e.activity.Add("info", "config updated")
	return e.cfg, nil
}

// Reset clears the trade ledger and statistics. The configuration and
// any open position are untouched.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ldg.Reset()
	e.activity.Add("info", "stats reset")
}

// Status is the read-only snapshot served by the control API.
type Status struct {
	Running       bool                `json:"running"`
	Config        model.TradingConfig `json:"config"`
	Price         float64             `json:"price"`
	Position      *model.Position     `json:"position"`
	UnrealizedPct float64             `json:"unrealized_pct"`
	Indicators    indicator.Set       `json:"indicators"`
	Score         int                 `json:"score"`
	PrevMACDHist  float64             `json:"prev_macd_hist"`
	Stats         ledger.Stats        `json:"stats"`
	Trades        []model.ClosedTrade `json:"trades"`
	PriceHistory  []float64           `json:"price_history"`
	Logs          []ActivityEntry     `json:"logs"`
}

// Status returns a snapshot of the bot state. histN bounds the price
// history returned; logN bounds the activity entries.
func (e *Engine) Status(histN, logN int) Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := Status{
		Running:      e.running,
		Config:       e.cfg,
		Price:        e.currentPrice,
		Indicators:   e.lastSet,
		Score:        e.lastScore,
		PrevMACDHist: e.prevMACDHist,
		Stats:        e.ldg.GetStats(),
		Trades:       e.ldg.Trades(),
		PriceHistory: e.prices.Tail(histN),
		Logs:         e.activity.Entries(logN),
	}
	if pos := e.pm.Current(); pos != nil {
		st.Position = pos
		st.UnrealizedPct = pos.ProfitPct(e.currentPrice)
	}
	return st
}

// Health is the liveness snapshot served on /health.
type Health struct {
	Status string  `json:"status"`
	Uptime float64 `json:"uptime"` // seconds since process boot
	Bot    struct {
		Running  bool            `json:"running"`
		Position *model.Position `json:"position"`
		Price    float64         `json:"price"`
		Capital  float64         `json:"capital"`
	} `json:"bot"`
}

// Health returns the liveness snapshot.
func (e *Engine) Health() Health {
	e.mu.Lock()
	defer e.mu.Unlock()

	h := Health{Status: "alive", Uptime: time.Since(e.bootedAt).Seconds()}
	h.Bot.Running = e.running
	h.Bot.Position = e.pm.Current()
	h.Bot.Price = e.currentPrice
	h.Bot.Capital = e.cfg.Capital
	return h
}
