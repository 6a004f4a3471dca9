package bot

import (
	"math"
	"testing"
	"time"

	"paperbot/internal/model"
)

func testConfig() model.TradingConfig {
	return model.TradingConfig{
		Mode:             model.ModeAggressive,
		Capital:          100,
		PositionSizePct:  15,
		TakeProfitPct:    5,
		StopLossPct:      2,
		TrailingStartPct: 2,
		TrailingDeltaPct: 1.5,
		MinScorePct:      60,
		LongEnabled:      true,
		ShortEnabled:     true,
	}
}

// pump feeds n ticks starting at price start, stepping by step, all with
// the same volume.
func pump(e *Engine, start, step float64, n int, vol float64) {
	for i := 0; i < n; i++ {
		e.OnTick(model.Tick{Price: start + float64(i)*step, Volume: vol, TS: time.Now()})
	}
}

func TestStartRejectsNonPositiveCapital(t *testing.T) {
	e := New(testConfig(), Options{})
	if err := e.Start(0); err != ErrInvalidCapital {
		t.Fatalf("Start(0) = %v, want ErrInvalidCapital", err)
	}
	if err := e.Start(-50); err != ErrInvalidCapital {
		t.Fatalf("Start(-50) = %v, want ErrInvalidCapital", err)
	}
	if e.Running() {
		t.Error("running after rejected start")
	}
}

func TestWarmUpProducesNoTrades(t *testing.T) {
	e := New(testConfig(), Options{})
	if err := e.Start(100); err != nil {
		t.Fatal(err)
	}

	pump(e, 100, 1, 49, 10)

	st := e.Status(0, 0)
	if st.Position != nil {
		t.Error("position opened during warm-up")
	}
	if got := st.Indicators["ema"].Display; got != "--" {
		t.Errorf("ema display = %q, want placeholder", got)
	}
	if st.Score != 0 {
		t.Errorf("score = %d, want 0", st.Score)
	}
}

func TestZeroPriceTickDropped(t *testing.T) {
	e := New(testConfig(), Options{})
	e.OnTick(model.Tick{Price: 0, Volume: 10})
	e.OnTick(model.Tick{Price: -1, Volume: 10})
	e.OnTick(model.Tick{Price: 100, Volume: 10})

	if got := e.Status(10, 0).PriceHistory; len(got) != 1 {
		t.Errorf("history = %v, want one entry", got)
	}
}

// A steady uptrend with flat volume splits the aggressive vote set: EMA
// says BUY, an RSI pinned at 100 says SELL, volume is neutral. A tie
// never opens.
func TestUptrendTieDoesNotOpen(t *testing.T) {
	e := New(testConfig(), Options{})
	if err := e.Start(100); err != nil {
		t.Fatal(err)
	}

	pump(e, 100, 1, 51, 10)

	st := e.Status(0, 0)
	if st.Position != nil {
		t.Fatalf("position opened on tied votes: %+v", st.Position)
	}
	if st.Score != 33 {
		t.Errorf("score = %d, want 33", st.Score)
	}
}

// A volume spike on top of the uptrend breaks the tie: EMA and volume
// vote BUY against RSI's SELL, score 67, and a LONG opens.
func TestVolumeSpikeOpensLong(t *testing.T) {
	e := New(testConfig(), Options{})
	if err := e.Start(100); err != nil {
		t.Fatal(err)
	}

	pump(e, 100, 1, 50, 10)
	e.OnTick(model.Tick{Price: 150, Volume: 100, TS: time.Now()})

	st := e.Status(0, 0)
	if st.Position == nil {
		t.Fatal("no position opened")
	}
	if st.Position.Direction != model.Long {
		t.Errorf("direction = %s, want LONG", st.Position.Direction)
	}
	if st.Position.EntryPrice != 150 {
		t.Errorf("entry = %v, want 150", st.Position.EntryPrice)
	}
	if st.Score != 67 {
		t.Errorf("score = %d, want 67", st.Score)
	}
	// 15% of 100 capital at price 150.
	if math.Abs(st.Position.Size-0.1) > 1e-9 {
		t.Errorf("size = %v, want 0.1", st.Position.Size)
	}
}

func TestLongDisabledBlocksOpen(t *testing.T) {
	cfg := testConfig()
	cfg.LongEnabled = false
	e := New(cfg, Options{})
	if err := e.Start(100); err != nil {
		t.Fatal(err)
	}

	pump(e, 100, 1, 50, 10)
	e.OnTick(model.Tick{Price: 150, Volume: 100, TS: time.Now()})

	if st := e.Status(0, 0); st.Position != nil {
		t.Errorf("LONG opened with longs disabled: %+v", st.Position)
	}
}

// A steady downtrend in balanced mode collects SELL votes from EMA and
// MACD against RSI's oversold BUY; with the score floor lowered the bot
// opens a SHORT.
func TestDowntrendOpensShort(t *testing.T) {
	cfg := testConfig()
	cfg.Mode = model.ModeBalanced
	cfg.MinScorePct = 50
	e := New(cfg, Options{})
	if err := e.Start(100); err != nil {
		t.Fatal(err)
	}

	pump(e, 150, -1, 51, 10)

	st := e.Status(0, 0)
	if st.Position == nil {
		t.Fatal("no position opened")
	}
	if st.Position.Direction != model.Short {
		t.Errorf("direction = %s, want SHORT", st.Position.Direction)
	}
}

func TestStopLossClosesThroughTickPath(t *testing.T) {
	e := New(testConfig(), Options{})
	if err := e.Start(100); err != nil {
		t.Fatal(err)
	}

	pump(e, 100, 1, 50, 10)
	e.OnTick(model.Tick{Price: 150, Volume: 100, TS: time.Now()})
	if e.Status(0, 0).Position == nil {
		t.Fatal("no position opened")
	}

	// 3% below entry, past the 2% stop.
	e.OnTick(model.Tick{Price: 145.5, Volume: 10, TS: time.Now()})

	st := e.Status(0, 0)
	if st.Position != nil {
		t.Fatalf("position still open: %+v", st.Position)
	}
	if len(st.Trades) != 1 {
		t.Fatalf("trades = %d, want 1", len(st.Trades))
	}
	tr := st.Trades[0]
	if tr.ExitReason != model.CloseStopLoss {
		t.Errorf("reason = %s, want STOP_LOSS", tr.ExitReason)
	}
	// 0.1 units * -4.5 price move.
	if math.Abs(tr.Profit-(-0.45)) > 1e-9 {
		t.Errorf("profit = %v, want -0.45", tr.Profit)
	}
	if math.Abs(st.Config.Capital-99.55) > 1e-9 {
		t.Errorf("capital = %v, want 99.55", st.Config.Capital)
	}
}

func TestStopForceClosesWithManualStop(t *testing.T) {
	e := New(testConfig(), Options{})
	if err := e.Start(100); err != nil {
		t.Fatal(err)
	}

	pump(e, 100, 1, 50, 10)
	e.OnTick(model.Tick{Price: 150, Volume: 100, TS: time.Now()})
	if e.Status(0, 0).Position == nil {
		t.Fatal("no position opened")
	}

	e.Stop()

	st := e.Status(0, 0)
	if e.Running() {
		t.Error("running after stop")
	}
	if st.Position != nil {
		t.Error("position open after stop")
	}
	if len(st.Trades) != 1 {
		t.Fatalf("trades = %d, want 1", len(st.Trades))
	}
	if got := st.Trades[0].ExitReason; got != model.CloseManualStop {
		t.Errorf("reason = %s, want MANUAL_STOP", got)
	}
}

func TestResetKeepsConfigAndPosition(t *testing.T) {
	e := New(testConfig(), Options{})
	if err := e.Start(100); err != nil {
		t.Fatal(err)
	}

	pump(e, 100, 1, 50, 10)
	e.OnTick(model.Tick{Price: 150, Volume: 100, TS: time.Now()})
	e.OnTick(model.Tick{Price: 145.5, Volume: 10, TS: time.Now()})
	if got := e.Status(0, 0).Stats.TotalTrades; got != 1 {
		t.Fatalf("trades before reset = %d, want 1", got)
	}

	cfgBefore := e.Config()
	e.Reset()

	st := e.Status(0, 0)
	if st.Stats.TotalTrades != 0 || len(st.Trades) != 0 {
		t.Errorf("stats survive reset: %+v", st.Stats)
	}
	if st.Config != cfgBefore {
		t.Errorf("config changed by reset: %+v != %+v", st.Config, cfgBefore)
	}
}

func TestUpdateConfigPartial(t *testing.T) {
	e := New(testConfig(), Options{})

	tp := 10.0
	cfg, err := e.UpdateConfig(model.ConfigUpdate{TakeProfitPct: &tp})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.TakeProfitPct != 10 {
		t.Errorf("take profit = %v, want 10", cfg.TakeProfitPct)
	}
	if cfg.StopLossPct != 2 {
		t.Errorf("stop loss = %v, want 2", cfg.StopLossPct)
	}

	bad := model.Mode("turbo")
	if _, err := e.UpdateConfig(model.ConfigUpdate{Mode: &bad}); err == nil {
		t.Error("invalid mode accepted")
	}
}

func TestNotRunningNeverTrades(t *testing.T) {
	e := New(testConfig(), Options{})

	pump(e, 100, 1, 50, 10)
	e.OnTick(model.Tick{Price: 150, Volume: 100, TS: time.Now()})

	if st := e.Status(0, 0); st.Position != nil {
		t.Errorf("position opened while stopped: %+v", st.Position)
	}
}
