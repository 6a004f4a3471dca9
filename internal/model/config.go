package model

import "fmt"

// Mode selects which indicator subset the scorer evaluates.
type Mode string

const (
	ModeAggressive   Mode = "aggressive"   // EMA, RSI, volume
	ModeBalanced     Mode = "balanced"     // + MACD
	ModeConservative Mode = "conservative" // + Bollinger, ATR
)

// ValidMode reports whether m is a known trading mode.
func ValidMode(m Mode) bool {
	switch m {
	case ModeAggressive, ModeBalanced, ModeConservative:
		return true
	}
	return false
}

// TradingConfig holds the operator-tunable trading parameters.
// Mutated only through the control API; read by the scorer and
// position manager under the bot's lock.
type TradingConfig struct {
	Mode             Mode    `json:"mode"`
	Capital          float64 `json:"capital"`
	PositionSizePct  float64 `json:"position_size_pct"`
	TakeProfitPct    float64 `json:"take_profit_pct"`
	StopLossPct      float64 `json:"stop_loss_pct"`
	TrailingStartPct float64 `json:"trailing_start_pct"`
	TrailingDeltaPct float64 `json:"trailing_delta_pct"`
	MinScorePct      int     `json:"min_score_pct"`
	LongEnabled      bool    `json:"long_enabled"`
	ShortEnabled     bool    `json:"short_enabled"`
}

// ConfigUpdate is a partial TradingConfig: only non-nil fields overwrite.
type ConfigUpdate struct {
	Mode             *Mode    `json:"mode,omitempty"`
	PositionSizePct  *float64 `json:"position_size,omitempty"`
	TakeProfitPct    *float64 `json:"take_profit,omitempty"`
	StopLossPct      *float64 `json:"stop_loss,omitempty"`
	TrailingStartPct *float64 `json:"trailing_start,omitempty"`
	TrailingDeltaPct *float64 `json:"trailing_delta,omitempty"`
	MinScorePct      *int     `json:"min_score,omitempty"`
	LongEnabled      *bool    `json:"long_enabled,omitempty"`
	ShortEnabled     *bool    `json:"short_enabled,omitempty"`
}

// Apply merges the update into cfg. Returns an error (and leaves cfg
// untouched) if a provided field is invalid.
func (u ConfigUpdate) Apply(cfg *TradingConfig) error {
	if u.Mode != nil && !ValidMode(*u.Mode) {
		return fmt.Errorf("unknown mode %q", *u.Mode)
	}
	if u.PositionSizePct != nil && (*u.PositionSizePct <= 0 || *u.PositionSizePct > 100) {
		return fmt.Errorf("position size %.2f out of range (0,100]", *u.PositionSizePct)
	}
	if u.MinScorePct != nil && (*u.MinScorePct < 0 || *u.MinScorePct > 100) {
		return fmt.Errorf("min score %d out of range [0,100]", *u.MinScorePct)
	}
	if u.Mode != nil {
		cfg.Mode = *u.Mode
	}
	if u.PositionSizePct != nil {
		cfg.PositionSizePct = *u.PositionSizePct
	}
	if u.TakeProfitPct != nil {
		cfg.TakeProfitPct = *u.TakeProfitPct
	}
	if u.StopLossPct != nil {
		cfg.StopLossPct = *u.StopLossPct
	}
	if u.TrailingStartPct != nil {
		cfg.TrailingStartPct = *u.TrailingStartPct
	}
	if u.TrailingDeltaPct != nil {
		cfg.TrailingDeltaPct = *u.TrailingDeltaPct
	}
	if u.MinScorePct != nil {
		cfg.MinScorePct = *u.MinScorePct
	}
	if u.LongEnabled != nil {
		cfg.LongEnabled = *u.LongEnabled
	}
	if u.ShortEnabled != nil {
		cfg.ShortEnabled = *u.ShortEnabled
	}
	return nil
}
