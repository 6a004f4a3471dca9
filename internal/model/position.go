package model

import "time"

// Direction of a position.
type Direction string

const (
	Long  Direction = "LONG"
	Short Direction = "SHORT"
)

// Position represents the single open position managed by the bot.
// Size is in base-asset units; Extremum tracks the best price reached
// since the trailing stop armed.
type Position struct {
	Direction      Direction `json:"direction"`
	EntryPrice     float64   `json:"entry_price"`
	Size           float64   `json:"size"`
	OpenedAt       time.Time `json:"opened_at"`
	TrailingActive bool      `json:"trailing_active"`
	Extremum       float64   `json:"extremum"`
}

// ProfitPct returns the unrealized profit percentage at the given price.
// LONG gains when price rises, SHORT gains when price falls.
func (p *Position) ProfitPct(price float64) float64 {
	if p.EntryPrice == 0 {
		return 0
	}
	if p.Direction == Short {
		return (p.EntryPrice - price) / p.EntryPrice * 100
	}
	return (price - p.EntryPrice) / p.EntryPrice * 100
}

// Profit returns the realized profit in quote currency when exiting at price.
func (p *Position) Profit(price float64) float64 {
	if p.Direction == Short {
		return (p.EntryPrice - price) * p.Size
	}
	return (price - p.EntryPrice) * p.Size
}
