package model

import "time"

// CloseReason indicates why a position was closed.
type CloseReason string

const (
	CloseTakeProfit   CloseReason = "TAKE_PROFIT"
	CloseStopLoss     CloseReason = "STOP_LOSS"
	CloseTrailingStop CloseReason = "TRAILING_STOP"
	CloseManualStop   CloseReason = "MANUAL_STOP"
)

// ClosedTrade is an immutable record of a completed round trip.
type ClosedTrade struct {
	ID         int64       `json:"id"`
	Direction  Direction   `json:"direction"`
	EntryPrice float64     `json:"entry_price"`
	ExitPrice  float64     `json:"exit_price"`
	Size       float64     `json:"size"`
	Profit     float64     `json:"profit"` // quote currency
	ExitReason CloseReason `json:"exit_reason"`
	DurationMs int64       `json:"duration_ms"`
	ClosedAt   time.Time   `json:"closed_at"`
}
