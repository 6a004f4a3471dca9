package model

import "time"

// Tick represents a single market observation from the price feed.
type Tick struct {
	Price  float64   `json:"price"`
	Volume float64   `json:"volume"`
	TS     time.Time `json:"ts"` // exchange event time (UTC)
}
