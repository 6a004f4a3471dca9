// Package indicator computes technical indicators over the rolling price
// and volume windows and maps each one to a directional vote.
//
// All computations are batch functions over chronological slices; the
// window is capped (200 prices) so the cost per tick stays bounded.
package indicator

// Vote is the directional opinion of a single indicator.
type Vote string

const (
	VoteBuy     Vote = "BUY"
	VoteSell    Vote = "SELL"
	VoteNeutral Vote = "NEUTRAL"
)

// Indicator names used as keys in a Set.
const (
	NameEMA       = "ema"
	NameRSI       = "rsi"
	NameMACD      = "macd"
	NameBollinger = "bollinger"
	NameVolume    = "volume"
	NameATR       = "atr"
)

// Value is one computed indicator with its formatted display form
// and directional vote.
type Value struct {
	Value   float64 `json:"value"`
	Display string  `json:"display"`
	Vote    Vote    `json:"vote"`
}

// Set maps indicator name to its latest computed value. Recomputed
// wholesale each tick; never persisted.
type Set map[string]Value

// Placeholder returns the pre-warm-up set: every indicator shows "--"
// and votes NEUTRAL.
func Placeholder() Set {
	s := make(Set, 6)
	for _, name := range []string{NameEMA, NameRSI, NameMACD, NameBollinger, NameVolume, NameATR} {
		s[name] = Value{Display: "--", Vote: VoteNeutral}
	}
	return s
}

// Votes counts BUY and SELL votes among the named indicators.
func (s Set) Votes(names []string) (buy, sell int) {
	for _, n := range names {
		switch s[n].Vote {
		case VoteBuy:
			buy++
		case VoteSell:
			sell++
		}
	}
	return buy, sell
}
