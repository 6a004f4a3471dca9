// Package signal turns an indicator set into a composite score and an
// open-position decision.
//
// The composite score is the percentage of active indicators agreeing on
// the majority direction; the active subset depends on the trading mode.
package signal

import (
	"fmt"
	"math"
	"strings"

	"paperbot/internal/indicator"
	"paperbot/internal/model"
)

// Decision is an instruction to open a position. A nil *Decision means
// no action this tick.
type Decision struct {
	Direction model.Direction `json:"direction"`
	Score     int             `json:"score"`
	Reason    string          `json:"reason"`
}

// ActiveIndicators returns the indicator subset evaluated for a mode.
// Unknown modes fall back to the conservative (full) subset.
func ActiveIndicators(mode model.Mode) []string {
	switch mode {
	case model.ModeAggressive:
		return []string{indicator.NameEMA, indicator.NameRSI, indicator.NameVolume}
	case model.ModeBalanced:
		return []string{indicator.NameEMA, indicator.NameRSI, indicator.NameVolume, indicator.NameMACD}
	}
	return []string{
		indicator.NameEMA, indicator.NameRSI, indicator.NameVolume,
		indicator.NameMACD, indicator.NameBollinger, indicator.NameATR,
	}
}

// Score computes the composite score for the mode's active subset:
// round(max(buyVotes, sellVotes) / activeCount × 100).
func Score(set indicator.Set, mode model.Mode) (score, buy, sell int) {
	active := ActiveIndicators(mode)
	buy, sell = set.Votes(active)
	votes := buy
	if sell > votes {
		votes = sell
	}
	score = int(math.Round(float64(votes) / float64(len(active)) * 100))
	return score, buy, sell
}

// Decide evaluates whether a position should open. Fires only when the
// score clears MinScorePct, the vote is not tied, and the winning
// direction is enabled.
func Decide(set indicator.Set, cfg model.TradingConfig) *Decision {
	score, buy, sell := Score(set, cfg.Mode)
	if score < cfg.MinScorePct || buy == sell {
		return nil
	}

	dir := model.Long
	want := indicator.VoteBuy
	if sell > buy {
		dir = model.Short
		want = indicator.VoteSell
	}
	if dir == model.Long && !cfg.LongEnabled {
		return nil
	}
	if dir == model.Short && !cfg.ShortEnabled {
		return nil
	}

	return &Decision{
		Direction: dir,
		Score:     score,
		Reason:    reason(set, cfg.Mode, want),
	}
}

// reason lists the active indicators that voted for the winning side,
// e.g. "ema:120.10/118.40|volume:1.45x".
func reason(set indicator.Set, mode model.Mode, want indicator.Vote) string {
	var parts []string
	for _, name := range ActiveIndicators(mode) {
		if v := set[name]; v.Vote == want {
			parts = append(parts, fmt.Sprintf("%s:%s", name, v.Display))
		}
	}
	return strings.Join(parts, "|")
}
