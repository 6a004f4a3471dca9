package indicator

import "fmt"

// Default periods, matching the live-bot tuning.
const (
	DefaultWarmUp      = 50
	DefaultFastEMA     = 9
	DefaultSlowEMA     = 21
	DefaultRSIPeriod   = 14
	DefaultBollPeriod  = 20
	DefaultBollMult    = 2.0
	DefaultATRPeriod   = 14
	DefaultVolumeAvg   = 20
	DefaultVolumeSpike = 1.2 // current must exceed avg by this factor
)

// ATR volatility filter band, as percent of price.
const (
	atrPctFloor = 0.5
	atrPctCeil  = 5.0
)

// Engine recomputes the full indicator set from the rolling windows.
// It keeps one piece of cross-tick state: the previous MACD histogram,
// used to expose histogram crosses in status output.
type Engine struct {
	WarmUp     int
	FastEMA    int
	SlowEMA    int
	RSIPeriod  int
	BollPeriod int
	BollMult   float64
	ATRPeriod  int
	VolumeAvg  int

	prevHist float64
}

// NewEngine returns an engine with the default periods.
func NewEngine() *Engine {
	return &Engine{
		WarmUp:     DefaultWarmUp,
		FastEMA:    DefaultFastEMA,
		SlowEMA:    DefaultSlowEMA,
		RSIPeriod:  DefaultRSIPeriod,
		BollPeriod: DefaultBollPeriod,
		BollMult:   DefaultBollMult,
		ATRPeriod:  DefaultATRPeriod,
		VolumeAvg:  DefaultVolumeAvg,
	}
}

// PrevHistogram returns the MACD histogram from the previous Compute.
func (e *Engine) PrevHistogram() float64 { return e.prevHist }

// Compute derives the indicator set from the chronological price and
// volume windows. Below the warm-up threshold it returns the
// placeholder set without touching any state.
func (e *Engine) Compute(prices, volumes []float64) Set {
	if len(prices) < e.WarmUp {
		return Placeholder()
	}

	price := prices[len(prices)-1]
	set := make(Set, 6)

	fast := EMA(prices, e.FastEMA)
	slow := EMA(prices, e.SlowEMA)
	set[NameEMA] = Value{
		Value:   fast - slow,
		Display: fmt.Sprintf("%.2f/%.2f", fast, slow),
		Vote:    emaVote(fast, slow),
	}

	rsi := RSI(prices, e.RSIPeriod)
	set[NameRSI] = Value{
		Value:   rsi,
		Display: fmt.Sprintf("%.1f", rsi),
		Vote:    rsiVote(rsi),
	}

	macd := MACD(prices)
	set[NameMACD] = Value{
		Value:   macd.Histogram,
		Display: fmt.Sprintf("%.4f", macd.Histogram),
		Vote:    macdVote(macd.Histogram),
	}
	e.prevHist = macd.Histogram

	bands := Bollinger(prices, e.BollPeriod, e.BollMult)
	set[NameBollinger] = Value{
		Value:   bands.Middle,
		Display: fmt.Sprintf("%.2f~%.2f", bands.Lower, bands.Upper),
		Vote:    bollingerVote(price, bands),
	}

	ratio := VolumeRatio(volumes, e.VolumeAvg)
	set[NameVolume] = Value{
		Value:   ratio,
		Display: fmt.Sprintf("%.2fx", ratio),
		Vote:    volumeVote(ratio),
	}

	atr := ATR(prices, e.ATRPeriod)
	atrPct := 0.0
	if price > 0 {
		atrPct = atr / price * 100
	}
	set[NameATR] = Value{
		Value:   atr,
		Display: fmt.Sprintf("%.2f%%", atrPct),
		Vote:    atrVote(atrPct),
	}

	return set
}

func emaVote(fast, slow float64) Vote {
	switch {
	case fast > slow:
		return VoteBuy
	case fast < slow:
		return VoteSell
	}
	return VoteNeutral
}

func rsiVote(rsi float64) Vote {
	switch {
	case rsi < 30:
		return VoteBuy
	case rsi > 70:
		return VoteSell
	}
	return VoteNeutral
}

func macdVote(hist float64) Vote {
	if hist > 0 {
		return VoteBuy
	}
	return VoteSell
}

func bollingerVote(price float64, b Bands) Vote {
	if b.Upper == 0 && b.Lower == 0 {
		return VoteNeutral
	}
	switch {
	case price < b.Lower:
		return VoteBuy
	case price > b.Upper:
		return VoteSell
	}
	return VoteNeutral
}

func volumeVote(ratio float64) Vote {
	if ratio > DefaultVolumeSpike {
		return VoteBuy
	}
	return VoteNeutral
}

// atrVote is a volatility filter: it only ever adds a BUY vote when
// volatility sits inside the tradable band.
func atrVote(atrPct float64) Vote {
	if atrPct > atrPctFloor && atrPct < atrPctCeil {
		return VoteBuy
	}
	return VoteNeutral
}
