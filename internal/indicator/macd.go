package indicator

// MACDResult holds the MACD line, its EMA(9) signal line, and the
// histogram (line − signal).
type MACDResult struct {
	MACD      float64
	Signal    float64
	Histogram float64
}

// MACD computes EMA(12) − EMA(26) over the price window. The MACD line
// history is rebuilt from every growing prefix starting at index 26;
// O(n²) over the window, acceptable with the 200-sample cap. The signal
// line is EMA(9) of that history.
func MACD(prices []float64) MACDResult {
	if len(prices) < 26 {
		return MACDResult{}
	}
	macd := EMA(prices, 12) - EMA(prices, 26)

	line := make([]float64, 0, len(prices)-25)
	for i := 26; i <= len(prices); i++ {
		prefix := prices[:i]
		line = append(line, EMA(prefix, 12)-EMA(prefix, 26))
	}
	signal := EMA(line, 9)

	return MACDResult{
		MACD:      macd,
		Signal:    signal,
		Histogram: macd - signal,
	}
}
