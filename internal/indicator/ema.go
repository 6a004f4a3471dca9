package indicator

// EMA computes the exponential moving average of prices with smoothing
// constant k = 2/(period+1), seeded with the first price of the window.
// Returns 0 for an empty slice.
func EMA(prices []float64, period int) float64 {
	if len(prices) == 0 {
		return 0
	}
	k := 2.0 / float64(period+1)
	ema := prices[0]
	for _, p := range prices[1:] {
		ema = p*k + ema*(1-k)
	}
	return ema
}
