package indicator

import "math"

// ATR computes the average true range over the trailing period ticks.
// The feed carries no true high/low, so each tick synthesizes
// high = price×1.01 and low = price×0.99. Simple average, not Wilder
// smoothing. Returns 0 if fewer than period+1 prices are available.
func ATR(prices []float64, period int) float64 {
	if len(prices) < period+1 {
		return 0
	}
	var sum float64
	for i := len(prices) - period; i < len(prices); i++ {
		high := prices[i] * 1.01
		low := prices[i] * 0.99
		prevClose := prices[i-1]

		tr := high - low
		if hc := math.Abs(high - prevClose); hc > tr {
			tr = hc
		}
		if lc := math.Abs(low - prevClose); lc > tr {
			tr = lc
		}
		sum += tr
	}
	return sum / float64(period)
}
