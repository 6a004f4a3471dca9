package indicator

// RSI computes the relative strength index over the trailing period
// changes. An all-gain window clamps to 100 (never NaN); fewer than
// period+1 prices yields the neutral midpoint 50.
func RSI(prices []float64, period int) float64 {
	if len(prices) < period+1 {
		return 50
	}
	var gains, losses float64
	for i := len(prices) - period; i < len(prices); i++ {
		change := prices[i] - prices[i-1]
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}
	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)
	if avgLoss == 0 {
		return 100
	}
	return 100 - 100/(1+avgGain/avgLoss)
}
