package indicator

// VolumeRatio returns the latest volume divided by the average over the
// trailing period. A zero or missing average returns 0 so the caller
// votes NEUTRAL instead of propagating Inf/NaN into the score.
func VolumeRatio(volumes []float64, period int) float64 {
	if len(volumes) < period {
		return 0
	}
	window := volumes[len(volumes)-period:]
	var sum float64
	for _, v := range window {
		sum += v
	}
	avg := sum / float64(period)
	if avg == 0 {
		return 0
	}
	return volumes[len(volumes)-1] / avg
}
