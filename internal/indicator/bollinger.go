package indicator

import "math"

// Bands holds the Bollinger envelope around the trailing mean.
type Bands struct {
	Upper  float64
	Middle float64
	Lower  float64
}

// Bollinger computes mean ± mult×stddev over the trailing period prices.
// Population standard deviation (divide by period). Returns zero bands
// if fewer than period prices are available.
func Bollinger(prices []float64, period int, mult float64) Bands {
	if len(prices) < period {
		return Bands{}
	}
	window := prices[len(prices)-period:]

	var sum float64
	for _, p := range window {
		sum += p
	}
	mean := sum / float64(period)

	var sq float64
	for _, p := range window {
		d := p - mean
		sq += d * d
	}
	std := math.Sqrt(sq / float64(period))

	return Bands{
		Upper:  mean + mult*std,
		Middle: mean,
		Lower:  mean - mult*std,
	}
}
