package strategy

type Signal string

const (
	None Signal = "NONE"
	Buy  Signal = "BUY"
	Sell Signal = "SELL"
)

// Deviation thresholds in percent, relative to the trailing average.
// Asymmetric on purpose: a 1% dip triggers a buy, a 1.5% run-up a sell.
// Both boundaries are inclusive.
const (
	buyThresholdPct  = -1.0
	sellThresholdPct = 1.5
)

// Classify grades the current price against the trailing average and
// returns the signal together with the percent deviation that produced it.
// Pure and total in both inputs.
func Classify(currentPrice, averagePrice float64) (Signal, float64) {
	deviation := (currentPrice - averagePrice) / averagePrice * 100
	switch {
	case deviation <= buyThresholdPct:
		return Buy, deviation
	case deviation >= sellThresholdPct:
		return Sell, deviation
	default:
		return None, deviation
	}
}
