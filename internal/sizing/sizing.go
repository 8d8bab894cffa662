package sizing

import (
	"math"

	"driftbot/internal/strategy"
)

// Quantity converts a spendable balance into an order quantity at the given
// price, floored to the nearest multiple of the instrument's minimum
// quantity (the lot step size).
func Quantity(balance, price, step float64) float64 {
	raw := balance / price
	return raw - math.Mod(raw, step)
}

// OrderQuantity returns the quantity to put on the wire for a side. A buy
// spends the quote balance, so the sized amount applies; a sell spends the
// base balance, which is already denominated in the asset being sold and is
// sent as-is.
func OrderQuantity(side strategy.Signal, balance, price, step float64) float64 {
	if side == strategy.Sell {
		return balance
	}
	return Quantity(balance, price, step)
}
