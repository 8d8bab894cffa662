package sizing

import (
	"testing"

	"driftbot/internal/strategy"
)

func TestQuantityFloorsToStep(t *testing.T) {
	cases := []struct {
		name    string
		balance float64
		price   float64
		step    float64
		want    float64
	}{
		{"already a step multiple", 105, 10, 0.5, 10.5},
		{"floors down to step", 103, 10, 0.5, 10.0},
		{"whole lot step", 95, 10, 1, 9},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Quantity(tc.balance, tc.price, tc.step)
			if diff := got - tc.want; diff > 1e-9 || diff < -1e-9 {
				t.Fatalf("Quantity(%v, %v, %v) = %v, want %v", tc.balance, tc.price, tc.step, got, tc.want)
			}
		})
	}
}

func TestOrderQuantitySellSendsRawBalance(t *testing.T) {
	got := OrderQuantity(strategy.Sell, 2.37, 10, 0.5)
	if got != 2.37 {
		t.Fatalf("sell quantity = %v, want raw balance 2.37", got)
	}
}

func TestOrderQuantityBuyIsSized(t *testing.T) {
	got := OrderQuantity(strategy.Buy, 103, 10, 0.5)
	if got != 10.0 {
		t.Fatalf("buy quantity = %v, want 10.0", got)
	}
}
