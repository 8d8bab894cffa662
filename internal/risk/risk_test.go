package risk

import (
	"testing"

	"driftbot/internal/market"
	"driftbot/internal/strategy"
)

func baseContext() Context {
	return Context{
		CanTrade:   true,
		BaseAsset:  "BTC",
		QuoteAsset: "USDT",
		Balances: map[string]market.Balance{
			"BTC":  {Amount: 0.5, Price: 100, Value: 50},
			"USDT": {Amount: 200, Price: 1, Value: 200},
		},
		LastBuyPrice: 100,
		Price:        99,
	}
}

func TestGateRejectsWhileLoadingOrTrading(t *testing.T) {
	gate := Gate{}

	loading := baseContext()
	loading.IsLoading = true
	if ok, reason := gate.Allow(strategy.Buy, loading); ok {
		t.Fatalf("expected rejection while loading, got approval (%s)", reason)
	}

	trading := baseContext()
	trading.IsTrading = true
	if ok, reason := gate.Allow(strategy.Sell, trading); ok {
		t.Fatalf("expected rejection while trading, got approval (%s)", reason)
	}

	unavailable := baseContext()
	unavailable.CanTrade = false
	if ok, _ := gate.Allow(strategy.Buy, unavailable); ok {
		t.Fatalf("expected rejection while unavailable")
	}
}

func TestGateRequiresHeldBaseAsset(t *testing.T) {
	gate := Gate{}
	ctx := baseContext()
	delete(ctx.Balances, "BTC")

	if ok, _ := gate.Allow(strategy.Buy, ctx); ok {
		t.Fatalf("expected rejection when base asset absent from balances")
	}
}

func TestGateBuyRequiresQuoteNotional(t *testing.T) {
	gate := Gate{}

	ctx := baseContext()
	if ok, reason := gate.Allow(strategy.Buy, ctx); !ok {
		t.Fatalf("expected buy approval, got %s", reason)
	}

	ctx.Balances["USDT"] = market.Balance{Amount: 5, Price: 1, Value: 5}
	if ok, _ := gate.Allow(strategy.Buy, ctx); ok {
		t.Fatalf("expected rejection below min notional")
	}

	delete(ctx.Balances, "USDT")
	if ok, _ := gate.Allow(strategy.Buy, ctx); ok {
		t.Fatalf("expected rejection when quote asset absent")
	}
}

func TestGateSellOnlyBelowLastBuy(t *testing.T) {
	gate := Gate{}

	ctx := baseContext()
	ctx.Price = 101
	if ok, _ := gate.Allow(strategy.Sell, ctx); ok {
		t.Fatalf("expected rejection when price above last buy")
	}

	ctx.Price = 99
	if ok, reason := gate.Allow(strategy.Sell, ctx); !ok {
		t.Fatalf("expected sell approval, got %s", reason)
	}

	ctx.Balances["BTC"] = market.Balance{Amount: 0.05, Price: 99, Value: 4.95}
	if ok, _ := gate.Allow(strategy.Sell, ctx); ok {
		t.Fatalf("expected rejection below min notional")
	}
}

func TestGateSellNeverFiresForInheritedHoldings(t *testing.T) {
	// Balances discovered at reconciliation carry lastBuyPrice 0, so the
	// price-below-last-buy condition can never hold until a buy goes
	// through the engine.
	gate := Gate{}
	ctx := baseContext()
	ctx.LastBuyPrice = 0
	ctx.Price = 99

	if ok, _ := gate.Allow(strategy.Sell, ctx); ok {
		t.Fatalf("expected rejection for never-bought instrument")
	}
}

func TestGateRejectsUnsupportedSide(t *testing.T) {
	gate := Gate{}
	if ok, _ := gate.Allow(strategy.None, baseContext()); ok {
		t.Fatalf("expected rejection for NONE side")
	}
	if ok, _ := gate.Allow(strategy.Signal("SHORT"), baseContext()); ok {
		t.Fatalf("expected rejection for unknown side")
	}
}
