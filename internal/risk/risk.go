package risk

import (
	"driftbot/internal/market"
	"driftbot/internal/strategy"
)

// minNotional is the floor, in quote-asset terms, under which a position or
// quote balance is too small to trade.
const minNotional = 10.0

// Context is everything the gate needs to judge a signal, captured as a
// snapshot so the evaluation itself stays pure.
type Context struct {
	CanTrade  bool
	IsLoading bool
	IsTrading bool

	BaseAsset    string
	QuoteAsset   string
	Balances     map[string]market.Balance
	LastBuyPrice float64
	Price        float64
}

type Gate struct{}

// Allow reports whether a signal may be acted on, with a short reason for
// the decision log. It never mutates state.
//
// A sell is only permitted below the recorded last buy price. That keeps
// the engine selling at a loss relative to its own entry; the inversion is
// inherited behavior, preserved deliberately (see DESIGN.md).
func (g Gate) Allow(side strategy.Signal, ctx Context) (bool, string) {
	if !ctx.CanTrade || ctx.IsLoading || ctx.IsTrading {
		return false, "bot_unavailable"
	}
	if _, held := ctx.Balances[ctx.BaseAsset]; !held {
		return false, "base_asset_not_held"
	}

	switch side {
	case strategy.Buy:
		quote, held := ctx.Balances[ctx.QuoteAsset]
		if !held {
			return false, "quote_asset_not_held"
		}
		if quote.Value < minNotional {
			return false, "quote_below_min_notional"
		}
		return true, "approved"
	case strategy.Sell:
		if ctx.Balances[ctx.BaseAsset].Value < minNotional {
			return false, "base_below_min_notional"
		}
		if ctx.Price >= ctx.LastBuyPrice {
			return false, "price_not_below_last_buy"
		}
		return true, "approved"
	default:
		return false, "unsupported_side"
	}
}
