package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"driftbot/internal/feed"
	"driftbot/internal/gateway"
	"driftbot/internal/market"
	"driftbot/internal/metrics"
	"driftbot/internal/notify"
	"driftbot/internal/risk"
	"driftbot/internal/sizing"
	"driftbot/internal/state"
	"driftbot/internal/strategy"
)

// Gateway is the narrow slice of the venue API the engine depends on.
type Gateway interface {
	Maintenance(ctx context.Context) (bool, error)
	ListInstruments(ctx context.Context) ([]market.Instrument, error)
	Balances(ctx context.Context) ([]gateway.AssetBalance, error)
	PlaceOrder(ctx context.Context, order gateway.Order) (json.RawMessage, error)
	QuoteAsset() string
}

type Engine struct {
	store     *state.Store
	gate      risk.Gate
	gw        Gateway
	decisions *DecisionLogger
	notifier  notify.Notifier
	runID     string
}

func New(store *state.Store, gate risk.Gate, gw Gateway, decisions *DecisionLogger, notifier notify.Notifier) *Engine {
	return &Engine{
		store:     store,
		gate:      gate,
		gw:        gw,
		decisions: decisions,
		notifier:  notifier,
		runID:     decisions.RunID(),
	}
}

// Start runs the initial reconciliation cycle, reports the starting
// balances through the notification hook and returns the symbols to
// subscribe the feed to.
func (e *Engine) Start(ctx context.Context) ([]string, error) {
	if err := e.Reload(ctx); err != nil {
		return nil, err
	}

	balances, err := json.Marshal(e.store.Balances())
	if err == nil && e.notifier != nil {
		go func() {
			notifyCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := e.notifier.Notify(notifyCtx, "Trading bot started", "Initial balances:\n"+string(balances)); err != nil {
				slog.Warn("startup notification failed", "error", err)
			}
		}()
	}

	return e.store.Symbols(), nil
}

// OnTick runs one activation of the pipeline: window update, signal
// classification, eligibility gate, sizing, execution, reconciliation.
// A non-nil return tears the feed connection down.
func (e *Engine) OnTick(ctx context.Context, tick feed.Tick) error {
	metrics.Ticks.Inc()

	view, known := e.store.ApplyTick(tick.Symbol, tick.Close)
	if !known {
		return fmt.Errorf("tick for unknown instrument %s", tick.Symbol)
	}
	if !view.Full {
		return nil
	}

	signal, deviation := strategy.Classify(tick.Close, view.Average)
	metrics.Signals.WithLabelValues(string(signal)).Inc()
	if signal == strategy.None {
		return nil
	}

	instrument, ok := e.store.Instrument(tick.Symbol)
	if !ok {
		return fmt.Errorf("no instrument metadata for %s", tick.Symbol)
	}

	decision := Decision{
		RunID:        e.runID,
		Timestamp:    time.Now().UTC(),
		Symbol:       tick.Symbol,
		Close:        tick.Close,
		Average:      view.Average,
		DeviationPct: deviation,
		Signal:       signal,
	}

	canTrade, isLoading, isTrading := e.store.Flags()
	riskCtx := risk.Context{
		CanTrade:     canTrade,
		IsLoading:    isLoading,
		IsTrading:    isTrading,
		BaseAsset:    instrument.BaseAsset,
		QuoteAsset:   instrument.QuoteAsset,
		Balances:     e.store.Balances(),
		LastBuyPrice: e.store.LastBuyPrice(tick.Symbol),
		Price:        tick.Close,
	}

	allowed, reason := e.gate.Allow(signal, riskCtx)
	if !allowed {
		decision.Result = "rejected"
		decision.Reason = reason
		e.decisions.Append(decision)
		slog.Info("signal rejected", "symbol", tick.Symbol, "signal", signal, "reason", reason, "deviation_pct", deviation)
		return nil
	}

	// Claim the process-wide trade slot; held through reconciliation so a
	// second activation cannot start a trade mid-cycle.
	if !e.store.TryBeginTrade() {
		decision.Result = "rejected"
		decision.Reason = "trade_slot_busy"
		e.decisions.Append(decision)
		return nil
	}
	defer e.store.EndTrade()

	spendAsset := instrument.QuoteAsset
	if signal == strategy.Sell {
		spendAsset = instrument.BaseAsset
	}
	balance := riskCtx.Balances[spendAsset]
	quantity := sizing.OrderQuantity(signal, balance.Amount, tick.Close, instrument.MinQuantity)
	decision.Quantity = quantity
	if quantity <= 0 {
		decision.Result = "order_build_failed"
		decision.Reason = "zero_quantity"
		e.decisions.Append(decision)
		return nil
	}

	e.store.MarkSignal(tick.Symbol, time.Now().UTC())

	order := gateway.Order{
		Symbol:        instrument.Symbol,
		Side:          string(signal),
		Quantity:      quantity,
		Price:         tick.Close,
		ClientOrderID: uuid.NewString(),
	}
	decision.ClientOrderID = order.ClientOrderID

	response, err := e.gw.PlaceOrder(ctx, order)
	if err != nil {
		decision.Result = "order_failed"
		decision.Reason = err.Error()
		metrics.Orders.WithLabelValues(order.Side, "failed").Inc()
		slog.Error("order failed", "symbol", tick.Symbol, "side", order.Side, "error", err)
	} else {
		decision.Result = "order_submitted"
		metrics.Orders.WithLabelValues(order.Side, "submitted").Inc()
		slog.Info("order submitted", "symbol", tick.Symbol, "side", order.Side, "quantity", quantity, "response", string(response))
		if signal == strategy.Buy {
			e.store.SetLastBuyPrice(tick.Symbol, tick.Close)
		}
	}
	e.decisions.Append(decision)

	// Win or lose, the account state is stale now.
	return e.Reload(ctx)
}
