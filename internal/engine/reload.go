package engine

import (
	"context"
	"log/slog"

	"driftbot/internal/gateway"
	"driftbot/internal/market"
	"driftbot/internal/metrics"
)

// Reload is the reconciliation cycle: maintenance check, instrument list
// refresh, balance refresh. It runs at startup and after every trade
// attempt. Any failure leaves the bot unavailable for trade evaluation
// until a later cycle completes.
func (e *Engine) Reload(ctx context.Context) error {
	maintenance, err := e.gw.Maintenance(ctx)
	if err != nil {
		metrics.Reloads.WithLabelValues("error").Inc()
		return err
	}
	if maintenance {
		e.store.MarkUnavailable()
		metrics.Reloads.WithLabelValues("maintenance").Inc()
		return ErrMaintenance
	}

	e.store.BeginReload()

	instruments, err := e.gw.ListInstruments(ctx)
	if err != nil {
		metrics.Reloads.WithLabelValues("error").Inc()
		return err
	}
	if len(instruments) == 0 {
		metrics.Reloads.WithLabelValues("no_instruments").Inc()
		return ErrNoInstruments
	}

	rows, err := e.gw.Balances(ctx)
	if err != nil {
		metrics.Reloads.WithLabelValues("error").Inc()
		return err
	}
	balances := e.filterBalances(instruments, rows)
	if len(balances) == 0 {
		metrics.Reloads.WithLabelValues("no_balances").Inc()
		return ErrNoBalances
	}

	e.store.CompleteReload(instruments, balances)

	for asset, balance := range balances {
		metrics.BalanceValue.WithLabelValues(asset).Set(balance.Value)
	}
	metrics.Reloads.WithLabelValues("ok").Inc()
	slog.Info("reload complete", "instruments", len(instruments), "balances", len(balances))
	return nil
}

// filterBalances keeps assets that are the base of a known instrument,
// priced lazily by the next tick, plus the quote asset valued 1:1.
func (e *Engine) filterBalances(instruments []market.Instrument, rows []gateway.AssetBalance) map[string]market.Balance {
	bases := make(map[string]struct{}, len(instruments))
	for _, instrument := range instruments {
		bases[instrument.BaseAsset] = struct{}{}
	}

	quoteAsset := e.gw.QuoteAsset()
	balances := make(map[string]market.Balance)
	for _, row := range rows {
		if row.Asset == quoteAsset {
			balances[quoteAsset] = market.Balance{Amount: row.Free, Price: 1, Value: row.Free}
			continue
		}
		if _, tradable := bases[row.Asset]; tradable {
			balances[row.Asset] = market.Balance{Amount: row.Free}
		}
	}
	return balances
}
