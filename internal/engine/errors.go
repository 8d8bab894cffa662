package engine

import "errors"

// Reconciliation failures. They propagate to the caller uncaught; the bot
// stays non-trading until the next successful cycle.
var (
	ErrMaintenance   = errors.New("venue is on maintenance")
	ErrNoInstruments = errors.New("no tradable instruments in the market")
	ErrNoBalances    = errors.New("no balances available in the account")
)
