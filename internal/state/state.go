package state

import (
	"sync"
	"time"

	"driftbot/internal/market"
)

// book is the per-instrument mutable state: the rolling price window, the
// price of the last buy executed through this engine (0 if never bought),
// and the time of the last emitted signal. lastSignalAt is recorded but not
// consulted by the gating rule.
type book struct {
	window       *market.Window
	lastBuyPrice float64
	lastSignalAt time.Time
}

// Store owns all shared bot state behind one mutex: availability flags,
// the instrument list, account balances and per-instrument books. The
// trading flags are a real mutual exclusion, not advisory booleans: a trade
// slot is claimed atomically with TryBeginTrade and held until EndTrade.
type Store struct {
	mu sync.Mutex

	canTrade  bool
	isTrading bool
	isLoading bool

	windowSize  int
	instruments map[string]market.Instrument
	balances    map[string]market.Balance
	books       map[string]*book
}

func NewStore(windowSize int) *Store {
	return &Store{
		windowSize:  windowSize,
		instruments: map[string]market.Instrument{},
		balances:    map[string]market.Balance{},
		books:       map[string]*book{},
	}
}

// ApplyTick pushes a price into the instrument's window and marks the held
// base-asset balance to market. Returns false when the symbol is unknown;
// callers treat that as an unexpected feed event.
func (s *Store) ApplyTick(symbol string, price float64) (market.View, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	instrument, ok := s.instruments[symbol]
	if !ok {
		return market.View{}, false
	}
	entry := s.books[symbol]
	if entry == nil {
		return market.View{}, false
	}

	if balance, held := s.balances[instrument.BaseAsset]; held {
		balance.Price = price
		balance.Value = price * balance.Amount
		s.balances[instrument.BaseAsset] = balance
	}

	return entry.window.Push(price), true
}

func (s *Store) Instrument(symbol string) (market.Instrument, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	instrument, ok := s.instruments[symbol]
	return instrument, ok
}

func (s *Store) Symbols() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	symbols := make([]string, 0, len(s.instruments))
	for symbol := range s.instruments {
		symbols = append(symbols, symbol)
	}
	return symbols
}

func (s *Store) Balance(asset string) (market.Balance, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	balance, ok := s.balances[asset]
	return balance, ok
}

func (s *Store) Balances() map[string]market.Balance {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := make(map[string]market.Balance, len(s.balances))
	for asset, balance := range s.balances {
		copied[asset] = balance
	}
	return copied
}

func (s *Store) Flags() (canTrade, isLoading, isTrading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canTrade, s.isLoading, s.isTrading
}

func (s *Store) LastBuyPrice(symbol string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry := s.books[symbol]; entry != nil {
		return entry.lastBuyPrice
	}
	return 0
}

func (s *Store) SetLastBuyPrice(symbol string, price float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry := s.books[symbol]; entry != nil {
		entry.lastBuyPrice = price
	}
}

func (s *Store) MarkSignal(symbol string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry := s.books[symbol]; entry != nil {
		entry.lastSignalAt = at
	}
}

// TryBeginTrade atomically claims the process-wide trade slot. It succeeds
// only when the bot is available, not reloading and not already in a trade.
// The claim must be released with EndTrade after the post-trade
// reconciliation completes.
func (s *Store) TryBeginTrade() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.canTrade || s.isLoading || s.isTrading {
		return false
	}
	s.isTrading = true
	return true
}

func (s *Store) EndTrade() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isTrading = false
}

// MarkUnavailable flips the bot to non-trading, e.g. when the venue reports
// maintenance. Only a completed reload makes it available again.
func (s *Store) MarkUnavailable() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.canTrade = false
}

// BeginReload makes the bot unavailable for trade evaluation while the
// instrument list and balances are refreshed.
func (s *Store) BeginReload() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isLoading = true
	s.canTrade = false
}

// CompleteReload installs the refreshed instrument list and balances and
// makes the bot available again. Price windows are rebuilt empty for the
// new instrument list; lastBuyPrice survives for instruments that persist
// across the reload so the sell gate keeps its reference price.
func (s *Store) CompleteReload(instruments []market.Instrument, balances map[string]market.Balance) {
	s.mu.Lock()
	defer s.mu.Unlock()

	nextInstruments := make(map[string]market.Instrument, len(instruments))
	nextBooks := make(map[string]*book, len(instruments))
	for _, instrument := range instruments {
		nextInstruments[instrument.Symbol] = instrument
		entry := &book{window: market.NewWindow(s.windowSize)}
		if previous, ok := s.books[instrument.Symbol]; ok {
			entry.lastBuyPrice = previous.lastBuyPrice
			entry.lastSignalAt = previous.lastSignalAt
		}
		nextBooks[instrument.Symbol] = entry
	}

	s.instruments = nextInstruments
	s.books = nextBooks
	s.balances = balances
	s.isLoading = false
	s.canTrade = true
}
