package market

// Instrument describes a tradable pair and its lot constraints as reported
// by the venue. Immutable between reloads; replaced wholesale on reload.
type Instrument struct {
	Symbol      string
	BaseAsset   string
	QuoteAsset  string
	MinQuantity float64
	// MaxQuantity is retrieved and carried but not enforced by sizing.
	MaxQuantity float64
}

// Balance is one held asset. Price and Value are marked to market as ticks
// arrive for the matching instrument; the quote asset is valued 1:1.
type Balance struct {
	Amount float64
	Price  float64
	Value  float64
}
