package market

import (
	"github.com/shopspring/decimal"

	"swapstats-api/pkg/coins"
)

// Reference answers price and market cap lookups. Lookups strip platform
// and segwit qualifiers, so "KMD-BEP20" resolves to KMD. Unknown symbols
// report zero, which downstream treats as unpriced.
type Reference struct {
	quotes map[string]Quote
}

// NewReference indexes quotes by symbol.
func NewReference(quotes map[string]Quote) *Reference {
	idx := make(map[string]Quote, len(quotes))
	for symbol, q := range quotes {
		idx[coins.ParseCoin(symbol).Symbol] = q
	}
	return &Reference{quotes: idx}
}

// USDPrice returns the spot USD price of symbol.
func (r *Reference) USDPrice(symbol string) decimal.Decimal {
	return r.lookup(symbol).USDPrice
}

// MarketCap returns the USD market cap of symbol.
func (r *Reference) MarketCap(symbol string) decimal.Decimal {
	return r.lookup(symbol).USDMarketCap
}

// Priced reports whether symbol has a positive USD price.
func (r *Reference) Priced(symbol string) bool {
	return r.USDPrice(symbol).IsPositive()
}

// Len returns the number of indexed symbols.
func (r *Reference) Len() int {
	if r == nil {
		return 0
	}
	return len(r.quotes)
}

func (r *Reference) lookup(symbol string) Quote {
	if r == nil {
		return Quote{}
	}
	return r.quotes[coins.ParseCoin(symbol).Symbol]
}
