package market

import (
	"context"

	"github.com/shopspring/decimal"
)

// Provider fetches USD quotes for a set of coins.
type Provider interface {
	// Quotes resolves ids (symbol -> source-specific id) into quotes keyed by
	// symbol. Symbols the source does not know are omitted.
	Quotes(ctx context.Context, ids map[string]string) (map[string]Quote, error)
}

// Quote is the reference data held for one symbol.
type Quote struct {
	SourceID     string          `json:"coingecko_id,omitempty" yaml:"id"`
	USDPrice     decimal.Decimal `json:"usd_price" yaml:"usd_price"`
	USDMarketCap decimal.Decimal `json:"usd_market_cap" yaml:"usd_market_cap"`
}
