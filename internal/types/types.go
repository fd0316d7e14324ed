package types

import (
	"swapstats-api/internal/calc"
	"swapstats-api/pkg/cachekit"
	"swapstats-api/pkg/market/fixer"
	"swapstats-api/pkg/orderbook"
	"swapstats-api/pkg/ticker"
)

type TickersRequest struct {
	Window string `form:"window,optional"`
}

type OrderbookRequest struct {
	Pair  string `path:"pair"`
	Depth int    `form:"depth,optional,range=[0:10000]"`
}

type (
	TickerSet   = ticker.TickerSet
	Orderbook   = orderbook.Merged
	PairVolumes = calc.VolumesPayload[ticker.PairVolume]
	CoinVolumes = calc.VolumesPayload[ticker.CoinVolume]
	LastTraded  = ticker.LastTradedMap
	FixerRates  = fixer.Rates
)

type CacheHealthResponse struct {
	Healthy bool                   `json:"healthy"`
	Entries []cachekit.EntryHealth `json:"entries"`
}
