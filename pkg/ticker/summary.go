package ticker

import (
	"sort"

	"github.com/shopspring/decimal"

	"swapstats-api/pkg/coins"
)

// Summarize merges tickers that share a root pair once platform qualifiers
// are stripped. Counts, volumes and liquidity add up. Price extremes, the
// oldest and newest prices and the last swap are taken across the group and
// the change figures are recomputed.
func Summarize(tickers []TickerInfo) []TickerInfo {
	groups := make(map[string]TickerInfo)
	order := make([]string, 0)
	for _, t := range tickers {
		key := rootPairID(t)
		cur, ok := groups[key]
		if !ok {
			cur = rootTemplate(t, key)
			order = append(order, key)
		}
		groups[key] = mergeTicker(cur, t)
	}
	sort.Strings(order)
	out := make([]TickerInfo, 0, len(order))
	for _, key := range order {
		t := groups[key]
		t.PriceChange = decimal.Zero
		t.PriceChangePct = decimal.Zero
		if t.TradesCount > 0 {
			t.PriceChange = t.NewestPrice.Sub(t.OldestPrice)
			t.PriceChangePct = PercentChange(t.OldestPrice, t.NewestPrice)
			t.LastPrice = t.NewestPrice
		} else {
			t.LastPrice = t.LastSwapPrice
		}
		sort.Strings(t.Variants)
		out = append(out, t)
	}
	return out
}

func rootPairID(t TickerInfo) string {
	if p, err := coins.ParsePair(t.TickerID); err == nil {
		return p.Deplatform().String()
	}
	return t.TickerID
}

func rootTemplate(t TickerInfo, key string) TickerInfo {
	out := TickerInfo{
		TickerID: key,
		Window:   t.Window,
		Variants: []string{},
	}
	if p, err := coins.ParsePair(key); err == nil {
		out.BaseCurrency, out.TargetCurrency = p.Base.Ticker(), p.Quote.Ticker()
	}
	return out
}

func mergeTicker(acc, t TickerInfo) TickerInfo {
	seen := make(map[string]struct{}, len(acc.Variants))
	for _, v := range acc.Variants {
		seen[v] = struct{}{}
	}
	for _, v := range t.Variants {
		if _, ok := seen[v]; !ok {
			acc.Variants = append(acc.Variants, v)
			seen[v] = struct{}{}
		}
	}

	hadTrades := acc.TradesCount > 0
	acc.TradesCount += t.TradesCount
	acc.BuyCount += t.BuyCount
	acc.SellCount += t.SellCount
	acc.BaseVolume = acc.BaseVolume.Add(t.BaseVolume)
	acc.QuoteVolume = acc.QuoteVolume.Add(t.QuoteVolume)
	acc.BaseVolumeUSD = acc.BaseVolumeUSD.Add(t.BaseVolumeUSD)
	acc.QuoteVolumeUSD = acc.QuoteVolumeUSD.Add(t.QuoteVolumeUSD)
	acc.CombinedVolumeUSD = acc.CombinedVolumeUSD.Add(t.CombinedVolumeUSD)
	if acc.BasePriceUSD.IsZero() {
		acc.BasePriceUSD = t.BasePriceUSD
	}
	if acc.QuotePriceUSD.IsZero() {
		acc.QuotePriceUSD = t.QuotePriceUSD
	}

	if t.TradesCount > 0 {
		if !hadTrades {
			acc.HighestPrice, acc.LowestPrice = t.HighestPrice, t.LowestPrice
			acc.OldestPrice, acc.OldestPriceTime = t.OldestPrice, t.OldestPriceTime
			acc.NewestPrice, acc.NewestPriceTime = t.NewestPrice, t.NewestPriceTime
		} else {
			acc.HighestPrice = decimal.Max(acc.HighestPrice, t.HighestPrice)
			acc.LowestPrice = decimal.Min(acc.LowestPrice, t.LowestPrice)
			if t.OldestPriceTime < acc.OldestPriceTime {
				acc.OldestPrice, acc.OldestPriceTime = t.OldestPrice, t.OldestPriceTime
			}
			if t.NewestPriceTime > acc.NewestPriceTime {
				acc.NewestPrice, acc.NewestPriceTime = t.NewestPrice, t.NewestPriceTime
			}
		}
	}

	if t.LastSwapTime > acc.LastSwapTime {
		acc.LastSwapTime, acc.LastSwapUUID, acc.LastSwapPrice = t.LastSwapTime, t.LastSwapUUID, t.LastSwapPrice
	}

	acc.LiquidityUSD = acc.LiquidityUSD.Add(t.LiquidityUSD)
	acc.BaseLiquidityCoins = acc.BaseLiquidityCoins.Add(t.BaseLiquidityCoins)
	acc.BaseLiquidityUSD = acc.BaseLiquidityUSD.Add(t.BaseLiquidityUSD)
	acc.QuoteLiquidityCoins = acc.QuoteLiquidityCoins.Add(t.QuoteLiquidityCoins)
	acc.QuoteLiquidityUSD = acc.QuoteLiquidityUSD.Add(t.QuoteLiquidityUSD)
	acc.HighestBid = decimal.Max(acc.HighestBid, t.HighestBid)
	switch {
	case acc.LowestAsk.IsZero():
		acc.LowestAsk = t.LowestAsk
	case !t.LowestAsk.IsZero():
		acc.LowestAsk = decimal.Min(acc.LowestAsk, t.LowestAsk)
	}
	return acc
}

// PairVolume is the volume slice of a ticker.
type PairVolume struct {
	Pair              string          `json:"pair"`
	TradesCount       int             `json:"trades_count"`
	BaseVolume        decimal.Decimal `json:"base_volume"`
	QuoteVolume       decimal.Decimal `json:"quote_volume"`
	BaseVolumeUSD     decimal.Decimal `json:"base_volume_usd"`
	QuoteVolumeUSD    decimal.Decimal `json:"quote_volume_usd"`
	CombinedVolumeUSD decimal.Decimal `json:"combined_volume_usd"`
}

// PairVolumes indexes ticker volumes by ticker id.
func PairVolumes(tickers []TickerInfo) map[string]PairVolume {
	out := make(map[string]PairVolume, len(tickers))
	for _, t := range tickers {
		out[t.TickerID] = PairVolume{
			Pair:              t.TickerID,
			TradesCount:       t.TradesCount,
			BaseVolume:        t.BaseVolume,
			QuoteVolume:       t.QuoteVolume,
			BaseVolumeUSD:     t.BaseVolumeUSD,
			QuoteVolumeUSD:    t.QuoteVolumeUSD,
			CombinedVolumeUSD: t.CombinedVolumeUSD,
		}
	}
	return out
}

// CoinVolume totals one coin's traded volume across pairs.
type CoinVolume struct {
	Coin        string          `json:"coin"`
	TradesCount int             `json:"trades_count"`
	Volume      decimal.Decimal `json:"volume"`
	VolumeUSD   decimal.Decimal `json:"volume_usd"`
}

// CoinVolumes adds each ticker's base volume to its base coin and its quote
// volume to its quote coin.
func CoinVolumes(tickers []TickerInfo) map[string]CoinVolume {
	out := make(map[string]CoinVolume)
	add := func(coin string, trades int, vol, usd decimal.Decimal) {
		cv := out[coin]
		cv.Coin = coin
		cv.TradesCount += trades
		cv.Volume = cv.Volume.Add(vol)
		cv.VolumeUSD = cv.VolumeUSD.Add(usd)
		out[coin] = cv
	}
	for _, t := range tickers {
		if t.TradesCount == 0 {
			continue
		}
		add(t.BaseCurrency, t.TradesCount, t.BaseVolume, t.BaseVolumeUSD)
		add(t.TargetCurrency, t.TradesCount, t.QuoteVolume, t.QuoteVolumeUSD)
	}
	return out
}
