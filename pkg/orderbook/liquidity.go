package orderbook

import (
	"sort"

	"github.com/shopspring/decimal"

	"swapstats-api/pkg/coins"
)

// Merged is an orderbook combined across variants together with its
// liquidity aggregates.
type Merged struct {
	Book
	Variants []string `json:"variants"`

	BasePriceUSD  decimal.Decimal `json:"base_price_usd"`
	QuotePriceUSD decimal.Decimal `json:"quote_price_usd"`

	TotalAsksBaseVol  decimal.Decimal `json:"total_asks_base_vol"`
	TotalBidsBaseVol  decimal.Decimal `json:"total_bids_base_vol"`
	TotalAsksQuoteVol decimal.Decimal `json:"total_asks_quote_vol"`
	TotalBidsQuoteVol decimal.Decimal `json:"total_bids_quote_vol"`
	TotalAsksBaseUSD  decimal.Decimal `json:"total_asks_base_usd"`
	TotalBidsQuoteUSD decimal.Decimal `json:"total_bids_quote_usd"`

	BaseLiquidityCoins  decimal.Decimal `json:"base_liquidity_coins"`
	BaseLiquidityUSD    decimal.Decimal `json:"base_liquidity_usd"`
	QuoteLiquidityCoins decimal.Decimal `json:"quote_liquidity_coins"`
	QuoteLiquidityUSD   decimal.Decimal `json:"quote_liquidity_usd"`
	LiquidityUSD        decimal.Decimal `json:"liquidity_in_usd"`

	HighestBid decimal.Decimal `json:"highest_bid"`
	LowestAsk  decimal.Decimal `json:"lowest_ask"`
}

// Template is the zero-valued merged book returned when no data exists.
func Template(p coins.Pair, variants []string) Merged {
	if variants == nil {
		variants = []string{}
	}
	return Merged{Book: EmptyBook(p), Variants: variants}
}

// Liquidity derives aggregates for a single book. Liquidity is the USD value
// of the ask side in base units plus the bid side in quote units.
func Liquidity(b Book, basePrice, quotePrice decimal.Decimal) Merged {
	m := Merged{
		Book:          b,
		Variants:      []string{},
		BasePriceUSD:  basePrice,
		QuotePriceUSD: quotePrice,
	}
	if m.Bids == nil {
		m.Bids = []Entry{}
	}
	if m.Asks == nil {
		m.Asks = []Entry{}
	}
	if b.Pair != "" {
		m.Variants = []string{b.Pair}
	}
	for _, ask := range m.Asks {
		m.TotalAsksBaseVol = m.TotalAsksBaseVol.Add(ask.BaseVolume)
		m.TotalAsksQuoteVol = m.TotalAsksQuoteVol.Add(ask.QuoteVolume)
	}
	for _, bid := range m.Bids {
		m.TotalBidsBaseVol = m.TotalBidsBaseVol.Add(bid.BaseVolume)
		m.TotalBidsQuoteVol = m.TotalBidsQuoteVol.Add(bid.QuoteVolume)
	}
	m.TotalAsksBaseUSD = m.TotalAsksBaseVol.Mul(basePrice)
	m.TotalBidsQuoteUSD = m.TotalBidsQuoteVol.Mul(quotePrice)
	m.BaseLiquidityCoins = m.TotalAsksBaseVol
	m.BaseLiquidityUSD = m.TotalAsksBaseUSD
	m.QuoteLiquidityCoins = m.TotalBidsQuoteVol
	m.QuoteLiquidityUSD = m.TotalBidsQuoteUSD
	m.LiquidityUSD = m.BaseLiquidityUSD.Add(m.QuoteLiquidityUSD)
	m.HighestBid, m.LowestAsk = bestPrices(m.Bids, m.Asks)
	return m
}

// Merge unions levels and sums aggregates. Levels at equal prices from
// different books stay distinct.
func Merge(p coins.Pair, books ...Merged) Merged {
	out := Template(p, nil)
	variants := make(map[string]struct{})
	for _, b := range books {
		out.Bids = append(out.Bids, b.Bids...)
		out.Asks = append(out.Asks, b.Asks...)
		for _, v := range b.Variants {
			variants[v] = struct{}{}
		}
		if out.BasePriceUSD.IsZero() {
			out.BasePriceUSD = b.BasePriceUSD
		}
		if out.QuotePriceUSD.IsZero() {
			out.QuotePriceUSD = b.QuotePriceUSD
		}
		if b.Timestamp > out.Timestamp {
			out.Timestamp = b.Timestamp
		}
		out.TotalAsksBaseVol = out.TotalAsksBaseVol.Add(b.TotalAsksBaseVol)
		out.TotalBidsBaseVol = out.TotalBidsBaseVol.Add(b.TotalBidsBaseVol)
		out.TotalAsksQuoteVol = out.TotalAsksQuoteVol.Add(b.TotalAsksQuoteVol)
		out.TotalBidsQuoteVol = out.TotalBidsQuoteVol.Add(b.TotalBidsQuoteVol)
		out.TotalAsksBaseUSD = out.TotalAsksBaseUSD.Add(b.TotalAsksBaseUSD)
		out.TotalBidsQuoteUSD = out.TotalBidsQuoteUSD.Add(b.TotalBidsQuoteUSD)
		out.BaseLiquidityCoins = out.BaseLiquidityCoins.Add(b.BaseLiquidityCoins)
		out.BaseLiquidityUSD = out.BaseLiquidityUSD.Add(b.BaseLiquidityUSD)
		out.QuoteLiquidityCoins = out.QuoteLiquidityCoins.Add(b.QuoteLiquidityCoins)
		out.QuoteLiquidityUSD = out.QuoteLiquidityUSD.Add(b.QuoteLiquidityUSD)
		out.LiquidityUSD = out.LiquidityUSD.Add(b.LiquidityUSD)
	}
	sortLevels(out.Bids, out.Asks)
	out.HighestBid, out.LowestAsk = bestPrices(out.Bids, out.Asks)
	for v := range variants {
		out.Variants = append(out.Variants, v)
	}
	sort.Strings(out.Variants)
	return out
}

// LatestRound keeps the books stamped by the newest aggregation round and
// drops leftovers of earlier rounds.
func LatestRound(books []Merged) []Merged {
	var newest int64
	for _, b := range books {
		if b.Timestamp > newest {
			newest = b.Timestamp
		}
	}
	out := make([]Merged, 0, len(books))
	for _, b := range books {
		if b.Timestamp == newest {
			out = append(out, b)
		}
	}
	return out
}

// Truncate limits both sides to depth levels. Aggregates are left as they
// were computed over the full book.
func Truncate(m Merged, depth int) Merged {
	if depth <= 0 {
		return m
	}
	if len(m.Bids) > depth {
		m.Bids = m.Bids[:depth]
	}
	if len(m.Asks) > depth {
		m.Asks = m.Asks[:depth]
	}
	return m
}

func sortLevels(bids, asks []Entry) {
	sort.SliceStable(bids, func(i, j int) bool { return bids[i].Price.GreaterThan(bids[j].Price) })
	sort.SliceStable(asks, func(i, j int) bool { return asks[i].Price.LessThan(asks[j].Price) })
}

func bestPrices(bids, asks []Entry) (highestBid, lowestAsk decimal.Decimal) {
	for i, bid := range bids {
		if i == 0 || bid.Price.GreaterThan(highestBid) {
			highestBid = bid.Price
		}
	}
	for i, ask := range asks {
		if i == 0 || ask.Price.LessThan(lowestAsk) {
			lowestAsk = ask.Price
		}
	}
	return highestBid, lowestAsk
}
