package ticker

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/zeromicro/go-zero/core/logx"

	"swapstats-api/pkg/coins"
	"swapstats-api/pkg/orderbook"
)

// TickerInfo is the derived market view of one pair over one window.
type TickerInfo struct {
	TickerID       string   `json:"ticker_id"`
	BaseCurrency   string   `json:"base_currency"`
	TargetCurrency string   `json:"target_currency"`
	Window         string   `json:"window"`
	Variants       []string `json:"variants"`

	TradesCount int `json:"trades_count"`
	BuyCount    int `json:"buy_count"`
	SellCount   int `json:"sell_count"`

	BaseVolume        decimal.Decimal `json:"base_volume"`
	QuoteVolume       decimal.Decimal `json:"target_volume"`
	BaseVolumeUSD     decimal.Decimal `json:"base_volume_usd"`
	QuoteVolumeUSD    decimal.Decimal `json:"quote_volume_usd"`
	CombinedVolumeUSD decimal.Decimal `json:"combined_volume_usd"`
	BasePriceUSD      decimal.Decimal `json:"base_price_usd"`
	QuotePriceUSD     decimal.Decimal `json:"quote_price_usd"`

	HighestPrice    decimal.Decimal `json:"high"`
	LowestPrice     decimal.Decimal `json:"low"`
	OldestPrice     decimal.Decimal `json:"oldest_price"`
	OldestPriceTime int64           `json:"oldest_price_time"`
	NewestPrice     decimal.Decimal `json:"newest_price"`
	NewestPriceTime int64           `json:"newest_price_time"`
	PriceChange     decimal.Decimal `json:"price_change"`
	PriceChangePct  decimal.Decimal `json:"price_change_pct"`
	LastPrice       decimal.Decimal `json:"last_price"`

	LastSwapUUID  string          `json:"last_swap_uuid"`
	LastSwapTime  int64           `json:"last_swap_time"`
	LastSwapPrice decimal.Decimal `json:"last_swap_price"`

	LiquidityUSD        decimal.Decimal `json:"liquidity_in_usd"`
	BaseLiquidityCoins  decimal.Decimal `json:"base_liquidity_coins"`
	BaseLiquidityUSD    decimal.Decimal `json:"base_liquidity_usd"`
	QuoteLiquidityCoins decimal.Decimal `json:"quote_liquidity_coins"`
	QuoteLiquidityUSD   decimal.Decimal `json:"quote_liquidity_usd"`
	HighestBid          decimal.Decimal `json:"bid"`
	LowestAsk           decimal.Decimal `json:"ask"`
}

// TickerSet is the payload cached for a window.
type TickerSet struct {
	LastUpdate           int64           `json:"last_update"`
	Window               string          `json:"window"`
	PairsCount           int             `json:"pairs_count"`
	SwapsCount           int             `json:"swaps_count"`
	CombinedVolumeUSD    decimal.Decimal `json:"combined_volume_usd"`
	CombinedLiquidityUSD decimal.Decimal `json:"combined_liquidity_usd"`
	Data                 []TickerInfo    `json:"data"`
}

// NewTickerSet totals a slice of tickers.
func NewTickerSet(w Window, now time.Time, data []TickerInfo) TickerSet {
	set := TickerSet{LastUpdate: now.Unix(), Window: w.Suffix(), PairsCount: len(data), Data: data}
	if set.Data == nil {
		set.Data = []TickerInfo{}
	}
	for _, t := range data {
		set.SwapsCount += t.TradesCount
		set.CombinedVolumeUSD = set.CombinedVolumeUSD.Add(t.CombinedVolumeUSD)
		set.CombinedLiquidityUSD = set.CombinedLiquidityUSD.Add(t.LiquidityUSD)
	}
	return set
}

// Template is the zero-valued ticker for a pair and window.
func Template(p coins.Pair, w Window) TickerInfo {
	return TickerInfo{
		TickerID:       p.String(),
		BaseCurrency:   p.Base.Ticker(),
		TargetCurrency: p.Quote.Ticker(),
		Window:         w.Suffix(),
		Variants:       []string{},
	}
}

// Input gathers everything needed to derive one ticker.
type Input struct {
	Pair       coins.Pair
	Variants   []coins.Pair
	Window     Window
	Swaps      []Swap
	Book       *orderbook.Merged
	LastTraded LastTradedMap
}

// Deriver computes tickers from swaps.
type Deriver struct {
	policy VolumePolicy
	now    func() time.Time
}

// DeriverOption customises a Deriver.
type DeriverOption func(*Deriver)

// WithVolumePolicy chooses how combined USD volume is computed.
func WithVolumePolicy(p VolumePolicy) DeriverOption {
	return func(d *Deriver) {
		if p != "" {
			d.policy = p
		}
	}
}

// WithNow overrides the clock.
func WithNow(now func() time.Time) DeriverOption {
	return func(d *Deriver) {
		if now != nil {
			d.now = now
		}
	}
}

// NewDeriver builds a deriver using the halved volume policy by default.
func NewDeriver(opts ...DeriverOption) *Deriver {
	d := &Deriver{policy: PolicyHalved, now: time.Now}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Policy returns the configured volume policy.
func (d *Deriver) Policy() VolumePolicy { return d.policy }

// Derive computes the ticker for in.Pair. USD figures use the spot prices in
// ref at call time.
func (d *Deriver) Derive(ref orderbook.Reference, in Input) (TickerInfo, error) {
	info := Template(in.Pair, in.Window)
	if in.Pair.Base == in.Pair.Quote {
		return info, &coins.PairError{Input: in.Pair.String(), Reason: "base equals quote"}
	}
	variants := in.Variants
	if len(variants) == 0 {
		variants = []coins.Pair{in.Pair}
	}
	for _, v := range variants {
		info.Variants = append(info.Variants, v.String())
	}

	var caps coins.MarketCaps
	if ref != nil {
		caps = ref
		info.BasePriceUSD = ref.USDPrice(in.Pair.Base.Symbol)
		info.QuotePriceUSD = ref.USDPrice(in.Pair.Quote.Symbol)
	}

	since := in.Window.Since(d.now()).Unix()
	series := newPriceSeries()
	for _, s := range in.Swaps {
		if !s.IsSuccess || s.FinishedAt.Unix() < since {
			continue
		}
		t, ok := Orient(s, in.Pair, caps)
		if !ok {
			continue
		}
		info.TradesCount++
		if t.Side == SideBuy {
			info.BuyCount++
		} else {
			info.SellCount++
		}
		info.BaseVolume = info.BaseVolume.Add(t.BaseVolume)
		info.QuoteVolume = info.QuoteVolume.Add(t.QuoteVolume)
		if !t.BaseVolume.IsZero() {
			series.add(t.Timestamp, t.Price)
		}
	}

	info.BaseVolumeUSD = info.BaseVolume.Mul(info.BasePriceUSD)
	info.QuoteVolumeUSD = info.QuoteVolume.Mul(info.QuotePriceUSD)
	info.CombinedVolumeUSD = CombineVolume(d.policy, info.BaseVolumeUSD, info.QuoteVolumeUSD)

	if stats, ok := series.stats(); ok {
		info.HighestPrice = stats.highest
		info.LowestPrice = stats.lowest
		info.OldestPrice, info.OldestPriceTime = stats.oldest, stats.oldestAt
		info.NewestPrice, info.NewestPriceTime = stats.newest, stats.newestAt
		info.PriceChange = stats.newest.Sub(stats.oldest)
		info.PriceChangePct = PercentChange(stats.oldest, stats.newest)
		info.LastPrice = stats.newest
	}

	last := LastTradeFor(in.Pair, variants, in.LastTraded, caps)
	info.LastSwapUUID, info.LastSwapTime, info.LastSwapPrice = last.UUID, last.Timestamp, last.Price
	if info.TradesCount == 0 {
		info.LastPrice = last.Price
	}

	if in.Book != nil {
		applyBook(&info, *in.Book)
	}
	return info, nil
}

// DeriveAll derives every input independently. A failing or panicking input
// is logged and replaced by its template so the rest of the batch completes.
func (d *Deriver) DeriveAll(ctx context.Context, ref orderbook.Reference, inputs []Input) []TickerInfo {
	out := make([]TickerInfo, 0, len(inputs))
	for _, in := range inputs {
		info, err := d.deriveSafe(ref, in)
		if err != nil {
			logx.WithContext(ctx).Errorf("ticker: derive failed pair=%s window=%s stage=derive err=%v",
				in.Pair, in.Window.Suffix(), err)
			info = Template(in.Pair, in.Window)
		}
		out = append(out, info)
	}
	return out
}

func (d *Deriver) deriveSafe(ref orderbook.Reference, in Input) (info TickerInfo, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("ticker: panic: %v", p)
		}
	}()
	return d.Derive(ref, in)
}

// CombineVolume merges base and quote USD volumes under policy.
func CombineVolume(policy VolumePolicy, baseUSD, quoteUSD decimal.Decimal) decimal.Decimal {
	sum := baseUSD.Add(quoteUSD)
	if policy == PolicySummed {
		return sum
	}
	return sum.Div(decimal.NewFromInt(2))
}

// PercentChange returns newest/oldest - 1, or zero when oldest is zero.
func PercentChange(oldest, newest decimal.Decimal) decimal.Decimal {
	if oldest.IsZero() {
		return decimal.Zero
	}
	return newest.DivRound(oldest, 18).Sub(decimal.NewFromInt(1))
}

func applyBook(info *TickerInfo, book orderbook.Merged) {
	info.LiquidityUSD = book.LiquidityUSD
	info.BaseLiquidityCoins = book.BaseLiquidityCoins
	info.BaseLiquidityUSD = book.BaseLiquidityUSD
	info.QuoteLiquidityCoins = book.QuoteLiquidityCoins
	info.QuoteLiquidityUSD = book.QuoteLiquidityUSD
	info.HighestBid = book.HighestBid
	info.LowestAsk = book.LowestAsk
}
