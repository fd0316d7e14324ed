package calc

import (
	"context"
	"fmt"

	"github.com/zeromicro/go-zero/core/logx"

	"swapstats-api/pkg/cachekit"
	"swapstats-api/pkg/coins"
	"swapstats-api/pkg/ticker"
)

// grouping decides which ticker a swap is folded into.
type grouping int

const (
	// groupSegwit merges native and segwit variants and keeps platform
	// tokens apart: DGB-segwit_KMD-BEP20 becomes DGB_KMD-BEP20.
	groupSegwit grouping = iota
	// groupRoot strips every platform qualifier: DGB_KMD.
	groupRoot
)

// VolumesPayload is the body of the volume entries.
type VolumesPayload[T any] struct {
	LastUpdate int64        `json:"last_update"`
	Window     string       `json:"window"`
	Volumes    map[string]T `json:"volumes"`
}

func stripSegwit(p coins.Pair) coins.Pair {
	strip := func(c coins.Coin) coins.Coin {
		if c.IsSegwit() {
			return coins.Coin{Symbol: c.Symbol}
		}
		return c
	}
	return coins.Pair{Base: strip(p.Base), Quote: strip(p.Quote)}
}

// tickerVariants pairs each side with its segwit twin only. A platform
// token side stands alone so its ticker never absorbs the native coin.
func tickerVariants(reg *coins.Registry, p coins.Pair) []coins.Pair {
	side := func(c coins.Coin) []coins.Coin {
		if !c.IsNative() {
			return []coins.Coin{c}
		}
		return reg.VariantsOf(c, true)
	}
	out := make([]coins.Pair, 0, 4)
	for _, b := range side(p.Base) {
		if !tradable(reg, b) {
			continue
		}
		for _, q := range side(p.Quote) {
			if b == q || !tradable(reg, q) {
				continue
			}
			out = append(out, coins.Pair{Base: b, Quote: q})
		}
	}
	coins.SortPairs(out)
	if len(out) == 0 {
		return []coins.Pair{p}
	}
	return out
}

func (c *Calc) genericTickers(ctx context.Context, w ticker.Window) (any, error) {
	data, err := c.deriveWindow(ctx, w, groupSegwit, true)
	if err != nil {
		return nil, err
	}
	return ticker.NewTickerSet(w, c.now(), data), nil
}

// deriveWindow groups the swaps of w into pairs and derives one ticker per
// pair. Swaps are grouped up front because orientation matches on symbols
// only, so two platform tokens of a symbol would otherwise share swaps.
func (c *Calc) deriveWindow(ctx context.Context, w ticker.Window, mode grouping, withBooks bool) ([]ticker.TickerInfo, error) {
	now := c.now()
	swaps, err := c.deps.Swaps.Between(ctx, w.Since(now), now)
	if err != nil {
		return nil, err
	}
	ref := c.Reference(ctx)
	reg := c.Registry(ctx)

	groups := make(map[coins.Pair][]ticker.Swap)
	pairs := make([]coins.Pair, 0)
	for _, s := range swaps {
		p := s.Pair()
		if p.Base.Symbol == p.Quote.Symbol {
			continue
		}
		if mode == groupRoot {
			p = p.Deplatform()
		} else {
			p = stripSegwit(p)
		}
		p = coins.Canonical(p, ref)
		if _, ok := groups[p]; !ok {
			pairs = append(pairs, p)
		}
		groups[p] = append(groups[p], s)
	}
	coins.SortPairs(pairs)

	var traded ticker.LastTradedMap
	if withBooks {
		traded = c.lastTraded(ctx)
	}
	inputs := make([]ticker.Input, 0, len(pairs))
	for _, p := range pairs {
		var variants []coins.Pair
		if mode == groupRoot {
			variants = tradableVariants(reg, p, false)
		} else {
			variants = tickerVariants(reg, p)
		}
		in := ticker.Input{Pair: p, Variants: variants, Window: w, Swaps: groups[p], LastTraded: traded}
		if withBooks {
			in.Book = c.tickerBook(ctx, p, variants, ref)
		}
		inputs = append(inputs, in)
	}
	return c.deriver.DeriveAll(ctx, ref, inputs), nil
}

func (c *Calc) pairLastTraded(ctx context.Context) (any, error) {
	return c.deps.Swaps.LastTraded(ctx)
}

// lastTraded reads pair_last_traded and falls back to the database while the
// entry is cold.
func (c *Calc) lastTraded(ctx context.Context) ticker.LastTradedMap {
	if m, ok := cachekit.GetAs[ticker.LastTradedMap](ctx, c.manager, EntryPairLastTraded); ok {
		return m
	}
	m, err := c.deps.Swaps.LastTraded(ctx)
	if err != nil {
		logx.WithContext(ctx).Errorf("calc: last traded fallback err=%v", err)
		return ticker.LastTradedMap{}
	}
	return m
}

func (c *Calc) pairVolumes(ctx context.Context) (any, error) {
	data, err := c.deriveWindow(ctx, ticker.Day, groupRoot, false)
	if err != nil {
		return nil, err
	}
	return VolumesPayload[ticker.PairVolume]{
		LastUpdate: c.now().Unix(),
		Window:     ticker.Day.Suffix(),
		Volumes:    ticker.PairVolumes(data),
	}, nil
}

func (c *Calc) coinVolumes(ctx context.Context) (any, error) {
	data, err := c.deriveWindow(ctx, ticker.Day, groupSegwit, false)
	if err != nil {
		return nil, err
	}
	return VolumesPayload[ticker.CoinVolume]{
		LastUpdate: c.now().Unix(),
		Window:     ticker.Day.Suffix(),
		Volumes:    ticker.CoinVolumes(data),
	}, nil
}

// tickersSummary folds the daily tickers by root pair. It fails while the
// daily entry is cold so the summary never publishes an empty set over a
// good one.
func (c *Calc) tickersSummary(ctx context.Context) (any, error) {
	set, ok := cachekit.GetAs[ticker.TickerSet](ctx, c.manager, TickersEntry(ticker.Day))
	if !ok {
		return nil, fmt.Errorf("calc: %s needs %s: %w", EntryTickersSummary, TickersEntry(ticker.Day), coins.ErrSourceUnavailable)
	}
	return ticker.NewTickerSet(ticker.Day, c.now(), ticker.Summarize(set.Data)), nil
}

// Tickers returns the cached ticker set of w.
func (c *Calc) Tickers(ctx context.Context, w ticker.Window) (ticker.TickerSet, bool) {
	return cachekit.GetAs[ticker.TickerSet](ctx, c.manager, TickersEntry(w))
}

// Summary returns the cached root-pair summary.
func (c *Calc) Summary(ctx context.Context) (ticker.TickerSet, bool) {
	return cachekit.GetAs[ticker.TickerSet](ctx, c.manager, EntryTickersSummary)
}

// Window looks up a configured window by suffix.
func (c *Calc) Window(suffix string) (ticker.Window, error) {
	w, err := ticker.ParseSuffix(suffix)
	if err != nil {
		return ticker.Window{}, err
	}
	for _, known := range c.deps.Windows {
		if known.Days == w.Days {
			return known, nil
		}
	}
	return ticker.Window{}, fmt.Errorf("%w: %s", ticker.ErrUnknownWindow, suffix)
}
