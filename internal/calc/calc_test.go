package calc

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swapstats-api/internal/cache"
	"swapstats-api/pkg/cachekit"
	"swapstats-api/pkg/coins"
	"swapstats-api/pkg/market"
	"swapstats-api/pkg/market/sources/static"
	"swapstats-api/pkg/orderbook"
	"swapstats-api/pkg/ticker"
)

const testCoinsConfig = `{
  "DGB": {"coin": "DGB", "type": "UTXO", "coingecko_id": "digibyte", "protocol": {"type": "UTXO"}},
  "DGB-segwit": {"coin": "DGB-segwit", "type": "UTXO", "coingecko_id": "digibyte", "protocol": {"type": "UTXO"}},
  "KMD": {"coin": "KMD", "type": "UTXO", "coingecko_id": "komodo", "protocol": {"type": "UTXO"}},
  "KMD-BEP20": {"coin": "KMD-BEP20", "type": "BEP-20", "coingecko_id": "komodo",
    "protocol": {"type": "ERC20", "protocol_data": {"platform": "BNB", "contract_address": "0x2003f7ba57ea956b05b85c60b4b2ceea9b111256"}}},
  "DOC": {"coin": "DOC", "type": "UTXO", "is_testnet": true, "protocol": {"type": "UTXO"}}
}`

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeSwaps struct {
	mu    sync.Mutex
	swaps []ticker.Swap
	last  ticker.LastTradedMap
	err   error
}

func (f *fakeSwaps) Between(_ context.Context, since, until time.Time) ([]ticker.Swap, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]ticker.Swap, 0, len(f.swaps))
	for _, s := range f.swaps {
		if s.FinishedAt.After(since) && !s.FinishedAt.After(until) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSwaps) ForVariants(ctx context.Context, _ []coins.Pair, since, until time.Time) ([]ticker.Swap, error) {
	return f.Between(ctx, since, until)
}

func (f *fakeSwaps) LastTraded(context.Context) (ticker.LastTradedMap, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.last == nil {
		return ticker.LastTradedMap{}, nil
	}
	return f.last, nil
}

func (f *fakeSwaps) ActivePairs(_ context.Context, since time.Time) ([]coins.Pair, error) {
	if f.err != nil {
		return nil, f.err
	}
	seen := map[coins.Pair]struct{}{}
	out := make([]coins.Pair, 0)
	for _, s := range f.swaps {
		if !s.FinishedAt.After(since) {
			continue
		}
		if _, ok := seen[s.Pair()]; ok {
			continue
		}
		seen[s.Pair()] = struct{}{}
		out = append(out, s.Pair())
	}
	return out, nil
}

func (f *fakeSwaps) Count(_ context.Context, since time.Time) (int64, error) {
	swaps, err := f.Between(context.Background(), since, testNow)
	return int64(len(swaps)), err
}

type fakeCoins struct{ raw string }

func (f fakeCoins) Fetch(context.Context) ([]byte, error) { return []byte(f.raw), nil }

type fakeBooks struct {
	mu    sync.Mutex
	books map[string]orderbook.Book
	fail  map[string]bool
	calls []string
}

func (f *fakeBooks) Orderbook(_ context.Context, pair coins.Pair) (orderbook.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, pair.String())
	if f.fail[pair.String()] {
		return orderbook.Book{}, coins.ErrSourceUnavailable
	}
	if b, ok := f.books[pair.String()]; ok {
		return b, nil
	}
	return orderbook.EmptyBook(pair), nil
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func swap(maker, taker, makerAmt, takerAmt string, ago time.Duration) ticker.Swap {
	return ticker.Swap{
		UUID:        uuid.New(),
		MakerCoin:   maker,
		TakerCoin:   taker,
		MakerAmount: dec(makerAmt),
		TakerAmount: dec(takerAmt),
		IsSuccess:   true,
		StartedAt:   testNow.Add(-ago - time.Minute),
		FinishedAt:  testNow.Add(-ago),
	}
}

func newTestCalc(t *testing.T, swaps *fakeSwaps, books *fakeBooks) *Calc {
	t.Helper()
	store, err := cachekit.NewMemoryStore("calc-"+t.Name(), time.Hour)
	require.NoError(t, err)
	prices := static.New(map[string]market.Quote{
		"DGB": {USDPrice: dec("0.01"), USDMarketCap: dec("100000000")},
		"KMD": {USDPrice: dec("0.3"), USDMarketCap: dec("500000000")},
	})
	if books == nil {
		books = &fakeBooks{}
	}
	c := New(Deps{
		Store:      store,
		TTL:        cache.TTLSet{Short: 10 * time.Second, Medium: time.Minute, Long: 5 * time.Minute},
		Swaps:      swaps,
		Prices:     prices,
		Coins:      fakeCoins{raw: testCoinsConfig},
		Orderbooks: books,
		Windows:    []ticker.Window{{Days: 14}, {Days: 1}},
		Policy:     ticker.PolicyHalved,
		Workers:    2,
		Now:        func() time.Time { return testNow },
	})
	require.NoError(t, c.Register())
	return c
}

func TestEntriesCatalogue(t *testing.T) {
	c := newTestCalc(t, &fakeSwaps{}, nil)
	names := make([]string, 0)
	for _, e := range c.Entries() {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{
		EntryCoinsConfig,
		EntryGeckoSource,
		EntryPairLastTraded,
		EntryPairOrderbookExtended,
		EntryPairVolumes24hr,
		EntryCoinVolumes24hr,
		"generic_tickers",
		"generic_tickers_14d",
		EntryTickersSummary,
	}, names)
	assert.Equal(t, []ticker.Window{{Days: 1}, {Days: 14}}, c.Windows())

	cfg, ok := c.Manager().Lookup(EntryCoinsConfig)
	require.True(t, ok)
	assert.Equal(t, 1440, cfg.ExpiryMinutes)
	assert.Equal(t, cachekit.ClassUpstream, cfg.Class)
}

func TestIntervalOverride(t *testing.T) {
	store := cachekit.MustNewMemoryStore("calc-interval", time.Hour)
	c := New(Deps{
		Store: store,
		Interval: func(name string, fallback time.Duration) time.Duration {
			if name == EntryGeckoSource {
				return 10 * time.Minute
			}
			return fallback
		},
	})
	for _, e := range c.Entries() {
		switch e.Name {
		case EntryGeckoSource:
			assert.Equal(t, 10*time.Minute, e.Interval)
		case EntryCoinsConfig:
			assert.Equal(t, 24*time.Hour, e.Interval)
		}
	}
}

func TestEndToEndTickersAndSummary(t *testing.T) {
	swaps := &fakeSwaps{swaps: []ticker.Swap{
		swap("DGB-segwit", "KMD-BEP20", "1000", "1", 3*time.Hour),
		swap("DGB-segwit", "KMD-BEP20", "500", "0.9", time.Hour),
		swap("DGB", "KMD", "10", "0.02", 72*time.Hour),
	}}
	c := newTestCalc(t, swaps, nil)
	ctx := context.Background()
	c.RefreshAll(ctx)

	assert.Equal(t, 5, c.Registry(ctx).Len())
	assert.True(t, c.Reference(ctx).Priced("KMD"))

	set, ok := c.Tickers(ctx, ticker.Day)
	require.True(t, ok)
	require.Len(t, set.Data, 1)
	daily := set.Data[0]
	assert.Equal(t, "DGB_KMD-BEP20", daily.TickerID)
	assert.Equal(t, []string{"DGB-segwit_KMD-BEP20", "DGB_KMD-BEP20"}, daily.Variants)
	assert.Equal(t, 2, daily.TradesCount)

	summary, ok := c.Summary(ctx)
	require.True(t, ok)
	require.Len(t, summary.Data, 1)
	got := summary.Data[0]
	assert.Equal(t, "DGB_KMD", got.TickerID)
	assert.Equal(t, 2, got.TradesCount)
	assert.True(t, dec("1500").Equal(got.BaseVolume), got.BaseVolume.String())
	assert.True(t, dec("1.9").Equal(got.QuoteVolume), got.QuoteVolume.String())
	assert.True(t, dec("0.0018").Equal(got.HighestPrice), got.HighestPrice.String())
	assert.True(t, dec("0.001").Equal(got.LowestPrice), got.LowestPrice.String())
	assert.True(t, dec("0.0018").Equal(got.LastPrice))

	fortnight, ok := c.Tickers(ctx, ticker.Window{Days: 14})
	require.True(t, ok)
	assert.Equal(t, 3, fortnight.SwapsCount)
	assert.Equal(t, 2, fortnight.PairsCount)
}

func TestVolumeEntries(t *testing.T) {
	swaps := &fakeSwaps{swaps: []ticker.Swap{
		swap("KMD-BEP20", "DGB-segwit", "1", "1000", time.Hour),
		swap("KMD", "DGB", "2", "1000", 2*time.Hour),
	}}
	c := newTestCalc(t, swaps, nil)
	ctx := context.Background()
	c.RefreshAll(ctx)

	pairs, ok := cachekit.GetAs[VolumesPayload[ticker.PairVolume]](ctx, c.Manager(), EntryPairVolumes24hr)
	require.True(t, ok)
	require.Contains(t, pairs.Volumes, "DGB_KMD")
	root := pairs.Volumes["DGB_KMD"]
	assert.Equal(t, 2, root.TradesCount)
	assert.True(t, dec("2000").Equal(root.BaseVolume))
	assert.True(t, dec("3").Equal(root.QuoteVolume))
	// (2000 * 0.01 + 3 * 0.3) / 2
	assert.True(t, dec("10.45").Equal(root.CombinedVolumeUSD), root.CombinedVolumeUSD.String())

	byCoin, ok := cachekit.GetAs[VolumesPayload[ticker.CoinVolume]](ctx, c.Manager(), EntryCoinVolumes24hr)
	require.True(t, ok)
	assert.True(t, dec("2").Equal(byCoin.Volumes["KMD"].Volume))
	assert.True(t, dec("1").Equal(byCoin.Volumes["KMD-BEP20"].Volume))
	assert.True(t, dec("2000").Equal(byCoin.Volumes["DGB"].Volume))
	assert.Equal(t, "24hr", byCoin.Window)
}

func TestOrderbookServedCanonical(t *testing.T) {
	swaps := &fakeSwaps{swaps: []ticker.Swap{swap("KMD", "DGB", "1", "500", time.Hour)}}
	books := &fakeBooks{books: map[string]orderbook.Book{
		"DGB_KMD": {
			Pair: "DGB_KMD", Base: "DGB", Quote: "KMD",
			Asks: []orderbook.Entry{{Price: dec("0.002"), BaseVolume: dec("100"), QuoteVolume: dec("0.2")}},
			Bids: []orderbook.Entry{{Price: dec("0.0015"), BaseVolume: dec("200"), QuoteVolume: dec("0.3")}},
		},
	}}
	c := newTestCalc(t, swaps, books)
	ctx := context.Background()
	c.RefreshAll(ctx)

	extended, ok := cachekit.GetAs[map[string]orderbook.Merged](ctx, c.Manager(), EntryPairOrderbookExtended)
	require.True(t, ok)
	require.Contains(t, extended, "DGB_KMD")
	assert.Len(t, extended["DGB_KMD"].Variants, 4)

	got := c.Orderbook(ctx, coins.NewPair("KMD-BEP20", "DGB"), 0)
	assert.Equal(t, "DGB_KMD", got.Pair)
	require.Len(t, got.Asks, 1)
	assert.True(t, dec("0.002").Equal(got.LowestAsk))
	assert.True(t, dec("0.0015").Equal(got.HighestBid))
	// 100 DGB * 0.01 + 0.3 KMD * 0.3
	assert.True(t, dec("1.09").Equal(got.LiquidityUSD), got.LiquidityUSD.String())

	set, ok := c.Tickers(ctx, ticker.Day)
	require.True(t, ok)
	require.Len(t, set.Data, 1)
	assert.True(t, dec("1.09").Equal(set.Data[0].LiquidityUSD))
	assert.True(t, dec("0.0015").Equal(set.Data[0].HighestBid))
}

func TestTickerBookIgnoresEarlierRounds(t *testing.T) {
	swaps := &fakeSwaps{swaps: []ticker.Swap{swap("DGB", "KMD", "1000", "1", time.Hour)}}
	ask := []orderbook.Entry{{Price: dec("0.001"), BaseVolume: dec("100"), QuoteVolume: dec("0.1")}}
	books := &fakeBooks{books: map[string]orderbook.Book{
		"DGB_KMD":        {Pair: "DGB_KMD", Base: "DGB", Quote: "KMD", Asks: ask},
		"DGB-segwit_KMD": {Pair: "DGB-segwit_KMD", Base: "DGB-segwit", Quote: "KMD", Asks: ask},
	}}
	c := newTestCalc(t, swaps, books)
	ctx := context.Background()
	c.RefreshAll(ctx)

	pair := coins.NewPair("DGB", "KMD")
	variants := tickerVariants(c.Registry(ctx), pair)
	first := c.tickerBook(ctx, pair, variants, c.Reference(ctx))
	require.NotNil(t, first)
	assert.Equal(t, "200", first.TotalAsksBaseVol.String())

	books.mu.Lock()
	books.fail = map[string]bool{"DGB-segwit_KMD": true}
	books.mu.Unlock()
	require.NoError(t, c.Manager().Refresh(ctx, EntryPairOrderbookExtended))

	combined, ok := c.books.LoadCombined(ctx, "DGB_KMD")
	require.True(t, ok)
	assert.Equal(t, "100", combined.TotalAsksBaseVol.String())

	second := c.tickerBook(ctx, pair, variants, c.Reference(ctx))
	require.NotNil(t, second)
	assert.Equal(t, "100", second.TotalAsksBaseVol.String())
}

func TestOrderbookColdPairReturnsTemplate(t *testing.T) {
	c := newTestCalc(t, &fakeSwaps{}, nil)
	got := c.Orderbook(context.Background(), coins.NewPair("KMD", "DGB"), 10)
	assert.Empty(t, got.Asks)
	assert.Empty(t, got.Bids)
	assert.Equal(t, 1, c.warmer.Pending())
}

func TestOrderbookUnknownCoinIsNotWarmed(t *testing.T) {
	c := newTestCalc(t, &fakeSwaps{}, nil)
	ctx := context.Background()
	c.RefreshAll(ctx)
	require.Equal(t, 0, c.warmer.Pending())

	got := c.Orderbook(ctx, coins.NewPair("XYZ", "KMD"), 0)
	assert.Empty(t, got.Asks)
	assert.Equal(t, 0, c.warmer.Pending())
	assert.ErrorIs(t, c.Registry(ctx).ResolvePair(coins.NewPair("XYZ", "KMD")), coins.ErrUnknownCoin)

	c.Orderbook(ctx, coins.NewPair("KMD-BEP20", "DGB"), 0)
	assert.Equal(t, 1, c.warmer.Pending())
}

func TestSummaryNeedsDailyTickers(t *testing.T) {
	c := newTestCalc(t, &fakeSwaps{}, nil)
	err := c.Manager().Refresh(context.Background(), EntryTickersSummary)
	assert.ErrorIs(t, err, coins.ErrSourceUnavailable)
	assert.Equal(t, cachekit.StateUninitialized, c.Manager().State(context.Background(), EntryTickersSummary))
}

func TestGeckoNeedsCoins(t *testing.T) {
	c := newTestCalc(t, &fakeSwaps{}, nil)
	err := c.Manager().Refresh(context.Background(), EntryGeckoSource)
	assert.ErrorIs(t, err, coins.ErrSourceUnavailable)
}

func TestFailingStorageKeepsPreviousTickers(t *testing.T) {
	swaps := &fakeSwaps{swaps: []ticker.Swap{swap("DGB", "KMD", "1000", "1", time.Hour)}}
	c := newTestCalc(t, swaps, nil)
	ctx := context.Background()
	c.RefreshAll(ctx)

	swaps.mu.Lock()
	swaps.err = errors.New("connection refused")
	swaps.mu.Unlock()
	assert.Error(t, c.Manager().Refresh(ctx, TickersEntry(ticker.Day)))

	set, ok := c.Tickers(ctx, ticker.Day)
	require.True(t, ok)
	assert.Equal(t, 1, set.SwapsCount)
}

func TestLastTradedFallsBackToRepo(t *testing.T) {
	swaps := &fakeSwaps{last: ticker.LastTradedMap{
		"KMD_DGB": {Pair: "KMD_DGB", UUID: "abc", Timestamp: testNow.Add(-time.Hour).Unix(), Price: dec("500")},
	}}
	c := newTestCalc(t, swaps, nil)
	got := c.lastTraded(context.Background())
	assert.Equal(t, "abc", got["KMD_DGB"].UUID)
}

func TestTickerVariants(t *testing.T) {
	reg, err := coins.ParseRegistry([]byte(testCoinsConfig))
	require.NoError(t, err)

	assert.Equal(t, []coins.Pair{
		coins.NewPair("DGB-segwit", "KMD"),
		coins.NewPair("DGB", "KMD"),
	}, tickerVariants(reg, coins.NewPair("DGB", "KMD")))
	assert.Equal(t, []coins.Pair{
		coins.NewPair("DGB-segwit", "KMD-BEP20"),
		coins.NewPair("DGB", "KMD-BEP20"),
	}, tickerVariants(reg, coins.NewPair("DGB", "KMD-BEP20")))
	assert.Equal(t, []coins.Pair{coins.NewPair("DOC", "KMD")}, tickerVariants(reg, coins.NewPair("DOC", "KMD")))

	assert.Equal(t, coins.NewPair("DGB", "KMD-BEP20"), stripSegwit(coins.NewPair("DGB-segwit", "KMD-BEP20")))
}

func TestWindowLookup(t *testing.T) {
	c := newTestCalc(t, &fakeSwaps{}, nil)
	w, err := c.Window("14d")
	require.NoError(t, err)
	assert.Equal(t, 14, w.Days)
	_, err = c.Window("7d")
	assert.ErrorIs(t, err, ticker.ErrUnknownWindow)
	_, err = c.Window("weekly")
	assert.ErrorIs(t, err, ticker.ErrUnknownWindow)
}

func TestOrderbookStoreRoundTrip(t *testing.T) {
	store := NewOrderbookStore(cachekit.MustNewMemoryStore("calc-books", time.Hour), cache.TTLSet{Long: time.Minute})
	ctx := context.Background()
	_, ok := store.LoadCombined(ctx, "DGB_KMD")
	assert.False(t, ok)

	m := orderbook.Template(coins.NewPair("DGB", "KMD"), []string{"DGB_KMD"})
	m.Timestamp = testNow.Unix()
	require.NoError(t, store.StoreVariant(ctx, "DGB-segwit_KMD", m))
	_, ok = store.LoadCombined(ctx, "DGB-segwit_KMD")
	assert.False(t, ok)
	got, ok := store.LoadVariant(ctx, "DGB-segwit_KMD")
	require.True(t, ok)
	assert.Equal(t, "DGB_KMD", got.Pair)
}
