// Package calc binds the market statistics engine to the named cache entries
// served by the API. Each entry has one producer here; producers read swaps,
// reference data and orderbooks and never write anything but their result.
package calc

import (
	"context"
	"sort"
	"sync"
	"time"

	"swapstats-api/internal/cache"
	"swapstats-api/internal/repo"
	"swapstats-api/pkg/cachekit"
	"swapstats-api/pkg/coins"
	"swapstats-api/pkg/market"
	"swapstats-api/pkg/market/fixer"
	"swapstats-api/pkg/orderbook"
	"swapstats-api/pkg/ticker"
)

// CoinsSource returns the raw coins_config document.
type CoinsSource interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// RatesSource returns fiat exchange rates.
type RatesSource interface {
	Latest(ctx context.Context) (*fixer.Rates, error)
}

// Deps lists everything the producers read from.
type Deps struct {
	Store      cachekit.Store
	TTL        cache.TTLSet
	Swaps      repo.SwapsRepo
	Prices     market.Provider
	Coins      CoinsSource
	Orderbooks orderbook.Source
	// Rates is optional; without it fixer_rates is not registered.
	Rates      RatesSource

	Windows   []ticker.Window
	Policy    ticker.VolumePolicy
	Depth     int
	Workers   int
	QueueSize int
	// Retention bounds how long entries survive in the store.
	Retention time.Duration
	// Interval returns the refresh cadence for an entry. Nil keeps defaults.
	Interval  func(name string, fallback time.Duration) time.Duration
	Now       func() time.Time
}

func (d Deps) interval(name string, fallback time.Duration) time.Duration {
	if d.Interval == nil {
		return fallback
	}
	return d.Interval(name, fallback)
}

// Calc owns the cache manager, the orderbook pipeline and the ticker deriver.
type Calc struct {
	deps    Deps
	now     func() time.Time
	manager *cachekit.Manager
	books   *OrderbookStore
	agg     *orderbook.Aggregator
	warmer  *orderbook.Warmer
	deriver *ticker.Deriver

	memoMu sync.Mutex
	regAt  int64
	reg    *coins.Registry
	refAt  int64
	ref    *market.Reference
}

// New wires a Calc. Call Register before refreshing entries and Start to run
// the orderbook warm queue.
func New(deps Deps) *Calc {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if len(deps.Windows) == 0 {
		deps.Windows = []ticker.Window{{Days: 1}, {Days: 14}}
	}
	sort.Slice(deps.Windows, func(i, j int) bool { return deps.Windows[i].Days < deps.Windows[j].Days })

	c := &Calc{deps: deps, now: deps.Now}
	c.manager = cachekit.NewManager(deps.Store, cachekit.WithKeyFunc(cache.EntryKey), cachekit.WithNow(deps.Now))
	c.books = NewOrderbookStore(deps.Store, deps.TTL)
	c.agg = orderbook.NewAggregator(deps.Orderbooks,
		orderbook.WithSink(c.books),
		orderbook.WithClock(deps.Now),
		orderbook.WithFetchTimeout(cache.FetchTimeout(deps.TTL)),
	)
	c.warmer = orderbook.NewWarmer(c.agg, c.books, c.planOrderbook,
		orderbook.WithWorkers(deps.Workers),
		orderbook.WithQueueSize(deps.QueueSize),
		orderbook.WithJobTimeout(cache.WarmTimeout(deps.TTL)),
	)
	c.deriver = ticker.NewDeriver(ticker.WithVolumePolicy(deps.Policy), ticker.WithNow(deps.Now))
	return c
}

// Register adds the whole catalogue to the manager.
func (c *Calc) Register() error {
	for _, e := range c.Entries() {
		if err := c.manager.Register(e); err != nil {
			return err
		}
	}
	return nil
}

// Manager exposes the cache manager for reads and scheduling.
func (c *Calc) Manager() *cachekit.Manager { return c.manager }

// Now returns the clock used by producers.
func (c *Calc) Now() time.Time { return c.now() }

// Windows returns the configured ticker windows, shortest first.
func (c *Calc) Windows() []ticker.Window { return c.deps.Windows }

// Start runs the orderbook warm workers.
func (c *Calc) Start() { c.warmer.Start() }

// Stop drains the orderbook warm workers.
func (c *Calc) Stop() { c.warmer.Stop() }

// RefreshAll refreshes every entry once, in catalogue order. Failures are
// logged by the manager and do not stop later entries.
func (c *Calc) RefreshAll(ctx context.Context) {
	for _, e := range c.Entries() {
		_ = c.manager.Refresh(ctx, e.Name)
	}
}

// Registry returns the coin registry from the last coins_config refresh. An
// empty registry is returned before the first refresh.
func (c *Calc) Registry(ctx context.Context) *coins.Registry {
	e, ok := c.manager.Get(ctx, EntryCoinsConfig)
	c.memoMu.Lock()
	defer c.memoMu.Unlock()
	if !ok {
		return c.reg
	}
	if c.reg != nil && c.regAt == e.ComputedAt {
		return c.reg
	}
	var configs map[string]coins.CoinConfig
	if err := e.Decode(&configs); err != nil {
		return c.reg
	}
	c.reg, c.regAt = coins.NewRegistry(configs), e.ComputedAt
	return c.reg
}

// Reference returns prices and market caps from the last gecko_source
// refresh. Every coin is unpriced before the first refresh.
func (c *Calc) Reference(ctx context.Context) *market.Reference {
	e, ok := c.manager.Get(ctx, EntryGeckoSource)
	c.memoMu.Lock()
	defer c.memoMu.Unlock()
	if c.ref == nil {
		c.ref = market.NewReference(nil)
	}
	if !ok || c.refAt == e.ComputedAt {
		return c.ref
	}
	var quotes map[string]market.Quote
	if err := e.Decode(&quotes); err != nil {
		return c.ref
	}
	c.ref, c.refAt = market.NewReference(quotes), e.ComputedAt
	return c.ref
}

func (c *Calc) longestWindow() ticker.Window {
	return c.deps.Windows[len(c.deps.Windows)-1]
}

// tradableVariants drops variants involving wallet-only or testnet coins.
// Coins missing from the registry stay, as unpriced singletons.
func tradableVariants(reg *coins.Registry, p coins.Pair, segwitOnly bool) []coins.Pair {
	all := reg.PairVariants(p, segwitOnly)
	out := make([]coins.Pair, 0, len(all))
	for _, v := range all {
		if !tradable(reg, v.Base) || !tradable(reg, v.Quote) {
			continue
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return []coins.Pair{p}
	}
	return out
}

func tradable(reg *coins.Registry, c coins.Coin) bool {
	cfg, ok := reg.Lookup(c.Ticker())
	return !ok || (!cfg.WalletOnly && !cfg.IsTestnet)
}
