package calc

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/mr"

	"swapstats-api/internal/cache"
	"swapstats-api/pkg/cachekit"
	"swapstats-api/pkg/coins"
	"swapstats-api/pkg/orderbook"
)

const defaultAggregateWorkers = 8

// OrderbookStore publishes aggregated books to the cache store. Variant books
// live twice as long as merged ones so a merge never finds a variant gone.
type OrderbookStore struct {
	store cachekit.Store
	ttl   cache.TTLSet
}

// NewOrderbookStore wraps store.
func NewOrderbookStore(store cachekit.Store, ttl cache.TTLSet) *OrderbookStore {
	return &OrderbookStore{store: store, ttl: ttl}
}

func (s *OrderbookStore) StoreVariant(ctx context.Context, pair string, book orderbook.Merged) error {
	return s.save(ctx, cache.OrderbookVariantKey(pair), book, cache.OrderbookVariantTTL(s.ttl))
}

func (s *OrderbookStore) StoreCombined(ctx context.Context, pair string, book orderbook.Merged) error {
	return s.save(ctx, cache.OrderbookKey(pair), book, cache.OrderbookTTL(s.ttl))
}

func (s *OrderbookStore) LoadCombined(ctx context.Context, pair string) (orderbook.Merged, bool) {
	return s.load(ctx, cache.OrderbookKey(pair))
}

func (s *OrderbookStore) LoadVariant(ctx context.Context, pair string) (orderbook.Merged, bool) {
	return s.load(ctx, cache.OrderbookVariantKey(pair))
}

func (s *OrderbookStore) save(ctx context.Context, key string, book orderbook.Merged, ttl time.Duration) error {
	data, err := json.Marshal(book)
	if err != nil {
		return err
	}
	stamp := book.Timestamp
	if stamp == 0 {
		stamp = time.Now().Unix()
	}
	return s.store.Save(ctx, key, cachekit.Entry{ComputedAt: stamp, Data: data}, ttl)
}

func (s *OrderbookStore) load(ctx context.Context, key string) (orderbook.Merged, bool) {
	e, ok, err := s.store.Load(ctx, key)
	if err != nil {
		logx.WithContext(ctx).Errorf("calc: load orderbook key=%s err=%v", key, err)
		return orderbook.Merged{}, false
	}
	if !ok {
		return orderbook.Merged{}, false
	}
	var m orderbook.Merged
	if err := e.Decode(&m); err != nil {
		logx.WithContext(ctx).Errorf("calc: decode orderbook key=%s err=%v", key, err)
		return orderbook.Merged{}, false
	}
	return m, true
}

// Orderbook serves the merged book of pair in canonical, deplatformed form.
// Cold pairs get the template at once while a warm job is queued. Pairs with
// a coin missing from a loaded registry are unavailable: they get the
// template and no job. depth <= 0 returns every level.
func (c *Calc) Orderbook(ctx context.Context, pair coins.Pair, depth int) orderbook.Merged {
	target := coins.Canonical(pair.Deplatform(), c.Reference(ctx))
	if reg := c.Registry(ctx); reg.Len() > 0 {
		if err := reg.ResolvePair(pair); err != nil {
			logx.WithContext(ctx).Infof("calc: orderbook unavailable pair=%s err=%v", pair, err)
			return orderbook.Template(target, nil)
		}
	}
	return orderbook.Truncate(c.warmer.Orderbook(ctx, target), depth)
}

func (c *Calc) planOrderbook(ctx context.Context, pair coins.Pair) (orderbook.Reference, []coins.Pair) {
	return c.Reference(ctx), tradableVariants(c.Registry(ctx), pair, false)
}

// pairOrderbookExtended aggregates every pair active in the longest window.
// Each pair is fetched in one round so its figures are a single snapshot.
func (c *Calc) pairOrderbookExtended(ctx context.Context) (any, error) {
	ref := c.Reference(ctx)
	reg := c.Registry(ctx)
	now := c.now()
	active, err := c.deps.Swaps.ActivePairs(ctx, c.longestWindow().Since(now))
	if err != nil {
		return nil, err
	}
	pairs := coins.UniqueCanonical(active, ref, true)

	workers := c.deps.Workers
	if workers <= 0 {
		workers = defaultAggregateWorkers
	}
	var mu sync.Mutex
	out := make(map[string]orderbook.Merged, len(pairs))
	mr.ForEach(func(source chan<- coins.Pair) {
		for _, p := range pairs {
			source <- p
		}
	}, func(p coins.Pair) {
		m := c.agg.Aggregate(ctx, ref, p, tradableVariants(reg, p, false))
		m = orderbook.Truncate(m, c.deps.Depth)
		mu.Lock()
		out[p.String()] = m
		mu.Unlock()
	}, mr.WithWorkers(workers))
	return out, nil
}

// tickerBook merges the cached variant books of a ticker pair that belong to
// the latest aggregation round. It returns nil when none is cached and queues
// the root pair for warming.
func (c *Calc) tickerBook(ctx context.Context, p coins.Pair, variants []coins.Pair, caps coins.MarketCaps) *orderbook.Merged {
	books := make([]orderbook.Merged, 0, len(variants))
	for _, v := range variants {
		name := v
		if coins.Opposes(v, p, caps) {
			name = v.Reverse()
		}
		if m, ok := c.books.LoadVariant(ctx, name.String()); ok {
			books = append(books, m)
		}
	}
	if len(books) == 0 {
		c.warmer.Enqueue(coins.Canonical(p.Deplatform(), caps))
		return nil
	}
	m := orderbook.Merge(p, orderbook.LatestRound(books)...)
	return &m
}
