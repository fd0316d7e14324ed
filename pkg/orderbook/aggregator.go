package orderbook

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/mr"

	"swapstats-api/pkg/coins"
)

const defaultFetchTimeout = 10 * time.Second

// Source fetches the raw book for one variant pair. Implementations return
// an error wrapping coins.ErrSourceUnavailable instead of panicking.
type Source interface {
	Orderbook(ctx context.Context, pair coins.Pair) (Book, error)
}

// Reference supplies USD prices and market caps keyed by symbol.
type Reference interface {
	coins.MarketCaps
	USDPrice(symbol string) decimal.Decimal
}

// Sink receives aggregation results.
type Sink interface {
	StoreVariant(ctx context.Context, pair string, book Merged) error
	StoreCombined(ctx context.Context, pair string, book Merged) error
}

// Aggregator merges per-variant books into one view of a pair.
type Aggregator struct {
	source  Source
	sink    Sink
	timeout time.Duration
	now     func() time.Time
}

// Option customises an Aggregator.
type Option func(*Aggregator)

// WithSink publishes variant and combined books after each aggregation.
func WithSink(sink Sink) Option {
	return func(a *Aggregator) {
		a.sink = sink
	}
}

// WithFetchTimeout bounds each variant fetch.
func WithFetchTimeout(d time.Duration) Option {
	return func(a *Aggregator) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) {
		if now != nil {
			a.now = now
		}
	}
}

// NewAggregator constructs an aggregator reading from source.
func NewAggregator(source Source, opts ...Option) *Aggregator {
	a := &Aggregator{
		source:  source,
		timeout: defaultFetchTimeout,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type fetched struct {
	pair     coins.Pair
	book     Book
	ok       bool
	reversed bool
}

// Aggregate fetches every variant concurrently, orients each book to pair,
// and merges them. All books in one call come from the same fetch round and
// carry its timestamp. A failed variant counts as empty; if everything is
// empty the template is returned.
//
// When at least one variant answered, every variant book is published,
// failed ones as empty books, so the cached variants always describe a
// single round. When nothing answered the previous round is left in place.
func (a *Aggregator) Aggregate(ctx context.Context, ref Reference, pair coins.Pair, variants []coins.Pair) Merged {
	if len(variants) == 0 {
		variants = []coins.Pair{pair}
	}
	round := a.now().Unix()
	results := make([]fetched, len(variants))
	fns := make([]func() error, 0, len(variants))
	for i, v := range variants {
		i, v := i, v
		fns = append(fns, func() error {
			results[i] = a.fetch(ctx, ref, pair, v)
			return nil
		})
	}
	_ = mr.Finish(fns...)

	names := make([]string, 0, len(variants))
	books := make([]Merged, 0, len(variants))
	published := make([]Merged, 0, len(variants))
	anyOK := false
	anyLevels := false
	basePrice, quotePrice := usdPrice(ref, pair.Base), usdPrice(ref, pair.Quote)
	for _, r := range results {
		oriented := r.pair
		if r.reversed {
			oriented = r.pair.Reverse()
		}
		names = append(names, oriented.String())
		m := Liquidity(r.book, basePrice, quotePrice)
		m.Pair = oriented.String()
		m.Timestamp = round
		published = append(published, m)
		if !r.ok {
			continue
		}
		anyOK = true
		if !r.book.IsEmpty() {
			anyLevels = true
		}
		books = append(books, m)
	}
	sort.Strings(names)
	if anyOK {
		for _, m := range published {
			a.storeVariant(ctx, m.Pair, m)
		}
	}

	if !anyLevels {
		tpl := Template(pair, names)
		tpl.BasePriceUSD, tpl.QuotePriceUSD = basePrice, quotePrice
		tpl.Timestamp = round
		if anyOK {
			a.storeCombined(ctx, pair.String(), tpl)
		}
		return tpl
	}

	merged := Merge(pair, books...)
	merged.Variants = names
	merged.Timestamp = round
	a.storeCombined(ctx, pair.String(), merged)
	return merged
}

func (a *Aggregator) fetch(ctx context.Context, ref Reference, target, variant coins.Pair) fetched {
	out := fetched{pair: variant, reversed: coins.Opposes(variant, target, ref)}

	fetchCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	book, err := a.source.Orderbook(fetchCtx, variant)
	if err != nil {
		logx.WithContext(ctx).Errorf("orderbook: fetch failed pair=%s variant=%s err=%v", target, variant, err)
		out.book = EmptyBook(variant)
		if out.reversed {
			out.book = Invert(out.book)
		}
		return out
	}
	if book.Pair == "" {
		book.Pair, book.Base, book.Quote = variant.String(), variant.Base.Ticker(), variant.Quote.Ticker()
	}
	if out.reversed {
		book = Invert(book)
	}
	out.book = book
	out.ok = true
	return out
}

func (a *Aggregator) storeVariant(ctx context.Context, pair string, m Merged) {
	if a.sink == nil {
		return
	}
	if err := a.sink.StoreVariant(ctx, pair, m); err != nil {
		logx.WithContext(ctx).Errorf("orderbook: store variant pair=%s err=%v", pair, err)
	}
}

func (a *Aggregator) storeCombined(ctx context.Context, pair string, m Merged) {
	if a.sink == nil {
		return
	}
	if err := a.sink.StoreCombined(ctx, pair, m); err != nil {
		logx.WithContext(ctx).Errorf("orderbook: store combined pair=%s err=%v", pair, err)
	}
}

func usdPrice(ref Reference, c coins.Coin) decimal.Decimal {
	if ref == nil {
		return decimal.Zero
	}
	return ref.USDPrice(c.Symbol)
}
