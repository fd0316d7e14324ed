package orderbook

import (
	"context"
	"sync"
	"time"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/threading"

	"swapstats-api/pkg/coins"
)

const (
	defaultWarmWorkers   = 4
	defaultWarmQueueSize = 64
	defaultWarmTimeout   = 30 * time.Second
)

// Cache reads previously published combined books.
type Cache interface {
	LoadCombined(ctx context.Context, pair string) (Merged, bool)
}

// Planner resolves the reference data and variant set for a pair at the
// time a job runs.
type Planner func(ctx context.Context, pair coins.Pair) (Reference, []coins.Pair)

// Warmer serves cached books immediately and refreshes cold or requested
// pairs on a bounded worker queue. It never blocks callers on a fetch.
type Warmer struct {
	agg     *Aggregator
	cache   Cache
	plan    Planner
	workers int
	timeout time.Duration

	queue chan coins.Pair
	done  chan struct{}

	mu       sync.Mutex
	inflight map[string]struct{}
	started  bool
	group    *threading.RoutineGroup
	stopOnce sync.Once
}

// WarmerOption customises a Warmer.
type WarmerOption func(*Warmer)

// WithWorkers sets the number of background workers.
func WithWorkers(n int) WarmerOption {
	return func(w *Warmer) {
		if n > 0 {
			w.workers = n
		}
	}
}

// WithQueueSize bounds the number of pending jobs. Jobs beyond it are dropped.
func WithQueueSize(n int) WarmerOption {
	return func(w *Warmer) {
		if n > 0 {
			w.queue = make(chan coins.Pair, n)
		}
	}
}

// WithJobTimeout bounds a single aggregation job.
func WithJobTimeout(d time.Duration) WarmerOption {
	return func(w *Warmer) {
		if d > 0 {
			w.timeout = d
		}
	}
}

// NewWarmer wires a warmer. The aggregator should carry a Sink so that
// finished jobs become visible through cache.
func NewWarmer(agg *Aggregator, cache Cache, plan Planner, opts ...WarmerOption) *Warmer {
	w := &Warmer{
		agg:      agg,
		cache:    cache,
		plan:     plan,
		workers:  defaultWarmWorkers,
		timeout:  defaultWarmTimeout,
		queue:    make(chan coins.Pair, defaultWarmQueueSize),
		done:     make(chan struct{}),
		inflight: make(map[string]struct{}),
		group:    threading.NewRoutineGroup(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start launches the workers. Calling it more than once has no effect.
func (w *Warmer) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return
	}
	w.started = true
	for i := 0; i < w.workers; i++ {
		w.group.RunSafe(w.work)
	}
}

// Stop signals the workers and waits for running jobs to finish.
func (w *Warmer) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.group.Wait()
	})
}

// Orderbook returns the cached book for pair. On a miss it returns the
// template and schedules an aggregation in the background; hits never
// schedule work.
func (w *Warmer) Orderbook(ctx context.Context, pair coins.Pair) Merged {
	if w.cache != nil {
		if m, ok := w.cache.LoadCombined(ctx, pair.String()); ok {
			return m
		}
	}
	w.Enqueue(pair)
	return Template(pair, nil)
}

// Enqueue schedules a refresh unless one is pending for the same pair or the
// queue is full.
func (w *Warmer) Enqueue(pair coins.Pair) bool {
	key := pair.String()
	w.mu.Lock()
	if _, ok := w.inflight[key]; ok {
		w.mu.Unlock()
		return false
	}
	w.inflight[key] = struct{}{}
	w.mu.Unlock()

	select {
	case <-w.done:
	case w.queue <- pair:
		return true
	default:
		logx.Infof("orderbook: warm queue full, dropping pair=%s", key)
	}
	w.release(key)
	return false
}

// Pending returns the number of queued or running jobs.
func (w *Warmer) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.inflight)
}

func (w *Warmer) work() {
	for {
		select {
		case <-w.done:
			return
		case pair := <-w.queue:
			w.run(pair)
		}
	}
}

func (w *Warmer) run(pair coins.Pair) {
	defer w.release(pair.String())

	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	var (
		ref      Reference
		variants []coins.Pair
	)
	if w.plan != nil {
		ref, variants = w.plan(ctx, pair)
	}
	w.agg.Aggregate(ctx, ref, pair, variants)
}

func (w *Warmer) release(key string) {
	w.mu.Lock()
	delete(w.inflight, key)
	w.mu.Unlock()
}
