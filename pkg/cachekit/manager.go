package cachekit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/syncx"
)

// Class describes where an entry's payload comes from.
type Class string

const (
	// ClassUpstream stores an external source as-is.
	ClassUpstream Class = "upstream"
	// ClassComputed is derived locally from storage and upstream entries.
	ClassComputed Class = "computed"
	// ClassComposite is built from other cache entries only.
	ClassComposite Class = "composite"
)

// State is the observable lifecycle of an entry.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateFresh         State = "fresh"
	StateStale         State = "stale"
)

const defaultExpiryMinutes = 5

// Producer computes an entry payload. The result is JSON-encoded unless it
// already is json.RawMessage or []byte.
type Producer func(ctx context.Context) (any, error)

// EntryConfig declares one named entry.
type EntryConfig struct {
	Name  string
	Class Class
	// ExpiryMinutes is the freshness class. It drives State and alerting
	// only; Get serves entries of any age.
	ExpiryMinutes int
	AllowEmpty    bool
	// Interval is the refresh cadence requested from the scheduler.
	Interval time.Duration
	// Retention is the store TTL; zero keeps the store default.
	Retention time.Duration
	Producer  Producer
}

// EntryHealth reports the state of one entry.
type EntryHealth struct {
	Name            string  `json:"name"`
	Class           Class   `json:"class"`
	State           State   `json:"state"`
	ExpiryMinutes   int     `json:"cache_expiry"`
	SinceUpdatedMin float64 `json:"since_updated_min"`
	ComputedAt      int64   `json:"computed_at"`
	Healthy         bool    `json:"healthy"`
}

// Manager serves named entries from a Store and refreshes them through
// their producers.
type Manager struct {
	store   Store
	keyOf   func(name string) string
	now     func() time.Time
	flight  syncx.SingleFlight
	mu      sync.RWMutex
	entries map[string]EntryConfig
}

// ManagerOption customises a Manager.
type ManagerOption func(*Manager)

// WithKeyFunc maps entry names to store keys.
func WithKeyFunc(fn func(name string) string) ManagerOption {
	return func(m *Manager) {
		if fn != nil {
			m.keyOf = fn
		}
	}
}

// WithNow overrides the clock.
func WithNow(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewManager creates a manager over store.
func NewManager(store Store, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:   store,
		keyOf:   func(name string) string { return name },
		now:     time.Now,
		flight:  syncx.NewSingleFlight(),
		entries: make(map[string]EntryConfig),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Register adds or replaces an entry definition.
func (m *Manager) Register(cfg EntryConfig) error {
	cfg.Name = strings.TrimSpace(cfg.Name)
	if cfg.Name == "" {
		return errors.New("cachekit: entry name is required")
	}
	if cfg.Producer == nil {
		return fmt.Errorf("cachekit: entry %s has no producer", cfg.Name)
	}
	switch cfg.Class {
	case ClassUpstream, ClassComputed, ClassComposite:
	case "":
		cfg.Class = ClassComputed
	default:
		return fmt.Errorf("cachekit: entry %s has unknown class %q", cfg.Name, cfg.Class)
	}
	if cfg.ExpiryMinutes <= 0 {
		cfg.ExpiryMinutes = defaultExpiryMinutes
	}
	m.mu.Lock()
	m.entries[cfg.Name] = cfg
	m.mu.Unlock()
	return nil
}

// MustRegister is Register that panics on error.
func (m *Manager) MustRegister(cfgs ...EntryConfig) {
	for _, cfg := range cfgs {
		if err := m.Register(cfg); err != nil {
			panic(err)
		}
	}
}

// Lookup returns the definition of name.
func (m *Manager) Lookup(name string) (EntryConfig, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cfg, ok := m.entries[name]
	return cfg, ok
}

// Entries returns every definition sorted by name.
func (m *Manager) Entries() []EntryConfig {
	m.mu.RLock()
	out := make([]EntryConfig, 0, len(m.entries))
	for _, cfg := range m.entries {
		out = append(out, cfg)
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Get returns the stored entry. It only reads; an absent entry is reported
// as absent and never triggers a refresh.
func (m *Manager) Get(ctx context.Context, name string) (Entry, bool) {
	e, ok, err := m.store.Load(ctx, m.keyOf(name))
	if err != nil {
		logx.WithContext(ctx).Errorf("cachekit: get entry=%s err=%v", name, err)
		return Entry{}, false
	}
	return e, ok
}

// GetAs decodes the payload of name into T.
func GetAs[T any](ctx context.Context, m *Manager, name string) (T, bool) {
	var out T
	e, ok := m.Get(ctx, name)
	if !ok {
		return out, false
	}
	if err := e.Decode(&out); err != nil {
		logx.WithContext(ctx).Errorf("cachekit: decode entry=%s err=%v", name, err)
		var zero T
		return zero, false
	}
	return out, true
}

// Refresh runs the producer for name, validates the payload and replaces the
// stored entry. On any failure the previous entry stays in place. Concurrent
// refreshes of the same name share one producer call.
func (m *Manager) Refresh(ctx context.Context, name string) error {
	cfg, ok := m.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownEntry, name)
	}
	_, err := m.flight.Do(name, func() (any, error) {
		return nil, m.refresh(ctx, cfg)
	})
	return err
}

func (m *Manager) refresh(ctx context.Context, cfg EntryConfig) error {
	start := time.Now()
	defer func() {
		refreshDuration.Observe(time.Since(start).Milliseconds(), cfg.Name)
	}()

	data, err := m.produce(ctx, cfg)
	if err == nil {
		err = Validate(data, cfg.AllowEmpty)
	}
	if err != nil {
		refreshTotal.Inc(cfg.Name, "failure")
		logx.WithContext(ctx).Errorf("cachekit: refresh entry=%s class=%s err=%v", cfg.Name, cfg.Class, err)
		return err
	}

	entry := Entry{ComputedAt: m.now().Unix(), Data: data}
	if err := m.store.Save(ctx, m.keyOf(cfg.Name), entry, cfg.Retention); err != nil {
		refreshTotal.Inc(cfg.Name, "failure")
		logx.WithContext(ctx).Errorf("cachekit: save entry=%s err=%v", cfg.Name, err)
		return err
	}
	refreshTotal.Inc(cfg.Name, "success")
	entryAge.Set(0, cfg.Name)
	return nil
}

func (m *Manager) produce(ctx context.Context, cfg EntryConfig) (data json.RawMessage, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("cachekit: producer %s panic: %v", cfg.Name, p)
		}
	}()
	payload, err := cfg.Producer(ctx)
	if err != nil {
		return nil, err
	}
	switch v := payload.(type) {
	case json.RawMessage:
		return v, nil
	case []byte:
		return json.RawMessage(v), nil
	case nil:
		return nil, fmt.Errorf("%w: null", ErrInvalidPayload)
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("cachekit: encode %s: %w", cfg.Name, err)
	}
	return raw, nil
}

// SinceUpdatedMin returns minutes elapsed since name was computed.
func (m *Manager) SinceUpdatedMin(ctx context.Context, name string) (float64, bool) {
	e, ok := m.Get(ctx, name)
	if !ok {
		return 0, false
	}
	return m.sinceMinutes(e.ComputedAt), true
}

func (m *Manager) sinceMinutes(computedAt int64) float64 {
	secs := float64(m.now().Unix() - computedAt)
	return math.Round(secs/60*100) / 100
}

// State classifies name against its freshness class.
func (m *Manager) State(ctx context.Context, name string) State {
	cfg, ok := m.Lookup(name)
	if !ok {
		return StateUninitialized
	}
	e, ok := m.Get(ctx, name)
	if !ok {
		return StateUninitialized
	}
	return m.classify(cfg, e)
}

func (m *Manager) classify(cfg EntryConfig, e Entry) State {
	if m.sinceMinutes(e.ComputedAt) > float64(cfg.ExpiryMinutes) {
		return StateStale
	}
	return StateFresh
}

// Health reports every registered entry.
func (m *Manager) Health(ctx context.Context) []EntryHealth {
	entries := m.Entries()
	out := make([]EntryHealth, 0, len(entries))
	for _, cfg := range entries {
		h := EntryHealth{Name: cfg.Name, Class: cfg.Class, ExpiryMinutes: cfg.ExpiryMinutes, State: StateUninitialized}
		if e, ok := m.Get(ctx, cfg.Name); ok {
			h.ComputedAt = e.ComputedAt
			h.SinceUpdatedMin = m.sinceMinutes(e.ComputedAt)
			h.State = m.classify(cfg, e)
			entryAge.Set(h.SinceUpdatedMin, cfg.Name)
		}
		h.Healthy = h.State == StateFresh
		out = append(out, h)
	}
	return out
}
