package svc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swapstats-api/internal/config"
	"swapstats-api/pkg/cachekit"
)

func TestCacheStoreWithoutRedisKeepsEntries(t *testing.T) {
	store, err := NewCacheStore(config.CacheConf{LocalExpiry: time.Second, Retention: time.Hour}, nil)
	require.NoError(t, err)

	now := time.Now()
	m := cachekit.NewManager(store, cachekit.WithNow(func() time.Time { return now }))
	require.NoError(t, m.Register(cachekit.EntryConfig{
		Name:          "coins_config",
		Class:         cachekit.ClassUpstream,
		ExpiryMinutes: 1,
		Retention:     time.Hour,
		Producer: func(context.Context) (any, error) {
			return map[string]string{"KMD": "UTXO"}, nil
		},
	}))

	ctx := context.Background()
	require.NoError(t, m.Refresh(ctx, "coins_config"))

	time.Sleep(2500 * time.Millisecond)
	now = now.Add(20 * time.Minute)

	_, ok := m.Get(ctx, "coins_config")
	assert.True(t, ok, "entry outlives the local expiry")
	assert.Equal(t, cachekit.StateStale, m.State(ctx, "coins_config"))
}

func TestCacheStoreWithSharedTier(t *testing.T) {
	shared := cachekit.MustNewMemoryStore("svc-shared", time.Hour)
	store, err := NewCacheStore(config.CacheConf{LocalExpiry: time.Minute, Retention: time.Hour}, shared)
	require.NoError(t, err)

	ctx := context.Background()
	e := cachekit.Entry{ComputedAt: 1, Data: []byte(`{"a":1}`)}
	require.NoError(t, store.Save(ctx, "k", e, time.Hour))

	got, ok, err := shared.Load(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, e.ComputedAt, got.ComputedAt)
}
