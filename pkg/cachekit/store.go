package cachekit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/zeromicro/go-zero/core/collection"
)

// Entry is the persisted form of a cache value.
type Entry struct {
	ComputedAt int64           `json:"computed_at" msgpack:"computed_at"`
	Data       json.RawMessage `json:"data" msgpack:"data"`
}

// Decode unmarshals the payload into out.
func (e Entry) Decode(out any) error {
	return json.Unmarshal(e.Data, out)
}

// Store persists entries by key. Save replaces the whole entry; readers see
// either the old or the new value.
type Store interface {
	Load(ctx context.Context, key string) (Entry, bool, error)
	Save(ctx context.Context, key string, entry Entry, ttl time.Duration) error
}

const defaultLocalExpiry = 24 * time.Hour

// MemoryStore keeps entries in process.
type MemoryStore struct {
	cache  *collection.Cache
	expiry time.Duration
}

// NewMemoryStore builds an in-process store. Entries saved with ttl <= 0
// live for expiry (default 24h).
func NewMemoryStore(name string, expiry time.Duration) (*MemoryStore, error) {
	if expiry <= 0 {
		expiry = defaultLocalExpiry
	}
	c, err := collection.NewCache(expiry, collection.WithName(name))
	if err != nil {
		return nil, err
	}
	return &MemoryStore{cache: c, expiry: expiry}, nil
}

// MustNewMemoryStore is NewMemoryStore that panics on error.
func MustNewMemoryStore(name string, expiry time.Duration) *MemoryStore {
	s, err := NewMemoryStore(name, expiry)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *MemoryStore) Load(_ context.Context, key string) (Entry, bool, error) {
	v, ok := s.cache.Get(key)
	if !ok {
		return Entry{}, false, nil
	}
	e, ok := v.(Entry)
	return e, ok, nil
}

func (s *MemoryStore) Save(_ context.Context, key string, entry Entry, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = s.expiry
	}
	s.cache.SetWithExpire(key, entry, ttl)
	return nil
}

// Delete removes a key.
func (s *MemoryStore) Delete(key string) {
	s.cache.Del(key)
}
