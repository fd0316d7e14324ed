package cachekit

import (
	"context"
	"time"

	"github.com/zeromicro/go-zero/core/logx"
)

// TieredStore serves from a local tier and falls back to a shared tier,
// promoting hits into the local tier.
type TieredStore struct {
	local    Store
	shared   Store
	localTTL time.Duration
}

// NewTieredStore combines local and shared stores. Either may be nil.
// localTTL caps how long promoted or written entries stay local while a
// shared tier exists. Without one the local tier is the store of record and
// keeps every entry for the TTL it was saved with.
func NewTieredStore(local, shared Store, localTTL time.Duration) *TieredStore {
	return &TieredStore{local: local, shared: shared, localTTL: localTTL}
}

func (s *TieredStore) Load(ctx context.Context, key string) (Entry, bool, error) {
	if s.local != nil {
		if e, ok, err := s.local.Load(ctx, key); err == nil && ok {
			return e, true, nil
		}
	}
	if s.shared == nil {
		return Entry{}, false, nil
	}
	e, ok, err := s.shared.Load(ctx, key)
	if err != nil || !ok {
		return Entry{}, false, err
	}
	if s.local != nil {
		if err := s.local.Save(ctx, key, e, s.localTTL); err != nil {
			logx.WithContext(ctx).Errorf("cachekit: promote key=%s err=%v", key, err)
		}
	}
	return e, true, nil
}

// Save writes the shared tier first, then the local tier. A shared-tier
// failure is returned after the local tier has been updated.
func (s *TieredStore) Save(ctx context.Context, key string, entry Entry, ttl time.Duration) error {
	var sharedErr error
	if s.shared != nil {
		sharedErr = s.shared.Save(ctx, key, entry, ttl)
	}
	if s.local != nil {
		localTTL := ttl
		if s.shared != nil && s.localTTL > 0 && (localTTL <= 0 || s.localTTL < localTTL) {
			localTTL = s.localTTL
		}
		if err := s.local.Save(ctx, key, entry, localTTL); err != nil && sharedErr == nil {
			return err
		}
	}
	return sharedErr
}
