package cachekit

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/zeromicro/go-zero/core/stores/redis"

	"swapstats-api/pkg/retry"
)

// RedisStore keeps msgpack-encoded entries in Redis.
type RedisStore struct {
	rds   *redis.Redis
	retry *retry.Handler
}

// NewRedisStore wraps a go-zero redis client. Reads and writes are retried
// with the given handler (nil disables retries).
func NewRedisStore(rds *redis.Redis, handler *retry.Handler) *RedisStore {
	if handler == nil {
		handler = retry.NewHandler(retry.Config{MaxRetries: 0})
	}
	return &RedisStore{rds: rds, retry: handler}
}

func (s *RedisStore) Load(ctx context.Context, key string) (Entry, bool, error) {
	var raw string
	err := s.retry.Do(ctx, func() error {
		var err error
		raw, err = s.rds.GetCtx(ctx, key)
		return err
	})
	if err != nil {
		return Entry{}, false, fmt.Errorf("cachekit: redis get %s: %w", key, err)
	}
	if raw == "" {
		return Entry{}, false, nil
	}
	var e Entry
	if err := msgpack.Unmarshal([]byte(raw), &e); err != nil {
		return Entry{}, false, fmt.Errorf("cachekit: decode %s: %w", key, err)
	}
	return e, true, nil
}

func (s *RedisStore) Save(ctx context.Context, key string, entry Entry, ttl time.Duration) error {
	payload, err := msgpack.Marshal(entry)
	if err != nil {
		return fmt.Errorf("cachekit: encode %s: %w", key, err)
	}
	return s.retry.Do(ctx, func() error {
		if ttl <= 0 {
			return s.rds.SetCtx(ctx, key, string(payload))
		}
		return s.rds.SetexCtx(ctx, key, string(payload), ttlSeconds(ttl))
	})
}

func ttlSeconds(ttl time.Duration) int {
	secs := int(math.Ceil(ttl.Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}
