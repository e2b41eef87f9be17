package ratelimit

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore shares counters between instances. Keys carry the window index:
// {prefix}{ip}:{index}.
type RedisStore struct {
	rdb    redis.Cmdable
	prefix string
}

func NewRedisStore(rdb redis.Cmdable, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "rl:ip:"
	}
	return &RedisStore{rdb: rdb, prefix: prefix}
}

var _ Store = (*RedisStore)(nil)

func (s *RedisStore) Hit(ctx context.Context, key string, now time.Time, window time.Duration) (int64, time.Time, error) {
	start := windowStart(now, window)
	idx := start.UnixMilli() / window.Milliseconds()
	k := s.prefix + key + ":" + strconv.FormatInt(idx, 10)

	// INCR and expire after 2*window
	pipe := s.rdb.Pipeline()
	cnt := pipe.Incr(ctx, k)
	pipe.PExpire(ctx, k, 2*window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, time.Time{}, err
	}
	return cnt.Val(), start.Add(window), nil
}
