package ratelimit

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements the same sliding window over a Redis sorted set per
// key, so multiple instances share one view of a client's request history.
// Members are arrival times in nanoseconds; scores are the same instant in
// milliseconds, which makes range pruning by age a ZREMRANGEBYSCORE.
type RedisStore struct {
	client *redis.Client
	prefix string
	window time.Duration
	max    int
}

// NewRedisStore wraps an existing client. Each limiter instance gets its own
// key prefix so independent call sites never share a window.
func NewRedisStore(client *redis.Client, prefix string, max int, window time.Duration) *RedisStore {
	return &RedisStore{client: client, prefix: prefix, max: max, window: window}
}

// Allow records the request and checks the in-window count in one
// transactional pipeline. If the count came out over the limit the request's
// own member is removed again, so rejected requests never consume capacity.
// Two racing requests can both land over the limit and both be rejected;
// that errs on the conservative side, never over-admits.
func (s *RedisStore) Allow(ctx context.Context, key string) (Decision, error) {
	now := time.Now()
	k := s.prefix + ":" + key
	member := strconv.FormatInt(now.UnixNano(), 10)
	cutoff := strconv.FormatInt(now.Add(-s.window).UnixMilli(), 10)

	pipe := s.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, k, "0", cutoff)
	pipe.ZAdd(ctx, k, redis.Z{Score: float64(now.UnixMilli()), Member: member})
	card := pipe.ZCard(ctx, k)
	pipe.Expire(ctx, k, s.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{}, err
	}

	if card.Val() <= int64(s.max) {
		return Decision{Allowed: true}, nil
	}

	_ = s.client.ZRem(ctx, k, member).Err()

	retry := s.window
	if zs, err := s.client.ZRangeWithScores(ctx, k, 0, 0).Result(); err == nil && len(zs) > 0 {
		oldest := time.UnixMilli(int64(zs[0].Score))
		if d := time.Until(oldest.Add(s.window)); d > 0 {
			retry = d
		}
	}
	return Decision{Allowed: false, RetryAfter: retry}, nil
}
