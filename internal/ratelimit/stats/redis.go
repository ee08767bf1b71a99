package stats

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"faucetgate/internal/ratelimit/models"
)

// RedisStore aggregates counters in Redis hashes so several replicas share
// one view:
//
//	{prefix}:total              allowed|denied
//	{prefix}:minute:YYYYMMDDhhmm allowed|denied (expires after TTL)
//	{prefix}:route              "{method} {route}:{allowed|denied}"
type RedisStore struct {
	rdb    redis.UniversalClient
	prefix string
	ttl    time.Duration
}

type RedisOption func(*RedisStore)

func WithPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		if p := strings.Trim(prefix, ":"); p != "" {
			s.prefix = p
		}
	}
}

// WithBucketTTL bounds how long per-minute buckets are kept.
func WithBucketTTL(d time.Duration) RedisOption {
	return func(s *RedisStore) { s.ttl = d }
}

func NewRedisStore(rdb redis.UniversalClient, opts ...RedisOption) *RedisStore {
	s := &RedisStore{
		rdb:    rdb,
		prefix: "faucetgate:throttle",
		ttl:    24 * time.Hour,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) Record(ctx context.Context, d models.Decision) error {
	if s == nil || s.rdb == nil {
		return nil
	}
	at := d.At
	if at.IsZero() {
		at = time.Now()
	}
	field := "denied"
	if d.Allowed {
		field = "allowed"
	}

	pipe := s.rdb.Pipeline()
	pipe.HIncrBy(ctx, s.prefix+":total", field, 1)

	bucketKey := fmt.Sprintf("%s:minute:%s", s.prefix, at.UTC().Format("200601021504"))
	pipe.HIncrBy(ctx, bucketKey, field, 1)
	if s.ttl > 0 {
		pipe.Expire(ctx, bucketKey, s.ttl)
	}
	pipe.HIncrBy(ctx, s.prefix+":route", routeField(d)+":"+field, 1)

	_, err := pipe.Exec(ctx)
	return err
}

// Total reads the cumulative counters.
func (s *RedisStore) Total(ctx context.Context) (models.Counters, error) {
	vals, err := s.rdb.HGetAll(ctx, s.prefix+":total").Result()
	if err != nil {
		return models.Counters{}, err
	}
	var c models.Counters
	if c.Allowed, err = parseCount(vals["allowed"]); err != nil {
		return models.Counters{}, err
	}
	if c.Denied, err = parseCount(vals["denied"]); err != nil {
		return models.Counters{}, err
	}
	return c, nil
}

func parseCount(v string) (int64, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse counter %q: %w", v, err)
	}
	return n, nil
}
