//go:build integration

package stats_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"faucetgate/internal/ratelimit/models"
	"faucetgate/internal/ratelimit/stats"
	"faucetgate/pkg/testutil/containers"
)

type RedisStatsSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *stats.RedisStore
}

func TestRedisStatsSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStatsSuite))
}

func (s *RedisStatsSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.store = stats.NewRedisStore(s.redis.Client, stats.WithPrefix("test:throttle:"), stats.WithBucketTTL(time.Hour))
}

func (s *RedisStatsSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisStatsSuite) TestRecordAggregates() {
	ctx := context.Background()
	at := time.Date(2025, 7, 1, 9, 30, 15, 0, time.UTC)

	for _, allowed := range []bool{true, true, false} {
		s.Require().NoError(s.store.Record(ctx, models.Decision{
			Key: "ip:1.2.3.4", Allowed: allowed, Method: "POST", Route: "/v1/disbursements", At: at,
		}))
	}

	total, err := s.store.Total(ctx)
	s.Require().NoError(err)
	s.Equal(models.Counters{Allowed: 2, Denied: 1}, total)

	bucket := s.redis.Client.HGetAll(ctx, "test:throttle:minute:202507010930").Val()
	s.Equal("2", bucket["allowed"])
	s.Equal("1", bucket["denied"])

	ttl := s.redis.Client.TTL(ctx, "test:throttle:minute:202507010930").Val()
	s.Greater(int64(ttl), int64(0))
	s.LessOrEqual(int64(ttl), int64(time.Hour))

	route := s.redis.Client.HGet(ctx, "test:throttle:route", fmt.Sprintf("%s:%s", "POST /v1/disbursements", "denied")).Val()
	s.Equal("1", route)
}

func (s *RedisStatsSuite) TestTotalOnEmpty() {
	total, err := s.store.Total(context.Background())
	s.Require().NoError(err)
	s.Zero(total)
}
