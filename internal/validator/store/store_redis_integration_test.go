//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"cardeval/internal/validator/store"
	"cardeval/pkg/testutil/containers"
)

type RedisCacheSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	cache *store.RedisCache
}

func TestRedisCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisCacheSuite))
}

func (s *RedisCacheSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.redis = mgr.GetRedis(s.T())
	s.cache = store.NewRedisCache(s.redis.Client, store.WithCacheTTL(time.Minute))
}

func (s *RedisCacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisCacheSuite) TestMissThenHit() {
	ctx := context.Background()

	_, found, err := s.cache.Get(ctx, "AB123")
	s.Require().NoError(err)
	s.False(found)

	s.Require().NoError(s.cache.Set(ctx, "AB123", true))
	s.Require().NoError(s.cache.Set(ctx, "CD456", false))

	valid, found, err := s.cache.Get(ctx, "AB123")
	s.Require().NoError(err)
	s.True(found)
	s.True(valid)

	valid, found, err = s.cache.Get(ctx, "CD456")
	s.Require().NoError(err)
	s.True(found)
	s.False(valid, "negative results are cached too")
}

func (s *RedisCacheSuite) TestEntriesExpire() {
	ctx := context.Background()
	s.Require().NoError(s.cache.Set(ctx, "AB123", true))

	ttl, err := s.redis.Client.TTL(ctx, "ffn:valid:AB123").Result()
	s.Require().NoError(err)
	s.Greater(ttl, time.Duration(0))
	s.LessOrEqual(ttl, time.Minute)
}
