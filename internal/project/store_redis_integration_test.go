//go:build integration

package project

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

type RedisStoreSuite struct {
	suite.Suite
	container *tcredis.RedisContainer
	client    *redis.Client
	store     *RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	s.Require().NoError(err)
	s.container = container

	addr, err := container.ConnectionString(ctx)
	s.Require().NoError(err)

	opts, err := redis.ParseURL(addr)
	s.Require().NoError(err)
	s.client = redis.NewClient(opts)
	s.Require().NoError(s.client.Ping(ctx).Err())

	s.store = NewRedisStore(s.client)
}

func (s *RedisStoreSuite) TearDownSuite() {
	if s.client != nil {
		_ = s.client.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(context.Background())
	}
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.client.FlushAll(context.Background()).Err())
}

func (s *RedisStoreSuite) TestPutAndGet() {
	ctx := context.Background()

	err := s.store.Put(ctx, Settings{ProjectID: "17", APIToken: "abc", Enabled: true, ForceUpdate: true})
	s.Require().NoError(err)

	settings, err := s.store.Get(ctx, "17")
	s.Require().NoError(err)
	s.Equal("abc", settings.APIToken)
	s.True(settings.Enabled)
	s.True(settings.ForceUpdate)
}

func (s *RedisStoreSuite) TestGetMissing() {
	_, err := s.store.Get(context.Background(), "99")
	s.ErrorIs(err, ErrNotFound)
}

func (s *RedisStoreSuite) TestListEnabled() {
	ctx := context.Background()
	s.Require().NoError(s.store.Put(ctx, Settings{ProjectID: "30", Enabled: true}))
	s.Require().NoError(s.store.Put(ctx, Settings{ProjectID: "17", Enabled: true}))
	s.Require().NoError(s.store.Put(ctx, Settings{ProjectID: "22", Enabled: false}))

	enabled, err := s.store.ListEnabled(ctx)
	s.Require().NoError(err)
	s.Require().Len(enabled, 2)
	s.Equal("17", enabled[0].ProjectID)
	s.Equal("30", enabled[1].ProjectID)
}
