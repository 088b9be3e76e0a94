package testredisprovider

import (
	"context"

	"github.com/alicebob/miniredis/v2"
	"github.com/anyproto/any-sync/app"
	"github.com/redis/go-redis/v9"

	"github.com/lalternative/push-relay/redisprovider"
)

// NewTestRedisProvider serves RedisProvider from an in-process miniredis.
func NewTestRedisProvider() *TestRedisProvider {
	return &TestRedisProvider{}
}

type TestRedisProvider struct {
	srv   *miniredis.Miniredis
	redis redis.UniversalClient
}

func (t *TestRedisProvider) Init(a *app.App) (err error) {
	if t.srv, err = miniredis.Run(); err != nil {
		return err
	}
	t.redis = redis.NewClient(&redis.Options{Addr: t.srv.Addr()})
	return nil
}

func (t *TestRedisProvider) Name() (name string) {
	return redisprovider.CName
}

func (t *TestRedisProvider) Run(ctx context.Context) (err error) {
	return nil
}

func (t *TestRedisProvider) Redis() redis.UniversalClient {
	return t.redis
}

// Server exposes the backing miniredis for assertions.
func (t *TestRedisProvider) Server() *miniredis.Miniredis {
	return t.srv
}

func (t *TestRedisProvider) Close(ctx context.Context) (err error) {
	_ = t.redis.Close()
	t.srv.Close()
	return nil
}
