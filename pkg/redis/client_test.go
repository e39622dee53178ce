package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/autoads/autoads-backend/pkg/config"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedWindowAllow(t *testing.T) {
	ctx := context.Background()
	mock := newFakeStore()
	client := &Client{store: mock}

	for i, wantAllowed := range []bool{true, true, false} {
		allowed, count, err := client.FixedWindowAllow(ctx, "login:ip", 2, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, wantAllowed, allowed, "hit %d", i+1)
		assert.EqualValues(t, i+1, count)
	}
	assert.Equal(t, map[string]time.Duration{"autoads:rate_limit:login:ip": time.Minute}, mock.ttl)
}

func TestIncrWithTTLRearmsMissingExpiry(t *testing.T) {
	ctx := context.Background()
	mock := newFakeStore()
	client := &Client{store: mock}

	mock.counters["k"] = 5 // counter left behind without a ttl
	count, err := client.IncrWithTTL(ctx, "k", time.Second)
	require.NoError(t, err)
	assert.EqualValues(t, 6, count)
	assert.Equal(t, time.Second, mock.ttl["k"])
}

func TestStringCommands(t *testing.T) {
	ctx := context.Background()
	client := &Client{store: newFakeStore()}
	key := client.AccessSessionKey("abc")

	require.NoError(t, client.Set(ctx, key, "token-value", 10*time.Minute))
	token, err := client.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "token-value", token)

	ok, err := client.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)

	first, err := client.SetNX(ctx, key, "other", time.Minute)
	require.NoError(t, err)
	assert.False(t, first)

	require.NoError(t, client.Del(ctx, key))
	_, err = client.Get(ctx, key)
	assert.ErrorIs(t, err, redis.Nil)
}

func TestUninitializedClient(t *testing.T) {
	var nilClient *Client
	assert.Error(t, nilClient.Ping(context.Background()))

	empty := &Client{}
	_, err := empty.SetNX(context.Background(), "k", 1, time.Second)
	assert.ErrorIs(t, err, errNotInitialized)
	assert.NoError(t, empty.Close())
}

func TestKeyBuilders(t *testing.T) {
	c := &Client{}
	assert.Equal(t, "autoads:idempotency:worker:evt-1", c.IdempotencyKey("worker", "evt-1"))
	assert.Equal(t, "autoads:rate_limit:scope", c.RateLimitKey("scope"))
	assert.Equal(t, "autoads:session:access:jti", c.AccessSessionKey("jti"))
	assert.Equal(t, "autoads:idempotency:id", c.IdempotencyKey("", " id "))
}

func TestOptionsFromConfig(t *testing.T) {
	opts, err := optionsFromConfig(config.RedisConfig{URL: "redis://localhost:6379/3", PoolSize: 7, DialTimeout: time.Second})
	require.NoError(t, err)
	assert.Equal(t, 3, opts.DB)
	assert.Equal(t, 7, opts.PoolSize)
	assert.Equal(t, time.Second, opts.DialTimeout)

	opts, err = optionsFromConfig(config.RedisConfig{Address: "cache:6379", DB: 2})
	require.NoError(t, err)
	assert.Equal(t, "cache:6379", opts.Addr)
	assert.Equal(t, 2, opts.DB)

	_, err = optionsFromConfig(config.RedisConfig{})
	assert.Error(t, err)
}

type fakeStore struct {
	data     map[string]string
	counters map[string]int64
	ttl      map[string]time.Duration
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		data:     map[string]string{},
		counters: map[string]int64{},
		ttl:      map[string]time.Duration{},
	}
}

func (f *fakeStore) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (f *fakeStore) Set(_ context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	f.data[key] = fmt.Sprint(value)
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeStore) Get(_ context.Context, key string) *redis.StringCmd {
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeStore) SetNX(_ context.Context, key string, value any, _ time.Duration) *redis.BoolCmd {
	if _, ok := f.data[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	f.data[key] = fmt.Sprint(value)
	return redis.NewBoolResult(true, nil)
}

func (f *fakeStore) Incr(_ context.Context, key string) *redis.IntCmd {
	f.counters[key]++
	return redis.NewIntResult(f.counters[key], nil)
}

func (f *fakeStore) ExpireNX(_ context.Context, key string, ttl time.Duration) *redis.BoolCmd {
	if _, armed := f.ttl[key]; armed {
		return redis.NewBoolResult(false, nil)
	}
	f.ttl[key] = ttl
	return redis.NewBoolResult(true, nil)
}

func (f *fakeStore) Exists(_ context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, key := range keys {
		if _, ok := f.data[key]; ok {
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (f *fakeStore) Del(_ context.Context, keys ...string) *redis.IntCmd {
	for _, key := range keys {
		delete(f.data, key)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}
