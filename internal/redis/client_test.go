package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/georgemunganga/smartsupply-backend/internal/config"
)

func TestIdempotencyRecordLifecycle(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}

	key := client.IdempotencyKey("POST|/consumer/place_order", "abc")
	_, err := client.Get(ctx, key)
	require.ErrorIs(t, err, redis.Nil)

	ok, err := client.SetNX(ctx, key, `{"status":201}`, time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, time.Hour, mock.ttls[key])

	ok, err = client.SetNX(ctx, key, `{"status":500}`, time.Hour)
	require.NoError(t, err)
	assert.False(t, ok, "second write must not replace the first")

	got, err := client.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, `{"status":201}`, got)

	require.NoError(t, client.Set(ctx, key, `{"status":200}`, 2*time.Hour))
	got, err = client.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, `{"status":200}`, got)
	assert.Equal(t, 2*time.Hour, mock.ttls[key])

	require.NoError(t, client.Del(ctx, key))
	_, err = client.Get(ctx, key)
	require.ErrorIs(t, err, redis.Nil)
}

func TestKeyBuilderSkipsEmptyParts(t *testing.T) {
	client := &Client{}
	assert.Equal(t, "supply:idempotency:scope:id", client.IdempotencyKey("scope", "id"))
	assert.Equal(t, "supply:idempotency:id", client.IdempotencyKey(" ", "id"))
}

func TestUninitializedClientErrors(t *testing.T) {
	var client *Client
	ctx := context.Background()
	require.Error(t, client.Ping(ctx))
	_, err := client.Get(ctx, "k")
	require.Error(t, err)
	_, err = client.SetNX(ctx, "k", "v", 0)
	require.Error(t, err)
	require.Error(t, client.Set(ctx, "k", "v", 0))
	require.Error(t, client.Del(ctx, "k"))
	require.NoError(t, client.Close())
}

func TestOptionsFromConfig(t *testing.T) {
	_, err := optionsFromConfig(config.RedisConfig{})
	require.Error(t, err)

	opts, err := optionsFromConfig(config.RedisConfig{
		URL:         "redis://:secret@cache.internal:6380/2",
		PoolSize:    7,
		DialTimeout: 2 * time.Second,
	})
	require.NoError(t, err)
	assert.Equal(t, "cache.internal:6380", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, 7, opts.PoolSize)
	assert.Equal(t, 2*time.Second, opts.DialTimeout)
}

type mockCmdable struct {
	data map[string]string
	ttls map[string]time.Duration
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) Get(_ context.Context, key string) *redis.StringCmd {
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mockCmdable) SetNX(_ context.Context, key string, value any, ttl time.Duration) *redis.BoolCmd {
	if _, exists := m.data[key]; exists {
		return redis.NewBoolResult(false, nil)
	}
	m.data[key] = fmt.Sprint(value)
	m.ttls[key] = ttl
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) Set(_ context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd {
	m.data[key] = fmt.Sprint(value)
	m.ttls[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

func (m *mockCmdable) Del(_ context.Context, keys ...string) *redis.IntCmd {
	for _, key := range keys {
		delete(m.data, key)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}
