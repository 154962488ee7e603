package kv

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibrahimkeyboad/agrilink/domain"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379", DB: 15})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis not available: %v", err)
	}
	require.NoError(t, client.FlushDB(context.Background()).Err())
	t.Cleanup(func() {
		client.FlushDB(context.Background())
		client.Close()
	})
	return client
}

func TestRedisStoreRoundTrip(t *testing.T) {
	client := newTestRedis(t)
	store := NewRedisStore(client, "agrilink:")
	ctx := context.Background()

	_, err := store.Get(ctx, "auth")
	assert.ErrorIs(t, err, domain.ErrKeyNotFound)

	require.NoError(t, store.Set(ctx, "auth", `{"resend_count":1}`))
	got, err := store.Get(ctx, "auth")
	require.NoError(t, err)
	assert.Equal(t, `{"resend_count":1}`, got)

	require.NoError(t, store.Remove(ctx, "auth"))
	_, err = store.Get(ctx, "auth")
	assert.ErrorIs(t, err, domain.ErrKeyNotFound)
}

func TestRedisStorePrefixesKeys(t *testing.T) {
	client := newTestRedis(t)
	store := NewRedisStore(client, "client-a:")
	other := NewRedisStore(client, "client-b:")
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "auth", "a"))
	_, err := other.Get(ctx, "auth")
	assert.ErrorIs(t, err, domain.ErrKeyNotFound, "prefixes isolate clients sharing a database")

	raw, err := client.Get(ctx, "client-a:auth").Result()
	require.NoError(t, err)
	assert.Equal(t, "a", raw)
}
