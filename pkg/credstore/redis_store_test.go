package credstore_test

import (
	"context"
	"testing"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authclient/pkg/credstore"
)

func TestRedisStore(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	store := credstore.NewRedisStore(client, credstore.WithPrefix("test:"))
	defer store.Close()

	require.NoError(t, store.Healthcheck(context.Background()))

	_, err = store.Get(credstore.KeyAccessToken)
	assert.ErrorIs(t, err, credstore.ErrKeyNotFound)

	require.NoError(t, store.Set(credstore.KeyAccessToken, "A1"))
	raw, err := m.Get("test:" + credstore.KeyAccessToken)
	require.NoError(t, err)
	assert.Equal(t, "A1", raw)

	v, err := store.Get(credstore.KeyAccessToken)
	require.NoError(t, err)
	assert.Equal(t, "A1", v)

	require.NoError(t, store.Remove(credstore.KeyAccessToken))
	assert.False(t, m.Exists("test:"+credstore.KeyAccessToken))
	assert.NoError(t, store.Remove(credstore.KeyAccessToken))
}

func TestRedisStore_Unavailable(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: m.Addr(), MaxRetries: -1})
	store := credstore.NewRedisStore(client)
	defer store.Close()

	m.Close()

	_, err = store.Get(credstore.KeyRefreshToken)
	require.Error(t, err)
	assert.ErrorIs(t, err, credstore.ErrStorageFailure)
	assert.NotErrorIs(t, err, credstore.ErrKeyNotFound)
}

func TestConnectRedis(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	client, err := credstore.ConnectRedis(context.Background(), credstore.RedisConfig{
		ConnectionURL: "redis://" + m.Addr() + "/0",
		RetryAttempts: 1,
	})
	require.NoError(t, err)
	defer client.Close()

	_, err = credstore.ConnectRedis(context.Background(), credstore.RedisConfig{ConnectionURL: "://bad"})
	assert.ErrorIs(t, err, credstore.ErrStorageFailure)
}
