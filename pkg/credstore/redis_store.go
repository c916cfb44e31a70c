package credstore

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig describes how to reach the Redis server backing a RedisStore.
type RedisConfig struct {
	ConnectionURL  string        `env:"CREDSTORE_REDIS_URL" envDefault:"redis://localhost:6379/0"`
	Prefix         string        `env:"CREDSTORE_REDIS_PREFIX" envDefault:"authclient:"`
	RetryAttempts  int           `env:"CREDSTORE_REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval  time.Duration `env:"CREDSTORE_REDIS_RETRY_INTERVAL" envDefault:"2s"`
	ConnectTimeout time.Duration `env:"CREDSTORE_REDIS_CONNECT_TIMEOUT" envDefault:"10s"`
	OpTimeout      time.Duration `env:"CREDSTORE_REDIS_OP_TIMEOUT" envDefault:"3s"`
}

// ConnectRedis parses cfg.ConnectionURL and pings the server, retrying up to
// cfg.RetryAttempts times before giving up.
func ConnectRedis(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	if cfg.ConnectionURL == "" {
		return nil, errors.Join(ErrStorageFailure, errors.New("empty redis connection URL"))
	}

	opts, err := redis.ParseURL(cfg.ConnectionURL)
	if err != nil {
		return nil, errors.Join(ErrStorageFailure, err)
	}

	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}

	attempts := max(cfg.RetryAttempts, 1)
	for range attempts {
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err == nil {
			return client, nil
		}
		_ = client.Close()

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrRedisNotReady, ctx.Err())
		case <-time.After(cfg.RetryInterval):
		}
	}

	return nil, ErrRedisNotReady
}

// RedisStore implements Store on top of a Redis client. Each call runs
// under a background context bounded by the operation timeout.
type RedisStore struct {
	db        redis.UniversalClient
	prefix    string
	opTimeout time.Duration
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithPrefix namespaces every key. Empty prefixes are ignored.
func WithPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithOpTimeout bounds each Redis round trip.
func WithOpTimeout(d time.Duration) RedisOption {
	return func(s *RedisStore) {
		if d > 0 {
			s.opTimeout = d
		}
	}
}

// NewRedisStore wraps an existing Redis client.
func NewRedisStore(client redis.UniversalClient, opts ...RedisOption) *RedisStore {
	s := &RedisStore{
		db:        client,
		prefix:    "authclient:",
		opTimeout: 3 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the value stored under key; redis.Nil becomes ErrKeyNotFound.
func (s *RedisStore) Get(key string) (string, error) {
	if key == "" {
		return "", ErrEmptyKey
	}

	ctx, cancel := s.context()
	defer cancel()

	v, err := s.db.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrKeyNotFound
	}
	if err != nil {
		return "", errors.Join(ErrStorageFailure, err)
	}
	return v, nil
}

// Set stores value under key without expiration.
func (s *RedisStore) Set(key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}

	ctx, cancel := s.context()
	defer cancel()

	if err := s.db.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return errors.Join(ErrStorageFailure, err)
	}
	return nil
}

// Remove deletes key.
func (s *RedisStore) Remove(key string) error {
	if key == "" {
		return ErrEmptyKey
	}

	ctx, cancel := s.context()
	defer cancel()

	if err := s.db.Del(ctx, s.key(key)).Err(); err != nil {
		return errors.Join(ErrStorageFailure, err)
	}
	return nil
}

// Healthcheck pings Redis.
func (s *RedisStore) Healthcheck(ctx context.Context) error {
	if err := s.db.Ping(ctx).Err(); err != nil {
		return errors.Join(ErrStorageFailure, err)
	}
	return nil
}

// Close terminates the Redis connection.
func (s *RedisStore) Close() error {
	return s.db.Close()
}

func (s *RedisStore) key(k string) string {
	return s.prefix + k
}

func (s *RedisStore) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.opTimeout)
}
