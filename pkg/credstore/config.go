package credstore

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"
)

// Driver names a Store implementation.
type Driver string

const (
	DriverMemory Driver = "memory"
	DriverFile   Driver = "file"
	DriverRedis  Driver = "redis"
)

// Config selects and configures a Store.
type Config struct {
	Driver   Driver `env:"CREDSTORE_DRIVER" envDefault:"file"`
	FilePath string `env:"CREDSTORE_FILE" envDefault:".authclient/credentials.json"`

	// EncryptionKey is a base64-encoded 32-byte key; empty disables encryption.
	EncryptionKey  string `env:"CREDSTORE_ENCRYPTION_KEY"`
	EncryptionSalt string `env:"CREDSTORE_ENCRYPTION_SALT"`

	Redis RedisConfig
}

// DefaultConfig returns an unencrypted file store configuration.
func DefaultConfig() Config {
	return Config{
		Driver:   DriverFile,
		FilePath: ".authclient/credentials.json",
		Redis: RedisConfig{
			ConnectionURL:  "redis://localhost:6379/0",
			Prefix:         "authclient:",
			RetryAttempts:  3,
			RetryInterval:  2 * time.Second,
			ConnectTimeout: 10 * time.Second,
			OpTimeout:      3 * time.Second,
		},
	}
}

// Open builds the Store described by cfg. The returned close function releases
// driver resources and is never nil.
func Open(ctx context.Context, cfg Config) (Store, func() error, error) {
	noop := func() error { return nil }

	var (
		store   Store
		closeFn = noop
	)

	switch cfg.Driver {
	case DriverMemory, "":
		store = NewMemoryStore()
	case DriverFile:
		fs, err := NewFileStore(cfg.FilePath)
		if err != nil {
			return nil, noop, err
		}
		store = fs
	case DriverRedis:
		client, err := ConnectRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, noop, err
		}
		rs := NewRedisStore(client, WithPrefix(cfg.Redis.Prefix), WithOpTimeout(cfg.Redis.OpTimeout))
		store, closeFn = rs, rs.Close
	default:
		return nil, noop, errors.Join(ErrUnknownDriver, fmt.Errorf("driver %q", cfg.Driver))
	}

	if cfg.EncryptionKey == "" {
		return store, closeFn, nil
	}

	key, err := base64.StdEncoding.DecodeString(cfg.EncryptionKey)
	if err != nil {
		_ = closeFn()
		return nil, noop, errors.Join(ErrInvalidKey, err)
	}
	enc, err := NewEncryptedStore(store, key, []byte(cfg.EncryptionSalt))
	if err != nil {
		_ = closeFn()
		return nil, noop, err
	}
	return enc, closeFn, nil
}
