// Package config loads typed configuration from environment variables.
//
// It wraps github.com/joho/godotenv and github.com/caarlos0/env/v11:
//
//   - LoadEnv reads one or more .env files; Load reads the default .env once.
//   - Load parses the environment into a struct using `env` tags and caches
//     the result per type for the lifetime of the process.
//   - LoadPrefixed parses with a prefix applied to every tag and never caches,
//     so one struct type can back several named instances.
//   - MustLoad panics on failure for configs required at startup.
//
// # Usage
//
//	var cfg authsession.Config
//	config.MustLoad(&cfg)
//
//	var redisCfg credstore.RedisConfig
//	if err := config.LoadPrefixed("SECONDARY_", &redisCfg); err != nil {
//	    return err
//	}
//
// # Errors
//
// ErrParsingConfig, ErrLoadingEnvFile and ErrNilPointer can be matched with
// errors.Is; the parser's own error is joined to the sentinel.
//
// ResetCache and ForceReload exist for tests that change the environment.
package config
