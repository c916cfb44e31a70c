package authsession

import "time"

// Config holds session lifecycle policy.
type Config struct {
	// RenewInterval is the proactive renewal period. It should be shorter than
	// the access token lifetime by at least one interval.
	RenewInterval time.Duration `env:"AUTH_RENEW_INTERVAL" envDefault:"14m"`

	// ExpiryLeeway is subtracted from a JWT access token's exp claim when it
	// would expire before RenewInterval elapses.
	ExpiryLeeway time.Duration `env:"AUTH_EXPIRY_LEEWAY" envDefault:"30s"`

	// RefreshTimeout bounds one renewal network call.
	RefreshTimeout time.Duration `env:"AUTH_REFRESH_TIMEOUT" envDefault:"30s"`

	// LogoutTimeout bounds the best-effort server-side revoke.
	LogoutTimeout time.Duration `env:"AUTH_LOGOUT_TIMEOUT" envDefault:"5s"`

	// RefreshOnRestore makes Restore try one renewal when the stored access
	// token is rejected, before discarding the session.
	RefreshOnRestore bool `env:"AUTH_REFRESH_ON_RESTORE" envDefault:"true"`
}

// DefaultConfig returns the policy for 15-minute access tokens.
func DefaultConfig() Config {
	return Config{
		RenewInterval:    14 * time.Minute,
		ExpiryLeeway:     30 * time.Second,
		RefreshTimeout:   30 * time.Second,
		LogoutTimeout:    5 * time.Second,
		RefreshOnRestore: true,
	}
}
