package authapi

import "time"

// Config describes the authentication API.
type Config struct {
	BaseURL   string        `env:"AUTH_API_BASE_URL" envDefault:"http://localhost:8000/api"`
	Timeout   time.Duration `env:"AUTH_API_TIMEOUT" envDefault:"10s"`
	UserAgent string        `env:"AUTH_API_USER_AGENT" envDefault:"authclient/1.0"`

	LoginPath   string `env:"AUTH_API_LOGIN_PATH" envDefault:"/auth/login/"`
	RefreshPath string `env:"AUTH_API_REFRESH_PATH" envDefault:"/auth/token/refresh/"`
	ProfilePath string `env:"AUTH_API_PROFILE_PATH" envDefault:"/auth/profile/"`
	// LogoutPath may be empty when the server has no revoke endpoint.
	LogoutPath string `env:"AUTH_API_LOGOUT_PATH" envDefault:"/auth/logout/"`
}

// DefaultConfig returns the configuration for a local development server.
func DefaultConfig() Config {
	return Config{
		BaseURL:     "http://localhost:8000/api",
		Timeout:     10 * time.Second,
		UserAgent:   "authclient/1.0",
		LoginPath:   "/auth/login/",
		RefreshPath: "/auth/token/refresh/",
		ProfilePath: "/auth/profile/",
		LogoutPath:  "/auth/logout/",
	}
}
