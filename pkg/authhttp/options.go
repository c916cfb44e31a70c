package authhttp

import (
	"log/slog"
	"net/http"
)

// Option configures a Transport.
type Option func(*Transport)

// WithBase sets the underlying RoundTripper. Defaults to http.DefaultTransport.
func WithBase(rt http.RoundTripper) Option {
	return func(t *Transport) {
		if rt != nil {
			t.base = rt
		}
	}
}

// WithRejection overrides how an authentication rejection is recognised.
// Defaults to status 401.
func WithRejection(fn func(*http.Response) bool) Option {
	return func(t *Transport) {
		if fn != nil {
			t.rejected = fn
		}
	}
}

// WithLogger sets the logger for rejection handling. Defaults to a discarding logger.
func WithLogger(l *slog.Logger) Option {
	return func(t *Transport) {
		if l != nil {
			t.logger = l
		}
	}
}
