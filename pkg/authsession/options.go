package authsession

import (
	"log/slog"
	"time"
)

// Option configures a Manager.
type Option func(*Manager)

// WithConfig replaces the whole policy. Zero durations fall back to defaults.
func WithConfig(cfg Config) Option {
	return func(m *Manager) {
		def := DefaultConfig()
		if cfg.RenewInterval <= 0 {
			cfg.RenewInterval = def.RenewInterval
		}
		if cfg.RefreshTimeout <= 0 {
			cfg.RefreshTimeout = def.RefreshTimeout
		}
		if cfg.LogoutTimeout <= 0 {
			cfg.LogoutTimeout = def.LogoutTimeout
		}
		if cfg.ExpiryLeeway < 0 {
			cfg.ExpiryLeeway = 0
		}
		m.cfg = cfg
	}
}

// WithRenewInterval sets the proactive renewal period.
func WithRenewInterval(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.cfg.RenewInterval = d
		}
	}
}

// WithRefreshOnRestore toggles the single renewal attempt during Restore.
func WithRefreshOnRestore(enabled bool) Option {
	return func(m *Manager) {
		m.cfg.RefreshOnRestore = enabled
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithRecorder plugs in an outcome recorder such as metrics.Collector.
func WithRecorder(r Recorder) Option {
	return func(m *Manager) {
		if r != nil {
			m.recorder = r
		}
	}
}
