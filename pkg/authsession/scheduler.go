package authsession

import (
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// minRenewDelay keeps a token that is already near expiry from causing a
// renewal loop.
const minRenewDelay = time.Second

// scheduler fires one renewal per arm. Arm replaces any pending timer;
// disarm cancels it synchronously.
type scheduler struct {
	interval time.Duration
	leeway   time.Duration
	fire     func()
	now      func() time.Time
	logger   *slog.Logger

	mu    sync.Mutex
	timer *time.Timer
	gen   uint64
	due   time.Time
}

func newScheduler(interval, leeway time.Duration, fire func(), logger *slog.Logger) *scheduler {
	return &scheduler{
		interval: interval,
		leeway:   leeway,
		fire:     fire,
		now:      time.Now,
		logger:   logger,
	}
}

// arm schedules the next renewal for accessToken and returns the delay.
func (s *scheduler) arm(accessToken string) time.Duration {
	delay := s.delay(accessToken)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()
	gen := s.gen
	s.due = s.now().Add(delay)
	s.timer = time.AfterFunc(delay, func() {
		s.mu.Lock()
		if s.gen != gen {
			s.mu.Unlock()
			return
		}
		s.timer = nil
		s.due = time.Time{}
		s.mu.Unlock()

		s.fire()
	})

	s.logger.Debug("renewal scheduled", slog.Duration("delay", delay))
	return delay
}

func (s *scheduler) disarm() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.logger.Debug("renewal cancelled")
	}
	s.stopLocked()
}

// stopLocked stops the timer and invalidates a callback that already started.
func (s *scheduler) stopLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.due = time.Time{}
	s.gen++
}

// nextRenewal returns when the pending renewal fires.
func (s *scheduler) nextRenewal() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.due, s.timer != nil
}

func (s *scheduler) delay(accessToken string) time.Duration {
	delay := s.interval
	if exp, ok := tokenExpiry(accessToken); ok {
		if untilExp := exp.Sub(s.now()) - s.leeway; untilExp < delay {
			delay = untilExp
		}
	}
	return max(delay, min(minRenewDelay, s.interval))
}

// tokenExpiry reads the exp claim of a JWT without verifying its signature.
// Opaque tokens report false.
func tokenExpiry(token string) (time.Time, bool) {
	if token == "" {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
