package authsession

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/authclient/pkg/async"
	"github.com/dmitrymomot/authclient/pkg/broadcast"
	"github.com/dmitrymomot/authclient/pkg/credstore"
	"github.com/dmitrymomot/authclient/pkg/logger"
)

// Manager owns one session and serializes every change to it.
// All methods are safe for concurrent use.
type Manager struct {
	backend  Backend
	store    credstore.Store
	cfg      Config
	logger   *slog.Logger
	recorder Recorder

	sched  *scheduler
	notify *broadcast.MemoryBroadcaster[Session]
	revoke sync.WaitGroup

	mu      sync.Mutex
	session Session
	// epoch changes on login, logout and restore; results computed under an
	// older epoch are discarded.
	epoch     uint64
	flight    *async.Future[string]
	flightSeq uint64
	closed    bool
}

// New creates a Manager in StatusUnauthenticated. Call Restore to pick up a
// session persisted by a previous process.
func New(backend Backend, store credstore.Store, opts ...Option) *Manager {
	m := &Manager{
		backend:  backend,
		store:    store,
		cfg:      DefaultConfig(),
		logger:   logger.Discard(),
		recorder: noopRecorder{},
		notify:   broadcast.NewMemoryBroadcaster[Session](1),
		session:  Session{Status: StatusUnauthenticated},
	}
	for _, opt := range opts {
		opt(m)
	}

	m.logger = m.logger.With(logger.Component("authsession"))
	m.sched = newScheduler(m.cfg.RenewInterval, m.cfg.ExpiryLeeway, m.renewTick, m.logger)
	return m
}

// Session returns the current snapshot.
func (m *Manager) Session() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session.clone()
}

// AccessToken returns the token to attach to outbound requests, or "".
func (m *Manager) AccessToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session.AccessToken
}

// CanRenew reports whether a refresh token is available for renewal.
func (m *Manager) CanRenew() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session.IsAuthenticated() && m.session.RefreshToken != ""
}

// NextRenewal returns when the proactive renewal fires, if armed.
func (m *Manager) NextRenewal() (time.Time, bool) {
	return m.sched.nextRenewal()
}

// Login authenticates with username and password. It is allowed from
// StatusUnauthenticated and StatusError; failures leave the session
// unauthenticated with LastError set.
//
// If Logout runs before the backend answers, the result is discarded and
// ErrSuperseded is returned.
func (m *Manager) Login(ctx context.Context, username, password string) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrManagerClosed
	}
	if err := m.applyLocked(loginStarted{}); err != nil {
		m.mu.Unlock()
		return err
	}
	m.epoch++
	epoch := m.epoch
	m.mu.Unlock()

	start := time.Now()
	res, err := m.backend.Login(ctx, Credentials{Username: username, Password: password})
	err = classify(err)
	if err == nil && res.AccessToken == "" {
		err = errors.Join(ErrBackendUnavailable, errors.New("login response has no access token"))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.epoch != epoch {
		m.logger.InfoContext(ctx, "login result discarded", logger.Event("login"), logger.Error(err))
		m.recorder.ObserveLogin(ErrSuperseded, time.Since(start))
		return ErrSuperseded
	}

	if err == nil {
		perr := m.persistLocked(res.AccessToken, res.RefreshToken, &res.User)
		if perr == nil && res.RefreshToken == "" {
			// A refresh token left by an earlier session must not pair with this one.
			perr = m.store.Remove(credstore.KeyRefreshToken)
		}
		if perr != nil {
			_ = credstore.Clear(m.store)
			err = errors.Join(ErrStoreUnavailable, perr)
		}
	}
	m.recorder.ObserveLogin(err, time.Since(start))

	if err != nil {
		m.logger.WarnContext(ctx, "login failed", logger.Event("login"), logger.Error(err))
		_ = m.applyLocked(loginFailed{err: err})
		return err
	}

	m.logger.InfoContext(ctx, "login succeeded", logger.Event("login"), logger.UserID(res.User.ID))
	return m.applyLocked(loginSucceeded{result: res})
}

// Logout drops the session, clears the store and cancels renewal. It never
// fails. The server-side revoke runs in the background, bounded by
// Config.LogoutTimeout, and its outcome is ignored.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	token, closed := m.dropLocked(ctx)
	m.mu.Unlock()

	m.revokeAsync(ctx, token, closed)
}

// LogoutIfCurrent logs out like Logout, but only while the session still
// holds accessToken. It reports whether the session was dropped. A rejection
// observed with an older token leaves a newer session alone.
func (m *Manager) LogoutIfCurrent(ctx context.Context, accessToken string) bool {
	m.mu.Lock()
	if accessToken == "" || m.session.AccessToken != accessToken {
		m.mu.Unlock()
		return false
	}
	token, closed := m.dropLocked(ctx)
	m.mu.Unlock()

	m.revokeAsync(ctx, token, closed)
	return true
}

// dropLocked applies the logout and returns the token to revoke.
func (m *Manager) dropLocked(ctx context.Context) (string, bool) {
	token := m.session.AccessToken
	m.epoch++
	m.flight = nil
	if err := credstore.Clear(m.store); err != nil {
		m.logger.WarnContext(ctx, "clear credential store", logger.Event("logout"), logger.Error(err))
	}
	_ = m.applyLocked(loggedOut{})
	return token, m.closed
}

func (m *Manager) revokeAsync(ctx context.Context, token string, closed bool) {
	if token == "" || closed {
		return
	}

	m.revoke.Add(1)
	go func() {
		defer m.revoke.Done()

		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.cfg.LogoutTimeout)
		defer cancel()

		if err := m.backend.Logout(rctx, token); err != nil {
			m.logger.DebugContext(rctx, "server logout failed", logger.Event("logout"), logger.Error(err))
		}
	}()
}

// Refresh renews the access token and returns the new one.
//
// At most one renewal call is outstanding: callers arriving while one is in
// flight wait for its outcome. The call itself runs detached from ctx and is
// bounded by Config.RefreshTimeout; ctx only limits how long this caller
// waits. On failure the session is dropped and the error matches
// ErrSessionExpired.
func (m *Manager) Refresh(ctx context.Context) (string, error) {
	m.mu.Lock()
	if f := m.flight; f != nil {
		m.mu.Unlock()
		return f.AwaitContext(ctx)
	}
	if m.closed {
		m.mu.Unlock()
		return "", ErrManagerClosed
	}
	if m.session.Status != StatusAuthenticated || m.session.RefreshToken == "" {
		m.mu.Unlock()
		return "", ErrNotAuthenticated
	}

	user := m.session.clone().User
	refreshToken := m.session.RefreshToken
	if err := m.applyLocked(refreshStarted{}); err != nil {
		m.mu.Unlock()
		return "", err
	}

	m.flightSeq++
	seq, epoch := m.flightSeq, m.epoch
	f := async.Async(context.WithoutCancel(ctx), refreshToken, func(ctx context.Context, rt string) (string, error) {
		return m.renew(ctx, rt, user, seq, epoch)
	})
	m.flight = f
	m.mu.Unlock()

	return f.AwaitContext(ctx)
}

// renew performs the renewal call and applies its outcome.
func (m *Manager) renew(ctx context.Context, refreshToken string, user *User, seq, epoch uint64) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, m.cfg.RefreshTimeout)
	defer cancel()

	start := time.Now()
	res, err := m.backend.Refresh(ctx, refreshToken)
	if err == nil && res.AccessToken == "" {
		err = errors.New("refresh response has no access token")
	}
	if err != nil && !errors.Is(err, ErrSessionExpired) {
		err = errors.Join(ErrSessionExpired, classify(err))
	}
	m.recorder.ObserveRefresh(err, time.Since(start))

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.flightSeq == seq {
		m.flight = nil
	}

	if m.epoch != epoch {
		m.logger.InfoContext(ctx, "refresh result discarded", logger.Event("refresh"), logger.Error(err))
		return "", errors.Join(ErrSessionExpired, ErrSuperseded)
	}

	if err != nil {
		m.logger.WarnContext(ctx, "refresh failed, dropping session", logger.Event("refresh"), logger.Error(err))
		if cerr := credstore.Clear(m.store); cerr != nil {
			m.logger.WarnContext(ctx, "clear credential store", logger.Event("refresh"), logger.Error(cerr))
		}
		_ = m.applyLocked(refreshFailed{err: err})
		return "", err
	}

	if perr := m.persistTokensLocked(res.AccessToken, res.RefreshToken); perr != nil {
		m.logger.WarnContext(ctx, "persist renewed token", logger.Event("refresh"), logger.Error(perr))
	}

	m.logger.DebugContext(ctx, "token renewed", logger.Event("refresh"),
		slog.Bool("rotated", res.RefreshToken != ""), logger.Duration(time.Since(start)))
	if err := m.applyLocked(refreshSucceeded{result: res, user: user}); err != nil {
		return "", err
	}
	return res.AccessToken, nil
}

// Restore rebuilds the session from the credential store.
//
// An empty store is a no-op and makes no network call. A store holding only
// one of the two tokens is cleared and ErrStorageInconsistent is returned.
// Otherwise the profile is fetched with the stored access token; if it is
// rejected and Config.RefreshOnRestore is set, one renewal is attempted
// before giving up. Any failure clears the store.
func (m *Manager) Restore(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrManagerClosed
	}
	if !restorable(m.session.Status) {
		err := &TransitionError{From: m.session.Status, Event: restoreStarted{}.name()}
		m.mu.Unlock()
		return err
	}

	accessToken, refreshToken, err := m.readTokensLocked()
	switch {
	case err != nil:
		err = errors.Join(ErrStoreUnavailable, err)
		m.epoch++
		m.flight = nil
		m.logger.ErrorContext(ctx, "read credential store", logger.Event("restore"), logger.Error(err))
		_ = m.applyLocked(restoreUnavailable{err: err})
		m.mu.Unlock()
		m.recorder.ObserveRestore(err)
		return err

	case accessToken == "" && refreshToken == "":
		m.mu.Unlock()
		m.logger.DebugContext(ctx, "no stored session", logger.Event("restore"))
		return nil

	case accessToken == "" || refreshToken == "":
		m.epoch++
		m.flight = nil
		if cerr := credstore.Clear(m.store); cerr != nil {
			m.logger.WarnContext(ctx, "clear credential store", logger.Event("restore"), logger.Error(cerr))
		}
		m.logger.WarnContext(ctx, "stored session incomplete, cleared", logger.Event("restore"),
			slog.Bool("has_access_token", accessToken != ""), slog.Bool("has_refresh_token", refreshToken != ""))
		_ = m.applyLocked(loggedOut{})
		m.mu.Unlock()
		m.recorder.ObserveRestore(ErrStorageInconsistent)
		return ErrStorageInconsistent
	}

	m.epoch++
	m.flight = nil
	epoch := m.epoch
	_ = m.applyLocked(restoreStarted{refreshToken: refreshToken})
	m.mu.Unlock()

	accessToken, refreshToken, user, rotated, err := m.verify(ctx, accessToken, refreshToken)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.epoch != epoch {
		m.logger.InfoContext(ctx, "restore result discarded", logger.Event("restore"), logger.Error(err))
		return ErrSuperseded
	}

	if err == nil {
		if rotated {
			err = m.persistLocked(accessToken, refreshToken, &user)
		} else {
			err = m.persistProfileLocked(&user)
		}
		if err != nil {
			err = errors.Join(ErrStoreUnavailable, err)
		}
	}
	m.recorder.ObserveRestore(err)

	if err != nil {
		m.logger.WarnContext(ctx, "restore failed, dropping session", logger.Event("restore"), logger.Error(err))
		if cerr := credstore.Clear(m.store); cerr != nil {
			m.logger.WarnContext(ctx, "clear credential store", logger.Event("restore"), logger.Error(cerr))
		}
		_ = m.applyLocked(restoreFailed{})
		return err
	}

	m.logger.InfoContext(ctx, "session restored", logger.Event("restore"), logger.UserID(user.ID),
		slog.Bool("renewed", rotated))
	return m.applyLocked(restoreSucceeded{accessToken: accessToken, refreshToken: refreshToken, user: user})
}

// verify fetches the profile for the stored tokens, renewing once when the
// access token is rejected. rotated reports whether the tokens changed.
func (m *Manager) verify(ctx context.Context, accessToken, refreshToken string) (string, string, User, bool, error) {
	user, err := m.backend.Profile(ctx, accessToken)
	if err == nil {
		return accessToken, refreshToken, user, false, nil
	}
	if !errors.Is(err, ErrUnauthorized) || !m.cfg.RefreshOnRestore {
		return "", "", User{}, false, classify(err)
	}

	m.logger.DebugContext(ctx, "stored access token rejected, renewing", logger.Event("restore"))

	rctx, cancel := context.WithTimeout(ctx, m.cfg.RefreshTimeout)
	defer cancel()

	start := time.Now()
	res, err := m.backend.Refresh(rctx, refreshToken)
	if err == nil && res.AccessToken == "" {
		err = errors.New("refresh response has no access token")
	}
	if err != nil {
		err = errors.Join(ErrSessionExpired, classify(err))
		m.recorder.ObserveRefresh(err, time.Since(start))
		return "", "", User{}, false, err
	}
	m.recorder.ObserveRefresh(nil, time.Since(start))

	if res.RefreshToken != "" {
		refreshToken = res.RefreshToken
	}
	user, err = m.backend.Profile(ctx, res.AccessToken)
	if err != nil {
		return "", "", User{}, false, classify(err)
	}
	return res.AccessToken, refreshToken, user, true, nil
}

// ClearError acknowledges LastError. From StatusError it also returns the
// session to StatusUnauthenticated.
func (m *Manager) ClearError() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session.LastError == "" && m.session.Status != StatusError {
		return
	}
	_ = m.applyLocked(errorCleared{})
}

// Subscribe calls fn with every new snapshot, in transition order, from a
// dedicated goroutine. A slow listener only misses intermediate snapshots;
// the latest one is always delivered. The returned function unsubscribes.
func (m *Manager) Subscribe(fn func(Session)) (unsubscribe func()) {
	ctx, cancel := context.WithCancel(context.Background())
	sub := m.notify.Subscribe(ctx)

	go func() {
		for msg := range sub.Receive(ctx) {
			fn(msg.Data)
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			_ = sub.Close()
		})
	}
}

// Close cancels renewal, ends all subscriptions and waits for pending
// server-side revokes. The session and store are left untouched.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.sched.disarm()
	m.mu.Unlock()

	err := m.notify.Close()
	m.revoke.Wait()
	return err
}

// renewTick is the scheduler callback.
func (m *Manager) renewTick() {
	ctx := context.Background()
	if _, err := m.Refresh(ctx); err != nil {
		m.logger.WarnContext(ctx, "scheduled renewal failed", logger.Event("refresh"), logger.Error(err))
	}
}

// applyLocked runs the transition, publishes the snapshot and keeps the
// scheduler in step with the status. m.mu must be held.
func (m *Manager) applyLocked(ev event) error {
	prev := m.session
	next, err := transition(prev, ev)
	if err != nil {
		m.logger.Debug("transition rejected", logger.Event(ev.name()), logger.Status(prev.Status.String()))
		return err
	}
	m.session = next

	switch next.Status {
	case StatusAuthenticated:
		if prev.Status != StatusAuthenticated && next.RefreshToken != "" && !m.closed {
			m.sched.arm(next.AccessToken)
		}
	case StatusRefreshing:
	default:
		m.sched.disarm()
	}

	if prev.Status != next.Status {
		m.recorder.ObserveTransition(prev.Status, next.Status)
		m.logger.Debug("session transition", logger.Event(ev.name()),
			logger.Transition(prev.Status.String(), next.Status.String()))
	}

	if !m.closed {
		_ = m.notify.Broadcast(context.Background(), broadcast.Message[Session]{Data: next.clone()})
	}
	return nil
}

func (m *Manager) readTokensLocked() (string, string, error) {
	accessToken, err := m.store.Get(credstore.KeyAccessToken)
	if err != nil && !errors.Is(err, credstore.ErrKeyNotFound) {
		return "", "", err
	}
	refreshToken, err := m.store.Get(credstore.KeyRefreshToken)
	if err != nil && !errors.Is(err, credstore.ErrKeyNotFound) {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

func (m *Manager) persistLocked(accessToken, refreshToken string, user *User) error {
	if err := m.persistTokensLocked(accessToken, refreshToken); err != nil {
		return err
	}
	return m.persistProfileLocked(user)
}

// persistTokensLocked writes the access token and, when non-empty, the
// refresh token.
func (m *Manager) persistTokensLocked(accessToken, refreshToken string) error {
	if err := m.store.Set(credstore.KeyAccessToken, accessToken); err != nil {
		return err
	}
	if refreshToken == "" {
		return nil
	}
	return m.store.Set(credstore.KeyRefreshToken, refreshToken)
}

func (m *Manager) persistProfileLocked(user *User) error {
	if user == nil {
		return nil
	}
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return m.store.Set(credstore.KeyUserProfile, string(data))
}

// CachedUser returns the profile snapshot saved by the last successful login
// or restore, without a network call.
func CachedUser(store credstore.Store) (*User, error) {
	data, err := store.Get(credstore.KeyUserProfile)
	if err != nil {
		return nil, err
	}
	var u User
	if err := json.Unmarshal([]byte(data), &u); err != nil {
		return nil, errors.Join(credstore.ErrCorruptedStorage, err)
	}
	return &u, nil
}
