package authsession_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/dmitrymomot/authclient/pkg/authsession"
	"github.com/dmitrymomot/authclient/pkg/credstore"
)

// stubBackend answers with configurable functions and counts calls.
type stubBackend struct {
	login   func(ctx context.Context, creds authsession.Credentials) (authsession.LoginResult, error)
	refresh func(ctx context.Context, refreshToken string) (authsession.RefreshResult, error)
	profile func(ctx context.Context, accessToken string) (authsession.User, error)
	logout  func(ctx context.Context, accessToken string) error

	loginCalls   atomic.Int32
	refreshCalls atomic.Int32
	profileCalls atomic.Int32
	logoutCalls  atomic.Int32

	mu            sync.Mutex
	revokedTokens []string
}

var alice = authsession.User{ID: 1, Username: "alice", Email: "alice@example.com"}

func newStubBackend() *stubBackend {
	return &stubBackend{
		login: func(_ context.Context, creds authsession.Credentials) (authsession.LoginResult, error) {
			if creds.Username != "alice" || creds.Password != "correct" {
				return authsession.LoginResult{}, authsession.ErrInvalidCredentials
			}
			return authsession.LoginResult{AccessToken: "A1", RefreshToken: "R1", User: alice}, nil
		},
		refresh: func(context.Context, string) (authsession.RefreshResult, error) {
			return authsession.RefreshResult{AccessToken: "A2"}, nil
		},
		profile: func(_ context.Context, accessToken string) (authsession.User, error) {
			return alice, nil
		},
	}
}

func (b *stubBackend) Login(ctx context.Context, creds authsession.Credentials) (authsession.LoginResult, error) {
	b.loginCalls.Add(1)
	return b.login(ctx, creds)
}

func (b *stubBackend) Refresh(ctx context.Context, refreshToken string) (authsession.RefreshResult, error) {
	b.refreshCalls.Add(1)
	return b.refresh(ctx, refreshToken)
}

func (b *stubBackend) Profile(ctx context.Context, accessToken string) (authsession.User, error) {
	b.profileCalls.Add(1)
	return b.profile(ctx, accessToken)
}

func (b *stubBackend) Logout(ctx context.Context, accessToken string) error {
	b.logoutCalls.Add(1)
	b.mu.Lock()
	b.revokedTokens = append(b.revokedTokens, accessToken)
	b.mu.Unlock()
	if b.logout != nil {
		return b.logout(ctx, accessToken)
	}
	return nil
}

func (b *stubBackend) revoked() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.revokedTokens...)
}

// brokenStore fails every read.
type brokenStore struct {
	*credstore.MemoryStore
}

var errDiskGone = errors.New("disk gone")

func (brokenStore) Get(string) (string, error) {
	return "", errors.Join(credstore.ErrStorageFailure, errDiskGone)
}

func storedValue(store credstore.Store, key string) string {
	v, _ := store.Get(key)
	return v
}
