package authsession

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allStatuses = []Status{
	StatusUnauthenticated,
	StatusAuthenticating,
	StatusAuthenticated,
	StatusRefreshing,
	StatusError,
}

// sessionIn returns a well-formed session for status s.
func sessionIn(s Status) Session {
	switch s {
	case StatusAuthenticated:
		return Session{Status: s, AccessToken: "A1", RefreshToken: "R1", User: &User{ID: 1, Username: "alice"}}
	case StatusRefreshing:
		return Session{Status: s, AccessToken: "A1", RefreshToken: "R1"}
	case StatusAuthenticating:
		return Session{Status: s, RefreshToken: "R1"}
	case StatusError:
		return Session{Status: s, LastError: "Unable to access saved credentials."}
	default:
		return Session{Status: s}
	}
}

func allEvents() []event {
	return []event{
		loginStarted{},
		loginSucceeded{result: LoginResult{AccessToken: "A1", RefreshToken: "R1", User: User{ID: 1, Username: "alice"}}},
		loginFailed{err: ErrInvalidCredentials},
		restoreStarted{refreshToken: "R1"},
		restoreSucceeded{accessToken: "A1", refreshToken: "R1", user: User{ID: 1}},
		restoreFailed{},
		restoreUnavailable{err: ErrStoreUnavailable},
		refreshStarted{},
		refreshSucceeded{result: RefreshResult{AccessToken: "A2"}, user: &User{ID: 1}},
		refreshFailed{err: ErrSessionExpired},
		loggedOut{},
		errorCleared{},
	}
}

func TestTransition_Table(t *testing.T) {
	t.Parallel()

	tests := []struct {
		from Status
		ev   event
		to   Status
	}{
		{StatusUnauthenticated, loginStarted{}, StatusAuthenticating},
		{StatusError, loginStarted{}, StatusAuthenticating},
		{StatusAuthenticating, loginSucceeded{result: LoginResult{AccessToken: "A1", RefreshToken: "R1"}}, StatusAuthenticated},
		{StatusAuthenticating, loginFailed{err: ErrInvalidCredentials}, StatusUnauthenticated},
		{StatusUnauthenticated, restoreStarted{refreshToken: "R1"}, StatusAuthenticating},
		{StatusAuthenticated, restoreStarted{refreshToken: "R1"}, StatusAuthenticating},
		{StatusError, restoreStarted{refreshToken: "R1"}, StatusAuthenticating},
		{StatusAuthenticating, restoreSucceeded{accessToken: "A1", refreshToken: "R1"}, StatusAuthenticated},
		{StatusAuthenticating, restoreFailed{}, StatusUnauthenticated},
		{StatusUnauthenticated, restoreUnavailable{err: ErrStoreUnavailable}, StatusError},
		{StatusAuthenticated, refreshStarted{}, StatusRefreshing},
		{StatusRefreshing, refreshSucceeded{result: RefreshResult{AccessToken: "A2"}}, StatusAuthenticated},
		{StatusRefreshing, refreshFailed{err: ErrSessionExpired}, StatusUnauthenticated},
		{StatusAuthenticated, loggedOut{}, StatusUnauthenticated},
		{StatusRefreshing, loggedOut{}, StatusUnauthenticated},
		{StatusAuthenticating, loggedOut{}, StatusUnauthenticated},
		{StatusError, errorCleared{}, StatusUnauthenticated},
		{StatusAuthenticated, errorCleared{}, StatusAuthenticated},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"/"+tt.ev.name(), func(t *testing.T) {
			next, err := transition(sessionIn(tt.from), tt.ev)
			require.NoError(t, err)
			assert.Equal(t, tt.to, next.Status)
		})
	}
}

func TestTransition_Rejected(t *testing.T) {
	t.Parallel()

	tests := []struct {
		from Status
		ev   event
	}{
		{StatusAuthenticated, loginStarted{}},
		{StatusRefreshing, loginStarted{}},
		{StatusAuthenticating, loginStarted{}},
		{StatusUnauthenticated, loginSucceeded{}},
		{StatusAuthenticating, restoreStarted{}},
		{StatusRefreshing, restoreStarted{}},
		{StatusUnauthenticated, refreshStarted{}},
		{StatusRefreshing, refreshStarted{}},
		{StatusAuthenticated, refreshSucceeded{}},
		{StatusUnauthenticated, refreshFailed{}},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"/"+tt.ev.name(), func(t *testing.T) {
			s := sessionIn(tt.from)
			next, err := transition(s, tt.ev)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidTransition)

			var te *TransitionError
			require.True(t, errors.As(err, &te))
			assert.Equal(t, tt.from, te.From)
			assert.Equal(t, tt.ev.name(), te.Event)
			assert.Equal(t, s, next, "rejected transition must not change the session")
		})
	}
}

func TestTransition_RefreshRequiresRefreshToken(t *testing.T) {
	t.Parallel()

	s := Session{Status: StatusAuthenticated, AccessToken: "A1", User: &User{ID: 1}}
	_, err := transition(s, refreshStarted{})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestTransition_Invariants(t *testing.T) {
	t.Parallel()

	for _, from := range allStatuses {
		for _, ev := range allEvents() {
			next, err := transition(sessionIn(from), ev)
			if err != nil {
				continue
			}
			hasToken := next.Status == StatusAuthenticated || next.Status == StatusRefreshing
			assert.Equal(t, hasToken, next.AccessToken != "", "%s/%s: access token presence", from, ev.name())
			assert.Equal(t, next.Status == StatusAuthenticated, next.User != nil, "%s/%s: user presence", from, ev.name())
		}
	}
}

func TestTransition_LastError(t *testing.T) {
	t.Parallel()

	next, err := transition(sessionIn(StatusAuthenticating), loginFailed{err: ErrInvalidCredentials})
	require.NoError(t, err)
	assert.Equal(t, "Invalid credentials. Please check your username and password.", next.LastError)

	next, err = transition(next, loginStarted{})
	require.NoError(t, err)
	assert.Empty(t, next.LastError)

	next, err = transition(sessionIn(StatusRefreshing), refreshFailed{err: ErrSessionExpired})
	require.NoError(t, err)
	assert.Equal(t, "Token refresh failed. Please login again.", next.LastError)
	assert.Empty(t, next.RefreshToken)

	next, err = transition(next, errorCleared{})
	require.NoError(t, err)
	assert.Equal(t, StatusUnauthenticated, next.Status)
	assert.Empty(t, next.LastError)
}

func TestTransition_RefreshKeepsRefreshTokenUnlessRotated(t *testing.T) {
	t.Parallel()

	user := &User{ID: 1, Username: "alice"}

	next, err := transition(sessionIn(StatusRefreshing), refreshSucceeded{result: RefreshResult{AccessToken: "A2"}, user: user})
	require.NoError(t, err)
	assert.Equal(t, "A2", next.AccessToken)
	assert.Equal(t, "R1", next.RefreshToken)
	assert.Equal(t, user, next.User)

	next, err = transition(sessionIn(StatusRefreshing), refreshSucceeded{result: RefreshResult{AccessToken: "A2", RefreshToken: "R2"}, user: user})
	require.NoError(t, err)
	assert.Equal(t, "R2", next.RefreshToken)
}
