package authsession

// event is a session input. Each concrete type is one variant.
type event interface {
	name() string
}

type (
	loginStarted   struct{}
	loginSucceeded struct{ result LoginResult }
	loginFailed    struct{ err error }

	restoreStarted   struct{ refreshToken string }
	restoreSucceeded struct {
		accessToken  string
		refreshToken string
		user         User
	}
	restoreFailed      struct{}
	restoreUnavailable struct{ err error }

	refreshStarted   struct{}
	refreshSucceeded struct {
		result RefreshResult
		user   *User
	}
	refreshFailed struct{ err error }

	loggedOut    struct{}
	errorCleared struct{}
)

func (loginStarted) name() string       { return "login" }
func (loginSucceeded) name() string     { return "login_succeeded" }
func (loginFailed) name() string        { return "login_failed" }
func (restoreStarted) name() string     { return "restore" }
func (restoreSucceeded) name() string   { return "restore_succeeded" }
func (restoreFailed) name() string      { return "restore_failed" }
func (restoreUnavailable) name() string { return "restore_unavailable" }
func (refreshStarted) name() string     { return "refresh" }
func (refreshSucceeded) name() string   { return "refresh_succeeded" }
func (refreshFailed) name() string      { return "refresh_failed" }
func (loggedOut) name() string          { return "logout" }
func (errorCleared) name() string       { return "clear_error" }

// transition computes the session that results from applying ev to s.
// It has no side effects.
func transition(s Session, ev event) (Session, error) {
	switch ev := ev.(type) {
	case loginStarted:
		if s.Status != StatusUnauthenticated && s.Status != StatusError {
			break
		}
		return Session{Status: StatusAuthenticating}, nil

	case loginSucceeded:
		if s.Status != StatusAuthenticating {
			break
		}
		u := ev.result.User
		return Session{
			Status:       StatusAuthenticated,
			AccessToken:  ev.result.AccessToken,
			RefreshToken: ev.result.RefreshToken,
			User:         &u,
		}, nil

	case loginFailed:
		if s.Status != StatusAuthenticating {
			break
		}
		return Session{Status: StatusUnauthenticated, LastError: ErrorMessage(ev.err)}, nil

	case restoreStarted:
		if !restorable(s.Status) {
			break
		}
		return Session{Status: StatusAuthenticating, RefreshToken: ev.refreshToken}, nil

	case restoreSucceeded:
		if s.Status != StatusAuthenticating {
			break
		}
		u := ev.user
		return Session{
			Status:       StatusAuthenticated,
			AccessToken:  ev.accessToken,
			RefreshToken: ev.refreshToken,
			User:         &u,
		}, nil

	case restoreFailed:
		if s.Status != StatusAuthenticating {
			break
		}
		return Session{Status: StatusUnauthenticated}, nil

	case restoreUnavailable:
		if !restorable(s.Status) {
			break
		}
		return Session{Status: StatusError, LastError: ErrorMessage(ev.err)}, nil

	case refreshStarted:
		if s.Status != StatusAuthenticated || s.RefreshToken == "" {
			break
		}
		return Session{
			Status:       StatusRefreshing,
			AccessToken:  s.AccessToken,
			RefreshToken: s.RefreshToken,
		}, nil

	case refreshSucceeded:
		if s.Status != StatusRefreshing {
			break
		}
		next := Session{
			Status:       StatusAuthenticated,
			AccessToken:  ev.result.AccessToken,
			RefreshToken: s.RefreshToken,
			User:         ev.user,
		}
		if ev.result.RefreshToken != "" {
			next.RefreshToken = ev.result.RefreshToken
		}
		if next.User == nil {
			next.User = &User{}
		}
		return next, nil

	case refreshFailed:
		if s.Status != StatusRefreshing {
			break
		}
		return Session{Status: StatusUnauthenticated, LastError: ErrorMessage(ev.err)}, nil

	case loggedOut:
		return Session{Status: StatusUnauthenticated}, nil

	case errorCleared:
		next := s.clone()
		next.LastError = ""
		if s.Status == StatusError {
			next.Status = StatusUnauthenticated
		}
		return next, nil
	}

	return s, &TransitionError{From: s.Status, Event: ev.name()}
}

func restorable(s Status) bool {
	return s == StatusUnauthenticated || s == StatusAuthenticated || s == StatusError
}
