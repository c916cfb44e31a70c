package authsession

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredentials indicates the backend rejected username or password.
	ErrInvalidCredentials = errors.New("authsession: invalid credentials")

	// ErrNetworkUnavailable indicates the backend could not be reached.
	ErrNetworkUnavailable = errors.New("authsession: network unavailable")

	// ErrBackendUnavailable indicates a server failure or a malformed response.
	ErrBackendUnavailable = errors.New("authsession: backend unavailable")

	// ErrSessionExpired indicates renewal failed and the session was dropped.
	ErrSessionExpired = errors.New("authsession: session expired")

	// ErrStorageInconsistent indicates the store held only one of the two tokens.
	ErrStorageInconsistent = errors.New("authsession: credential storage inconsistent")

	// ErrStoreUnavailable indicates the credential store could not be read or written.
	ErrStoreUnavailable = errors.New("authsession: credential store unavailable")

	// ErrUnauthorized indicates the backend rejected the presented access token.
	ErrUnauthorized = errors.New("authsession: unauthorized")

	// ErrNotAuthenticated indicates the operation needs an authenticated session.
	ErrNotAuthenticated = errors.New("authsession: not authenticated")

	// ErrSuperseded indicates the result arrived after a later login, logout or
	// restore had already replaced the session, and was discarded.
	ErrSuperseded = errors.New("authsession: superseded by a later transition")

	// ErrInvalidTransition is matched by every *TransitionError.
	ErrInvalidTransition = errors.New("authsession: invalid transition")

	// ErrManagerClosed indicates the Manager was closed.
	ErrManagerClosed = errors.New("authsession: manager closed")
)

// TransitionError reports an event that is not allowed in the current status.
type TransitionError struct {
	From  Status
	Event string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("authsession: no transition from %q on %q", e.From, e.Event)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// ErrorMessage returns the text shown to users for err.
// It returns an empty string for nil.
func ErrorMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrSessionExpired):
		return "Token refresh failed. Please login again."
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid credentials. Please check your username and password."
	case errors.Is(err, ErrNetworkUnavailable):
		return "Network error. Please check your connection."
	case errors.Is(err, ErrStoreUnavailable):
		return "Unable to access saved credentials."
	case errors.Is(err, ErrStorageInconsistent):
		return "Saved session was incomplete. Please login again."
	default:
		return "Server error. Please try again later."
	}
}

// ErrorKind returns a short stable label for err, suitable for metrics.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrSuperseded):
		return "superseded"
	case errors.Is(err, ErrSessionExpired):
		return "session_expired"
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, ErrNetworkUnavailable):
		return "network_unavailable"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrStoreUnavailable):
		return "store_unavailable"
	case errors.Is(err, ErrStorageInconsistent):
		return "storage_inconsistent"
	case errors.Is(err, ErrNotAuthenticated):
		return "not_authenticated"
	default:
		return "backend_unavailable"
	}
}

// classify maps a backend error onto the taxonomy. Errors that already carry
// a sentinel are returned unchanged.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrNetworkUnavailable),
		errors.Is(err, ErrBackendUnavailable),
		errors.Is(err, ErrSessionExpired),
		errors.Is(err, ErrUnauthorized):
		return err
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return errors.Join(ErrNetworkUnavailable, err)
	default:
		return errors.Join(ErrBackendUnavailable, err)
	}
}
