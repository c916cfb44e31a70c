package authsession

import "context"

// Status is the lifecycle state of a Session.
type Status string

const (
	StatusUnauthenticated Status = "unauthenticated"
	StatusAuthenticating  Status = "authenticating"
	StatusAuthenticated   Status = "authenticated"
	StatusRefreshing      Status = "refreshing"
	StatusError           Status = "error"
)

func (s Status) String() string { return string(s) }

// User is the profile snapshot returned by the backend.
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	FirstName    string `json:"first_name,omitempty"`
	LastName     string `json:"last_name,omitempty"`
	ProfileImage string `json:"profile_image,omitempty"`
}

// DisplayName returns "First Last" when available, otherwise the username.
func (u User) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.Username
	}
}

// Session is an immutable snapshot of the authentication state.
//
// AccessToken is set only in StatusAuthenticated and StatusRefreshing.
// User is set only in StatusAuthenticated.
type Session struct {
	Status       Status
	AccessToken  string
	RefreshToken string
	User         *User
	LastError    string
}

// IsAuthenticated reports whether requests can carry a bearer token.
func (s Session) IsAuthenticated() bool {
	return s.Status == StatusAuthenticated || s.Status == StatusRefreshing
}

// IsLoading reports whether a login or restore is in progress.
func (s Session) IsLoading() bool {
	return s.Status == StatusAuthenticating
}

// clone returns a copy that shares no pointers with s.
func (s Session) clone() Session {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

// Credentials are the username and password submitted to Login.
type Credentials struct {
	Username string
	Password string
}

// LoginResult is a successful backend login response.
type LoginResult struct {
	AccessToken  string
	RefreshToken string
	User         User
}

// RefreshResult is a successful backend renewal. RefreshToken is empty
// unless the backend rotated it.
type RefreshResult struct {
	AccessToken  string
	RefreshToken string
}

// Backend is the remote authentication service.
// Implementations map failures onto the package sentinels; anything else is
// treated as ErrBackendUnavailable.
type Backend interface {
	Login(ctx context.Context, creds Credentials) (LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (RefreshResult, error)
	Profile(ctx context.Context, accessToken string) (User, error)
	Logout(ctx context.Context, accessToken string) error
}
