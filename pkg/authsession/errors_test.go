package authsession_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/authclient/pkg/authsession"
)

func TestErrorMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{authsession.ErrInvalidCredentials, "Invalid credentials. Please check your username and password."},
		{errors.Join(authsession.ErrNetworkUnavailable, errors.New("dial tcp")), "Network error. Please check your connection."},
		{authsession.ErrBackendUnavailable, "Server error. Please try again later."},
		{errors.New("anything else"), "Server error. Please try again later."},
		{errors.Join(authsession.ErrSessionExpired, authsession.ErrNetworkUnavailable), "Token refresh failed. Please login again."},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, authsession.ErrorMessage(tt.err))
	}
}

func TestErrorKind(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ok", authsession.ErrorKind(nil))
	assert.Equal(t, "invalid_credentials", authsession.ErrorKind(authsession.ErrInvalidCredentials))
	assert.Equal(t, "session_expired", authsession.ErrorKind(errors.Join(authsession.ErrSessionExpired, errors.New("x"))))
	assert.Equal(t, "superseded", authsession.ErrorKind(errors.Join(authsession.ErrSessionExpired, authsession.ErrSuperseded)))
	assert.Equal(t, "backend_unavailable", authsession.ErrorKind(errors.New("boom")))
}
