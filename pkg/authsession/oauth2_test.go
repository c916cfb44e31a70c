package authsession_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/dmitrymomot/authclient/pkg/authsession"
	"github.com/dmitrymomot/authclient/pkg/credstore"
)

func TestManager_Token(t *testing.T) {
	t.Parallel()

	m := newManager(t, newStubBackend(), credstore.NewMemoryStore())

	_, err := m.Token()
	require.ErrorIs(t, err, authsession.ErrNotAuthenticated)

	require.NoError(t, m.Login(context.Background(), "alice", "correct"))

	tok, err := m.Token()
	require.NoError(t, err)
	assert.Equal(t, "A1", tok.AccessToken)
	assert.Equal(t, "Bearer", tok.Type())
	assert.True(t, tok.Expiry.IsZero(), "opaque tokens have no known expiry")
}

func TestManager_TokenSourceTransport(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer A1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)

	m := newManager(t, newStubBackend(), credstore.NewMemoryStore())
	require.NoError(t, m.Login(context.Background(), "alice", "correct"))

	client := &http.Client{Transport: &oauth2.Transport{Source: m, Base: http.DefaultTransport}}
	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}
