package metrics_test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authclient/pkg/authsession"
	"github.com/dmitrymomot/authclient/pkg/credstore"
	"github.com/dmitrymomot/authclient/pkg/metrics"
)

type backend struct{ rejectRefresh bool }

func (b backend) Login(_ context.Context, c authsession.Credentials) (authsession.LoginResult, error) {
	if c.Password != "correct" {
		return authsession.LoginResult{}, authsession.ErrInvalidCredentials
	}
	return authsession.LoginResult{AccessToken: "A1", RefreshToken: "R1", User: authsession.User{ID: 1}}, nil
}

func (b backend) Refresh(context.Context, string) (authsession.RefreshResult, error) {
	if b.rejectRefresh {
		return authsession.RefreshResult{}, authsession.ErrSessionExpired
	}
	return authsession.RefreshResult{AccessToken: "A2"}, nil
}

func (backend) Profile(context.Context, string) (authsession.User, error) {
	return authsession.User{ID: 1}, nil
}

func (backend) Logout(context.Context, string) error { return nil }

func TestCollector_Register(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	c := metrics.NewCollector("authclient")
	require.NoError(t, c.Register(reg))
	assert.Error(t, c.Register(reg), "duplicate registration must fail")

	assert.Equal(t, float64(1), testutil.ToFloat64(c.Status.WithLabelValues("unauthenticated")))
}

func TestCollector_RecordsManagerOutcomes(t *testing.T) {
	t.Parallel()

	c := metrics.NewCollector("authclient")
	m := authsession.New(backend{}, credstore.NewMemoryStore(), authsession.WithRecorder(c))
	t.Cleanup(func() { _ = m.Close() })

	ctx := context.Background()
	require.Error(t, m.Login(ctx, "alice", "wrong"))
	require.NoError(t, m.Login(ctx, "alice", "correct"))
	_, err := m.Refresh(ctx)
	require.NoError(t, err)

	assert.Equal(t, float64(1), testutil.ToFloat64(c.Logins.WithLabelValues("invalid_credentials")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.Logins.WithLabelValues("ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.Refreshes.WithLabelValues("ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.Transitions.WithLabelValues("authenticated", "refreshing")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.Status.WithLabelValues("authenticated")))
	assert.Equal(t, float64(0), testutil.ToFloat64(c.Status.WithLabelValues("refreshing")))
	assert.Equal(t, 1, testutil.CollectAndCount(c.RefreshDuration))
}

func TestCollector_RefreshFailure(t *testing.T) {
	t.Parallel()

	c := metrics.NewCollector("authclient")
	m := authsession.New(backend{rejectRefresh: true}, credstore.NewMemoryStore(), authsession.WithRecorder(c))
	t.Cleanup(func() { _ = m.Close() })

	ctx := context.Background()
	require.NoError(t, m.Login(ctx, "alice", "correct"))
	_, err := m.Refresh(ctx)
	require.ErrorIs(t, err, authsession.ErrSessionExpired)

	assert.Equal(t, float64(1), testutil.ToFloat64(c.Refreshes.WithLabelValues("session_expired")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.Status.WithLabelValues("unauthenticated")))

	require.NoError(t, m.Restore(ctx))
	assert.Zero(t, testutil.ToFloat64(c.Restores.WithLabelValues("ok")), "empty store restore records nothing")
}
