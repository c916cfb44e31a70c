package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authclient/pkg/logger"
)

type ctxKey struct{}

func TestNew_JSONWithContextValue(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(
		logger.WithOutput(&buf),
		logger.WithAttr(slog.String("service", "authctl")),
		logger.WithContextValue("request_id", ctxKey{}),
	)

	ctx := context.WithValue(context.Background(), ctxKey{}, "req-1")
	log.InfoContext(ctx, "session restored", logger.Status("authenticated"))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "session restored", rec["msg"])
	assert.Equal(t, "authctl", rec["service"])
	assert.Equal(t, "req-1", rec["request_id"])
	assert.Equal(t, "authenticated", rec["status"])
}

func TestNew_Level(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.WithOutput(&buf), logger.WithLevelName("warn"))

	log.Info("dropped")
	assert.Zero(t, buf.Len())

	log.Warn("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestNew_Development(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.WithDevelopment("authctl"), logger.WithOutput(&buf))

	log.Debug("tick", logger.Transition("authenticated", "refreshing"))
	out := buf.String()
	assert.Contains(t, out, "service=authctl")
	assert.Contains(t, out, "transition.from=authenticated")
	assert.Contains(t, out, "transition.to=refreshing")
}

func TestWithFormat_Invalid(t *testing.T) {
	assert.Panics(t, func() { logger.New(logger.WithFormat("xml")) })
}

func TestDiscard(t *testing.T) {
	log := logger.Discard()
	assert.False(t, log.Enabled(context.Background(), slog.LevelError))
}

func TestAttrs(t *testing.T) {
	assert.True(t, logger.Error(nil).Equal(slog.Attr{}))
	assert.True(t, logger.UserID(nil).Equal(slog.Attr{}))

	err := errors.New("boom")
	assert.Equal(t, err, logger.Error(err).Value.Any())
	assert.Equal(t, "user_id", logger.UserID(int64(1)).Key)
	assert.Equal(t, int64(3), logger.Attempt(3).Value.Int64())
	assert.Equal(t, int64(401), logger.StatusCode(401).Value.Int64())
}
