package requestid

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dmitrymomot/authclient/pkg/logger"
)

// LogKey is the attribute name request IDs are logged under.
const LogKey = "request_id"

type contextKey struct{}

// New returns a random request ID.
func New() string {
	return uuid.NewString()
}

// WithContext stores requestID in ctx.
func WithContext(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, contextKey{}, requestID)
}

// FromContext returns the request ID stored in ctx, or "".
func FromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	requestID, _ := ctx.Value(contextKey{}).(string)
	return requestID
}

// LoggerExtractor tags log records with the ID of the backend call they
// belong to, so a renewal and the replay it unblocks can be matched with
// the server's access log.
func LoggerExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		requestID := FromContext(ctx)
		if requestID == "" {
			return slog.Attr{}, false
		}
		return slog.String(LogKey, requestID), true
	}
}
