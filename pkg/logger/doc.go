// Package logger builds *slog.Logger instances with a consistent set of
// options and attribute helpers for the auth client packages.
//
// New applies functional options – output format, level, writer, static
// attributes and context extractors – and returns a logger whose handler runs
// every registered ContextExtractor before delegating to the text or JSON
// handler. Discard returns a logger that drops everything and is the default
// for every component that accepts WithLogger.
//
// # Usage
//
//	log := logger.New(
//	    logger.WithDevelopment("authctl"),
//	    logger.WithContextValue("request_id", requestIDKey{}),
//	)
//	log.Info("session restored", logger.Status("authenticated"), logger.UserID(42))
//
// Helpers such as Error and UserID return an empty slog.Attr for nil input so
// they can be passed unconditionally.
package logger
