// Package requestid correlates outbound requests with log records.
//
// A request ID stored in the context with WithContext is sent as the
// X-Request-ID header by Transport and added to log records by
// LoggerExtractor. Requests whose context carries no ID get a fresh UUID.
//
//	client := &http.Client{Transport: requestid.NewTransport(nil)}
//	ctx := requestid.WithContext(ctx, requestid.New())
//	log := logger.New(logger.WithContextExtractors(requestid.LoggerExtractor()))
package requestid
