// Package authhttp attaches the session's bearer token to outbound requests
// and recovers from authentication rejections.
//
// Transport is an http.RoundTripper. On a 401 response it renews the token
// through the Session (joining a renewal already in flight) and replays the
// request exactly once. A replay that is rejected again, a missing refresh
// token, or a failed renewal force a logout, but only while the session still
// holds the token the rejected request carried. A caller whose context ends
// while waiting for a shared renewal gets its context error and leaves the
// session alone. Other responses and transport errors pass through untouched.
//
// # Usage
//
//	client := authhttp.NewClient(mgr, authhttp.WithLogger(log))
//	resp, err := client.Get("https://api.example.com/api/orders/")
//	if errors.Is(err, authsession.ErrSessionExpired) {
//	    // session dropped; ask the user to sign in again
//	}
//
// Request bodies are buffered when the request has no GetBody so they can be
// replayed.
package authhttp
