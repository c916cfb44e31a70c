// Package authapi is the HTTP client for the authentication endpoints and
// implements authsession.Backend.
//
// Endpoints, relative to Config.BaseURL:
//
//	POST /auth/login/          {"username","password"} -> {"token","refresh_token","user"}
//	POST /auth/token/refresh/  {"refresh_token"}       -> {"token"[,"refresh_token"]}
//	GET  /auth/profile/        bearer                  -> user or {"user": user}
//	POST /auth/logout/         bearer                  -> best effort
//
// Token fields are also accepted as "access_token"/"access" and "refresh".
//
// # Errors
//
// Every failure carries an authsession sentinel:
//
//   - login 400/401: ErrInvalidCredentials
//   - refresh 400/401/403: ErrSessionExpired
//   - profile 401/403: ErrUnauthorized
//   - transport failure or timeout: ErrNetworkUnavailable
//   - any other status or an undecodable body: ErrBackendUnavailable
//
// Non-2xx answers also carry a *StatusError with the server's reason.
package authapi
