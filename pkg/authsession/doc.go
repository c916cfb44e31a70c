// Package authsession manages the client side of an authenticated session:
// login, logout, restore from persisted credentials, proactive renewal and
// single-flight token refresh.
//
// A Manager owns exactly one Session. Every change goes through a pure
// transition function over five statuses:
//
//	unauthenticated --login--> authenticating --ok--> authenticated
//	authenticated --refresh--> refreshing --ok--> authenticated
//	refreshing --fail--> unauthenticated (store cleared)
//	any --logout--> unauthenticated (store cleared)
//	unauthenticated|authenticated|error --restore--> authenticating
//
// Transitions are serialized by a mutex and each applied snapshot is
// published to subscribers in order. Tokens are mirrored into a
// credstore.Store inside the transition that produces them.
//
// # Usage
//
//	store, closeStore, err := credstore.Open(ctx, credstore.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	defer closeStore()
//
//	mgr := authsession.New(authapi.New(apiCfg), store, authsession.WithLogger(log))
//	defer mgr.Close()
//
//	if err := mgr.Restore(ctx); err != nil {
//	    log.Warn("restore failed", logger.Error(err))
//	}
//	if !mgr.Session().IsAuthenticated() {
//	    if err := mgr.Login(ctx, "alice", password); err != nil {
//	        fmt.Println(authsession.ErrorMessage(err))
//	    }
//	}
//
// # Renewal
//
// While authenticated with a refresh token a timer calls Refresh every
// Config.RenewInterval, or earlier if the access token is a JWT whose exp
// claim falls inside the interval. Refresh is single-flight: concurrent
// callers share one backend call and observe the same result. Logout always
// wins over a pending login, refresh or restore; their late results are
// discarded.
//
// # Errors
//
// Failures are reported with the sentinels in errors.go, joined with their
// cause so errors.Is works: ErrInvalidCredentials, ErrNetworkUnavailable,
// ErrBackendUnavailable, ErrSessionExpired, ErrStorageInconsistent,
// ErrStoreUnavailable. ErrorMessage renders the text stored in
// Session.LastError.
package authsession
