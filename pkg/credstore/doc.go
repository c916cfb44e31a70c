// Package credstore persists the credentials of a client-side authentication
// session: the access token, the refresh token and a cached snapshot of the
// signed-in user's profile.
//
// The package exposes a deliberately small Store contract – Get, Set and Remove
// by string key – and several interchangeable implementations:
//
//   - MemoryStore keeps values in process memory. It is the default and the
//     natural fake for tests.
//   - FileStore keeps a single JSON document on disk and replaces it atomically
//     on every write.
//   - RedisStore keeps values in Redis under a configurable key prefix.
//   - EncryptedStore wraps any other Store and seals every value with
//     AES-256-GCM before it reaches the underlying storage.
//
// Stores never validate values and never provide atomicity across keys. Callers
// that write several keys must tolerate observing a partial write later.
//
// # Usage
//
//	store, err := credstore.Open(ctx, credstore.Config{Driver: credstore.DriverFile, FilePath: "creds.json"})
//	if err != nil {
//	    return err
//	}
//	_ = store.Set(credstore.KeyAccessToken, "A1")
//	token, err := store.Get(credstore.KeyAccessToken)
//	if errors.Is(err, credstore.ErrKeyNotFound) {
//	    // not signed in
//	}
//
// # Errors
//
// Absent keys are reported with ErrKeyNotFound. All other errors indicate the
// storage itself is unavailable or corrupted and are joined with one of the
// package sentinels.
package credstore
