package credstore

// Fixed key names shared by every Store implementation.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyUserProfile  = "user_profile"
)

// Store defines the contract for credential persistence.
// All methods are synchronous and must be safe for concurrent use.
type Store interface {
	// Get returns the value stored under key or ErrKeyNotFound.
	Get(key string) (string, error)

	// Set stores value under key, replacing any previous value.
	Set(key, value string) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(key string) error
}

// Keys returns the credential keys in the order they are cleared.
func Keys() []string {
	return []string{KeyAccessToken, KeyRefreshToken, KeyUserProfile}
}

// Clear removes every credential key from the store and returns the first error.
// All keys are attempted even if an earlier removal fails.
func Clear(s Store) error {
	var firstErr error
	for _, key := range Keys() {
		if err := s.Remove(key); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
