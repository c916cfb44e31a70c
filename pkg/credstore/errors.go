package credstore

import "errors"

var (
	// ErrKeyNotFound indicates the key holds no value.
	ErrKeyNotFound = errors.New("credstore.key_not_found")

	// ErrEmptyKey indicates an empty key was supplied.
	ErrEmptyKey = errors.New("credstore.empty_key")

	// ErrStorageFailure wraps errors of the underlying storage medium.
	ErrStorageFailure = errors.New("credstore.storage_failure")

	// ErrCorruptedStorage indicates persisted data could not be decoded.
	ErrCorruptedStorage = errors.New("credstore.corrupted")

	// ErrInvalidKey indicates the encryption key has the wrong size.
	ErrInvalidKey = errors.New("credstore.invalid_encryption_key")

	// ErrDecryptFailed indicates a stored value could not be decrypted.
	ErrDecryptFailed = errors.New("credstore.decrypt_failed")

	// ErrUnknownDriver indicates Config.Driver names no known implementation.
	ErrUnknownDriver = errors.New("credstore.unknown_driver")

	// ErrRedisNotReady indicates Redis did not answer within the connect timeout.
	ErrRedisNotReady = errors.New("credstore.redis_not_ready")
)
