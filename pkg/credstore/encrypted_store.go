package credstore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	// KeySize is the required master key size (AES-256).
	KeySize = 32

	hkdfInfo = "authclient-credstore-v1"
)

// EncryptedStore seals values with AES-256-GCM before handing them to the
// wrapped Store. The key name is bound as additional data, so a ciphertext
// copied under another key fails to decrypt.
type EncryptedStore struct {
	next Store
	aead cipher.AEAD
}

// NewEncryptedStore derives the data key from masterKey and salt with
// HKDF-SHA256 and wraps next. The salt may be empty.
func NewEncryptedStore(next Store, masterKey, salt []byte) (*EncryptedStore, error) {
	if len(masterKey) != KeySize {
		return nil, ErrInvalidKey
	}

	key := make([]byte, KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, masterKey, salt, []byte(hkdfInfo)), key); err != nil {
		return nil, errors.Join(ErrInvalidKey, err)
	}
	defer clear(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.Join(ErrInvalidKey, err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errors.Join(ErrInvalidKey, err)
	}

	return &EncryptedStore{next: next, aead: aead}, nil
}

// Get decrypts the value stored under key.
func (s *EncryptedStore) Get(key string) (string, error) {
	sealed, err := s.next.Get(key)
	if err != nil {
		return "", err
	}

	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", errors.Join(ErrDecryptFailed, err)
	}

	nonceSize := s.aead.NonceSize()
	if len(raw) < nonceSize {
		return "", ErrDecryptFailed
	}

	nonce, ciphertext := raw[:nonceSize], raw[nonceSize:]
	plaintext, err := s.aead.Open(nil, nonce, ciphertext, []byte(key))
	if err != nil {
		return "", errors.Join(ErrDecryptFailed, err)
	}
	return string(plaintext), nil
}

// Set encrypts value and stores it under key.
func (s *EncryptedStore) Set(key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}

	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return errors.Join(ErrStorageFailure, err)
	}

	// Output layout: nonce | ciphertext | tag
	sealed := s.aead.Seal(nonce, nonce, []byte(value), []byte(key))
	return s.next.Set(key, base64.StdEncoding.EncodeToString(sealed))
}

// Remove deletes key from the wrapped store.
func (s *EncryptedStore) Remove(key string) error {
	return s.next.Remove(key)
}

// GenerateKey returns a random master key suitable for NewEncryptedStore.
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	return key, nil
}
