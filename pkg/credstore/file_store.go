package credstore

import (
	"encoding/json"
	"errors"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"sync"
)

// FileStore implements Store as a JSON document on the local filesystem.
// The document is loaded once and rewritten on every mutation through a
// temporary file and rename, so readers never observe a half-written file.
type FileStore struct {
	path   string
	perm   fs.FileMode
	mu     sync.RWMutex
	values map[string]string
}

// NewFileStore opens the store at path, loading the document if it exists.
// A missing file is treated as an empty store and created on first write.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, errors.Join(ErrStorageFailure, errors.New("file path is required"))
	}

	s := &FileStore{
		path:   path,
		perm:   0o600,
		values: make(map[string]string),
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return s, nil
	case err != nil:
		return nil, errors.Join(ErrStorageFailure, err)
	}

	if len(data) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(data, &s.values); err != nil {
		return nil, errors.Join(ErrCorruptedStorage, err)
	}
	if s.values == nil {
		s.values = make(map[string]string)
	}

	return s, nil
}

// Get returns the value stored under key.
func (s *FileStore) Get(key string) (string, error) {
	if key == "" {
		return "", ErrEmptyKey
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[key]
	if !ok {
		return "", ErrKeyNotFound
	}
	return v, nil
}

// Set stores value under key and persists the document.
func (s *FileStore) Set(key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := maps.Clone(s.values)
	next[key] = value
	if err := s.persist(next); err != nil {
		return err
	}
	s.values = next
	return nil
}

// Remove deletes key and persists the document.
func (s *FileStore) Remove(key string) error {
	if key == "" {
		return ErrEmptyKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.values[key]; !ok {
		return nil
	}

	next := maps.Clone(s.values)
	delete(next, key)
	if err := s.persist(next); err != nil {
		return err
	}
	s.values = next
	return nil
}

// Path returns the location of the backing file.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) persist(values map[string]string) error {
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return errors.Join(ErrStorageFailure, err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return errors.Join(ErrStorageFailure, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*")
	if err != nil {
		return errors.Join(ErrStorageFailure, err)
	}
	tmpName := tmp.Name()
	// Leftover temp file is removed on any failure below; after rename it no longer exists.
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.Join(ErrStorageFailure, err)
	}
	if err := tmp.Chmod(s.perm); err != nil {
		_ = tmp.Close()
		return errors.Join(ErrStorageFailure, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return errors.Join(ErrStorageFailure, err)
	}
	if err := tmp.Close(); err != nil {
		return errors.Join(ErrStorageFailure, err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		return errors.Join(ErrStorageFailure, err)
	}
	return nil
}
