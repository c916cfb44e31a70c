package credstore_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authclient/pkg/credstore"
)

func TestFileStore(t *testing.T) {
	t.Parallel()

	t.Run("missing file is empty store", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "nested", "creds.json")

		store, err := credstore.NewFileStore(path)
		require.NoError(t, err)

		_, err = store.Get(credstore.KeyAccessToken)
		assert.ErrorIs(t, err, credstore.ErrKeyNotFound)
		_, statErr := os.Stat(path)
		assert.True(t, os.IsNotExist(statErr), "file must not be created by reads")
	})

	t.Run("values survive reopen", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "creds.json")

		store, err := credstore.NewFileStore(path)
		require.NoError(t, err)
		require.NoError(t, store.Set(credstore.KeyAccessToken, "A1"))
		require.NoError(t, store.Set(credstore.KeyRefreshToken, "R1"))
		require.NoError(t, store.Remove(credstore.KeyAccessToken))

		reopened, err := credstore.NewFileStore(path)
		require.NoError(t, err)

		_, err = reopened.Get(credstore.KeyAccessToken)
		assert.ErrorIs(t, err, credstore.ErrKeyNotFound)
		v, err := reopened.Get(credstore.KeyRefreshToken)
		require.NoError(t, err)
		assert.Equal(t, "R1", v)
	})

	t.Run("file is private", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "creds.json")

		store, err := credstore.NewFileStore(path)
		require.NoError(t, err)
		require.NoError(t, store.Set(credstore.KeyRefreshToken, "R1"))

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	})

	t.Run("corrupted document", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "creds.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

		_, err := credstore.NewFileStore(path)
		assert.ErrorIs(t, err, credstore.ErrCorruptedStorage)
	})

	t.Run("no temp files left behind", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		store, err := credstore.NewFileStore(filepath.Join(dir, "creds.json"))
		require.NoError(t, err)
		require.NoError(t, store.Set(credstore.KeyAccessToken, "A1"))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})
}
