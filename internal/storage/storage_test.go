package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "session.json")

	s, err := NewFileStore(path)
	require.NoError(t, err)

	_, ok := s.Get("authToken")
	assert.False(t, ok)

	require.NoError(t, s.Set("authToken", "tok-123"))
	require.NoError(t, s.Set("user", `{"id":1}`))

	v, ok := s.Get("authToken")
	require.True(t, ok)
	assert.Equal(t, "tok-123", v)

	// A fresh store over the same file sees the persisted values.
	reopened, err := NewFileStore(path)
	require.NoError(t, err)
	v, ok = reopened.Get("user")
	require.True(t, ok)
	assert.Equal(t, `{"id":1}`, v)

	require.NoError(t, reopened.Delete("authToken"))
	_, ok = reopened.Get("authToken")
	assert.False(t, ok)

	third, err := NewFileStore(path)
	require.NoError(t, err)
	_, ok = third.Get("authToken")
	assert.False(t, ok, "deletes must be persisted too")
}

func TestFileStoreDiscardsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{{{not json"), 0o600))

	s, err := NewFileStore(path)
	require.NoError(t, err, "a corrupt state file must not be fatal")
	_, ok := s.Get("authToken")
	assert.False(t, ok)

	// The store stays usable and overwrites the corrupt content.
	require.NoError(t, s.Set("k", "v"))
	reopened, err := NewFileStore(path)
	require.NoError(t, err)
	v, ok := reopened.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestMemStore(t *testing.T) {
	s := NewMemStore()
	require.NoError(t, s.Set("k", "v"))
	v, ok := s.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", v)
	require.NoError(t, s.Delete("k"))
	_, ok = s.Get("k")
	assert.False(t, ok)
}
