package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Missing(t *testing.T) {
	s := New(t.TempDir())

	data, ok, err := s.Load("tokens.json")

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, data)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "rh"))

	err := s.Save("instruments.json", []byte(`{"AAPL":"url"}`))
	require.NoError(t, err)

	data, ok, err := s.Load("instruments.json")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"AAPL":"url"}`, string(data))
}

func TestSave_Permissions(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "rh")
	s := New(dir)

	require.NoError(t, s.Save("tokens.json", []byte("secret")))

	info, err := os.Stat(filepath.Join(dir, "tokens.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestDelete(t *testing.T) {
	s := New(t.TempDir())

	require.NoError(t, s.Save("watchlist.json", []byte(`["AAPL"]`)))
	require.NoError(t, s.Delete("watchlist.json"))

	_, ok, err := s.Load("watchlist.json")
	require.NoError(t, err)
	assert.False(t, ok)

	// Deleting again is not an error
	require.NoError(t, s.Delete("watchlist.json"))
}
