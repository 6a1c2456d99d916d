// Package store persists opaque state blobs between runs.
//
// Three blobs live here: the token state, the instrument cache, and the
// watchlist. A missing blob is not an error: it signals "start empty".
package store

import (
	"errors"
	"os"
	"path/filepath"
)

// Store reads and writes named blobs under a single directory.
type Store struct {
	dir string
}

// New creates a Store rooted at the given directory.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Load reads the named blob. The second return value reports whether the
// blob exists; a missing blob returns (nil, false, nil).
func (s *Store) Load(name string) ([]byte, bool, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

// Save writes the named blob with 0600 permissions, creating the
// directory if needed.
func (s *Store) Save(name string, data []byte) error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.dir, name), data, 0600)
}

// Delete removes the named blob. Removing a missing blob is not an error.
func (s *Store) Delete(name string) error {
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
