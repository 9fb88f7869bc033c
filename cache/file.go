package cache

import (
	"encoding/hex"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"strings"
)

// FileStore persists values as files under a directory, one file per key.
// Writes go through a temp file plus rename so readers never observe a
// partial value.
type FileStore struct {
	dir string
}

// NewFileStore creates a store rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("cache: creating store directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Read retrieves the persisted value for key. Returns (nil, false) on miss
// or on any read failure; a corrupt mirror is treated as absent.
func (s *FileStore) Read(key string) ([]byte, bool) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		return nil, false
	}
	return data, true
}

// Write persists value under key.
func (s *FileStore) Write(key string, value []byte) error {
	target := s.path(key)
	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("cache: creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("cache: writing value: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("cache: closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("cache: replacing value: %w", err)
	}
	return nil
}

// Delete removes the persisted value. Idempotent.
func (s *FileStore) Delete(key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("cache: deleting value: %w", err)
	}
	return nil
}

// path maps a key to a filesystem-safe file name. Keys containing anything
// beyond [A-Za-z0-9._-] are hashed.
func (s *FileStore) path(key string) string {
	safe := true
	for _, r := range key {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') &&
			!strings.ContainsRune("._-", r) {
			safe = false
			break
		}
	}
	if !safe || key == "" {
		h := fnv.New64a()
		h.Write([]byte(key))
		key = "k" + hex.EncodeToString(h.Sum(nil))
	}
	return filepath.Join(s.dir, key+".cache")
}

var _ Store = (*FileStore)(nil)
