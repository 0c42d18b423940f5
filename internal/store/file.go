package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileStore persists each record as one JSON file in a directory. Writes go
// through a temp file plus rename so a crash never leaves a partial record.
type FileStore struct {
	dir string
}

// NewFileStore creates the directory if needed and returns a file-backed
// record store.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// path maps a record key to a file name. Colons in keys become underscores.
func (s *FileStore) path(key string) string {
	name := strings.NewReplacer(":", "_", "/", "_").Replace(key)
	return filepath.Join(s.dir, name+".json")
}

// Save writes the JSON encoding of value atomically.
func (s *FileStore) Save(_ context.Context, key string, value interface{}) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	target := s.path(key)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write record %s: %w", key, err)
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("publish record %s: %w", key, err)
	}
	return nil
}

// Load decodes the record under key into out.
func (s *FileStore) Load(_ context.Context, key string, out interface{}) error {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("read record %s: %w", key, err)
	}
	return json.Unmarshal(data, out)
}

// Delete removes the record file; a missing file is not an error.
func (s *FileStore) Delete(_ context.Context, key string) error {
	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Close is a no-op.
func (s *FileStore) Close() error { return nil }
