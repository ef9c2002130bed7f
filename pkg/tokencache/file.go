package tokencache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore keeps all entries in a single JSON document on disk.
type FileStore struct {
	path string
}

// NewFileStore returns a store backed by path. The file and its directory are
// created on the first Put.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file location.
func (s *FileStore) Path() string {
	return s.path
}

// readAll returns every entry on disk, or an empty map if the file is missing or unreadable
func (s *FileStore) readAll() map[string]Entry {
	entries := make(map[string]Entry)

	data, err := os.ReadFile(s.path)
	if err != nil {
		return entries
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return make(map[string]Entry)
	}
	return entries
}

func (s *FileStore) Get(_ context.Context, key string) (Entry, bool) {
	e, ok := s.readAll()[key]
	return e, ok
}

func (s *FileStore) Put(_ context.Context, key string, e Entry) error {
	entries := s.readAll()
	entries[key] = e

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("could not create token cache directory: %w", err)
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize token cache: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write token cache: %w", err)
	}
	return nil
}
