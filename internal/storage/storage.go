// Package storage persists small key/value client state between runs.
// It is the local-storage analog for a terminal client: a single JSON file
// holding string keys, rewritten atomically on every change.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Store is the minimal key/value contract the session layer needs.
type Store interface {
	// Get returns the value for key, and whether it was present.
	Get(key string) (string, bool)
	// Set writes key=value and persists immediately.
	Set(key, value string) error
	// Delete removes key and persists immediately. Deleting a missing key is a no-op.
	Delete(key string) error
}

// FileStore persists keys to a JSON file. Safe for concurrent use.
type FileStore struct {
	mu   sync.Mutex
	path string
	data map[string]string
}

// NewFileStore loads (or lazily creates) the store at path. A missing file
// yields an empty store; a corrupt file is discarded rather than failing
// startup, since client state is always recoverable by logging in again.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path, data: map[string]string{}}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("read state file: %w", err)
	}
	if err := json.Unmarshal(raw, &s.data); err != nil {
		s.data = map[string]string{}
	}
	return s, nil
}

// Get implements Store.
func (s *FileStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok
}

// Set implements Store.
func (s *FileStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return s.flushLocked()
}

// Delete implements Store.
func (s *FileStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[key]; !ok {
		return nil
	}
	delete(s.data, key)
	return s.flushLocked()
}

// flushLocked writes the full map to a temp file and renames it into place,
// so a crash mid-write never leaves a truncated state file.
func (s *FileStore) flushLocked() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}

// MemStore is an in-memory Store for tests.
type MemStore struct {
	mu   sync.Mutex
	data map[string]string
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{data: map[string]string{}}
}

// Get implements Store.
func (s *MemStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok
}

// Set implements Store.
func (s *MemStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

// Delete implements Store.
func (s *MemStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}
