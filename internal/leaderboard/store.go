package leaderboard

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Store persists leaderboard entries.
type Store interface {
	Load() ([]Entry, error)
	Save(entries []Entry) error
}

// fileFormat is the on-disk JSON document.
type fileFormat struct {
	Version int     `json:"version"`
	Entries []Entry `json:"entries"`
}

const fileVersion = 1

// FileStore keeps entries in a JSON file. Writes go to a temporary file in the
// same directory and are renamed over the target.
type FileStore struct {
	Path string
}

// NewFileStore returns a store backed by path.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// Load reads the file. A missing file is an empty leaderboard.
func (s *FileStore) Load() ([]Entry, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read scores: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var f fileFormat
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode scores %s: %w", s.Path, err)
	}
	if f.Version > fileVersion {
		return nil, fmt.Errorf("scores %s: unsupported version %d", s.Path, f.Version)
	}
	return f.Entries, nil
}

// Save writes entries atomically.
func (s *FileStore) Save(entries []Entry) error {
	data, err := json.MarshalIndent(fileFormat{Version: fileVersion, Entries: entries}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode scores: %w", err)
	}

	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create scores dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".scores-*.json")
	if err != nil {
		return fmt.Errorf("create temp scores: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("write scores: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close scores: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return fmt.Errorf("replace scores: %w", err)
	}
	return nil
}

// MemoryStore keeps entries in memory. Used by tests and when no file is configured.
type MemoryStore struct {
	mu      sync.Mutex
	entries []Entry
	saves   int
}

// NewMemoryStore returns a store preloaded with entries.
func NewMemoryStore(entries ...Entry) *MemoryStore {
	return &MemoryStore{entries: append([]Entry(nil), entries...)}
}

// Load returns a copy of the stored entries.
func (s *MemoryStore) Load() ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Entry(nil), s.entries...), nil
}

// Save replaces the stored entries.
func (s *MemoryStore) Save(entries []Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries[:0], entries...)
	s.saves++
	return nil
}

// Saves returns how many times Save was called.
func (s *MemoryStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}
