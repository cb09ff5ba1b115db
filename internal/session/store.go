package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Store persists credentials across restarts.
type Store interface {
	// Load returns the saved credentials. ok is false when nothing is saved.
	Load() (creds Credentials, ok bool, err error)
	Save(creds Credentials) error
	Clear() error
}

// Ensure implementations satisfy Store.
var (
	_ Store = (*FileStore)(nil)
	_ Store = (*MemoryStore)(nil)
)

// storeVersion should be incremented when the file format changes
const storeVersion = 1

type fileRecord struct {
	Version     int         `json:"version"`
	Credentials Credentials `json:"credentials"`
}

// FileStore keeps credentials in a JSON file readable only by the owner.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a store at path. An empty path selects the default
// location in the user config directory.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(configDir, "codewatch", "session.json")
	}
	return &FileStore{path: path}, nil
}

// Path returns the file location.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the credentials from disk
func (s *FileStore) Load() (Credentials, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Credentials{}, false, nil
		}
		return Credentials{}, false, err
	}

	var rec fileRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return Credentials{}, false, fmt.Errorf("failed to parse session file: %w", err)
	}

	// Treat an old format as no session rather than guessing
	if rec.Version != storeVersion {
		return Credentials{}, false, nil
	}

	return rec.Credentials, !rec.Credentials.IsZero(), nil
}

// Save writes the credentials to disk
func (s *FileStore) Save(creds Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	data, err := json.MarshalIndent(fileRecord{Version: storeVersion, Credentials: creds}, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.path, data, 0600)
}

// Clear removes the session file
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// MemoryStore keeps credentials for the process lifetime only.
type MemoryStore struct {
	mu    sync.Mutex
	creds Credentials
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load() (Credentials, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creds, !s.creds.IsZero(), nil
}

func (s *MemoryStore) Save(creds Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = creds
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = Credentials{}
	return nil
}
