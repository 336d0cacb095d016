// Package history is the advisory local cache: the active session id and a
// transcript blob, overwritten wholesale on every chat update and cleared on
// reset. The backend, not this cache, decides whether a session is valid.
package history

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/csheth/docchat/internal/state"
)

const (
	sessionFile = "session.json"
	chatFile    = "chat_history.json"
)

// Snapshot is the persisted transcript blob.
type Snapshot struct {
	SessionID string              `json:"sessionId"`
	FilePath  string              `json:"filePath,omitempty"`
	Messages  []state.ChatMessage `json:"messages"`
	Timestamp time.Time           `json:"timestamp"`
}

// Store reads and writes the cache under one directory.
type Store struct {
	dir string
}

// NewStore returns a cache rooted at dir; the directory is created lazily.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

type sessionRecord struct {
	SessionID string    `json:"sessionId"`
	SavedAt   time.Time `json:"savedAt"`
}

// SaveSession records the active session id.
func (s *Store) SaveSession(sessionID string) error {
	return s.write(sessionFile, sessionRecord{SessionID: sessionID, SavedAt: time.Now().UTC()})
}

// LoadSession returns the cached session id, or "" when none is cached.
func (s *Store) LoadSession() (string, error) {
	var record sessionRecord
	if err := s.read(sessionFile, &record); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	return record.SessionID, nil
}

// SaveChat overwrites the transcript blob wholesale.
func (s *Store) SaveChat(snap Snapshot) error {
	if snap.Timestamp.IsZero() {
		snap.Timestamp = time.Now().UTC()
	}
	return s.write(chatFile, snap)
}

// LoadChat returns the cached transcript; a missing blob is an empty one.
func (s *Store) LoadChat() (Snapshot, error) {
	var snap Snapshot
	if err := s.read(chatFile, &snap); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Snapshot{}, nil
		}
		return Snapshot{}, err
	}
	return snap, nil
}

// Clear drops both entries; used on reset and when starting a new document.
func (s *Store) Clear() error {
	var firstErr error
	for _, name := range []string{sessionFile, chatFile} {
		err := os.Remove(filepath.Join(s.dir, name))
		if err != nil && !errors.Is(err, os.ErrNotExist) && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (s *Store) write(name string, value any) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.dir, name), data, 0o644)
}

func (s *Store) read(name string, out any) error {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}
