// Package storage persists the session and theme preference across process
// restarts, the way the browser app kept them in local storage.
package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/afero"

	"github.com/jwalitptl/frontdesk/internal/model"
)

// SessionStore is the durable client-side state adapter. Implementations
// must tolerate missing state: LoadSession returns (nil, nil) when nothing
// was saved.
type SessionStore interface {
	LoadSession() (*model.Session, error)
	SaveSession(s *model.Session) error
	ClearSession() error
	LoadTheme() (string, error)
	SaveTheme(theme string) error
}

const (
	sessionFile = "session.json"
	themeFile   = "theme"
)

// FileStore keeps state as files under a directory.
type FileStore struct {
	mu  sync.Mutex
	fs  afero.Fs
	dir string
}

// NewFileStore creates a store rooted at dir on the given filesystem.
func NewFileStore(fs afero.Fs, dir string) *FileStore {
	return &FileStore{fs: fs, dir: dir}
}

func (s *FileStore) LoadSession() (*model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := afero.ReadFile(s.fs, filepath.Join(s.dir, sessionFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var session model.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *FileStore) SaveSession(session *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fs.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return afero.WriteFile(s.fs, filepath.Join(s.dir, sessionFile), data, 0o600)
}

func (s *FileStore) ClearSession() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.fs.Remove(filepath.Join(s.dir, sessionFile))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *FileStore) LoadTheme() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := afero.ReadFile(s.fs, filepath.Join(s.dir, themeFile))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *FileStore) SaveTheme(theme string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fs.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}
	return afero.WriteFile(s.fs, filepath.Join(s.dir, themeFile), []byte(theme), 0o600)
}

// Token implements the API client's token source by reading the persisted
// session, matching the browser app's per-request header lookup.
func (s *FileStore) Token() string {
	session, err := s.LoadSession()
	if err != nil || session == nil {
		return ""
	}
	return session.Token
}
