package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/formlens/formlens/internal/utils"
)

const (
	sessionsFileName = "sessions.json"
	artifactsDirName = "sources"
)

// FileStore persists the session collection as pretty JSON in a single
// file, written atomically, with original source files kept alongside.
type FileStore struct {
	dir string
}

// NewFileStore creates the backing directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("store directory not set")
	}
	if err := utils.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("ensure store dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the on-disk location of the store.
func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) sessionsPath() string {
	return filepath.Join(s.dir, sessionsFileName)
}

func (s *FileStore) artifactPath(id string) string {
	return filepath.Join(s.dir, artifactsDirName, id+".csv")
}

// Load reads the persisted collection. A missing file is an empty
// collection, not an error.
func (s *FileStore) Load() ([]Session, error) {
	b, err := os.ReadFile(s.sessionsPath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read sessions: %w", err)
	}
	var sessions []Session
	if err := json.Unmarshal(b, &sessions); err != nil {
		return nil, fmt.Errorf("parse sessions: %w", err)
	}
	return sessions, nil
}

// Save writes the full collection atomically.
func (s *FileStore) Save(sessions []Session) error {
	data, err := utils.PrettyJSON(sessions)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(s.sessionsPath(), data)
}

// WriteArtifact stores the unmodified source bytes for a session.
func (s *FileStore) WriteArtifact(id string, data []byte) error {
	if err := utils.EnsureDir(filepath.Join(s.dir, artifactsDirName)); err != nil {
		return fmt.Errorf("ensure sources dir: %w", err)
	}
	return utils.SafeWriteFile(s.artifactPath(id), data)
}

// ReadArtifact returns the stored source bytes for a session.
func (s *FileStore) ReadArtifact(id string) ([]byte, error) {
	b, err := os.ReadFile(s.artifactPath(id))
	if err != nil {
		return nil, fmt.Errorf("read source artifact: %w", err)
	}
	return b, nil
}

// RemoveArtifact deletes the stored source bytes, if any.
func (s *FileStore) RemoveArtifact(id string) error {
	err := os.Remove(s.artifactPath(id))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove source artifact: %w", err)
	}
	return nil
}

// LoadSeed reads a baseline session set from a JSON file. A missing
// path yields an empty seed.
func LoadSeed(path string) ([]Session, error) {
	if path == "" {
		return nil, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read seed: %w", err)
	}
	var sessions []Session
	if err := json.Unmarshal(b, &sessions); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	return sessions, nil
}
