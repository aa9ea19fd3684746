package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

// DiskStore writes results as JSON files to a lazily-created temp directory.
type DiskStore struct {
	mu  sync.Mutex
	dir string
}

// NewDiskStore creates a DiskStore. Its directory is created on first use.
func NewDiskStore() *DiskStore {
	return &DiskStore{}
}

// Save writes a result as <id>.json.
func (s *DiskStore) Save(result *RunResult) error {
	path, err := s.path(result.ID)
	if err != nil {
		return err
	}
	data, err := json.Marshal(result)
	if err != nil {
		return errors.Wrapf(err, "marshalling run %s", result.ID)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errors.Wrapf(err, "writing run %s", result.ID)
	}
	return nil
}

// Load reads a result written by Save.
func (s *DiskStore) Load(runID string) (*RunResult, error) {
	path, err := s.path(runID)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrNotFound, "run %s", runID)
		}
		return nil, errors.Wrapf(err, "reading run %s", runID)
	}
	var result RunResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, errors.Wrapf(err, "unmarshalling run %s", runID)
	}
	return &result, nil
}

// Dir returns the storage directory, or "" before first use.
func (s *DiskStore) Dir() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dir
}

// path maps a run ID to its file. IDs are uuids; anything else is rejected
// so a caller-supplied ID cannot name a file outside the directory.
func (s *DiskStore) path(runID string) (string, error) {
	if _, err := uuid.Parse(runID); err != nil {
		return "", errors.Wrapf(ErrNotFound, "run %q", runID)
	}
	dir, err := s.ensureDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, runID+".json"), nil
}

func (s *DiskStore) ensureDir() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dir != "" {
		return s.dir, nil
	}
	dir, err := os.MkdirTemp("", "procbridge-runs-*")
	if err != nil {
		return "", errors.Wrap(err, "creating result directory")
	}
	s.dir = dir
	return dir, nil
}
