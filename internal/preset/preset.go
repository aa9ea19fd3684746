// Package preset persists named sets of actions together with the
// countdown after which they run.
package preset

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/deixis/procbridge/internal/actions"
)

// ErrNotFound is returned when no preset has the requested ID.
var ErrNotFound = errors.New("preset not found")

// Preset is a saved set of actions.
type Preset struct {
	ID          string           `yaml:"id" json:"id"`
	Name        string           `yaml:"name" json:"name"`
	Description string           `yaml:"description,omitempty" json:"description,omitempty"`
	CreatedAt   time.Time        `yaml:"created_at" json:"created_at"`
	UpdatedAt   time.Time        `yaml:"updated_at" json:"updated_at"`
	Duration    time.Duration    `yaml:"duration" json:"duration"` // countdown before the actions run
	Actions     []actions.Action `yaml:"actions" json:"actions"`
}

// Enabled returns the actions that would run.
func (p *Preset) Enabled() []actions.Action {
	var out []actions.Action
	for _, a := range p.Actions {
		if a.Enabled {
			out = append(out, a)
		}
	}
	return out
}

// New stamps a fresh ID and creation time on a preset.
func New(name, description string, duration time.Duration, list []actions.Action) *Preset {
	now := time.Now().UTC()
	return &Preset{
		ID:          "preset-" + uuid.New().String(),
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
		Duration:    duration,
		Actions:     list,
	}
}

type document struct {
	Presets []*Preset `yaml:"presets"`
}

// FileStore keeps every preset in a single YAML file.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore returns a store backed by path. The file is created on the
// first Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file.
func (s *FileStore) Path() string {
	return s.path
}

// List returns all presets in file order. A missing file is an empty list.
func (s *FileStore) List() ([]*Preset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

// Get returns the preset with id.
func (s *FileStore) Get(id string) (*Preset, error) {
	list, err := s.List()
	if err != nil {
		return nil, err
	}
	for _, p := range list {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, errors.Wrapf(ErrNotFound, "preset %s", id)
}

// Save replaces the preset with the same ID, or appends it.
func (s *FileStore) Save(p *Preset) error {
	if p.ID == "" {
		return errors.New("preset has no id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.read()
	if err != nil {
		return err
	}
	p.UpdatedAt = time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = p.UpdatedAt
	}

	replaced := false
	for i, existing := range list {
		if existing.ID == p.ID {
			list[i] = p
			replaced = true
			break
		}
	}
	if !replaced {
		list = append(list, p)
	}
	return s.write(list)
}

// Delete removes the preset with id.
func (s *FileStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.read()
	if err != nil {
		return err
	}
	kept := list[:0]
	for _, p := range list {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(list) {
		return errors.Wrapf(ErrNotFound, "preset %s", id)
	}
	return s.write(kept)
}

func (s *FileStore) read() ([]*Preset, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "reading %s", s.path)
	}
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", s.path)
	}
	return doc.Presets, nil
}

// write replaces the file atomically via a sibling temp file.
func (s *FileStore) write(list []*Preset) error {
	if list == nil {
		list = []*Preset{}
	}
	data, err := yaml.Marshal(document{Presets: list})
	if err != nil {
		return errors.Wrap(err, "encoding presets")
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "creating %s", dir)
	}
	tmp, err := os.CreateTemp(dir, ".presets-*.yaml")
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return errors.Wrapf(err, "writing %s", tmp.Name())
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return errors.Wrapf(err, "closing %s", tmp.Name())
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		_ = os.Remove(tmp.Name())
		return errors.Wrapf(err, "replacing %s", s.path)
	}
	return nil
}

// Wait blocks for the preset's countdown or until ctx is done.
func Wait(ctx context.Context, p *Preset) error {
	if p.Duration <= 0 {
		return nil
	}
	t := time.NewTimer(p.Duration)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
