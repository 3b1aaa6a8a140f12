package project

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/kafei-ai/treeflow/pkg/errors"
)

const fileExt = ".json"

// FileStore keeps one JSON document per project in a directory.
type FileStore struct {
	dir string
	mu  sync.RWMutex
	now func() time.Time
}

// NewFileStore creates a store rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create project dir: %w", err)
	}
	return &FileStore{dir: dir, now: time.Now}, nil
}

// Dir returns the store directory.
func (s *FileStore) Dir() string { return s.dir }

// Get reads a project.
func (s *FileStore) Get(ctx context.Context, id string) (Project, error) {
	if err := errors.ValidateProjectID(id); err != nil {
		return Project{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path(id))
	if stderrors.Is(err, fs.ErrNotExist) {
		return Project{}, notFound(id)
	}
	if err != nil {
		return Project{}, fmt.Errorf("read project %s: %w", id, err)
	}

	var p Project
	if err := json.Unmarshal(data, &p); err != nil {
		return Project{}, errors.Wrap(errors.ErrCodeInternal, err, "corrupt project %q", id)
	}
	p.Paths = nonNil(p.Paths)
	p.Expanded = nonNil(p.Expanded)
	return p, nil
}

// Put writes a project atomically.
func (s *FileStore) Put(ctx context.Context, p Project) (Project, error) {
	p, err := prepare(p, s.now())
	if err != nil {
		return Project{}, err
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return Project{}, fmt.Errorf("encode project: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(p.ID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return Project{}, fmt.Errorf("write project: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return Project{}, fmt.Errorf("write project: %w", err)
	}
	return p, nil
}

// Delete removes a project file.
func (s *FileStore) Delete(ctx context.Context, id string) error {
	if err := errors.ValidateProjectID(id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(id)); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete project %s: %w", id, err)
	}
	return nil
}

// List returns the IDs of all stored projects.
func (s *FileStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	ids := []string{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), fileExt) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(e.Name(), fileExt))
	}
	slices.Sort(ids)
	return ids, nil
}

// Close is a no-op for file stores.
func (s *FileStore) Close() error { return nil }

func (s *FileStore) path(id string) string {
	return filepath.Join(s.dir, id+fileExt)
}
