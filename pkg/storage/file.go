package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/person"
)

// FileStore stores each dataset as a JSON document in a directory.
type FileStore struct {
	mu  sync.RWMutex
	dir string
}

// NewFileStore creates a file-based repository in dir.
// If dir is empty, defaults to ~/.config/kintree/datasets/.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		dir = filepath.Join(home, ".config", "kintree", "datasets")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create dataset dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the root directory.
func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) Load(ctx context.Context, name string) (*Dataset, error) {
	if err := errors.ValidateDatasetName(name); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path(name))
	if os.IsNotExist(err) {
		return nil, notFound(name)
	}
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", name, err)
	}
	var ds Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedJSON, err, "parse dataset %s", name)
	}
	return &ds, nil
}

func (s *FileStore) Save(ctx context.Context, name string, people []person.Person) error {
	if err := errors.ValidateDatasetName(name); err != nil {
		return err
	}
	ds, err := newDataset(name, people)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode dataset %s", name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create dataset dir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write dataset %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write dataset %s: %w", name, err)
	}
	return nil
}

func (s *FileStore) Delete(ctx context.Context, name string) error {
	if err := errors.ValidateDatasetName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(name))
	if os.IsNotExist(err) {
		return notFound(name)
	}
	return err
}

// List reads the name stored in every dataset file under the directory.
func (s *FileStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var names []string
	err := filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".json") {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		var head struct {
			Name string `json:"name"`
		}
		if json.Unmarshal(data, &head) == nil && head.Name != "" {
			names = append(names, head.Name)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list datasets: %w", err)
	}
	slices.Sort(names)
	return names, nil
}

// Close does nothing for the file store.
func (s *FileStore) Close() error {
	return nil
}

// path maps a dataset name to a file. The first two hash characters pick a
// subdirectory to keep directories small.
func (s *FileStore) path(name string) string {
	hash := Hash([]byte(name))
	return filepath.Join(s.dir, hash[:2], hash[2:]+".json")
}

// Ensure FileStore implements Repository.
var _ Repository = (*FileStore)(nil)
