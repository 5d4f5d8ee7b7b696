package storage

import (
	"context"
	"slices"
	"sync"

	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/person"
)

// MemoryStore keeps datasets in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	datasets map[string]*Dataset
}

// NewMemoryStore creates an empty in-memory repository.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{datasets: make(map[string]*Dataset)}
}

func (s *MemoryStore) Load(ctx context.Context, name string) (*Dataset, error) {
	if err := errors.ValidateDatasetName(name); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	ds, ok := s.datasets[name]
	if !ok {
		return nil, notFound(name)
	}
	out := *ds
	out.People = clonePeople(ds.People)
	return &out, nil
}

func (s *MemoryStore) Save(ctx context.Context, name string, people []person.Person) error {
	if err := errors.ValidateDatasetName(name); err != nil {
		return err
	}
	ds, err := newDataset(name, clonePeople(people))
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.datasets[name] = ds
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, name string) error {
	if err := errors.ValidateDatasetName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.datasets[name]; !ok {
		return notFound(name)
	}
	delete(s.datasets, name)
	return nil
}

func (s *MemoryStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.datasets))
	for name := range s.datasets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

// Close does nothing for the memory store.
func (s *MemoryStore) Close() error {
	return nil
}

func clonePeople(people []person.Person) []person.Person {
	out := make([]person.Person, len(people))
	for i, p := range people {
		out[i] = p.Clone()
	}
	return out
}

// Ensure MemoryStore implements Repository.
var _ Repository = (*MemoryStore)(nil)
