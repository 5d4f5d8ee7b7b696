package person

import (
	"sync"

	"github.com/matzehuels/kintree/pkg/errors"
)

// Store is the canonical, ordered collection of person records.
//
// Store is safe for concurrent use. Records handed in and out are copies;
// callers cannot mutate stored state except through the Store methods.
type Store struct {
	mu      sync.RWMutex
	order   []ID
	records map[ID]Person
	version uint64
}

// NewStore creates a store pre-loaded with records. It panics if records
// contain a duplicate or invalid entry; use [Store.Replace] for untrusted input.
func NewStore(records ...Person) *Store {
	s := &Store{records: make(map[ID]Person)}
	if len(records) > 0 {
		if err := s.Replace(records); err != nil {
			panic(err)
		}
		s.version = 0
	}
	return s
}

// Add appends a new record.
func (s *Store) Add(p Person) error {
	if err := Validate(p); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[p.ID]; ok {
		return errors.New(errors.ErrCodeDuplicateID, "person %d already exists", p.ID)
	}
	s.records[p.ID] = p.Clone()
	s.order = append(s.order, p.ID)
	s.version++
	return nil
}

// Update applies patch to the record with the given id and returns the
// updated record. The patched record is validated before it is stored.
func (s *Store) Update(id ID, patch Patch) (Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.records[id]
	if !ok {
		return Person{}, errors.New(errors.ErrCodeNotFound, "person %d not found", id)
	}
	next := patch.Apply(cur)
	if err := Validate(next); err != nil {
		return Person{}, err
	}
	s.records[id] = next
	s.version++
	return next.Clone(), nil
}

// Remove deletes the record with the given id. Links to it held by other
// records are left in place and become dangling.
func (s *Store) Remove(id ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return errors.New(errors.ErrCodeNotFound, "person %d not found", id)
	}
	delete(s.records, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.version++
	return nil
}

// Get returns the record with the given id.
func (s *Store) Get(id ID) (Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.records[id]
	if !ok {
		return Person{}, errors.New(errors.ErrCodeNotFound, "person %d not found", id)
	}
	return p.Clone(), nil
}

// Has reports whether a record with the given id exists.
func (s *Store) Has(id ID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.records[id]
	return ok
}

// All returns every record in insertion order.
func (s *Store) All() []Person {
	return s.Find(nil)
}

// Find returns the records matching pred in insertion order.
// A nil predicate matches everything.
func (s *Store) Find(pred func(Person) bool) []Person {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Person, 0, len(s.order))
	for _, id := range s.order {
		p := s.records[id]
		if pred == nil || pred(p) {
			out = append(out, p.Clone())
		}
	}
	return out
}

// Scope returns the records of one tree. TreeAll returns every record.
func (s *Store) Scope(tree string) []Person {
	return s.Find(func(p Person) bool { return p.InTree(tree) })
}

// Trees lists the distinct tree keys in the order they first appear.
func (s *Store) Trees() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool)
	var keys []string
	for _, id := range s.order {
		t := s.records[id].Tree
		if !seen[t] {
			seen[t] = true
			keys = append(keys, t)
		}
	}
	return keys
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Replace swaps the whole content for records. Either every record is
// accepted or the store is left untouched.
func (s *Store) Replace(records []Person) error {
	next := make(map[ID]Person, len(records))
	order := make([]ID, 0, len(records))
	for _, p := range records {
		if err := Validate(p); err != nil {
			return err
		}
		if _, ok := next[p.ID]; ok {
			return errors.New(errors.ErrCodeDuplicateID, "person %d already exists", p.ID)
		}
		next[p.ID] = p.Clone()
		order = append(order, p.ID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = next
	s.order = order
	s.version++
	return nil
}

// Version returns a counter bumped on every successful mutation.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}
