package person

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/kintree/pkg/errors"
)

func ids(ps []Person) []ID {
	out := make([]ID, len(ps))
	for i, p := range ps {
		out[i] = p.ID
	}
	return out
}

func TestStoreAdd(t *testing.T) {
	s := NewStore()
	if err := s.Add(Person{ID: 1, Name: "A"}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	err := s.Add(Person{ID: 1, Name: "Other"})
	if !errors.Is(err, errors.ErrCodeDuplicateID) {
		t.Errorf("Add(duplicate) error = %v, want DUPLICATE_ID", err)
	}
	if err := s.Add(Person{ID: 2}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Add(no name) error = %v, want INVALID_INPUT", err)
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
	p, _ := s.Get(1)
	if p.Name != "A" {
		t.Errorf("Get(1).Name = %q, want %q", p.Name, "A")
	}
}

func TestStoreUpdate(t *testing.T) {
	s := NewStore(Person{ID: 1, Name: "A"})

	name := "B"
	got, err := s.Update(1, Patch{Name: &name})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if got.Name != "B" {
		t.Errorf("Update().Name = %q, want %q", got.Name, "B")
	}

	empty := ""
	v := s.Version()
	if _, err := s.Update(1, Patch{Name: &empty}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Update(empty name) error = %v, want INVALID_INPUT", err)
	}
	if s.Version() != v {
		t.Error("failed Update() bumped the version")
	}
	if p, _ := s.Get(1); p.Name != "B" {
		t.Errorf("failed Update() changed name to %q", p.Name)
	}

	if _, err := s.Update(42, Patch{Name: &name}); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Update(missing) error = %v, want NOT_FOUND", err)
	}
}

func TestStoreRemoveLeavesDanglingLinks(t *testing.T) {
	s := NewStore(
		Person{ID: 1, Name: "A"},
		Person{ID: 2, Name: "B", ParentID: 1},
	)
	if err := s.Remove(1); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if err := s.Remove(1); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Remove(again) error = %v, want NOT_FOUND", err)
	}
	p, err := s.Get(2)
	if err != nil {
		t.Fatalf("Get(2) error = %v", err)
	}
	if p.ParentID != 1 {
		t.Errorf("dependent ParentID = %d, want 1 (left dangling)", p.ParentID)
	}
}

func TestStoreOrderAndScope(t *testing.T) {
	s := NewStore(
		Person{ID: 5, Name: "E", Tree: "smith"},
		Person{ID: 2, Name: "B", Tree: "jones"},
		Person{ID: 9, Name: "I", Tree: "smith"},
	)
	if diff := cmp.Diff([]ID{5, 2, 9}, ids(s.All())); diff != "" {
		t.Errorf("All() order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]ID{5, 9}, ids(s.Scope("smith"))); diff != "" {
		t.Errorf("Scope(smith) mismatch (-want +got):\n%s", diff)
	}
	if got := len(s.Scope(TreeAll)); got != 3 {
		t.Errorf("len(Scope(all)) = %d, want 3", got)
	}
	if diff := cmp.Diff([]string{"smith", "jones"}, s.Trees()); diff != "" {
		t.Errorf("Trees() mismatch (-want +got):\n%s", diff)
	}
	got := s.Find(func(p Person) bool { return p.ID > 4 })
	if diff := cmp.Diff([]ID{5, 9}, ids(got)); diff != "" {
		t.Errorf("Find() mismatch (-want +got):\n%s", diff)
	}
}

func TestStoreReplaceIsAtomic(t *testing.T) {
	s := NewStore(Person{ID: 1, Name: "A"})
	v := s.Version()

	err := s.Replace([]Person{{ID: 3, Name: "C"}, {ID: 3, Name: "D"}})
	if !errors.Is(err, errors.ErrCodeDuplicateID) {
		t.Errorf("Replace(dup) error = %v, want DUPLICATE_ID", err)
	}
	if s.Version() != v || s.Len() != 1 || !s.Has(1) {
		t.Error("failed Replace() modified the store")
	}

	if err := s.Replace([]Person{{ID: 3, Name: "C"}}); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}
	if s.Has(1) || !s.Has(3) {
		t.Error("Replace() did not swap content")
	}
	if s.Version() == v {
		t.Error("Replace() did not bump the version")
	}
}

func TestStoreReturnsCopies(t *testing.T) {
	s := NewStore(Person{ID: 1, Name: "A", Meta: Metadata{"k": 1}})
	p, _ := s.Get(1)
	p.Name = "changed"
	p.Meta["k"] = 2
	q, _ := s.Get(1)
	if q.Name != "A" || q.Meta["k"] != 1 {
		t.Errorf("stored record was mutated through a copy: %+v", q)
	}
}
