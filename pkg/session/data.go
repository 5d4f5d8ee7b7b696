package session

import (
	"context"
	"time"

	"github.com/matzehuels/kintree/pkg/forest"
	kio "github.com/matzehuels/kintree/pkg/io"
	"github.com/matzehuels/kintree/pkg/person"
	"github.com/matzehuels/kintree/pkg/storage"
)

// ImportMode controls how decoded records are combined with the store.
type ImportMode int

const (
	// ImportReplace swaps the whole store for the decoded records.
	ImportReplace ImportMode = iota
	// ImportAppend adds the decoded records after the existing ones. Any
	// id collision rejects the whole import.
	ImportAppend
)

// Import decodes data with c and loads the records into the store. On
// failure the store is unchanged. Fold state is cleared because it refers to
// the previous records.
func (s *Session) Import(ctx context.Context, c kio.Codec, data []byte, mode ImportMode) (int, error) {
	people, err := kio.Decode(ctx, c, data)
	if err != nil {
		return 0, err
	}
	if err := s.load(people, mode); err != nil {
		return 0, err
	}
	s.logger.Info("imported records", "format", c.Format(), "people", len(people))
	return len(people), nil
}

// Export encodes the records of the selected tree with c.
func (s *Session) Export(ctx context.Context, c kio.Codec) ([]byte, error) {
	return kio.Encode(ctx, c, s.store, s.view.Tree())
}

// Load replaces the store content with a stored dataset.
func (s *Session) Load(ctx context.Context, repo storage.Repository, name string) error {
	ds, err := repo.Load(ctx, name)
	if err != nil {
		return err
	}
	if err := s.load(ds.People, ImportReplace); err != nil {
		return err
	}
	s.logger.Info("loaded dataset", "name", name, "people", len(ds.People), "saved", ds.SavedAt.Format(time.RFC3339))
	return nil
}

// Save writes every record of the store, regardless of the selected tree.
func (s *Session) Save(ctx context.Context, repo storage.Repository, name string) error {
	people := s.store.All()
	if err := repo.Save(ctx, name, people); err != nil {
		return err
	}
	s.logger.Info("saved dataset", "name", name, "people", len(people))
	return nil
}

func (s *Session) load(people []person.Person, mode ImportMode) error {
	if mode == ImportAppend {
		people = append(s.store.All(), people...)
	}
	if err := s.store.Replace(people); err != nil {
		return err
	}
	s.view.ResetForTree(s.view.Tree())
	s.invalidate()
	return nil
}

// Report collects every recovered defect of the selected tree.
type Report struct {
	Tree        string
	People      int
	Diagnostics []forest.Diagnostic
	Unresolved  []forest.Unresolved
	Conflicts   []forest.Conflict
}

// Clean reports whether the build recovered from nothing.
func (r Report) Clean() bool {
	return len(r.Diagnostics) == 0 && len(r.Unresolved) == 0 && len(r.Conflicts) == 0
}

// Check returns the defect report of the selected tree.
func (s *Session) Check(ctx context.Context) Report {
	s.refresh(ctx)
	return Report{
		Tree:        s.forest.Tree(),
		People:      s.forest.Len(),
		Diagnostics: s.forest.Diagnostics(),
		Unresolved:  s.forest.Unresolved(),
		Conflicts:   s.gens.Conflicts(),
	}
}
