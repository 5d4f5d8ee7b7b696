// Package session ties one person store to the derived state a browser of it
// needs: the selected tree, the cached forest and generations, fold state and
// a relationship resolver.
//
// The forest is rebuilt lazily. Every accessor compares the store version
// with the version the cache was built from and rebuilds from scratch when
// they differ, so mutations through [Session.Store] never leave stale
// children lists or generation numbers behind.
//
// # Usage
//
//	s := session.New(person.NewStore(records...), session.WithLogger(logger))
//	if err := s.SelectTree("pendle"); err != nil {
//	    return err
//	}
//	for _, n := range s.Nodes(ctx) {
//	    fmt.Println(strings.Repeat("  ", n.Depth), n.Name)
//	}
//	rel, err := s.Relate(ctx, 4, 9)
//
// A Session is not safe for concurrent use; callers sharing one across
// goroutines must serialize access.
package session

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/forest"
	"github.com/matzehuels/kintree/pkg/kinship"
	"github.com/matzehuels/kintree/pkg/observability"
	"github.com/matzehuels/kintree/pkg/person"
	"github.com/matzehuels/kintree/pkg/view"
)

// Session is one user's working state over a person store.
type Session struct {
	ID        string
	CreatedAt time.Time

	store  *person.Store
	view   *view.Controller
	logger *log.Logger

	built    uint64
	forest   *forest.Forest
	gens     *forest.Generations
	resolver *kinship.Resolver
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger used for rebuild and import messages.
func WithLogger(l *log.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithTree selects the initial tree key. Defaults to person.TreeAll.
func WithTree(tree string) Option {
	return func(s *Session) { s.view.ResetForTree(tree) }
}

// New creates a session over store. A nil store starts empty.
func New(store *person.Store, opts ...Option) *Session {
	if store == nil {
		store = person.NewStore()
	}
	s := &Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		store:     store,
		view:      view.New(person.TreeAll),
		logger:    log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the underlying person store.
func (s *Session) Store() *person.Store { return s.store }

// View returns the fold state controller.
func (s *Session) View() *view.Controller { return s.view }

// Tree returns the selected tree key.
func (s *Session) Tree() string { return s.view.Tree() }

// Trees returns the tree keys present in the store, preceded by
// person.TreeAll.
func (s *Session) Trees() []string {
	return append([]string{person.TreeAll}, s.store.Trees()...)
}

// SelectTree switches to another tree key. Fold state is cleared even when
// the key is unchanged.
func (s *Session) SelectTree(tree string) error {
	if err := errors.ValidateTreeKey(tree); err != nil {
		return err
	}
	s.view.ResetForTree(tree)
	s.invalidate()
	s.logger.Debug("tree selected", "tree", tree)
	return nil
}

func (s *Session) invalidate() {
	s.forest, s.gens, s.resolver = nil, nil, nil
}

// refresh rebuilds the forest when the store changed since the last build.
func (s *Session) refresh(ctx context.Context) {
	version := s.store.Version()
	if s.forest != nil && s.built == version {
		return
	}
	start := time.Now()
	f := forest.Build(s.store.All(), s.view.Tree())
	g := forest.AssignGenerations(f)
	elapsed := time.Since(start)

	s.forest, s.gens, s.built = f, g, version
	s.resolver = kinship.NewResolver(f)
	s.view.SetGenerations(g)

	diags := len(f.Diagnostics()) + len(f.Unresolved())
	observability.Engine().OnBuild(ctx, f.Tree(), f.Len(), diags, len(g.Conflicts()), elapsed)
	s.logger.Debug("forest built",
		"tree", f.Tree(),
		"people", f.Len(),
		"roots", len(f.Roots()),
		"generations", g.Depth(),
		"diagnostics", diags,
		"elapsed", elapsed.Round(time.Microsecond),
	)
}

// Forest returns the forest of the selected tree.
func (s *Session) Forest(ctx context.Context) *forest.Forest {
	s.refresh(ctx)
	return s.forest
}

// Generations returns the generation map of the selected tree.
func (s *Session) Generations(ctx context.Context) *forest.Generations {
	s.refresh(ctx)
	return s.gens
}

// Nodes returns the render list of the selected tree.
func (s *Session) Nodes(ctx context.Context) []view.Node {
	s.refresh(ctx)
	return s.view.Nodes(s.forest)
}

// Relate resolves how a relates to b within the selected tree.
func (s *Session) Relate(ctx context.Context, a, b person.ID) (kinship.Relationship, error) {
	s.refresh(ctx)
	start := time.Now()
	rel, err := s.resolver.Resolve(a, b)
	kind := string(rel.Kind)
	if err != nil {
		kind = string(errors.GetCode(err))
	}
	observability.Engine().OnResolve(ctx, kind, time.Since(start), err)
	return rel, err
}

// ToggleFold flips the fold flag of id and returns the new value.
func (s *Session) ToggleFold(ctx context.Context, id person.ID) (bool, error) {
	s.refresh(ctx)
	if !s.forest.Contains(id) {
		return false, errors.New(errors.ErrCodeNotFound, "person %d not found", id)
	}
	return s.view.ToggleFold(id), nil
}

// CollapseAll folds every person with children in the selected tree.
func (s *Session) CollapseAll(ctx context.Context) {
	s.refresh(ctx)
	s.view.CollapseAll(s.forest)
}

// ExpandAll clears every fold flag.
func (s *Session) ExpandAll() {
	s.view.ExpandAll()
}
