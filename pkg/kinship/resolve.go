package kinship

import (
	"fmt"
	"sync"

	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/forest"
	"github.com/matzehuels/kintree/pkg/person"
)

// Kind is the broad class of a relationship.
type Kind string

const (
	KindBlood   Kind = "blood"
	KindSpouse  Kind = "spouse"
	KindInLaw   Kind = "in-law"
	KindAffinal Kind = "affinal"
)

// LabelAffinal is the label used when the only link runs through marriages
// that no in-law rule covers.
const LabelAffinal = "relative by marriage"

// Relationship describes how A relates to B.
type Relationship struct {
	A        person.ID `json:"a"`
	B        person.ID `json:"b"`
	Kind     Kind      `json:"kind"`
	Label    string    `json:"label"`
	Gendered string    `json:"gendered"`
	Up       int       `json:"up"`
	Down     int       `json:"down"`
	Degree   int       `json:"degree,omitempty"`
	Removed  int       `json:"removed,omitempty"`
	Half     bool      `json:"half,omitempty"`
	// Ancestor is the closest common ancestor the distances are measured
	// from; zero for spouse and affinal relationships.
	Ancestor person.ID `json:"ancestor,omitempty"`
	Path     []Step    `json:"path"`
}

func (r Relationship) String() string { return r.Label }

// Sentence renders "<A> is the <gendered label> of <B>" using names from f.
func (r Relationship) Sentence(f *forest.Forest) string {
	a, _ := f.Person(r.A)
	b, _ := f.Person(r.B)
	return describe(a.Name, r.Gendered, b.Name)
}

// Resolver answers relationship queries against one forest and caches the
// answers. It is safe for concurrent use.
type Resolver struct {
	f *forest.Forest

	mu    sync.RWMutex
	cache map[[2]person.ID]Relationship
}

// NewResolver creates a resolver over f. The forest must not change while
// the resolver is in use; build a new resolver after a rebuild.
func NewResolver(f *forest.Forest) *Resolver {
	return &Resolver{f: f, cache: make(map[[2]person.ID]Relationship)}
}

// Resolve is a convenience for NewResolver(f).Resolve(a, b).
func Resolve(f *forest.Forest, a, b person.ID) (Relationship, error) {
	return NewResolver(f).Resolve(a, b)
}

// Resolve returns how a relates to b.
//
// It fails with NOT_FOUND if either id is not part of the forest,
// SELF_RELATION if a == b and NOT_RELATED if no path connects them.
func (r *Resolver) Resolve(a, b person.ID) (Relationship, error) {
	for _, id := range [...]person.ID{a, b} {
		if !r.f.Contains(id) {
			return Relationship{}, errors.New(errors.ErrCodeNotFound, "person %d not found", id)
		}
	}
	if a == b {
		return Relationship{}, errors.New(errors.ErrCodeSelfRelation, "person %d cannot be related to themselves", a)
	}

	key := [2]person.ID{a, b}
	r.mu.RLock()
	rel, ok := r.cache[key]
	r.mu.RUnlock()
	if ok {
		return rel, nil
	}

	rel, err := r.resolve(a, b)
	if err != nil {
		return Relationship{}, err
	}
	r.mu.Lock()
	r.cache[key] = rel
	r.mu.Unlock()
	return rel, nil
}

func (r *Resolver) resolve(a, b person.ID) (Relationship, error) {
	f := r.f
	rel := Relationship{A: a, B: b, Path: ShortestPath(f, a, b)}

	switch {
	case f.IsSpouse(a, b):
		rel.Kind, rel.Label = KindSpouse, "spouse"
	case r.blood(&rel, a, b):
		rel.Kind = KindBlood
	case r.inLaw(&rel, a, b):
		rel.Kind = KindInLaw
	case rel.Path != nil:
		rel.Kind, rel.Label = KindAffinal, LabelAffinal
	default:
		return Relationship{}, errors.New(errors.ErrCodeNotRelated, "persons %d and %d are not related", a, b)
	}

	subject, _ := f.Person(a)
	rel.Gendered = Gender(rel.Label, subject.Sex)
	return rel, nil
}

// blood fills rel from the closest common ancestor of a and b.
func (r *Resolver) blood(rel *Relationship, a, b person.ID) bool {
	lca, up, down, ok := commonAncestor(r.f, a, b)
	if !ok {
		return false
	}
	rel.Ancestor, rel.Up, rel.Down = lca, up, down
	rel.Label = Classify(up, down)
	if up >= 2 && down >= 2 {
		rel.Degree, rel.Removed = cousin(up, down)
	}
	if up == 1 && down == 1 && r.halfSiblings(a, b) {
		rel.Half = true
		rel.Label = "half-sibling"
	}
	return true
}

// halfSiblings reports whether a and b share exactly one parent while each
// has another, different one.
func (r *Resolver) halfSiblings(a, b person.ID) bool {
	pa, pb := r.f.Parents(a), r.f.Parents(b)
	shared := 0
	for _, p := range pa {
		for _, q := range pb {
			if p == q {
				shared++
			}
		}
	}
	return shared == 1 && len(pa) > 1 && len(pb) > 1
}

type candidate struct {
	label    string
	up, down int
	lca      person.ID
}

// closer orders candidates by total distance, then by the shorter leg, then
// by the smaller up. The order is the same with a and b swapped.
func (c *candidate) closer(than *candidate) bool {
	if than == nil {
		return true
	}
	if c.up+c.down != than.up+than.down {
		return c.up+c.down < than.up+than.down
	}
	if min(c.up, c.down) != min(than.up, than.down) {
		return min(c.up, c.down) < min(than.up, than.down)
	}
	return c.up < than.up
}

// nearest returns the closest blood link between any x in from and any y in
// to, or nil when none is related.
func nearest(f *forest.Forest, from, to []person.ID) *candidate {
	var best *candidate
	for _, x := range from {
		for _, y := range to {
			if x == y {
				continue
			}
			lca, up, down, ok := commonAncestor(f, x, y)
			if !ok {
				continue
			}
			if c := (&candidate{up: up, down: down, lca: lca}); c.closer(best) {
				best = c
			}
		}
	}
	if best != nil {
		best.label = Classify(best.up, best.down)
	}
	return best
}

// inLaw looks for a marriage on either end first and keeps the closest link
// across both ends. Only when neither end matches does it try a marriage on
// both ends.
func (r *Resolver) inLaw(rel *Relationship, a, b person.ID) bool {
	f := r.f
	best, format := nearest(f, []person.ID{a}, f.Spouses(b)), "%s-in-law"
	if c := nearest(f, f.Spouses(a), []person.ID{b}); c != nil && c.closer(best) {
		best = c
	}
	if best == nil {
		best, format = nearest(f, f.Spouses(a), f.Spouses(b)), "co-%s-in-law"
	}
	if best == nil {
		return false
	}
	rel.Label = fmt.Sprintf(format, best.label)
	rel.Up, rel.Down, rel.Ancestor = best.up, best.down, best.lca
	return true
}
