package forest

import (
	"fmt"
	"maps"

	"github.com/matzehuels/kintree/pkg/person"
)

// ConflictKind classifies a generation conflict.
type ConflictKind string

const (
	// ConflictPath: the person is reachable at two depths.
	ConflictPath ConflictKind = "multiple-paths"
	// ConflictSpouse: both spouses have their own parent chains and the
	// chains put them at different depths.
	ConflictSpouse ConflictKind = "spouse-mismatch"
)

// Conflict records a generation value that was seen but not kept.
type Conflict struct {
	Kind ConflictKind
	ID   person.ID
	Kept int
	Seen int
	Via  person.ID
}

func (c Conflict) String() string {
	switch c.Kind {
	case ConflictSpouse:
		return fmt.Sprintf("person %d at generation %d but spouse %d at %d", c.ID, c.Kept, c.Via, c.Seen)
	default:
		return fmt.Sprintf("person %d kept generation %d; also reachable at %d via %d", c.ID, c.Kept, c.Seen, c.Via)
	}
}

// Generations maps every person of a forest to a generation number.
type Generations struct {
	gen       map[person.ID]int
	conflicts []Conflict
}

// Of returns the generation of id.
func (g *Generations) Of(id person.ID) (int, bool) {
	n, ok := g.gen[id]
	return n, ok
}

// Map returns a copy of the full assignment.
func (g *Generations) Map() map[person.ID]int { return maps.Clone(g.gen) }

// Len returns the number of assigned people.
func (g *Generations) Len() int { return len(g.gen) }

// Depth returns the number of distinct generation rows (max + 1).
func (g *Generations) Depth() int {
	if len(g.gen) == 0 {
		return 0
	}
	depth := 0
	for _, n := range g.gen {
		depth = max(depth, n+1)
	}
	return depth
}

// Conflicts returns the recorded conflicts in discovery order.
func (g *Generations) Conflicts() []Conflict {
	out := make([]Conflict, len(g.conflicts))
	copy(out, g.conflicts)
	return out
}

// AssignGenerations numbers every person of f.
//
// All roots start at 0 and are expanded level by level, so the first value a
// person receives is the smallest one reachable. A person who married into
// the tree takes their spouse's generation on the same level. Anybody left
// unreached afterwards starts a walk of their own at 0.
//
// Time complexity is O(V + E).
func AssignGenerations(f *Forest) *Generations {
	g := &Generations{gen: make(map[person.ID]int, f.Len())}

	g.walk(f, f.roots)
	for _, id := range f.order {
		if _, ok := g.gen[id]; !ok {
			g.walk(f, []person.ID{id})
		}
	}

	for _, id := range f.order {
		if f.marriedIn[id] {
			continue
		}
		for _, sid := range f.spouses[id] {
			if sid < id || f.marriedIn[sid] {
				continue
			}
			if a, b := g.gen[id], g.gen[sid]; a != b {
				g.conflicts = append(g.conflicts, Conflict{Kind: ConflictSpouse, ID: id, Kept: a, Seen: b, Via: sid})
			}
		}
	}
	return g
}

type visit struct {
	id, via person.ID
}

// walk runs a level-ordered traversal from sources at generation 0.
func (g *Generations) walk(f *Forest, sources []person.ID) {
	level := make([]visit, 0, len(sources))
	for _, id := range sources {
		level = append(level, visit{id: id})
	}

	for gen := 0; len(level) > 0; gen++ {
		var next []visit
		for _, v := range level {
			for _, id := range g.household(f, v, gen) {
				for _, child := range f.children[id] {
					next = append(next, visit{id: child, via: id})
				}
			}
		}
		level = next
	}
}

// household assigns gen to v and to the married-in spouses reachable from it.
// It returns the newly assigned people whose children are still to expand.
func (g *Generations) household(f *Forest, v visit, gen int) []person.ID {
	if !g.assign(v, gen) {
		return nil
	}
	members := []person.ID{v.id}
	for i := 0; i < len(members); i++ {
		for _, sid := range f.spouses[members[i]] {
			if !f.marriedIn[sid] {
				continue
			}
			if g.assign(visit{id: sid, via: members[i]}, gen) {
				members = append(members, sid)
			}
		}
	}
	return members
}

// assign sets the generation of v.id if unset and reports whether it did.
// A differing later value is recorded as a conflict.
func (g *Generations) assign(v visit, gen int) bool {
	cur, ok := g.gen[v.id]
	if !ok {
		g.gen[v.id] = gen
		return true
	}
	if cur != gen {
		g.conflicts = append(g.conflicts, Conflict{Kind: ConflictPath, ID: v.id, Kept: cur, Seen: gen, Via: v.via})
	}
	return false
}
