package kinship

import (
	"slices"

	"github.com/matzehuels/kintree/pkg/forest"
	"github.com/matzehuels/kintree/pkg/person"
)

// Edge is the kind of one hop in a relationship path, read from the hop's
// starting person.
type Edge uint8

const (
	// EdgeParent: To is a parent of From.
	EdgeParent Edge = iota
	// EdgeChild: To is a child of From.
	EdgeChild
	// EdgeSpouse: To is a spouse of From.
	EdgeSpouse
)

func (e Edge) String() string {
	switch e {
	case EdgeParent:
		return "parent"
	case EdgeChild:
		return "child"
	default:
		return "spouse"
	}
}

// MarshalText encodes the edge by name.
func (e Edge) MarshalText() ([]byte, error) { return []byte(e.String()), nil }

// Reverse returns the edge kind seen from the other end.
func (e Edge) Reverse() Edge {
	switch e {
	case EdgeParent:
		return EdgeChild
	case EdgeChild:
		return EdgeParent
	default:
		return e
	}
}

// Step is one hop of a path.
type Step struct {
	From person.ID `json:"from"`
	To   person.ID `json:"to"`
	Edge Edge      `json:"edge"`
}

func neighbors(f *forest.Forest, id person.ID) []Step {
	var out []Step
	for _, p := range f.Parents(id) {
		out = append(out, Step{From: id, To: p, Edge: EdgeParent})
	}
	for _, c := range f.Children(id) {
		out = append(out, Step{From: id, To: c, Edge: EdgeChild})
	}
	for _, s := range f.Spouses(id) {
		out = append(out, Step{From: id, To: s, Edge: EdgeSpouse})
	}
	return out
}

type side struct {
	dist     map[person.ID]int
	prev     map[person.ID]Step
	frontier []person.ID
}

func newSide(id person.ID) *side {
	return &side{
		dist:     map[person.ID]int{id: 0},
		prev:     map[person.ID]Step{},
		frontier: []person.ID{id},
	}
}

// ShortestPath searches the undirected parent, child and spouse graph from
// both ends at once and returns the hops from a to b. It returns nil when a
// and b are not connected or equal.
func ShortestPath(f *forest.Forest, a, b person.ID) []Step {
	if a == b || !f.Contains(a) || !f.Contains(b) {
		return nil
	}
	sa, sb := newSide(a), newSide(b)

	for len(sa.frontier) > 0 && len(sb.frontier) > 0 {
		grow, other := sa, sb
		if len(sb.frontier) < len(sa.frontier) {
			grow, other = sb, sa
		}
		meet, ok := expand(f, grow, other)
		if ok {
			return join(sa, sb, a, b, meet)
		}
	}
	return nil
}

// expand advances s by one full level. When the level touches the other
// side it returns the meeting point with the shortest total length.
func expand(f *forest.Forest, s, other *side) (person.ID, bool) {
	var next []person.ID
	var meet person.ID
	best := -1
	for _, id := range s.frontier {
		for _, st := range neighbors(f, id) {
			if _, seen := s.dist[st.To]; seen {
				continue
			}
			s.dist[st.To] = s.dist[id] + 1
			s.prev[st.To] = st
			next = append(next, st.To)
			if d, ok := other.dist[st.To]; ok {
				if total := s.dist[st.To] + d; best < 0 || total < best {
					best, meet = total, st.To
				}
			}
		}
	}
	s.frontier = next
	return meet, best >= 0
}

func join(sa, sb *side, a, b, meet person.ID) []Step {
	var head []Step
	for id := meet; id != a; {
		st := sa.prev[id]
		head = append(head, st)
		id = st.From
	}
	slices.Reverse(head)

	for id := meet; id != b; {
		st := sb.prev[id]
		head = append(head, Step{From: id, To: st.From, Edge: st.Edge.Reverse()})
		id = st.From
	}
	return head
}

// ancestors returns the upward distance from id to each of its ancestors,
// including id itself at 0.
func ancestors(f *forest.Forest, id person.ID) map[person.ID]int {
	dist := map[person.ID]int{id: 0}
	queue := []person.ID{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, p := range f.Parents(cur) {
			if _, ok := dist[p]; !ok {
				dist[p] = dist[cur] + 1
				queue = append(queue, p)
			}
		}
	}
	return dist
}

// commonAncestor returns the ancestor shared by a and b that minimizes
// up+down, preferring the smaller up on ties.
func commonAncestor(f *forest.Forest, a, b person.ID) (lca person.ID, up, down int, ok bool) {
	da, db := ancestors(f, a), ancestors(f, b)
	for _, id := range f.IDs() {
		u, okA := da[id]
		d, okB := db[id]
		if !okA || !okB {
			continue
		}
		if !ok || u+d < up+down || (u+d == up+down && u < up) {
			lca, up, down, ok = id, u, d, true
		}
	}
	return lca, up, down, ok
}
