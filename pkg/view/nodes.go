package view

import (
	"slices"

	"github.com/matzehuels/kintree/pkg/forest"
	"github.com/matzehuels/kintree/pkg/person"
)

// Partner is a spouse shown inline with a node.
type Partner struct {
	ID   person.ID  `json:"id"`
	Name string     `json:"name"`
	Sex  person.Sex `json:"sex,omitempty"`
}

// Node is one row of the render list.
type Node struct {
	ID          person.ID  `json:"id"`
	Name        string     `json:"name"`
	Sex         person.Sex `json:"sex,omitempty"`
	Birth       string     `json:"birth,omitempty"`
	Death       string     `json:"death,omitempty"`
	Generation  int        `json:"generation"`
	Depth       int        `json:"depth"`
	Folded      bool       `json:"folded"`
	HasChildren bool       `json:"hasChildren"`
	Hidden      int        `json:"hidden,omitempty"`
	Spouses     []Partner  `json:"spouses,omitempty"`
}

// Nodes returns the render list of f: a depth-first walk from the roots
// where each row carries its spouses inline. A couple's children hang below
// whichever partner is their primary parent's household head. Rows under a
// folded node are left out; its Hidden field counts the people on them,
// spouses drawn inline included.
func (c *Controller) Nodes(f *forest.Forest) []Node {
	w := &walker{c: c, f: f, placed: make(map[person.ID]bool)}
	for _, id := range f.Roots() {
		w.visit(id, 0, false)
	}
	for _, id := range f.IDs() {
		if !w.placed[id] {
			w.visit(id, 0, false)
		}
	}
	return w.out
}

type walker struct {
	c      *Controller
	f      *forest.Forest
	placed map[person.ID]bool
	out    []Node
}

// visit places id and its household and returns how many people it placed.
func (w *walker) visit(id person.ID, depth int, hidden bool) int {
	if w.placed[id] {
		return 0
	}
	house := w.household(id)
	for _, m := range house {
		w.placed[m] = true
	}

	p, _ := w.f.Person(id)
	gen, _ := w.c.Generation(id)
	node := Node{
		ID:         id,
		Name:       p.Name,
		Sex:        p.Sex,
		Birth:      p.Birth,
		Death:      p.Death,
		Generation: gen,
		Depth:      depth,
		Folded:     w.c.IsFolded(id),
	}
	for _, sid := range w.f.Spouses(id) {
		sp, _ := w.f.Person(sid)
		node.Spouses = append(node.Spouses, Partner{ID: sid, Name: sp.Name, Sex: sp.Sex})
	}

	kids := w.children(house)
	node.HasChildren = len(kids) > 0

	idx := -1
	if !hidden {
		idx = len(w.out)
		w.out = append(w.out, node)
	}

	placed := len(house)
	for _, kid := range kids {
		placed += w.visit(kid, depth+1, hidden || node.Folded)
	}
	if idx >= 0 && node.Folded {
		w.out[idx].Hidden = placed - len(house)
	}
	return placed
}

// household returns id followed by the spouses drawn on its row: those
// without parents of their own that have not been placed yet.
func (w *walker) household(id person.ID) []person.ID {
	house := []person.ID{id}
	for _, sid := range w.f.Spouses(id) {
		if !w.placed[sid] && len(w.f.Parents(sid)) == 0 {
			house = append(house, sid)
		}
	}
	return house
}

// children returns the children whose primary parent belongs to house, in
// record order.
func (w *walker) children(house []person.ID) []person.ID {
	var kids []person.ID
	for _, m := range house {
		for _, kid := range w.f.Children(m) {
			pp, _ := w.f.PrimaryParent(kid)
			if slices.Contains(house, pp) && !slices.Contains(kids, kid) && !w.placed[kid] {
				kids = append(kids, kid)
			}
		}
	}
	return kids
}
