package forest

import (
	"slices"

	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/person"
)

// Forest is the derived, read-only family structure of one tree.
type Forest struct {
	tree      string
	order     []person.ID
	people    map[person.ID]person.Person
	roots     []person.ID
	parents   map[person.ID][]person.ID
	children  map[person.ID][]person.ID
	spouses   map[person.ID][]person.ID
	marriedIn map[person.ID]bool
	primary   map[person.ID]person.ID

	unresolved  []Unresolved
	diagnostics []Diagnostic
}

// Build derives the forest of the given tree from records. Records outside
// the tree are ignored; pass person.TreeAll to use every record.
func Build(records []person.Person, tree string) *Forest {
	f := &Forest{
		tree:      tree,
		people:    make(map[person.ID]person.Person),
		parents:   make(map[person.ID][]person.ID),
		children:  make(map[person.ID][]person.ID),
		spouses:   make(map[person.ID][]person.ID),
		marriedIn: make(map[person.ID]bool),
		primary:   make(map[person.ID]person.ID),
	}

	f.collect(records)
	f.linkParents()
	f.breakCycles()
	f.linkChildren()
	f.linkSpouses()
	f.classify()
	return f
}

func (f *Forest) collect(records []person.Person) {
	for _, p := range records {
		if !p.InTree(f.tree) {
			continue
		}
		if _, dup := f.people[p.ID]; dup || f.isUnresolved(p.ID) {
			f.report(DiagDuplicateRecord, p.ID, 0, nil)
			continue
		}
		if p.HasParent(p.ID) {
			err := errors.New(errors.ErrCodeCyclicReference, "person %d is linked as their own parent", p.ID)
			f.unresolved = append(f.unresolved, Unresolved{Person: p, Err: err})
			f.report(DiagSelfParent, p.ID, p.ID, err)
			continue
		}
		f.people[p.ID] = p
		f.order = append(f.order, p.ID)
	}
}

func (f *Forest) isUnresolved(id person.ID) bool {
	for _, u := range f.unresolved {
		if u.Person.ID == id {
			return true
		}
	}
	return false
}

func (f *Forest) linkParents() {
	for _, id := range f.order {
		for _, pid := range f.people[id].Parents() {
			if _, ok := f.people[pid]; !ok {
				f.report(DiagDanglingParent, id, pid, nil)
				continue
			}
			f.parents[id] = append(f.parents[id], pid)
		}
	}
}

// breakCycles walks parent-to-child edges depth-first, starting from every
// person in ascending id order, and drops each edge that leads back into the
// current path.
func (f *Forest) breakCycles() {
	const (
		white = iota
		gray
		black
	)

	down := make(map[person.ID][]person.ID)
	for _, id := range f.order {
		for _, pid := range f.parents[id] {
			down[pid] = append(down[pid], id)
		}
	}
	for _, kids := range down {
		slices.Sort(kids)
	}

	color := make(map[person.ID]int)
	var backEdges [][2]person.ID

	var dfs func(id person.ID)
	dfs = func(id person.ID) {
		color[id] = gray
		for _, child := range down[id] {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				backEdges = append(backEdges, [2]person.ID{id, child})
			}
		}
		color[id] = black
	}

	sorted := slices.Clone(f.order)
	slices.Sort(sorted)
	for _, id := range sorted {
		if color[id] == white {
			dfs(id)
		}
	}

	for _, e := range backEdges {
		parent, child := e[0], e[1]
		f.parents[child] = slices.DeleteFunc(f.parents[child], func(p person.ID) bool { return p == parent })
		if len(f.parents[child]) == 0 {
			delete(f.parents, child)
		}
		err := errors.New(errors.ErrCodeCyclicReference, "person %d: parent %d is also a descendant", child, parent)
		f.report(DiagParentCycle, child, parent, err)
	}
}

func (f *Forest) linkChildren() {
	for _, id := range f.order {
		for _, pid := range f.parents[id] {
			if !slices.Contains(f.children[pid], id) {
				f.children[pid] = append(f.children[pid], id)
			}
		}
	}
}

// linkSpouses pairs spouses symmetrically. A one-sided link is honored when
// the other side has no resolvable spouse of its own.
func (f *Forest) linkSpouses() {
	for _, id := range f.order {
		sid := f.people[id].SpouseID
		switch {
		case sid == 0:
			continue
		case sid == id:
			f.report(DiagSelfSpouse, id, sid, nil)
			continue
		}
		other, ok := f.people[sid]
		if !ok {
			f.report(DiagDanglingSpouse, id, sid, nil)
			continue
		}
		switch back := other.SpouseID; {
		case back == id:
		case back == 0 || back == sid || !f.Contains(back):
			f.report(DiagOneSidedSpouse, id, sid, nil)
		default:
			f.report(DiagConflictedSpouse, id, sid, nil)
			continue
		}
		f.pair(id, sid)
	}
}

func (f *Forest) pair(a, b person.ID) {
	if !slices.Contains(f.spouses[a], b) {
		f.spouses[a] = append(f.spouses[a], b)
	}
	if !slices.Contains(f.spouses[b], a) {
		f.spouses[b] = append(f.spouses[b], a)
	}
}

func (f *Forest) classify() {
	for _, id := range f.order {
		if len(f.parents[id]) > 0 {
			continue
		}
		for _, sid := range f.spouses[id] {
			if len(f.parents[sid]) > 0 {
				f.marriedIn[id] = true
				break
			}
		}
	}

	for _, id := range f.order {
		ps := f.parents[id]
		if len(ps) == 0 {
			if !f.marriedIn[id] {
				f.roots = append(f.roots, id)
			}
			continue
		}
		f.primary[id] = ps[0]
		for _, pid := range ps {
			if !f.marriedIn[pid] {
				f.primary[id] = pid
				break
			}
		}
	}
}

func (f *Forest) report(kind DiagnosticKind, id, ref person.ID, err error) {
	f.diagnostics = append(f.diagnostics, Diagnostic{Kind: kind, ID: id, Ref: ref, Err: err})
}

// Tree returns the tree key the forest was built for.
func (f *Forest) Tree() string { return f.tree }

// Len returns the number of people in the forest.
func (f *Forest) Len() int { return len(f.order) }

// Contains reports whether id is part of the forest.
func (f *Forest) Contains(id person.ID) bool {
	_, ok := f.people[id]
	return ok
}

// Person returns the record for id.
func (f *Forest) Person(id person.ID) (person.Person, bool) {
	p, ok := f.people[id]
	return p, ok
}

// IDs returns every identifier in the forest in record order.
func (f *Forest) IDs() []person.ID { return slices.Clone(f.order) }

// Roots returns the root identifiers in record order.
func (f *Forest) Roots() []person.ID { return slices.Clone(f.roots) }

// Children returns the children of id in record order.
func (f *Forest) Children(id person.ID) []person.ID { return slices.Clone(f.children[id]) }

// Parents returns the in-scope parents of id, father first.
func (f *Forest) Parents(id person.ID) []person.ID { return slices.Clone(f.parents[id]) }

// Spouses returns the spouses paired with id.
func (f *Forest) Spouses(id person.ID) []person.ID { return slices.Clone(f.spouses[id]) }

// IsSpouse reports whether a and b are paired.
func (f *Forest) IsSpouse(a, b person.ID) bool { return slices.Contains(f.spouses[a], b) }

// IsRoot reports whether id heads a root line.
func (f *Forest) IsRoot(id person.ID) bool { return slices.Contains(f.roots, id) }

// MarriedIn reports whether id has no parents in scope and joined the tree
// through a spouse who does.
func (f *Forest) MarriedIn(id person.ID) bool { return f.marriedIn[id] }

// PrimaryParent returns the parent that places id in the tree.
func (f *Forest) PrimaryParent(id person.ID) (person.ID, bool) {
	p, ok := f.primary[id]
	return p, ok
}

// Unresolved returns the records left out of the forest.
func (f *Forest) Unresolved() []Unresolved { return slices.Clone(f.unresolved) }

// Diagnostics returns the defects found while building, in discovery order.
func (f *Forest) Diagnostics() []Diagnostic { return slices.Clone(f.diagnostics) }
