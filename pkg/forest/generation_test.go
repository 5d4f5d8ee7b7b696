package forest

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/kintree/pkg/person"
)

func TestAssignGenerations_ChildWithSpouse(t *testing.T) {
	f := Build([]person.Person{
		{ID: 1, Name: "A"},
		{ID: 2, Name: "B", ParentID: 1, SpouseID: 3},
		{ID: 3, Name: "C", SpouseID: 2},
	}, person.TreeAll)

	got := AssignGenerations(f).Map()
	want := map[person.ID]int{1: 0, 2: 1, 3: 1}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("AssignGenerations() mismatch (-want +got):\n%s", diff)
	}
}

func TestAssignGenerations_SampleFamily(t *testing.T) {
	g := AssignGenerations(Build(sampleFamily(), person.TreeAll))

	want := map[person.ID]int{
		1: 0, 2: 0,
		3: 1, 4: 1, 5: 1,
		6: 2, 7: 2, 8: 2,
		9:  3,
		20: 0, 21: 1,
	}
	if diff := cmp.Diff(want, g.Map()); diff != "" {
		t.Errorf("AssignGenerations() mismatch (-want +got):\n%s", diff)
	}
	if c := g.Conflicts(); len(c) != 0 {
		t.Errorf("Conflicts() = %v, want none", c)
	}
	if g.Depth() != 4 {
		t.Errorf("Depth() = %d, want 4", g.Depth())
	}
}

func TestAssignGenerations_Properties(t *testing.T) {
	f := Build(sampleFamily(), person.TreeAll)
	g := AssignGenerations(f)

	for _, id := range f.IDs() {
		gen, ok := g.Of(id)
		if !ok {
			t.Errorf("Of(%d) missing", id)
			continue
		}
		for _, pid := range f.Parents(id) {
			if pg, _ := g.Of(pid); gen != pg+1 {
				t.Errorf("generation(%d) = %d, want generation(parent %d)+1 = %d", id, gen, pid, pg+1)
			}
		}
		for _, sid := range f.Spouses(id) {
			if sg, _ := g.Of(sid); gen != sg {
				t.Errorf("generation(%d) = %d, spouse %d has %d", id, gen, sid, sg)
			}
		}
	}
}

func TestAssignGenerations_CrossBranchConflict(t *testing.T) {
	f := Build([]person.Person{
		{ID: 1, Name: "Root A"},
		{ID: 2, Name: "A child", ParentID: 1},
		{ID: 3, Name: "A grandchild", ParentID: 2, SpouseID: 5},
		{ID: 4, Name: "Root B"},
		{ID: 5, Name: "B child", ParentID: 4, SpouseID: 3},
		{ID: 6, Name: "Joint child", FatherID: 3, MotherID: 5},
	}, person.TreeAll)
	g := AssignGenerations(f)

	if got, _ := g.Of(6); got != 2 {
		t.Errorf("Of(6) = %d, want 2 (minimum)", got)
	}
	want := []Conflict{
		{Kind: ConflictPath, ID: 6, Kept: 2, Seen: 3, Via: 3},
		{Kind: ConflictSpouse, ID: 3, Kept: 2, Seen: 1, Via: 5},
	}
	if diff := cmp.Diff(want, g.Conflicts()); diff != "" {
		t.Errorf("Conflicts() mismatch (-want +got):\n%s", diff)
	}
}

func TestAssignGenerations_RootsAreLocal(t *testing.T) {
	f := Build([]person.Person{
		{ID: 1, Name: "Old line"},
		{ID: 2, Name: "Child", ParentID: 1},
		{ID: 3, Name: "Grandchild", ParentID: 2},
		{ID: 10, Name: "Unrelated"},
		{ID: 11, Name: "Married root", SpouseID: 12},
		{ID: 12, Name: "Other root", SpouseID: 11},
	}, person.TreeAll)
	g := AssignGenerations(f)

	for _, id := range []person.ID{1, 10, 11, 12} {
		if got, _ := g.Of(id); got != 0 {
			t.Errorf("Of(%d) = %d, want 0", id, got)
		}
	}
}

func TestAssignGenerations_MarriedInChain(t *testing.T) {
	// Children of a married-in spouse from another relationship hang below
	// the spouse's row.
	f := Build([]person.Person{
		{ID: 1, Name: "Root"},
		{ID: 2, Name: "Child", ParentID: 1, SpouseID: 3},
		{ID: 3, Name: "In-law", SpouseID: 2},
		{ID: 4, Name: "Step-grandchild", ParentID: 3},
	}, person.TreeAll)
	g := AssignGenerations(f)

	want := map[person.ID]int{1: 0, 2: 1, 3: 1, 4: 2}
	if diff := cmp.Diff(want, g.Map()); diff != "" {
		t.Errorf("AssignGenerations() mismatch (-want +got):\n%s", diff)
	}
}
