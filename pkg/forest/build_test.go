package forest

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/person"
)

type ids = []person.ID

func kinds(ds []Diagnostic) []DiagnosticKind {
	var out []DiagnosticKind
	for _, d := range ds {
		out = append(out, d.Kind)
	}
	return out
}

func TestBuild_ChildWithSpouse(t *testing.T) {
	f := Build([]person.Person{
		{ID: 1, Name: "A"},
		{ID: 2, Name: "B", ParentID: 1, SpouseID: 3},
		{ID: 3, Name: "C", SpouseID: 2},
	}, person.TreeAll)

	if diff := cmp.Diff(ids{1}, f.Roots()); diff != "" {
		t.Errorf("Roots() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(ids{2}, f.Children(1)); diff != "" {
		t.Errorf("Children(1) mismatch (-want +got):\n%s", diff)
	}
	if !f.IsSpouse(2, 3) || !f.IsSpouse(3, 2) {
		t.Error("IsSpouse(2, 3) = false, want true in both directions")
	}
	if !f.MarriedIn(3) {
		t.Error("MarriedIn(3) = false, want true")
	}
	if f.MarriedIn(2) {
		t.Error("MarriedIn(2) = true, want false")
	}
	if got := f.Diagnostics(); len(got) != 0 {
		t.Errorf("Diagnostics() = %v, want none", got)
	}
}

func TestBuild_DanglingParentBecomesRoot(t *testing.T) {
	f := Build([]person.Person{
		{ID: 1, Name: "A"},
		{ID: 2, Name: "Orphan", ParentID: 999},
	}, person.TreeAll)

	if diff := cmp.Diff(ids{1, 2}, f.Roots()); diff != "" {
		t.Errorf("Roots() mismatch (-want +got):\n%s", diff)
	}
	diags := f.Diagnostics()
	if len(diags) != 1 || diags[0].Kind != DiagDanglingParent || diags[0].Ref != 999 {
		t.Errorf("Diagnostics() = %v, want one dangling-parent to 999", diags)
	}
	if len(f.Parents(2)) != 0 {
		t.Errorf("Parents(2) = %v, want none", f.Parents(2))
	}
}

func TestBuild_SelfParentIsUnresolved(t *testing.T) {
	f := Build([]person.Person{
		{ID: 1, Name: "A"},
		{ID: 2, Name: "Loop", ParentID: 2},
		{ID: 3, Name: "C", ParentID: 2},
	}, person.TreeAll)

	if f.Contains(2) {
		t.Error("Contains(2) = true, want self-parent excluded")
	}
	un := f.Unresolved()
	if len(un) != 1 || un[0].Person.ID != 2 {
		t.Fatalf("Unresolved() = %v, want person 2", un)
	}
	if !errors.Is(un[0].Err, errors.ErrCodeCyclicReference) {
		t.Errorf("Unresolved()[0].Err = %v, want CYCLIC_REFERENCE", un[0].Err)
	}
	if diff := cmp.Diff(ids{1, 3}, f.Roots()); diff != "" {
		t.Errorf("Roots() mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_BreaksLongerCycles(t *testing.T) {
	f := Build([]person.Person{
		{ID: 1, Name: "A", ParentID: 3},
		{ID: 2, Name: "B", ParentID: 1},
		{ID: 3, Name: "C", ParentID: 2},
	}, person.TreeAll)

	// The walk starts at 1 and goes 1 -> 2 -> 3; the edge 3 -> 1 closes
	// the loop and is dropped, so 1 becomes the root.
	if diff := cmp.Diff(ids{1}, f.Roots()); diff != "" {
		t.Errorf("Roots() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]DiagnosticKind{DiagParentCycle}, kinds(f.Diagnostics())); diff != "" {
		t.Errorf("Diagnostics() mismatch (-want +got):\n%s", diff)
	}
	d := f.Diagnostics()[0]
	if d.ID != 1 || d.Ref != 3 {
		t.Errorf("cycle diagnostic = (%d, %d), want (1, 3)", d.ID, d.Ref)
	}
	if !errors.Is(d.Err, errors.ErrCodeCyclicReference) {
		t.Errorf("cycle diagnostic error = %v, want CYCLIC_REFERENCE", d.Err)
	}
}

func TestBuild_ChildrenDeduplicatedAndOrdered(t *testing.T) {
	f := Build([]person.Person{
		{ID: 1, Name: "Dad", SpouseID: 2},
		{ID: 2, Name: "Mum", SpouseID: 1},
		{ID: 5, Name: "Younger", FatherID: 1, MotherID: 2, ParentID: 1},
		{ID: 4, Name: "Older", FatherID: 1, MotherID: 2},
	}, person.TreeAll)

	if diff := cmp.Diff(ids{5, 4}, f.Children(1)); diff != "" {
		t.Errorf("Children(1) mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(ids{5, 4}, f.Children(2)); diff != "" {
		t.Errorf("Children(2) mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(ids{1, 2}, f.Parents(5)); diff != "" {
		t.Errorf("Parents(5) mismatch (-want +got):\n%s", diff)
	}
	// Both parents lack parents of their own, so both are roots.
	if diff := cmp.Diff(ids{1, 2}, f.Roots()); diff != "" {
		t.Errorf("Roots() mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_Spouses(t *testing.T) {
	tests := []struct {
		name      string
		records   []person.Person
		wantPairs [][2]person.ID
		wantDiags []DiagnosticKind
	}{
		{
			name: "symmetric",
			records: []person.Person{
				{ID: 1, Name: "A", SpouseID: 2},
				{ID: 2, Name: "B", SpouseID: 1},
			},
			wantPairs: [][2]person.ID{{1, 2}},
		},
		{
			name: "one-sided is inferred",
			records: []person.Person{
				{ID: 1, Name: "A", SpouseID: 2},
				{ID: 2, Name: "B"},
			},
			wantPairs: [][2]person.ID{{1, 2}},
			wantDiags: []DiagnosticKind{DiagOneSidedSpouse},
		},
		{
			name: "conflicting link keeps the other side's choice",
			records: []person.Person{
				{ID: 1, Name: "A", SpouseID: 2},
				{ID: 2, Name: "B", SpouseID: 3},
				{ID: 3, Name: "C", SpouseID: 2},
			},
			wantPairs: [][2]person.ID{{2, 3}},
			wantDiags: []DiagnosticKind{DiagConflictedSpouse},
		},
		{
			name: "dangling",
			records: []person.Person{
				{ID: 1, Name: "A", SpouseID: 7},
			},
			wantDiags: []DiagnosticKind{DiagDanglingSpouse},
		},
		{
			name: "self",
			records: []person.Person{
				{ID: 1, Name: "A", SpouseID: 1},
			},
			wantDiags: []DiagnosticKind{DiagSelfSpouse},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Build(tt.records, person.TreeAll)
			var got [][2]person.ID
			for _, id := range f.IDs() {
				for _, sid := range f.Spouses(id) {
					if id < sid {
						got = append(got, [2]person.ID{id, sid})
					}
				}
			}
			if diff := cmp.Diff(tt.wantPairs, got); diff != "" {
				t.Errorf("spouse pairs mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantDiags, kinds(f.Diagnostics())); diff != "" {
				t.Errorf("Diagnostics() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBuild_TreeScope(t *testing.T) {
	records := []person.Person{
		{ID: 1, Name: "A", Tree: "smith"},
		{ID: 2, Name: "B", ParentID: 1, Tree: "smith"},
		{ID: 3, Name: "C", ParentID: 1, Tree: "jones"},
	}

	f := Build(records, "jones")
	if f.Len() != 1 {
		t.Errorf("Len() = %d, want 1", f.Len())
	}
	// Parent 1 lives in another tree, so 3 is a root here.
	if diff := cmp.Diff(ids{3}, f.Roots()); diff != "" {
		t.Errorf("Roots() mismatch (-want +got):\n%s", diff)
	}

	all := Build(records, person.TreeAll)
	if diff := cmp.Diff(ids{2, 3}, all.Children(1)); diff != "" {
		t.Errorf("Children(1) mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_PrimaryParentSkipsMarriedIn(t *testing.T) {
	f := Build([]person.Person{
		{ID: 1, Name: "Grandpa"},
		{ID: 2, Name: "Son", ParentID: 1, SpouseID: 3},
		{ID: 3, Name: "Wife", SpouseID: 2},
		{ID: 4, Name: "Grandchild", MotherID: 3, FatherID: 2},
	}, person.TreeAll)

	// Father comes first anyway; flip the order through the mother link.
	if got, _ := f.PrimaryParent(4); got != 2 {
		t.Errorf("PrimaryParent(4) = %d, want 2", got)
	}

	g := Build([]person.Person{
		{ID: 1, Name: "Grandma"},
		{ID: 2, Name: "Daughter", ParentID: 1, SpouseID: 3},
		{ID: 3, Name: "Husband", SpouseID: 2},
		{ID: 4, Name: "Grandchild", FatherID: 3, MotherID: 2},
	}, person.TreeAll)
	if got, _ := g.PrimaryParent(4); got != 2 {
		t.Errorf("PrimaryParent(4) = %d, want 2 (married-in father skipped)", got)
	}
	if _, ok := g.PrimaryParent(1); ok {
		t.Error("PrimaryParent(1) ok = true, want false for a root")
	}
}

func TestBuild_DuplicateRecords(t *testing.T) {
	f := Build([]person.Person{
		{ID: 1, Name: "First"},
		{ID: 1, Name: "Second"},
	}, person.TreeAll)

	p, _ := f.Person(1)
	if p.Name != "First" {
		t.Errorf("Person(1).Name = %q, want %q", p.Name, "First")
	}
	if diff := cmp.Diff([]DiagnosticKind{DiagDuplicateRecord}, kinds(f.Diagnostics())); diff != "" {
		t.Errorf("Diagnostics() mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_Idempotent(t *testing.T) {
	records := sampleFamily()
	a := Build(records, person.TreeAll)
	b := Build(records, person.TreeAll)

	opt := cmp.AllowUnexported(Forest{})
	if diff := cmp.Diff(a, b, opt); diff != "" {
		t.Errorf("Build() not idempotent (-first +second):\n%s", diff)
	}
	ga, gb := AssignGenerations(a), AssignGenerations(b)
	if diff := cmp.Diff(ga.Map(), gb.Map()); diff != "" {
		t.Errorf("AssignGenerations() not idempotent (-first +second):\n%s", diff)
	}
}

func TestBuild_Empty(t *testing.T) {
	f := Build(nil, person.TreeAll)
	if f.Len() != 0 || len(f.Roots()) != 0 {
		t.Errorf("Build(nil) = %d people, %d roots, want 0, 0", f.Len(), len(f.Roots()))
	}
}

// sampleFamily is a three-generation family with two married-in spouses and
// an unrelated second line.
func sampleFamily() []person.Person {
	return []person.Person{
		{ID: 1, Name: "Arthur", Sex: person.SexMale, SpouseID: 2},
		{ID: 2, Name: "Beatrice", Sex: person.SexFemale, SpouseID: 1},
		{ID: 3, Name: "Charles", Sex: person.SexMale, FatherID: 1, MotherID: 2, SpouseID: 4},
		{ID: 4, Name: "Diana", Sex: person.SexFemale, SpouseID: 3},
		{ID: 5, Name: "Edith", Sex: person.SexFemale, FatherID: 1, MotherID: 2},
		{ID: 6, Name: "Frank", Sex: person.SexMale, FatherID: 3, MotherID: 4},
		{ID: 7, Name: "Grace", Sex: person.SexFemale, MotherID: 5, SpouseID: 8},
		{ID: 8, Name: "Henry", Sex: person.SexMale, SpouseID: 7},
		{ID: 9, Name: "Ivy", Sex: person.SexFemale, MotherID: 7, FatherID: 8},
		{ID: 20, Name: "Zed", Sex: person.SexMale},
		{ID: 21, Name: "Zara", Sex: person.SexFemale, ParentID: 20},
	}
}
