package view

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/kintree/pkg/forest"
	"github.com/matzehuels/kintree/pkg/person"
)

// tenDescendants is a root with ten descendants across three generations.
func tenDescendants() *forest.Forest {
	return forest.Build([]person.Person{
		{ID: 1, Name: "Root"},
		{ID: 2, Name: "C1", ParentID: 1},
		{ID: 3, Name: "C2", ParentID: 1},
		{ID: 4, Name: "C3", ParentID: 1},
		{ID: 5, Name: "G1", ParentID: 2},
		{ID: 6, Name: "G2", ParentID: 2},
		{ID: 7, Name: "G3", ParentID: 3},
		{ID: 8, Name: "G4", ParentID: 3},
		{ID: 9, Name: "G5", ParentID: 4},
		{ID: 10, Name: "GG1", ParentID: 5},
		{ID: 11, Name: "GG2", ParentID: 9},
	}, person.TreeAll)
}

func TestToggleFold_OnlyFlipsTarget(t *testing.T) {
	c := New("all")
	c.SetFolded(2, true)
	c.SetFolded(9, true)

	if got := c.ToggleFold(1); !got {
		t.Errorf("ToggleFold(1) = %v, want true", got)
	}
	if !c.IsFolded(1) {
		t.Error("IsFolded(1) = false, want true")
	}
	for id := person.ID(2); id <= 11; id++ {
		want := id == 2 || id == 9
		if got := c.IsFolded(id); got != want {
			t.Errorf("IsFolded(%d) = %v, want %v", id, got, want)
		}
	}

	if got := c.ToggleFold(1); got {
		t.Errorf("second ToggleFold(1) = %v, want false", got)
	}
	if diff := cmp.Diff([]person.ID{2, 9}, c.Folded()); diff != "" {
		t.Errorf("Folded() mismatch (-want +got):\n%s", diff)
	}
}

func TestResetForTree(t *testing.T) {
	f := tenDescendants()
	c := New("smith")
	c.ToggleFold(1)
	c.SetGenerations(forest.AssignGenerations(f))

	c.ResetForTree("jones")

	if c.Tree() != "jones" {
		t.Errorf("Tree() = %q, want %q", c.Tree(), "jones")
	}
	if c.IsFolded(1) {
		t.Error("IsFolded(1) = true after ResetForTree, want false")
	}
	if _, ok := c.Generation(1); ok {
		t.Error("Generation(1) ok after ResetForTree, want cleared")
	}
}

func TestCollapseAndExpandAll(t *testing.T) {
	f := tenDescendants()
	c := New("all")

	c.CollapseAll(f)
	want := []person.ID{1, 2, 3, 4, 5, 9}
	if diff := cmp.Diff(want, c.Folded()); diff != "" {
		t.Errorf("Folded() after CollapseAll mismatch (-want +got):\n%s", diff)
	}
	if c.IsFolded(10) {
		t.Error("IsFolded(10) = true, want leaves left expanded")
	}

	c.ExpandAll()
	if got := c.Folded(); len(got) != 0 {
		t.Errorf("Folded() after ExpandAll = %v, want empty", got)
	}
}

func TestGeneration(t *testing.T) {
	c := New("all")
	if _, ok := c.Generation(1); ok {
		t.Error("Generation() ok before SetGenerations")
	}
	c.SetGenerations(forest.AssignGenerations(tenDescendants()))
	if g, ok := c.Generation(10); !ok || g != 3 {
		t.Errorf("Generation(10) = %d, %v, want 3, true", g, ok)
	}
}
