package view

import (
	"slices"

	"github.com/matzehuels/kintree/pkg/forest"
	"github.com/matzehuels/kintree/pkg/person"
)

// Controller holds fold flags and the generation map for the selected tree.
// It is not safe for concurrent use.
type Controller struct {
	tree   string
	folded map[person.ID]bool
	gens   *forest.Generations
}

// New returns a controller for the given tree with everything expanded.
func New(tree string) *Controller {
	return &Controller{tree: tree, folded: make(map[person.ID]bool)}
}

// Tree returns the tree key the state belongs to.
func (c *Controller) Tree() string { return c.tree }

// ToggleFold flips the fold flag of id and returns the new value.
func (c *Controller) ToggleFold(id person.ID) bool {
	c.SetFolded(id, !c.folded[id])
	return c.folded[id]
}

// SetFolded sets the fold flag of id.
func (c *Controller) SetFolded(id person.ID, folded bool) {
	if folded {
		c.folded[id] = true
	} else {
		delete(c.folded, id)
	}
}

// IsFolded reports whether the subtree under id is collapsed.
func (c *Controller) IsFolded(id person.ID) bool { return c.folded[id] }

// Folded returns the collapsed ids in ascending order.
func (c *Controller) Folded() []person.ID {
	ids := make([]person.ID, 0, len(c.folded))
	for id := range c.folded {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// ResetForTree switches to tree and drops all fold state and generations.
func (c *Controller) ResetForTree(tree string) {
	c.tree = tree
	c.folded = make(map[person.ID]bool)
	c.gens = nil
}

// CollapseAll folds every person of f that has children.
func (c *Controller) CollapseAll(f *forest.Forest) {
	for _, id := range f.IDs() {
		if len(f.Children(id)) > 0 {
			c.folded[id] = true
		}
	}
}

// ExpandAll clears every fold flag.
func (c *Controller) ExpandAll() {
	clear(c.folded)
}

// SetGenerations installs the generation map of the current build.
func (c *Controller) SetGenerations(g *forest.Generations) { c.gens = g }

// Generation returns the generation of id, if one is known.
func (c *Controller) Generation(id person.ID) (int, bool) {
	if c.gens == nil {
		return 0, false
	}
	return c.gens.Of(id)
}
