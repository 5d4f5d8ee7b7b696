// Package kinship names the relationship between two people of a forest.
//
// [Resolve] finds how person A relates to person B and returns a
// [Relationship] whose Label reads "A is the <Label> of B":
//
//	rel, err := kinship.Resolve(f, 1, 2)
//	// rel.Label == "parent", rel.Gendered == "mother"
//
// Blood relationships are located through the closest common ancestor. Up is
// the number of generations from A to that ancestor and Down the number from
// the ancestor to B. The pair is turned into a label by [Classify], a pure
// rule table that can be tested on its own:
//
//	(0,1) parent       (1,0) child
//	(0,2) grandparent  (2,0) grandchild
//	(1,1) sibling
//	(1,2) aunt/uncle   (2,1) niece/nephew
//	(2,2) first cousin (2,3) first cousin, once removed
//
// When no blood link exists the resolver looks across one marriage on either
// end, giving "<label>-in-law" or, across both ends, "co-<label>-in-law". A
// remaining connection through the family graph is a "relative by marriage".
// Unrelated people yield a NOT_RELATED error.
//
// Labels are neutral. [Relationship.Gendered] specializes them by the sex of
// A ("parent" becomes "father" or "mother").
package kinship
