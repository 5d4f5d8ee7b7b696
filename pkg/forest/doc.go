// Package forest derives the family forest from a flat list of person records
// and numbers its generations.
//
// # Building
//
// [Build] takes the records of one tree (or every record, for
// [person.TreeAll]) and produces a read-only [Forest]: root identifiers,
// children grouped under every resolvable parent, in-scope parent lists,
// symmetric spouse pairs, the set of people who entered the tree by marriage
// and each person's primary parent.
//
// Build never fails on dirty data. Defects degrade to a valid forest and are
// reported as [Diagnostic] values:
//
//   - A parent or spouse link to an identifier outside the scope is treated
//     as "no link". A person whose only parents dangle becomes a root.
//   - A one-sided spouse link is paired when the other side has no link of
//     its own, and reported either way.
//   - A person listed as their own parent is moved to [Forest.Unresolved]
//     with a CYCLIC_REFERENCE error and left out of the forest.
//   - Longer ancestry loops are broken by dropping the link that closes the
//     loop during a depth-first walk in ascending id order.
//
// A Forest is a snapshot. It is never patched; rebuild it after the store
// changes.
//
// # Generations
//
// [AssignGenerations] numbers the forest breadth-first from its roots, all at
// generation 0. Children sit one below their parent. A person who married
// into the tree shares the generation of their spouse. When a person is
// reachable at two different depths the smaller one is kept and the other is
// recorded as a [Conflict]:
//
//	f := forest.Build(store.Scope("smith"), "smith")
//	gens := forest.AssignGenerations(f)
//	g, _ := gens.Of(42)
//
// Generation numbers are local to each root line. Unrelated roots are not
// aligned with each other, but roots married to each other share 0.
package forest
