// Package person defines the person record and the Person Store, the single
// source of truth for a genealogy dataset.
//
// # Records
//
// A [Person] carries a positive integer [ID], a name, an optional [Sex], up to
// three parent links ([Person.FatherID], [Person.MotherID] and the generic
// [Person.ParentID] used by datasets that do not distinguish), an optional
// spouse link and free-form metadata. Links are plain identifiers: the store
// never checks that they resolve. Dangling and one-sided links are handled by
// package forest when the graph is built.
//
// # Store
//
// [Store] owns the records in insertion order. All mutations go through
// [Store.Add], [Store.Update], [Store.Remove] and [Store.Replace]; each either
// fully succeeds or leaves the store unchanged. Every successful mutation bumps
// [Store.Version], which derived views use to detect staleness:
//
//	s := person.NewStore()
//	_ = s.Add(person.Person{ID: 1, Name: "Ada"})
//	v := s.Version()
//	_ = s.Add(person.Person{ID: 2, Name: "Byron", ParentID: 1})
//	stale := s.Version() != v // true
//
// # Trees
//
// Several named datasets ("trees") can share one store. Each record names its
// tree in [Person.Tree]; [Store.Scope] returns the subset for one key, and the
// synthetic key [TreeAll] selects every record.
package person
