// Package pkg holds the kintree libraries.
//
// kintree turns flat person records (id, name, parent and spouse links,
// tree key) into a multi-generation family forest and answers questions
// about it. The packages stack as follows:
//
//	[person]         records, patches and the in-memory store
//	    ↓
//	[forest]         validated forest, roots, spouses, generations
//	    ↓
//	[kinship] [view] relationship labels; fold state and render rows
//	    ↓
//	[session]        one client's view over a store, cached per version
//
// Around the engine:
//
//   - [io] reads and writes JSON, CSV, spreadsheet CSV, GEDCOM and YAML.
//   - [storage] saves named datasets in memory, files, Redis or MongoDB.
//   - [render] draws a forest with Graphviz.
//   - [observability] carries hooks for builds, codecs and storage; the
//     metrics subpackage feeds them into Prometheus.
//   - [errors] defines the coded errors every package returns.
//
// A minimal round trip:
//
//	people, err := io.ImportFile(ctx, "family.csv", io.CSV)
//	store := person.NewStore()
//	err = store.Replace(people)
//	f := forest.Build(store.All(), person.TreeAll)
//	rel, err := kinship.Resolve(f, 4, 2)
//	fmt.Println(rel.Sentence(f)) // "Dee is the grandchild of Bob"
//
// [person]: github.com/matzehuels/kintree/pkg/person
// [forest]: github.com/matzehuels/kintree/pkg/forest
// [kinship]: github.com/matzehuels/kintree/pkg/kinship
// [view]: github.com/matzehuels/kintree/pkg/view
// [session]: github.com/matzehuels/kintree/pkg/session
// [io]: github.com/matzehuels/kintree/pkg/io
// [storage]: github.com/matzehuels/kintree/pkg/storage
// [render]: github.com/matzehuels/kintree/pkg/render
// [observability]: github.com/matzehuels/kintree/pkg/observability
// [errors]: github.com/matzehuels/kintree/pkg/errors
package pkg
