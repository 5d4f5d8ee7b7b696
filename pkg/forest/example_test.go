package forest_test

import (
	"fmt"

	"github.com/matzehuels/kintree/pkg/forest"
	"github.com/matzehuels/kintree/pkg/person"
)

func ExampleBuild() {
	f := forest.Build([]person.Person{
		{ID: 1, Name: "Ada"},
		{ID: 2, Name: "Byron", ParentID: 1, SpouseID: 3},
		{ID: 3, Name: "Clara", SpouseID: 2},
		{ID: 4, Name: "Lost", ParentID: 999},
	}, person.TreeAll)

	fmt.Println("Roots:", f.Roots())
	fmt.Println("Children of 1:", f.Children(1))
	fmt.Println("3 married in:", f.MarriedIn(3))
	for _, d := range f.Diagnostics() {
		fmt.Println(d)
	}
	// Output:
	// Roots: [1 4]
	// Children of 1: [2]
	// 3 married in: true
	// person 4: parent 999 not found
}

func ExampleAssignGenerations() {
	f := forest.Build([]person.Person{
		{ID: 1, Name: "Ada"},
		{ID: 2, Name: "Byron", ParentID: 1, SpouseID: 3},
		{ID: 3, Name: "Clara", SpouseID: 2},
		{ID: 4, Name: "Dora", FatherID: 2, MotherID: 3},
	}, person.TreeAll)
	gens := forest.AssignGenerations(f)

	for _, id := range f.IDs() {
		g, _ := gens.Of(id)
		p, _ := f.Person(id)
		fmt.Printf("%d %s\n", g, p.Name)
	}
	// Output:
	// 0 Ada
	// 1 Byron
	// 1 Clara
	// 2 Dora
}
