package nodelink

import (
	"bytes"
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/kintree/pkg/forest"
	"github.com/matzehuels/kintree/pkg/person"
)

// Options configures diagram generation.
type Options struct {
	// Detailed adds birth and death lines to node labels.
	Detailed bool

	// Collapsed reports whether a person's descendants are hidden. The
	// person itself stays visible and is drawn with a double border.
	Collapsed func(person.ID) bool
}

var fills = map[person.Sex]string{
	person.SexMale:    "#dbe9f6",
	person.SexFemale:  "#f8dde6",
	person.SexUnknown: "white",
}

// ToDOT converts f to Graphviz DOT. gens may be nil, in which case no rank
// constraints are emitted.
func ToDOT(f *forest.Forest, gens *forest.Generations, opts Options) string {
	visible := visibleSet(f, opts.Collapsed)

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, id := range f.IDs() {
		if !visible[id] {
			continue
		}
		p, _ := f.Person(id)
		attrs := []string{
			fmt.Sprintf("label=%q", label(p, opts.Detailed)),
			fmt.Sprintf("fillcolor=%q", fills[p.Sex]),
		}
		if opts.Collapsed != nil && opts.Collapsed(id) && len(f.Children(id)) > 0 {
			attrs = append(attrs, "peripheries=2")
		}
		fmt.Fprintf(&buf, "  \"%d\" [%s];\n", id, strings.Join(attrs, ", "))
	}

	if gens != nil {
		buf.WriteString("\n")
		for gen, ids := range ranks(f, gens, visible) {
			if len(ids) == 0 {
				continue
			}
			fmt.Fprintf(&buf, "  { rank=same; /* generation %d */", gen)
			for _, id := range ids {
				fmt.Fprintf(&buf, " \"%d\";", id)
			}
			buf.WriteString(" }\n")
		}
	}

	buf.WriteString("\n")
	for _, id := range f.IDs() {
		if !visible[id] {
			continue
		}
		for _, parent := range f.Parents(id) {
			if visible[parent] {
				fmt.Fprintf(&buf, "  \"%d\" -> \"%d\";\n", parent, id)
			}
		}
	}
	for _, id := range f.IDs() {
		for _, sid := range f.Spouses(id) {
			if id < sid && visible[id] && visible[sid] {
				fmt.Fprintf(&buf, "  \"%d\" -> \"%d\" [dir=none, style=dashed, constraint=false];\n", id, sid)
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func label(p person.Person, detailed bool) string {
	if !detailed {
		return p.Name
	}
	lines := []string{p.Name}
	if p.Birth != "" {
		lines = append(lines, "b. "+p.Birth)
	}
	if p.Death != "" {
		lines = append(lines, "d. "+p.Death)
	}
	return strings.Join(lines, "\n")
}

// ranks groups the visible people by generation.
func ranks(f *forest.Forest, gens *forest.Generations, visible map[person.ID]bool) [][]person.ID {
	out := make([][]person.ID, gens.Depth())
	for _, id := range f.IDs() {
		gen, ok := gens.Of(id)
		if !ok || !visible[id] || gen < 0 || gen >= len(out) {
			continue
		}
		out[gen] = append(out[gen], id)
	}
	return out
}

// visibleSet walks down from the roots. Spouses are always shown with their
// partner; children only below people that are not collapsed.
func visibleSet(f *forest.Forest, collapsed func(person.ID) bool) map[person.ID]bool {
	visible := make(map[person.ID]bool, f.Len())
	if collapsed == nil {
		for _, id := range f.IDs() {
			visible[id] = true
		}
		return visible
	}

	queue := f.Roots()
	for _, id := range f.IDs() {
		if len(f.Parents(id)) == 0 && !f.MarriedIn(id) && !slices.Contains(queue, id) {
			queue = append(queue, id)
		}
	}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if visible[id] {
			continue
		}
		visible[id] = true
		queue = append(queue, f.Spouses(id)...)
		if !collapsed(id) {
			queue = append(queue, f.Children(id)...)
		}
	}
	return visible
}
