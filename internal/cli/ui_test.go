package cli

import (
	"testing"

	"github.com/matzehuels/kintree/pkg/person"
	"github.com/matzehuels/kintree/pkg/view"
)

func TestLifespan(t *testing.T) {
	tests := []struct {
		birth, death, want string
	}{
		{"1901", "1975", "(1901-1975)"},
		{"1901", "", "(b. 1901)"},
		{"", "1975", "(d. 1975)"},
		{"", "", ""},
	}
	for _, tt := range tests {
		if got := lifespan(tt.birth, tt.death); got != tt.want {
			t.Errorf("lifespan(%q, %q) = %q, want %q", tt.birth, tt.death, got, tt.want)
		}
	}
}

func TestFormatNodePlain(t *testing.T) {
	tests := []struct {
		name string
		node view.Node
		want string
	}{
		{
			name: "leaf",
			node: view.Node{ID: 4, Name: "Dee", Depth: 2},
			want: "    · Dee [4]",
		},
		{
			name: "expanded with spouse and dates",
			node: view.Node{
				ID: 1, Name: "Ann", Birth: "1901", Death: "1975", HasChildren: true,
				Spouses: []view.Partner{{ID: 2, Name: "Bob", Sex: person.SexMale}},
			},
			want: "▾ Ann (1901-1975) [1] ⚭ Bob",
		},
		{
			name: "folded",
			node: view.Node{ID: 3, Name: "Cal", Depth: 1, HasChildren: true, Folded: true},
			want: "  ▸ Cal [3]",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatNode(tt.node, false); got != tt.want {
				t.Errorf("formatNode() = %q, want %q", got, tt.want)
			}
		})
	}
}
