package partition

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestComponents(t *testing.T) {
	tests := []struct {
		name   string
		edges  [][2]string
		cycles [][]string
	}{
		{
			name:  "acyclic",
			edges: [][2]string{{"a", "b"}, {"b", "c"}, {"a", "c"}},
		},
		{
			name:   "two cycle",
			edges:  [][2]string{{"b", "a"}, {"a", "b"}, {"b", "c"}},
			cycles: [][]string{{"a", "b"}},
		},
		{
			name:   "separate cycles",
			edges:  [][2]string{{"x", "y"}, {"y", "z"}, {"z", "x"}, {"c", "d"}, {"d", "c"}},
			cycles: [][]string{{"c", "d"}, {"x", "y", "z"}},
		},
		{
			name:   "duplicate edges",
			edges:  [][2]string{{"a", "b"}, {"a", "b"}, {"b", "a"}},
			cycles: [][]string{{"a", "b"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := make(graph)
			for _, e := range tt.edges {
				g.add(e[0], e[1])
			}
			if diff := cmp.Diff(tt.cycles, g.cycles()); diff != "" {
				t.Errorf("cycles mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestComponentsCoverEveryVertex(t *testing.T) {
	g := make(graph)
	g.add("a", "b")
	g.add("b", "a")
	g.add("b", "c")

	var got []string
	for _, scc := range g.components() {
		got = append(got, scc...)
	}
	if len(got) != 3 {
		t.Fatalf("components = %v, expected 3 vertices", g.components())
	}
}

func TestCycles(t *testing.T) {
	deps := map[string][]string{
		"widget":  {"account", "shared"},
		"account": {"widget"},
		"card":    {"shared"},
	}
	want := [][]string{{"account", "widget"}}
	if diff := cmp.Diff(want, Cycles(deps)); diff != "" {
		t.Errorf("Cycles mismatch (-want +got):\n%s", diff)
	}
	if got := Cycles(map[string][]string{"a": {"b"}}); len(got) != 0 {
		t.Errorf("Cycles of an acyclic graph = %v", got)
	}
}
