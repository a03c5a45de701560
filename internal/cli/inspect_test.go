package cli

import (
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/forcegraph/pkg/graph"
)

// star builds a hub with three spokes plus a self-loop on the hub.
func star(t *testing.T) *graph.Graph {
	t.Helper()
	g, err := graph.Load(
		[]graph.Node{
			{ID: "d", Group: "leaf"},
			{ID: "hub", Group: "core"},
			{ID: "b", Group: "leaf"},
			{ID: "a", Group: "aux"},
		},
		[]graph.Link{
			{Source: "hub", Target: "d", Value: graph.NumberValue(2)},
			{Source: "hub", Target: "b"},
			{Source: "hub", Target: "a", Value: graph.NumberValue(0.5)},
			{Source: "hub", Target: "hub"},
		},
	)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return g
}

func TestValidateSort(t *testing.T) {
	for _, s := range []string{"input", "degree", "id", "group"} {
		if err := validateSort(s); err != nil {
			t.Errorf("validateSort(%q) = %v", s, err)
		}
	}
	if err := validateSort("weight"); err == nil {
		t.Error("validateSort(weight) = nil")
	}
}

func TestNodeOrder(t *testing.T) {
	g := star(t)
	tests := []struct {
		sortBy string
		want   []int
	}{
		{"input", []int{0, 1, 2, 3}},
		{"degree", []int{1, 0, 2, 3}},
		{"id", []int{3, 2, 0, 1}},
		{"group", []int{3, 1, 0, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.sortBy, func(t *testing.T) {
			if got := nodeOrder(g, tt.sortBy); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("nodeOrder(%s) = %v, want %v", tt.sortBy, got, tt.want)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	g := star(t)
	g.Pin(0, 1, 1)

	got := summarize(g)
	want := graphSummary{nodes: 4, links: 4, groups: 3, selfLoops: 1, pinned: 1, minW: 0.5, maxW: 2}
	if got != want {
		t.Errorf("summarize() = %+v, want %+v", got, want)
	}
}

func TestNodeTable(t *testing.T) {
	g := star(t)

	out := nodeTable(g, "degree", 2, false)
	if !strings.Contains(out, "hub") || !strings.Contains(out, "Degree") {
		t.Errorf("table missing hub row or header:\n%s", out)
	}
	if strings.Contains(out, " a ") {
		t.Errorf("limit 2 still lists node a:\n%s", out)
	}
	if strings.Contains(out, "X") {
		t.Errorf("positions shown without a layout:\n%s", out)
	}

	if out := nodeTable(g, "input", 0, true); !strings.Contains(out, "X") || !strings.Contains(out, "Y") {
		t.Errorf("position columns missing:\n%s", out)
	}
}
