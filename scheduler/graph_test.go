package scheduler

import (
	"reflect"
	"slices"
	"testing"
)

func TestGraph_Plan(t *testing.T) {
	tests := []struct {
		name  string
		nodes []Node
		waves [][]string
		cycle []string
	}{
		{
			name: "priority and dependency",
			nodes: []Node{
				{ID: "A", Priority: 9},
				{ID: "B", Priority: 6, Dependencies: []string{"A"}},
				{ID: "C", Priority: 3},
			},
			waves: [][]string{{"A", "C"}, {"B"}},
		},
		{
			name: "equal priority sorts by id",
			nodes: []Node{
				{ID: "b"}, {ID: "a"}, {ID: "c", Priority: 1},
			},
			waves: [][]string{{"c", "a", "b"}},
		},
		{
			name: "chain",
			nodes: []Node{
				{ID: "render", Priority: 5, Dependencies: []string{"document"}},
				{ID: "document", Priority: 10},
				{ID: "announce", Dependencies: []string{"render", "render"}},
			},
			waves: [][]string{{"document"}, {"render"}, {"announce"}},
		},
		{
			name: "cycle",
			nodes: []Node{
				{ID: "x", Dependencies: []string{"y"}},
				{ID: "y", Dependencies: []string{"x"}},
				{ID: "z", Priority: 1},
				{ID: "after", Dependencies: []string{"x"}},
			},
			waves: [][]string{{"z"}},
			cycle: []string{"after", "x", "y"},
		},
		{
			name:  "self dependency",
			nodes: []Node{{ID: "self", Dependencies: []string{"self"}}},
			cycle: []string{"self"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := NewGraph(tt.nodes...).Plan()
			if !reflect.DeepEqual(plan.Waves, tt.waves) {
				t.Errorf("Waves = %v, want %v", plan.Waves, tt.waves)
			}
			if !slices.Equal(plan.Cycle, tt.cycle) {
				t.Errorf("Cycle = %v, want %v", plan.Cycle, tt.cycle)
			}
		})
	}
}

func TestGraph_UnknownDependency(t *testing.T) {
	plan := NewGraph(
		Node{ID: "a", Dependencies: []string{"ghost"}},
		Node{ID: "b", Dependencies: []string{"a"}},
	).Plan()

	if !reflect.DeepEqual(plan.Waves, [][]string{{"a"}, {"b"}}) {
		t.Errorf("Waves = %v", plan.Waves)
	}
	if !slices.Equal(plan.Unknown["a"], []string{"ghost"}) {
		t.Errorf("Unknown = %v", plan.Unknown)
	}
}

func TestGraph_FindCycle(t *testing.T) {
	g := NewGraph(
		Node{ID: "x", Dependencies: []string{"y"}},
		Node{ID: "y", Dependencies: []string{"z"}},
		Node{ID: "z", Dependencies: []string{"y"}},
		Node{ID: "free"},
	)

	if got := g.FindCycle([]string{"x", "y", "z"}); !slices.Equal(got, []string{"y", "z", "y"}) {
		t.Errorf("FindCycle = %v, want [y z y]", got)
	}
	if got := g.FindCycle([]string{"free"}); got != nil {
		t.Errorf("FindCycle(free) = %v, want nil", got)
	}
	if got := g.FindCycle(nil); got != nil {
		t.Errorf("FindCycle(nil) = %v, want nil", got)
	}
}
