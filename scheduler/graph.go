package scheduler

import (
	"cmp"
	"slices"
)

// Node is one update unit as seen by the dependency graph.
type Node struct {
	ID           string
	Priority     int
	Dependencies []string
}

// Plan is the execution order computed for one switch.
type Plan struct {
	// Waves run one after another; units within a wave run concurrently.
	// Each wave is ordered by priority descending, then id ascending.
	Waves [][]string
	// Cycle holds the units that could not be placed because their
	// dependencies never complete.
	Cycle []string
	// Unknown maps a unit to dependency ids that are not registered.
	Unknown map[string][]string
}

// Graph is a dependency graph of update units.
type Graph struct {
	nodes map[string]Node
}

// NewGraph builds a graph from nodes. Later duplicates replace earlier ones.
func NewGraph(nodes ...Node) *Graph {
	g := &Graph{nodes: make(map[string]Node, len(nodes))}
	for _, n := range nodes {
		g.nodes[n.ID] = n
	}
	return g
}

// Plan groups the nodes into waves with Kahn's algorithm: a node joins the
// first wave after all its dependencies. Unknown dependencies are ignored.
func (g *Graph) Plan() Plan {
	plan := Plan{Unknown: make(map[string][]string)}

	indegree := make(map[string]int, len(g.nodes))
	dependents := make(map[string][]string, len(g.nodes))
	for id, n := range g.nodes {
		seen := make(map[string]bool, len(n.Dependencies))
		for _, dep := range n.Dependencies {
			if seen[dep] {
				continue
			}
			seen[dep] = true
			if _, ok := g.nodes[dep]; !ok {
				plan.Unknown[id] = append(plan.Unknown[id], dep)
				continue
			}
			indegree[id]++
			dependents[dep] = append(dependents[dep], id)
		}
	}

	var ready []string
	for id := range g.nodes {
		if indegree[id] == 0 {
			ready = append(ready, id)
		}
	}

	placed := 0
	for len(ready) > 0 {
		g.sortWave(ready)
		plan.Waves = append(plan.Waves, ready)
		placed += len(ready)

		var next []string
		for _, id := range ready {
			for _, dependent := range dependents[id] {
				indegree[dependent]--
				if indegree[dependent] == 0 {
					next = append(next, dependent)
				}
			}
		}
		ready = next
	}

	if placed < len(g.nodes) {
		for id := range g.nodes {
			if indegree[id] > 0 {
				plan.Cycle = append(plan.Cycle, id)
			}
		}
		g.sortWave(plan.Cycle)
	}
	return plan
}

// sortWave orders ids by priority descending, then id ascending.
func (g *Graph) sortWave(ids []string) {
	slices.SortFunc(ids, func(a, b string) int {
		if c := cmp.Compare(g.nodes[b].Priority, g.nodes[a].Priority); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
}

// FindCycle returns one dependency cycle among ids, with the first id
// repeated at the end, or nil if following dependencies within ids never
// revisits a node.
func (g *Graph) FindCycle(ids []string) []string {
	within := make(map[string]bool, len(ids))
	for _, id := range ids {
		within[id] = true
	}

	if len(ids) == 0 {
		return nil
	}
	start := slices.Min(ids)

	var path []string
	index := make(map[string]int)
	current := start
	for {
		if i, seen := index[current]; seen {
			return append(path[i:], current)
		}
		index[current] = len(path)
		path = append(path, current)

		deps := slices.Clone(g.nodes[current].Dependencies)
		slices.Sort(deps)
		next := ""
		for _, dep := range deps {
			if within[dep] {
				next = dep
				break
			}
		}
		if next == "" {
			return nil
		}
		current = next
	}
}
