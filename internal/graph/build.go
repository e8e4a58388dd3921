package graph

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/vk/monograph/internal/ctxlog"
	"github.com/vk/monograph/internal/registry"
	"github.com/vk/monograph/internal/resolver"
)

// CycleError reports a dependency cycle. Path is the ordered sequence of
// project IDs forming the cycle, starting and ending at the same ID.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cyclic dependency detected: %s", strings.Join(e.Path, " -> "))
}

// Build assembles a validated, immutable Graph from normalized projects and
// resolved edges. It fails with CycleError when the edge set is not acyclic;
// on success the returned graph carries a cached, deterministic topological
// order.
func Build(ctx context.Context, projects map[string]*registry.ProjectMetadata, edges []resolver.Edge) (*Graph, error) {
	logger := ctxlog.FromContext(ctx)

	nodes := make([]*registry.ProjectMetadata, 0, len(projects))
	for _, p := range projects {
		nodes = append(nodes, p)
	}
	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].DeclIndex != nodes[j].DeclIndex {
			return nodes[i].DeclIndex < nodes[j].DeclIndex
		}
		return nodes[i].ID < nodes[j].ID
	})

	g := &Graph{
		nodes:      nodes,
		index:      make(map[string]int, len(nodes)),
		deps:       make([][]int, len(nodes)),
		dependents: make([][]int, len(nodes)),
	}
	for i, p := range nodes {
		g.index[p.ID] = i
	}

	for _, e := range edges {
		from, ok := g.index[e.From]
		if !ok {
			return nil, fmt.Errorf("edge references unknown source project %q", e.From)
		}
		to, ok := g.index[e.To]
		if !ok {
			return nil, fmt.Errorf("edge references unknown target project %q", e.To)
		}
		g.edges = append(g.edges, Edge{From: from, To: to, Scope: e.Scope, Implicit: e.Implicit})
		g.deps[from] = append(g.deps[from], to)
		g.dependents[to] = append(g.dependents[to], from)
	}
	logger.Debug("graph assembled", "nodes", len(g.nodes), "edges", len(g.edges))

	if cycle := g.findCycle(); cycle != nil {
		return nil, &CycleError{Path: cycle}
	}
	logger.Debug("cycle detection passed")

	g.topo = g.topologicalSort()
	logger.Debug("topological order cached", "first", firstID(g))

	return g, nil
}

func firstID(g *Graph) string {
	if len(g.topo) == 0 {
		return ""
	}
	return g.nodes[g.topo[0]].ID
}

// findCycle runs a depth-first search with an in-progress marker per node
// and returns the first back-edge as a closed ID path, or nil when the graph
// is acyclic. Nodes are visited in arena order so the reported cycle is
// deterministic.
func (g *Graph) findCycle() []string {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make([]int, len(g.nodes))
	var stack []int

	var visit func(n int) []string
	visit = func(n int) []string {
		state[n] = visiting
		stack = append(stack, n)

		for _, dep := range g.deps[n] {
			switch state[dep] {
			case visiting:
				// Back-edge: slice the stack from the first occurrence of dep
				// and close the loop.
				for i, s := range stack {
					if s == dep {
						cycle := make([]string, 0, len(stack)-i+1)
						for _, idx := range stack[i:] {
							cycle = append(cycle, g.nodes[idx].ID)
						}
						return append(cycle, g.nodes[dep].ID)
					}
				}
			case unvisited:
				if cycle := visit(dep); cycle != nil {
					return cycle
				}
			}
		}

		stack = stack[:len(stack)-1]
		state[n] = done
		return nil
	}

	for n := range g.nodes {
		if state[n] == unvisited {
			if cycle := visit(n); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}

// topologicalSort orders nodes so every dependency precedes its dependents.
// Kahn's algorithm with the ready set drained in arena (declaration) order
// keeps the result byte-identical across runs with identical input. Only
// called after findCycle has proven acyclicity.
func (g *Graph) topologicalSort() []int {
	remaining := make([]int, len(g.nodes))
	for n := range g.nodes {
		remaining[n] = len(g.deps[n])
	}

	order := make([]int, 0, len(g.nodes))
	placed := make([]bool, len(g.nodes))

	for len(order) < len(g.nodes) {
		for n := range g.nodes {
			if placed[n] || remaining[n] != 0 {
				continue
			}
			placed[n] = true
			order = append(order, n)
			for _, dependent := range g.dependents[n] {
				remaining[dependent]--
			}
		}
	}
	return order
}
