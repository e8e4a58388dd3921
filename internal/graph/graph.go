package graph

import (
	"github.com/vk/monograph/internal/config"
	"github.com/vk/monograph/internal/registry"
)

// Edge is one dependency relationship between two node indices.
type Edge struct {
	From     int
	To       int
	Scope    config.DependencyScope
	Implicit bool
}

// Graph is the immutable dependency graph of a workspace. All fields are
// written once during Build and read-only afterwards.
type Graph struct {
	// nodes is the arena, ordered by declaration index.
	nodes []*registry.ProjectMetadata
	// index maps project ID to arena position.
	index map[string]int
	edges []Edge
	// deps[i] lists the indices node i depends on, in edge declaration order.
	deps [][]int
	// dependents[i] lists the indices depending on node i.
	dependents [][]int
	// topo is the cached topological order: every dependency precedes its
	// dependents.
	topo []int
}

// Len returns the number of projects in the graph.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Node looks a project up by ID.
func (g *Graph) Node(id string) (*registry.ProjectMetadata, bool) {
	i, ok := g.index[id]
	if !ok {
		return nil, false
	}
	return g.nodes[i], true
}

// Projects returns every project in declaration order. Callers must treat
// the result as read-only.
func (g *Graph) Projects() []*registry.ProjectMetadata {
	return g.nodes
}

// Dependencies returns the IDs a project directly depends on, in edge order.
func (g *Graph) Dependencies(id string) []string {
	i, ok := g.index[id]
	if !ok {
		return nil
	}
	return g.idsOf(g.deps[i])
}

// Dependents returns the IDs directly depending on a project.
func (g *Graph) Dependents(id string) []string {
	i, ok := g.index[id]
	if !ok {
		return nil
	}
	return g.idsOf(g.dependents[i])
}

// DependencyIndices exposes the adjacency row for traversals that work on
// arena indices directly.
func (g *Graph) DependencyIndices(i int) []int {
	return g.deps[i]
}

// DependentIndices exposes the reverse adjacency row.
func (g *Graph) DependentIndices(i int) []int {
	return g.dependents[i]
}

// Index returns the arena position of a project ID.
func (g *Graph) Index(id string) (int, bool) {
	i, ok := g.index[id]
	return i, ok
}

// At returns the project at an arena position.
func (g *Graph) At(i int) *registry.ProjectMetadata {
	return g.nodes[i]
}

// Edges returns every edge. Callers must treat the result as read-only.
func (g *Graph) Edges() []Edge {
	return g.edges
}

// TopologicalOrder returns project IDs with every dependency placed before
// its dependents. The order is computed once during Build and identical for
// identical input.
func (g *Graph) TopologicalOrder() []string {
	return g.idsOf(g.topo)
}

func (g *Graph) idsOf(indices []int) []string {
	ids := make([]string, len(indices))
	for i, n := range indices {
		ids[i] = g.nodes[n].ID
	}
	return ids
}
