// Package graph assembles projects and resolved edges into an immutable
// directed acyclic graph.
//
// Nodes live in a dense arena indexed by declaration order, with a side map
// from project ID to index; edges and adjacency lists are index pairs. Build
// rejects cyclic input with the full offending cycle path and caches a stable
// topological order before publishing.
//
// A published Graph is never mutated. Any workspace change produces a new
// Graph, and callers swap references atomically, so concurrent readers need
// no locks and never observe a partial structure.
package graph
