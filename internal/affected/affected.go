// Package affected computes change-impact sets: which projects a set of
// changed file paths touches, optionally expanded along dependency edges.
package affected

import (
	"context"
	"fmt"
	"sort"

	"github.com/vk/monograph/internal/ctxlog"
	"github.com/vk/monograph/internal/graph"
	"github.com/vk/monograph/internal/registry"
)

// Direction controls how the direct set expands along graph edges.
type Direction string

const (
	// DirectionNone returns only directly touched projects.
	DirectionNone Direction = "none"
	// DirectionDownstream adds every transitive dependent of a touched
	// project: its consumers must be rebuilt and retested.
	DirectionDownstream Direction = "downstream"
	// DirectionUpstream adds everything a touched project transitively
	// depends on, for cache-key invalidation purposes.
	DirectionUpstream Direction = "upstream"
	// DirectionBoth unions upstream and downstream expansion.
	DirectionBoth Direction = "both"
)

// ParseDirection validates a direction string from the CLI surface.
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case DirectionNone, DirectionDownstream, DirectionUpstream, DirectionBoth:
		return Direction(s), nil
	}
	return "", fmt.Errorf("unknown direction %q (expected none, downstream, upstream or both)", s)
}

// Reason explains why a project is in the set.
type Reason string

const (
	ReasonDirect     Reason = "direct"
	ReasonDownstream Reason = "downstream"
	ReasonUpstream   Reason = "upstream"
)

// Entry is one affected project: why it is included and, for direct hits,
// the changed paths that put it there.
type Entry struct {
	Reason Reason
	Paths  []string
}

// Set maps project ID to its affected entry. Sets are computed fresh per
// call; the changed-path input varies per invocation so nothing is cached.
type Set map[string]Entry

// IDs returns the affected project IDs sorted, for deterministic rendering.
func (s Set) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Compute determines the affected set for a batch of changed workspace paths.
// A project is directly affected when a changed path falls under its source
// root or matches one of its file group patterns. Empty input yields an
// empty set: silently treating "nothing changed" as "everything changed" is
// exactly the over-invalidation bug this guards against.
func Compute(ctx context.Context, g *graph.Graph, changed []string, dir Direction) Set {
	logger := ctxlog.FromContext(ctx)
	set := make(Set)
	if len(changed) == 0 {
		return set
	}

	direct := directHits(g, changed, set)
	logger.Debug("direct affected projects determined", "changed_paths", len(changed), "direct", len(direct))

	if dir == DirectionDownstream || dir == DirectionBoth {
		expand(g, direct, set, ReasonDownstream, g.DependentIndices)
	}
	if dir == DirectionUpstream || dir == DirectionBoth {
		expand(g, direct, set, ReasonUpstream, g.DependencyIndices)
	}

	logger.Debug("affected computation complete", "direction", string(dir), "total", len(set))
	return set
}

func directHits(g *graph.Graph, changed []string, set Set) []int {
	var direct []int
	for i, p := range g.Projects() {
		var paths []string
		for _, raw := range changed {
			rel := registry.CanonicalPath(raw)
			if p.ContainsPath(rel) || p.MatchesFileGroup(rel) {
				paths = append(paths, rel)
			}
		}
		if len(paths) > 0 {
			set[p.ID] = Entry{Reason: ReasonDirect, Paths: paths}
			direct = append(direct, i)
		}
	}
	return direct
}

// expand walks edges breadth-first from the direct set. The visited guard
// keeps diamond-shaped graphs from being walked repeatedly, and acyclicity
// bounds the traversal.
func expand(g *graph.Graph, direct []int, set Set, reason Reason, next func(int) []int) {
	visited := make([]bool, g.Len())
	queue := append([]int(nil), direct...)
	for _, i := range direct {
		visited[i] = true
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, n := range next(cur) {
			if visited[n] {
				continue
			}
			visited[n] = true
			id := g.At(n).ID
			// Direct hits keep their reason even when reachable by expansion.
			if _, exists := set[id]; !exists {
				set[id] = Entry{Reason: reason}
			}
			queue = append(queue, n)
		}
	}
}
