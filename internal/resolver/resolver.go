package resolver

import (
	"context"
	"fmt"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/vk/monograph/internal/config"
	"github.com/vk/monograph/internal/ctxlog"
	"github.com/vk/monograph/internal/registry"
)

// Edge is one resolved dependency: From requires To.
type Edge struct {
	From     string
	To       string
	Scope    config.DependencyScope
	Implicit bool
}

// UnknownDependencyError reports an exact-ID reference naming no workspace project.
type UnknownDependencyError struct {
	From    string
	Missing string
}

func (e *UnknownDependencyError) Error() string {
	return fmt.Sprintf("project %q depends on unknown project %q", e.From, e.Missing)
}

// SelfDependencyError reports a project referencing itself.
type SelfDependencyError struct {
	ID string
}

func (e *SelfDependencyError) Error() string {
	return fmt.Sprintf("project %q depends on itself", e.ID)
}

// Resolve turns every project's declared references plus the inferred edge
// map into concrete edges. Output order follows declaration order (projects
// by DeclIndex, references as declared, selector expansions by target
// DeclIndex), which downstream topological sorting relies on for stable
// tie-breaking. Duplicate (from, to) pairs keep their first occurrence, so an
// explicit edge always wins over an implicit one.
func Resolve(ctx context.Context, projects map[string]*registry.ProjectMetadata, inferred map[string][]string) ([]Edge, error) {
	logger := ctxlog.FromContext(ctx)

	ordered := make([]*registry.ProjectMetadata, 0, len(projects))
	for _, p := range projects {
		ordered = append(ordered, p)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].DeclIndex < ordered[j].DeclIndex })

	var edges []Edge
	seen := make(map[[2]string]bool)
	add := func(e Edge) {
		key := [2]string{e.From, e.To}
		if seen[key] {
			return
		}
		seen[key] = true
		edges = append(edges, e)
	}

	for _, p := range ordered {
		for _, ref := range p.DependsOn {
			targets, err := expand(p, ref, ordered, projects)
			if err != nil {
				return nil, err
			}
			for _, to := range targets {
				add(Edge{From: p.ID, To: to, Scope: ref.Scope, Implicit: ref.Implicit})
			}
		}
	}

	// Inferred edges merge in after every explicit reference. Targets outside
	// the workspace are third-party packages and fall out of graph scope.
	for _, p := range ordered {
		for _, to := range inferred[p.ID] {
			if to == p.ID {
				return nil, &SelfDependencyError{ID: p.ID}
			}
			if _, known := projects[to]; !known {
				logger.Debug("dropping inferred dependency on non-workspace target", "from", p.ID, "target", to)
				continue
			}
			add(Edge{From: p.ID, To: to, Scope: config.ScopeBuild, Implicit: true})
		}
	}

	logger.Debug("dependency resolution complete", "projects", len(ordered), "edges", len(edges))
	return edges, nil
}

// expand produces the concrete target IDs for one reference. Selector
// variants expand against the full project set and skip the declaring
// project; an empty expansion is a valid outcome, not an error.
func expand(from *registry.ProjectMetadata, ref config.DependencyRef, ordered []*registry.ProjectMetadata, projects map[string]*registry.ProjectMetadata) ([]string, error) {
	switch ref.Kind {
	case config.RefByID:
		if ref.Target == from.ID {
			return nil, &SelfDependencyError{ID: from.ID}
		}
		if _, ok := projects[ref.Target]; !ok {
			return nil, &UnknownDependencyError{From: from.ID, Missing: ref.Target}
		}
		return []string{ref.Target}, nil

	case config.RefByTag:
		var targets []string
		for _, cand := range ordered {
			if cand.ID != from.ID && cand.HasTag(ref.Target) {
				targets = append(targets, cand.ID)
			}
		}
		return targets, nil

	case config.RefByGlob:
		var targets []string
		for _, cand := range ordered {
			if cand.ID == from.ID {
				continue
			}
			ok, err := doublestar.Match(ref.Target, cand.ID)
			if err != nil {
				return nil, fmt.Errorf("project %q: bad dependency pattern %q: %w", from.ID, ref.Target, err)
			}
			if ok {
				targets = append(targets, cand.ID)
			}
		}
		return targets, nil

	default:
		return nil, fmt.Errorf("project %q: unsupported dependency reference kind %q", from.ID, ref.Kind)
	}
}
