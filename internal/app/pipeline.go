package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/vk/monograph/internal/affected"
	"github.com/vk/monograph/internal/config"
	"github.com/vk/monograph/internal/constraint"
	"github.com/vk/monograph/internal/ctxlog"
	"github.com/vk/monograph/internal/graph"
	"github.com/vk/monograph/internal/hasher"
	"github.com/vk/monograph/internal/query"
	"github.com/vk/monograph/internal/registry"
	"github.com/vk/monograph/internal/resolver"
)

// ValidationError aggregates every constraint violation found in one pass,
// so a large workspace can be fixed in one round instead of
// failure-by-failure.
type ValidationError struct {
	Violations []constraint.Violation
}

func (e *ValidationError) Error() string {
	lines := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		lines[i] = v.String()
	}
	return fmt.Sprintf("%d constraint violation(s):\n%s", len(e.Violations), strings.Join(lines, "\n"))
}

// Pipeline owns the workspace graph lifecycle. The zero value is not usable;
// construct with NewPipeline.
type Pipeline struct {
	root   string
	loader config.Loader
	// graph holds the published, immutable graph. Readers load it without
	// locks; Reload swaps in a full replacement.
	graph atomic.Pointer[graph.Graph]
}

// NewPipeline creates a pipeline for the workspace at root using the given
// configuration loader.
func NewPipeline(root string, loader config.Loader) *Pipeline {
	return &Pipeline{root: root, loader: loader}
}

// Reload loads the workspace from scratch and, on full success, atomically
// publishes the new graph. Inferred dependencies come from platform manifest
// inspection, which is a collaborator concern; pass nil when unavailable.
// On any error the previously published graph stays in place.
func (pl *Pipeline) Reload(ctx context.Context, inferred map[string][]string) error {
	logger := ctxlog.FromContext(ctx)

	model, err := pl.loader.Load(ctx, pl.root)
	if err != nil {
		return fmt.Errorf("loading workspace: %w", err)
	}
	logger.Debug("workspace model loaded", "projects", len(model.Projects))

	projects, err := registry.Load(model.Projects, registry.Options{
		AllowNestedProjects: model.AllowNestedProjects,
		Exists:              pl.sourceRootExists,
		Order:               model.Order,
	})
	if err != nil {
		return fmt.Errorf("normalizing projects: %w", err)
	}

	edges, err := resolver.Resolve(ctx, projects, inferred)
	if err != nil {
		return fmt.Errorf("resolving dependencies: %w", err)
	}

	g, err := graph.Build(ctx, projects, edges)
	if err != nil {
		return fmt.Errorf("building graph: %w", err)
	}

	rules := constraint.FromConfig(model.Constraints)
	if violations := constraint.Validate(ctx, g, rules); len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}

	pl.graph.Store(g)
	logger.Debug("graph published", "projects", g.Len(), "edges", len(g.Edges()))
	return nil
}

// Graph returns the currently published graph, or nil before the first
// successful Reload.
func (pl *Pipeline) Graph() *graph.Graph {
	return pl.graph.Load()
}

// Select parses and evaluates a query expression against the published graph.
func (pl *Pipeline) Select(expr string) ([]*registry.ProjectMetadata, error) {
	g := pl.graph.Load()
	if g == nil {
		return nil, fmt.Errorf("no graph loaded")
	}
	pred, err := query.Parse(expr)
	if err != nil {
		return nil, err
	}
	return query.Select(g, pred), nil
}

// Affected computes the change-impact set for a batch of changed paths.
func (pl *Pipeline) Affected(ctx context.Context, changed []string, dir affected.Direction) (affected.Set, error) {
	g := pl.graph.Load()
	if g == nil {
		return nil, fmt.Errorf("no graph loaded")
	}
	return affected.Compute(ctx, g, changed, dir), nil
}

// Fingerprint computes a project's fingerprint with the given digest
// collaborator and workspace file listing.
func (pl *Pipeline) Fingerprint(ctx context.Context, id string, digester hasher.Digester, workspaceFiles []string) (hasher.Fingerprint, error) {
	g := pl.graph.Load()
	if g == nil {
		return hasher.Fingerprint{}, fmt.Errorf("no graph loaded")
	}
	p, ok := g.Node(id)
	if !ok {
		return hasher.Fingerprint{}, fmt.Errorf("unknown project %q", id)
	}
	h := hasher.New(digester, workspaceFiles)
	return h.Fingerprint(ctx, p, g.Dependencies(id))
}

func (pl *Pipeline) sourceRootExists(sourceRoot string) bool {
	info, err := os.Stat(filepath.Join(pl.root, filepath.FromSlash(sourceRoot)))
	return err == nil && info.IsDir()
}
