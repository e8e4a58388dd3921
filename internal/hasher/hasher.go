// Package hasher computes deterministic project fingerprints for cache keys
// and affected decisions. It combines normalized configuration, per-file
// content digests and resolved dependency IDs in a fixed order, and never
// opens files itself: content digesting is delegated to a Digester
// collaborator so the core stays unit-testable with fake digests.
package hasher

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/vk/monograph/internal/ctxlog"
	"github.com/vk/monograph/internal/registry"
)

// Digester provides a content digest for one workspace-relative path.
type Digester interface {
	Digest(ctx context.Context, path string) (string, error)
}

// Input is one (path, digest) pair that fed a fingerprint. Configuration and
// dependency inputs appear with synthetic "cfg:" and "dep:" paths so the full
// input set stays explainable.
type Input struct {
	Path   string
	Digest string
}

// Fingerprint is an opaque digest plus the ordered inputs that produced it.
// Values are immutable once returned; persistence belongs to the cache
// collaborator.
type Fingerprint struct {
	Digest string
	Inputs []Input
}

// Hasher fingerprints projects against a fixed snapshot of workspace files.
type Hasher struct {
	digester Digester
	// files is the canonical workspace file listing, matched against each
	// project's file groups.
	files   []string
	workers int
}

// New creates a Hasher over a workspace file listing. The listing typically
// comes from the VCS collaborator; paths are canonicalized here so callers
// can pass them as-is.
func New(digester Digester, workspaceFiles []string) *Hasher {
	files := make([]string, len(workspaceFiles))
	for i, f := range workspaceFiles {
		files[i] = registry.CanonicalPath(f)
	}
	sort.Strings(files)
	return &Hasher{digester: digester, files: files, workers: runtime.NumCPU()}
}

// Fingerprint computes the project's deterministic fingerprint. deps is the
// project's resolved dependency ID list; including it means a dependency
// identity change invalidates dependents without any file touch. File digests
// may be computed in parallel, but combination always proceeds in sorted path
// order, so the result is byte-identical regardless of scheduling.
func (h *Hasher) Fingerprint(ctx context.Context, p *registry.ProjectMetadata, deps []string) (Fingerprint, error) {
	logger := ctxlog.FromContext(ctx)

	inputs := configInputs(p)

	paths := p.FileGroupPaths(h.files)
	digests := make([]string, len(paths))

	grp, grpCtx := errgroup.WithContext(ctx)
	grp.SetLimit(h.workers)
	for i, path := range paths {
		i, path := i, path
		grp.Go(func() error {
			d, err := h.digester.Digest(grpCtx, path)
			if err != nil {
				return fmt.Errorf("digesting %s: %w", path, err)
			}
			digests[i] = d
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return Fingerprint{}, err
	}

	for i, path := range paths {
		inputs = append(inputs, Input{Path: path, Digest: digests[i]})
	}

	sortedDeps := append([]string(nil), deps...)
	sort.Strings(sortedDeps)
	for _, dep := range sortedDeps {
		inputs = append(inputs, Input{Path: "dep:" + dep, Digest: dep})
	}

	sum := sha256.New()
	for _, in := range inputs {
		fmt.Fprintf(sum, "%s=%s\n", in.Path, in.Digest)
	}

	fp := Fingerprint{Digest: hex.EncodeToString(sum.Sum(nil)), Inputs: inputs}
	logger.Debug("fingerprint computed", "project", p.ID, "files", len(paths), "digest", fp.Digest[:12])
	return fp, nil
}

// configInputs serializes the build-relevant configuration fields in a fixed
// declared order. Purely cosmetic fields never participate.
func configInputs(p *registry.ProjectMetadata) []Input {
	inputs := []Input{
		{Path: "cfg:id", Digest: p.ID},
		{Path: "cfg:source_root", Digest: p.SourceRoot},
		{Path: "cfg:language", Digest: p.Language},
		{Path: "cfg:type", Digest: string(p.Type)},
	}
	for _, tag := range p.TagList() {
		inputs = append(inputs, Input{Path: "cfg:tag", Digest: tag})
	}

	groups := make([]string, 0, len(p.FileGroups))
	for name := range p.FileGroups {
		groups = append(groups, name)
	}
	sort.Strings(groups)
	for _, name := range groups {
		for _, pat := range p.FileGroups[name] {
			inputs = append(inputs, Input{Path: "cfg:file_group:" + name, Digest: pat})
		}
	}
	return inputs
}
