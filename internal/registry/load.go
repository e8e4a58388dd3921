package registry

import (
	"sort"
	"strings"

	"github.com/vk/monograph/internal/config"
)

// Options tunes normalization behavior.
type Options struct {
	// AllowNestedProjects permits one source root inside another. Identical
	// roots are always an error.
	AllowNestedProjects bool
	// Exists, when set, is consulted with each canonical source root; a false
	// return fails the load. Leaving it nil skips existence checking, which
	// keeps the registry testable without a file system.
	Exists func(sourceRoot string) bool
	// Order fixes declaration order by project ID. IDs absent from the list
	// sort after it, alphabetically, so the assignment stays deterministic.
	Order []string
}

// Load normalizes raw project records into ProjectMetadata, failing with
// DuplicateIDError, OverlappingRootError or InvalidConfigError on the first
// structural problem. It has no side effects beyond the returned map.
func Load(raw map[string]*config.RawProjectConfig, opts Options) (map[string]*ProjectMetadata, error) {
	ids := orderIDs(raw, opts.Order)

	projects := make(map[string]*ProjectMetadata, len(raw))
	rootOwner := make(map[string]string, len(raw))

	for i, id := range ids {
		rc := raw[id]
		if rc.ID != "" && rc.ID != id {
			return nil, &InvalidConfigError{ID: id, Reason: "record declares mismatched ID " + rc.ID}
		}
		if _, dup := projects[id]; dup {
			return nil, &DuplicateIDError{ID: id}
		}

		meta, err := normalize(id, rc)
		if err != nil {
			return nil, err
		}
		meta.DeclIndex = i

		if owner, taken := rootOwner[meta.SourceRoot]; taken {
			return nil, &OverlappingRootError{ID: id, Root: meta.SourceRoot, OtherID: owner, OtherRoot: meta.SourceRoot}
		}
		if opts.Exists != nil && !opts.Exists(meta.SourceRoot) {
			return nil, &InvalidConfigError{ID: id, Reason: "source root " + meta.SourceRoot + " does not exist"}
		}

		rootOwner[meta.SourceRoot] = id
		projects[id] = meta
	}

	if !opts.AllowNestedProjects {
		if err := checkOverlap(projects); err != nil {
			return nil, err
		}
	}

	return projects, nil
}

// orderIDs produces the declaration order: explicit order first, remaining
// IDs sorted alphabetically after it.
func orderIDs(raw map[string]*config.RawProjectConfig, explicit []string) []string {
	seen := make(map[string]bool, len(raw))
	ids := make([]string, 0, len(raw))
	for _, id := range explicit {
		if _, ok := raw[id]; ok && !seen[id] {
			ids = append(ids, id)
			seen[id] = true
		}
	}
	var rest []string
	for id := range raw {
		if !seen[id] {
			rest = append(rest, id)
		}
	}
	sort.Strings(rest)
	return append(ids, rest...)
}

func normalize(id string, rc *config.RawProjectConfig) (*ProjectMetadata, error) {
	if id == "" {
		return nil, &InvalidConfigError{ID: id, Reason: "project ID must not be empty"}
	}
	if rc.Source == "" {
		return nil, &InvalidConfigError{ID: id, Reason: "source root must not be empty"}
	}

	root := CanonicalPath(rc.Source)
	if strings.HasPrefix(root, "/") || root == ".." || strings.HasPrefix(root, "../") {
		return nil, &InvalidConfigError{ID: id, Reason: "source root " + rc.Source + " escapes the workspace"}
	}

	typ := config.TypeOther
	if rc.Type != "" {
		if !config.KnownProjectType(rc.Type) {
			return nil, &InvalidConfigError{ID: id, Reason: "unknown project type " + rc.Type}
		}
		typ = config.ProjectType(rc.Type)
	}

	tags := make(map[string]struct{}, len(rc.Tags))
	for _, t := range rc.Tags {
		if t == "" {
			return nil, &InvalidConfigError{ID: id, Reason: "empty tag"}
		}
		tags[t] = struct{}{}
	}

	deps := make([]config.DependencyRef, len(rc.DependsOn))
	for i, ref := range rc.DependsOn {
		if ref.Target == "" {
			return nil, &InvalidConfigError{ID: id, Reason: "empty dependency reference"}
		}
		if ref.Scope == "" {
			ref.Scope = config.ScopeBuild
		}
		if !config.KnownScope(string(ref.Scope)) {
			return nil, &InvalidConfigError{ID: id, Reason: "unknown dependency scope " + string(ref.Scope)}
		}
		deps[i] = ref
	}

	groups := make(map[string][]string, len(rc.FileGroups))
	for name, patterns := range rc.FileGroups {
		if name == "" {
			return nil, &InvalidConfigError{ID: id, Reason: "file group with empty name"}
		}
		groups[name] = append([]string(nil), patterns...)
	}

	return &ProjectMetadata{
		ID:         id,
		SourceRoot: root,
		Language:   rc.Language,
		Type:       typ,
		Tags:       tags,
		DependsOn:  deps,
		FileGroups: groups,
	}, nil
}

// checkOverlap rejects any root nested inside another. The comparison is
// quadratic, which is fine at workspace scale; it keeps the ancestor relation
// explicit instead of depending on lexicographic adjacency.
func checkOverlap(projects map[string]*ProjectMetadata) error {
	type entry struct{ root, id string }
	entries := make([]entry, 0, len(projects))
	for id, p := range projects {
		entries = append(entries, entry{root: p.SourceRoot, id: id})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].root < entries[j].root })

	for i := range entries {
		for j := range entries {
			if i == j {
				continue
			}
			parent, child := entries[j], entries[i]
			if parent.root == "." || strings.HasPrefix(child.root, parent.root+"/") {
				return &OverlappingRootError{
					ID:        child.id,
					Root:      child.root,
					OtherID:   parent.id,
					OtherRoot: parent.root,
				}
			}
		}
	}
	return nil
}
