package config

import "context"

// ProjectType classifies what kind of buildable unit a project is.
type ProjectType string

const (
	TypeApplication ProjectType = "application"
	TypeLibrary     ProjectType = "library"
	TypeTool        ProjectType = "tool"
	TypeOther       ProjectType = "other"
)

// KnownProjectType reports whether s is one of the recognized project types.
func KnownProjectType(s string) bool {
	switch ProjectType(s) {
	case TypeApplication, TypeLibrary, TypeTool, TypeOther:
		return true
	}
	return false
}

// DependencyScope describes how a dependency participates in a build.
type DependencyScope string

const (
	ScopeBuild       DependencyScope = "build"
	ScopeDevelopment DependencyScope = "development"
	ScopePeer        DependencyScope = "peer"
)

// KnownScope reports whether s is a recognized dependency scope.
func KnownScope(s string) bool {
	switch DependencyScope(s) {
	case ScopeBuild, ScopeDevelopment, ScopePeer:
		return true
	}
	return false
}

// RefKind discriminates the variants of a dependency reference.
type RefKind string

const (
	// RefByID targets a single project by its exact ID.
	RefByID RefKind = "id"
	// RefByTag expands to every project carrying the named tag.
	RefByTag RefKind = "tag"
	// RefByGlob expands to every project whose ID matches the glob pattern.
	RefByGlob RefKind = "glob"
)

// DependencyRef is one declared or inferred dependency reference, before
// resolution into concrete edges.
type DependencyRef struct {
	// Target is the project ID, tag name, or glob pattern depending on Kind.
	Target string
	Kind   RefKind
	Scope  DependencyScope
	// Implicit marks references inferred from platform manifests rather than
	// declared by the user.
	Implicit bool
}

// RawProjectConfig is the unvalidated, format-agnostic representation of a
// single project definition as produced by a Loader.
type RawProjectConfig struct {
	ID     string
	Source string
	// Language is free-form ("go", "rust", ...); empty means unknown.
	Language   string
	Type       string
	Tags      []string
	DependsOn []DependencyRef
	// FileGroups maps group names to glob patterns. Patterns are anchored to
	// the project root; a leading "/" anchors to the workspace root instead.
	FileGroups map[string][]string
}

// ConstraintEffect is the verdict a constraint rule expresses.
type ConstraintEffect string

const (
	EffectAllow ConstraintEffect = "allow"
	EffectDeny  ConstraintEffect = "deny"
)

// SelectorConfig matches projects by attribute. An empty Types list matches
// every type; every listed tag must be present.
type SelectorConfig struct {
	Types []string
	Tags  []string
}

// ConstraintConfig is one workspace-wide boundary rule: projects matching
// Source may (allow) or may not (deny) depend on projects matching Target.
type ConstraintConfig struct {
	Name   string
	Effect ConstraintEffect
	Source SelectorConfig
	Target SelectorConfig
}

// Model is the unified, format-agnostic representation of a whole workspace:
// every project record plus workspace-level settings and constraints.
type Model struct {
	// Projects holds raw project records keyed by declared ID.
	Projects map[string]*RawProjectConfig
	// Order lists project IDs in discovery order. Declaration order feeds
	// topological tie-breaking, so loaders must fill it deterministically.
	Order       []string
	Constraints []ConstraintConfig
	// AllowNestedProjects permits one project root to live inside another.
	AllowNestedProjects bool
}

// NewModel returns an empty workspace model.
func NewModel() *Model {
	return &Model{Projects: make(map[string]*RawProjectConfig)}
}

// Loader is the interface for a format-specific workspace loader.
type Loader interface {
	// Load reads all workspace and project configuration under root and
	// translates it into the format-agnostic model.
	Load(ctx context.Context, root string) (*Model, error)
}
