package registry

import (
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/vk/monograph/internal/config"
)

// ProjectMetadata is the normalized, validated form of one project. Instances
// are built once by Load and treated as read-only by every consumer.
type ProjectMetadata struct {
	ID string
	// SourceRoot is the cleaned, slash-separated, workspace-relative root.
	SourceRoot string
	Language   string
	Type       config.ProjectType
	// Tags holds the project's tags as a set.
	Tags map[string]struct{}
	// DependsOn preserves the declared reference order.
	DependsOn  []config.DependencyRef
	FileGroups map[string][]string
	// DeclIndex is the project's stable declaration ordinal within the
	// workspace, used for deterministic tie-breaking downstream.
	DeclIndex int
}

// HasTag reports whether the project carries the given tag.
func (p *ProjectMetadata) HasTag(tag string) bool {
	_, ok := p.Tags[tag]
	return ok
}

// TagList returns the project's tags sorted, for deterministic output.
func (p *ProjectMetadata) TagList() []string {
	tags := make([]string, 0, len(p.Tags))
	for t := range p.Tags {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

// ContainsPath reports whether a canonical workspace-relative path falls
// under the project's source root.
func (p *ProjectMetadata) ContainsPath(rel string) bool {
	if rel == p.SourceRoot {
		return true
	}
	if p.SourceRoot == "." {
		return true
	}
	return len(rel) > len(p.SourceRoot) &&
		rel[:len(p.SourceRoot)] == p.SourceRoot &&
		rel[len(p.SourceRoot)] == '/'
}

// MatchesFileGroup reports whether a canonical workspace-relative path
// matches any of the project's file group patterns. Patterns are anchored to
// the project root, so a catch-all like "**/*.go" never reaches into other
// projects. A leading "/" anchors a pattern to the workspace root instead,
// for shared inputs outside the project (lockfiles and the like).
func (p *ProjectMetadata) MatchesFileGroup(rel string) bool {
	inner, under := p.relToRoot(rel)
	for _, patterns := range p.FileGroups {
		for _, pat := range patterns {
			if ws, anchored := strings.CutPrefix(pat, "/"); anchored {
				if ok, err := doublestar.Match(ws, rel); err == nil && ok {
					return true
				}
				continue
			}
			if !under {
				continue
			}
			if ok, err := doublestar.Match(pat, inner); err == nil && ok {
				return true
			}
		}
	}
	return false
}

// FileGroupPaths filters a canonical workspace file list down to the paths
// covered by the project's file groups, in input order.
func (p *ProjectMetadata) FileGroupPaths(files []string) []string {
	var out []string
	for _, f := range files {
		if p.MatchesFileGroup(f) {
			out = append(out, f)
		}
	}
	return out
}

func (p *ProjectMetadata) relToRoot(rel string) (string, bool) {
	if !p.ContainsPath(rel) {
		return "", false
	}
	if p.SourceRoot == "." {
		return rel, true
	}
	if rel == p.SourceRoot {
		return ".", true
	}
	return rel[len(p.SourceRoot)+1:], true
}

// CanonicalPath normalizes any loader- or VCS-supplied path into the form
// stored in SourceRoot: cleaned, forward-slash, no leading "./".
func CanonicalPath(p string) string {
	cleaned := path.Clean(toSlash(p))
	if cleaned == "" {
		return "."
	}
	return cleaned
}

func toSlash(p string) string {
	out := []byte(p)
	for i := range out {
		if out[i] == '\\' {
			out[i] = '/'
		}
	}
	return string(out)
}
