package config

import "strings"

// ParseDependencyRef interprets the surface syntax shared by all loaders:
// a "#" prefix selects by tag, glob metacharacters select by ID pattern,
// anything else is an exact project ID.
func ParseDependencyRef(raw string, scope DependencyScope, implicit bool) DependencyRef {
	if scope == "" {
		scope = ScopeBuild
	}
	if tag, ok := strings.CutPrefix(raw, "#"); ok {
		return DependencyRef{Target: tag, Kind: RefByTag, Scope: scope, Implicit: implicit}
	}
	if strings.ContainsAny(raw, "*?[{") {
		return DependencyRef{Target: raw, Kind: RefByGlob, Scope: scope, Implicit: implicit}
	}
	return DependencyRef{Target: raw, Kind: RefByID, Scope: scope, Implicit: implicit}
}
