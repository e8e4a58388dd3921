// Package config defines the format-agnostic configuration model for a
// workspace: raw project records, dependency references, and boundary
// constraint definitions, along with the Loader interface implemented by
// format-specific packages.
//
// The config.Model is the single source of truth for the registry, resolver
// and constraint packages. Concrete Loader implementations, such as for HCL
// and YAML, live in separate packages and never leak their syntax here.
package config
