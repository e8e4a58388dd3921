// Package registry normalizes raw project records into validated
// ProjectMetadata: canonical workspace-relative roots, unique IDs, and
// non-overlapping source trees. It is the first stage of the graph pipeline
// and performs no file system access beyond an injected existence check.
package registry
