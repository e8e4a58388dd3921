// Package resolver expands declared and inferred dependency references into
// concrete project-to-project edges. Exact IDs must resolve, tag and glob
// selectors expand to zero or more matches, and implicit (platform-inferred)
// edges are merged after explicit ones without ever overriding them.
package resolver
