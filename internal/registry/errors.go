package registry

import "fmt"

// DuplicateIDError reports two project records declaring the same ID.
type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate project ID %q: project IDs must be unique within the workspace", e.ID)
}

// OverlappingRootError reports a project root nesting inside another
// project's root when nested projects are not enabled.
type OverlappingRootError struct {
	ID        string
	Root      string
	OtherID   string
	OtherRoot string
}

func (e *OverlappingRootError) Error() string {
	return fmt.Sprintf("source root %q of project %q overlaps root %q of project %q; enable nested projects to allow this",
		e.Root, e.ID, e.OtherRoot, e.OtherID)
}

// InvalidConfigError reports a malformed project record.
type InvalidConfigError struct {
	ID     string
	Reason string
}

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid configuration for project %q: %s", e.ID, e.Reason)
}
