package domain

import "slices"

// SchemaVersion is bumped whenever the capability fields below change meaning.
const SchemaVersion = 1

// Schema describes deployment-specific storage capabilities. It is resolved
// once at startup and passed to every component that needs it.
type Schema struct {
	Version int

	// TaskColumns lists the columns present on crm_tasks.
	TaskColumns []string

	// MemberUserColumn is the members column linking a team member to a user.
	MemberUserColumn string

	// LogSeenAttribute is "seen", "read" or empty when log entries carry no flag.
	LogSeenAttribute string
	LogHasFromUser   bool
}

// HasTaskColumn reports whether crm_tasks has the given column.
func (s Schema) HasTaskColumn(col string) bool {
	return slices.Contains(s.TaskColumns, col)
}

// TaskFields filters want down to columns that exist. name and modified are
// always kept.
func (s Schema) TaskFields(want ...string) []string {
	out := make([]string, 0, len(want))
	for _, f := range want {
		if f == "name" || f == "modified" || s.HasTaskColumn(f) {
			out = append(out, f)
		}
	}
	return out
}
