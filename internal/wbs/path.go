// Package wbs implements the hierarchical rollup engine and the progress
// reporting derived from it. Everything here is pure: functions take a task
// snapshot and return new values without touching the input.
package wbs

import "strings"

// Path is a task ID split into its dot segments.
type Path []string

// ParsePath splits id on ".". An empty id yields a single empty segment.
func ParsePath(id string) Path {
	return Path(strings.Split(id, "."))
}

// String joins the segments back into an ID.
func (p Path) String() string {
	return strings.Join(p, ".")
}

// IsTopLevel reports whether the path has no parent: a single segment, or
// two segments with the second one "0" (e.g. "3.0").
func (p Path) IsTopLevel() bool {
	return len(p) <= 1 || (len(p) == 2 && p[1] == "0")
}

// Parent returns the derived parent path and false for top-level paths.
// "X.Y" belongs to "X.0"; deeper paths drop their last segment.
func (p Path) Parent() (Path, bool) {
	if p.IsTopLevel() {
		return nil, false
	}
	if len(p) == 2 {
		return Path{p[0], "0"}, true
	}
	parent := make(Path, len(p)-1)
	copy(parent, p[:len(p)-1])
	return parent, true
}

// Level is the nesting depth: 0 for top-level, 1 for "X.Y", len-1 beyond.
func (p Path) Level() int {
	if p.IsTopLevel() {
		return 0
	}
	return len(p) - 1
}

// ParentID returns the derived parent ID of id, or "" if it is top-level.
func ParentID(id string) string {
	parent, ok := ParsePath(id).Parent()
	if !ok {
		return ""
	}
	return parent.String()
}

// Level returns the nesting depth encoded in id.
func Level(id string) int {
	return ParsePath(id).Level()
}

// IsTopLevel reports whether id has no derived parent.
func IsTopLevel(id string) bool {
	return ParsePath(id).IsTopLevel()
}
