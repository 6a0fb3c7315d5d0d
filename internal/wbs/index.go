package wbs

import "github.com/jengzang/wbs-backend-go/internal/models"

// Index is the explicit tree behind a task snapshot. IDs are parsed once and
// every task is bucketed under its derived parent ID.
type Index struct {
	paths    []Path
	parents  []string         // derived parent ID per position, "" for top-level
	children map[string][]int // parent ID -> child positions, input order
	present  map[string]bool
}

// BuildIndex parses every ID of tasks and links children to parent IDs.
// Parent IDs are recorded whether or not a task with that ID exists.
func BuildIndex(tasks []models.WBSTask) *Index {
	idx := &Index{
		paths:    make([]Path, len(tasks)),
		parents:  make([]string, len(tasks)),
		children: make(map[string][]int),
		present:  make(map[string]bool, len(tasks)),
	}

	for i, t := range tasks {
		p := ParsePath(t.ID)
		idx.paths[i] = p
		idx.present[t.ID] = true

		parent, ok := p.Parent()
		if !ok {
			continue
		}
		pid := parent.String()
		idx.parents[i] = pid
		idx.children[pid] = append(idx.children[pid], i)
	}

	return idx
}

// Children returns the positions of the direct children of id.
func (x *Index) Children(id string) []int {
	return x.children[id]
}

// HasChildren reports whether any task derives id as its parent.
func (x *Index) HasChildren(id string) bool {
	return len(x.children[id]) > 0
}

// Has reports whether a task with id is in the snapshot.
func (x *Index) Has(id string) bool {
	return x.present[id]
}

// PathOf returns the parsed ID of the task at position i.
func (x *Index) PathOf(i int) Path {
	return x.paths[i]
}

// IsOrphan reports whether the task at position i names a parent that is
// not in the snapshot.
func (x *Index) IsOrphan(i int) bool {
	pid := x.parents[i]
	return pid != "" && !x.present[pid]
}
