package models

// TaskStatus is a free-standing label set by the editor. It is never derived
// from progress or dates.
type TaskStatus string

// TaskStatus constants
const (
	StatusOnTrack TaskStatus = "On Track"
	StatusOnGoing TaskStatus = "On Going"
	StatusAtRisk  TaskStatus = "At Risk"
	StatusDelayed TaskStatus = "Delayed"
)

// IsValid reports whether s is one of the known statuses.
func (s TaskStatus) IsValid() bool {
	switch s {
	case StatusOnTrack, StatusOnGoing, StatusAtRisk, StatusDelayed:
		return true
	}
	return false
}

// DependencyType is the precedence relation of a dependency record.
type DependencyType string

// DependencyType constants
const (
	DependencyFS DependencyType = "FS" // Finish-to-Start
	DependencySS DependencyType = "SS" // Start-to-Start
	DependencySF DependencyType = "SF" // Start-to-Finish
	DependencyFF DependencyType = "FF" // Finish-to-Finish
)

// IsValid reports whether d is one of the four precedence types.
func (d DependencyType) IsValid() bool {
	switch d {
	case DependencyFS, DependencySS, DependencySF, DependencyFF:
		return true
	}
	return false
}

// Dependency is display-only metadata. Nothing in the rollup or reporting
// code reads it, and PredecessorID may name a task that does not exist.
type Dependency struct {
	PredecessorID string         `json:"predecessor_id" yaml:"predecessor_id"`
	Type          DependencyType `json:"type" yaml:"type"`
}

// WBSTask is one row of a work breakdown structure
type WBSTask struct {
	// Identification
	ID   string `json:"id" yaml:"id"`     // Dotted hierarchical path, e.g. "1.0", "1.2", "1.2.1"
	Name string `json:"name" yaml:"name"` // Display label

	// Metrics (engine-computed for aggregates)
	Weight   int `json:"weight" yaml:"weight"`     // Share of parent's total, 0-100
	Progress int `json:"progress" yaml:"progress"` // Percent complete, 0-100
	Level    int `json:"level" yaml:"level"`       // Nesting depth derived from ID

	// Planning window, YYYY-MM-DD
	StartDate string `json:"start_date" yaml:"start_date"`
	EndDate   string `json:"end_date" yaml:"end_date"`

	Status       TaskStatus   `json:"status" yaml:"status"`
	Dependencies []Dependency `json:"dependencies" yaml:"dependencies,omitempty"`

	// Re-derived on every recompute, never trusted from input or storage
	IsCalculated bool `json:"is_calculated" yaml:"-"`
}

// Clone returns a copy that shares no memory with t.
func (t WBSTask) Clone() WBSTask {
	c := t
	if t.Dependencies != nil {
		c.Dependencies = make([]Dependency, len(t.Dependencies))
		copy(c.Dependencies, t.Dependencies)
	}
	return c
}
