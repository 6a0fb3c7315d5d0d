package models

// SCurvePoint is one cumulative sample of the planned-vs-actual series.
// Planned and Actual are percentages, 0-100.
type SCurvePoint struct {
	Date    string `json:"date" yaml:"date"`
	Planned int    `json:"planned" yaml:"planned"`
	Actual  int    `json:"actual" yaml:"actual"`
}

// Validation is the weight/structure signal surfaced next to a WBS.
// It never blocks a mutation.
type Validation struct {
	TopLevelWeight int  `json:"top_level_weight"`
	WeightValid    bool `json:"weight_valid"` // TopLevelWeight == 100

	// Tasks whose derived parent is not in the set
	Orphans []string `json:"orphans"`
	// Dependencies whose predecessor is not in the set, as "task->predecessor"
	DanglingDependencies []string `json:"dangling_dependencies"`
}

// ProgressReport is everything the chart and export surfaces consume
type ProgressReport struct {
	Project         *Project      `json:"project"`
	OverallProgress int           `json:"overall_progress"`
	SCurve          []SCurvePoint `json:"s_curve"`
	Validation      Validation    `json:"validation"`
	TaskCount       int           `json:"task_count"`
	GeneratedAt     string        `json:"generated_at"`
}
