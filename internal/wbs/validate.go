package wbs

import (
	"math"
	"time"

	"github.com/jengzang/wbs-backend-go/internal/models"
)

// Validate computes the signals an editor shows next to the table: the
// top-level weight total and references that point nowhere. Nothing here
// rejects a task set.
func Validate(tasks []models.WBSTask) models.Validation {
	v := models.Validation{
		Orphans:              []string{},
		DanglingDependencies: []string{},
	}

	idx := BuildIndex(tasks)
	for i, t := range tasks {
		if idx.PathOf(i).IsTopLevel() {
			v.TopLevelWeight += t.Weight
		}
		if idx.IsOrphan(i) {
			v.Orphans = append(v.Orphans, t.ID)
		}
		for _, dep := range t.Dependencies {
			if !idx.Has(dep.PredecessorID) {
				v.DanglingDependencies = append(v.DanglingDependencies, t.ID+"->"+dep.PredecessorID)
			}
		}
	}
	v.WeightValid = v.TopLevelWeight == 100

	return v
}

// DurationDays is the whole number of days between start and end, rounded
// up and taken as an absolute value. ok is false when either date does not
// parse.
func DurationDays(start, end string) (days int, ok bool) {
	s, err := time.Parse(DateLayout, start)
	if err != nil {
		return 0, false
	}
	e, err := time.Parse(DateLayout, end)
	if err != nil {
		return 0, false
	}

	diff := math.Abs(e.Sub(s).Hours() / 24)
	return int(math.Ceil(diff)), true
}
