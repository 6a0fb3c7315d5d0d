package wbs

import (
	"sort"
	"time"

	"github.com/jengzang/wbs-backend-go/internal/models"
)

// DateLayout is the calendar-date format of StartDate/EndDate.
const DateLayout = "2006-01-02"

// TopLevel returns the tasks with no derived parent, in input order.
func TopLevel(tasks []models.WBSTask) []models.WBSTask {
	var top []models.WBSTask
	for _, t := range tasks {
		if IsTopLevel(t.ID) {
			top = append(top, t)
		}
	}
	return top
}

// OverallProgress is the weight-averaged progress of the top-level tasks.
// It is 0 when there are no top-level tasks or their weights sum to 0.
func OverallProgress(tasks []models.WBSTask) int {
	top := TopLevel(tasks)
	if len(top) == 0 {
		return 0
	}

	weight, weighted := 0, 0
	for _, t := range top {
		weight += t.Weight
		weighted += t.Progress * t.Weight
	}
	if weight <= 0 {
		return 0
	}

	return clampPercent(roundDiv(weighted, weight))
}

// SCurve walks the top-level tasks in end-date order and emits the running
// planned (sum of weights) and actual (sum of earned weight) totals, one
// point per task. With no top-level tasks it returns a single zero point
// dated now.
func SCurve(tasks []models.WBSTask, now time.Time) []models.SCurvePoint {
	top := TopLevel(tasks)
	if len(top) == 0 {
		return []models.SCurvePoint{{Date: now.Format(DateLayout)}}
	}

	sortByEndDate(top)

	points := make([]models.SCurvePoint, 0, len(top))
	planned := 0
	actual := 0.0
	for _, t := range top {
		planned += t.Weight
		actual += float64(t.Progress*t.Weight) / 100
		points = append(points, models.SCurvePoint{
			Date:    t.EndDate,
			Planned: planned,
			Actual:  roundHalfUp(actual),
		})
	}

	return points
}

// sortByEndDate orders tasks by parsed end date. Tasks whose end date does
// not parse keep their relative order after all dated tasks.
func sortByEndDate(tasks []models.WBSTask) {
	keys := make(map[string]time.Time, len(tasks))
	for _, t := range tasks {
		if d, err := time.Parse(DateLayout, t.EndDate); err == nil {
			keys[t.EndDate] = d
		}
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		di, iok := keys[tasks[i].EndDate]
		dj, jok := keys[tasks[j].EndDate]
		if iok != jok {
			return iok
		}
		return iok && di.Before(dj)
	})
}

func clampPercent(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
